package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/goliatone/go-promptgen/pkg/recipes"
)

func main() {
	task := flag.String("task", recipes.TaskPretrain, "recipe task: pretrain or finetune")
	modelName := flag.String("model", "llama3-8b", "model architecture")
	name := flag.String("name", "default", "run name")
	dir := flag.String("dir", "runs", "base directory for run artefacts")
	nodes := flag.Int("nodes", 1, "number of compute nodes")
	gpus := flag.Int("gpus-per-node", 8, "GPUs per node")
	scheme := flag.String("peft", recipes.SchemeLoRA, "fine-tuning scheme: lora or none")
	maxSteps := flag.Int("max-steps", 0, "override the task's default training step count")
	seqLength := flag.Int("seq-length", 0, "override the task's default sequence length")
	packed := flag.String("packed", "", "force packed sequences: true or false (default follows performance mode)")
	performance := flag.Bool("performance", false, "enable throughput optimisations")
	flops := flag.Bool("flops", false, "print the estimated FLOPs per step instead of the recipe")
	output := flag.String("output", "", "output file (stdout if empty)")
	flag.Parse()

	opts := []recipes.Option{
		recipes.WithName(*name),
		recipes.WithDir(*dir),
		recipes.WithNodes(*nodes),
		recipes.WithGPUsPerNode(*gpus),
		recipes.WithPerformanceMode(*performance),
	}
	if *maxSteps > 0 {
		opts = append(opts, recipes.WithMaxSteps(*maxSteps))
	}
	if *seqLength > 0 {
		opts = append(opts, recipes.WithSequenceLength(*seqLength))
	}
	if *packed != "" {
		enabled, err := strconv.ParseBool(*packed)
		if err != nil {
			log.Fatalf("Invalid -packed value %q: expected true or false", *packed)
		}
		opts = append(opts, recipes.WithPackedSequences(enabled))
	}

	var model recipes.ModelSpec
	switch *modelName {
	case "llama3-8b":
		model = recipes.Llama3Spec8B()
	default:
		log.Fatalf("Unknown model %q", *modelName)
	}

	var (
		recipe recipes.Recipe
		err    error
	)
	switch *task {
	case recipes.TaskPretrain:
		recipe, err = recipes.Pretrain(model, opts...)
	case recipes.TaskFinetune:
		recipe, err = recipes.Finetune(model, *scheme, opts...)
	default:
		log.Fatalf("Unknown task %q: expected pretrain or finetune", *task)
	}
	if err != nil {
		log.Fatalf("Failed to build recipe: %v", err)
	}

	if *flops {
		fmt.Printf("%s: %.2f TFLOPs per step\n", recipe.Run.Name, recipes.EstimateRecipeStepFLOPs(recipe)/1e12)
		return
	}

	out, err := recipe.EncodeYAML()
	if err != nil {
		log.Fatalf("Failed to encode recipe: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, out, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Recipe written to %s\n", *output)
		return
	}
	fmt.Print(string(out))
}
