package recipes

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-promptgen/pkg/testsupport"
)

func TestLlama3Spec8B(t *testing.T) {
	t.Parallel()

	spec := Llama3Spec8B()
	want := ModelSpec{
		Name:              "llama3-8b",
		HiddenSize:        4096,
		Layers:            32,
		AttentionHeads:    32,
		QueryGroups:       8,
		FFNHiddenSize:     14336,
		VocabularySize:    128256,
		MaxSequenceLength: 8192,
		Checkpoint:        "meta-llama/Meta-Llama-3-8B",
	}
	if diff := cmp.Diff(want, spec); diff != "" {
		t.Fatalf("spec mismatch (-want +got):\n%s", diff)
	}
	if err := spec.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}

func TestPretrainDefaults(t *testing.T) {
	t.Parallel()

	recipe, err := Pretrain(Llama3Spec8B())
	if err != nil {
		t.Fatalf("Pretrain returned error: %v", err)
	}

	if recipe.Run.Task != TaskPretrain || recipe.Run.Name != "default" {
		t.Fatalf("unexpected run info: %+v", recipe.Run)
	}
	if recipe.Trainer.MaxSteps != 1168251 {
		t.Fatalf("unexpected max steps: %d", recipe.Trainer.MaxSteps)
	}
	if recipe.Trainer.Nodes != 1 || recipe.Trainer.GPUsPerNode != 8 {
		t.Fatalf("unexpected world geometry: %+v", recipe.Trainer)
	}
	if recipe.Trainer.Strategy.ContextParallel != 2 {
		t.Fatalf("expected context parallelism 2, got %d", recipe.Trainer.Strategy.ContextParallel)
	}
	if recipe.Trainer.ValCheckInterval != 2000 || recipe.Trainer.LimitValBatches != 32 || recipe.Trainer.LimitTestBatches != 50 || recipe.Trainer.LogEveryNSteps != 10 {
		t.Fatalf("unexpected trainer loop settings: %+v", recipe.Trainer)
	}
	if recipe.Trainer.Precision != "bf16-mixed" {
		t.Fatalf("unexpected precision: %q", recipe.Trainer.Precision)
	}

	wantData := DataConfig{Module: "mock", SequenceLength: 8192, GlobalBatchSize: 512, MicroBatchSize: 1}
	if diff := cmp.Diff(wantData, recipe.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}

	if recipe.Optimizer.MaxLR != 3e-4 || recipe.Optimizer.MinLR != 3e-5 {
		t.Fatalf("unexpected learning rates: %+v", recipe.Optimizer)
	}
	if recipe.Optimizer.Name != "distributed_fused_adam" || recipe.Optimizer.LRSchedule != "cosine_annealing" {
		t.Fatalf("unexpected optimiser: %+v", recipe.Optimizer)
	}

	wantCallbacks := []CallbackConfig{
		{Name: CallbackTiming},
		{Name: CallbackFLOPsMeasurement},
	}
	if diff := cmp.Diff(wantCallbacks, recipe.Trainer.Callbacks); diff != "" {
		t.Fatalf("callbacks mismatch (-want +got):\n%s", diff)
	}

	if !recipe.Resume.ResumeIfExists || !recipe.Resume.ResumeIgnoreNoCheckpoint {
		t.Fatalf("unexpected resume config: %+v", recipe.Resume)
	}
	if recipe.Log.Dir != "runs/default" || recipe.Log.TensorBoardDir != "runs/default/tensorboard" {
		t.Fatalf("unexpected log layout: %+v", recipe.Log)
	}
	if recipe.PEFT != nil || recipe.Restore != nil {
		t.Fatalf("pre-training must not carry peft or restore config")
	}
}

func TestPretrainPerformanceMode(t *testing.T) {
	t.Parallel()

	recipe, err := Pretrain(Llama3Spec8B(), WithPerformanceMode(true), WithName("perf"), WithDir("/data/runs"))
	if err != nil {
		t.Fatalf("Pretrain returned error: %v", err)
	}

	wantCallbacks := []CallbackConfig{
		{Name: CallbackTiming},
		{Name: CallbackFLOPsMeasurement},
		{Name: CallbackCommOverlap},
	}
	if diff := cmp.Diff(wantCallbacks, recipe.Trainer.Callbacks); diff != "" {
		t.Fatalf("callbacks mismatch (-want +got):\n%s", diff)
	}
	if recipe.Log.Dir != "/data/runs/perf" {
		t.Fatalf("unexpected log dir: %q", recipe.Log.Dir)
	}
}

func TestPretrainRejectsBadGeometry(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		opts    []Option
		wantErr string
	}{
		{
			name:    "zero nodes",
			opts:    []Option{WithNodes(0)},
			wantErr: "must be positive",
		},
		{
			name:    "world size not divisible by parallelism",
			opts:    []Option{WithGPUsPerNode(3)},
			wantErr: "not divisible",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Pretrain(Llama3Spec8B(), tc.opts...)
			if err == nil {
				t.Fatalf("expected Pretrain to fail")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not contain %q", err.Error(), tc.wantErr)
			}
		})
	}
}

func TestFinetuneLoRADefaults(t *testing.T) {
	t.Parallel()

	recipe, err := Finetune(Llama3Spec8B(), SchemeLoRA)
	if err != nil {
		t.Fatalf("Finetune returned error: %v", err)
	}

	if recipe.Run.Task != TaskFinetune {
		t.Fatalf("unexpected task: %q", recipe.Run.Task)
	}
	wantPEFT := &LoRAConfig{Dim: 8, Alpha: 16, TargetModules: []string{"linear_qkv"}}
	if diff := cmp.Diff(wantPEFT, recipe.PEFT); diff != "" {
		t.Fatalf("peft mismatch (-want +got):\n%s", diff)
	}
	if recipe.Optimizer.MaxLR != 1e-4 {
		t.Fatalf("unexpected learning rate: %g", recipe.Optimizer.MaxLR)
	}
	if recipe.Trainer.Strategy.TensorParallel != 1 {
		t.Fatalf("unexpected tensor parallelism: %d", recipe.Trainer.Strategy.TensorParallel)
	}

	// Unpacked by default outside performance mode.
	if recipe.Data.PackedSequence != nil {
		t.Fatalf("expected unpacked data, got %+v", recipe.Data.PackedSequence)
	}
	if recipe.Data.SequenceLength != 2048 || recipe.Model.MaxSequenceLength != 2048 {
		t.Fatalf("expected sequence length 2048, got data=%d model=%d", recipe.Data.SequenceLength, recipe.Model.MaxSequenceLength)
	}
	if recipe.Data.Module != "squad" || recipe.Data.GlobalBatchSize != 128 {
		t.Fatalf("unexpected data config: %+v", recipe.Data)
	}

	if recipe.Restore == nil || recipe.Restore.Path != "meta-llama/Meta-Llama-3-8B" {
		t.Fatalf("unexpected restore config: %+v", recipe.Restore)
	}

	wantCallbacks := []CallbackConfig{
		{Name: CallbackTiming},
		{Name: CallbackDeltaTiming},
		{Name: CallbackFLOPsMeasurement},
	}
	if diff := cmp.Diff(wantCallbacks, recipe.Trainer.Callbacks); diff != "" {
		t.Fatalf("callbacks mismatch (-want +got):\n%s", diff)
	}
}

func TestFinetuneFullWeights(t *testing.T) {
	t.Parallel()

	recipe, err := Finetune(Llama3Spec8B(), SchemeNone)
	if err != nil {
		t.Fatalf("Finetune returned error: %v", err)
	}

	if recipe.PEFT != nil {
		t.Fatalf("full fine-tuning must not attach adapters, got %+v", recipe.PEFT)
	}
	if recipe.Trainer.Strategy.TensorParallel != 2 {
		t.Fatalf("expected tensor parallelism 2, got %d", recipe.Trainer.Strategy.TensorParallel)
	}
	if recipe.Optimizer.MaxLR != 5e-6 {
		t.Fatalf("unexpected learning rate: %g", recipe.Optimizer.MaxLR)
	}

	// An empty scheme means the same thing.
	viaEmpty, err := Finetune(Llama3Spec8B(), "")
	if err != nil {
		t.Fatalf("Finetune returned error: %v", err)
	}
	if diff := cmp.Diff(recipe, viaEmpty); diff != "" {
		t.Fatalf("empty scheme differs from none (-none +empty):\n%s", diff)
	}
}

func TestFinetunePerformanceMode(t *testing.T) {
	t.Parallel()

	recipe, err := Finetune(Llama3Spec8B(), SchemeLoRA, WithPerformanceMode(true))
	if err != nil {
		t.Fatalf("Finetune returned error: %v", err)
	}

	// Performance mode defaults to packed sequences at 4096 tokens.
	wantPacked := &PackedSequenceSpec{Size: 4096, PadToMaxLength: true}
	if diff := cmp.Diff(wantPacked, recipe.Data.PackedSequence); diff != "" {
		t.Fatalf("packed spec mismatch (-want +got):\n%s", diff)
	}
	if recipe.Data.SequenceLength != 4096 {
		t.Fatalf("unexpected sequence length: %d", recipe.Data.SequenceLength)
	}
	if recipe.Trainer.Strategy.TensorParallel != 1 {
		t.Fatalf("performance mode must bring tensor parallelism back to 1, got %d", recipe.Trainer.Strategy.TensorParallel)
	}

	wantCallbacks := []CallbackConfig{
		{Name: CallbackTiming},
		{Name: CallbackGarbageCollection, TrainInterval: 100, ValInterval: 100},
		{Name: CallbackDeltaTiming},
		{Name: CallbackFLOPsMeasurement},
	}
	if diff := cmp.Diff(wantCallbacks, recipe.Trainer.Callbacks); diff != "" {
		t.Fatalf("callbacks mismatch (-want +got):\n%s", diff)
	}
}

func TestFinetuneFullWeightsPerformanceMode(t *testing.T) {
	t.Parallel()

	recipe, err := Finetune(Llama3Spec8B(), SchemeNone, WithPerformanceMode(true))
	if err != nil {
		t.Fatalf("Finetune returned error: %v", err)
	}

	if recipe.Trainer.Strategy.DDP.GradReduceInFP32 {
		t.Fatalf("expected fp32 gradient reduction to be disabled")
	}
	if recipe.Trainer.Strategy.TensorParallel != 1 {
		t.Fatalf("unexpected tensor parallelism: %d", recipe.Trainer.Strategy.TensorParallel)
	}

	wantCallbacks := []CallbackConfig{
		{Name: CallbackCommOverlap},
		{Name: CallbackTiming},
		{Name: CallbackGarbageCollection, TrainInterval: 100, ValInterval: 100},
		{Name: CallbackDeltaTiming},
		{Name: CallbackFLOPsMeasurement},
	}
	if diff := cmp.Diff(wantCallbacks, recipe.Trainer.Callbacks); diff != "" {
		t.Fatalf("callbacks mismatch (-want +got):\n%s", diff)
	}
}

func TestFinetunePackedOverride(t *testing.T) {
	t.Parallel()

	// Packing forced off keeps the short context even in performance mode.
	unpacked, err := Finetune(Llama3Spec8B(), SchemeLoRA, WithPerformanceMode(true), WithPackedSequences(false))
	if err != nil {
		t.Fatalf("Finetune returned error: %v", err)
	}
	if unpacked.Data.PackedSequence != nil || unpacked.Data.SequenceLength != 2048 {
		t.Fatalf("expected unpacked 2048 data, got %+v", unpacked.Data)
	}

	// Packing forced on works without performance mode.
	packed, err := Finetune(Llama3Spec8B(), SchemeLoRA, WithPackedSequences(true))
	if err != nil {
		t.Fatalf("Finetune returned error: %v", err)
	}
	if packed.Data.PackedSequence == nil || packed.Data.SequenceLength != 4096 {
		t.Fatalf("expected packed 4096 data, got %+v", packed.Data)
	}
}

func TestFinetuneRejectsUnknownScheme(t *testing.T) {
	t.Parallel()

	_, err := Finetune(Llama3Spec8B(), "dora")
	if err == nil {
		t.Fatalf("expected unknown scheme to fail")
	}
	if !strings.Contains(err.Error(), `unrecognised peft scheme "dora"`) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFinetuneRecipeMatchesGolden(t *testing.T) {
	recipe, err := Finetune(Llama3Spec8B(), SchemeLoRA, WithName("llama3-8b-lora"))
	if err != nil {
		t.Fatalf("Finetune returned error: %v", err)
	}

	out, err := recipe.EncodeYAML()
	if err != nil {
		t.Fatalf("EncodeYAML returned error: %v", err)
	}
	golden := filepath.Join("testdata", "finetune_lora.yaml")
	if testsupport.WriteMaybeGolden(t, golden, out) {
		return
	}

	var want Recipe
	if err := yaml.Unmarshal(testsupport.MustReadGolden(t, golden), &want); err != nil {
		t.Fatalf("decode golden: %v", err)
	}
	if diff := testsupport.CompareGolden(want, recipe); diff != "" {
		t.Errorf("recipe drifted from golden (-golden +got):\n%s", diff)
	}
}

func TestRecipeEncodeYAMLRoundTrips(t *testing.T) {
	t.Parallel()

	recipe, err := Finetune(Llama3Spec8B(), SchemeLoRA, WithName("squad-lora"), WithPerformanceMode(true))
	if err != nil {
		t.Fatalf("Finetune returned error: %v", err)
	}

	out, err := recipe.EncodeYAML()
	if err != nil {
		t.Fatalf("EncodeYAML returned error: %v", err)
	}
	doc := string(out)
	for _, fragment := range []string{"task: finetune", "module: squad", "dim: 8", "pad_to_max_length: true"} {
		if !strings.Contains(doc, fragment) {
			t.Fatalf("encoded document misses %q:\n%s", fragment, doc)
		}
	}

	var decoded Recipe
	if err := yaml.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if diff := cmp.Diff(recipe, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}
