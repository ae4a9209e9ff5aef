package recipes

import "fmt"

// Parameter-efficient fine-tuning schemes.
const (
	SchemeLoRA = "lora"
	SchemeNone = "none"
)

// Fine-tuning defaults. Sequence length depends on packing: packed batches
// carry more tokens per sequence, unpacked runs stay shorter.
const (
	defaultFinetuneSteps       = 1000
	defaultFinetuneGlobalBatch = 128
	defaultFinetuneMicroBatch  = 1
	defaultFinetuneSeqPacked   = 4096
	defaultFinetuneSeqUnpacked = 2048

	loraLR = 1e-4
	fullLR = 5e-6
)

// Finetune builds a fine-tuning recipe for the given model. scheme selects
// the adaptation strategy: SchemeLoRA attaches rank-8 adapters to the fused
// qkv projection, while SchemeNone (or an empty string) tunes all weights
// with tensor parallelism 2 and a lower learning rate. Packing defaults to
// the performance setting; performance mode also brings tensor parallelism
// back to 1 and schedules explicit garbage collection.
func Finetune(model ModelSpec, scheme string, opts ...Option) (Recipe, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}

	packed := cfg.performance
	if cfg.packed != nil {
		packed = *cfg.packed
	}
	seqLength := cfg.seqLength
	if seqLength == 0 {
		if packed {
			seqLength = defaultFinetuneSeqPacked
		} else {
			seqLength = defaultFinetuneSeqUnpacked
		}
	}
	maxSteps := cfg.maxSteps
	if maxSteps == 0 {
		maxSteps = defaultFinetuneSteps
	}

	recipe := Recipe{
		Run:     RunInfo{Name: cfg.name, Task: TaskFinetune},
		Model:   model,
		Trainer: baseTrainer(cfg.nodes, cfg.gpusPerNode, maxSteps, 1),
		Data: DataConfig{
			Module:          "squad",
			SequenceLength:  seqLength,
			GlobalBatchSize: defaultFinetuneGlobalBatch,
			MicroBatchSize:  defaultFinetuneMicroBatch,
		},
		Optimizer: cosineAdam(loraLR),
		Log:       defaultLog(cfg.dir, cfg.name),
		Resume:    ResumeConfig{ResumeIfExists: true, ResumeIgnoreNoCheckpoint: true},
	}
	if model.Checkpoint != "" {
		recipe.Restore = &RestoreConfig{Path: model.Checkpoint}
	}

	switch scheme {
	case SchemeNone, "":
		recipe.Trainer.Strategy.TensorParallel = 2
		recipe.Optimizer.MaxLR = fullLR
		recipe.Optimizer.MinLR = fullLR / 10
	case SchemeLoRA:
		recipe.PEFT = &LoRAConfig{
			Dim:           8,
			Alpha:         16,
			TargetModules: []string{"linear_qkv"},
		}
		recipe.Optimizer.MaxLR = loraLR
		recipe.Optimizer.MinLR = loraLR / 10
	default:
		return Recipe{}, fmt.Errorf("recipes: unrecognised peft scheme %q", scheme)
	}

	// Fine-tuning shortens the context window; the model spec follows the
	// data module so consumers see one consistent length.
	recipe.Model.MaxSequenceLength = seqLength
	if packed {
		recipe.Data.PackedSequence = &PackedSequenceSpec{Size: seqLength, PadToMaxLength: true}
	}

	if cfg.performance {
		finetunePerformance(&recipe, scheme)
	}

	recipe.Trainer.Callbacks = appendCallback(recipe.Trainer.Callbacks, CallbackConfig{Name: CallbackTiming})
	recipe.Trainer.Callbacks = appendCallback(recipe.Trainer.Callbacks, CallbackConfig{Name: CallbackDeltaTiming})
	recipe.Trainer.Callbacks = appendCallback(recipe.Trainer.Callbacks, CallbackConfig{Name: CallbackFLOPsMeasurement})

	if err := recipe.Validate(); err != nil {
		return Recipe{}, err
	}
	return recipe, nil
}

// finetunePerformance applies the throughput-oriented overrides. It runs
// before the measurement callbacks are attached so its tensor parallelism
// override wins over the scheme default.
func finetunePerformance(recipe *Recipe, scheme string) {
	recipe.Trainer.Strategy.TensorParallel = 1

	if scheme == SchemeNone || scheme == "" {
		recipe.Trainer.Strategy.DDP.GradReduceInFP32 = false
		recipe.Trainer.Callbacks = appendCallback(recipe.Trainer.Callbacks, CallbackConfig{Name: CallbackCommOverlap})
	} else if recipe.PEFT != nil {
		recipe.PEFT.TargetModules = []string{"linear_qkv"}
	}

	recipe.Trainer.Callbacks = appendCallback(recipe.Trainer.Callbacks, CallbackConfig{Name: CallbackTiming})
	recipe.Trainer.Callbacks = appendCallback(recipe.Trainer.Callbacks, CallbackConfig{
		Name:          CallbackGarbageCollection,
		TrainInterval: 100,
		ValInterval:   100,
	})
}
