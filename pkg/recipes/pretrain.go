package recipes

// Pre-training defaults proven out on Llama 3 8B.
const (
	defaultPretrainSteps           = 1168251
	defaultPretrainGlobalBatch     = 512
	defaultPretrainMicroBatch      = 1
	defaultPretrainContextParallel = 2
	defaultPretrainMaxLR           = 3e-4
)

// Pretrain builds a pre-training recipe for the given model. The defaults
// target a single 8-GPU node with context parallelism 2 and a mock data
// module sized to the model's sequence length; performance mode additionally
// enables communication overlap.
func Pretrain(model ModelSpec, opts ...Option) (Recipe, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}

	seqLength := cfg.seqLength
	if seqLength == 0 {
		seqLength = model.MaxSequenceLength
	}
	maxSteps := cfg.maxSteps
	if maxSteps == 0 {
		maxSteps = defaultPretrainSteps
	}

	recipe := Recipe{
		Run:     RunInfo{Name: cfg.name, Task: TaskPretrain},
		Model:   model,
		Trainer: baseTrainer(cfg.nodes, cfg.gpusPerNode, maxSteps, defaultPretrainContextParallel),
		Data: DataConfig{
			Module:          "mock",
			SequenceLength:  seqLength,
			GlobalBatchSize: defaultPretrainGlobalBatch,
			MicroBatchSize:  defaultPretrainMicroBatch,
		},
		Optimizer: cosineAdam(defaultPretrainMaxLR),
		Log:       defaultLog(cfg.dir, cfg.name),
		Resume:    ResumeConfig{ResumeIfExists: true, ResumeIgnoreNoCheckpoint: true},
	}
	recipe.Trainer.Callbacks = []CallbackConfig{
		{Name: CallbackTiming},
		{Name: CallbackFLOPsMeasurement},
	}

	if cfg.performance {
		recipe.Trainer.Callbacks = appendCallback(recipe.Trainer.Callbacks, CallbackConfig{Name: CallbackCommOverlap})
	}

	if err := recipe.Validate(); err != nil {
		return Recipe{}, err
	}
	return recipe, nil
}
