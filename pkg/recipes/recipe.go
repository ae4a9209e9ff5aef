package recipes

import (
	"fmt"
	"path"

	"gopkg.in/yaml.v3"
)

// Tasks a recipe can describe.
const (
	TaskPretrain = "pretrain"
	TaskFinetune = "finetune"
)

// Callback names recognised by the trainer configuration.
const (
	CallbackTiming            = "timing"
	CallbackDeltaTiming       = "delta_timing"
	CallbackFLOPsMeasurement  = "flops_measurement"
	CallbackCommOverlap       = "megatron_comm_overlap"
	CallbackGarbageCollection = "garbage_collection"
)

// Recipe is a complete, serialisable training run configuration.
type Recipe struct {
	Run       RunInfo         `yaml:"run"`
	Model     ModelSpec       `yaml:"model"`
	Trainer   TrainerConfig   `yaml:"trainer"`
	Data      DataConfig      `yaml:"data"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	PEFT      *LoRAConfig     `yaml:"peft,omitempty"`
	Restore   *RestoreConfig  `yaml:"restore,omitempty"`
	Log       LogConfig       `yaml:"log"`
	Resume    ResumeConfig    `yaml:"resume"`
}

// RunInfo names the run and the task it performs.
type RunInfo struct {
	Name string `yaml:"name"`
	Task string `yaml:"task"`
}

// TrainerConfig carries the trainer loop settings and the distributed
// strategy.
type TrainerConfig struct {
	Accelerator           string           `yaml:"accelerator"`
	Nodes                 int              `yaml:"num_nodes"`
	GPUsPerNode           int              `yaml:"devices"`
	MaxSteps              int              `yaml:"max_steps"`
	AccumulateGradBatches int              `yaml:"accumulate_grad_batches"`
	LimitValBatches       int              `yaml:"limit_val_batches"`
	LimitTestBatches      int              `yaml:"limit_test_batches"`
	LogEveryNSteps        int              `yaml:"log_every_n_steps"`
	ValCheckInterval      int              `yaml:"val_check_interval"`
	Precision             string           `yaml:"precision"`
	Strategy              StrategyConfig   `yaml:"strategy"`
	Callbacks             []CallbackConfig `yaml:"callbacks,omitempty"`
}

// StrategyConfig describes how the model is sharded across devices.
type StrategyConfig struct {
	TensorParallel         int       `yaml:"tensor_model_parallel_size"`
	PipelineParallel       int       `yaml:"pipeline_model_parallel_size"`
	VirtualPipeline        int       `yaml:"virtual_pipeline_model_parallel_size,omitempty"`
	ContextParallel        int       `yaml:"context_parallel_size"`
	SequenceParallel       bool      `yaml:"sequence_parallel"`
	GradientAsBucketView   bool      `yaml:"gradient_as_bucket_view"`
	AsyncCheckpointSave    bool      `yaml:"ckpt_async_save"`
	ParallelCheckpointLoad bool      `yaml:"ckpt_parallel_load"`
	DDP                    DDPConfig `yaml:"ddp"`
}

// DDPConfig tunes gradient reduction behaviour.
type DDPConfig struct {
	CheckForNaNInGrad   bool `yaml:"check_for_nan_in_grad"`
	GradReduceInFP32    bool `yaml:"grad_reduce_in_fp32"`
	OverlapGradReduce   bool `yaml:"overlap_grad_reduce"`
	OverlapParamGather  bool `yaml:"overlap_param_gather"`
	AverageInCollective bool `yaml:"average_in_collective"`
}

// CallbackConfig names a trainer callback. Garbage collection carries its
// train and validation intervals; other callbacks take no parameters.
type CallbackConfig struct {
	Name          string `yaml:"name"`
	TrainInterval int    `yaml:"train_interval,omitempty"`
	ValInterval   int    `yaml:"val_interval,omitempty"`
}

// DataConfig describes the data module and batch geometry.
type DataConfig struct {
	Module          string              `yaml:"module"`
	SequenceLength  int                 `yaml:"seq_length"`
	GlobalBatchSize int                 `yaml:"global_batch_size"`
	MicroBatchSize  int                 `yaml:"micro_batch_size"`
	PackedSequence  *PackedSequenceSpec `yaml:"packed_sequence,omitempty"`
}

// PackedSequenceSpec enables packing fine-tuning examples into fixed-size
// sequences.
type PackedSequenceSpec struct {
	Size           int  `yaml:"size"`
	PadToMaxLength bool `yaml:"pad_to_max_length"`
}

// OptimizerConfig is a distributed fused Adam setup with cosine annealing.
type OptimizerConfig struct {
	Name        string  `yaml:"name"`
	LRSchedule  string  `yaml:"lr_schedule"`
	MaxLR       float64 `yaml:"max_lr"`
	MinLR       float64 `yaml:"min_lr"`
	WarmupSteps int     `yaml:"warmup_steps"`
	WeightDecay float64 `yaml:"weight_decay"`
	Beta1       float64 `yaml:"beta1"`
	Beta2       float64 `yaml:"beta2"`
	ClipGrad    float64 `yaml:"clip_grad"`
}

// LoRAConfig describes low-rank adapters attached for fine-tuning.
type LoRAConfig struct {
	Dim           int      `yaml:"dim"`
	Alpha         int      `yaml:"alpha"`
	TargetModules []string `yaml:"target_modules"`
}

// RestoreConfig points at the pretrained checkpoint a fine-tuning run starts
// from.
type RestoreConfig struct {
	Path string `yaml:"path"`
}

// LogConfig lays out where run artefacts land.
type LogConfig struct {
	Dir            string `yaml:"dir"`
	Name           string `yaml:"name"`
	TensorBoardDir string `yaml:"tensorboard_dir"`
}

// ResumeConfig controls continuing from an existing run directory.
type ResumeConfig struct {
	ResumeIfExists           bool `yaml:"resume_if_exists"`
	ResumeIgnoreNoCheckpoint bool `yaml:"resume_ignore_no_checkpoint"`
}

// EncodeYAML serialises the recipe.
func (r Recipe) EncodeYAML() ([]byte, error) {
	out, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("recipes: encode %s: %w", r.Run.Name, err)
	}
	return out, nil
}

// Validate checks the recipe for geometry the runtime would reject.
func (r Recipe) Validate() error {
	if r.Run.Name == "" {
		return fmt.Errorf("recipes: run name is required")
	}
	if r.Run.Task != TaskPretrain && r.Run.Task != TaskFinetune {
		return fmt.Errorf("recipes: unknown task %q", r.Run.Task)
	}
	if err := r.Model.Validate(); err != nil {
		return err
	}

	t := r.Trainer
	if t.Nodes <= 0 || t.GPUsPerNode <= 0 {
		return fmt.Errorf("recipes: %s: num_nodes and devices must be positive", r.Run.Name)
	}
	if t.MaxSteps <= 0 {
		return fmt.Errorf("recipes: %s: max_steps must be positive", r.Run.Name)
	}
	s := t.Strategy
	if s.TensorParallel < 1 || s.PipelineParallel < 1 || s.ContextParallel < 1 {
		return fmt.Errorf("recipes: %s: parallelism degrees must be at least 1", r.Run.Name)
	}
	world := t.Nodes * t.GPUsPerNode
	modelParallel := s.TensorParallel * s.PipelineParallel * s.ContextParallel
	if world%modelParallel != 0 {
		return fmt.Errorf("recipes: %s: world size %d is not divisible by tensor*pipeline*context parallelism %d", r.Run.Name, world, modelParallel)
	}

	d := r.Data
	if d.SequenceLength <= 0 || d.GlobalBatchSize <= 0 || d.MicroBatchSize <= 0 {
		return fmt.Errorf("recipes: %s: data geometry must be positive", r.Run.Name)
	}
	dataParallel := world / modelParallel
	if d.GlobalBatchSize%(d.MicroBatchSize*dataParallel) != 0 {
		return fmt.Errorf("recipes: %s: global_batch_size %d is not divisible by micro_batch_size %d * data parallel %d", r.Run.Name, d.GlobalBatchSize, d.MicroBatchSize, dataParallel)
	}
	if d.PackedSequence != nil && d.PackedSequence.Size <= 0 {
		return fmt.Errorf("recipes: %s: packed sequence size must be positive", r.Run.Name)
	}

	o := r.Optimizer
	if o.MaxLR <= 0 {
		return fmt.Errorf("recipes: %s: max_lr must be positive", r.Run.Name)
	}
	if o.MinLR > o.MaxLR {
		return fmt.Errorf("recipes: %s: min_lr %g exceeds max_lr %g", r.Run.Name, o.MinLR, o.MaxLR)
	}

	if r.PEFT != nil {
		if r.PEFT.Dim <= 0 || r.PEFT.Alpha <= 0 {
			return fmt.Errorf("recipes: %s: lora dim and alpha must be positive", r.Run.Name)
		}
		if len(r.PEFT.TargetModules) == 0 {
			return fmt.Errorf("recipes: %s: lora declares no target modules", r.Run.Name)
		}
	}

	return nil
}

// baseTrainer returns the trainer shared by the builders: bf16 mixed
// precision, asynchronous checkpointing, and overlap-everything gradient
// reduction.
func baseTrainer(nodes, gpusPerNode, maxSteps, contextParallel int) TrainerConfig {
	return TrainerConfig{
		Accelerator:           "gpu",
		Nodes:                 nodes,
		GPUsPerNode:           gpusPerNode,
		MaxSteps:              maxSteps,
		AccumulateGradBatches: 1,
		LimitValBatches:       32,
		LimitTestBatches:      50,
		LogEveryNSteps:        10,
		ValCheckInterval:      2000,
		Precision:             "bf16-mixed",
		Strategy: StrategyConfig{
			TensorParallel:         1,
			PipelineParallel:       1,
			ContextParallel:        contextParallel,
			SequenceParallel:       false,
			GradientAsBucketView:   true,
			AsyncCheckpointSave:    true,
			ParallelCheckpointLoad: true,
			DDP: DDPConfig{
				CheckForNaNInGrad:   true,
				GradReduceInFP32:    true,
				OverlapGradReduce:   true,
				OverlapParamGather:  true,
				AverageInCollective: true,
			},
		},
	}
}

// cosineAdam returns the distributed fused Adam configuration used across
// recipes. The floor learning rate follows the usual one-tenth convention.
func cosineAdam(maxLR float64) OptimizerConfig {
	return OptimizerConfig{
		Name:        "distributed_fused_adam",
		LRSchedule:  "cosine_annealing",
		MaxLR:       maxLR,
		MinLR:       maxLR / 10,
		WarmupSteps: 2000,
		WeightDecay: 0.1,
		Beta1:       0.9,
		Beta2:       0.95,
		ClipGrad:    1.0,
	}
}

func defaultLog(dir, name string) LogConfig {
	runDir := path.Join(dir, name)
	return LogConfig{
		Dir:            runDir,
		Name:           name,
		TensorBoardDir: path.Join(runDir, "tensorboard"),
	}
}

// appendCallback adds cb unless a callback with the same name is already
// present.
func appendCallback(callbacks []CallbackConfig, cb CallbackConfig) []CallbackConfig {
	for _, existing := range callbacks {
		if existing.Name == cb.Name {
			return callbacks
		}
	}
	return append(callbacks, cb)
}
