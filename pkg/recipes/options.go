package recipes

type settings struct {
	dir         string
	name        string
	nodes       int
	gpusPerNode int
	maxSteps    int
	seqLength   int
	packed      *bool
	performance bool
}

func defaultSettings() settings {
	return settings{
		dir:         "runs",
		name:        "default",
		nodes:       1,
		gpusPerNode: 8,
	}
}

// Option customises a recipe builder.
type Option func(*settings)

// WithDir sets the base directory run artefacts are written under.
func WithDir(dir string) Option {
	return func(s *settings) {
		if dir != "" {
			s.dir = dir
		}
	}
}

// WithName names the run.
func WithName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.name = name
		}
	}
}

// WithNodes sets the number of compute nodes.
func WithNodes(nodes int) Option {
	return func(s *settings) {
		s.nodes = nodes
	}
}

// WithGPUsPerNode sets the device count per node.
func WithGPUsPerNode(gpus int) Option {
	return func(s *settings) {
		s.gpusPerNode = gpus
	}
}

// WithMaxSteps overrides the task's default training step count.
func WithMaxSteps(steps int) Option {
	return func(s *settings) {
		if steps > 0 {
			s.maxSteps = steps
		}
	}
}

// WithSequenceLength overrides the task's default sequence length.
func WithSequenceLength(tokens int) Option {
	return func(s *settings) {
		if tokens > 0 {
			s.seqLength = tokens
		}
	}
}

// WithPackedSequences forces sequence packing on or off for fine-tuning.
// When unset, packing follows performance mode.
func WithPackedSequences(enabled bool) Option {
	return func(s *settings) {
		s.packed = &enabled
	}
}

// WithPerformanceMode enables the optimisations that trade generality for
// throughput.
func WithPerformanceMode(enabled bool) Option {
	return func(s *settings) {
		s.performance = enabled
	}
}
