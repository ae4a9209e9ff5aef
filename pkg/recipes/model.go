package recipes

import "fmt"

// ModelSpec captures the transformer hyperparameters a recipe needs to size
// its data module and estimate compute cost. Checkpoint optionally names the
// pretrained weights fine-tuning starts from.
type ModelSpec struct {
	Name              string `yaml:"name"`
	HiddenSize        int    `yaml:"hidden_size"`
	Layers            int    `yaml:"num_layers"`
	AttentionHeads    int    `yaml:"num_attention_heads"`
	QueryGroups       int    `yaml:"num_query_groups"`
	FFNHiddenSize     int    `yaml:"ffn_hidden_size"`
	VocabularySize    int    `yaml:"vocab_size"`
	MaxSequenceLength int    `yaml:"seq_length"`
	Checkpoint        string `yaml:"checkpoint,omitempty"`
}

// Llama3Spec8B returns the hyperparameters of the Llama 3 8B architecture.
func Llama3Spec8B() ModelSpec {
	return ModelSpec{
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
}

// Validate checks the hyperparameters for values the builders cannot work with.
func (m ModelSpec) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("recipes: model name is required")
	}
	for _, dim := range []struct {
		name  string
		value int
	}{
		{"hidden_size", m.HiddenSize},
		{"num_layers", m.Layers},
		{"num_attention_heads", m.AttentionHeads},
		{"num_query_groups", m.QueryGroups},
		{"ffn_hidden_size", m.FFNHiddenSize},
		{"vocab_size", m.VocabularySize},
		{"seq_length", m.MaxSequenceLength},
	} {
		if dim.value <= 0 {
			return fmt.Errorf("recipes: model %s: %s must be positive, got %d", m.Name, dim.name, dim.value)
		}
	}
	if m.AttentionHeads%m.QueryGroups != 0 {
		return fmt.Errorf("recipes: model %s: num_attention_heads %d is not divisible by num_query_groups %d", m.Name, m.AttentionHeads, m.QueryGroups)
	}
	return nil
}
