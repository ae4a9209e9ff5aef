package families

import "github.com/goliatone/go-promptgen/pkg/prompt"

// Llama2Table returns the prompt table for the Llama 2 chat format. System
// text and the first user message share a single [INST] block with the system
// part wrapped in <<SYS>> delimiters; instruction blocks open with the
// beginning-of-sequence marker and assistant turns close with the
// end-of-sequence marker.
func Llama2Table() *prompt.Table {
	return prompt.MustTable(Llama2, map[string]prompt.Definition{
		RoleSystemAndUser: {
			Template: "{bos}[INST] <<SYS>>\n{system}\n<</SYS>>\n\n{message} [/INST]",
			Slots: map[string]prompt.Modality{
				SlotSystem:  prompt.ModalityText,
				SlotMessage: prompt.ModalityText,
			},
		},
		RoleUser: {
			Template: "{bos}[INST] {message} [/INST]",
			Slots: map[string]prompt.Modality{
				SlotMessage: prompt.ModalityText,
			},
		},
		RoleAssistant: {
			Template: "{message} {eos}",
			Slots: map[string]prompt.Modality{
				SlotMessage: prompt.ModalityText,
			},
		},
	})
}
