package families

import "github.com/goliatone/go-promptgen/pkg/prompt"

// Llama 3 control tokens. The tokenizer treats each as a single special
// token; the table emits them as literal text.
const (
	llama3BeginOfText   = "<|begin_of_text|>"
	llama3StartHeaderID = "<|start_header_id|>"
	llama3EndHeaderID   = "<|end_header_id|>"
	llama3EndOfTurnID   = "<|eot_id|>"
)

// Llama3Table returns the prompt table for the Llama 3 chat format. Every
// turn is a header block naming the role followed by the message and an
// end-of-turn token; the preamble emits the begin-of-text token once at the
// start of a conversation. Llama 3 carries its sequence boundaries in these
// control tokens, so none of the templates reference the {bos}/{eos} markers.
func Llama3Table() *prompt.Table {
	return prompt.MustTable(Llama3, map[string]prompt.Definition{
		RolePreamble:  {Template: llama3BeginOfText},
		RoleSystem:    llama3Turn(RoleSystem),
		RoleUser:      llama3Turn(RoleUser),
		RoleAssistant: llama3Turn(RoleAssistant),
	})
}

func llama3Turn(role string) prompt.Definition {
	return prompt.Definition{
		Template: llama3StartHeaderID + role + llama3EndHeaderID + "\n\n{message}" + llama3EndOfTurnID,
		Slots: map[string]prompt.Modality{
			SlotMessage: prompt.ModalityText,
		},
	}
}
