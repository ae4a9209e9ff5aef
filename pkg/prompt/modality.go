package prompt

// Modality identifies the payload kind a slot accepts. Only text exists
// today; the type keeps family definitions stable for when non-text payloads
// (audio handles, image references) arrive.
type Modality string

// ModalityText marks a slot that accepts plain text supplied by the caller.
const ModalityText Modality = "text"

// Valid reports whether the modality is one the renderer understands.
func (m Modality) Valid() bool {
	return m == ModalityText
}
