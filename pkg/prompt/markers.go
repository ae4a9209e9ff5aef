package prompt

// Sequence markers shared by every model family. Templates reference them
// with the reserved placeholders {bos} and {eos}; Render expands each
// reference to the literal below so downstream tokenizers can map the marker
// onto their own special tokens.
const (
	// BOSMarker is the beginning-of-sequence marker literal.
	BOSMarker = "<BOS>"
	// EOSMarker is the end-of-sequence marker literal.
	EOSMarker = "<EOS>"
)

// Reserved placeholder names. They resolve to markers, never to slots, and
// cannot be declared or supplied by callers.
const (
	bosPlaceholder = "bos"
	eosPlaceholder = "eos"
)

func reservedPlaceholder(name string) bool {
	return name == bosPlaceholder || name == eosPlaceholder
}
