package preview

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	plainPolicyOnce sync.Once
	plainPolicy     *bluemonday.Policy
)

// PlainText strips all HTML elements and attributes from value, keeping only
// text content with entities escaped. Slot values pass through here before
// they reach a report document: they are caller-supplied and may carry
// markup.
//
// Rendered prompt text must not go through PlainText. Markers such as <BOS>
// parse as tags and would be stripped; exact-byte displays are escaped
// instead.
func PlainText(value string) string {
	plainPolicyOnce.Do(func() {
		plainPolicy = bluemonday.StrictPolicy()
	})
	return plainPolicy.Sanitize(value)
}
