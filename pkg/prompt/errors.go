package prompt

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a request for a model family the registry does
// not know about. Known carries the registered family names sorted
// alphabetically so callers can surface them.
type ConfigurationError struct {
	Family string
	Known  []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("prompt: unknown model family %q (no families registered)", e.Family)
	}
	return fmt.Sprintf("prompt: unknown model family %q (known families: %s)", e.Family, strings.Join(e.Known, ", "))
}

// UnknownRoleError reports a render request for a role the family's table
// does not define. Roles carries the defined role names sorted alphabetically.
type UnknownRoleError struct {
	Family string
	Role   string
	Roles  []string
}

func (e *UnknownRoleError) Error() string {
	return fmt.Sprintf("prompt: family %q defines no role %q (roles: %s)", e.Family, e.Role, strings.Join(e.Roles, ", "))
}

// MissingSlotError reports a declared slot the caller supplied no value for.
type MissingSlotError struct {
	Family string
	Role   string
	Slot   string
}

func (e *MissingSlotError) Error() string {
	return fmt.Sprintf("prompt: family %q role %q: missing value for slot %q", e.Family, e.Role, e.Slot)
}

// UnexpectedSlotError reports a supplied value that matches no declared slot.
type UnexpectedSlotError struct {
	Family string
	Role   string
	Slot   string
}

func (e *UnexpectedSlotError) Error() string {
	return fmt.Sprintf("prompt: family %q role %q: unexpected slot %q", e.Family, e.Role, e.Slot)
}

// MalformedTemplateError reports a template definition whose source string
// and declared slots disagree. It is produced while a table is constructed,
// never during rendering.
type MalformedTemplateError struct {
	Family string
	Role   string
	Reason string
}

func (e *MalformedTemplateError) Error() string {
	return fmt.Sprintf("prompt: family %q role %q: malformed template: %s", e.Family, e.Role, e.Reason)
}
