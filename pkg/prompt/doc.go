// Package prompt renders chat-style language model prompts from declarative
// template tables. A table maps conversation roles to templates for one model
// family; templates are parsed and validated when the table is constructed,
// so rendering is pure string assembly with no I/O and no hidden state.
//
// Templates reference caller-supplied values with {name} placeholders and the
// fixed sequence markers with the reserved placeholders {bos} and {eos}.
// Every placeholder must name a declared slot, every declared slot must be
// used, and renders fail loudly when the supplied values do not match the
// declaration exactly. Failures carry typed errors so callers can branch on
// the cause with errors.As.
package prompt
