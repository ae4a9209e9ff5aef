package compose

import "errors"

// ErrAborted is returned when the user interrupts an interactive session,
// typically with Ctrl+C. Callers usually treat it as a clean exit rather
// than a failure.
var ErrAborted = errors.New("compose: aborted")
