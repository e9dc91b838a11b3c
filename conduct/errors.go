// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conduct

import (
	"errors"
	"fmt"
)

// Sentinel errors for the conductor's two non-business-logic error
// classes (§7 taxonomy 3 & 4): protocol errors (malformed $resume) and
// invariant violations (a bug in the compiled program itself, not in
// the composition author's logic).
var (
	ErrMalformedResume    = errors.New("conduct: malformed $resume")
	ErrStackUnderflow     = errors.New("conduct: exit popped an empty stack")
	ErrRunawayComposition = errors.New("conduct: exceeded the configured maximum step count")
	ErrResumeReused       = errors.New("conduct: resume token already used")
)

// ProtocolError wraps a taxonomy-3/4 failure with an HTTP-flavored Code
// (400 for a malformed resume, 409 for an unknown or already-used resume
// token, 500 for an invariant violation), the
// same Op-wrapped-sentinel shape as compose.BuildError and
// compose/eval.Error (itsneelabh-gomind/core/errors.go's FrameworkError
// pattern).
type ProtocolError struct {
	Op   string
	Code int
	Err  error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("conduct: %s (code %d): %v", e.Op, e.Code, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

func newProtocolError(op string, code int, err error) *ProtocolError {
	return &ProtocolError{Op: op, Code: code, Err: err}
}
