// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fsm

import "errors"

// ErrUnknownCombinator is returned when Compile meets a node type with
// no registered compile rule — typically an enhanced combinator that
// reached the compiler without first going through compose/lower.
var ErrUnknownCombinator = errors.New("fsm: no compile rule for this combinator")

// ErrDanglingJump is returned by Verify (§8.3 testable property 5) when
// a relative jump would land outside the compiled program.
var ErrDanglingJump = errors.New("fsm: relative jump out of range")

// CompileError wraps a compile-time failure with the combinator type
// that triggered it, the same Op-wrapped-sentinel shape compose.BuildError
// and compose/eval.Error already use.
type CompileError struct {
	Op  string
	Err error
}

func (e *CompileError) Error() string { return "fsm: " + e.Op + ": " + e.Err.Error() }
func (e *CompileError) Unwrap() error { return e.Err }

func newCompileError(op string, err error) *CompileError {
	return &CompileError{Op: op, Err: err}
}
