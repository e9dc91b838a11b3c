// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package compose

import (
	"errors"
	"fmt"
)

// Build-time sentinel errors (§7, taxonomy 1). Compare with errors.Is.
var (
	ErrTooManyArguments = errors.New("too many arguments")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInvalidName      = errors.New("invalid name")
	ErrNativeCapture    = errors.New("cannot capture native function")
	ErrAnonymousDeploy  = errors.New("cannot deploy anonymous composition")
)

// BuildError wraps a build-time failure (builder, deserialize, lower,
// compile) with the operation that raised it.
type BuildError struct {
	Op  string
	Err error
}

func (e *BuildError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("compose: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("compose: %v", e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

func newBuildError(op string, err error) *BuildError {
	return &BuildError{Op: op, Err: err}
}
