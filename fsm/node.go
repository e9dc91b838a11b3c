// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fsm compiles a lowered, labeled compose.Composition tree into a
// flat list of Nodes addressed by relative jumps (§4.3). compose/conduct
// executes the result; compose/fsm only builds it.
package fsm

import "code.hybscloud.com/compose/eval"

// Kind names an FSM state's handler in compose/conduct (§4.4).
type Kind string

const (
	// KindPass is a no-op marker, used as a combinator's head (to carry a
	// Path) or as a trailing convergence point after a branch.
	KindPass Kind = "pass"
	// KindEmpty is a no-op that additionally runs the error/boxing pass
	// (§4.4.1). No core compile rule emits it — it exists for plugin
	// compile rules (§6.4) that want an inspect point without a pass's
	// "no semantic effect at all" behavior.
	KindEmpty Kind = "empty"
	// KindAction invokes a named action, synchronously or fire-and-forget.
	KindAction Kind = "action"
	// KindFunction evaluates an inline function body against the
	// collapsed variable environment.
	KindFunction Kind = "function"
	// KindLet pushes a variable-scope frame. Declarations == nil marks a
	// mask frame ("let(null)"): a real frame for scope-visibility
	// skip-counting purposes, but empty of bindings.
	KindLet Kind = "let"
	// KindExit pops the top stack frame.
	KindExit Kind = "exit"
	// KindTry pushes a catch frame pointing at a handler/finalizer's
	// first state.
	KindTry Kind = "try"
	// KindChoice branches on params.value, relative to its own index.
	KindChoice Kind = "choice"
)

// Node is one FSM state. Fields irrelevant to Kind are left zero. Next,
// when non-nil, is a relative offset from this node's own index to its
// default successor (§4.4 "Default successor"); nil means terminal.
type Node struct {
	Kind Kind
	Path string
	Next *int

	// action
	Name  string
	Async bool

	// function
	Code eval.Func

	// let (mask: Declarations == nil)
	Declarations map[string]any

	// try / finally: relative offset to the first handler/finalizer state.
	Catch int

	// choice: relative offsets to the branch taken when params.value is
	// true (Then) or false (Else).
	Then int
	Else int
}

func intPtr(i int) *int { return &i }
