// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fsm

// Verify checks a compiled program for the well-formedness property
// §8.3 testable property 5 names: every relative jump (Next, a choice's
// Then/Else, a try's Catch) must land on an in-range index. It does not
// check the stronger "every let is balanced by an exit" and "every try
// has a reachable catch" halves of that property, which depend on the
// control-flow graph rather than a single offset — those are
// structural guarantees of the compile rules themselves (every
// compileLetLike/compileTryFinallyCore call is paired by construction),
// not something a caller-supplied program needs runtime checking for.
func Verify(nodes []Node) error {
	n := len(nodes)
	inRange := func(idx, rel int) bool {
		target := idx + rel
		return target >= 0 && target < n
	}
	for i, node := range nodes {
		if node.Next != nil && !inRange(i, *node.Next) {
			return newCompileError(string(node.Kind), ErrDanglingJump)
		}
		if node.Kind == KindChoice {
			if !inRange(i, node.Then) || !inRange(i, node.Else) {
				return newCompileError(string(node.Kind), ErrDanglingJump)
			}
		}
		if node.Kind == KindTry && !inRange(i, node.Catch) {
			return newCompileError(string(node.Kind), ErrDanglingJump)
		}
	}
	return nil
}
