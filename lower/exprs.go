// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lower

import (
	"code.hybscloud.com/compose"
	"code.hybscloud.com/compose/eval"
)

func ptrExpr(e eval.Expr) *eval.Expr { return &e }

// captureInto returns `argName => { varName = argName }`: a function
// that copies its bound parameter into a let-scoped variable, with no
// Result (so conductor params are left unchanged).
func captureInto(varName, argName string) eval.Func {
	return eval.Func{
		Params: []string{argName},
		Body:   []eval.Expr{eval.Assign(varName, eval.Var(argName))},
	}
}

// readVar returns `() => varName`.
func readVar(varName string) eval.Func {
	return eval.Func{Result: ptrExpr(eval.Var(varName))}
}

// postDecGreaterThanZero returns the structured-AST equivalent of the
// JS idiom `varName-- > 0`: snapshot the current value into a scratch
// local, decrement varName, and resolve to whether the snapshot was
// positive. Since the snapshot is never read again once a loop using
// this as its test exits, decrementing varName unconditionally here is
// behaviorally identical to the JS short-circuited original even when
// this expression is combined with `&&` (retry's test in rewrite.go
// inlines the same two assignments ahead of an `&&`).
func postDecGreaterThanZero(varName string) eval.Func {
	return eval.Func{
		Body: []eval.Expr{
			eval.Assign("__old", eval.Var(varName)),
			eval.Assign(varName, eval.Binary("-", eval.Var(varName), eval.Const(float64(1)))),
		},
		Result: ptrExpr(eval.Binary(">", eval.Var("__old"), eval.Const(float64(0)))),
	}
}

// componentsAsArgs widens a Components slice into the []any shape
// Composer.Build's variadic args expect.
func componentsAsArgs(components []compose.Composition) []any {
	args := make([]any, len(components))
	for i, c := range components {
		args[i] = c
	}
	return args
}
