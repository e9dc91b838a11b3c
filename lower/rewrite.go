// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lower

import (
	"code.hybscloud.com/compose"
	"code.hybscloud.com/compose/eval"
)

// RewriteFunc rewrites one enhanced-combinator node into a replacement
// tree built from the registry's other combinators (possibly itself
// still enhanced — Lower stabilizes a root by re-applying rewrites
// until none remain).
type RewriteFunc func(*compose.Composer, compose.Composition) (compose.Composition, error)

// coreRewrites is the canonical rewrite table (§4.2), one entry per
// enhanced (non-primitive) combinator. empty/seq are included too:
// they're user-facing sugar for "sequence", not independent FSM
// primitives (compose/fsm only compiles "sequence").
var coreRewrites = map[string]RewriteFunc{
	"empty":        rewriteEmpty,
	"seq":          rewriteSeq,
	"value":        rewriteValueLiteral,
	"literal":      rewriteValueLiteral,
	"retain":       rewriteRetain,
	"retain_catch": rewriteRetainCatch,
	"if":           rewriteIf,
	"while":        rewriteWhile,
	"dowhile":      rewriteDowhile,
	"repeat":       rewriteRepeat,
	"retry":        rewriteRetry,
}

func rewriteEmpty(c *compose.Composer, _ compose.Composition) (compose.Composition, error) {
	return c.Build("sequence")
}

func rewriteSeq(c *compose.Composer, node compose.Composition) (compose.Composition, error) {
	return c.Build("sequence", componentsAsArgs(node.Components)...)
}

// value(v) / literal(v) => let({value: v}, () => value)
func rewriteValueLiteral(c *compose.Composer, node compose.Composition) (compose.Composition, error) {
	v := node.Arg("value")
	return c.Build("let", map[string]any{"value": v}, readVar("value"))
}

// retain(xs...) => let({params: null}, a => { params = a }, mask(xs...), r => ({params, result: r}))
func rewriteRetain(c *compose.Composer, node compose.Composition) (compose.Composition, error) {
	maskNode, err := c.Build("mask", componentsAsArgs(node.Components)...)
	if err != nil {
		return compose.Composition{}, err
	}
	resultFn := eval.Func{
		Params: []string{"r"},
		Result: ptrExpr(eval.Object(map[string]eval.Expr{
			"params": eval.Var("params"),
			"result": eval.Var("r"),
		})),
	}
	return c.Build("let", map[string]any{"params": nil}, captureInto("params", "a"), maskNode, resultFn)
}

// retain_catch(xs...) =>
//
//	seq(retain(finally(seq(xs...), r => ({result: r}))),
//	    p => ({params: p.params, result: p.result.result}))
func rewriteRetainCatch(c *compose.Composer, node compose.Composition) (compose.Composition, error) {
	seqXs, err := c.Build("seq", componentsAsArgs(node.Components)...)
	if err != nil {
		return compose.Composition{}, err
	}
	wrapResultFn := eval.Func{
		Params: []string{"r"},
		Result: ptrExpr(eval.Object(map[string]eval.Expr{"result": eval.Var("r")})),
	}
	finallyNode, err := c.Build("finally", seqXs, wrapResultFn)
	if err != nil {
		return compose.Composition{}, err
	}
	retainNode, err := c.Build("retain", finallyNode)
	if err != nil {
		return compose.Composition{}, err
	}
	unwrapFn := eval.Func{
		Params: []string{"p"},
		Result: ptrExpr(eval.Object(map[string]eval.Expr{
			"params": eval.Field(eval.Var("p"), "params"),
			"result": eval.Field(eval.Field(eval.Var("p"), "result"), "result"),
		})),
	}
	return c.Build("seq", retainNode, unwrapFn)
}

// if(t, c, a) =>
//
//	let({params: null}, a0 => { params = a0 },
//	    if_nosave(mask(t), seq(() => params, mask(c)), seq(() => params, mask(a))))
//
// The capture/restore dance exists because if_nosave's test runs as an
// ordinary function state: its boolean Result overwrites conductor
// params (§4.4 function handler), clobbering the caller's real params
// before the chosen branch gets to see them. Capturing params before
// the test and restoring them (via "() => params") before running the
// chosen branch is what "preserve caller params around the test" means.
func rewriteIf(c *compose.Composer, node compose.Composition) (compose.Composition, error) {
	test := node.ArgComposition("test")
	consequent := node.ArgComposition("consequent")
	alternate := node.ArgComposition("alternate")

	maskedTest, err := c.Build("mask", test)
	if err != nil {
		return compose.Composition{}, err
	}
	thenBranch, err := restoreThenRun(c, consequent)
	if err != nil {
		return compose.Composition{}, err
	}
	elseBranch, err := restoreThenRun(c, alternate)
	if err != nil {
		return compose.Composition{}, err
	}
	ifNosave, err := c.Build("if_nosave", maskedTest, thenBranch, elseBranch)
	if err != nil {
		return compose.Composition{}, err
	}
	return c.Build("let", map[string]any{"params": nil}, captureInto("params", "a0"), ifNosave)
}

func restoreThenRun(c *compose.Composer, body compose.Composition) (compose.Composition, error) {
	maskedBody, err := c.Build("mask", body)
	if err != nil {
		return compose.Composition{}, err
	}
	return c.Build("seq", readVar("params"), maskedBody)
}

// while(t, b) =>
//
//	let({params: null}, a0 => { params = a0 },
//	    while_nosave(mask(t), seq(() => params, mask(b), a1 => { params = a1 })),
//	    () => params)
//
// Same capture/restore reasoning as if, plus a per-iteration
// re-capture: the body's output becomes the next iteration's restored
// params, and the final params read back out is the loop's result.
func rewriteWhile(c *compose.Composer, node compose.Composition) (compose.Composition, error) {
	test := node.ArgComposition("test")
	body := node.ArgComposition("body")

	maskedTest, err := c.Build("mask", test)
	if err != nil {
		return compose.Composition{}, err
	}
	loopBody, err := restoreRunRecapture(c, body)
	if err != nil {
		return compose.Composition{}, err
	}
	whileNosave, err := c.Build("while_nosave", maskedTest, loopBody)
	if err != nil {
		return compose.Composition{}, err
	}
	return c.Build("let", map[string]any{"params": nil},
		captureInto("params", "a0"), whileNosave, readVar("params"))
}

// dowhile(b, t) is while's mirror: body runs before the first test.
func rewriteDowhile(c *compose.Composer, node compose.Composition) (compose.Composition, error) {
	body := node.ArgComposition("body")
	test := node.ArgComposition("test")

	loopBody, err := restoreRunRecapture(c, body)
	if err != nil {
		return compose.Composition{}, err
	}
	maskedTest, err := c.Build("mask", test)
	if err != nil {
		return compose.Composition{}, err
	}
	dowhileNosave, err := c.Build("dowhile_nosave", loopBody, maskedTest)
	if err != nil {
		return compose.Composition{}, err
	}
	return c.Build("let", map[string]any{"params": nil},
		captureInto("params", "a0"), dowhileNosave, readVar("params"))
}

func restoreRunRecapture(c *compose.Composer, body compose.Composition) (compose.Composition, error) {
	maskedBody, err := c.Build("mask", body)
	if err != nil {
		return compose.Composition{}, err
	}
	return c.Build("seq", readVar("params"), maskedBody, captureInto("params", "a1"))
}

// repeat(n, xs...) => let({count: n}, while(() => count-- > 0, mask(seq(xs...))))
func rewriteRepeat(c *compose.Composer, node compose.Composition) (compose.Composition, error) {
	n := node.Arg("count")
	seqXs, err := c.Build("seq", componentsAsArgs(node.Components)...)
	if err != nil {
		return compose.Composition{}, err
	}
	maskedBody, err := c.Build("mask", seqXs)
	if err != nil {
		return compose.Composition{}, err
	}
	whileNode, err := c.Build("while", postDecGreaterThanZero("count"), maskedBody)
	if err != nil {
		return compose.Composition{}, err
	}
	return c.Build("let", map[string]any{"count": n}, whileNode)
}

// retry(n, xs...) =>
//
//	let({count: n}, p => ({params: p}),
//	    dowhile(finally(p => p.params, mask(retain_catch(xs...))),
//	            p => p.result.error !== undefined && count-- > 0),
//	    p => p.result)
//
// Transcribed directly from §4.2: finally's (body, finalizer) slots
// here carry a trivial unwrap as "body" and the real retried work as
// "finalizer", reusing finally's "both run in sequence regardless of
// error" property purely as a sequencing device (see DESIGN.md).
func rewriteRetry(c *compose.Composer, node compose.Composition) (compose.Composition, error) {
	n := node.Arg("count")
	retainCatchXs, err := c.Build("retain_catch", componentsAsArgs(node.Components)...)
	if err != nil {
		return compose.Composition{}, err
	}
	maskedWork, err := c.Build("mask", retainCatchXs)
	if err != nil {
		return compose.Composition{}, err
	}

	unwrapParamsFn := eval.Func{
		Params: []string{"p"},
		Result: ptrExpr(eval.Field(eval.Var("p"), "params")),
	}
	finallyNode, err := c.Build("finally", unwrapParamsFn, maskedWork)
	if err != nil {
		return compose.Composition{}, err
	}

	testFn := eval.Func{
		Params: []string{"p"},
		Body: []eval.Expr{
			eval.Assign("__old", eval.Var("count")),
			eval.Assign("count", eval.Binary("-", eval.Var("count"), eval.Const(float64(1)))),
		},
		Result: ptrExpr(eval.Binary("&&",
			eval.Binary("!=", eval.Field(eval.Field(eval.Var("p"), "result"), "error"), eval.Const(eval.Undefined)),
			eval.Binary(">", eval.Var("__old"), eval.Const(float64(0))),
		)),
	}
	dowhileNode, err := c.Build("dowhile", finallyNode, testFn)
	if err != nil {
		return compose.Composition{}, err
	}

	primeFn := eval.Func{
		Params: []string{"p"},
		Result: ptrExpr(eval.Object(map[string]eval.Expr{"params": eval.Var("p")})),
	}
	unwrapResultFn := eval.Func{
		Params: []string{"p"},
		Result: ptrExpr(eval.Field(eval.Var("p"), "result")),
	}

	return c.Build("let", map[string]any{"count": n}, primeFn, dowhileNode, unwrapResultFn)
}
