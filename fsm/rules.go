// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fsm

import (
	"code.hybscloud.com/compose"
	"code.hybscloud.com/compose/eval"
)

// coreRules is the canonical per-combinator compilation table (§4.3),
// one CompileFunc per primitive combinator compose/lower.Lower can
// still produce (sequence, action, function, let, mask, try, finally,
// if_nosave, while_nosave, dowhile_nosave).
var coreRules = map[string]CompileFunc{
	"sequence":       compileSequence,
	"action":         compileAction,
	"function":       compileFunction,
	"let":            compileLet,
	"mask":           compileMask,
	"try":            compileTry,
	"finally":        compileFinally,
	"if_nosave":      compileIfNosave,
	"while_nosave":   compileWhileNosave,
	"dowhile_nosave": compileDowhileNosave,
}

// sequence: [pass@path] ⧺ compile(children).
func compileSequence(c *Compiler, node compose.Composition) ([]Node, error) {
	children, err := c.compileChildren(node.Components)
	if err != nil {
		return nil, err
	}
	return Chain([]Node{{Kind: KindPass, Path: node.Path}}, children), nil
}

// action: a single action state carrying name, async, path.
func compileAction(_ *Compiler, node compose.Composition) ([]Node, error) {
	async, _ := node.Arg("async").(bool)
	return []Node{{Kind: KindAction, Path: node.Path, Name: node.ArgString("name"), Async: async}}, nil
}

// function: a single function state carrying exec.code, path.
func compileFunction(_ *Compiler, node compose.Composition) ([]Node, error) {
	fn := node.ArgObject("function")
	exec, _ := fn["exec"].(map[string]any)
	code, _ := exec["code"].(eval.Func)
	return []Node{{Kind: KindFunction, Path: node.Path, Code: code}}, nil
}

// let: [let(declarations)@path] ⧺ compile(children) ⧺ [exit].
func compileLet(c *Compiler, node compose.Composition) ([]Node, error) {
	return compileLetLike(c, node.Path, node.ArgObject("declarations"), node.Components)
}

// mask: [let(null)@path] ⧺ compile(children) ⧺ [exit] — a mask frame is
// a let with a null mapping, so it skip-counts for scope visibility
// (§4.4.2) without contributing any bindings of its own.
func compileMask(c *Compiler, node compose.Composition) ([]Node, error) {
	return compileLetLike(c, node.Path, nil, node.Components)
}

func compileLetLike(c *Compiler, path string, declarations map[string]any, children []compose.Composition) ([]Node, error) {
	childNodes, err := c.compileChildren(children)
	if err != nil {
		return nil, err
	}
	letFragment := Chain([]Node{{Kind: KindLet, Path: path, Declarations: declarations}}, childNodes)
	return Chain(letFragment, []Node{{Kind: KindExit}}), nil
}

// try: [try@path] ⧺ compile(body) ⧺ [exit], then compile(handler) ⧺
// [pass]. The handler only runs on error: try's catch points at its
// first state, and exit's successor skips past it entirely, landing
// directly on the trailing pass that both paths converge on.
func compileTry(c *Compiler, node compose.Composition) ([]Node, error) {
	main, after, err := compileTryFinallyCore(c, node.Path, node.ArgComposition("body"), node.ArgComposition("handler"))
	if err != nil {
		return nil, err
	}
	exitIdx := len(main) - 1
	main[exitIdx].Next = intPtr(len(after))
	return append(main, after...), nil
}

// finally: structurally identical to try, except both body and
// finalizer always run — exit falls through into the finalizer instead
// of skipping it, and the catch target is the finalizer's first state
// (same target the success path reaches by falling through).
func compileFinally(c *Compiler, node compose.Composition) ([]Node, error) {
	main, after, err := compileTryFinallyCore(c, node.Path, node.ArgComposition("body"), node.ArgComposition("finalizer"))
	if err != nil {
		return nil, err
	}
	return Chain(main, after), nil
}

// compileTryFinallyCore builds the shared try/finally skeleton: [try@path]
// ⧺ compile(body) ⧺ [exit], with try.Catch already pointed at the first
// state of handler-or-finalizer ⧺ [pass]. Callers differ only in how
// they wire the exit's own successor.
func compileTryFinallyCore(c *Compiler, path string, body, handlerOrFinalizer compose.Composition) (main, after []Node, err error) {
	bodyNodes, err := c.Compile(body)
	if err != nil {
		return nil, nil, err
	}
	handlerNodes, err := c.Compile(handlerOrFinalizer)
	if err != nil {
		return nil, nil, err
	}
	tryFragment := Chain([]Node{{Kind: KindTry, Path: path}}, bodyNodes)
	main = Chain(tryFragment, []Node{{Kind: KindExit}})
	main[0].Catch = len(main)
	after = Chain(handlerNodes, []Node{{Kind: KindPass}})
	return main, after, nil
}

// if_nosave:
//
//	[pass@path] ⧺ compile(test) ⧺ [choice{then:1, else:|consequent|+1}]
//	⧺ compile(consequent) ⧺ compile(alternate) ⧺ [pass]
//
// consequent's last state doesn't fall through into alternate — it
// jumps past it to the trailing pass, which is the convergence point
// for both branches.
func compileIfNosave(c *Compiler, node compose.Composition) ([]Node, error) {
	test, err := c.Compile(node.ArgComposition("test"))
	if err != nil {
		return nil, err
	}
	consequent, err := c.Compile(node.ArgComposition("consequent"))
	if err != nil {
		return nil, err
	}
	alternate, err := c.Compile(node.ArgComposition("alternate"))
	if err != nil {
		return nil, err
	}

	choice := Node{Kind: KindChoice, Then: 1, Else: len(consequent) + 1}
	head := Chain([]Node{{Kind: KindPass, Path: node.Path}}, test)
	head = Chain(head, []Node{choice})

	out := append(head, consequent...)
	out[len(out)-1].Next = intPtr(len(alternate) + 1)
	out = append(out, alternate...)
	out = Chain(out, []Node{{Kind: KindPass}})
	return out, nil
}

// while_nosave:
//
//	[pass@path] ⧺ compile(test) ⧺ [choice] ⧺ compile(body) ⧺ [pass]
//
// choice.Then enters body (which immediately follows); choice.Else
// skips body, landing on the trailing pass. body's last state jumps
// back to the test's first state rather than falling through.
func compileWhileNosave(c *Compiler, node compose.Composition) ([]Node, error) {
	test, err := c.Compile(node.ArgComposition("test"))
	if err != nil {
		return nil, err
	}
	body, err := c.Compile(node.ArgComposition("body"))
	if err != nil {
		return nil, err
	}

	choice := Node{Kind: KindChoice, Then: 1, Else: len(body) + 1}
	head := Chain([]Node{{Kind: KindPass, Path: node.Path}}, test)
	head = Chain(head, []Node{choice})

	out := append(head, body...)
	out[len(out)-1].Next = intPtr(-(len(test) + len(body)))
	out = append(out, Node{Kind: KindPass})
	return out, nil
}

// dowhile_nosave:
//
//	[pass@path] ⧺ compile(body) ⧺ compile(test) ⧺ [choice] ⧺ [pass]
//
// body runs before the first test. choice.Then loops back to body's
// first state; choice.Else falls through to the trailing pass.
func compileDowhileNosave(c *Compiler, node compose.Composition) ([]Node, error) {
	body, err := c.Compile(node.ArgComposition("body"))
	if err != nil {
		return nil, err
	}
	test, err := c.Compile(node.ArgComposition("test"))
	if err != nil {
		return nil, err
	}

	head := Chain([]Node{{Kind: KindPass, Path: node.Path}}, body)
	head = Chain(head, test)

	choice := Node{Kind: KindChoice, Then: -(len(body) + len(test)), Else: 1}
	out := Chain(head, []Node{choice})
	out = append(out, Node{Kind: KindPass})
	return out, nil
}
