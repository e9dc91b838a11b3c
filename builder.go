// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package compose

import "code.hybscloud.com/compose/eval"

// Composer builds AST nodes via combinator factories, enforcing the
// builder contract (§4.1): positional-argument-count discipline,
// per-slot type coercion, and task() coercion for composition-typed
// slots and variadic components.
type Composer struct {
	Registry *Registry
}

// NewComposer returns a Composer bound to reg. Callers typically pass
// DefaultRegistry() plus any plugin-registered combinators.
func NewComposer(reg *Registry) *Composer {
	return &Composer{Registry: reg}
}

// IsCallable reports whether x is an inline function body rather than a
// plain value — i.e. an eval.Func AST, the structured stand-in for a
// JavaScript-style closure literal in this rewrite (see SPEC_FULL.md's
// inline-function Open Question).
func IsCallable(x any) bool {
	_, ok := x.(eval.Func)
	return ok
}

// task coerces x into a Composition per §4.1: nil -> empty(); an
// existing Composition -> itself; a callable -> function(x); a string
// -> action(x); anything else is Invalid argument.
func (c *Composer) task(x any) (Composition, error) {
	switch v := x.(type) {
	case nil:
		return c.Build("empty")
	case Composition:
		return v, nil
	case eval.Func:
		return c.Function(v)
	case string:
		return c.Action(v, nil)
	default:
		return Composition{}, ErrInvalidArgument
	}
}

// Build constructs a node for the named combinator, applying the
// builder contract: positional args map onto the descriptor's declared
// slots in order, then (for variadic combinators) any remaining
// positional args are coerced via task() into Components.
func (c *Composer) Build(name string, args ...any) (Composition, error) {
	desc, ok := c.Registry.Get(name)
	if !ok {
		return Composition{}, newBuildError(name, ErrInvalidName)
	}
	if !desc.Variadic && len(args) > len(desc.Args) {
		return Composition{}, newBuildError(name, ErrTooManyArguments)
	}

	node := Composition{Type: name, Args: make(map[string]any, len(desc.Args))}
	i := 0
	for _, slot := range desc.Args {
		var raw any
		if i < len(args) {
			raw = args[i]
		}
		i++
		val, err := c.coerceSlot(slot, raw)
		if err != nil {
			return Composition{}, newBuildError(name+"."+slot.Name, err)
		}
		if val != nil {
			node.Args[slot.Name] = val
		}
	}

	if desc.Variadic {
		components := make([]Composition, 0, len(args)-i)
		for ; i < len(args); i++ {
			child, err := c.task(args[i])
			if err != nil {
				return Composition{}, newBuildError(name, err)
			}
			components = append(components, child)
		}
		node.Components = components
	}

	return node, nil
}

// coerceSlot applies the per-slot-type rules from the builder
// contract's step 2.
func (c *Composer) coerceSlot(slot ArgSlot, raw any) (any, error) {
	if slot.Type == ArgComposition {
		child, err := c.task(raw)
		if err != nil {
			return nil, err
		}
		return child, nil
	}
	if slot.Type == ArgValue {
		if IsCallable(raw) {
			return nil, ErrInvalidArgument
		}
		if raw == nil {
			return map[string]any{}, nil
		}
		return raw, nil
	}

	if raw == nil {
		if slot.Optional {
			return nil, nil
		}
		return nil, ErrInvalidArgument
	}

	switch slot.Type {
	case ArgObject:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, ErrInvalidArgument
		}
		return m, nil
	case ArgString:
		s, ok := raw.(string)
		if !ok {
			return nil, ErrInvalidArgument
		}
		return s, nil
	case ArgNumber:
		switch n := raw.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		default:
			return nil, ErrInvalidArgument
		}
	default:
		return nil, ErrInvalidArgument
	}
}

// Function builds a `function` node wrapping an inline function body.
// The teacher's source language stringifies a closure and re-evaluates
// it later; here the body already arrives as a structured, serializable
// eval.Func AST, so there is no stringify/native-code-marker check to
// perform — the exec descriptor just carries the AST directly.
func (c *Composer) Function(f eval.Func) (Composition, error) {
	return Composition{
		Type: "function",
		Args: map[string]any{
			"function": map[string]any{
				"exec": map[string]any{
					"kind": "ast:v1",
					"code": f,
				},
			},
		},
	}, nil
}

// Action builds an `action` node. name is parsed per §6.2; options, if
// given, may carry an `async` flag that is propagated onto the node.
// Loading executable code from options.sequence/options.filename/
// options.action is action deployment/packaging machinery, out of
// scope per spec.md §1's Non-goals — options are retained verbatim for
// informational/debugging purposes but are not interpreted further.
func (c *Composer) Action(name string, options map[string]any) (Composition, error) {
	qualified, err := ParseActionName(name)
	if err != nil {
		return Composition{}, newBuildError("action", err)
	}
	node := Composition{Type: "action", Args: map[string]any{"name": qualified}}
	if options != nil {
		node.Args["options"] = options
		if async, ok := options["async"].(bool); ok {
			node.Args["async"] = async
		}
	}
	return node, nil
}

// Composition builds a `composition` node: a named, deployable wrapper
// around body. name is parsed with the same grammar as action names;
// body is coerced via task().
func (c *Composer) Composition(name string, body any, options map[string]any) (Composition, error) {
	if name == "" {
		return Composition{}, newBuildError("composition", ErrAnonymousDeploy)
	}
	qualified, err := ParseActionName(name)
	if err != nil {
		return Composition{}, newBuildError("composition", err)
	}
	bodyNode, err := c.task(body)
	if err != nil {
		return Composition{}, newBuildError("composition", err)
	}
	node := Composition{Type: "composition", Args: map[string]any{
		"name":        qualified,
		"composition": bodyNode,
	}}
	if options != nil {
		if async, ok := options["async"].(bool); ok {
			node.Args["async"] = async
		}
	}
	return node, nil
}
