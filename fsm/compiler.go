// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fsm

import "code.hybscloud.com/compose"

// CompileFunc compiles one composition node (its own Components/Args
// already available on the node) into a self-contained FSM fragment.
type CompileFunc func(*Compiler, compose.Composition) ([]Node, error)

// Compiler translates a lowered, labeled compose.Composition tree into
// a flat []Node program. It only knows how to compile primitive
// combinators (§4.1's Since-less set) — run compose/lower.Lower first.
type Compiler struct {
	Registry *compose.Registry
	rules    map[string]CompileFunc
}

// NewCompiler returns a Compiler seeded with the canonical compile
// rules (§4.3).
func NewCompiler(reg *compose.Registry) *Compiler {
	c := &Compiler{Registry: reg, rules: make(map[string]CompileFunc, len(coreRules))}
	for name, fn := range coreRules {
		c.rules[name] = fn
	}
	return c
}

// RegisterRule merges an additional compile rule (§6.4's `compiler()`
// plugin hook). Mirrors Registry.Register's contract: a name that's
// already registered is left untouched.
func (c *Compiler) RegisterRule(name string, fn CompileFunc) {
	if _, exists := c.rules[name]; exists {
		return
	}
	c.rules[name] = fn
}

// Compile dispatches on tree.Type to the matching rule.
func (c *Compiler) Compile(tree compose.Composition) ([]Node, error) {
	fn, ok := c.rules[tree.Type]
	if !ok {
		return nil, newCompileError(tree.Type, ErrUnknownCombinator)
	}
	return fn(c, tree)
}

// compileChildren compiles a variadic combinator's ordered children,
// reducing them left-to-right with Chain. An empty child list compiles
// to a single pass (§4.3's "Ordering & tie-breaks").
func (c *Compiler) compileChildren(children []compose.Composition) ([]Node, error) {
	if len(children) == 0 {
		return []Node{{Kind: KindPass}}, nil
	}
	out, err := c.Compile(children[0])
	if err != nil {
		return nil, err
	}
	for _, child := range children[1:] {
		nodes, err := c.Compile(child)
		if err != nil {
			return nil, err
		}
		out = Chain(out, nodes)
	}
	return out, nil
}
