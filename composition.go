// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package compose implements the combinator registry, AST, and builder
// surface for compositions: tagged trees of named combinators (sequence,
// if, let, action, function, ...) that the lower and fsm packages turn
// into an executable FSM for compose/conduct.
package compose

import "encoding/json"

// Composition is a single AST node. Its Type names the combinator that
// produced it; Components holds ordered children for variadic
// combinators; Args holds the combinator's declared named-argument
// slots, each a string, float64, map[string]any, or a nested
// Composition (for composition-typed slots). Path is an optional
// JSON-pointer-like label assigned by Label.
type Composition struct {
	Type       string
	Components []Composition
	Args       map[string]any
	Path       string
}

// Arg returns the raw value bound to a named argument slot, or nil if
// the slot was optional and omitted.
func (c Composition) Arg(name string) any {
	return c.Args[name]
}

// HasArg reports whether a named argument slot was populated.
func (c Composition) HasArg(name string) bool {
	_, ok := c.Args[name]
	return ok
}

// ArgString reads a string-typed argument slot.
func (c Composition) ArgString(name string) string {
	s, _ := c.Args[name].(string)
	return s
}

// ArgNumber reads a number-typed argument slot.
func (c Composition) ArgNumber(name string) float64 {
	n, _ := c.Args[name].(float64)
	return n
}

// ArgObject reads an object-typed argument slot.
func (c Composition) ArgObject(name string) map[string]any {
	m, _ := c.Args[name].(map[string]any)
	return m
}

// ArgComposition reads a composition-typed argument slot. Every
// composition-typed slot is always populated (task(nil) yields empty()),
// so, like the other accessors, this returns no ok-boolean.
func (c Composition) ArgComposition(name string) Composition {
	child, _ := c.Args[name].(Composition)
	return child
}

// WithArg returns a copy of c with name bound to v, used by rewrites
// that need to replace a single slot without reconstructing the whole
// node by hand.
func (c Composition) WithArg(name string, v any) Composition {
	args := make(map[string]any, len(c.Args)+1)
	for k, val := range c.Args {
		args[k] = val
	}
	args[name] = v
	c.Args = args
	return c
}

// toValue flattens a Composition into a plain map/slice tree suitable
// for json.Marshal or yaml.Marshal: {"type": ..., "path": ..., "components": [...], <named args>...}.
func (c Composition) toValue() any {
	m := make(map[string]any, len(c.Args)+3)
	m["type"] = c.Type
	if c.Path != "" {
		m["path"] = c.Path
	}
	if len(c.Components) > 0 {
		comps := make([]any, len(c.Components))
		for i, child := range c.Components {
			comps[i] = child.toValue()
		}
		m["components"] = comps
	}
	for k, v := range c.Args {
		if child, ok := v.(Composition); ok {
			m[k] = child.toValue()
		} else {
			m[k] = v
		}
	}
	return m
}

// MarshalJSON renders the node as {type, path?, components?, ...named args}
// per §6.3: a composition is representable as JSON with children as
// nested objects.
func (c Composition) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.toValue())
}
