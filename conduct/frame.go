// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conduct

import "encoding/json"

// Frame is one entry on the conductor's runtime stack (§4.4): either a
// let-frame (IsCatch == false; Let == nil marks a mask frame) or a
// catch-frame pushed by try/finally (IsCatch == true, Catch holds the
// absolute state index to jump to on error). A single Go struct with a
// discriminant, rather than two frame types behind an interface, keeps
// $resume.stack (a plain JSON array the host may persist) trivial to
// (de)serialize.
type Frame struct {
	IsCatch bool
	Let     map[string]any
	Catch   int
}

// MarshalJSON renders a Frame as the literal object shape §4.4
// describes: {"let": <map-or-null>} or {"catch": <index>}.
func (f Frame) MarshalJSON() ([]byte, error) {
	if f.IsCatch {
		return json.Marshal(map[string]any{"catch": f.Catch})
	}
	return json.Marshal(map[string]any{"let": f.Let})
}

// UnmarshalJSON accepts either shape; anything else is malformed.
func (f *Frame) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return ErrMalformedResume
	}
	if c, ok := raw["catch"]; ok {
		var n int
		if err := json.Unmarshal(c, &n); err != nil {
			return ErrMalformedResume
		}
		*f = Frame{IsCatch: true, Catch: n}
		return nil
	}
	if l, ok := raw["let"]; ok {
		if string(l) == "null" {
			*f = Frame{}
			return nil
		}
		var m map[string]any
		if err := json.Unmarshal(l, &m); err != nil {
			return ErrMalformedResume
		}
		*f = Frame{Let: m}
		return nil
	}
	return ErrMalformedResume
}

// deepCopyValue clones a JSON-shaped value (map[string]any / []any /
// scalars) so frames and params never alias a caller's backing storage
// across a let-push or a terminal return.
func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = deepCopyValue(vv)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, vv := range t {
			s[i] = deepCopyValue(vv)
		}
		return s
	default:
		return v
	}
}

// visibleFrame pairs a let-frame's bindings with its index on the
// stack, so writeVisibleEnv knows which backing Frame to mutate.
type visibleFrame struct {
	stackIndex int
	let        map[string]any
}

// visibleEnv computes the collapsed variable environment for a function
// state per §4.4.2: walk the stack top-to-bottom (innermost first),
// skipping catch-frames entirely, counting a mask (Let == nil) against a
// skip counter, and including a real let-frame only once the counter has
// been exhausted. The result is the shallow merge of included frames
// reduced outermost-to-innermost (inner shadows outer).
func visibleEnv(stack []Frame) (env map[string]any, included []visibleFrame) {
	n := 0
	for i := len(stack) - 1; i >= 0; i-- {
		f := stack[i]
		if f.IsCatch {
			continue
		}
		if f.Let == nil {
			n++
			continue
		}
		if n == 0 {
			included = append(included, visibleFrame{stackIndex: i, let: f.Let})
		} else {
			n--
		}
	}
	env = make(map[string]any, len(included))
	for i := len(included) - 1; i >= 0; i-- {
		for k, v := range included[i].let {
			env[k] = v
		}
	}
	return env, included
}

// writeVisibleEnv propagates a function's final local values back into
// the innermost visible frame that already defines each symbol (§4.4.2:
// "only the innermost visible binding of each symbol is updated").
// Symbols with no owning frame (a function's own formal parameter, or a
// scratch local it introduced and never had a frame to begin with) are
// left to vanish with the function call, matching ordinary lexical-scope
// behavior for a variable that was never declared in an enclosing let.
func writeVisibleEnv(stack []Frame, included []visibleFrame, finalEnv map[string]any) {
	for k, v := range finalEnv {
		for _, vf := range included {
			if _, owns := vf.let[k]; owns {
				stack[vf.stackIndex].Let[k] = deepCopyValue(v)
				break
			}
		}
	}
}
