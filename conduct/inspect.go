// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conduct

// inspect is the error/boxing pass (§4.4.1), run after every state that
// may change params:
//  1. A non-object params is boxed to {value: params}.
//  2. If params.error is present, every other field is discarded and the
//     stack is unwound looking for a catch-frame: non-catch frames are
//     popped and discarded; the first catch-frame found is itself popped
//     and its Catch index returned as the new state.
//
// hadError reports whether params carried an error at all; when it did
// but no catch-frame was found, the composition terminates (the caller
// should return the boxed {error: ...} verbatim, not keep running).
func inspect(params any, stack []Frame) (newParams any, newStack []Frame, catchIdx int, hadError, foundCatch bool) {
	box, ok := params.(map[string]any)
	if !ok {
		box = map[string]any{"value": params}
	}

	errVal, hasErr := box["error"]
	if !hasErr {
		return box, stack, 0, false, false
	}

	boxed := map[string]any{"error": errVal}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.IsCatch {
			return boxed, stack, top.Catch, true, true
		}
	}
	return boxed, stack, 0, true, false
}
