// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fsm

// Chain concatenates two FSM fragments, setting front's last state to
// fall through into back's first state (§4.3: "chain(front, back)
// concatenates FSM fragments by setting the last state of front to
// next = 1"). It never mutates the slices passed in.
func Chain(front, back []Node) []Node {
	if len(front) == 0 {
		return back
	}
	if len(back) == 0 {
		return front
	}
	out := make([]Node, len(front), len(front)+len(back))
	copy(out, front)
	out[len(out)-1].Next = intPtr(1)
	return append(out, back...)
}
