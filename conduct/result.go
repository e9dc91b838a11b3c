// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conduct

// ResumeState is the $resume payload's shape (§4.4.3): the FSM state
// index to resume at and the runtime stack to adopt.
//
// Token is an ambient addition, not part of the spec's named fields: a
// one-shot identifier the conductor mints for every sync-action
// suspension and enforces via kont.Affine (conductor.go), so a resume
// payload replayed twice is rejected with ErrResumeReused instead of
// silently re-running a composition past a state it already left.
type ResumeState struct {
	State int     `json:"state"`
	Stack []Frame `json:"stack"`
	Token string  `json:"token,omitempty"`
}

// resumeWrapper is the literal {"$resume": {...}} envelope a host sends
// back as part of params.
type resumeWrapper struct {
	Resume ResumeState `json:"$resume"`
}

// Result is the conductor's return value (§6.1 host ↔ conductor
// contract): either terminal (Params on success, Error/Code on failure)
// or a continuation the host must act on (Action/Params/Resume).
//
// RunID is not part of the spec's wire contract; it's the ambient
// correlation ID (google/uuid) threaded through Logger fields and
// attached here for host-side log correlation.
type Result struct {
	RunID string `json:"runId,omitempty"`

	// Terminal
	Params any    `json:"params,omitempty"`
	Error  string `json:"error,omitempty"`

	// Continuation. State wraps Resume in the literal {"$resume": {...}}
	// envelope §6.1 describes ("state: {$resume: {state, stack}}").
	Action string         `json:"action,omitempty"`
	State  *resumeWrapper `json:"state,omitempty"`
}

func continuation(runID, action string, params any, resume ResumeState) Result {
	return Result{
		RunID:  runID,
		Action: action,
		Params: params,
		State:  &resumeWrapper{Resume: resume},
	}
}

// IsContinuation reports whether r is a continuation (the host must
// invoke Action and re-enter the conductor) rather than a terminal
// result.
func (r Result) IsContinuation() bool { return r.Action != "" }
