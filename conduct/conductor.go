// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conduct

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"code.hybscloud.com/compose/eval"
	"code.hybscloud.com/compose/fsm"
	"code.hybscloud.com/compose/kont"
)

// ActionInvoker dispatches an async action (§4.4: async actions invoke
// locally and never suspend to the host). Sync actions never call it —
// they always return a continuation instead.
type ActionInvoker interface {
	InvokeAsync(name string, params any) (any, error)
}

// StateHandler lets a plugin's `conductor()` hook (§6.4) own an FSM Kind
// the core trampoline doesn't already dispatch. It receives the current
// state index (to resolve its own node's relative offsets) and returns
// the params/stack to continue with plus the absolute index to jump to.
type StateHandler func(state int, node fsm.Node, params any, stack []Frame) (newParams any, newStack []Frame, next int, err error)

// Conductor runs a compiled program (§4.4): the FSM trampoline that
// drives compose/fsm's flat []Node list to either a terminal Result or
// a continuation the host must act on.
type Conductor struct {
	Program []fsm.Node
	Invoker ActionInvoker
	Logger  *Logger
	Config  *Config

	extraHandlers map[fsm.Kind]StateHandler
	finish        func(*Result)

	// pending tracks every sync-action suspension's resume token as a
	// *kont.Affine[struct{}, struct{}] — the same one-shot-continuation
	// primitive the teacher's effect handlers use, repurposed here to
	// give resume tokens their one-shot guarantee instead of a bare
	// bool: a second TryResume on an already-used token fails even
	// under concurrent Run calls racing on the same token.
	pending sync.Map
}

// NewConductor returns a Conductor ready to Run program. A nil logger
// defaults to NopLogger; a nil config defaults to DefaultConfig.
func NewConductor(program []fsm.Node, invoker ActionInvoker, logger *Logger, cfg *Config) *Conductor {
	if logger == nil {
		logger = NopLogger()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Conductor{Program: program, Invoker: invoker, Logger: logger, Config: cfg}
}

var coreKinds = map[fsm.Kind]bool{
	fsm.KindPass: true, fsm.KindEmpty: true, fsm.KindAction: true,
	fsm.KindFunction: true, fsm.KindLet: true, fsm.KindExit: true,
	fsm.KindTry: true, fsm.KindChoice: true,
}

// RegisterHandler merges a plugin-contributed handler for kind. Mirrors
// Registry.Register's contract: a core kind, or a kind already handled,
// is left untouched.
func (c *Conductor) RegisterHandler(kind fsm.Kind, h StateHandler) {
	if coreKinds[kind] {
		return
	}
	if _, exists := c.extraHandlers[kind]; exists {
		return
	}
	if c.extraHandlers == nil {
		c.extraHandlers = make(map[fsm.Kind]StateHandler)
	}
	c.extraHandlers[kind] = h
}

// nextIndex resolves a node's default successor (§4.4 "Default
// successor"): state + *Next, or len(Program) — the sentinel
// past-the-end index the trampoline's top-of-loop check treats as
// ordinary termination — when Next is nil.
func nextIndex(state int, node fsm.Node, programLen int) int {
	if node.Next == nil {
		return programLen
	}
	return state + *node.Next
}

// errString renders inspect's boxed {"error": ...} params as the
// Result.Error string for an uncaught error.
func errString(params any) string {
	box, ok := params.(map[string]any)
	if !ok {
		return fmt.Sprint(params)
	}
	return fmt.Sprint(box["error"])
}

// routeInspect runs inspect and folds its three outcomes into the two
// the trampoline's main loop needs to act on: either the composition
// ends right here (terminal != nil, an uncaught error), or execution
// continues at the returned index (the matched catch-frame's target, or
// node's ordinary default successor). log is non-nil so an uncaught
// error always gets the Error-level line SPEC_FULL.md's ambient
// logging section promises, right where inspect gives up unwinding.
func routeInspect(log *Logger, runID string, params any, stack []Frame, state int, node fsm.Node, programLen int) (newParams any, newStack []Frame, next int, terminal *Result) {
	newParams, newStack, catchIdx, hadErr, foundCatch := inspect(params, stack)
	if hadErr {
		if !foundCatch {
			msg := errString(newParams)
			log.Error("uncaught error", "runId", runID, "error", msg)
			return newParams, newStack, 0, &Result{RunID: runID, Error: msg}
		}
		return newParams, newStack, catchIdx, nil
	}
	return newParams, newStack, nextIndex(state, node, programLen), nil
}

func truthValue(params any) (bool, error) {
	box, ok := params.(map[string]any)
	if !ok {
		return false, fmt.Errorf("choice: params is not an object")
	}
	v, ok := box["value"].(bool)
	if !ok {
		return false, fmt.Errorf("choice: params.value is not a bool")
	}
	return v, nil
}

// Run drives the compiled program to completion (§4.4.3), adopting a
// $resume envelope from params if one is present. It returns a terminal
// Result (Params on success, Error on an uncaught error) or a
// continuation Result the host must act on by invoking Action and
// calling Run again with the host's result merged into params under
// $resume — never both, and never a Go error for anything the
// composition's own logic produced (a Go error return is reserved for
// §7's protocol/invariant failures).
func (c *Conductor) Run(params any) (Result, error) {
	runID := uuid.NewString()
	log := c.Logger.With("runId", runID)

	resumeState, stack, rest, resumed, token, err := adoptResume(params)
	if err != nil {
		return Result{}, err
	}
	if resumed {
		if err := c.claimResumeToken(token); err != nil {
			return Result{}, err
		}
	}

	// inspect runs once up front regardless of resume: on a fresh call
	// it's a harmless box-and-pass-through (empty stack, no error); on a
	// resume it's the action's own post-return inspect pass (§4.4.3),
	// which may itself route straight to a catch-frame instead of the
	// host-supplied resume state.
	newParams, newStack, catchIdx, hadErr, foundCatch := inspect(rest, stack)
	params, stack = newParams, newStack

	var state int
	switch {
	case hadErr && !foundCatch:
		msg := errString(params)
		log.Error("uncaught error", "runId", runID, "error", msg)
		return Result{RunID: runID, Error: msg}, nil
	case hadErr:
		state = catchIdx
	case resumed:
		state = resumeState
	default:
		state = 0
	}

	programLen := len(c.Program)
	for steps := 0; ; steps++ {
		if c.Config.MaxSteps > 0 && steps >= c.Config.MaxSteps {
			return Result{}, newProtocolError("run", 500, ErrRunawayComposition)
		}
		if state == programLen {
			result := Result{RunID: runID, Params: params}
			if c.finish != nil {
				c.finish(&result)
			}
			return result, nil
		}
		if state < 0 || state > programLen {
			return Result{}, newProtocolError("run", 500, fmt.Errorf("state %d out of range [0,%d]", state, programLen))
		}

		node := c.Program[state]
		log.Debug("state", "index", state, "kind", node.Kind, "path", node.Path)

		switch node.Kind {
		case fsm.KindPass:
			state = nextIndex(state, node, programLen)

		case fsm.KindEmpty:
			var term *Result
			params, stack, state, term = routeInspect(log, runID, params, stack, state, node, programLen)
			if term != nil {
				return *term, nil
			}

		case fsm.KindAction:
			if node.Async {
				result := c.invokeAsync(node.Name, params)
				var term *Result
				params, stack, state, term = routeInspect(log, runID, result, stack, state, node, programLen)
				if term != nil {
					return *term, nil
				}
			} else {
				succ := nextIndex(state, node, programLen)
				token := c.mintResumeToken()
				return continuation(runID, node.Name, params, ResumeState{State: succ, Stack: stack, Token: token}), nil
			}

		case fsm.KindFunction:
			env, included := visibleEnv(stack)
			result, finalEnv, evalErr := eval.Run(node.Code, env, params, nil)
			var term *Result
			if evalErr != nil {
				params, stack, state, term = routeInspect(log, runID, map[string]any{"error": evalErr.Error()}, stack, state, node, programLen)
			} else {
				writeVisibleEnv(stack, included, finalEnv)
				next := params
				if !eval.IsUndefined(result) {
					next = result
				}
				params, stack, state, term = routeInspect(log, runID, next, stack, state, node, programLen)
			}
			if term != nil {
				return *term, nil
			}

		case fsm.KindLet:
			var let map[string]any
			if node.Declarations != nil {
				let = deepCopyValue(node.Declarations).(map[string]any)
			}
			stack = append(stack, Frame{Let: let})
			state = nextIndex(state, node, programLen)

		case fsm.KindExit:
			if len(stack) == 0 {
				return Result{}, newProtocolError("exit", 500, ErrStackUnderflow)
			}
			stack = stack[:len(stack)-1]
			state = nextIndex(state, node, programLen)

		case fsm.KindTry:
			stack = append(stack, Frame{IsCatch: true, Catch: state + node.Catch})
			state = nextIndex(state, node, programLen)

		case fsm.KindChoice:
			truthy, choiceErr := truthValue(params)
			if choiceErr != nil {
				return Result{}, newProtocolError("choice", 500, choiceErr)
			}
			if truthy {
				state += node.Then
			} else {
				state += node.Else
			}

		default:
			handler, ok := c.extraHandlers[node.Kind]
			if !ok {
				return Result{}, newProtocolError(string(node.Kind), 500, fmt.Errorf("no handler registered for state kind %q", node.Kind))
			}
			newParams, newStack, next, handlerErr := handler(state, node, params, stack)
			if handlerErr != nil {
				return Result{}, newProtocolError(string(node.Kind), 500, handlerErr)
			}
			params, stack, state = newParams, newStack, next
		}
	}
}

// mintResumeToken registers a fresh one-shot Affine continuation for a
// sync-action suspension and returns its token. The Affine's wrapped
// function is never actually invoked — Run's own trampoline is what
// resumes execution — only its atomic one-shot bookkeeping is used, via
// claimResumeToken's TryResume call.
func (c *Conductor) mintResumeToken() string {
	token := uuid.NewString()
	c.pending.Store(token, kont.Once(func(struct{}) struct{} { return struct{}{} }))
	return token
}

// claimResumeToken consumes token, failing with ErrResumeReused if it is
// unknown or has already been claimed by an earlier Run call — the
// resume-once half of §7's protocol-error taxonomy.
func (c *Conductor) claimResumeToken(token string) error {
	if token == "" {
		return newProtocolError("resume", 400, ErrMalformedResume)
	}
	v, ok := c.pending.Load(token)
	if !ok {
		return newProtocolError("resume", 409, ErrResumeReused)
	}
	affine := v.(*kont.Affine[struct{}, struct{}])
	if _, ok := affine.TryResume(struct{}{}); !ok {
		return newProtocolError("resume", 409, ErrResumeReused)
	}
	return nil
}

// invokeAsync calls Invoker.InvokeAsync, folding a Go error into the
// {"error": ...} shape inspect already knows how to route, so an async
// action's failure reaches a composition's own try/catch exactly like a
// function or sync-action error does.
func (c *Conductor) invokeAsync(name string, params any) any {
	if c.Invoker == nil {
		return map[string]any{"error": fmt.Sprintf("conduct: no ActionInvoker configured for action %q", name)}
	}
	result, err := c.Invoker.InvokeAsync(name, params)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return result
}
