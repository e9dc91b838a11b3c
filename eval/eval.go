// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eval

import (
	"fmt"
	"sort"
	"sync/atomic"

	"code.hybscloud.com/compose/kont"
)

var monotonicClock uint64

// defaultClock is the fallback when Run is not given an injected clock: a
// package-level counter, not wall-clock time.Now, so evaluation stays
// deterministic enough for replay and testing when the caller doesn't care.
func defaultClock() int64 {
	return int64(atomic.AddUint64(&monotonicClock, 1))
}

// Run evaluates f's statement list and result expression against env (the
// conductor's collapsed visible variable environment, §4.4.2) plus f's sole
// declared parameter, if any, bound to params.
//
// Returns the function's result, the mutated environment — callers write
// the updated bindings back into the innermost visible let-frame per
// symbol — and any evaluation error. A Result that is absent, or evaluates
// to Undefined, signals "leave params unchanged". A Result evaluating to a
// Func value is rejected with ErrFunctionResult: a function returning a
// function is preserved as an error state, not reinterpreted.
func Run(f Func, env map[string]any, params any, clock func() int64) (any, map[string]any, error) {
	if clock == nil {
		clock = defaultClock
	}
	bound := make(map[string]any, len(env)+1)
	for k, v := range env {
		bound[k] = v
	}
	if len(f.Params) > 0 {
		bound[f.Params[0]] = params
	}

	prog := kont.Return[kont.Resumed, any](any(Undefined))
	for _, stmt := range f.Body {
		prog = kont.Then(prog, evalExpr(stmt, clock))
	}
	if f.Result != nil {
		prog = kont.Then(prog, evalExpr(*f.Result, clock))
	} else {
		prog = kont.Then(prog, kont.Return[kont.Resumed, any](any(Undefined)))
	}

	result, finalEnv, err := runEffects(bound, prog)
	if err != nil {
		return nil, finalEnv, err
	}
	if _, ok := result.(Func); ok {
		return nil, finalEnv, wrapErr("result", ErrFunctionResult)
	}
	return result, finalEnv, nil
}

// runEffects drives an evaluator program to completion, dispatching its
// State (environment) and Error effects directly — the program never
// suspends on anything else, since function evaluation runs to completion
// without a host round-trip.
func runEffects(env map[string]any, prog kont.Cont[kont.Resumed, any]) (any, map[string]any, error) {
	state := env
	result, susp := kont.Step[any](prog)
	for susp != nil {
		switch op := susp.Op().(type) {
		case kont.Get[map[string]any]:
			result, susp = susp.Resume(state)
		case kont.Put[map[string]any]:
			state = op.Value
			result, susp = susp.Resume(struct{}{})
		case kont.Modify[map[string]any]:
			state = op.F(state)
			result, susp = susp.Resume(state)
		case kont.Throw[error]:
			susp.Discard()
			return nil, state, op.Err
		default:
			susp.Discard()
			return nil, state, wrapErr("effect", fmt.Errorf("%w: %T", ErrUnknownBuiltin, op))
		}
	}
	return result, state, nil
}

// evalExpr compiles a single Expr node into an effectful computation over
// the environment. Var reads and Assign writes are the only nodes that
// touch the State effect; everything else is pure composition.
func evalExpr(e Expr, clock func() int64) kont.Cont[kont.Resumed, any] {
	switch e.Kind {
	case KindConst:
		return kont.Return[kont.Resumed, any](e.Value)

	case KindVar:
		return kont.GetState(func(env map[string]any) kont.Cont[kont.Resumed, any] {
			v, ok := env[e.Name]
			if !ok {
				return kont.ThrowError[error, any](wrapErr("var:"+e.Name, ErrUnknownVariable))
			}
			return kont.Return[kont.Resumed, any](v)
		})

	case KindAssign:
		return kont.Bind(evalExpr(*e.X, clock), func(v any) kont.Cont[kont.Resumed, any] {
			return kont.ModifyState(func(env map[string]any) map[string]any {
				env[e.Name] = v
				return env
			}, func(map[string]any) kont.Cont[kont.Resumed, any] {
				return kont.Return[kont.Resumed, any](v)
			})
		})

	case KindField:
		return kont.Bind(evalExpr(*e.X, clock), func(v any) kont.Cont[kont.Resumed, any] {
			obj, ok := v.(map[string]any)
			if !ok {
				return kont.ThrowError[error, any](wrapErr("field."+e.Name, ErrNotAnObject))
			}
			fv, ok := obj[e.Name]
			if !ok {
				// A missing key evaluates to Undefined rather than erroring,
				// matching the "x.error !== undefined" idiom the combinator
				// algebra's rewrites rely on (compose/lower's retry and
				// retain_catch rewrites).
				return kont.Return[kont.Resumed, any](any(Undefined))
			}
			return kont.Return[kont.Resumed, any](fv)
		})

	case KindIndex:
		return kont.Bind(evalExpr(*e.X, clock), func(base any) kont.Cont[kont.Resumed, any] {
			return kont.Bind(evalExpr(*e.Y, clock), func(key any) kont.Cont[kont.Resumed, any] {
				v, err := indexInto(base, key)
				if err != nil {
					return kont.ThrowError[error, any](wrapErr("index", err))
				}
				return kont.Return[kont.Resumed, any](v)
			})
		})

	case KindUnary:
		return kont.Bind(evalExpr(*e.X, clock), func(v any) kont.Cont[kont.Resumed, any] {
			r, err := unaryOp(e.Op, v)
			if err != nil {
				return kont.ThrowError[error, any](wrapErr("unary."+e.Op, err))
			}
			return kont.Return[kont.Resumed, any](r)
		})

	case KindBinary:
		if e.Op == "&&" || e.Op == "||" {
			return evalShortCircuit(e, clock)
		}
		return kont.Bind(evalExpr(*e.X, clock), func(xv any) kont.Cont[kont.Resumed, any] {
			return kont.Bind(evalExpr(*e.Y, clock), func(yv any) kont.Cont[kont.Resumed, any] {
				r, err := binaryOp(e.Op, xv, yv)
				if err != nil {
					return kont.ThrowError[error, any](wrapErr("binary."+e.Op, err))
				}
				return kont.Return[kont.Resumed, any](r)
			})
		})

	case KindCall:
		return evalArgs(e.Args, 0, make([]any, len(e.Args)), clock, func(args []any) kont.Cont[kont.Resumed, any] {
			r, err := callBuiltin(e.Name, args, clock)
			if err != nil {
				return kont.ThrowError[error, any](wrapErr("call."+e.Name, err))
			}
			return kont.Return[kont.Resumed, any](r)
		})

	case KindObject:
		return evalObject(e.Fields, clock)

	default:
		return kont.ThrowError[error, any](wrapErr(string(e.Kind), ErrInvalidOperator))
	}
}

// evalShortCircuit implements && / || without evaluating the right operand
// unless necessary, matching the short-circuit semantics the combinator
// algebra's boolean test closures rely on.
func evalShortCircuit(e Expr, clock func() int64) kont.Cont[kont.Resumed, any] {
	return kont.Bind(evalExpr(*e.X, clock), func(xv any) kont.Cont[kont.Resumed, any] {
		xb, err := toBool(xv)
		if err != nil {
			return kont.ThrowError[error, any](wrapErr("binary."+e.Op, err))
		}
		if e.Op == "&&" && !xb {
			return kont.Return[kont.Resumed, any](any(false))
		}
		if e.Op == "||" && xb {
			return kont.Return[kont.Resumed, any](any(true))
		}
		return kont.Bind(evalExpr(*e.Y, clock), func(yv any) kont.Cont[kont.Resumed, any] {
			yb, err := toBool(yv)
			if err != nil {
				return kont.ThrowError[error, any](wrapErr("binary."+e.Op, err))
			}
			return kont.Return[kont.Resumed, any](any(yb))
		})
	})
}

// evalArgs evaluates call arguments left to right, threading the
// accumulator through a CPS chain so argument expressions with assignments
// observe each other's writes in order.
func evalArgs(args []Expr, i int, acc []any, clock func() int64, k func([]any) kont.Cont[kont.Resumed, any]) kont.Cont[kont.Resumed, any] {
	if i >= len(args) {
		return k(acc)
	}
	return kont.Bind(evalExpr(args[i], clock), func(v any) kont.Cont[kont.Resumed, any] {
		acc[i] = v
		return evalArgs(args, i+1, acc, clock, k)
	})
}

// evalObject evaluates an object literal's fields in a deterministic
// (lexicographic key) order.
func evalObject(fields map[string]Expr, clock func() int64) kont.Cont[kont.Resumed, any] {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return evalObjectAt(keys, fields, 0, make(map[string]any, len(fields)), clock)
}

func evalObjectAt(keys []string, fields map[string]Expr, i int, acc map[string]any, clock func() int64) kont.Cont[kont.Resumed, any] {
	if i >= len(keys) {
		return kont.Return[kont.Resumed, any](any(acc))
	}
	key := keys[i]
	return kont.Bind(evalExpr(fields[key], clock), func(v any) kont.Cont[kont.Resumed, any] {
		acc[key] = v
		return evalObjectAt(keys, fields, i+1, acc, clock)
	})
}
