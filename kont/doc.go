// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package kont provides continuation-passing style primitives and algebraic
// effects in Go, trimmed to the subset the composition conductor and the
// inline function evaluator actually drive.
//
// The core type [Cont] represents a computation that accepts a continuation
// and produces a final result.
//
// # Core Operations
//
// Minimal monad operations:
//
//   - [Return]: Lift a pure value into a continuation
//   - [Bind]: Sequence two continuations
//
// Derived operations:
//
//   - [Map]: Apply a function to the result — equivalent to Bind(m, func(a) Return(f(a)))
//   - [Then]: Sequence, discarding first result — equivalent to Bind(m, func(_) n)
//
// Execution:
//
//   - [Suspend]: Create a continuation from a CPS function
//
// # Stepping Boundary
//
// [Step] provides one-effect-at-a-time evaluation for external runtimes
// that drive computation one effect at a time — compose/eval's inline
// function evaluator uses it to dispatch each State or Error effect
// itself.
//
//   - [Step]: Drive a [Cont] computation until it completes or suspends
//   - [Suspension]: Pending operation with one-shot resumption handle
//   - [Suspension.Op]: Returns the effect operation that caused the suspension
//   - [Suspension.Resume]: Advance to the next suspension or completion (panics on reuse)
//   - [Suspension.TryResume]: Non-panicking variant of Resume
//   - [Suspension.Discard]: Drop without invoking
//
// Returns (value, nil) on completion, or (zero, [*Suspension]) when pending.
// Affine semantics: each [Suspension] may be resumed at most once.
//
// # Algebraic Effects
//
// Effects are defined as types implementing the F-bounded [Op] constraint,
// and handlers interpret these effects via the F-bounded [Handler] interface.
// Handler dispatch returns (resumeValue, true) to continue the computation,
// or (finalResult, false) to short-circuit.
//
//   - [Op]: F-bounded effect operation interface
//   - [Operation]: Runtime type for effect operations
//   - [Resumed]: Runtime type for resumption values
//   - [Handler]: F-bounded effect interpreter interface
//   - [Perform]: Trigger an effect operation
//   - [Handle]: Run a computation with an F-bounded effect handler
//   - [HandleFunc]: Create a handler from a dispatch function
//
// # State Effect
//
// Backs the inline function evaluator's variable environment:
//
//   - [Get], [Put], [Modify]: Effect operations
//   - [GetState], [PutState], [ModifyState]: Fused convenience constructors
//   - [StateHandler]: Creates a State handler
//   - [RunState], [EvalState], [ExecState]: Run with State effect
//
// # Error Effect
//
// Backs the inline function evaluator's error propagation, which the
// conductor's inspect pass unwraps into {error: ...}:
//
//   - [Throw], [Catch]: Effect operations
//   - [ErrorContext]: Shared context for error dispatch
//   - [ThrowError], [CatchError]: Convenience constructors
//   - [RunError]: Run with Error effect, returns [Either]
//
// # Either Type
//
//   - [Left], [Right]: Constructors
//   - [Either.IsLeft], [Either.IsRight]: Predicates
//   - [Either.GetLeft], [Either.GetRight]: Accessors
//   - [MatchEither]: Pattern matching
//   - [MapEither], [FlatMapEither], [MapLeftEither]: Functor/monad operations
//
// # Affine Continuations
//
// Backs the conductor's resume-once enforcement (compose/conduct's
// Conductor.pending): every sync-action suspension mints a token guarded
// by an [Affine], so a resume payload replayed twice is rejected instead
// of silently re-entering a composition past a state it already left.
//
//   - [Once]: Create an affine continuation
//   - [Affine.Resume]: Invoke (panics on reuse)
//   - [Affine.TryResume]: Non-panicking variant
//   - [Affine.Discard]: Drop without invoking
package kont
