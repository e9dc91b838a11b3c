// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conduct_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/compose"
	"code.hybscloud.com/compose/conduct"
	"code.hybscloud.com/compose/eval"
	"code.hybscloud.com/compose/fsm"
)

// mergeResumeEnvelope round-trips a continuation's State through real
// JSON (the way a host actually would, by forwarding the opaque blob it
// was given) and merges it alongside the host's own result fields,
// rather than hand-authoring a $resume payload's internal shape.
func mergeResumeEnvelope(t *testing.T, state any, hostFields map[string]any) map[string]any {
	t.Helper()
	data, err := json.Marshal(state)
	require.NoError(t, err)
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(data, &envelope))
	merged := make(map[string]any, len(hostFields)+1)
	for k, v := range hostFields {
		merged[k] = v
	}
	merged["$resume"] = envelope["$resume"]
	return merged
}

func newFixture() (*compose.Composer, *fsm.Compiler) {
	reg := compose.DefaultRegistry()
	return compose.NewComposer(reg), fsm.NewCompiler(reg)
}

type stubInvoker struct {
	calls  int
	lastIn any
	fail   error
}

func (s *stubInvoker) InvokeAsync(name string, params any) (any, error) {
	s.calls++
	s.lastIn = params
	if s.fail != nil {
		return nil, s.fail
	}
	return map[string]any{"action": name, "echo": params}, nil
}

func TestRunFunctionArithmetic(t *testing.T) {
	c, comp := newFixture()
	result := eval.Binary("+", eval.Var("x"), eval.Const(float64(1)))
	node, err := c.Function(eval.Func{
		Body:   []eval.Expr{eval.Assign("x", eval.Const(float64(1)))},
		Result: &result,
	})
	require.NoError(t, err)
	program, err := comp.Compile(node)
	require.NoError(t, err)
	require.NoError(t, fsm.Verify(program))

	cond := conduct.NewConductor(program, nil, nil, nil)
	out, err := cond.Run(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"value": float64(2)}, out.Params)
	assert.Empty(t, out.Error)
	assert.NotEmpty(t, out.RunID)
}

func TestRunLetBindingIsVisibleToFunction(t *testing.T) {
	c, comp := newFixture()
	result := eval.Var("x")
	fn, err := c.Function(eval.Func{Result: &result})
	require.NoError(t, err)
	node, err := c.Build("let", map[string]any{"x": float64(1)}, fn)
	require.NoError(t, err)
	program, err := comp.Compile(node)
	require.NoError(t, err)
	require.NoError(t, fsm.Verify(program))

	cond := conduct.NewConductor(program, nil, nil, nil)
	out, err := cond.Run(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"value": float64(1)}, out.Params)
}

func TestRunMaskHidesEnclosingLet(t *testing.T) {
	c, comp := newFixture()
	result := eval.Var("x")
	fn, err := c.Function(eval.Func{Result: &result})
	require.NoError(t, err)
	masked, err := c.Build("mask", fn)
	require.NoError(t, err)
	node, err := c.Build("let", map[string]any{"x": float64(1)}, masked)
	require.NoError(t, err)
	program, err := comp.Compile(node)
	require.NoError(t, err)
	require.NoError(t, fsm.Verify(program))

	cond := conduct.NewConductor(program, nil, nil, nil)
	out, err := cond.Run(map[string]any{})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Error) // x is unreachable through the mask
	assert.Empty(t, out.Params)
}

func TestRunSyncActionSuspendsAndResumes(t *testing.T) {
	c, comp := newFixture()
	node, err := c.Build("sequence", "step")
	require.NoError(t, err)
	program, err := comp.Compile(node)
	require.NoError(t, err)
	require.NoError(t, fsm.Verify(program))

	cond := conduct.NewConductor(program, nil, nil, nil)
	first, err := cond.Run(map[string]any{"n": float64(1)})
	require.NoError(t, err)
	require.True(t, first.IsContinuation())
	assert.Equal(t, "/_/step", first.Action)
	require.NotNil(t, first.State)
	assert.NotEmpty(t, first.State.Resume.Token)

	resumed := mergeResumeEnvelope(t, first.State, map[string]any{"result": "ok"})
	second, err := cond.Run(resumed)
	require.NoError(t, err)
	assert.False(t, second.IsContinuation())
	assert.Equal(t, map[string]any{"result": "ok"}, second.Params)
}

func TestRunRejectsReusedResumeToken(t *testing.T) {
	c, comp := newFixture()
	node, err := c.Build("sequence", "step")
	require.NoError(t, err)
	program, err := comp.Compile(node)
	require.NoError(t, err)
	require.NoError(t, fsm.Verify(program))

	cond := conduct.NewConductor(program, nil, nil, nil)
	first, err := cond.Run(map[string]any{"n": float64(1)})
	require.NoError(t, err)
	require.True(t, first.IsContinuation())

	resumed := mergeResumeEnvelope(t, first.State, map[string]any{"result": "ok"})
	second, err := cond.Run(resumed)
	require.NoError(t, err)
	assert.False(t, second.IsContinuation())

	_, err = cond.Run(resumed)
	require.Error(t, err)
	assert.ErrorIs(t, err, conduct.ErrResumeReused)
}

func TestRunAsyncActionInvokesInvokerLocally(t *testing.T) {
	c, comp := newFixture()
	node, err := c.Action("step", map[string]any{"async": true})
	require.NoError(t, err)
	program, err := comp.Compile(node)
	require.NoError(t, err)
	require.NoError(t, fsm.Verify(program))

	inv := &stubInvoker{}
	cond := conduct.NewConductor(program, inv, nil, nil)
	out, err := cond.Run(map[string]any{"x": float64(1)})
	require.NoError(t, err)
	assert.False(t, out.IsContinuation())
	assert.Equal(t, 1, inv.calls)
	assert.Equal(t, map[string]any{"action": "/_/step", "echo": map[string]any{"x": float64(1)}}, out.Params)
}

func TestRunAsyncActionFailureRoutesThroughInspect(t *testing.T) {
	c, comp := newFixture()
	node, err := c.Action("step", map[string]any{"async": true})
	require.NoError(t, err)
	program, err := comp.Compile(node)
	require.NoError(t, err)

	inv := &stubInvoker{fail: fmt.Errorf("downstream unavailable")}
	cond := conduct.NewConductor(program, inv, nil, nil)
	out, err := cond.Run(map[string]any{})
	require.NoError(t, err)
	assert.Contains(t, out.Error, "downstream unavailable")
}

func TestRunTryCatchRoutesErrorToHandler(t *testing.T) {
	c, comp := newFixture()
	handlerResult := eval.Const("handled")
	handler, err := c.Function(eval.Func{Result: &handlerResult})
	require.NoError(t, err)
	bodyResult := eval.Var("missing")
	body, err := c.Function(eval.Func{Result: &bodyResult})
	require.NoError(t, err)
	node, err := c.Build("try", body, handler)
	require.NoError(t, err)
	program, err := comp.Compile(node)
	require.NoError(t, err)
	require.NoError(t, fsm.Verify(program))

	cond := conduct.NewConductor(program, nil, nil, nil)
	out, err := cond.Run(map[string]any{})
	require.NoError(t, err)
	assert.Empty(t, out.Error)
	assert.Equal(t, map[string]any{"value": "handled"}, out.Params)
}

func TestRunUncaughtErrorTerminatesWithError(t *testing.T) {
	c, comp := newFixture()
	bodyResult := eval.Var("missing")
	fn, err := c.Function(eval.Func{Result: &bodyResult})
	require.NoError(t, err)
	program, err := comp.Compile(fn)
	require.NoError(t, err)

	cond := conduct.NewConductor(program, nil, nil, nil)
	out, err := cond.Run(map[string]any{})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Error)
	assert.Nil(t, out.Params)
}

func TestRunDowhileNosaveCountsToThree(t *testing.T) {
	c, comp := newFixture()
	// body increments n by assignment, leaving params untouched (no
	// Result expression -> eval.Undefined).
	body, err := c.Function(eval.Func{
		Body: []eval.Expr{eval.Assign("n", eval.Binary("+", eval.Var("n"), eval.Const(float64(1))))},
	})
	require.NoError(t, err)

	testResult := eval.Object(map[string]eval.Expr{
		"value": eval.Binary("<", eval.Var("n"), eval.Const(float64(3))),
	})
	testFn, err := c.Function(eval.Func{Result: &testResult})
	require.NoError(t, err)

	loop, err := c.Build("dowhile_nosave", body, testFn)
	require.NoError(t, err)

	readN := eval.Var("n")
	readFn, err := c.Function(eval.Func{Result: &readN})
	require.NoError(t, err)

	seq, err := c.Build("sequence", loop, readFn)
	require.NoError(t, err)
	node, err := c.Build("let", map[string]any{"n": float64(0)}, seq)
	require.NoError(t, err)
	program, err := comp.Compile(node)
	require.NoError(t, err)
	require.NoError(t, fsm.Verify(program))

	cond := conduct.NewConductor(program, nil, nil, nil)
	out, err := cond.Run(map[string]any{})
	require.NoError(t, err)
	assert.Empty(t, out.Error)
	assert.Equal(t, map[string]any{"value": float64(3)}, out.Params)
}

func TestRunRunawayCompositionIsBounded(t *testing.T) {
	c, comp := newFixture()
	test := eval.Const(true)
	testFn, err := c.Function(eval.Func{Result: &test})
	require.NoError(t, err)
	body, err := c.Build("sequence")
	require.NoError(t, err)
	node, err := c.Build("while_nosave", testFn, body)
	require.NoError(t, err)
	program, err := comp.Compile(node)
	require.NoError(t, err)
	require.NoError(t, fsm.Verify(program))

	cfg := conduct.DefaultConfig()
	cfg.MaxSteps = 50
	cond := conduct.NewConductor(program, nil, nil, cfg)
	_, err = cond.Run(map[string]any{})
	require.Error(t, err)
	assert.ErrorIs(t, err, conduct.ErrRunawayComposition)
}
