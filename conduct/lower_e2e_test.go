// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conduct_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/compose"
	"code.hybscloud.com/compose/conduct"
	"code.hybscloud.com/compose/fsm"
	"code.hybscloud.com/compose/lower"
)

// newLoweredProgram builds node, lowers it fully (lower.All), compiles
// it, and verifies the result — the same three-stage pipeline a host
// actually runs, rather than constructing primitive combinators by hand
// the way conductor_test.go's other fixtures do.
func newLoweredProgram(t *testing.T, node compose.Composition) []fsm.Node {
	t.Helper()
	reg := compose.DefaultRegistry()
	l := lower.NewLowerer(reg)
	lowered, err := l.Lower(lower.All(), node)
	require.NoError(t, err)

	program, err := fsm.NewCompiler(reg).Compile(lowered)
	require.NoError(t, err)
	require.NoError(t, fsm.Verify(program))
	return program
}

// spec.md §8.3 testable property 8: retain("act/double") over {x: 3},
// after the host resumes the suspended action with {x: 6}, terminates
// with {params: {x: 3}, result: {x: 6}}.
func TestRetainLoweredEndToEndSuspendsThenCombinesParamsAndResult(t *testing.T) {
	reg := compose.DefaultRegistry()
	c := compose.NewComposer(reg)
	node, err := c.Build("retain", "act/double")
	require.NoError(t, err)

	program := newLoweredProgram(t, node)
	cond := conduct.NewConductor(program, nil, nil, nil)

	first, err := cond.Run(map[string]any{"x": float64(3)})
	require.NoError(t, err)
	require.True(t, first.IsContinuation())
	assert.Equal(t, "/_/act/double", first.Action)
	assert.Equal(t, map[string]any{"x": float64(3)}, first.Params)

	resumed := mergeResumeEnvelope(t, first.State, map[string]any{"x": float64(6)})
	second, err := cond.Run(resumed)
	require.NoError(t, err)
	assert.False(t, second.IsContinuation())
	assert.Empty(t, second.Error)
	assert.Equal(t, map[string]any{
		"params": map[string]any{"x": float64(3)},
		"result": map[string]any{"x": float64(6)},
	}, second.Params)
}

// spec.md §8.3 testable property 8: retry(2, fn ↦ ({error: "e"}))
// terminates with {error: "e"} after exactly 3 total attempts. The
// retried unit is an async action here (rather than spec's bare
// function) so the attempt count is independently observable via the
// stub invoker's call counter.
func TestRetryLoweredEndToEndExhaustsAttemptsThenTerminatesWithError(t *testing.T) {
	reg := compose.DefaultRegistry()
	c := compose.NewComposer(reg)
	failing, err := c.Action("fail", map[string]any{"async": true})
	require.NoError(t, err)
	node, err := c.Build("retry", float64(2), failing)
	require.NoError(t, err)

	program := newLoweredProgram(t, node)
	inv := &stubInvoker{fail: fmt.Errorf("e")}
	cond := conduct.NewConductor(program, inv, nil, nil)

	out, err := cond.Run(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "e", out.Error)
	assert.Nil(t, out.Params)
	assert.Equal(t, 3, inv.calls)
}
