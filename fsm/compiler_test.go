// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fsm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/compose"
	"code.hybscloud.com/compose/eval"
	"code.hybscloud.com/compose/fsm"
)

func newFixture() (*compose.Registry, *compose.Composer, *fsm.Compiler) {
	reg := compose.DefaultRegistry()
	return reg, compose.NewComposer(reg), fsm.NewCompiler(reg)
}

func TestCompileActionIsSingleState(t *testing.T) {
	_, c, comp := newFixture()
	node, err := c.Build("action", "act/step")
	require.NoError(t, err)

	out, err := comp.Compile(node)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, fsm.KindAction, out[0].Kind)
	assert.Equal(t, "/_/act/step", out[0].Name)
	assert.False(t, out[0].Async)
	require.NoError(t, fsm.Verify(out))
}

func TestCompileFunctionIsSingleState(t *testing.T) {
	_, c, comp := newFixture()
	result := eval.Const(float64(1))
	node, err := c.Function(eval.Func{Result: &result})
	require.NoError(t, err)

	out, err := comp.Compile(node)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, fsm.KindFunction, out[0].Kind)
	require.NoError(t, fsm.Verify(out))
}

func TestCompileSequenceChainsChildren(t *testing.T) {
	_, c, comp := newFixture()
	node, err := c.Build("sequence", "act/a", "act/b")
	require.NoError(t, err)

	out, err := comp.Compile(node)
	require.NoError(t, err)
	// [pass, action(a), action(b)]
	require.Len(t, out, 3)
	assert.Equal(t, fsm.KindPass, out[0].Kind)
	assert.Equal(t, fsm.KindAction, out[1].Kind)
	assert.Equal(t, fsm.KindAction, out[2].Kind)
	require.NotNil(t, out[0].Next)
	assert.Equal(t, 1, *out[0].Next)
	require.NotNil(t, out[1].Next)
	assert.Equal(t, 1, *out[1].Next)
	assert.Nil(t, out[2].Next)
	require.NoError(t, fsm.Verify(out))
}

func TestCompileEmptySequenceIsHeadPassPlusSinglePass(t *testing.T) {
	_, c, comp := newFixture()
	node, err := c.Build("sequence")
	require.NoError(t, err)

	out, err := comp.Compile(node)
	require.NoError(t, err)
	require.Len(t, out, 2) // head pass + compileChildren's pass for zero children
	assert.Equal(t, fsm.KindPass, out[0].Kind)
	assert.Equal(t, fsm.KindPass, out[1].Kind)
	require.NoError(t, fsm.Verify(out))
}

func TestCompileLetPushesAndPopsFrame(t *testing.T) {
	_, c, comp := newFixture()
	node, err := c.Build("let", map[string]any{"x": float64(1)}, "act/a")
	require.NoError(t, err)

	out, err := comp.Compile(node)
	require.NoError(t, err)
	// [let, action(a), exit]
	require.Len(t, out, 3)
	assert.Equal(t, fsm.KindLet, out[0].Kind)
	assert.Equal(t, map[string]any{"x": float64(1)}, out[0].Declarations)
	assert.Equal(t, fsm.KindExit, out[2].Kind)
	require.NoError(t, fsm.Verify(out))
}

func TestCompileMaskPushesNilDeclarations(t *testing.T) {
	_, c, comp := newFixture()
	node, err := c.Build("mask", "act/a")
	require.NoError(t, err)

	out, err := comp.Compile(node)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, fsm.KindLet, out[0].Kind)
	assert.Nil(t, out[0].Declarations)
	require.NoError(t, fsm.Verify(out))
}

func TestCompileTrySkipsHandlerOnSuccessPath(t *testing.T) {
	_, c, comp := newFixture()
	node, err := c.Build("try", "act/body", "act/handler")
	require.NoError(t, err)

	out, err := comp.Compile(node)
	require.NoError(t, err)
	// [try, action(body), exit, action(handler), pass]
	require.Len(t, out, 5)
	assert.Equal(t, fsm.KindTry, out[0].Kind)
	assert.Equal(t, 3, out[0].Catch) // handler's first state sits at absolute index 3
	exitIdx := 2
	require.NotNil(t, out[exitIdx].Next)
	// exit skips the 2-state handler fragment (action + trailing pass),
	// landing on the trailing pass at index 4.
	assert.Equal(t, exitIdx+*out[exitIdx].Next, 4)
	assert.Equal(t, fsm.KindPass, out[4].Kind)
	require.NoError(t, fsm.Verify(out))
}

func TestCompileFinallyAlwaysRunsFinalizer(t *testing.T) {
	_, c, comp := newFixture()
	node, err := c.Build("finally", "act/body", "act/finalizer")
	require.NoError(t, err)

	out, err := comp.Compile(node)
	require.NoError(t, err)
	// [try, action(body), exit, action(finalizer), pass]
	require.Len(t, out, 5)
	exitIdx := 2
	require.NotNil(t, out[exitIdx].Next)
	// exit falls straight through into the finalizer (index 3), not past it.
	assert.Equal(t, exitIdx+*out[exitIdx].Next, 3)
	assert.Equal(t, 3, out[0].Catch) // same target the success path falls through to
	require.NoError(t, fsm.Verify(out))
}

func TestCompileIfNosaveBranchesConverge(t *testing.T) {
	_, c, comp := newFixture()
	node, err := c.Build("if_nosave", "act/test", "act/yes", "act/no")
	require.NoError(t, err)

	out, err := comp.Compile(node)
	require.NoError(t, err)
	// [pass, action(test), choice, action(yes), action(no), pass]
	require.Len(t, out, 6)
	choiceIdx := 2
	assert.Equal(t, fsm.KindChoice, out[choiceIdx].Kind)
	assert.Equal(t, 1, out[choiceIdx].Then)
	assert.Equal(t, 2, out[choiceIdx].Else) // |consequent|=1, +1
	yesIdx := 3
	require.NotNil(t, out[yesIdx].Next)
	assert.Equal(t, yesIdx+*out[yesIdx].Next, 5) // jumps past "no" to the trailing pass
	require.NoError(t, fsm.Verify(out))
}

func TestCompileWhileNosaveLoopsBack(t *testing.T) {
	_, c, comp := newFixture()
	node, err := c.Build("while_nosave", "act/test", "act/body")
	require.NoError(t, err)

	out, err := comp.Compile(node)
	require.NoError(t, err)
	// [pass, action(test), choice, action(body), pass]
	require.Len(t, out, 5)
	choiceIdx := 2
	assert.Equal(t, 1, out[choiceIdx].Then)
	assert.Equal(t, 2, out[choiceIdx].Else)
	bodyIdx := 3
	require.NotNil(t, out[bodyIdx].Next)
	assert.Equal(t, bodyIdx+*out[bodyIdx].Next, 1) // loops back to the test
	require.NoError(t, fsm.Verify(out))
}

func TestCompileDowhileNosaveTestsAfterBody(t *testing.T) {
	_, c, comp := newFixture()
	node, err := c.Build("dowhile_nosave", "act/body", "act/test")
	require.NoError(t, err)

	out, err := comp.Compile(node)
	require.NoError(t, err)
	// [pass, action(body), action(test), choice, pass]
	require.Len(t, out, 5)
	choiceIdx := 3
	assert.Equal(t, fsm.KindChoice, out[choiceIdx].Kind)
	assert.Equal(t, choiceIdx+out[choiceIdx].Then, 1) // loops back to body
	assert.Equal(t, choiceIdx+out[choiceIdx].Else, 4) // falls through to trailing pass
	require.NoError(t, fsm.Verify(out))
}

func TestCompileUnknownCombinatorErrors(t *testing.T) {
	_, _, comp := newFixture()
	_, err := comp.Compile(compose.Composition{Type: "value"}) // enhanced, never lowered
	require.ErrorIs(t, err, fsm.ErrUnknownCombinator)
}

func TestVerifyCatchesDanglingJump(t *testing.T) {
	five := 5
	out := []fsm.Node{{Kind: fsm.KindPass, Next: &five}}
	err := fsm.Verify(out)
	require.Error(t, err)
	assert.ErrorIs(t, err, fsm.ErrDanglingJump)
}
