// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package compose_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/compose"
)

func TestParseActionNameUnqualified(t *testing.T) {
	got, err := compose.ParseActionName("foo")
	require.NoError(t, err)
	assert.Equal(t, "/_/foo", got)
}

func TestParseActionNameUnqualifiedWithPackage(t *testing.T) {
	got, err := compose.ParseActionName("pkg/foo")
	require.NoError(t, err)
	assert.Equal(t, "/_/pkg/foo", got)
}

func TestParseActionNameQualified(t *testing.T) {
	got, err := compose.ParseActionName("/ns/foo")
	require.NoError(t, err)
	assert.Equal(t, "/ns/foo", got)
}

func TestParseActionNameQualifiedWithPackage(t *testing.T) {
	got, err := compose.ParseActionName("/ns/pkg/foo")
	require.NoError(t, err)
	assert.Equal(t, "/ns/pkg/foo", got)
}

func TestParseActionNameQualifiedMissingAction(t *testing.T) {
	_, err := compose.ParseActionName("/foo")
	require.Error(t, err)
	assert.ErrorIs(t, err, compose.ErrInvalidName)
}

func TestParseActionNameTooManySegments(t *testing.T) {
	_, err := compose.ParseActionName("a/b/c/d")
	require.Error(t, err)
	assert.ErrorIs(t, err, compose.ErrInvalidName)
}

func TestParseActionNameEmptySegment(t *testing.T) {
	_, err := compose.ParseActionName("pkg//foo")
	require.Error(t, err)
	assert.ErrorIs(t, err, compose.ErrInvalidName)
}
