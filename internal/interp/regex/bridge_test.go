package regex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/go-ecma/internal/interp/regex"
)

func TestCompileDerivesFlagBooleans(t *testing.T) {
	p, err := regex.Compile(`a+`, "gi")
	require.NoError(t, err)
	assert.True(t, p.Global)
	assert.True(t, p.IgnoreCase)
	assert.False(t, p.Multiline)
	assert.Equal(t, "gi", p.CanonicalFlags())
}

// TestCompileIgnoresUnrecognizedFlagLetters documents the engine's
// actual tolerance: an unknown flag letter does not fail compilation,
// it simply sets none of the boolean getters.
func TestCompileIgnoresUnrecognizedFlagLetters(t *testing.T) {
	p, err := regex.Compile(`a+`, "z")
	require.NoError(t, err)
	assert.Equal(t, "", p.CanonicalFlags())
}

func TestCompileRejectsUnparsableSource(t *testing.T) {
	_, err := regex.Compile(`a(`, "")
	assert.Error(t, err)
}

func TestFindFromLocatesMatch(t *testing.T) {
	p, err := regex.Compile(`wor\w+`, "")
	require.NoError(t, err)

	m, err := p.FindFrom("hello world", 0, false)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "world", m.Text)
	assert.Equal(t, 6, m.Index)
}

func TestFindFromNoMatchReturnsNil(t *testing.T) {
	p, err := regex.Compile(`xyz`, "")
	require.NoError(t, err)

	m, err := p.FindFrom("hello world", 0, false)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestTestReportsPresence(t *testing.T) {
	p, err := regex.Compile(`^\d+$`, "")
	require.NoError(t, err)

	ok, err := p.Test("12345")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Test("12345x")
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestNamedGroupsSurviveCompile exercises the `(?<name>...)` rewrite
// both engines must understand (§4.9).
func TestNamedGroupsSurviveCompile(t *testing.T) {
	p, err := regex.Compile(`(?<year>\d{4})-(?<month>\d{2})`, "")
	require.NoError(t, err)

	m, err := p.FindFrom("born 1999-07", 0, false)
	require.NoError(t, err)
	require.NotNil(t, m)
	require.Len(t, m.Groups, 3)
	assert.Equal(t, "year", m.Groups[1].Name)
	assert.Equal(t, "1999", m.Groups[1].Text)
	assert.Equal(t, "month", m.Groups[2].Name)
	assert.Equal(t, "07", m.Groups[2].Text)
}
