package tomledit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrayInsertAppendsComma(t *testing.T) {
	a := NewArray()
	require.NoError(t, a.Insert(0, 1))
	require.NoError(t, a.Insert(1, 2))
	require.NoError(t, a.Insert(2, 3))

	assert.Equal(t, 3, a.Len())
	assert.Equal(t, "[1, 2, 3]", a.AsString())
}

func TestArrayInsertAtFront(t *testing.T) {
	a := NewArray()
	require.NoError(t, a.Insert(0, 2))
	require.NoError(t, a.Insert(0, 1))

	assert.Equal(t, []any{int64(1), int64(2)}, a.Value())
}

func TestArraySetPreservesSurroundingLayout(t *testing.T) {
	a := NewArray()
	require.NoError(t, a.Insert(0, 1))
	require.NoError(t, a.Insert(1, 2))
	require.NoError(t, a.Set(1, 99))

	assert.Equal(t, "[1, 99]", a.AsString())
}

func TestArrayDeleteRemovesTrailingTrivia(t *testing.T) {
	a := NewArray()
	require.NoError(t, a.Insert(0, 1))
	require.NoError(t, a.Insert(1, 2))
	require.NoError(t, a.Insert(2, 3))

	a.Delete(1)
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, []any{int64(1), int64(3)}, a.Value())
}

func TestArrayClear(t *testing.T) {
	a := NewArray()
	require.NoError(t, a.Insert(0, 1))
	a.Clear()
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, "[]", a.AsString())
}

func TestArrayAddLine(t *testing.T) {
	a := NewArray()
	require.NoError(t, a.AddLine([]any{1, 2}, "    ", "", true, true))
	require.NoError(t, a.AddLine([]any{3}, "    ", "trailing", true, true))

	assert.Equal(t, 3, a.Len())
	assert.Contains(t, a.AsString(), "\n    1, 2,\n    3,")
}

func TestArrayAddLineRejectsComment(t *testing.T) {
	a := NewArray()
	err := a.AddLine([]any{NewComment("# x")}, "", "", true, false)
	require.Error(t, err)
	var usage *UsageError
	require.ErrorAs(t, err, &usage)
}
