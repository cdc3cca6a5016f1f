package tomledit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainerAppendAndGet(t *testing.T) {
	c := NewContainer(false)
	require.NoError(t, c.Append(NewKey("name"), "tom"))
	v, err := c.Get("name")
	require.NoError(t, err)
	assert.Equal(t, "tom", v)
}

func TestContainerAppendDuplicateScalarFails(t *testing.T) {
	c := NewContainer(false)
	require.NoError(t, c.Append(NewKey("name"), "tom"))
	err := c.Append(NewKey("name"), "jerry")
	require.Error(t, err)
	var dup *KeyAlreadyPresentError
	require.ErrorAs(t, err, &dup)
}

func TestContainerGetNonExistent(t *testing.T) {
	c := NewContainer(false)
	_, err := c.Get("missing")
	require.Error(t, err)
	var nf *NonExistentKeyError
	require.ErrorAs(t, err, &nf)
}

func TestContainerDottedKeyFlattensAndUnflattens(t *testing.T) {
	c := NewContainer(false)
	require.NoError(t, c.AppendItem(NewDottedKey("physical", "color"), NewString("orange")))
	require.NoError(t, c.AppendItem(NewDottedKey("physical", "shape"), NewString("round")))

	val := c.Value().(map[string]any)
	physical, ok := val["physical"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "orange", physical["color"])
	assert.Equal(t, "round", physical["shape"])
}

func TestContainerKeysOrderIsDeclarationOrder(t *testing.T) {
	c := NewContainer(false)
	require.NoError(t, c.Append(NewKey("b"), 1))
	require.NoError(t, c.Append(NewKey("a"), 2))
	assert.Equal(t, []string{"b", "a"}, c.Keys())
}

func TestContainerRemoveTombstonesSlot(t *testing.T) {
	c := NewContainer(false)
	require.NoError(t, c.Append(NewKey("a"), 1))
	require.NoError(t, c.Append(NewKey("b"), 2))
	require.NoError(t, c.Remove("a"))

	_, err := c.Get("a")
	require.Error(t, err)
	assert.NotContains(t, c.AsString(), "a =")
	assert.Contains(t, c.AsString(), "b = 2")
}

func TestContainerRemoveNonExistent(t *testing.T) {
	c := NewContainer(false)
	err := c.Remove("missing")
	require.Error(t, err)
	var nf *NonExistentKeyError
	require.ErrorAs(t, err, &nf)
}

func TestContainerReplaceScalarPreservesStyle(t *testing.T) {
	doc, err := Parse("a = 1 # keep me\nb = 2\n")
	require.NoError(t, err)

	require.NoError(t, doc.Container().Replace("a", 99))
	assert.Contains(t, doc.String(), "a = 99 # keep me")
	assert.Contains(t, doc.String(), "b = 2")
}

func TestContainerReplaceScalarWithTableMovesToFirstTableSlot(t *testing.T) {
	doc, err := Parse("a = 1\n\n[b]\nx = 1\n")
	require.NoError(t, err)

	require.NoError(t, doc.Container().Replace("a", map[string]any{"y": 1}))

	out := doc.String()
	bIdx := indexOfSub(out, "[b]")
	aIdx := indexOfSub(out, "[a]")
	require.True(t, bIdx >= 0)
	require.True(t, aIdx >= 0)
	assert.Less(t, aIdx, bIdx, "new table should take the slot ahead of the first pre-existing table, not render among the leading scalars")
}

func indexOfSub(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func TestContainerDuplicateTableKeyFails(t *testing.T) {
	c := NewContainer(false)
	t1 := NewTable(false)
	t1.Name = NewKey("a")
	require.NoError(t, c.AppendItem(NewKey("a"), t1))

	t2 := NewTable(false)
	t2.Name = NewKey("a")
	err := c.AppendItem(NewKey("a"), t2)
	require.Error(t, err)
	var dup *KeyAlreadyPresentError
	require.ErrorAs(t, err, &dup)
}

func TestContainerTablePromotesToAoTOnAoTElementAppend(t *testing.T) {
	c := NewContainer(false)
	plain := NewTable(false)
	plain.Name = NewKey("fruit")
	require.NoError(t, c.AppendItem(NewKey("fruit"), plain))

	elem := NewTable(true)
	elem.Name = NewKey("fruit")
	require.NoError(t, c.AppendItem(NewKey("fruit"), elem))

	item, err := c.Item("fruit")
	require.NoError(t, err)
	aot, ok := item.(*AoT)
	require.True(t, ok, "expected key to now hold an *AoT, got %T", item)
	assert.Len(t, aot.Items, 2)
}

func TestContainerAoTElementsAppendInOrder(t *testing.T) {
	c := NewContainer(false)
	first := NewTable(true)
	first.Name = NewKey("fruit")
	require.NoError(t, c.AppendItem(NewKey("fruit"), first))

	second := NewTable(true)
	second.Name = NewKey("fruit")
	require.NoError(t, c.AppendItem(NewKey("fruit"), second))

	item, err := c.Item("fruit")
	require.NoError(t, err)
	aot := item.(*AoT)
	assert.Len(t, aot.Items, 2)
}

func TestContainerEqual(t *testing.T) {
	c := NewContainer(false)
	require.NoError(t, c.Append(NewKey("a"), 1))
	assert.True(t, c.Equal(map[string]any{"a": int64(1)}))
	assert.False(t, c.Equal(map[string]any{"a": int64(2)}))
}

func TestContainerSetDefault(t *testing.T) {
	c := NewContainer(false)
	v, err := c.SetDefault("a", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)

	v2, err := c.SetDefault("a", 99)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v2, "SetDefault must not overwrite an existing value")
}

func TestContainerSetReplacesOrAppends(t *testing.T) {
	c := NewContainer(false)
	require.NoError(t, c.Set("a", 1))
	v, err := c.Get("a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	require.NoError(t, c.Set("a", 2))
	v2, err := c.Get("a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v2)
}

func TestContainerInsertAfter(t *testing.T) {
	c := NewContainer(false)
	require.NoError(t, c.Append(NewKey("a"), 1))
	require.NoError(t, c.Append(NewKey("c"), 3))
	require.NoError(t, c.InsertAfter("a", NewKey("b"), 2))

	assert.Equal(t, []string{"a", "b", "c"}, c.Keys())
}

// A table built from a nested map and appended under a key must render its
// own header as the full dotted path from the document root, not just the
// local key it was last stored under, or the result wouldn't parse back to
// the same structure.
func TestContainerAppendNestedMapRendersFullDottedHeaders(t *testing.T) {
	doc := NewDocument()
	require.NoError(t, doc.Append("server", map[string]any{
		"host": "localhost",
		"tls":  map[string]any{"cert": "a.pem"},
	}))

	out := doc.String()
	assert.Contains(t, out, "[server]")
	assert.Contains(t, out, "[server.tls]")
	assert.NotContains(t, out, "\n[tls]")

	v, err := doc.Get("server.tls.cert")
	require.NoError(t, err)
	assert.Equal(t, "a.pem", v)
}

func TestContainerInsertAt(t *testing.T) {
	c := NewContainer(false)
	require.NoError(t, c.Append(NewKey("a"), 1))
	require.NoError(t, c.Append(NewKey("c"), 3))
	require.NoError(t, c.InsertAt(1, NewKey("b"), 2))

	assert.Equal(t, []string{"a", "b", "c"}, c.Keys())
}
