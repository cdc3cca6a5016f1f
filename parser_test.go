package tomledit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTripsExactSource(t *testing.T) {
	src := "# file header\nname = \"tom\"   # inline\n\n[server]\nhost = \"localhost\"\nport = 8080\n"
	doc, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, src, doc.String())
}

func TestParseBasicValues(t *testing.T) {
	doc, err := Parse("a = 1\nb = 1.5\nc = true\nd = \"hi\"\n")
	require.NoError(t, err)

	v, err := doc.Get("a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	v, err = doc.Get("b")
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)

	v, err = doc.Get("c")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = doc.Get("d")
	require.NoError(t, err)
	assert.Equal(t, "hi", v)
}

func TestParseDottedKeyValue(t *testing.T) {
	doc, err := Parse("physical.color = \"orange\"\nphysical.shape = \"round\"\n")
	require.NoError(t, err)

	v, err := doc.Get("physical.color")
	require.NoError(t, err)
	assert.Equal(t, "orange", v)

	top := doc.Value()
	physical, ok := top["physical"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "round", physical["shape"])
}

func TestParseImplicitSuperTable(t *testing.T) {
	src := "[a.b]\nx = 1\n"
	doc, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, src, doc.String())

	v, err := doc.Get("a.b.x")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestParseOutOfOrderSuperTable(t *testing.T) {
	src := "[a.b]\nx = 1\n\n[a]\ny = 2\n\n[a.c]\nz = 3\n"
	doc, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, src, doc.String(), "out-of-order super-tables must round-trip exactly")

	v, err := doc.Get("a.y")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

// Covers the out-of-order super-table scenario with an unrelated table
// interleaved between the two "a" fragments: "a" is never itself written
// with its own header, so each reference to it must be filed as a new
// physical fragment rather than folded into the first one, or [a.d] would
// render out of place (ahead of [c]) and c["a"] would come back as a plain
// *Table instead of a proxy over both fragments.
func TestParseOutOfOrderSuperTableWithInterveningTable(t *testing.T) {
	src := "[a.b]\nx = 1\n[c]\ny = 2\n[a.d]\nz = 3\n"
	doc, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, src, doc.String(), "render must preserve the original physical ordering")

	v, err := doc.Get("a.b.x")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	v, err = doc.Get("a.d.z")
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	v, err = doc.Get("c.y")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	item, err := doc.Container().Item("a")
	require.NoError(t, err)
	_, isProxy := item.(*OutOfOrderTableProxy)
	assert.True(t, isProxy, "c[\"a\"] must be a proxy over both scattered fragments, got %T", item)
}

func TestParseArrayOfTables(t *testing.T) {
	src := "[[fruit]]\nname = \"apple\"\n\n[[fruit]]\nname = \"banana\"\n"
	doc, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, src, doc.String())

	v, err := doc.Get("fruit")
	require.NoError(t, err)
	items, ok := v.([]any)
	require.True(t, ok)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "apple", first["name"])
}

func TestParseInlineTable(t *testing.T) {
	src := "point = {x = 1,y = 2}\n"
	doc, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, src, doc.String(), "parser-built inline tables render a bare comma between entries")

	v, err := doc.Get("point")
	require.NoError(t, err)
	point, ok := v.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(1), point["x"])
}

func TestParseDuplicateKeyFails(t *testing.T) {
	_, err := Parse("a = 1\na = 2\n")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestParseDuplicateTableFails(t *testing.T) {
	_, err := Parse("[a]\nx = 1\n[a]\ny = 2\n")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestParseTableRedefinedAsArrayFails(t *testing.T) {
	_, err := Parse("[a]\nx = 1\n[[a]]\ny = 2\n")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestUnmarshalProjectsPlainMap(t *testing.T) {
	v, err := Unmarshal("a = 1\n[b]\nc = 2\n")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v["a"])
	b, ok := v["b"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(2), b["c"])
}
