package tomledit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoolItem(t *testing.T) {
	b := NewBool(true)
	assert.Equal(t, KindBool, b.Kind())
	assert.Equal(t, "true", b.AsString())
	assert.Equal(t, true, b.Value())
}

func TestIntegerItem(t *testing.T) {
	n := NewInteger(42)
	assert.Equal(t, "42", n.AsString())
	assert.Equal(t, int64(42), n.Value())

	raw := NewIntegerRaw(255, "0xFF")
	assert.Equal(t, "0xFF", raw.AsString())
	assert.Equal(t, int64(255), raw.Value())

	sum := n.Add(8)
	assert.Equal(t, int64(50), sum.V)
	assert.Equal(t, "50", sum.Raw)
}

func TestFloatItemCanonicalForm(t *testing.T) {
	f := NewFloat(1)
	assert.Equal(t, "1.0", f.AsString())

	inf := NewFloat(posInf())
	assert.Equal(t, "inf", inf.AsString())

	ninf := NewFloat(negInf())
	assert.Equal(t, "-inf", ninf.AsString())

	nan := NewFloat(nanValue())
	assert.Equal(t, "nan", nan.AsString())
}

func TestStringItemEscaping(t *testing.T) {
	s := NewString("line\nbreak")
	assert.Equal(t, `"line\nbreak"`, s.AsString())
	assert.Equal(t, "line\nbreak", s.Value())
}

func TestStringFormPreservesOriginal(t *testing.T) {
	s := NewStringForm(StringMultiBasic, "raw value", `"""raw value"""`)
	assert.Equal(t, `"""raw value"""`, s.AsString())
	assert.Equal(t, StringMultiBasic, s.StringKind())
}

func TestNullAndWhitespaceFootprint(t *testing.T) {
	n := Null{}
	assert.Equal(t, KindNull, n.Kind())
	assert.Nil(t, n.Trivia())
	assert.Equal(t, "", n.AsString())

	ws := NewWhitespace("  \n")
	assert.Nil(t, ws.Trivia())
	assert.Equal(t, "  \n", ws.AsString())
}

func TestCommentAsString(t *testing.T) {
	c := NewComment("# hello")
	c.trivia.Indent = "  "
	c.trivia.Trail = "\n"
	assert.Equal(t, "  # hello\n", c.AsString())
}

func TestDateTimeCoercionNormalizesUTCOffset(t *testing.T) {
	parsed, err := time.Parse(time.RFC3339, "2021-01-02T03:04:05+00:00")
	require.NoError(t, err)

	it, err := ItemFrom(parsed)
	require.NoError(t, err)
	dt, ok := it.(*DateTime)
	require.True(t, ok, "expected *DateTime, got %T", it)
	assert.Equal(t, "2021-01-02T03:04:05Z", dt.Raw)
}
