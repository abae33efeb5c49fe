package nordic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConverter_RejectsMalformedFormats(t *testing.T) {
	cases := []struct {
		name   string
		format string
	}{
		{"no directive", "4d"},
		{"two directives", "%%4d"},
		{"no type char", "%4"},
		{"two type chars", "%4ds"},
		{"two decimal points", "%4.1.2f"},
		{"bad width", "%x4d"},
		{"trailing decimal point", "%4.f"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConverter(tc.format)
			require.Error(t, err)
			var ferr *FormatStringError
			assert.ErrorAs(t, err, &ferr)
		})
	}
}

func TestConverter_ParseInt(t *testing.T) {
	c, err := NewConverter("%4d")
	require.NoError(t, err)

	v, err := c.Parse("  42")
	require.NoError(t, err)
	assert.Equal(t, KindInt, v.Kind())
	assert.Equal(t, int64(42), v.Int())

	// blank numeric columns decode to zero
	v, err = c.Parse("    ")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v.Int())

	_, err = c.Parse(" 4x ")
	require.Error(t, err)
	var cerr *ConversionError
	assert.ErrorAs(t, err, &cerr)
}

func TestConverter_ParseFloat(t *testing.T) {
	c, err := NewConverter("%7.3f")
	require.NoError(t, err)

	v, err := c.Parse(" 61.689")
	require.NoError(t, err)
	assert.Equal(t, KindFloat, v.Kind())
	assert.InDelta(t, 61.689, v.Float(), 1e-9)

	v, err = c.Parse("       ")
	require.NoError(t, err)
	assert.Zero(t, v.Float())
}

func TestConverter_ParseText_TrimsOnlyWhenShorter(t *testing.T) {
	c, err := NewConverter("%-5s")
	require.NoError(t, err)

	v, err := c.Parse(" STOK")
	require.NoError(t, err)
	assert.Equal(t, "STOK", v.Text())

	// a slice with no padding passes through untouched
	v, err = c.Parse("ABCDE")
	require.NoError(t, err)
	assert.Equal(t, "ABCDE", v.Text())
}

func TestConverter_ImpliedDecimal(t *testing.T) {
	c, err := NewConverter("%4.2l")
	require.NoError(t, err)

	v, err := c.Parse("1000")
	require.NoError(t, err)
	assert.InDelta(t, 10.0, v.Float(), 1e-9)

	out, err := c.Render(FloatValue(10.0))
	require.NoError(t, err)
	assert.Equal(t, "1000", out)
}

func TestConverter_Render(t *testing.T) {
	t.Run("int pads to width", func(t *testing.T) {
		c, err := NewConverter("%3d")
		require.NoError(t, err)
		out, err := c.Render(IntValue(7))
		require.NoError(t, err)
		assert.Equal(t, "  7", out)
	})

	t.Run("left-aligned text", func(t *testing.T) {
		c, err := NewConverter("%-5s")
		require.NoError(t, err)
		out, err := c.Render(TextValue("ST"))
		require.NoError(t, err)
		assert.Equal(t, "ST   ", out)
	})

	t.Run("float accepts int values", func(t *testing.T) {
		c, err := NewConverter("%5.1f")
		require.NoError(t, err)
		out, err := c.Render(IntValue(15))
		require.NoError(t, err)
		assert.Equal(t, " 15.0", out)
	})

	t.Run("scientific notation", func(t *testing.T) {
		c, err := NewConverter("%12.4E")
		require.NoError(t, err)
		out, err := c.Render(FloatValue(0.00123))
		require.NoError(t, err)
		assert.Equal(t, "  1.2300E-03", out)
	})

	t.Run("kind mismatch fails", func(t *testing.T) {
		c, err := NewConverter("%4d")
		require.NoError(t, err)
		_, err = c.Render(TextValue("abc"))
		require.Error(t, err)
		var cerr *ConversionError
		assert.ErrorAs(t, err, &cerr)
	})
}

func TestForFormat_SharesConverters(t *testing.T) {
	a, err := ForFormat("%6.2f")
	require.NoError(t, err)
	b, err := ForFormat("%6.2f")
	require.NoError(t, err)
	assert.Same(t, a, b)
}
