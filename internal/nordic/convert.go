package nordic

import (
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Kind identifies the typed representation of a fixed-width field.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindText
	// KindImpliedDecimal is a numeric field written without a literal decimal
	// point; the point's position is implied by the format's precision.
	// Used by some hypoinverse-derived columns.
	KindImpliedDecimal
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindImpliedDecimal:
		return "implied-decimal"
	default:
		return "unknown"
	}
}

// Value is one converted field: a 64-bit integer, a float, or trimmed text.
// Implied-decimal fields carry their scaled result as a float.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

// IntValue wraps an integer field value.
func IntValue(v int64) Value { return Value{kind: KindInt, i: v} }

// FloatValue wraps a floating-point field value.
func FloatValue(v float64) Value { return Value{kind: KindFloat, f: v} }

// TextValue wraps a text field value.
func TextValue(v string) Value { return Value{kind: KindText, s: v} }

// Kind reports the value's typed representation.
func (v Value) Kind() Kind { return v.kind }

// Int returns the integer value. Zero for non-integer kinds.
func (v Value) Int() int64 { return v.i }

// Float returns the floating-point value. Integer values convert.
func (v Value) Float() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// Text returns the text value. Empty for numeric kinds.
func (v Value) Text() string { return v.s }

// Converter translates between a raw fixed-width column slice and a typed
// value, both directions, for one format code. Converters are stateless and
// shared process-wide through ForFormat.
type Converter struct {
	format    string
	kind      Kind
	width     int
	prec      int
	hasPrec   bool
	leftAlign bool
	renderFmt string
	divisor   float64
}

// typeChars maps recognized format type characters to field kinds.
var typeChars = map[byte]Kind{
	'd': KindInt,
	'f': KindFloat,
	'e': KindFloat,
	'E': KindFloat,
	's': KindText,
	'l': KindImpliedDecimal,
}

// converterCache holds converters keyed by format code. Populated lazily,
// never invalidated; the registry uses a few dozen distinct codes.
var converterCache, _ = lru.New[string, *Converter](256)

// ForFormat returns the shared converter for a format code, constructing and
// caching it on first use.
func ForFormat(format string) (*Converter, error) {
	if c, ok := converterCache.Get(format); ok {
		return c, nil
	}
	c, err := NewConverter(format)
	if err != nil {
		return nil, err
	}
	converterCache.Add(format, c)
	return c, nil
}

func mustConverter(format string) *Converter {
	c, err := ForFormat(format)
	if err != nil {
		panic(err)
	}
	return c
}

// NewConverter parses a printf-style format code such as "%4d", "%7.3f",
// "%-5s", "%12.4E" or the implied-decimal "%4.2l".
func NewConverter(format string) (*Converter, error) {
	if strings.Count(format, "%") != 1 {
		return nil, &FormatStringError{Format: format, Reason: "must contain exactly one % directive"}
	}
	if strings.Count(format, ".") > 1 {
		return nil, &FormatStringError{Format: format, Reason: "at most one decimal point allowed"}
	}

	var kind Kind
	var typeChar byte
	seen := 0
	for ch, k := range typeChars {
		if n := strings.Count(format, string(ch)); n > 0 {
			seen += n
			kind = k
			typeChar = ch
		}
	}
	if seen == 0 {
		return nil, &FormatStringError{Format: format, Reason: "no recognized type character (d, f, e, E, s, l)"}
	}
	if seen > 1 {
		return nil, &FormatStringError{Format: format, Reason: "exactly one type character required"}
	}

	c := &Converter{format: format, kind: kind, divisor: 1}

	// What remains between % and the type character is "-", width and precision.
	body := strings.TrimPrefix(format, "%")
	body = strings.Replace(body, string(typeChar), "", 1)
	if strings.HasPrefix(body, "-") {
		c.leftAlign = true
		body = body[1:]
	}
	widthStr, precStr, hasDot := strings.Cut(body, ".")
	if widthStr != "" {
		w, err := strconv.Atoi(widthStr)
		if err != nil {
			return nil, &FormatStringError{Format: format, Reason: "malformed width"}
		}
		c.width = w
	}
	if hasDot {
		if precStr == "" {
			return nil, &FormatStringError{Format: format, Reason: "decimal point without precision"}
		}
		p, err := strconv.Atoi(precStr)
		if err != nil {
			return nil, &FormatStringError{Format: format, Reason: "malformed precision"}
		}
		c.prec = p
		c.hasPrec = true
	}
	if kind == KindImpliedDecimal && c.hasPrec {
		c.divisor = 1
		for i := 0; i < c.prec; i++ {
			c.divisor *= 10
		}
	}
	c.renderFmt = c.buildRenderFmt(typeChar)
	return c, nil
}

func (c *Converter) buildRenderFmt(typeChar byte) string {
	var b strings.Builder
	b.WriteByte('%')
	if c.leftAlign {
		b.WriteByte('-')
	}
	if c.width > 0 {
		fmt.Fprintf(&b, "%d", c.width)
	}
	if c.hasPrec {
		fmt.Fprintf(&b, ".%d", c.prec)
	}
	switch typeChar {
	case 'l':
		// rendered as a regular float, then the point is removed
		b.WriteByte('f')
	case 'e', 'E':
		b.WriteByte(typeChar)
	case 'd':
		b.WriteByte('d')
	default:
		b.WriteByte('s')
	}
	return b.String()
}

// Format returns the original format code.
func (c *Converter) Format() string { return c.format }

// Kind returns the typed representation this converter produces.
func (c *Converter) Kind() Kind { return c.kind }

// Parse converts a raw column slice into a typed value. All-blank numeric
// slices parse as zero; text is stripped of padding only when stripping
// actually shortens it, preserving deliberately blank fields.
func (c *Converter) Parse(raw string) (Value, error) {
	switch c.kind {
	case KindText:
		trimmed := strings.TrimSpace(raw)
		if len(trimmed) < len(raw) {
			return TextValue(trimmed), nil
		}
		return TextValue(raw), nil
	case KindInt:
		t := strings.TrimSpace(raw)
		if t == "" {
			return IntValue(0), nil
		}
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return Value{}, &ConversionError{Format: c.format, Value: raw, Reason: "not an integer"}
		}
		return IntValue(n), nil
	case KindFloat:
		t := strings.TrimSpace(raw)
		if t == "" {
			return FloatValue(0), nil
		}
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return Value{}, &ConversionError{Format: c.format, Value: raw, Reason: "not a number"}
		}
		return FloatValue(f), nil
	case KindImpliedDecimal:
		t := strings.TrimSpace(raw)
		if t == "" {
			return FloatValue(0), nil
		}
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return Value{}, &ConversionError{Format: c.format, Value: raw, Reason: "not a number"}
		}
		return FloatValue(f / c.divisor), nil
	default:
		return Value{}, &ConversionError{Format: c.format, Value: raw, Reason: "unknown kind"}
	}
}

// Render converts a typed value back to its canonical fixed-width string.
// Implied-decimal rendering removes the decimal point from the result.
func (c *Converter) Render(v Value) (string, error) {
	switch c.kind {
	case KindText:
		if v.kind != KindText {
			return "", &ConversionError{Format: c.format, Value: v.kind.String(), Reason: "text format requires a text value"}
		}
		return fmt.Sprintf(c.renderFmt, v.s), nil
	case KindInt:
		if v.kind != KindInt {
			return "", &ConversionError{Format: c.format, Value: v.kind.String(), Reason: "integer format requires an integer value"}
		}
		return fmt.Sprintf(c.renderFmt, v.i), nil
	case KindFloat:
		if v.kind != KindFloat && v.kind != KindInt {
			return "", &ConversionError{Format: c.format, Value: v.kind.String(), Reason: "float format requires a numeric value"}
		}
		return fmt.Sprintf(c.renderFmt, v.Float()), nil
	case KindImpliedDecimal:
		if v.kind != KindFloat && v.kind != KindInt {
			return "", &ConversionError{Format: c.format, Value: v.kind.String(), Reason: "implied-decimal format requires a numeric value"}
		}
		s := fmt.Sprintf(c.renderFmt, v.Float())
		return strings.Replace(s, ".", "", 1), nil
	default:
		return "", &ConversionError{Format: c.format, Value: v.kind.String(), Reason: "unknown kind"}
	}
}
