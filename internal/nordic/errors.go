package nordic

import "fmt"

// LineLengthError reports a line that is not exactly 80 columns. The Nordic
// format is strictly fixed-width; anything else cannot be column-sliced.
type LineLengthError struct {
	Length int
}

func (e *LineLengthError) Error() string {
	return fmt.Sprintf("nordic line must be exactly 80 columns, got %d", e.Length)
}

// UnsupportedLineTypeError reports a column-80 type tag with no registered spec.
type UnsupportedLineTypeError struct {
	LineType LineType
}

func (e *UnsupportedLineTypeError) Error() string {
	return fmt.Sprintf("unsupported nordic line type %q", string(rune(e.LineType)))
}

// FormatStringError reports a malformed field format code. Format codes are
// fixed at registry construction, so this surfaces only as a startup defect.
type FormatStringError struct {
	Format string
	Reason string
}

func (e *FormatStringError) Error() string {
	return fmt.Sprintf("bad format code %q: %s", e.Format, e.Reason)
}

// ConversionError reports a value that cannot be reconciled with a field's
// declared type, in either the parse or render direction.
type ConversionError struct {
	Format string
	Value  string
	Reason string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %q with format %q: %s", e.Value, e.Format, e.Reason)
}

// ValidationError reports a decoded record that violates its line type's rules.
type ValidationError struct {
	LineType LineType
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid type-%s record: %s", e.LineType, e.Reason)
	}
	return fmt.Sprintf("invalid type-%s record: field %q: %s", e.LineType, e.Field, e.Reason)
}
