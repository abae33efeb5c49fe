package nordic

import "strings"

// Classify determines a line's type. Column 80 blank means a phase line;
// a fully blank line is a separator; anything else is the literal tag.
func Classify(line string) (LineType, error) {
	if len(line) != 80 {
		return 0, &LineLengthError{Length: len(line)}
	}
	switch {
	case line[79] == ' ':
		return LinePhase, nil
	case strings.TrimSpace(line) == "":
		return LineBlank, nil
	default:
		t := LineType(line[79])
		if _, ok := registry[t]; !ok {
			return 0, &UnsupportedLineTypeError{LineType: t}
		}
		return t, nil
	}
}

// Decode classifies, slices, converts and validates one 80-column line.
//
// A line classified as a phase line that fails to decode or validate is given
// exactly one alternate interpretation as a hypocenter line: the format's
// blank-terminator rule for phase lines collides with some malformed
// hypocenter records. If the retry also fails, the hypocenter error wins.
func Decode(line string) (Record, error) {
	t, err := Classify(line)
	if err != nil {
		return Record{}, err
	}
	rec, err := decodeAs(line, t, true)
	if err != nil && t == LinePhase {
		rec1, err1 := decodeAs(line, LineHypocenter, true)
		if err1 != nil {
			return Record{}, err1
		}
		return rec1, nil
	}
	return rec, err
}

// DecodeUnvalidated decodes a line without running its type's validator and
// without the phase/hypocenter reclassification fallback.
func DecodeUnvalidated(line string) (Record, error) {
	t, err := Classify(line)
	if err != nil {
		return Record{}, err
	}
	return decodeAs(line, t, false)
}

func decodeAs(line string, t LineType, validate bool) (Record, error) {
	spec, err := SpecFor(t)
	if err != nil {
		return Record{}, err
	}
	fields := make(map[string]Value, len(spec.Fields))
	for _, fs := range spec.Fields {
		v, err := fs.conv.Parse(line[fs.Start:fs.End])
		if err != nil {
			return Record{}, err
		}
		fields[fs.Name] = v
	}
	rec := Record{Type: t, fields: fields}
	if validate {
		if err := spec.Validate(rec); err != nil {
			return Record{}, err
		}
	}
	return rec, nil
}
