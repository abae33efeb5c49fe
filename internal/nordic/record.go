package nordic

// Record is one decoded line: its type tag plus the typed field values,
// keyed by the layout's field names. Immutable once validated.
type Record struct {
	Type   LineType
	fields map[string]Value
}

// Has reports whether the record carries a field with the given name.
func (r Record) Has(name string) bool {
	_, ok := r.fields[name]
	return ok
}

// Value returns the raw typed value for a field.
func (r Record) Value(name string) (Value, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// Int returns a field as an integer. Zero when absent.
func (r Record) Int(name string) int64 { return r.fields[name].Int() }

// Float returns a field as a float. Integer fields convert; zero when absent.
func (r Record) Float(name string) float64 { return r.fields[name].Float() }

// Text returns a field as text. Empty when absent.
func (r Record) Text(name string) string { return r.fields[name].Text() }
