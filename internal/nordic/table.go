package nordic

import "errors"

var (
	// ErrEmptyTable means a source file produced no decodable records.
	ErrEmptyTable = errors.New("no valid nordic records")
	// ErrNoHypocenter means a source file has no type-1 header line.
	ErrNoHypocenter = errors.New("no hypocenter (type-1) record")
	// ErrHeaderNotFirst means the first record is not the type-1 header.
	ErrHeaderNotFirst = errors.New("first record is not a hypocenter (type-1) line")
)

// Table is the ordered record set for one source file, with memoized
// per-type projections. Build one per file and discard it; the projection
// cache must never outlive the file it was built from.
type Table struct {
	records []Record
	proj    map[LineType][]Record
}

// NewTable wraps decoded records, enforcing the S-file shape: non-empty,
// with a type-1 hypocenter line first.
func NewTable(records []Record) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrEmptyTable
	}
	has1 := false
	for _, r := range records {
		if r.Type == LineHypocenter {
			has1 = true
			break
		}
	}
	if !has1 {
		return nil, ErrNoHypocenter
	}
	if records[0].Type != LineHypocenter {
		return nil, ErrHeaderNotFirst
	}
	return &Table{records: records, proj: make(map[LineType][]Record)}, nil
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.records) }

// Records returns all records in file order.
func (t *Table) Records() []Record { return t.records }

// Project returns the records of one line type, in file order. Results are
// memoized: assembly reads the same projection from several extraction steps.
func (t *Table) Project(lt LineType) []Record {
	if cached, ok := t.proj[lt]; ok {
		return cached
	}
	var out []Record
	for _, r := range t.records {
		if r.Type == lt {
			out = append(out, r)
		}
	}
	t.proj[lt] = out
	return out
}

// First returns the first record of a line type, if any.
func (t *Table) First(lt LineType) (Record, bool) {
	recs := t.Project(lt)
	if len(recs) == 0 {
		return Record{}, false
	}
	return recs[0], true
}
