package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseSFileName extracts the timestamp embedded in a SEISAN S-file name.
// Names look like "01-1242-20L.S200002": day, hour, minute, second before the
// extension; year and month after the ".S". This timestamp is distinct from
// any in-line time and is what event resource ids are derived from, so the
// same physical file always re-parses to the same id.
func ParseSFileName(name string) (time.Time, error) {
	base, ext, ok := strings.Cut(name, ".S")
	if !ok || len(base) < 10 || len(ext) < 6 {
		return time.Time{}, fmt.Errorf("%q is not an s-file name", name)
	}
	day, err := atoiField(name, base[0:2])
	if err != nil {
		return time.Time{}, err
	}
	hour, err := atoiField(name, base[3:5])
	if err != nil {
		return time.Time{}, err
	}
	minute, err := atoiField(name, base[5:7])
	if err != nil {
		return time.Time{}, err
	}
	second, err := atoiField(name, base[8:10])
	if err != nil {
		return time.Time{}, err
	}
	year, err := atoiField(name, ext[0:4])
	if err != nil {
		return time.Time{}, err
	}
	month, err := atoiField(name, ext[4:6])
	if err != nil {
		return time.Time{}, err
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, fmt.Errorf("%q encodes an invalid date", name)
	}
	return t, nil
}

func atoiField(name, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%q is not an s-file name: %w", name, err)
	}
	return n, nil
}

// eventResourceID renders the file timestamp as the event's stable id,
// e.g. "2000-02-01T12-42-20".
func eventResourceID(t time.Time) ResourceID {
	return ResourceID(t.Format("2006-01-02T15-04-05"))
}
