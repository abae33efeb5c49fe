package nordic

import (
	"math"
	"strings"
	"time"
)

// Validators are pure predicates over a decoded record. Each returns a
// *ValidationError on the first violated rule.

func validateHypocenter(spec *LineSpec, r Record) error {
	if err := requireFields(spec, r); err != nil {
		return err
	}
	if err := checkBlanks(spec.Type, r); err != nil {
		return err
	}
	if lat := r.Float("latitude"); math.Abs(lat) > 90 {
		return &ValidationError{LineType: spec.Type, Field: "latitude", Reason: "outside [-90, 90]"}
	}
	if lon := r.Float("longitude"); math.Abs(lon) > 180 {
		return &ValidationError{LineType: spec.Type, Field: "longitude", Reason: "outside [-180, 180]"}
	}
	// Magnitudes at or above 10 are format corruption, not earthquakes.
	if r.Has("magnitude") && r.Float("magnitude") >= 10.0 {
		return &ValidationError{LineType: spec.Type, Field: "magnitude", Reason: "must be below 10.0"}
	}
	if r.Int("year") < 1910 {
		return &ValidationError{LineType: spec.Type, Field: "year", Reason: "years before 1910 not allowed"}
	}
	if err := checkDate(spec.Type, r); err != nil {
		return err
	}
	return checkClock(spec.Type, r)
}

func validateComment(*LineSpec, Record) error { return nil }

func validatePhase(spec *LineSpec, r Record) error {
	if err := requireFields(spec, r); err != nil {
		return err
	}
	if az := r.Float("azimuth"); az < 0 || az > 360 {
		return &ValidationError{LineType: spec.Type, Field: "azimuth", Reason: "outside [0, 360]"}
	}
	if strings.TrimSpace(r.Text("station")) == "" {
		return &ValidationError{LineType: spec.Type, Field: "station", Reason: "must not be empty"}
	}
	if strings.TrimSpace(r.Text("component")) == "" {
		return &ValidationError{LineType: spec.Type, Field: "component", Reason: "must not be empty"}
	}
	if err := checkClock(spec.Type, r); err != nil {
		return err
	}
	return checkBlanks(spec.Type, r)
}

func validateErrorLine(spec *LineSpec, r Record) error {
	return requireFields(spec, r)
}

func validateIDLine(spec *LineSpec, r Record) error {
	if err := checkBlanks(spec.Type, r); err != nil {
		return err
	}
	if _, err := ParseCompactTime(r.Text("id")); err != nil {
		return &ValidationError{LineType: spec.Type, Field: "id", Reason: "not a compact timestamp"}
	}
	return nil
}

func validateFaultPlane(spec *LineSpec, r Record) error {
	if err := checkBlanks(spec.Type, r); err != nil {
		return err
	}
	if s := r.Float("strike"); s < 0 || s > 360 {
		return &ValidationError{LineType: spec.Type, Field: "strike", Reason: "outside [0, 360]"}
	}
	if d := r.Float("dip"); d < 0 || d > 90 {
		return &ValidationError{LineType: spec.Type, Field: "dip", Reason: "outside [0, 90]"}
	}
	if rk := r.Float("rake"); math.Abs(rk) > 180 {
		return &ValidationError{LineType: spec.Type, Field: "rake", Reason: "outside [-180, 180]"}
	}
	return nil
}

func validateBlankLine(spec *LineSpec, r Record) error {
	return checkBlanks(spec.Type, r)
}

// requireFields checks the record's field-name set is a superset of the
// layout's declared names.
func requireFields(spec *LineSpec, r Record) error {
	for _, fs := range spec.Fields {
		if !r.Has(fs.Name) {
			return &ValidationError{LineType: spec.Type, Field: fs.Name, Reason: "required field missing"}
		}
	}
	return nil
}

// checkBlanks verifies every reserved filler column decoded to whitespace.
// Content there means the column layout is misaligned for this line.
func checkBlanks(t LineType, r Record) error {
	for name, v := range r.fields {
		if !strings.HasPrefix(name, "blank") {
			continue
		}
		if strings.TrimSpace(v.Text()) != "" {
			return &ValidationError{LineType: t, Field: name, Reason: "filler column is not blank"}
		}
	}
	return nil
}

// checkDate verifies year/month/day compose into a real calendar date.
func checkDate(t LineType, r Record) error {
	y, m, d := int(r.Int("year")), int(r.Int("month")), int(r.Int("day"))
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return &ValidationError{LineType: t, Reason: "invalid calendar date"}
	}
	dt := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if dt.Year() != y || dt.Month() != time.Month(m) || dt.Day() != d {
		return &ValidationError{LineType: t, Reason: "invalid calendar date"}
	}
	return nil
}

// checkClock verifies the hour/minute/second fields compose into a valid clock
// time. Hours up to 48 are allowed: the format encodes next-day readings as
// hour >= 24, resolved during event assembly.
func checkClock(t LineType, r Record) error {
	if h := r.Int("hour"); h < 0 || h > 48 {
		return &ValidationError{LineType: t, Field: "hour", Reason: "outside [0, 48]"}
	}
	if m := r.Int("minute"); m < 0 || m > 59 {
		return &ValidationError{LineType: t, Field: "minute", Reason: "outside [0, 59]"}
	}
	if s := r.Float("second"); s < 0 || s >= 60 {
		return &ValidationError{LineType: t, Field: "second", Reason: "outside [0, 60)"}
	}
	return nil
}

// ParseCompactTime parses the 14-digit timestamp used by ID lines,
// e.g. "19961002034319".
func ParseCompactTime(s string) (time.Time, error) {
	return time.Parse("20060102150405", strings.TrimSpace(s))
}
