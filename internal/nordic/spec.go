// Package nordic decodes the fixed-column Nordic (SEISAN S-file) seismic
// bulletin format into validated, typed records.
//
// Column layouts follow the SEISAN manual, appendix A. Every line is exactly
// 80 columns; column 80 carries the line-type tag (blank means a phase line).
package nordic

// LineType is the single-character tag in column 80 identifying a line's schema.
type LineType byte

func (t LineType) String() string { return string(rune(t)) }

const (
	// LineHypocenter is the mandatory event header (origin, magnitudes).
	LineHypocenter LineType = '1'
	// LineComment is free-form comment text.
	LineComment LineType = '3'
	// LinePhase is a phase reading: pick, amplitude, residuals.
	LinePhase LineType = '4'
	// LineError carries hypocenter error estimates.
	LineError LineType = 'E'
	// LineHighAccuracy is the high-precision hypocenter line.
	LineHighAccuracy LineType = 'H'
	// LineID is the event ID and action-history line.
	LineID LineType = 'I'
	// LineFaultPlane is a fault plane solution.
	LineFaultPlane LineType = 'F'
	// LineBlank is an all-blank separator line.
	LineBlank LineType = '0'
)

// passthroughTypes are tags the format reserves but this decoder does not
// interpret; they decode under the permissive comment layout.
var passthroughTypes = []LineType{'2', '5', '6', '7', '8', '9', 'A'}

// FieldSpec is one column range of a line layout. Start/End are 0-indexed,
// half-open.
type FieldSpec struct {
	Start  int
	End    int
	Name   string
	Format string

	conv *Converter
}

// LineSpec is the full layout and validator for one line type.
type LineSpec struct {
	Type     LineType
	Fields   []FieldSpec
	Validate func(Record) error
}

var registry = map[LineType]*LineSpec{}

// SpecFor returns the registered layout for a line type.
func SpecFor(t LineType) (*LineSpec, error) {
	spec, ok := registry[t]
	if !ok {
		return nil, &UnsupportedLineTypeError{LineType: t}
	}
	return spec, nil
}

func register(t LineType, fields []FieldSpec, validate func(*LineSpec, Record) error) {
	for i := range fields {
		fields[i].conv = mustConverter(fields[i].Format)
	}
	spec := &LineSpec{Type: t, Fields: fields}
	spec.Validate = func(r Record) error { return validate(spec, r) }
	registry[t] = spec
}

func f(start, end int, name, format string) FieldSpec {
	return FieldSpec{Start: start, End: end, Name: name, Format: format}
}

func init() {
	// Type 1: hypocenter / event header.
	register(LineHypocenter, []FieldSpec{
		f(0, 1, "blank1", "%-s"),
		f(1, 5, "year", "%4d"),
		f(5, 6, "blank2", "%s"),
		f(6, 8, "month", "%2d"),
		f(8, 10, "day", "%2d"),
		f(10, 11, "fixotime", "%1s"),
		f(11, 13, "hour", "%2d"),
		f(13, 15, "minute", "%2d"),
		f(15, 16, "blank3", "%s"),
		f(16, 20, "second", "%4.1f"),
		f(20, 21, "model", "%1s"),
		f(21, 22, "distancecode", "%1s"),
		f(22, 23, "eventid", "%1s"),
		f(23, 30, "latitude", "%7.3f"),
		f(30, 38, "longitude", "%8.3f"),
		f(38, 43, "depth", "%5.1f"),
		f(43, 44, "depthcode", "%1s"),
		f(44, 45, "locindicator", "%1s"),
		f(45, 48, "hypagency", "%-3s"),
		f(48, 51, "numstations", "%3d"),
		f(51, 55, "rms", "%4.2f"),
		f(55, 59, "magnitude", "%4.1f"),
		f(59, 60, "magtype", "%1s"),
		f(60, 63, "magagency", "%3s"),
		f(63, 67, "magnitude2", "%4.1f"),
		f(67, 68, "mag2type", "%1s"),
		f(68, 71, "mag2agency", "%3s"),
		f(71, 75, "magnitude3", "%4.1f"),
		f(75, 76, "mag3type", "%1s"),
		f(76, 79, "mag3agency", "%3s"),
		f(79, 80, "linetype", "%1s"),
	}, validateHypocenter)

	// Type 3: comment. The reserved-but-unused tags share this layout.
	commentFields := func() []FieldSpec {
		return []FieldSpec{
			f(0, 79, "comment", "%s"),
			f(79, 80, "linetype", "%s"),
		}
	}
	register(LineComment, commentFields(), validateComment)
	for _, t := range passthroughTypes {
		register(t, commentFields(), validateComment)
	}

	// Type 4: phase reading.
	register(LinePhase, []FieldSpec{
		f(0, 1, "blank1", "%s"),
		f(1, 6, "station", "%-5s"),
		f(6, 7, "instrumenttype", "%s"),
		f(7, 8, "component", "%s"),
		f(8, 9, "blank2", "%s"),
		f(9, 10, "qualityindicator", "%s"),
		f(10, 14, "phaseid", "%4s"),
		f(14, 15, "weight", "%d"),
		f(15, 16, "autoflag", "%s"),
		f(16, 17, "firstmotion", "%s"),
		f(17, 18, "blank3", "%s"),
		f(18, 20, "hour", "%2d"),
		f(20, 22, "minute", "%2d"),
		f(22, 28, "second", "%6.2f"),
		f(28, 29, "blank4", "%s"),
		f(29, 33, "duration", "%4d"),
		f(33, 40, "amplitude", "%7.1f"),
		f(40, 41, "blank5", "%s"),
		f(41, 45, "period", "%4.2f"),
		f(45, 46, "blank6", "%s"),
		f(46, 51, "backazimuth", "%5.1f"),
		f(51, 52, "blank7", "%s"),
		f(52, 56, "phasevelocity", "%4.0f"),
		f(56, 60, "incidenceangle", "%4.0f"),
		f(60, 63, "azimuthresid", "%3d"),
		f(63, 68, "traveltimeresid", "%5.1f"),
		f(68, 70, "weight2", "%2d"),
		f(70, 75, "distance", "%5.0f"),
		f(75, 76, "blank8", "%s"),
		f(76, 79, "azimuth", "%3d"),
		f(79, 80, "linetype", "%s"),
	}, validatePhase)

	// Type E: hypocenter error estimates. The layout has documented gaps;
	// unnamed columns are simply not sliced.
	register(LineError, []FieldSpec{
		f(0, 1, "blank1", "%s"),
		f(1, 5, "textgap", "%4s"),
		f(5, 8, "azgap", "%3d"),
		f(14, 20, "otimeerror", "%6.2f"),
		f(24, 30, "latitudeerror", "%6.1f"),
		f(30, 32, "blank2", "%1s"),
		f(32, 38, "longitudeerror", "%6.1f"),
		f(38, 43, "deptherror", "%5.1f"),
		f(43, 55, "covariancexy", "%12.4E"),
		f(55, 67, "covariancexz", "%12.4E"),
		f(68, 79, "covarianceyz", "%12.4E"),
		f(79, 80, "linetype", "%1s"),
	}, validateErrorLine)

	// Type H: high-accuracy hypocenter. Same semantic fields as type 1 at
	// higher precision, so it shares the hypocenter validator.
	register(LineHighAccuracy, []FieldSpec{
		f(0, 1, "blank1", "%-s"),
		f(1, 5, "year", "%4d"),
		f(5, 6, "blank2", "%s"),
		f(6, 8, "month", "%2d"),
		f(8, 10, "day", "%2d"),
		f(10, 11, "fixotime", "%1s"),
		f(11, 13, "hour", "%2d"),
		f(13, 15, "minute", "%2d"),
		f(15, 16, "blank3", "%s"),
		f(16, 22, "second", "%6.3f"),
		f(22, 23, "blank4", "%s"),
		f(23, 32, "latitude", "%9.5f"),
		f(32, 33, "blank5", "%s"),
		f(33, 43, "longitude", "%10.5f"),
		f(43, 44, "blank6", "%s"),
		f(44, 52, "depth", "%8.3f"),
		f(52, 53, "blank7", "%s"),
		f(53, 59, "rms", "%6.3f"),
		f(59, 79, "blank8", "%s"),
		f(79, 80, "linetype", "%s"),
	}, validateHypocenter)

	// Type I: ID / action-history line.
	register(LineID, []FieldSpec{
		f(0, 1, "blank1", "%s"),
		f(1, 8, "actionhelp", "%-7s"),
		f(8, 11, "action", "%-3s"),
		f(11, 12, "blank2", "%s"),
		f(12, 26, "actiondatetime", "%-14s"),
		f(26, 27, "blank3", "%1s"),
		f(27, 30, "operatorhelp", "%3s"),
		f(30, 35, "operator", "%5s"),
		f(35, 42, "statushelp", "%7s"),
		f(42, 56, "statusflag", "%13s"),
		f(56, 57, "blank4", "%1s"),
		f(57, 60, "idhelp", "%3s"),
		f(60, 74, "id", "%14s"),
		f(74, 75, "newflag", "%1s"),
		f(75, 77, "lock", "%1s"),
		f(77, 79, "blank5", "%3s"),
		f(79, 80, "linetype", "%1s"),
	}, validateIDLine)

	// Type F: fault plane solution.
	register(LineFaultPlane, []FieldSpec{
		f(0, 10, "strike", "%10.0f"),
		f(10, 20, "dip", "%10.0f"),
		f(20, 30, "rake", "%10.0f"),
		f(30, 35, "strikeerror", "%5.1f"),
		f(35, 40, "diperror", "%5.1f"),
		f(40, 45, "rakeerror", "%5.1f"),
		f(45, 50, "fiterror", "%5.1f"),
		f(50, 55, "stationdistratio", "%5.1f"),
		f(55, 60, "amplituderatio", "%5.1f"),
		f(60, 62, "numbadpolarity", "%2d"),
		f(62, 63, "blank1", "%s"),
		f(63, 65, "numbadamplitudes", "%2d"),
		f(66, 69, "agency", "%-3s"),
		f(70, 77, "program", "%-7s"),
		f(77, 78, "quality", "%1s"),
		f(78, 79, "blank2", "%1s"),
		f(79, 80, "linetype", "%1s"),
	}, validateFaultPlane)

	// Type 0: all-blank separator.
	register(LineBlank, []FieldSpec{
		f(0, 79, "blank1", "%-s"),
		f(79, 80, "linetype", "%1s"),
	}, validateBlankLine)
}
