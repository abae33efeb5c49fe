package nordic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stampLine builds an 80-column line by placing substrings at fixed offsets
// over a blank background.
func stampLine(t *testing.T, parts map[int]string) string {
	t.Helper()
	b := []byte(strings.Repeat(" ", 80))
	for at, s := range parts {
		require.LessOrEqual(t, at+len(s), 80)
		copy(b[at:], s)
	}
	return string(b)
}

// hypocenterParts is a well-formed type-1 line: 1996-06-03 20:02:17.8, a
// local event at 61.689N 3.259E, 15 km deep, ML 3.2 by TES.
func hypocenterParts() map[int]string {
	return map[int]string{
		1:  "1996",
		6:  " 6",
		8:  " 3",
		11: "20",
		13: " 2",
		16: "17.8",
		21: "L",
		23: " 61.689",
		30: "   3.259",
		38: " 15.0",
		45: "TES",
		48: " 11",
		51: " 1.0",
		55: " 3.2",
		59: "L",
		60: "TES",
		79: "1",
	}
}

// phaseParts is a well-formed type-4 line: an impulsive manual P pick at
// station FOO, vertical component, 20:02:17.50.
func phaseParts() map[int]string {
	return map[int]string{
		1:  "FOO",
		6:  "S",
		7:  "Z",
		9:  "I",
		10: "P",
		16: "C",
		18: "20",
		20: " 2",
		22: " 17.50",
		63: "  0.3",
		70: "  292",
		76: "123",
	}
}

func TestClassify(t *testing.T) {
	t.Run("wrong length", func(t *testing.T) {
		_, err := Classify("too short")
		var lerr *LineLengthError
		require.ErrorAs(t, err, &lerr)
		assert.Equal(t, 9, lerr.Length)
	})

	t.Run("blank column 80 means phase", func(t *testing.T) {
		lt, err := Classify(stampLine(t, phaseParts()))
		require.NoError(t, err)
		assert.Equal(t, LinePhase, lt)
	})

	t.Run("fully blank line is a separator", func(t *testing.T) {
		lt, err := Classify(strings.Repeat(" ", 80))
		require.NoError(t, err)
		assert.Equal(t, LineBlank, lt)
	})

	t.Run("tagged lines use the literal tag", func(t *testing.T) {
		for _, tag := range []byte{'1', '3', 'E', 'H', 'I', 'F', '6'} {
			lt, err := Classify(stampLine(t, map[int]string{40: "x", 79: string(tag)}))
			require.NoError(t, err)
			assert.Equal(t, LineType(tag), lt)
		}
	})

	t.Run("unknown tag is rejected", func(t *testing.T) {
		_, err := Classify(stampLine(t, map[int]string{40: "x", 79: "Z"}))
		var uerr *UnsupportedLineTypeError
		require.ErrorAs(t, err, &uerr)
		assert.Equal(t, LineType('Z'), uerr.LineType)
	})
}

func TestDecode_Hypocenter(t *testing.T) {
	rec, err := Decode(stampLine(t, hypocenterParts()))
	require.NoError(t, err)

	assert.Equal(t, LineHypocenter, rec.Type)
	assert.Equal(t, int64(1996), rec.Int("year"))
	assert.Equal(t, int64(6), rec.Int("month"))
	assert.Equal(t, int64(3), rec.Int("day"))
	assert.Equal(t, int64(20), rec.Int("hour"))
	assert.Equal(t, int64(2), rec.Int("minute"))
	assert.InDelta(t, 17.8, rec.Float("second"), 1e-9)
	assert.Equal(t, "L", rec.Text("distancecode"))
	assert.InDelta(t, 61.689, rec.Float("latitude"), 1e-9)
	assert.InDelta(t, 3.259, rec.Float("longitude"), 1e-9)
	assert.InDelta(t, 15.0, rec.Float("depth"), 1e-9)
	assert.Equal(t, "TES", rec.Text("hypagency"))
	assert.Equal(t, int64(11), rec.Int("numstations"))
	assert.InDelta(t, 3.2, rec.Float("magnitude"), 1e-9)
	assert.Equal(t, "L", rec.Text("magtype"))
	assert.Equal(t, "TES", rec.Text("magagency"))
}

func TestDecode_Phase(t *testing.T) {
	rec, err := Decode(stampLine(t, phaseParts()))
	require.NoError(t, err)

	assert.Equal(t, LinePhase, rec.Type)
	assert.Equal(t, "FOO", rec.Text("station"))
	assert.Equal(t, "Z", rec.Text("component"))
	assert.Equal(t, "P", rec.Text("phaseid"))
	assert.Equal(t, "I", rec.Text("qualityindicator"))
	assert.Equal(t, "C", rec.Text("firstmotion"))
	assert.Equal(t, int64(20), rec.Int("hour"))
	assert.InDelta(t, 17.5, rec.Float("second"), 1e-9)
	assert.InDelta(t, 0.3, rec.Float("traveltimeresid"), 1e-9)
	assert.InDelta(t, 292, rec.Float("distance"), 1e-9)
	assert.Equal(t, int64(123), rec.Int("azimuth"))
}

func TestDecode_PhaseFallsBackToHypocenter(t *testing.T) {
	// A hypocenter line with a blank type column classifies as a phase line
	// but fails the phase layout; the retry decodes it as a hypocenter.
	parts := hypocenterParts()
	delete(parts, 79)

	rec, err := Decode(stampLine(t, parts))
	require.NoError(t, err)
	assert.Equal(t, LineHypocenter, rec.Type)
	assert.Equal(t, int64(1996), rec.Int("year"))
}

func TestDecode_FallbackFailurePropagatesHypocenterError(t *testing.T) {
	// Fails as a phase line (misaligned fillers) and as a hypocenter line
	// (no plausible date), so the hypocenter error wins.
	line := stampLine(t, map[int]string{0: strings.Repeat("x", 79)})

	_, err := Decode(line)
	require.Error(t, err)
	var cerr *ConversionError
	assert.ErrorAs(t, err, &cerr)
	assert.Equal(t, "%4d", cerr.Format) // the hypocenter year column, not the phase layout
}

func TestDecode_PhaseValidation(t *testing.T) {
	t.Run("azimuth out of range", func(t *testing.T) {
		parts := phaseParts()
		parts[76] = "999"
		// decodes as a phase, then retries as hypocenter and fails there too
		_, err := Decode(stampLine(t, parts))
		require.Error(t, err)
	})

	t.Run("missing station", func(t *testing.T) {
		parts := phaseParts()
		delete(parts, 1)
		_, err := Decode(stampLine(t, parts))
		require.Error(t, err)
	})
}

func TestDecode_HypocenterValidation(t *testing.T) {
	cases := []struct {
		name  string
		at    int
		value string
	}{
		{"latitude out of range", 23, " 91.000"},
		{"longitude out of range", 30, " 181.000"},
		{"magnitude too large", 55, "10.0"},
		{"year too early", 1, "1875"},
		{"impossible date", 8, "31"}, // 1996-06-31
		{"hour out of range", 11, "49"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parts := hypocenterParts()
			parts[tc.at] = tc.value
			_, err := Decode(stampLine(t, parts))
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestDecode_NextDayHourAccepted(t *testing.T) {
	parts := phaseParts()
	parts[18] = "24"

	rec, err := Decode(stampLine(t, parts))
	require.NoError(t, err)
	assert.Equal(t, int64(24), rec.Int("hour"))
}

func TestDecodeUnvalidated_SkipsValidation(t *testing.T) {
	parts := hypocenterParts()
	parts[23] = " 91.000" // invalid latitude

	rec, err := DecodeUnvalidated(stampLine(t, parts))
	require.NoError(t, err)
	assert.Equal(t, LineHypocenter, rec.Type)
	assert.InDelta(t, 91.0, rec.Float("latitude"), 1e-9)
}

func TestDecode_ErrorLine(t *testing.T) {
	line := stampLine(t, map[int]string{
		1:  "GAP=",
		5:  "164",
		14: "  0.87",
		24: "   4.9",
		32: "   6.1",
		38: "  6.2",
		43: "  0.1832E+02",
		55: " -0.2759E+02",
		68: " 0.1623E+02",
		79: "E",
	})

	rec, err := Decode(line)
	require.NoError(t, err)
	assert.Equal(t, LineError, rec.Type)
	assert.Equal(t, int64(164), rec.Int("azgap"))
	assert.InDelta(t, 0.87, rec.Float("otimeerror"), 1e-9)
	assert.InDelta(t, 4.9, rec.Float("latitudeerror"), 1e-9)
	assert.InDelta(t, 6.1, rec.Float("longitudeerror"), 1e-9)
	assert.InDelta(t, 6.2, rec.Float("deptherror"), 1e-9)
	assert.InDelta(t, 18.32, rec.Float("covariancexy"), 1e-9)
	assert.InDelta(t, -27.59, rec.Float("covariancexz"), 1e-9)
	assert.InDelta(t, 16.23, rec.Float("covarianceyz"), 1e-9)
}

func TestDecode_IDLine(t *testing.T) {
	line := stampLine(t, map[int]string{
		1:  "ACTION:",
		8:  "SPL",
		12: "96-06-03 20:02",
		27: "OP:",
		30: "jh",
		35: "STATUS:",
		57: "ID:",
		60: "19960603200217",
		79: "I",
	})

	rec, err := Decode(line)
	require.NoError(t, err)
	assert.Equal(t, LineID, rec.Type)
	assert.Equal(t, "19960603200217", rec.Text("id"))
	assert.Equal(t, "jh", rec.Text("operator"))

	ts, err := ParseCompactTime(rec.Text("id"))
	require.NoError(t, err)
	assert.Equal(t, 1996, ts.Year())
}

func TestDecode_IDLineRejectsBadTimestamp(t *testing.T) {
	line := stampLine(t, map[int]string{
		57: "ID:",
		60: "not-a-timestamp",
		79: "I",
	})
	_, err := Decode(line)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "id", verr.Field)
}

func TestDecode_FaultPlaneLine(t *testing.T) {
	line := stampLine(t, map[int]string{
		0:  "     125.0",
		10: "      40.0",
		20: "     -90.0",
		66: "TES",
		70: "FPFIT",
		79: "F",
	})

	rec, err := Decode(line)
	require.NoError(t, err)
	assert.Equal(t, LineFaultPlane, rec.Type)
	assert.InDelta(t, 125.0, rec.Float("strike"), 1e-9)
	assert.InDelta(t, 40.0, rec.Float("dip"), 1e-9)
	assert.InDelta(t, -90.0, rec.Float("rake"), 1e-9)
	assert.Equal(t, "TES", rec.Text("agency"))
}

func TestDecode_FaultPlaneValidation(t *testing.T) {
	cases := []struct {
		name  string
		at    int
		value string
	}{
		{"dip out of range", 10, "      95.0"},
		{"rake out of range", 20, "     200.0"},
		{"strike out of range", 0, "     400.0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parts := map[int]string{
				0:  "     125.0",
				10: "      40.0",
				20: "     -90.0",
				79: "F",
			}
			parts[tc.at] = tc.value
			_, err := Decode(stampLine(t, parts))
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestDecode_CommentAndPassthrough(t *testing.T) {
	for _, tag := range []byte{'3', '2', '5', '6', '7'} {
		line := stampLine(t, map[int]string{1: "free text here", 79: string(tag)})
		rec, err := Decode(line)
		require.NoError(t, err)
		assert.Equal(t, LineType(tag), rec.Type)
		assert.Equal(t, "free text here", rec.Text("comment"))
	}
}
