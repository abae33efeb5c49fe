package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quakeline/nordic-etl/internal/nordic"
)

// ErrNoEvents means a batch of source files yielded no assemblable events.
var ErrNoEvents = errors.New("no events assembled")

// SourceFile is one S-file ready for assembly. Commit acknowledges the file
// after its event has been durably handed off; a nil Commit is a no-op.
type SourceFile struct {
	Name   string
	Lines  []string
	Commit func(ctx context.Context) error
}

// Options tunes event assembly.
type Options struct {
	// Authority namespaces generated resource ids.
	Authority string
	// DefaultNetwork and DefaultChannelPrefix feed synthesized channel ids
	// when no inventory or comment resolves a pick's station.
	DefaultNetwork       string
	DefaultChannelPrefix string
	// Verbose promotes per-line and per-strategy diagnostics to warnings.
	Verbose bool
}

func (o *Options) applyDefaults() {
	if o.Authority == "" {
		o.Authority = "local"
	}
	if o.DefaultNetwork == "" {
		o.DefaultNetwork = "UK"
	}
	if o.DefaultChannelPrefix == "" {
		o.DefaultChannelPrefix = "BH"
	}
}

// Assembler turns decoded S-files into events. Safe for sequential reuse
// across files; each file gets a fresh identifier-resolution context.
type Assembler struct {
	opts      Options
	inventory []WaveformID
	waveforms WaveformLookup
	logger    *slog.Logger
}

// NewAssembler builds an Assembler. The inventory and waveform lookup are
// optional; pass nil to rely on comment lookup and synthesis alone.
func NewAssembler(opts Options, inventory []WaveformID, waveforms WaveformLookup, logger *slog.Logger) *Assembler {
	opts.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		opts:      opts,
		inventory: inventory,
		waveforms: waveforms,
		logger:    logger,
	}
}

// AssembleAll assembles a batch, skipping files that fail with a warning.
// Returns ErrNoEvents when nothing in the batch assembled.
func (a *Assembler) AssembleAll(files []SourceFile) ([]Event, error) {
	events := make([]Event, 0, len(files))
	for _, file := range files {
		ev, err := a.AssembleFile(file)
		if err != nil {
			a.logger.Warn("skipping file", "file", file.Name, "error", err)
			continue
		}
		events = append(events, ev)
	}
	if len(events) == 0 {
		return nil, ErrNoEvents
	}
	return events, nil
}

// AssembleFile assembles one event from one S-file. Undecodable lines are
// skipped with a warning; structural failures (bad file name, no hypocenter
// header) fail the whole file.
func (a *Assembler) AssembleFile(file SourceFile) (Event, error) {
	ts, err := ParseSFileName(file.Name)
	if err != nil {
		return Event{}, err
	}
	table, err := a.decodeLines(file)
	if err != nil {
		return Event{}, fmt.Errorf("%s: %w", file.Name, err)
	}

	resolver := a.newResolver(table)

	ev := Event{
		ResourceID:  eventResourceID(ts),
		Magnitudes:  a.magnitudes(table),
		AssembledAt: clock.Now(),
	}

	picks, amplitudes, arrivals := a.phases(table, resolver)
	ev.Picks = picks
	ev.Amplitudes = amplitudes
	ev.Origins = a.origins(table, arrivals)

	header, _ := table.First(nordic.LineHypocenter)
	ev.Description = strings.TrimSpace(header.Text("distancecode") + header.Text("eventid"))
	// One comment per 3-type record, blank text included.
	for _, rec := range table.Project(nordic.LineComment) {
		ev.Comments = append(ev.Comments, Comment{Text: strings.TrimRight(rec.Text("comment"), " ")})
	}
	if len(ev.Origins) > 0 {
		ev.PreferredOriginID = ev.Origins[0].ResourceID
	}
	if len(ev.Magnitudes) > 0 {
		ev.PreferredMagnitudeID = ev.Magnitudes[0].ResourceID
	}
	return ev, nil
}

// decodeLines decodes each 80-column line into a record. Blank separators
// are dropped; lines that fail to decode are skipped with a warning so one
// corrupt reading cannot sink the event.
func (a *Assembler) decodeLines(file SourceFile) (*nordic.Table, error) {
	var records []nordic.Record
	for i, line := range file.Lines {
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := nordic.Decode(line)
		if err != nil {
			a.warn("skipping line", "file", file.Name, "line", i+1, "error", err)
			continue
		}
		if rec.Type == nordic.LineBlank {
			continue
		}
		records = append(records, rec)
	}
	return nordic.NewTable(records)
}

// magTypeKey maps the one-letter bulletin magnitude code to a magnitude
// type. Unknown codes fall back to the generic "M".
var magTypeKey = map[string]string{
	"L": "ML",
	"B": "MB",
	"S": "MS",
	"W": "MW",
	"C": "MC",
	"M": "M",
}

func magType(code string) string {
	if t, ok := magTypeKey[strings.ToUpper(code)]; ok {
		return t
	}
	return "M"
}

// magnitudes extracts up to three magnitude estimates from every hypocenter
// line. A triple that carries no value, no agency and no explicit type is a
// blank slot, not a zero-magnitude estimate.
func (a *Assembler) magnitudes(table *nordic.Table) []Magnitude {
	triples := [3][3]string{
		{"magnitude", "magtype", "magagency"},
		{"magnitude2", "mag2type", "mag2agency"},
		{"magnitude3", "mag3type", "mag3agency"},
	}
	var out []Magnitude
	for _, rec := range table.Project(nordic.LineHypocenter) {
		for _, tr := range triples {
			mag := rec.Float(tr[0])
			mtype := magType(rec.Text(tr[1]))
			agency := rec.Text(tr[2])
			if mag == 0 && agency == "" && mtype == "M" {
				continue
			}
			out = append(out, Magnitude{
				ResourceID: a.newResourceID("magnitude"),
				Mag:        mag,
				Type:       mtype,
				Creation:   CreationInfo{AgencyID: agency},
			})
		}
	}
	return out
}

// weightKey maps the bulletin's 0..4 weighting code to a time weight. A
// blank code decodes to 0 and means full weight.
var weightKey = map[int64]float64{
	0: 1.0,
	1: 0.75,
	2: 0.5,
	3: 0.25,
	4: 0.0,
}

// ampPhases are phase ids reported as amplitude observations rather than
// arrival-time picks.
var ampPhases = map[string]bool{
	"IAML": true,
}

// phases walks the phase lines, producing an Amplitude for amplitude phases
// and a Pick plus Arrival for everything else. Arrivals are returned
// separately so origin extraction can attach them to the primary solution.
func (a *Assembler) phases(table *nordic.Table, resolver *Resolver) ([]Pick, []Amplitude, []Arrival) {
	anchor, haveAnchor := a.originDate(table)
	var (
		picks      []Pick
		amplitudes []Amplitude
		arrivals   []Arrival
	)
	for _, rec := range table.Project(nordic.LinePhase) {
		phase := strings.TrimSpace(rec.Text("phaseid"))
		if ampPhases[phase] {
			amplitudes = append(amplitudes, Amplitude{
				ResourceID:       a.newResourceID("amplitude"),
				GenericAmplitude: rec.Float("amplitude"),
				Period:           rec.Float("period"),
			})
			continue
		}
		pick := Pick{
			ResourceID:     a.newResourceID("pick"),
			PhaseHint:      phase,
			EvaluationMode: evaluationMode(rec.Text("autoflag")),
			Polarity:       polarity(rec.Text("firstmotion")),
			Onset:          onset(rec.Text("qualityindicator")),
			WaveformID:     resolver.Resolve(rec.Text("station"), rec.Text("component")),
		}
		if haveAnchor {
			pick.Time = pickTime(anchor, rec)
		}
		arrival := Arrival{
			ResourceID:   a.newResourceID("arrival"),
			PickID:       pick.ResourceID,
			Phase:        phase,
			Azimuth:      float64(rec.Int("azimuth")),
			TimeResidual: rec.Float("traveltimeresid"),
		}
		if w, ok := weightKey[rec.Int("weight")]; ok {
			arrival.TimeWeight = &w
		}
		picks = append(picks, pick)
		arrivals = append(arrivals, arrival)
	}
	return picks, amplitudes, arrivals
}

// origins builds one origin per hypocenter line. The first origin is the
// primary solution: it owns the arrivals and any E-line uncertainty.
func (a *Assembler) origins(table *nordic.Table, arrivals []Arrival) []Origin {
	author, actionTime := analystInfo(table)
	var out []Origin
	for i, rec := range table.Project(nordic.LineHypocenter) {
		origin := Origin{
			ResourceID: a.newResourceID("origin"),
			Time:       recordTime(rec),
			Latitude:   rec.Float("latitude"),
			Longitude:  rec.Float("longitude"),
			Depth:      rec.Float("depth"),
			TimeFixed:  strings.EqualFold(rec.Text("fixotime"), "F"),
			Quality: OriginQuality{
				StandardError:        rec.Float("rms"),
				AssociatedPhaseCount: int(rec.Int("numstations")),
			},
			Creation: CreationInfo{
				AgencyID:     rec.Text("hypagency"),
				Author:       author,
				CreationTime: actionTime,
			},
		}
		if i == 0 {
			origin.Arrivals = arrivals
			if errRec, ok := table.First(nordic.LineError); ok {
				gap := float64(errRec.Int("azgap"))
				origin.Quality.AzimuthalGap = &gap
				origin.Uncertainty = &OriginUncertainty{
					LatitudeError:  errRec.Float("latitudeerror"),
					LongitudeError: errRec.Float("longitudeerror"),
					DepthError:     errRec.Float("deptherror"),
					CovarianceXY:   errRec.Float("covariancexy"),
					CovarianceXZ:   errRec.Float("covariancexz"),
					CovarianceYZ:   errRec.Float("covarianceyz"),
				}
			}
		}
		out = append(out, origin)
	}
	return out
}

// analystInfo extracts the analyst and action timestamp from the bulletin's
// ID line, when one is present.
func analystInfo(table *nordic.Table) (string, time.Time) {
	rec, ok := table.First(nordic.LineID)
	if !ok {
		return "", time.Time{}
	}
	author := strings.TrimSpace(rec.Text("operator"))
	actionTime, err := nordic.ParseCompactTime(rec.Text("id"))
	if err != nil {
		return author, time.Time{}
	}
	return author, actionTime
}

// originDate returns the calendar date of the primary solution, the anchor
// for in-file pick times that only carry hour/minute/second.
func (a *Assembler) originDate(table *nordic.Table) (time.Time, bool) {
	rec, ok := table.First(nordic.LineHypocenter)
	if !ok {
		return time.Time{}, false
	}
	return recordTime(rec), true
}

// recordTime builds a timestamp from a hypocenter record's date and clock
// fields. time.Date normalizes an hour of 24 or above into the next day,
// which the format uses for readings that cross midnight.
func recordTime(rec nordic.Record) time.Time {
	sec, nsec := splitSeconds(rec.Float("second"))
	return time.Date(
		int(rec.Int("year")), time.Month(rec.Int("month")), int(rec.Int("day")),
		int(rec.Int("hour")), int(rec.Int("minute")), sec, nsec, time.UTC,
	)
}

// pickTime anchors a phase record's clock fields to the primary origin's
// date. Hours of 24 and above roll into the following day.
func pickTime(anchor time.Time, rec nordic.Record) time.Time {
	sec, nsec := splitSeconds(rec.Float("second"))
	return time.Date(
		anchor.Year(), anchor.Month(), anchor.Day(),
		int(rec.Int("hour")), int(rec.Int("minute")), sec, nsec, time.UTC,
	)
}

func splitSeconds(s float64) (sec, nsec int) {
	sec = int(s)
	nsec = int((s - float64(sec)) * 1e9)
	return sec, nsec
}

func evaluationMode(autoflag string) EvaluationMode {
	if autoflag == "A" {
		return ModeAutomatic
	}
	return ModeManual
}

func polarity(firstMotion string) Polarity {
	switch strings.ToUpper(firstMotion) {
	case "C":
		return PolarityPositive
	case "D":
		return PolarityNegative
	default:
		return PolarityUndecidable
	}
}

func onset(quality string) Onset {
	switch strings.ToUpper(quality) {
	case "I":
		return OnsetImpulsive
	case "E":
		return OnsetEmergent
	default:
		return OnsetQuestionable
	}
}

// newResourceID mints a random per-object id under the configured authority.
func (a *Assembler) newResourceID(kind string) ResourceID {
	return ResourceID(fmt.Sprintf("smi:%s/%s/%s", a.opts.Authority, kind, uuid.NewString()))
}

func (a *Assembler) warn(msg string, args ...any) {
	if a.opts.Verbose {
		a.logger.Warn(msg, args...)
		return
	}
	a.logger.Debug(msg, args...)
}
