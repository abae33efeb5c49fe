package domain

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/quakeline/nordic-etl/internal/nordic"
)

// channelIDTag marks comment lines that embed full channel identifiers,
// e.g. "CHANNELID: STOK.BHZ.UU.00".
const channelIDTag = "CHANNELID"

// WaveformIndex matches station/component pairs against the channels of an
// associated waveform file.
type WaveformIndex interface {
	Select(station, component string) []WaveformID
}

// WaveformLookup opens the waveform index behind a waveform-file reference
// found in the bulletin. Optional; pass nil to disable the waveform strategy.
type WaveformLookup func(path string) (WaveformIndex, error)

// Resolver recovers a full NSLC identifier for a pick when the bulletin only
// records a 5-character station code and a component letter. Four strategies
// run in fixed priority order; the synthesis fallback always succeeds, so
// resolution never fails outward.
type Resolver struct {
	comments  []WaveformID
	inventory []WaveformID

	lookup   WaveformLookup
	wfPath   string
	wfLoaded bool
	wf       WaveformIndex

	network       string
	channelPrefix string

	logger  *slog.Logger
	verbose bool
}

type strategy struct {
	name string
	fn   func(station, component string) (WaveformID, bool)
}

// Resolve returns the best NSLC match for a station/component pair. Strategy
// failures are reported (suppressed unless verbose) and fall through; the
// final synthesis step guarantees a result.
func (r *Resolver) Resolve(station, component string) WaveformID {
	strategies := []strategy{
		{"comment", r.fromComments},
		{"inventory", r.fromInventory},
		{"waveform", r.fromWaveform},
	}
	for _, s := range strategies {
		if id, ok := s.fn(station, component); ok {
			return id
		}
		r.warn("nslc strategy failed",
			"strategy", s.name, "station", station, "component", component)
	}
	return WaveformID{
		Network:  r.network,
		Station:  station,
		Location: "",
		Channel:  r.channelPrefix + component,
	}
}

// fromComments matches against channel identifiers embedded in comment lines.
// The channel code must contain the component; a station-only hit is not a
// match and falls through to the next strategy.
func (r *Resolver) fromComments(station, component string) (WaveformID, bool) {
	return matchChannels(r.comments, station, component, r, "comment", false)
}

// fromInventory matches against an externally supplied station inventory.
// This strategy is looser: when no channel code contains the component it
// falls back to any channel of the station.
func (r *Resolver) fromInventory(station, component string) (WaveformID, bool) {
	return matchChannels(r.inventory, station, component, r, "inventory", true)
}

// fromWaveform matches against the associated waveform file's channels,
// loading the index on first use.
func (r *Resolver) fromWaveform(station, component string) (WaveformID, bool) {
	if !r.wfLoaded {
		r.wfLoaded = true
		if r.lookup != nil && r.wfPath != "" {
			idx, err := r.lookup(r.wfPath)
			if err != nil {
				r.warn("waveform index unavailable", "path", r.wfPath, "error", err)
			} else {
				r.wf = idx
			}
		}
	}
	if r.wf == nil {
		return WaveformID{}, false
	}
	matches := r.wf.Select(station, component)
	if len(matches) == 0 {
		return WaveformID{}, false
	}
	if len(matches) > 1 {
		r.warn("multiple waveform channels match, using first",
			"station", station, "component", component)
	}
	return matches[0], true
}

// matchChannels finds channels for a station whose channel code contains the
// component. With stationFallback set, a station whose channels all miss the
// component still yields its first channel. First match wins on ties.
func matchChannels(channels []WaveformID, station, component string, r *Resolver, source string, stationFallback bool) (WaveformID, bool) {
	if len(channels) == 0 {
		return WaveformID{}, false
	}
	var byStation, byComponent []WaveformID
	for _, c := range channels {
		if c.Station != station {
			continue
		}
		byStation = append(byStation, c)
		if strings.Contains(c.Channel, component) {
			byComponent = append(byComponent, c)
		}
	}
	candidates := byComponent
	if len(candidates) == 0 && stationFallback {
		candidates = byStation
	}
	if len(candidates) == 0 {
		return WaveformID{}, false
	}
	if len(candidates) > 1 {
		r.warn("multiple channels match, using first",
			"source", source, "station", station, "component", component)
	}
	return candidates[0], true
}

func (r *Resolver) warn(msg string, args ...any) {
	if r.verbose {
		r.logger.Warn(msg, args...)
		return
	}
	r.logger.Debug(msg, args...)
}

// parseChannelIDComment extracts the NSLC quadruple from a CHANNELID comment.
// The payload after the colon is dot-separated in station.channel.network.location
// order.
func parseChannelIDComment(text string) (WaveformID, error) {
	_, payload, ok := strings.Cut(text, ":")
	if !ok {
		return WaveformID{}, fmt.Errorf("channel id comment has no payload: %q", text)
	}
	parts := strings.Split(strings.TrimRight(payload, " "), ".")
	if len(parts) != 4 {
		return WaveformID{}, fmt.Errorf("channel id comment needs 4 dot-separated codes: %q", text)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return WaveformID{
		Station:  parts[0],
		Channel:  parts[1],
		Network:  parts[2],
		Location: parts[3],
	}, nil
}

// newResolver builds the per-file identifier context: channel ids harvested
// from comment lines, the optional inventory, and the optional waveform file
// reference (a single type-6 line).
func (a *Assembler) newResolver(table *nordic.Table) *Resolver {
	r := &Resolver{
		inventory:     a.inventory,
		lookup:        a.waveforms,
		network:       a.opts.DefaultNetwork,
		channelPrefix: a.opts.DefaultChannelPrefix,
		logger:        a.logger,
		verbose:       a.opts.Verbose,
	}
	for _, rec := range table.Project(nordic.LineComment) {
		text := rec.Text("comment")
		if !strings.Contains(text, channelIDTag) {
			continue
		}
		id, err := parseChannelIDComment(text)
		if err != nil {
			r.warn("skipping malformed channel id comment", "error", err)
			continue
		}
		r.comments = append(r.comments, id)
	}
	if refs := table.Project(nordic.LineType('6')); len(refs) == 1 {
		r.wfPath = strings.TrimSpace(refs[0].Text("comment"))
	}
	return r
}
