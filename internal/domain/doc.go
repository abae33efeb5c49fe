// Package domain assembles decoded Nordic bulletin records into seismic
// events.
//
// One S-file describes one event: a mandatory hypocenter header, optional
// extra solutions, error estimates, magnitudes, comments and phase readings.
// The Assembler turns that record set into an Event aggregate with stable,
// file-derived event ids and freshly minted per-object ids.
//
// Phase readings identify their channel only by a short station code and a
// component letter; the Resolver recovers full network/station/location/
// channel identifiers from comment lines, a station inventory or an
// associated waveform file, synthesizing a default when none match.
package domain
