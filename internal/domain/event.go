package domain

import "time"

// ResourceID identifies an event-model object. Event-level ids are derived
// from the source file's embedded timestamp so re-parsing the same file
// yields the same id; per-object ids are random.
type ResourceID string

// WaveformID is the full network/station/location/channel (NSLC) identifier
// of the recording channel behind a pick.
type WaveformID struct {
	Network  string `json:"network"`
	Station  string `json:"station"`
	Location string `json:"location"`
	Channel  string `json:"channel"`
}

// EvaluationMode states whether a pick was made by a human or a machine.
type EvaluationMode string

const (
	ModeManual    EvaluationMode = "manual"
	ModeAutomatic EvaluationMode = "automatic"
)

// Polarity is the first-motion direction of a pick.
type Polarity string

const (
	PolarityPositive    Polarity = "positive"
	PolarityNegative    Polarity = "negative"
	PolarityUndecidable Polarity = "undecidable"
)

// Onset describes the sharpness of a phase arrival.
type Onset string

const (
	OnsetImpulsive    Onset = "impulsive"
	OnsetEmergent     Onset = "emergent"
	OnsetQuestionable Onset = "questionable"
)

// CreationInfo records who produced an object and when.
type CreationInfo struct {
	AgencyID     string    `json:"agency_id,omitempty"`
	Author       string    `json:"author,omitempty"`
	CreationTime time.Time `json:"creation_time,omitzero"`
}

// OriginQuality summarizes the fit of an origin solution.
type OriginQuality struct {
	StandardError        float64  `json:"standard_error"`
	AssociatedPhaseCount int      `json:"associated_phase_count"`
	AzimuthalGap         *float64 `json:"azimuthal_gap,omitempty"`
}

// OriginUncertainty carries the hypocenter error ellipsis of the primary
// solution, taken from the bulletin's E line.
type OriginUncertainty struct {
	LatitudeError  float64 `json:"latitude_error"`
	LongitudeError float64 `json:"longitude_error"`
	DepthError     float64 `json:"depth_error"`
	CovarianceXY   float64 `json:"covariance_xy"`
	CovarianceXZ   float64 `json:"covariance_xz"`
	CovarianceYZ   float64 `json:"covariance_yz"`
}

// Origin is one hypocenter solution.
type Origin struct {
	ResourceID  ResourceID         `json:"resource_id"`
	Time        time.Time          `json:"time"`
	Latitude    float64            `json:"latitude"`
	Longitude   float64            `json:"longitude"`
	Depth       float64            `json:"depth"`
	TimeFixed   bool               `json:"time_fixed"`
	Quality     OriginQuality      `json:"quality"`
	Creation    CreationInfo       `json:"creation_info"`
	Uncertainty *OriginUncertainty `json:"uncertainty,omitempty"`
	Arrivals    []Arrival          `json:"arrivals,omitempty"`
}

// Magnitude is one magnitude estimate.
type Magnitude struct {
	ResourceID ResourceID   `json:"resource_id"`
	Mag        float64      `json:"mag"`
	Type       string       `json:"magnitude_type"`
	Creation   CreationInfo `json:"creation_info"`
}

// Pick is a single phase-arrival-time observation at one channel.
type Pick struct {
	ResourceID     ResourceID     `json:"resource_id"`
	Time           time.Time      `json:"time"`
	PhaseHint      string         `json:"phase_hint"`
	EvaluationMode EvaluationMode `json:"evaluation_mode"`
	Polarity       Polarity       `json:"polarity"`
	Onset          Onset          `json:"onset"`
	WaveformID     WaveformID     `json:"waveform_id"`
}

// Arrival is an origin's use of a pick. It references the pick by id; the
// pick itself is owned by the event.
type Arrival struct {
	ResourceID   ResourceID `json:"resource_id"`
	PickID       ResourceID `json:"pick_id"`
	Phase        string     `json:"phase"`
	Azimuth      float64    `json:"azimuth"`
	TimeResidual float64    `json:"time_residual"`
	TimeWeight   *float64   `json:"time_weight,omitempty"`
}

// Amplitude is an amplitude/period observation, produced instead of an
// Arrival for amplitude phases (IAML).
type Amplitude struct {
	ResourceID       ResourceID `json:"resource_id"`
	GenericAmplitude float64    `json:"generic_amplitude"`
	Period           float64    `json:"period"`
}

// Comment is one free-form bulletin comment line.
type Comment struct {
	Text string `json:"text"`
}

// Event is the assembled aggregate for one source file.
type Event struct {
	ResourceID           ResourceID  `json:"resource_id"`
	Description          string      `json:"description,omitempty"`
	Comments             []Comment   `json:"comments,omitempty"`
	Origins              []Origin    `json:"origins,omitempty"`
	Magnitudes           []Magnitude `json:"magnitudes,omitempty"`
	Picks                []Pick      `json:"picks,omitempty"`
	Amplitudes           []Amplitude `json:"amplitudes,omitempty"`
	PreferredOriginID    ResourceID  `json:"preferred_origin_id,omitempty"`
	PreferredMagnitudeID ResourceID  `json:"preferred_magnitude_id,omitempty"`
	AssembledAt          time.Time   `json:"assembled_at"`
}
