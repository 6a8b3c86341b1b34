// Package types defines the shared value objects for the dawn patrol decision
// service: wind samples, site configuration, evaluation results, and the
// application error taxonomy. Everything here is a plain immutable value; no
// type in this package reaches for the network, the clock, or storage.
package types

import "time"

// Sample is a single wind observation. Speeds are normalized to meters per
// second and directions to degrees true (0-360) before a Sample is
// constructed; nothing downstream converts units. A Sample is never mutated
// once recorded.
type Sample struct {
	ObservedAt   time.Time `json:"observed_at"`
	SpeedMS      float64   `json:"speed_ms"`
	DirectionDeg float64   `json:"direction_deg"`
	GustMS       *float64  `json:"gust_ms,omitempty"`
}

// SampleSeries is an ordered, time-ascending sequence of Samples. Insertion
// order is chronological order, and no two entries share a timestamp. An
// empty series is valid and means "no history".
type SampleSeries []Sample

// Last returns the most recent sample in the series, or nil when the series
// is empty.
func (s SampleSeries) Last() *Sample {
	if len(s) == 0 {
		return nil
	}
	return &s[len(s)-1]
}

// LiveReading is the most recent real-time measurement for a site, distinct
// from the historical series. CapturedAt records when the reading was pulled
// from the station, which may lag ObservedAt on the embedded sample.
type LiveReading struct {
	Sample     Sample    `json:"sample"`
	CapturedAt time.Time `json:"captured_at"`
}

// TimeWindow bounds the analysis period for a report. StartHour and EndHour
// are local wall-clock hours (0-23, inclusive). IsMultiDay is true only when
// the window refers to the previous calendar day, which happens for queries
// made before 4am. TimeWindows are derived per query and never persisted.
type TimeWindow struct {
	StartHour  int  `json:"start_hour"`
	EndHour    int  `json:"end_hour"`
	IsMultiDay bool `json:"is_multi_day"`
}

// CurrentConditions is the freshness-arbitrated view of "what is the wind
// doing right now". Fields are nil when no trustworthy source exists.
type CurrentConditions struct {
	SpeedMS      *float64 `json:"speed_ms,omitempty"`
	DirectionDeg *float64 `json:"direction_deg,omitempty"`
	GustMS       *float64 `json:"gust_ms,omitempty"`
	Stale        bool     `json:"stale"`
	Freshness    string   `json:"freshness"`
}

// DirectionAssessment classifies a measured wind direction against a site's
// DirectionConfig. DegreesOff is the angular distance to the perfect heading
// for perfect/ideal classifications, and the distance to the nearest edge of
// the ideal band for suboptimal ones.
type DirectionAssessment struct {
	Class       DirectionClass `json:"class"`
	Glyph       string         `json:"glyph"`
	Description string         `json:"description"`
	DegreesOff  float64        `json:"degrees_off"`
}

// ForecastBundle carries the numeric factor inputs for the dawn patrol range,
// as supplied by the forecast collaborator. Every field is optional: an
// absent value fails its factor with zero confidence rather than aborting
// the evaluation.
type ForecastBundle struct {
	PrecipitationProb *float64 `json:"precipitation_probability,omitempty"` // percent, 0-100
	ClearSkyPct       *float64 `json:"clear_sky_percent,omitempty"`         // percent, 0-100
	PressureDeltaHPa  *float64 `json:"pressure_delta_hpa,omitempty"`        // signed change over the window
	TemperatureDiffC  *float64 `json:"temperature_diff_c,omitempty"`        // summit-to-valley gradient
	WaveEnhancement   *float64 `json:"wave_enhancement,omitempty"`          // mountain-wave intensity score
}

// FactorResult is the outcome of one environmental factor check. Confidence
// is 0-100 and scales with how far the observed value sits from its
// threshold, so a marginal pass is distinguishable from a decisive one.
type FactorResult struct {
	Name       FactorName `json:"name"`
	Passed     bool       `json:"passed"`
	Confidence float64    `json:"confidence"`
	Value      *float64   `json:"value,omitempty"`
	Threshold  string     `json:"threshold"`
	Reason     string     `json:"reason,omitempty"`
}

// Decision is the aggregate go/no-go recommendation for a site. Probability
// is the share of factors passed (0-100); Confidence is the weighted mean of
// the factor confidences. Factors always holds exactly five entries in the
// fixed order precipitation, sky clarity, pressure stability, temperature
// differential, wave enhancement. A Decision is created once per evaluation
// and never mutated; callers wanting a new one re-run the engine.
type Decision struct {
	EvaluatedAt    time.Time      `json:"evaluated_at"`
	Probability    float64        `json:"probability"`
	Confidence     float64        `json:"confidence"`
	Recommendation Recommendation `json:"recommendation"`
	Factors        []FactorResult `json:"factors"`
}

// Site is the static per-site configuration: where the station is, what wind
// direction works there, and the factor thresholds tuned for its terrain.
type Site struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	StationID  string           `json:"station_id"`
	Timezone   string           `json:"timezone"`
	Latitude   float64          `json:"latitude"`
	Longitude  float64          `json:"longitude"`
	Direction  DirectionConfig  `json:"direction"`
	Thresholds FactorThresholds `json:"thresholds"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// SiteReport is the full evaluation output for one site: resolved current
// conditions, the analysis window with its filtered series, the direction
// assessment, and the five-factor decision.
type SiteReport struct {
	Site       Site                `json:"site"`
	Conditions CurrentConditions   `json:"conditions"`
	Window     TimeWindow          `json:"window"`
	Samples    SampleSeries        `json:"samples"`
	Direction  DirectionAssessment `json:"direction"`
	Decision   Decision            `json:"decision"`
}
