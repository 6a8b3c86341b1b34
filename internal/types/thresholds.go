package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Default factor thresholds, applied when a site's configuration leaves a
// value unset (zero).
const (
	DefaultMaxPrecipitationProb = 25.0 // percent
	DefaultMinClearSkyPct       = 70.0 // percent
	DefaultMaxPressureDeltaHPa  = 2.0  // absolute hPa change over the window
	DefaultMinTemperatureDiffC  = 8.0  // degrees C summit-to-valley
	DefaultMinWaveEnhancement   = 50.0 // intensity score, 0-100
)

// DefaultPerfectTolerance is the angular tolerance around the perfect
// heading when a DirectionConfig leaves it unset.
const DefaultPerfectTolerance = 10.0

// DirectionConfig describes the wind directions that work at a site. The
// ideal range may wrap through 0/360 (IdealMin > IdealMax means the band
// crosses north). Stored per site as JSONB.
type DirectionConfig struct {
	IdealMin         float64 `json:"ideal_min" validate:"gte=0,lt=360"`
	IdealMax         float64 `json:"ideal_max" validate:"gte=0,lt=360"`
	PerfectHeading   float64 `json:"perfect_heading" validate:"gte=0,lt=360"`
	PerfectTolerance float64 `json:"perfect_tolerance,omitempty" validate:"gte=0,lte=180"`
}

// Tolerance returns the configured perfect tolerance, falling back to the
// default when unset.
func (c DirectionConfig) Tolerance() float64 {
	if c.PerfectTolerance <= 0 {
		return DefaultPerfectTolerance
	}
	return c.PerfectTolerance
}

// FactorThresholds holds the per-site tuning for the five-factor engine.
// Zero values mean "use the default". Weights biases the confidence
// aggregation; a nil or empty map means equal weighting.
type FactorThresholds struct {
	MaxPrecipitationProb float64                `json:"max_precipitation_prob,omitempty"`
	MinClearSkyPct       float64                `json:"min_clear_sky_pct,omitempty"`
	MaxPressureDeltaHPa  float64                `json:"max_pressure_delta_hpa,omitempty"`
	MinTemperatureDiffC  float64                `json:"min_temperature_diff_c,omitempty"`
	MinWaveEnhancement   float64                `json:"min_wave_enhancement,omitempty"`
	Weights              map[FactorName]float64 `json:"weights,omitempty"`
}

// WithDefaults returns a copy with every unset threshold replaced by its
// default value.
func (t FactorThresholds) WithDefaults() FactorThresholds {
	out := t
	if out.MaxPrecipitationProb <= 0 {
		out.MaxPrecipitationProb = DefaultMaxPrecipitationProb
	}
	if out.MinClearSkyPct <= 0 {
		out.MinClearSkyPct = DefaultMinClearSkyPct
	}
	if out.MaxPressureDeltaHPa <= 0 {
		out.MaxPressureDeltaHPa = DefaultMaxPressureDeltaHPa
	}
	if out.MinTemperatureDiffC <= 0 {
		out.MinTemperatureDiffC = DefaultMinTemperatureDiffC
	}
	if out.MinWaveEnhancement <= 0 {
		out.MinWaveEnhancement = DefaultMinWaveEnhancement
	}
	return out
}

// Weight returns the aggregation weight for a factor, defaulting to 1.
func (t FactorThresholds) Weight(name FactorName) float64 {
	if t.Weights == nil {
		return 1
	}
	if w, ok := t.Weights[name]; ok && w > 0 {
		return w
	}
	return 1
}

// Scan implements the sql.Scanner interface for reading JSONB from the database.
func (t *FactorThresholds) Scan(value interface{}) error {
	if value == nil {
		*t = FactorThresholds{}
		return nil
	}
	data, err := jsonbBytes(value)
	if err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	return json.Unmarshal(data, t)
}

// Value implements the driver.Valuer interface for writing JSONB to the database.
func (t FactorThresholds) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// Scan implements the sql.Scanner interface for reading JSONB from the database.
func (c *DirectionConfig) Scan(value interface{}) error {
	if value == nil {
		*c = DirectionConfig{}
		return nil
	}
	data, err := jsonbBytes(value)
	if err != nil {
		return fmt.Errorf("direction config: %w", err)
	}
	return json.Unmarshal(data, c)
}

// Value implements the driver.Valuer interface for writing JSONB to the database.
func (c DirectionConfig) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// jsonbBytes coerces a raw JSONB scan value into a byte slice.
func jsonbBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
