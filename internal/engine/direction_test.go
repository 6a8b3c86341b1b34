package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"dawnpatrol/internal/types"
)

func f64(v float64) *float64 { return &v }

// sandyPoint mirrors a real site setup: NW-facing launch, ideal band
// 270-330, perfect heading 297.
func sandyPoint() *types.DirectionConfig {
	return &types.DirectionConfig{
		IdealMin:       270,
		IdealMax:       330,
		PerfectHeading: 297,
	}
}

func TestAssessDirection(t *testing.T) {
	tests := []struct {
		name      string
		direction *float64
		cfg       *types.DirectionConfig
		wantClass types.DirectionClass
	}{
		{"on the perfect heading", f64(297), sandyPoint(), types.DirectionPerfect},
		{"inside default tolerance", f64(287), sandyPoint(), types.DirectionPerfect},
		{"upper tolerance boundary", f64(307), sandyPoint(), types.DirectionPerfect},
		{"ideal band", f64(275), sandyPoint(), types.DirectionIdeal},
		{"ideal upper boundary", f64(330), sandyPoint(), types.DirectionIdeal},
		{"opposite direction", f64(180), sandyPoint(), types.DirectionSuboptimal},
		{"nil direction", nil, sandyPoint(), types.DirectionUnknown},
		{"nil config", f64(297), nil, types.DirectionUnknown},
		{"NaN direction", f64(math.NaN()), sandyPoint(), types.DirectionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssessDirection(tt.direction, tt.cfg)
			assert.Equal(t, tt.wantClass, got.Class)
			assert.NotEmpty(t, got.Glyph)
			assert.NotEmpty(t, got.Description)
		})
	}
}

func TestAssessDirectionCustomTolerance(t *testing.T) {
	cfg := sandyPoint()
	cfg.PerfectTolerance = 3

	// 287 is 10 degrees off: perfect under the default tolerance but only
	// ideal under the tightened one.
	got := AssessDirection(f64(287), cfg)
	assert.Equal(t, types.DirectionIdeal, got.Class)
}

func TestAssessDirectionWrappingBand(t *testing.T) {
	// Northerly site whose band wraps through 0.
	cfg := &types.DirectionConfig{IdealMin: 350, IdealMax: 30, PerfectHeading: 10}

	assert.Equal(t, types.DirectionPerfect, AssessDirection(f64(5), cfg).Class)
	assert.Equal(t, types.DirectionIdeal, AssessDirection(f64(355), cfg).Class)
	assert.Equal(t, types.DirectionSuboptimal, AssessDirection(f64(180), cfg).Class)
}

func TestAssessDirectionSuboptimalDistance(t *testing.T) {
	// 240 is 30 degrees from the 270 edge and 90 from the 330 edge; the
	// diagnostic distance is the nearer of the two.
	got := AssessDirection(f64(240), sandyPoint())
	assert.Equal(t, types.DirectionSuboptimal, got.Class)
	assert.InDelta(t, 30.0, got.DegreesOff, 1e-9)
}
