package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dawnpatrol/internal/types"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"zero", 0, 0},
		{"inside range", 185.5, 185.5},
		{"exactly 360", 360, 0},
		{"above 360", 370, 10},
		{"several turns", 1085, 5},
		{"negative", -10, 350},
		{"large negative", -725, 355},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.Less(t, got, 360.0)
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, a := range []float64{-720.25, -1, 0, 45, 359.999, 360, 1000} {
		once := Normalize(a)
		assert.InDelta(t, once, Normalize(once), 1e-9, "angle %v", a)
	}
}

func TestNormalizeChecked(t *testing.T) {
	got, err := NormalizeChecked(-90)
	require.NoError(t, err)
	assert.InDelta(t, 270.0, got, 1e-9)

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := NormalizeChecked(bad)
		require.Error(t, err)

		var appErr *types.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, types.ErrCodeValidationInvalidAngle, appErr.Code)
	}
}

func TestAngularDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want float64
	}{
		{"identical", 90, 90, 0},
		{"simple", 10, 50, 40},
		{"across north", 350, 10, 20},
		{"opposite", 0, 180, 180},
		{"unnormalized inputs", -10, 370, 20},
		{"just past opposite", 0, 181, 179},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AngularDistance(tt.a, tt.b), 1e-9)
			// Symmetry holds for every pair.
			assert.InDelta(t, AngularDistance(tt.a, tt.b), AngularDistance(tt.b, tt.a), 1e-9)
		})
	}
}

func TestInRange(t *testing.T) {
	tests := []struct {
		name     string
		angle    float64
		min, max float64
		want     bool
	}{
		{"plain containment", 300, 270, 330, true},
		{"plain below", 260, 270, 330, false},
		{"plain boundary min", 270, 270, 330, true},
		{"plain boundary max", 330, 270, 330, true},
		{"wrap through north", 0, 350, 30, true},
		{"wrap high side", 355, 350, 30, true},
		{"wrap excluded", 180, 350, 30, false},
		{"wrap boundary min", 350, 350, 30, true},
		{"wrap boundary max", 30, 350, 30, true},
		{"wrap normalized input", 390, 350, 30, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InRange(tt.angle, tt.min, tt.max))
		})
	}
}
