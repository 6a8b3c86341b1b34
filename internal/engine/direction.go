package engine

import (
	"fmt"
	"math"

	"dawnpatrol/internal/types"
)

// Indicator glyphs for the three direction classes. The unknown glyph marks
// an absent assessment in compact displays.
const (
	glyphPerfect    = "◎"
	glyphIdeal      = "○"
	glyphSuboptimal = "✗"
	glyphUnknown    = "·"
)

// AssessDirection classifies a measured wind direction against a site's
// direction configuration. Classification priority:
//
//  1. Absent direction or config -> unknown.
//  2. Within the perfect tolerance of the perfect heading -> perfect.
//  3. Inside the ideal range (wrap-aware, boundaries inclusive) -> ideal.
//  4. Otherwise -> suboptimal, with the distance to the nearest edge of the
//     ideal band reported for diagnostics.
//
// The assessor is total: it never returns an error. Non-finite direction
// values are treated as absent.
func AssessDirection(direction *float64, cfg *types.DirectionConfig) types.DirectionAssessment {
	if direction == nil || cfg == nil || !finite(*direction) {
		return types.DirectionAssessment{
			Class:       types.DirectionUnknown,
			Glyph:       glyphUnknown,
			Description: "wind direction unavailable",
		}
	}

	dir := Normalize(*direction)
	toPerfect := AngularDistance(dir, cfg.PerfectHeading)

	if toPerfect <= cfg.Tolerance() {
		return types.DirectionAssessment{
			Class:       types.DirectionPerfect,
			Glyph:       glyphPerfect,
			Description: fmt.Sprintf("%.0f° is within %.0f° of the perfect %.0f° heading", dir, cfg.Tolerance(), Normalize(cfg.PerfectHeading)),
			DegreesOff:  toPerfect,
		}
	}

	if InRange(dir, cfg.IdealMin, cfg.IdealMax) {
		return types.DirectionAssessment{
			Class:       types.DirectionIdeal,
			Glyph:       glyphIdeal,
			Description: fmt.Sprintf("%.0f° is inside the ideal %.0f°–%.0f° band", dir, cfg.IdealMin, cfg.IdealMax),
			DegreesOff:  toPerfect,
		}
	}

	offBand := math.Min(AngularDistance(dir, cfg.IdealMin), AngularDistance(dir, cfg.IdealMax))
	return types.DirectionAssessment{
		Class:       types.DirectionSuboptimal,
		Glyph:       glyphSuboptimal,
		Description: fmt.Sprintf("%.0f° is %.0f° outside the ideal %.0f°–%.0f° band", dir, offBand, cfg.IdealMin, cfg.IdealMax),
		DegreesOff:  offBand,
	}
}
