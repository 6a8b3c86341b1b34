package engine

import (
	"fmt"
	"math"
	"time"

	"dawnpatrol/internal/types"
)

// Factor confidence scaling bounds. A value sitting exactly on its threshold
// scores minConfidence (a coin flip either way); a value a full span away
// scores maxConfidence. Missing inputs score zero.
const (
	minConfidence = 50.0
	maxConfidence = 95.0
)

// DecisionPolicy holds the recommendation band edges. The bands are tunable
// policy, not a hard contract: raising probability or confidence never
// yields a worse recommendation.
type DecisionPolicy struct {
	GoProbability   float64 // GO requires probability >= this...
	GoConfidence    float64 // ...and confidence >= this
	SkipProbability float64 // SKIP when probability < this
}

// DefaultDecisionPolicy returns the standard GO/MARGINAL/SKIP bands.
func DefaultDecisionPolicy() DecisionPolicy {
	return DecisionPolicy{
		GoProbability:   60,
		GoConfidence:    60,
		SkipProbability: 40,
	}
}

// EvaluateDawnPatrol runs the five-factor katabatic model against a forecast
// bundle and aggregates the results into a Decision.
//
// The five factors, in fixed order:
//
//	precipitation            favorable when probability <= MaxPrecipitationProb
//	sky_clarity              favorable when clear-sky percent >= MinClearSkyPct
//	pressure_stability       favorable when |pressure change| < MaxPressureDeltaHPa
//	temperature_differential favorable when gradient >= MinTemperatureDiffC
//	wave_enhancement         favorable when intensity score >= MinWaveEnhancement
//
// Probability is 100 * passed / 5. Confidence is the weighted mean of the
// factor confidences (equal weights unless the thresholds carry overrides).
// A factor with a missing input fails with zero confidence and a descriptive
// reason; the engine never returns an error for missing optional data.
func EvaluateDawnPatrol(bundle types.ForecastBundle, th types.FactorThresholds, policy DecisionPolicy, now time.Time) types.Decision {
	th = th.WithDefaults()

	factors := []types.FactorResult{
		evalCeiling(types.FactorPrecipitation, bundle.PrecipitationProb, th.MaxPrecipitationProb,
			fmt.Sprintf("precipitation probability ≤ %.0f%%", th.MaxPrecipitationProb)),
		evalFloor(types.FactorSkyClarity, bundle.ClearSkyPct, th.MinClearSkyPct,
			fmt.Sprintf("clear sky ≥ %.0f%%", th.MinClearSkyPct)),
		evalPressure(bundle.PressureDeltaHPa, th.MaxPressureDeltaHPa),
		evalFloor(types.FactorTemperature, bundle.TemperatureDiffC, th.MinTemperatureDiffC,
			fmt.Sprintf("temperature differential ≥ %.0f°", th.MinTemperatureDiffC)),
		evalFloor(types.FactorWave, bundle.WaveEnhancement, th.MinWaveEnhancement,
			fmt.Sprintf("wave enhancement ≥ %.0f", th.MinWaveEnhancement)),
	}

	passed := 0
	weightedSum, weightTotal := 0.0, 0.0
	for _, f := range factors {
		if f.Passed {
			passed++
		}
		w := th.Weight(f.Name)
		weightedSum += w * f.Confidence
		weightTotal += w
	}

	probability := 100 * float64(passed) / float64(len(factors))
	confidence := 0.0
	if weightTotal > 0 {
		confidence = weightedSum / weightTotal
	}

	return types.Decision{
		EvaluatedAt:    now,
		Probability:    probability,
		Confidence:     confidence,
		Recommendation: recommend(probability, confidence, policy),
		Factors:        factors,
	}
}

// recommend maps the aggregate scores onto a categorical recommendation.
// SKIP is checked first so a low probability can never be upgraded by high
// confidence.
func recommend(probability, confidence float64, policy DecisionPolicy) types.Recommendation {
	switch {
	case probability < policy.SkipProbability:
		return types.RecommendationSkip
	case probability >= policy.GoProbability && confidence >= policy.GoConfidence:
		return types.RecommendationGo
	default:
		return types.RecommendationMarginal
	}
}

// evalCeiling checks a "value must stay at or below the limit" factor.
func evalCeiling(name types.FactorName, value *float64, limit float64, threshold string) types.FactorResult {
	if value == nil || !finite(*value) {
		return missingFactor(name, threshold)
	}
	return types.FactorResult{
		Name:       name,
		Passed:     *value <= limit,
		Confidence: scaledConfidence(*value, limit, limit),
		Value:      value,
		Threshold:  threshold,
	}
}

// evalFloor checks a "value must meet or exceed the minimum" factor.
func evalFloor(name types.FactorName, value *float64, min float64, threshold string) types.FactorResult {
	if value == nil || !finite(*value) {
		return missingFactor(name, threshold)
	}
	return types.FactorResult{
		Name:       name,
		Passed:     *value >= min,
		Confidence: scaledConfidence(*value, min, min),
		Value:      value,
		Threshold:  threshold,
	}
}

// evalPressure checks the pressure-stability factor against the absolute
// change over the analysis window. The sign of the delta does not matter;
// a strongly rising or falling barometer both break the katabatic setup.
func evalPressure(delta *float64, limit float64) types.FactorResult {
	threshold := fmt.Sprintf("|pressure change| < %.1f hPa", limit)
	if delta == nil || !finite(*delta) {
		return missingFactor(types.FactorPressure, threshold)
	}
	abs := math.Abs(*delta)
	return types.FactorResult{
		Name:       types.FactorPressure,
		Passed:     abs < limit,
		Confidence: scaledConfidence(abs, limit, limit),
		Value:      delta,
		Threshold:  threshold,
	}
}

// missingFactor is the graceful per-factor degradation for absent inputs:
// failed, zero confidence, reason carrying the diagnostic code.
func missingFactor(name types.FactorName, threshold string) types.FactorResult {
	return types.FactorResult{
		Name:       name,
		Passed:     false,
		Confidence: 0,
		Threshold:  threshold,
		Reason:     fmt.Sprintf("%s: forecast input absent", types.ErrCodeMissingFactorInput),
	}
}

// scaledConfidence maps the distance between the observed value and its
// threshold onto [minConfidence, maxConfidence]. The span normalizes the
// distance so each factor saturates at a comparable deviation; values at
// the threshold score minConfidence, values a full span away score
// maxConfidence.
func scaledConfidence(value, threshold, span float64) float64 {
	if span <= 0 {
		span = 1
	}
	d := math.Abs(value-threshold) / span
	if d > 1 {
		d = 1
	}
	return minConfidence + d*(maxConfidence-minConfidence)
}
