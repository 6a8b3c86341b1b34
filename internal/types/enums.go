package types

// Recommendation is the categorical outcome of a dawn patrol evaluation.
type Recommendation string

const (
	RecommendationGo       Recommendation = "go"
	RecommendationMarginal Recommendation = "marginal"
	RecommendationSkip     Recommendation = "skip"
)

// DirectionClass classifies a measured wind direction against a site's
// configured headings. Unknown means the input or the config was absent.
type DirectionClass string

const (
	DirectionPerfect    DirectionClass = "perfect"
	DirectionIdeal      DirectionClass = "ideal"
	DirectionSuboptimal DirectionClass = "suboptimal"
	DirectionUnknown    DirectionClass = "unknown"
)

// FactorName identifies one of the five environmental factors. The order of
// AllFactors is the canonical factor order in every Decision.
type FactorName string

const (
	FactorPrecipitation FactorName = "precipitation"
	FactorSkyClarity    FactorName = "sky_clarity"
	FactorPressure      FactorName = "pressure_stability"
	FactorTemperature   FactorName = "temperature_differential"
	FactorWave          FactorName = "wave_enhancement"
)

// AllFactors is the fixed evaluation order for the five factors.
var AllFactors = []FactorName{
	FactorPrecipitation,
	FactorSkyClarity,
	FactorPressure,
	FactorTemperature,
	FactorWave,
}

// SampleSource identifies where a stored sample came from.
type SampleSource string

const (
	SourceStation  SampleSource = "station"
	SourceForecast SampleSource = "forecast"
)

// Telemetry metric names for CloudWatch. All components MUST use these
// constants.
const (
	MetricDecisionEvaluated = "DecisionEvaluated"
	MetricSamplesIngested   = "SamplesIngested"
	MetricPollLatency       = "PollLatency"
	MetricUpstreamFailure   = "UpstreamFailure"

	// Dimension keys
	DimRecommendation = "Recommendation"
	DimSite           = "Site"
	DimEndpoint       = "Endpoint"
)
