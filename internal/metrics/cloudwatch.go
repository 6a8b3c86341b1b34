// Package metrics emits operational telemetry to CloudWatch. Metric
// publishing is strictly best-effort: failures are logged and never
// propagated, so a metrics outage cannot fail an evaluation or a poll.
package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"dawnpatrol/internal/types"
)

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for
// testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Publisher emits decision and poller metrics to a CloudWatch namespace.
type Publisher struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger
}

// NewPublisher creates a Publisher for the given namespace.
func NewPublisher(client CloudWatchClient, namespace string, logger *slog.Logger) *Publisher {
	return &Publisher{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// RecordDecision emits DecisionEvaluated=1 with Site and Recommendation
// dimensions. Emitted on every evaluation, including SKIPs, so dashboards
// can see the full decision mix.
func (p *Publisher) RecordDecision(ctx context.Context, siteID string, rec types.Recommendation) {
	p.put(ctx, cwtypes.MetricDatum{
		MetricName: aws.String(types.MetricDecisionEvaluated),
		Value:      aws.Float64(1),
		Unit:       cwtypes.StandardUnitCount,
		Dimensions: []cwtypes.Dimension{
			{Name: aws.String(types.DimSite), Value: aws.String(siteID)},
			{Name: aws.String(types.DimRecommendation), Value: aws.String(string(rec))},
		},
	})
}

// RecordSamplesIngested emits the number of new samples stored for a site
// during one poll cycle. Zero is emitted too; a flat zero line is the
// first sign of a dead station.
func (p *Publisher) RecordSamplesIngested(ctx context.Context, siteID string, count int) {
	p.put(ctx, cwtypes.MetricDatum{
		MetricName: aws.String(types.MetricSamplesIngested),
		Value:      aws.Float64(float64(count)),
		Unit:       cwtypes.StandardUnitCount,
		Dimensions: []cwtypes.Dimension{
			{Name: aws.String(types.DimSite), Value: aws.String(siteID)},
		},
	})
}

// RecordPollLatency emits the wall-clock duration of one full poll cycle.
func (p *Publisher) RecordPollLatency(ctx context.Context, d time.Duration) {
	p.put(ctx, cwtypes.MetricDatum{
		MetricName: aws.String(types.MetricPollLatency),
		Value:      aws.Float64(float64(d.Milliseconds())),
		Unit:       cwtypes.StandardUnitMilliseconds,
	})
}

// RecordUpstreamFailure emits UpstreamFailure=1 with the failing endpoint
// as a dimension.
func (p *Publisher) RecordUpstreamFailure(ctx context.Context, endpoint string) {
	p.put(ctx, cwtypes.MetricDatum{
		MetricName: aws.String(types.MetricUpstreamFailure),
		Value:      aws.Float64(1),
		Unit:       cwtypes.StandardUnitCount,
		Dimensions: []cwtypes.Dimension{
			{Name: aws.String(types.DimEndpoint), Value: aws.String(endpoint)},
		},
	})
}

// put sends a single datum, logging (never returning) failures.
func (p *Publisher) put(ctx context.Context, datum cwtypes.MetricDatum) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(p.namespace),
		MetricData: []cwtypes.MetricDatum{datum},
	}
	if _, err := p.client.PutMetricData(ctx, input); err != nil {
		p.logger.WarnContext(ctx, "failed to publish metric",
			"metric", aws.ToString(datum.MetricName),
			"error", err,
		)
	}
}
