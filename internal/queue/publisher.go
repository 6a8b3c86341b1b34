// Package queue provides the SQS-based producer for dispatching decision
// events to the downstream alert layer. Delivery (push, audio alarms) is the
// consumer's concern; this package only publishes.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"

	"dawnpatrol/internal/types"
)

// SQSSender abstracts the SQS SendMessage operation for testability.
// Production code uses the *sqs.Client from aws-sdk-go-v2.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// DecisionEvent is the wire payload published for every evaluation. The
// alert layer filters on Recommendation; EventID deduplicates replays.
type DecisionEvent struct {
	EventID     string         `json:"event_id"`
	SiteID      string         `json:"site_id"`
	SiteName    string         `json:"site_name"`
	Decision    types.Decision `json:"decision"`
	PublishedAt time.Time      `json:"published_at"`
}

// DecisionPublisher serializes decision events and sends them to the
// configured SQS queue.
type DecisionPublisher struct {
	client   SQSSender
	queueURL string
	logger   *slog.Logger
}

// NewDecisionPublisher creates a DecisionPublisher for the given queue URL.
func NewDecisionPublisher(client SQSSender, queueURL string, logger *slog.Logger) *DecisionPublisher {
	return &DecisionPublisher{
		client:   client,
		queueURL: queueURL,
		logger:   logger,
	}
}

// Publish sends one decision event. The event ID is generated here so every
// publish is uniquely traceable even when the same decision is re-sent.
func (p *DecisionPublisher) Publish(ctx context.Context, site types.Site, decision types.Decision, now time.Time) error {
	event := DecisionEvent{
		EventID:     uuid.New().String(),
		SiteID:      site.ID,
		SiteName:    site.Name,
		Decision:    decision,
		PublishedAt: now,
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("queue: failed to marshal decision event: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqsTypes.MessageAttributeValue{
			"recommendation": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(decision.Recommendation)),
			},
			"site_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(site.ID),
			},
		},
	}

	if _, err := p.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("queue: failed to send decision event to %s: %w", p.queueURL, err)
	}

	p.logger.InfoContext(ctx, "decision event published",
		"queue_url", p.queueURL,
		"event_id", event.EventID,
		"site_id", site.ID,
		"recommendation", string(decision.Recommendation),
		"probability", decision.Probability,
	)

	return nil
}
