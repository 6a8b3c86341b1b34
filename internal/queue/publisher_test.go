package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dawnpatrol/internal/types"
)

// mockSQS records SendMessage calls for verification.
type mockSQS struct {
	inputs   []*sqs.SendMessageInput
	failNext bool
}

func (m *mockSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if m.failNext {
		m.failNext = false
		return nil, fmt.Errorf("simulated SQS failure")
	}
	m.inputs = append(m.inputs, params)
	return &sqs.SendMessageOutput{}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testSite() types.Site {
	return types.Site{ID: "site-1", Name: "Sandy Point"}
}

func testDecision() types.Decision {
	return types.Decision{
		Probability:    80,
		Confidence:     72,
		Recommendation: types.RecommendationGo,
	}
}

func TestPublish(t *testing.T) {
	mock := &mockSQS{}
	pub := NewDecisionPublisher(mock, "https://sqs.example.com/decisions", testLogger())
	now := time.Date(2026, 8, 25, 4, 45, 0, 0, time.UTC)

	err := pub.Publish(context.Background(), testSite(), testDecision(), now)
	require.NoError(t, err)
	require.Len(t, mock.inputs, 1)

	input := mock.inputs[0]
	assert.Equal(t, "https://sqs.example.com/decisions", *input.QueueUrl)
	assert.Equal(t, "go", *input.MessageAttributes["recommendation"].StringValue)
	assert.Equal(t, "site-1", *input.MessageAttributes["site_id"].StringValue)

	var event DecisionEvent
	require.NoError(t, json.Unmarshal([]byte(*input.MessageBody), &event))
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "Sandy Point", event.SiteName)
	assert.Equal(t, now, event.PublishedAt)
	assert.Equal(t, types.RecommendationGo, event.Decision.Recommendation)
}

func TestPublishUniqueEventIDs(t *testing.T) {
	mock := &mockSQS{}
	pub := NewDecisionPublisher(mock, "q", testLogger())

	for i := 0; i < 2; i++ {
		require.NoError(t, pub.Publish(context.Background(), testSite(), testDecision(), time.Now()))
	}
	require.Len(t, mock.inputs, 2)

	var a, b DecisionEvent
	require.NoError(t, json.Unmarshal([]byte(*mock.inputs[0].MessageBody), &a))
	require.NoError(t, json.Unmarshal([]byte(*mock.inputs[1].MessageBody), &b))
	assert.NotEqual(t, a.EventID, b.EventID)
}

func TestPublishSendFailure(t *testing.T) {
	mock := &mockSQS{failNext: true}
	pub := NewDecisionPublisher(mock, "q", testLogger())

	err := pub.Publish(context.Background(), testSite(), testDecision(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send decision event")
}
