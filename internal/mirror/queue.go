package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"attendance-bot/internal/logging"
	"attendance-bot/pkg/telemetry"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// MessageSender delivers a message body to a destination queue.
type MessageSender interface {
	SendMessage(ctx context.Context, destination string, eventType EventType, body []byte) error
}

// SQSClient is the subset of *sqs.Client used by SQSSender.
type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSSender implements MessageSender for AWS SQS.
type SQSSender struct {
	client SQSClient
}

func NewSQSSender(client SQSClient) *SQSSender {
	return &SQSSender{client: client}
}

func (s *SQSSender) SendMessage(ctx context.Context, destination string, eventType EventType, body []byte) error {
	attrs := telemetry.InjectTraceContext(ctx)
	attrs["EventType"] = types.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(string(eventType)),
	}

	_, err := s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(destination),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: attrs,
	})
	return err
}

// QueuePublisher publishes every event as a JSON message to one queue.
type QueuePublisher struct {
	sender   MessageSender
	queueURL string
	cb       *gobreaker.CircuitBreaker
	logger   *logrus.Logger
}

func NewQueuePublisher(sender MessageSender, queueURL string) *QueuePublisher {
	return &QueuePublisher{
		sender:   sender,
		queueURL: queueURL,
		cb:       newBreaker("Sync-Queue"),
		logger:   logging.New(),
	}
}

func (p *QueuePublisher) OnCheckIn(ctx context.Context, e AttendanceEvent) error {
	return p.publish(ctx, e.Type, e)
}

func (p *QueuePublisher) OnCheckOut(ctx context.Context, e AttendanceEvent) error {
	return p.publish(ctx, e.Type, e)
}

func (p *QueuePublisher) OnManualEntry(ctx context.Context, e AttendanceEvent) error {
	return p.publish(ctx, e.Type, e)
}

func (p *QueuePublisher) OnTasksLogged(ctx context.Context, e TasksEvent) error {
	return p.publish(ctx, e.Type, e)
}

func (p *QueuePublisher) publish(ctx context.Context, eventType EventType, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.sender.SendMessage(ctx, p.queueURL, eventType, body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			p.logger.Warn("Circuit breaker is open; skipping queue publish")
		}
		return fmt.Errorf("failed to send message to sync queue: %w", err)
	}

	p.logger.WithField("event", eventType).Debug("Event published to sync queue")
	return nil
}
