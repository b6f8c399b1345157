package cloud

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog/log"

	"github.com/electometer/smart-meter/internal/domain"
)

// SNSClient wraps AWS SNS client for notification operations
type SNSClient struct {
	svc      *sns.Client
	topicArn string
}

func NewSNSClient(cfg aws.Config, topicArn string) *SNSClient {
	return &SNSClient{
		svc:      sns.NewFromConfig(cfg),
		topicArn: topicArn,
	}
}

// SendAlert publishes one message to the topic.
func (c *SNSClient) SendAlert(ctx context.Context, subject, message string) error {
	result, err := c.svc.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(c.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}

	log.Debug().Str("message_id", aws.ToString(result.MessageId)).Msg("alert published")
	return nil
}

func alertSubject(a domain.Alert) string {
	switch a.Type {
	case domain.AlertTheftSuspicion:
		return fmt.Sprintf("Meter Alert: Theft Suspected at %s", a.MeterID)
	case domain.AlertHighUsage:
		return fmt.Sprintf("Meter Alert: High Usage at %s", a.MeterID)
	}
	return fmt.Sprintf("Meter Alert: %s", a.MeterID)
}

func alertBody(a domain.Alert) string {
	return fmt.Sprintf(
		"Meter: %s\n"+
			"Type: %s\n"+
			"Time: %s\n\n"+
			"%s",
		a.MeterID,
		a.Type,
		a.Timestamp.UTC().Format(time.RFC3339),
		a.Message,
	)
}

// NotifyAlert formats and publishes a meter alert.
func (c *SNSClient) NotifyAlert(ctx context.Context, a domain.Alert) error {
	return c.SendAlert(ctx, alertSubject(a), alertBody(a))
}
