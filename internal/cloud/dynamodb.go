package cloud

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/electometer/smart-meter/internal/domain"
)

// DynamoDBClient mirrors readings and alerts into DynamoDB tables.
type DynamoDBClient struct {
	svc           *dynamodb.Client
	readingsTable string
	alertsTable   string
}

func NewDynamoDBClient(cfg aws.Config, readingsTable, alertsTable string) *DynamoDBClient {
	return &DynamoDBClient{
		svc:           dynamodb.NewFromConfig(cfg),
		readingsTable: readingsTable,
		alertsTable:   alertsTable,
	}
}

// Reading is the DynamoDB item of one reading, keyed by meter and unix millis.
type Reading struct {
	MeterID    string  `dynamodbav:"meterId"`
	Timestamp  int64   `dynamodbav:"timestamp"`
	PowerWatts float64 `dynamodbav:"powerWatts"`
	Voltage    float64 `dynamodbav:"voltage"`
	Current    float64 `dynamodbav:"current"`
}

func readingItem(r domain.Reading) Reading {
	return Reading{
		MeterID:    r.MeterID,
		Timestamp:  r.Timestamp.UnixMilli(),
		PowerWatts: r.PowerWatts,
		Voltage:    r.Voltage,
		Current:    r.Current,
	}
}

// MirrorReading stores an energy reading in DynamoDB
func (c *DynamoDBClient) MirrorReading(ctx context.Context, r domain.Reading) error {
	item, err := attributevalue.MarshalMap(readingItem(r))
	if err != nil {
		return fmt.Errorf("failed to marshal reading: %w", err)
	}

	_, err = c.svc.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.readingsTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put item in DynamoDB: %w", err)
	}
	return nil
}

// Alert represents an alert stored in DynamoDB
type Alert struct {
	AlertID   string `dynamodbav:"alertId"`
	MeterID   string `dynamodbav:"meterId"`
	Timestamp int64  `dynamodbav:"timestamp"`
	Type      string `dynamodbav:"type"`
	Message   string `dynamodbav:"message"`
}

func alertItem(a domain.Alert) Alert {
	return Alert{
		AlertID:   fmt.Sprintf("alert-%d", a.ID),
		MeterID:   a.MeterID,
		Timestamp: a.Timestamp.UnixMilli(),
		Type:      string(a.Type),
		Message:   a.Message,
	}
}

func (c *DynamoDBClient) MirrorAlert(ctx context.Context, a domain.Alert) error {
	item, err := attributevalue.MarshalMap(alertItem(a))
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	_, err = c.svc.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.alertsTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}
