package cloud

import (
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/electometer/smart-meter/internal/domain"
)

func TestReadingItemAttributes(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	item, err := attributevalue.MarshalMap(readingItem(domain.Reading{
		MeterID: "MTR-1001", Timestamp: ts, PowerWatts: 312.5, Voltage: 229.4, Current: 1.36,
	}))
	if err != nil {
		t.Fatal(err)
	}

	id, ok := item["meterId"].(*types.AttributeValueMemberS)
	if !ok || id.Value != "MTR-1001" {
		t.Fatalf("meterId attribute %#v", item["meterId"])
	}
	stamp, ok := item["timestamp"].(*types.AttributeValueMemberN)
	if !ok || stamp.Value != "1740830400000" {
		t.Fatalf("timestamp attribute %#v", item["timestamp"])
	}
	if _, ok := item["powerWatts"].(*types.AttributeValueMemberN); !ok {
		t.Fatalf("powerWatts attribute %#v", item["powerWatts"])
	}
}

func TestAlertItem(t *testing.T) {
	a := alertItem(domain.Alert{ID: 42, MeterID: "MTR-1", Type: domain.AlertHighUsage, Message: "m"})
	if a.AlertID != "alert-42" || a.Type != "HIGH_USAGE" {
		t.Fatalf("unexpected item %+v", a)
	}
}

func TestAlertMessage(t *testing.T) {
	a := domain.Alert{
		MeterID:   "MTR-1007",
		Timestamp: time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC),
		Type:      domain.AlertTheftSuspicion,
		Message:   domain.TheftMessage,
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"subject", alertSubject(a), "Meter Alert: Theft Suspected at MTR-1007"},
		{"high usage subject", alertSubject(domain.Alert{MeterID: "MTR-2", Type: domain.AlertHighUsage}), "Meter Alert: High Usage at MTR-2"},
		{"body time", alertBody(a), "Time: 2025-03-01T08:30:00Z"},
		{"body message", alertBody(a), domain.TheftMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.got, tt.want) {
				t.Fatalf("%q does not contain %q", tt.got, tt.want)
			}
		})
	}
}
