package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/electometer/smart-meter/internal/domain"
	"github.com/electometer/smart-meter/internal/repository"
)

var ErrNoObjectStore = errors.New("object store not configured")

type ArchiveService struct {
	store   repository.Store
	objects ObjectStore
	now     func() time.Time
}

// ArchiveKey is the object key of one UTC day of readings.
func ArchiveKey(day time.Time) string {
	return day.UTC().Format("readings/2006/01/02.json")
}

// ArchiveDay uploads the previous UTC day's readings of all meters as one JSON
// document and returns its key.
func (s *ArchiveService) ArchiveDay(ctx context.Context) (string, error) {
	if s.objects == nil {
		return "", ErrNoObjectStore
	}
	now := s.now().UTC()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -1)

	meters, err := s.store.ListMeters(ctx)
	if err != nil {
		return "", fmt.Errorf("list meters: %w", err)
	}
	readings := []domain.Reading{}
	for _, m := range meters {
		rs, err := s.store.ReadingsBetween(ctx, m.MeterID, from, to)
		if err != nil {
			return "", fmt.Errorf("readings of %s: %w", m.MeterID, err)
		}
		readings = append(readings, rs...)
	}

	data, err := json.Marshal(struct {
		Date     string           `json:"date"`
		Count    int              `json:"count"`
		Readings []domain.Reading `json:"readings"`
	}{from.Format(time.DateOnly), len(readings), readings})
	if err != nil {
		return "", fmt.Errorf("marshal archive: %w", err)
	}

	key := ArchiveKey(from)
	if err := s.objects.UploadDataFile(ctx, key, data); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	log.Info().Str("key", key).Int("count", len(readings)).Msg("readings archived")
	return key, nil
}
