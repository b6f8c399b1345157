package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/electometer/smart-meter/internal/domain"
	"github.com/electometer/smart-meter/internal/repository"
)

const meterAlertLimit = 50

// History periods accepted by MeterService.History. Anything else falls back to 24h.
var historyPeriods = map[string]time.Duration{
	"6h":  6 * time.Hour,
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
}

// HistoryWindow resolves a period name to its duration.
func HistoryWindow(period string) time.Duration {
	if d, ok := historyPeriods[period]; ok {
		return d
	}
	return historyPeriods["24h"]
}

// MeterService serves the per-meter consumer endpoints.
type MeterService struct {
	store repository.Store
	cache LiveCache
	now   func() time.Time
}

// Live returns the most recent reading of a meter, from the cache when it has one.
func (s *MeterService) Live(ctx context.Context, meterID string) (*domain.Reading, error) {
	if s.cache != nil {
		r, err := s.cache.GetLive(ctx, meterID)
		switch {
		case err == nil:
			return r, nil
		case !errors.Is(err, repository.ErrNotFound):
			log.Debug().Err(err).Str("meter_id", meterID).Msg("live cache lookup failed")
		}
	}
	return s.store.LatestReading(ctx, meterID)
}

// History returns the readings of the requested period, oldest first.
func (s *MeterService) History(ctx context.Context, meterID, period string) ([]domain.Reading, error) {
	now := s.now().UTC()
	// readings stamped slightly ahead of our clock still count as current
	return s.store.ReadingsBetween(ctx, meterID, now.Add(-HistoryWindow(period)), now.Add(time.Minute))
}

func (s *MeterService) Bills(ctx context.Context, meterID string) ([]domain.Bill, error) {
	return s.store.ListBills(ctx, domain.BillFilter{MeterID: meterID})
}

func (s *MeterService) Alerts(ctx context.Context, meterID string) ([]domain.Alert, error) {
	return s.store.ListAlerts(ctx, domain.AlertFilter{MeterID: meterID, Limit: meterAlertLimit})
}
