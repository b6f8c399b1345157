package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/electometer/smart-meter/internal/config"
	"github.com/electometer/smart-meter/internal/domain"
	"github.com/electometer/smart-meter/internal/metrics"
	"github.com/electometer/smart-meter/internal/repository"
)

// ReadingService persists incoming readings and raises alerts for them.
type ReadingService struct {
	store    repository.Store
	cache    LiveCache
	notifier Notifier
	mirror   Mirror
	alerting config.Alerting
	now      func() time.Time
}

// Ingest stores r and returns the alerts it triggered. Cache, mirror and
// notifier failures are logged and do not fail the call.
func (s *ReadingService) Ingest(ctx context.Context, r domain.Reading) ([]domain.Alert, error) {
	if strings.TrimSpace(r.MeterID) == "" {
		return nil, fmt.Errorf("%w: missing meter id", ErrInvalidReading)
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = s.now().UTC()
	}
	if err := s.store.InsertReading(ctx, &r); err != nil {
		return nil, fmt.Errorf("insert reading for %s: %w", r.MeterID, err)
	}
	metrics.ReadingIngested()

	if s.cache != nil {
		if err := s.cache.SetLive(ctx, r); err != nil {
			metrics.SideEffectFailed("cache")
			log.Warn().Err(err).Str("meter_id", r.MeterID).Msg("live cache update failed")
		}
	}
	if s.mirror != nil {
		if err := s.mirror.MirrorReading(ctx, r); err != nil {
			metrics.SideEffectFailed("mirror")
			log.Warn().Err(err).Str("meter_id", r.MeterID).Msg("reading mirror failed")
		}
	}

	candidates, err := s.evaluate(ctx, r)
	if err != nil {
		return nil, err
	}
	raised := make([]domain.Alert, 0, len(candidates))
	for _, a := range candidates {
		if err := s.store.InsertAlert(ctx, &a); err != nil {
			return raised, fmt.Errorf("insert %s alert for %s: %w", a.Type, a.MeterID, err)
		}
		metrics.AlertRaised(string(a.Type))
		log.Warn().Str("meter_id", a.MeterID).Str("type", string(a.Type)).Msg("alert raised")
		s.dispatch(ctx, a)
		raised = append(raised, a)
	}
	return raised, nil
}

// Emit lets the service act as the generator's sink.
func (s *ReadingService) Emit(ctx context.Context, r domain.Reading) error {
	_, err := s.Ingest(ctx, r)
	return err
}

func (s *ReadingService) evaluate(ctx context.Context, r domain.Reading) ([]domain.Alert, error) {
	if r.PowerWatts == 0 {
		return []domain.Alert{{
			MeterID:   r.MeterID,
			Timestamp: r.Timestamp,
			Type:      domain.AlertTheftSuspicion,
			Message:   domain.TheftMessage,
		}}, nil
	}

	threshold := s.alerting.HighUsageWatts
	if threshold <= 0 || r.PowerWatts < threshold {
		return nil, nil
	}
	if cd := s.alerting.HighUsageCooldown; cd > 0 {
		recent, err := s.store.ListAlerts(ctx, domain.AlertFilter{
			MeterID: r.MeterID,
			Type:    domain.AlertHighUsage,
			Since:   r.Timestamp.Add(-cd),
			Limit:   1,
		})
		if err != nil {
			return nil, fmt.Errorf("check high usage cooldown: %w", err)
		}
		if len(recent) > 0 {
			return nil, nil
		}
	}
	return []domain.Alert{{
		MeterID:   r.MeterID,
		Timestamp: r.Timestamp,
		Type:      domain.AlertHighUsage,
		Message:   domain.HighUsageMessage,
	}}, nil
}

func (s *ReadingService) dispatch(ctx context.Context, a domain.Alert) {
	if s.mirror != nil {
		if err := s.mirror.MirrorAlert(ctx, a); err != nil {
			metrics.SideEffectFailed("mirror")
			log.Warn().Err(err).Str("meter_id", a.MeterID).Msg("alert mirror failed")
		}
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyAlert(ctx, a); err != nil {
			metrics.SideEffectFailed("notify")
			log.Warn().Err(err).Str("meter_id", a.MeterID).Msg("alert notification failed")
		}
	}
}

// FromMQTT decodes a reading published by the simulator and ingests it.
func (s *ReadingService) FromMQTT(ctx context.Context, topic string, payload []byte) error {
	var r domain.Reading
	if err := json.Unmarshal(payload, &r); err != nil {
		return fmt.Errorf("%w: decode payload on %s: %v", ErrInvalidReading, topic, err)
	}
	if r.PowerWatts < 0 || r.Voltage < 0 {
		return fmt.Errorf("%w: negative power or voltage for %s", ErrInvalidReading, r.MeterID)
	}
	_, err := s.Ingest(ctx, r)
	return err
}
