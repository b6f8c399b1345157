package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/electometer/smart-meter/internal/billing"
	"github.com/electometer/smart-meter/internal/domain"
	"github.com/electometer/smart-meter/internal/repository"
	"github.com/electometer/smart-meter/internal/simulation"
)

const (
	seedHistory      = 7 * 24 * time.Hour
	seedStep         = 5 * time.Minute
	seedBillMonths   = 4
	seedMinKWh       = 200
	seedKWhRange     = 200
	seedHighUsageP   = 0.5
	seedTheftP       = 0.3
	seedAlertHorizon = 7 * 24 * time.Hour
)

// Seeder fills an empty store with demo meters, history, bills and alerts.
type Seeder struct {
	store  repository.Store
	calc   billing.Calculator
	params simulation.Params
	now    func() time.Time
	src    rand.Source
}

// Seed is a no-op when the first demo meter already exists. It reports whether it wrote anything.
func (s *Seeder) Seed(ctx context.Context) (bool, error) {
	_, err := s.store.GetMeter(ctx, FirstSeedMeter)
	if err == nil {
		log.Info().Msg("store already seeded, skipping")
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("check seed meter: %w", err)
	}

	now := s.now().UTC()
	gen := simulation.NewGenerator(s.params, s.src)

	meters := make([]domain.Meter, len(seedMeters))
	for i, m := range seedMeters {
		m.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		meters[i] = m
	}
	if err := s.store.InsertMeters(ctx, meters); err != nil {
		return false, fmt.Errorf("insert meters: %w", err)
	}
	log.Info().Int("count", len(meters)).Msg("meters seeded")

	var readings int
	for _, m := range meters {
		batch := make([]domain.Reading, 0, int(seedHistory/seedStep)+1)
		for off := seedHistory; off >= 0; off -= seedStep {
			batch = append(batch, gen.Reading(m.MeterID, now.Add(-off)))
		}
		if err := s.store.InsertReadings(ctx, batch); err != nil {
			return false, fmt.Errorf("insert readings of %s: %w", m.MeterID, err)
		}
		readings += len(batch)
	}
	log.Info().Int("count", readings).Msg("historical readings seeded")

	bills := s.bills(meters, gen, now)
	n, err := s.store.InsertBills(ctx, bills)
	if err != nil {
		return false, fmt.Errorf("insert bills: %w", err)
	}
	log.Info().Int("count", n).Msg("bills seeded")

	alerts := s.alerts(meters, gen, now)
	if len(alerts) > 0 {
		if err := s.store.InsertAlerts(ctx, alerts); err != nil {
			return false, fmt.Errorf("insert alerts: %w", err)
		}
	}
	log.Info().Int("count", len(alerts)).Msg("alerts seeded")
	return true, nil
}

// bills covers the current month (DUE) and the three before it (PAID).
func (s *Seeder) bills(meters []domain.Meter, gen *simulation.Generator, now time.Time) []domain.Bill {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]domain.Bill, 0, len(meters)*seedBillMonths)
	for _, m := range meters {
		for i := 0; i < seedBillMonths; i++ {
			month := first.AddDate(0, -i, 0)
			kwh := billing.Round2(gen.Float()*seedKWhRange + seedMinKWh)
			status := domain.BillPaid
			if i == 0 {
				status = domain.BillDue
			}
			out = append(out, domain.Bill{
				MeterID:   m.MeterID,
				Month:     int(month.Month()),
				Year:      month.Year(),
				TotalKWh:  kwh,
				AmountDue: s.calc.Amount(kwh),
				Status:    status,
				DueDate:   billing.DueDate(month.Year(), month.Month()),
				CreatedAt: now,
			})
		}
	}
	return out
}

func (s *Seeder) alerts(meters []domain.Meter, gen *simulation.Generator, now time.Time) []domain.Alert {
	var out []domain.Alert
	at := func() time.Time {
		return now.Add(-time.Duration(gen.Float() * float64(seedAlertHorizon)))
	}
	for _, m := range meters {
		if gen.Float() < seedHighUsageP {
			out = append(out, domain.Alert{
				MeterID:   m.MeterID,
				Timestamp: at(),
				Type:      domain.AlertHighUsage,
				Message:   domain.HighUsageMessage,
			})
		}
		if gen.Float() < seedTheftP {
			out = append(out, domain.Alert{
				MeterID:   m.MeterID,
				Timestamp: at(),
				Type:      domain.AlertTheftSuspicion,
				Message:   domain.TheftMessage,
			})
		}
	}
	return out
}
