package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/electometer/smart-meter/internal/billing"
	"github.com/electometer/smart-meter/internal/domain"
	"github.com/electometer/smart-meter/internal/repository"
)

// BillingService turns last month's readings into bills.
type BillingService struct {
	store repository.Store
	calc  billing.Calculator
	now   func() time.Time
}

// RunMonthly bills the previous calendar month for every meter that has
// readings in it and no bill yet. It returns the number of bills created.
func (s *BillingService) RunMonthly(ctx context.Context) (int, error) {
	now := s.now().UTC()
	year, month := billing.PreviousMonth(now)
	from, to := billing.MonthRange(year, month)

	meters, err := s.store.ListMeters(ctx)
	if err != nil {
		return 0, fmt.Errorf("list meters: %w", err)
	}

	var bills []domain.Bill
	for _, m := range meters {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		billed, err := s.billed(ctx, m.MeterID, year, month)
		if err != nil {
			return 0, err
		}
		if billed {
			continue
		}
		readings, err := s.store.ReadingsBetween(ctx, m.MeterID, from, to)
		if err != nil {
			return 0, fmt.Errorf("readings of %s: %w", m.MeterID, err)
		}
		if len(readings) == 0 {
			continue
		}
		b := s.calc.Bill(m.MeterID, year, month, readings)
		b.CreatedAt = now
		bills = append(bills, b)
	}
	if len(bills) == 0 {
		return 0, nil
	}

	n, err := s.store.InsertBills(ctx, bills)
	if err != nil {
		return 0, fmt.Errorf("insert bills: %w", err)
	}
	log.Info().Int("count", n).Int("year", year).Int("month", int(month)).Msg("monthly bills created")
	return n, nil
}

func (s *BillingService) billed(ctx context.Context, meterID string, year int, month time.Month) (bool, error) {
	bills, err := s.store.ListBills(ctx, domain.BillFilter{MeterID: meterID})
	if err != nil {
		return false, fmt.Errorf("bills of %s: %w", meterID, err)
	}
	for _, b := range bills {
		if b.Year == year && b.Month == int(month) {
			return true, nil
		}
	}
	return false, nil
}
