// Package billing turns a month of readings into a bill.
package billing

import (
	"math"
	"time"

	"github.com/electometer/smart-meter/internal/domain"
)

const (
	DefaultTariff = 8.0
	DefaultMaxGap = 15 * time.Minute
	// DueDay is the day of the following month a bill falls due.
	DueDay = 15
)

// Calculator prices energy at a flat tariff per kWh.
type Calculator struct {
	Tariff float64
	MaxGap time.Duration
}

func NewCalculator(tariff float64, maxGap time.Duration) Calculator {
	if tariff <= 0 {
		tariff = DefaultTariff
	}
	if maxGap <= 0 {
		maxGap = DefaultMaxGap
	}
	return Calculator{Tariff: tariff, MaxGap: maxGap}
}

// EnergyKWh integrates power over time with the trapezoid rule. Readings must
// be sorted by timestamp. Pairs further apart than MaxGap are skipped so a
// meter that went silent is not billed for the gap.
func (c Calculator) EnergyKWh(readings []domain.Reading) float64 {
	var wattHours float64
	for i := 1; i < len(readings); i++ {
		prev, cur := readings[i-1], readings[i]
		dt := cur.Timestamp.Sub(prev.Timestamp)
		if dt <= 0 || dt > c.MaxGap {
			continue
		}
		wattHours += (prev.PowerWatts + cur.PowerWatts) / 2 * dt.Hours()
	}
	return Round2(wattHours / 1000)
}

// Amount prices kWh at the tariff.
func (c Calculator) Amount(kwh float64) float64 {
	return Round2(kwh * c.Tariff)
}

// MonthRange returns [first instant of month, first instant of next month) in UTC.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// DueDate is the 15th of the month after the billed one.
func DueDate(year int, month time.Month) time.Time {
	return time.Date(year, month+1, DueDay, 0, 0, 0, 0, time.UTC)
}

// PreviousMonth returns the calendar month before the one containing t (UTC).
func PreviousMonth(t time.Time) (int, time.Month) {
	first := time.Date(t.UTC().Year(), t.UTC().Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return first.Year(), first.Month()
}

// Bill builds the DUE bill for one meter-month from its readings.
func (c Calculator) Bill(meterID string, year int, month time.Month, readings []domain.Reading) domain.Bill {
	kwh := c.EnergyKWh(readings)
	return domain.Bill{
		MeterID:   meterID,
		Month:     int(month),
		Year:      year,
		TotalKWh:  kwh,
		AmountDue: c.Amount(kwh),
		Status:    domain.BillDue,
		DueDate:   DueDate(year, month),
	}
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
