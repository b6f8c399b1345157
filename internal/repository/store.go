package repository

import (
	"context"
	"errors"
	"time"

	"github.com/electometer/smart-meter/internal/domain"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// Store is the persistence surface shared by the API, the generator and the workers.
// Listings come back already sorted the way the API serves them.
type Store interface {
	InsertMeters(ctx context.Context, meters []domain.Meter) error
	GetMeter(ctx context.Context, meterID string) (*domain.Meter, error)
	// ListMeters returns meters newest first.
	ListMeters(ctx context.Context) ([]domain.Meter, error)
	CountMeters(ctx context.Context) (int, error)

	InsertReading(ctx context.Context, r *domain.Reading) error
	InsertReadings(ctx context.Context, rs []domain.Reading) error
	LatestReading(ctx context.Context, meterID string) (*domain.Reading, error)
	// ReadingsBetween returns readings of one meter in [from, to), oldest first.
	ReadingsBetween(ctx context.Context, meterID string, from, to time.Time) ([]domain.Reading, error)
	CountReadings(ctx context.Context, meterID string) (int, error)
	ActiveMeterIDs(ctx context.Context, since time.Time) ([]string, error)
	// LatestPower returns the most recent power per meter. A nil meterIDs means all meters.
	LatestPower(ctx context.Context, meterIDs []string) (map[string]float64, error)
	// DailyAveragePower groups readings since the given time by UTC day, oldest first.
	DailyAveragePower(ctx context.Context, meterIDs []string, since time.Time) ([]domain.DailyPower, error)
	// HourlyAveragePower groups readings since the given time by UTC hour of day.
	HourlyAveragePower(ctx context.Context, meterIDs []string, since time.Time) ([]domain.HourlyPower, error)

	// InsertBills skips bills whose (meter, month, year) already exists and
	// reports how many rows were written.
	InsertBills(ctx context.Context, bills []domain.Bill) (int, error)
	// ListBills returns bills by year then month, newest first.
	ListBills(ctx context.Context, f domain.BillFilter) ([]domain.Bill, error)
	BillTotals(ctx context.Context, f domain.BillFilter) (domain.BillTotals, error)
	UpdateBillStatus(ctx context.Context, id int64, status domain.BillStatus) (*domain.Bill, error)

	InsertAlert(ctx context.Context, a *domain.Alert) error
	InsertAlerts(ctx context.Context, alerts []domain.Alert) error
	// ListAlerts returns alerts newest first.
	ListAlerts(ctx context.Context, f domain.AlertFilter) ([]domain.Alert, error)
	CountAlerts(ctx context.Context, f domain.AlertFilter) (int, error)

	GetAdminByUsername(ctx context.Context, username string) (*domain.Admin, error)
	InsertAdmin(ctx context.Context, a *domain.Admin) error
	TouchAdminLogin(ctx context.Context, id int64, at time.Time) error
}
