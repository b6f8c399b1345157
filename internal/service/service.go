package service

import (
	"context"
	"errors"
	"time"

	"github.com/electometer/smart-meter/internal/billing"
	"github.com/electometer/smart-meter/internal/config"
	"github.com/electometer/smart-meter/internal/domain"
	"github.com/electometer/smart-meter/internal/repository"
	"github.com/electometer/smart-meter/internal/simulation"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidAlertType   = errors.New("invalid alert type")
	ErrInvalidReading     = errors.New("invalid reading")
)

// LiveCache holds the most recent reading per meter.
type LiveCache interface {
	GetLive(ctx context.Context, meterID string) (*domain.Reading, error)
	SetLive(ctx context.Context, r domain.Reading) error
}

// Notifier pushes alerts to operators.
type Notifier interface {
	NotifyAlert(ctx context.Context, a domain.Alert) error
}

// Mirror copies readings and alerts to a secondary document store.
type Mirror interface {
	MirrorReading(ctx context.Context, r domain.Reading) error
	MirrorAlert(ctx context.Context, a domain.Alert) error
}

// ObjectStore receives archived data files.
type ObjectStore interface {
	UploadDataFile(ctx context.Context, key string, data []byte) error
}

// Deps are the optional integrations. Nil members are skipped.
type Deps struct {
	Cache    LiveCache
	Notifier Notifier
	Mirror   Mirror
	Objects  ObjectStore
}

// Options carry the tunables read from configuration.
type Options struct {
	Alerting   config.Alerting
	Billing    billing.Calculator
	Simulation simulation.Params
	Admin      AdminCredentials
}

type AdminCredentials struct {
	Username string
	Password string
}

func DefaultOptions() Options {
	return Options{
		Alerting:   config.Alerting{HighUsageWatts: 440, HighUsageCooldown: time.Hour},
		Billing:    billing.NewCalculator(billing.DefaultTariff, billing.DefaultMaxGap),
		Simulation: simulation.DefaultParams(),
		Admin:      AdminCredentials{Username: "admin", Password: "admin123"},
	}
}

// OptionsFromConfig reads Options from the loaded configuration.
func OptionsFromConfig() Options {
	return Options{
		Alerting:   config.AlertingSettings(),
		Billing:    billing.NewCalculator(config.TariffPerKWh(), config.BillingMaxGap()),
		Simulation: simulation.ParamsFromConfig(config.SimulationSettings()),
		Admin:      AdminCredentials{Username: config.AdminUsername(), Password: config.AdminPassword()},
	}
}

type Services struct {
	Store     repository.Store
	Readings  *ReadingService
	Meters    *MeterService
	Admin     *AdminService
	Analytics *AnalyticsService
	Billing   *BillingService
	Archive   *ArchiveService
	Seeder    *Seeder
}

func New(store repository.Store, deps Deps, opts Options) *Services {
	now := time.Now
	return &Services{
		Store: store,
		Readings: &ReadingService{
			store:    store,
			cache:    deps.Cache,
			notifier: deps.Notifier,
			mirror:   deps.Mirror,
			alerting: opts.Alerting,
			now:      now,
		},
		Meters:    &MeterService{store: store, cache: deps.Cache, now: now},
		Admin:     &AdminService{store: store, admin: opts.Admin, now: now},
		Analytics: &AnalyticsService{store: store, now: now},
		Billing:   &BillingService{store: store, calc: opts.Billing, now: now},
		Archive:   &ArchiveService{store: store, objects: deps.Objects, now: now},
		Seeder:    &Seeder{store: store, calc: opts.Billing, params: opts.Simulation, now: now},
	}
}
