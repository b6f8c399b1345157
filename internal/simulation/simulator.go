package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/electometer/smart-meter/internal/domain"
)

// MeterLister supplies the meters to simulate on each tick.
type MeterLister interface {
	ListMeters(ctx context.Context) ([]domain.Meter, error)
}

// StaticMeters is a fixed meter registry for processes without a store.
type StaticMeters []domain.Meter

func (s StaticMeters) ListMeters(context.Context) ([]domain.Meter, error) { return s, nil }

// Sink receives every fabricated reading.
type Sink interface {
	Emit(ctx context.Context, r domain.Reading) error
}

type SinkFunc func(ctx context.Context, r domain.Reading) error

func (f SinkFunc) Emit(ctx context.Context, r domain.Reading) error { return f(ctx, r) }

type Simulator struct {
	meters MeterLister
	gen    *Generator
	sink   Sink
	now    func() time.Time
}

func NewSimulator(meters MeterLister, gen *Generator, sink Sink) *Simulator {
	return &Simulator{meters: meters, gen: gen, sink: sink, now: time.Now}
}

// Tick fabricates one reading per registered meter and hands each to the sink.
// A failing meter does not stop the others; all failures are joined.
func (s *Simulator) Tick(ctx context.Context) error {
	meters, err := s.meters.ListMeters(ctx)
	if err != nil {
		return fmt.Errorf("list meters: %w", err)
	}
	ts := s.now().UTC()
	var errs []error
	zeros := 0
	for _, m := range meters {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		r := s.gen.Reading(m.MeterID, ts)
		if r.PowerWatts == 0 {
			zeros++
		}
		if err := s.sink.Emit(ctx, r); err != nil {
			errs = append(errs, fmt.Errorf("meter %s: %w", m.MeterID, err))
		}
	}
	log.Debug().Int("count", len(meters)).Int("zero_power", zeros).Msg("generated readings")
	return errors.Join(errs...)
}
