package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/electometer/smart-meter/internal/metrics"
)

// Job is one iteration of a periodic task.
type Job func(ctx context.Context) error

// TickerWorker runs a Job on a fixed interval. An iteration that is still
// running when the next tick fires causes that tick to be skipped.
type TickerWorker struct {
	name      string
	interval  time.Duration
	timeout   time.Duration
	job       Job
	immediate bool

	running  sync.Mutex
	inflight sync.WaitGroup
	stopCh   chan struct{}
	done     chan struct{}
	once     sync.Once
}

type Option func(*TickerWorker)

// WithTimeout bounds a single iteration. Defaults to the interval.
func WithTimeout(d time.Duration) Option { return func(w *TickerWorker) { w.timeout = d } }

// RunImmediately runs the first iteration on Start instead of after one interval.
func RunImmediately() Option { return func(w *TickerWorker) { w.immediate = true } }

func NewTicker(name string, interval time.Duration, job Job, opts ...Option) *TickerWorker {
	w := &TickerWorker{
		name:     name,
		interval: interval,
		timeout:  interval,
		job:      job,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

func (w *TickerWorker) Name() string { return w.name }

// Start blocks until Stop is called.
func (w *TickerWorker) Start() {
	defer close(w.done)
	log.Info().Str("worker", w.name).Dur("interval", w.interval).Msg("worker started")

	if w.immediate {
		w.RunOnce()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.inflight.Add(1)
			go func() {
				defer w.inflight.Done()
				w.RunOnce()
			}()
		case <-w.stopCh:
			w.inflight.Wait()
			log.Info().Str("worker", w.name).Msg("worker stopped")
			return
		}
	}
}

func (w *TickerWorker) Stop() {
	w.once.Do(func() { close(w.stopCh) })
}

// Done is closed once Start has returned.
func (w *TickerWorker) Done() <-chan struct{} { return w.done }

// RunOnce executes one iteration unless another is in flight. It reports
// whether the iteration ran.
func (w *TickerWorker) RunOnce() bool {
	if !w.running.TryLock() {
		metrics.WorkerSkipped(w.name)
		log.Warn().Str("worker", w.name).Msg("previous run still in progress; skipping tick")
		return false
	}
	defer w.running.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	start := time.Now()
	err := w.job(ctx)
	metrics.ObserveWorkerRun(w.name, time.Since(start), err)
	if err != nil {
		log.Error().Err(err).Str("worker", w.name).Msg("worker run failed")
	}
	return true
}
