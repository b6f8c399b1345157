package worker

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type Worker interface {
	Name() string
	Start()
	Stop()
}

// Scheduler starts a set of workers together and stops them together.
type Scheduler struct {
	workers     []Worker
	wg          sync.WaitGroup
	stopped     bool
	mu          sync.Mutex
	stopTimeout time.Duration
}

func NewScheduler() *Scheduler {
	return &Scheduler{stopTimeout: 10 * time.Second}
}

func (s *Scheduler) AddWorker(w Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers = append(s.workers, w)
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	log.Info().Int("workers", len(s.workers)).Msg("starting scheduler")
	for _, w := range s.workers {
		s.wg.Add(1)
		go func(w Worker) {
			defer s.wg.Done()
			w.Start()
		}(w)
	}
}

// Stop signals every worker and waits for them, up to the stop timeout.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	workers := append([]Worker(nil), s.workers...)
	s.mu.Unlock()

	for _, w := range workers {
		w.Stop()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("scheduler stopped gracefully")
	case <-time.After(s.stopTimeout):
		log.Warn().Dur("timeout", s.stopTimeout).Msg("scheduler stop timeout")
	}
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.stopped
}
