// ABOUTME: Bounded worker pool running voices on device channels
// ABOUTME: Caps simultaneous voices at the device channel count
package sound

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/tilegame/soundcore/pkg/audio/output"
)

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	Workers    int // Requested simultaneous voices (default: device channel count)
	QueueDepth int // Voices waiting for a worker (default: 64)
}

// Stats describes scheduler activity
type Stats struct {
	Submitted   int64 `json:"submitted"`
	Started     int64 `json:"started"`
	Completed   int64 `json:"completed"`
	Rejected    int64 `json:"rejected"`
	Failed      int64 `json:"failed"`
	Interrupted int64 `json:"interrupted"`
	Active      int64 `json:"active"`
	Queued      int64 `json:"queued"`
	Workers     int   `json:"workers"`
	Paused      bool  `json:"paused"`
}

// Scheduler runs submitted voices on a fixed set of workers
type Scheduler struct {
	device  output.Device
	gate    *PauseGate
	queue   chan *Voice
	workers int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	closeErr  error

	submitted   atomic.Int64
	started     atomic.Int64
	completed   atomic.Int64
	rejected    atomic.Int64
	failed      atomic.Int64
	interrupted atomic.Int64
	active      atomic.Int64
	queued      atomic.Int64
}

// NewScheduler starts the workers. The scheduler owns device and closes it on Close.
func NewScheduler(device output.Device, gate *PauseGate, config SchedulerConfig) *Scheduler {
	workers := device.MaxChannels()
	if config.Workers > 0 {
		workers = min(config.Workers, workers)
	}
	workers = max(1, workers)
	if config.QueueDepth <= 0 {
		config.QueueDepth = 64
	}
	if gate == nil {
		gate = NewPauseGate()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		device:  device,
		gate:    gate,
		queue:   make(chan *Voice, config.QueueDepth),
		workers: workers,
		ctx:     ctx,
		cancel:  cancel,
	}

	s.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go s.worker()
	}

	log.Printf("Scheduler started: %d workers, queue depth %d", workers, config.QueueDepth)
	return s
}

// Submit queues a voice without blocking
func (s *Scheduler) Submit(v *Voice) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.rejected.Add(1)
		return ErrClosed
	}

	select {
	case s.queue <- v:
		s.submitted.Add(1)
		s.queued.Add(1)
		return nil
	default:
		s.rejected.Add(1)
		return fmt.Errorf("%w: %d voices waiting", ErrQueueSaturated, cap(s.queue))
	}
}

// Gate returns the pause gate shared by every voice
func (s *Scheduler) Gate() *PauseGate {
	return s.gate
}

// Workers returns the number of worker goroutines
func (s *Scheduler) Workers() int {
	return s.workers
}

// Stats returns a snapshot of the counters
func (s *Scheduler) Stats() Stats {
	return Stats{
		Submitted:   s.submitted.Load(),
		Started:     s.started.Load(),
		Completed:   s.completed.Load(),
		Rejected:    s.rejected.Load(),
		Failed:      s.failed.Load(),
		Interrupted: s.interrupted.Load(),
		Active:      s.active.Load(),
		Queued:      s.queued.Load(),
		Workers:     s.workers,
		Paused:      s.gate.Paused(),
	}
}

// Close stops accepting voices, interrupts running and queued ones, waits for
// every worker and closes the device. Safe to call more than once.
func (s *Scheduler) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.queue)
		s.mu.Unlock()

		s.cancel()
		s.wg.Wait()

		if err := s.device.Close(); err != nil {
			s.closeErr = fmt.Errorf("failed to close output device: %w", err)
		}
		log.Printf("Scheduler closed: %+v", s.Stats())
	})
	return s.closeErr
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for v := range s.queue {
		s.queued.Add(-1)

		if s.ctx.Err() != nil {
			v.finish(ErrInterrupted)
			s.record(ErrInterrupted)
			continue
		}

		ctx, cancel, ok := v.claim(s.ctx)
		if !ok {
			// Stopped while queued
			v.finish(ErrInterrupted)
			s.record(ErrInterrupted)
			continue
		}

		s.started.Add(1)
		s.active.Add(1)
		err := v.run(ctx, s.device, s.gate)
		cancel()
		s.active.Add(-1)

		v.finish(err)
		s.record(err)
	}
}

func (s *Scheduler) record(err error) {
	switch {
	case err == nil:
		s.completed.Add(1)
	case errors.Is(err, ErrInterrupted):
		s.interrupted.Add(1)
	default:
		s.failed.Add(1)
	}
}
