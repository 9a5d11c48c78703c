package supervisor

import (
	"context"
	"sync"
	"syscall"
	"time"

	"chatwire/internal/common/logger"
)

// Process is a running worker as the supervisor sees it. The real
// implementation wraps an exec.Cmd; tests substitute their own.
type Process interface {
	Pid() int
	Signal(sig syscall.Signal) error
	Wait() error
}

// SpawnFunc starts a new worker process for the given slot.
type SpawnFunc func(slot int) (Process, error)

type Config struct {
	Workers       int
	BackoffBase   time.Duration
	BackoffMax    time.Duration
	MaxRestarts   int
	RestartWindow time.Duration
}

// Supervisor runs N worker slots. Each slot holds one live process: when it
// exits the slot respawns it after an exponential backoff, unless the exits
// come faster than MaxRestarts per RestartWindow, in which case the slot is
// marked failed and left down. Shutdown forwards SIGTERM to every live
// worker and waits for all of them.
type Supervisor struct {
	cfg   Config
	spawn SpawnFunc
	log   *logger.Logger
	wg    sync.WaitGroup
}

func New(cfg Config, spawn SpawnFunc, log *logger.Logger) *Supervisor {
	return &Supervisor{
		cfg:   cfg,
		spawn: spawn,
		log:   log,
	}
}

// Run blocks until ctx is canceled and every worker has exited, or until
// every slot has failed.
func (s *Supervisor) Run(ctx context.Context) {
	s.log.WithFields(ctx, logger.Fields{
		"workers": s.cfg.Workers,
		"action":  "supervisor_start",
	}).Info("supervisor starting workers")

	for slot := 0; slot < s.cfg.Workers; slot++ {
		s.wg.Add(1)
		go s.runSlot(ctx, slot)
	}

	s.wg.Wait()

	s.log.WithFields(ctx, logger.Fields{
		"action": "supervisor_stopped",
	}).Info("all workers exited")
}

func (s *Supervisor) runSlot(ctx context.Context, slot int) {
	defer s.wg.Done()

	var exits []time.Time
	attempt := 0

	for {
		if ctx.Err() != nil {
			return
		}

		proc, err := s.spawn(slot)
		if err != nil {
			s.log.WithFields(ctx, logger.Fields{
				"slot":   slot,
				"action": "worker_spawn_failed",
			}).Errorf("worker spawn failed: %v", err)
			exits = append(exits, time.Now())
			if s.slotExceededRestartRate(&exits) {
				s.markSlotFailed(ctx, slot)
				return
			}
			if !s.sleepBackoff(ctx, attempt) {
				return
			}
			attempt++
			continue
		}

		started := time.Now()
		s.log.WithFields(ctx, logger.Fields{
			"slot":   slot,
			"pid":    proc.Pid(),
			"action": "worker_started",
		}).Info("worker started")

		waitErr := make(chan error, 1)
		go func() { waitErr <- proc.Wait() }()

		select {
		case <-ctx.Done():
			if err := proc.Signal(syscall.SIGTERM); err != nil {
				s.log.Warnf("failed to signal worker slot %d (pid %d): %v", slot, proc.Pid(), err)
			}
			<-waitErr
			s.log.WithFields(ctx, logger.Fields{
				"slot":   slot,
				"pid":    proc.Pid(),
				"action": "worker_stopped",
			}).Info("worker stopped on shutdown")
			return

		case err := <-waitErr:
			if ctx.Err() != nil {
				return
			}

			s.log.WithFields(ctx, logger.Fields{
				"slot":   slot,
				"pid":    proc.Pid(),
				"action": "worker_exited",
			}).Warnf("worker exited: %v", err)

			// A worker that stayed up past the restart window earns a fresh
			// backoff sequence.
			if time.Since(started) > s.cfg.RestartWindow {
				attempt = 0
				exits = exits[:0]
			}

			exits = append(exits, time.Now())
			if s.slotExceededRestartRate(&exits) {
				s.markSlotFailed(ctx, slot)
				return
			}

			if !s.sleepBackoff(ctx, attempt) {
				return
			}
			attempt++
		}
	}
}

// slotExceededRestartRate prunes exit timestamps older than the window and
// reports whether the remaining count crosses the limit.
func (s *Supervisor) slotExceededRestartRate(exits *[]time.Time) bool {
	cutoff := time.Now().Add(-s.cfg.RestartWindow)
	recent := (*exits)[:0]
	for _, t := range *exits {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	*exits = recent
	return len(recent) > s.cfg.MaxRestarts
}

func (s *Supervisor) sleepBackoff(ctx context.Context, attempt int) bool {
	delay := backoffDelay(s.cfg.BackoffBase, s.cfg.BackoffMax, attempt)
	select {
	case <-ctx.Done():
		return false
	case <-time.After(delay):
		return true
	}
}

func (s *Supervisor) markSlotFailed(ctx context.Context, slot int) {
	s.log.WithFields(ctx, logger.Fields{
		"slot":         slot,
		"max_restarts": s.cfg.MaxRestarts,
		"window":       s.cfg.RestartWindow.String(),
		"action":       "worker_slot_failed",
	}).Error("worker restarting too fast, slot marked failed")
}
