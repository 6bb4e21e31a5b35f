package commands

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/maksimkurb/netpolicy/src/internal/log"
)

// RestartableRunner runs a long-lived daemon component in a goroutine and
// restarts it with exponential backoff when it fails or panics. A component
// returning nil, or returning after its context was cancelled, is not
// restarted.
type RestartableRunner struct {
	name    string
	runFunc func(ctx context.Context) error
	cfg     RunnerConfig

	mu           sync.RWMutex
	running      bool
	cancel       context.CancelFunc
	done         chan struct{}
	lastError    error
	restartCount int
}

// RunnerConfig contains configuration for RestartableRunner.
type RunnerConfig struct {
	Name           string
	MaxRestarts    int           // 0 = unlimited restarts
	RestartBackoff time.Duration // Initial backoff (default: 1s)
	MaxBackoff     time.Duration // Max backoff (default: 30s)
	StopTimeout    time.Duration // How long Stop waits (default: 30s)
}

// RunnerStatus is a point-in-time view of a runner.
type RunnerStatus struct {
	Name         string
	Running      bool
	RestartCount int
	LastError    error
}

// NewRestartableRunner creates a new restartable runner.
func NewRestartableRunner(cfg RunnerConfig, runFunc func(ctx context.Context) error) *RestartableRunner {
	if cfg.RestartBackoff <= 0 {
		cfg.RestartBackoff = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	if cfg.MaxBackoff < cfg.RestartBackoff {
		cfg.MaxBackoff = cfg.RestartBackoff
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = 30 * time.Second
	}

	return &RestartableRunner{
		name:    cfg.Name,
		runFunc: runFunc,
		cfg:     cfg,
	}
}

// Start starts the runner in a goroutine.
func (r *RestartableRunner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("%s is already running", r.name)
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.running = true
	r.restartCount = 0
	r.lastError = nil

	go r.runLoop(runCtx, r.done)

	return nil
}

// Stop cancels the component and waits for it to return.
func (r *RestartableRunner) Stop() error {
	r.mu.RLock()
	cancel, done := r.cancel, r.done
	r.mu.RUnlock()

	if done == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-time.After(r.cfg.StopTimeout):
		return fmt.Errorf("%s: timeout waiting for stop", r.name)
	}
}

// Done is closed when the runner stops for good: after Stop, after a clean
// exit, or after MaxRestarts failures. It is nil before Start.
func (r *RestartableRunner) Done() <-chan struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.done
}

// IsRunning returns true if the runner is currently running.
func (r *RestartableRunner) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

// Status returns the current state of the runner.
func (r *RestartableRunner) Status() RunnerStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return RunnerStatus{
		Name:         r.name,
		Running:      r.running,
		RestartCount: r.restartCount,
		LastError:    r.lastError,
	}
}

func (r *RestartableRunner) runLoop(ctx context.Context, done chan struct{}) {
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
		close(done)
	}()

	backoff := r.cfg.RestartBackoff

	for {
		err := r.runWithRecovery(ctx)

		r.mu.Lock()
		r.lastError = err
		r.mu.Unlock()

		if ctx.Err() != nil {
			log.Infof("%s: stopped", r.name)
			return
		}
		if err == nil {
			log.Infof("%s: exited cleanly", r.name)
			return
		}

		r.mu.Lock()
		r.restartCount++
		restartCount := r.restartCount
		r.mu.Unlock()

		if r.cfg.MaxRestarts > 0 && restartCount >= r.cfg.MaxRestarts {
			log.Errorf("%s: max restarts (%d) reached, giving up. Last error: %v", r.name, r.cfg.MaxRestarts, err)
			return
		}

		log.Errorf("%s: crashed with error: %v. Restarting in %v (restart #%d)", r.name, err, backoff, restartCount)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		backoff *= 2
		if backoff > r.cfg.MaxBackoff {
			backoff = r.cfg.MaxBackoff
		}
	}
}

// runWithRecovery runs the function and recovers from panics.
func (r *RestartableRunner) runWithRecovery(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v", recovered)
		}
	}()

	return r.runFunc(ctx)
}
