package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/influxship/pkg/log"
)

// Common lifecycle errors.
var (
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrShutdownTimeout   = errors.New("shutdown timeout")
)

// ShutdownTimeout is the default bound on waiting for workers, which
// includes the final flush.
const ShutdownTimeout = 30 * time.Second

// State is the lifecycle state of a long-running command.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

var transitions = map[State][]State{
	StateStopped:  {StateStarting},
	StateStarting: {StateRunning, StateCrashed},
	StateRunning:  {StateStopping, StateCrashed},
	StateStopping: {StateStopped, StateCrashed},
	StateCrashed:  {StateStarting},
}

// Manager tracks the state of a command and the goroutines it runs.
type Manager struct {
	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger log.Logger
}

// NewManager returns a stopped manager.
func NewManager(logger log.Logger) *Manager {
	return &Manager{logger: log.OrNoop(logger)}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// TransitionTo moves to next if the state machine allows it.
func (m *Manager) TransitionTo(next State, reason string) error {
	m.mu.Lock()
	prev := m.state
	allowed := false
	for _, s := range transitions[prev] {
		if s == next {
			allowed = true
			break
		}
	}
	if !allowed {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, prev, next)
	}
	m.state = next
	m.mu.Unlock()

	m.logger.Debug("state transition",
		log.String("from", prev.String()),
		log.String("to", next.String()),
		log.String("reason", reason),
	)
	return nil
}

// Start derives a cancellable context for the workers and enters Running.
func (m *Manager) Start(ctx context.Context) (context.Context, error) {
	if err := m.TransitionTo(StateStarting, "start"); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.cancel = cancel
	m.mu.Unlock()
	if err := m.TransitionTo(StateRunning, "started"); err != nil {
		cancel()
		return nil, err
	}
	return ctx, nil
}

// Go runs fn as a tracked worker.
func (m *Manager) Go(fn func()) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		fn()
	}()
}

// Cancel cancels the context returned by Start.
func (m *Manager) Cancel() {
	m.mu.Lock()
	cancel := m.cancel
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Stop cancels the workers and waits up to timeout for them. The manager
// ends in Stopped, or in Crashed when the wait timed out.
func (m *Manager) Stop(timeout time.Duration) error {
	if err := m.TransitionTo(StateStopping, "stop"); err != nil {
		return err
	}
	m.Cancel()
	if err := m.WaitWithTimeout(timeout); err != nil {
		_ = m.TransitionTo(StateCrashed, err.Error())
		return err
	}
	return m.TransitionTo(StateStopped, "workers done")
}

// WaitWithTimeout waits for all workers started with Go.
func (m *Manager) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-done:
		return nil
	case <-t.C:
		m.logger.Warn("shutdown timeout, workers still running", log.Duration("timeout", timeout))
		return ErrShutdownTimeout
	}
}
