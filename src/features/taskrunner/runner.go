// Package taskrunner starts the watch sessions together and stops them together.
package taskrunner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// State of a Runner.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var ErrNotIdle = errors.New("runner already started")

// Session is an independent background watch delivering events on its own goroutine.
type Session interface {
	Name() string
	Start(ctx context.Context) error
	Stop()
	Wait()
}

// Runner owns a set of sessions.
type Runner struct {
	mu       sync.Mutex
	state    State
	sessions []Session
	started  []Session
	stopped  chan struct{}
}

// New creates an idle runner over sessions.
func New(sessions ...Session) *Runner {
	return &Runner{
		sessions: sessions,
		stopped:  make(chan struct{}),
	}
}

// State returns the current state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start starts every session. If one fails, those already started are stopped
// and the runner ends up stopped.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		return ErrNotIdle
	}

	for _, session := range r.sessions {
		if err := session.Start(ctx); err != nil {
			started := r.started
			r.state = StateStopping
			r.mu.Unlock()

			slog.Error("Failed to start session", "session", session.Name(), "error", err)
			r.shutdown(started)
			return fmt.Errorf("failed to start %s session: %w", session.Name(), err)
		}
		r.started = append(r.started, session)
	}

	r.state = StateRunning
	r.mu.Unlock()

	slog.Info("Task runner started", "sessions", len(r.sessions))
	return nil
}

// Stop asks every session to stop and returns once all of them have terminated.
// Concurrent or repeated calls wait for the same shutdown.
func (r *Runner) Stop() {
	r.mu.Lock()
	switch r.state {
	case StateIdle:
		r.state = StateStopped
		close(r.stopped)
		r.mu.Unlock()
		return
	case StateStopping, StateStopped:
		r.mu.Unlock()
		<-r.stopped
		return
	}
	r.state = StateStopping
	started := r.started
	r.mu.Unlock()

	slog.Info("Stopping task runner", "sessions", len(started))
	r.shutdown(started)
}

// Done is closed once the runner is stopped.
func (r *Runner) Done() <-chan struct{} {
	return r.stopped
}

func (r *Runner) shutdown(sessions []Session) {
	for _, session := range sessions {
		session.Stop()
	}
	for _, session := range sessions {
		session.Wait()
		slog.Debug("Session terminated", "session", session.Name())
	}

	r.mu.Lock()
	r.state = StateStopped
	r.mu.Unlock()
	close(r.stopped)
}
