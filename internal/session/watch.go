package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Ayu-zh/placement-connector/internal/model"
)

// Start acquires the Manager's one event subscription. Events from the
// authority are applied until Close is called or ctx ends. Start may be
// called once.
func (m *Manager) Start(ctx context.Context) error {
	m.lifecycleMu.Lock()
	defer m.lifecycleMu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.started {
		return ErrAlreadyStarted
	}
	m.started = true

	ctx, m.cancel = context.WithCancel(ctx)
	m.wg.Add(1)
	go m.run(ctx)
	return nil
}

// Close releases the event subscription and waits for the watcher to exit.
// The bound session and its persisted token are kept. Safe to call more
// than once.
func (m *Manager) Close() error {
	m.lifecycleMu.Lock()
	if m.closed {
		m.lifecycleMu.Unlock()
		return nil
	}
	m.closed = true
	cancel := m.cancel
	m.lifecycleMu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
	return nil
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()
	m.logger.Debug("session watcher started")
	defer m.logger.Debug("session watcher stopped")

	for ctx.Err() == nil {
		b := m.snapshot()
		if b == nil {
			m.wait(ctx, 0)
			continue
		}
		m.follow(ctx, b)
	}
}

// wait blocks until the binding changes, d elapses (when positive) or ctx ends
func (m *Manager) wait(ctx context.Context, d time.Duration) {
	var timeout <-chan time.Time
	if d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case <-ctx.Done():
	case <-m.wake:
	case <-timeout:
	}
}

// follow holds a subscription for binding b until another session is bound,
// the stream ends or ctx is done
func (m *Manager) follow(ctx context.Context, b *binding) {
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := m.authority.Watch(subCtx, b.token)
	if err != nil {
		if errors.Is(err, model.ErrInvalidSession) {
			// Ended before the subscription was in place
			m.clearIf(ctx, sameSession(b.session), model.ReasonRevoked, false)
			return
		}
		m.logger.Warn("event subscription failed", slog.String("error", err.Error()))
		m.wait(ctx, m.retry)
		return
	}
	m.logger.Debug("event subscription attached", slog.String("session_id", string(b.session)))

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.wake:
			if cur := m.snapshot(); cur == nil || cur.session != b.session {
				return
			}
		case ev, ok := <-events:
			if !ok {
				m.logger.Debug("event stream ended", slog.String("session_id", string(b.session)))
				m.wait(ctx, m.retry)
				return
			}
			m.apply(ctx, ev)
		}
	}
}

// apply overwrites local state with what the authority reported
func (m *Manager) apply(ctx context.Context, ev model.SessionEvent) {
	switch ev.Type {
	case model.EventSignedOut:
		reason := ev.Reason
		if reason == "" {
			reason = model.ReasonRevoked
		}
		m.clearIf(ctx, sameSession(ev.SessionID), reason, false)

	case model.EventTokenRefreshed:
		if ev.Token == "" {
			return
		}
		m.mu.Lock()
		cur := m.current
		if cur == nil || cur.session != ev.SessionID {
			m.mu.Unlock()
			return
		}
		next := *cur
		next.token = ev.Token
		m.current = &next
		m.mu.Unlock()

		m.persist()
		m.notify(Change{State: StateAuthenticated, Identity: next.identity.Clone(), Reason: ReasonTokenRefreshed})

	case model.EventIdentityUpdated:
		if cur := m.snapshot(); cur == nil || cur.identity.ID != ev.IdentityID {
			return
		}
		if err := m.Refresh(ctx); err != nil {
			m.logger.Warn("identity change not applied", slog.String("error", err.Error()))
		}

	default:
		m.logger.Debug("event ignored", slog.String("event", string(ev.Type)))
	}
}

func sameSession(id model.SessionID) func(*binding) bool {
	return func(b *binding) bool { return b.session == id }
}
