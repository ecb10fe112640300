package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/machi/internal/logging"
	"github.com/aretw0/machi/pkg/domain"
	"github.com/aretw0/machi/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock is held if the holder
// dies.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Resolution is what Start and Update return.
type Resolution struct {
	State   *domain.State     `json:"state"`
	Outcome *domain.Outcome   `json:"outcome"`
	Diff    *domain.StateDiff `json:"diff,omitempty"`
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// Per-session locks are reference counted and dropped when unused.
type Manager struct {
	store    ports.StateStore
	resolver ports.Resolver

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the TTL of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides the clock stamping UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a manager resolving sessions stored in store.
func NewManager(store ports.StateStore, resolver ports.Resolver, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		resolver: resolver,
		locks:    make(map[string]*lockEntry),
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu, and call release after unlocking it.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[sessionID]
	if !ok {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[sessionID]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock runs fn while holding the lock of the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("acquire distributed lock: %w", err)
		}
		defer func() {
			// the request context may be cancelled by now
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("failed to release distributed lock, it will expire",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Start creates the session with the initial context and resolves it. An
// existing session with the same ID is replaced.
func (m *Manager) Start(ctx context.Context, sessionID string, initial map[string]any) (*Resolution, error) {
	var res *Resolution
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state := domain.NewState(sessionID, initial)
		outcome, err := m.resolve(ctx, state, "")
		if err != nil {
			return err
		}
		if err := m.save(ctx, state); err != nil {
			return err
		}
		res = &Resolution{State: state, Outcome: outcome, Diff: domain.Diff(nil, state)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.logger.Debug("session started", "session_id", sessionID, "entry", res.Outcome.EntryID)
	return res, nil
}

// Get loads the session.
func (m *Manager) Get(ctx context.Context, sessionID string) (*domain.State, error) {
	var state *domain.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, sessionID)
		return err
	})
	return state, err
}

// Update merges patch into the session context and resolves the flow.
// Keys with a nil value are removed. current is the entry the caller is
// positioned on; when empty the stored CurrentEntryID is used.
func (m *Manager) Update(ctx context.Context, sessionID string, patch map[string]any, current string) (*Resolution, error) {
	var res *Resolution
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		old, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}

		next := old.Snapshot()
		for k, v := range patch {
			if v == nil {
				delete(next.Context, k)
				continue
			}
			next.Context[k] = v
		}
		if current == "" {
			current = old.CurrentEntryID
		}

		outcome, err := m.resolve(ctx, next, current)
		if err != nil {
			return err
		}
		if err := m.save(ctx, next); err != nil {
			return err
		}
		res = &Resolution{State: next, Outcome: outcome, Diff: domain.Diff(old, next)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.logger.Debug("session updated",
		"session_id", sessionID,
		"entry", res.Outcome.EntryID,
		"resumed", res.Outcome.Resumed,
		"done", res.Outcome.Done,
	)
	return res, nil
}

// Rewind positions the session on an entry of its history. The context is
// left untouched.
func (m *Manager) Rewind(ctx context.Context, sessionID, entryID string) (*domain.State, error) {
	var state *domain.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		loaded, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		if entryID == "" || (entryID != loaded.CurrentEntryID && !slices.Contains(loaded.History, entryID)) {
			return fmt.Errorf("rewind %q to %q: %w", sessionID, entryID, domain.ErrEntryNotInHistory)
		}

		loaded.CurrentEntryID = entryID
		loaded.Terminated = false
		if err := m.save(ctx, loaded); err != nil {
			return err
		}
		state = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.logger.Debug("session rewound", "session_id", sessionID, "entry", entryID)
	return state, nil
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

func (m *Manager) resolve(ctx context.Context, state *domain.State, current string) (*domain.Outcome, error) {
	outcome, err := m.resolver.Resolve(ctx, state.Context, current)
	if err != nil {
		var condErr *domain.ConditionError
		if errors.As(err, &condErr) {
			m.logger.Warn("condition failed", "session_id", state.SessionID, "condition", condErr.Condition, "err", condErr.Err)
		}
		return nil, fmt.Errorf("resolve session %q: %w", state.SessionID, err)
	}
	state.Apply(outcome)
	return outcome, nil
}

func (m *Manager) save(ctx context.Context, state *domain.State) error {
	state.UpdatedAt = m.now().UTC()
	if err := m.store.Save(ctx, state.SessionID, state); err != nil {
		return fmt.Errorf("save session %q: %w", state.SessionID, err)
	}
	return nil
}
