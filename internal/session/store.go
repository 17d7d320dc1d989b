// Package session keeps authenticated user state in one explicit store
// instead of scattered globals. Interested components subscribe to changes.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/skillbridge-app/skillbridge-api/internal/models"
	"github.com/skillbridge-app/skillbridge-api/pkg/config"
)

// ProfileFetcher loads the profile linked to an auth identity.
type ProfileFetcher interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
}

// Session is the authenticated state for one user.
type Session struct {
	UserID    string
	Email     string
	Role      models.UserRole
	Profile   *models.Profile
	IssuedAt  time.Time
	UpdatedAt time.Time
}

// Listener is invoked on every session change for the subscribed user set.
type Listener func(Session)

// Store holds live sessions and notifies subscribers of changes.
type Store struct {
	fetcher ProfileFetcher
	retries int
	delay   time.Duration
	logger  *zap.Logger

	mu        sync.RWMutex
	sessions  map[string]Session
	listeners map[int]Listener
	nextID    int
}

// NewStore constructs a session store.
func NewStore(fetcher ProfileFetcher, cfg config.SessionConfig, logger *zap.Logger) *Store {
	retries := cfg.ProfileFetchRetries
	if retries <= 0 {
		retries = 5
	}
	delay := cfg.ProfileFetchDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		fetcher:   fetcher,
		retries:   retries,
		delay:     delay,
		logger:    logger,
		sessions:  map[string]Session{},
		listeners: map[int]Listener{},
	}
}

// SignIn records a new session. The profile arrives later via Rehydrate.
func (s *Store) SignIn(userID, email string, role models.UserRole) Session {
	now := time.Now().UTC()
	session := Session{UserID: userID, Email: email, Role: role, IssuedAt: now, UpdatedAt: now}

	s.mu.Lock()
	s.sessions[userID] = session
	listeners := s.listenerList()
	s.mu.Unlock()

	notify(listeners, session)
	return session
}

// SignOut drops the session and notifies subscribers with the cleared state.
func (s *Store) SignOut(userID string) {
	s.mu.Lock()
	session, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.sessions, userID)
	listeners := s.listenerList()
	s.mu.Unlock()

	session.Profile = nil
	session.UpdatedAt = time.Now().UTC()
	notify(listeners, session)
}

// Get returns the current session for a user.
func (s *Store) Get(userID string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	return session, ok
}

// Rehydrate loads the user's profile into the session, retrying while the
// profile row may not be visible yet (registration commits the profile just
// after the identity).
func (s *Store) Rehydrate(ctx context.Context, userID string) error {
	var lastErr error
	for attempt := 1; attempt <= s.retries; attempt++ {
		profile, err := s.fetcher.FindByID(ctx, userID)
		if err == nil {
			s.attachProfile(userID, profile)
			return nil
		}
		lastErr = err
		s.logger.Debug("profile rehydrate attempt failed",
			zap.String("user_id", userID),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt == s.retries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.delay):
		}
	}
	return fmt.Errorf("rehydrate profile for %s: %w", userID, lastErr)
}

// Subscribe registers a listener for session changes and returns its handle.
func (s *Store) Subscribe(listener Listener) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners[id] = listener
	return id
}

// Unsubscribe removes a previously registered listener.
func (s *Store) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listeners, id)
}

func (s *Store) attachProfile(userID string, profile *models.Profile) {
	s.mu.Lock()
	session, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return
	}
	session.Profile = profile
	session.UpdatedAt = time.Now().UTC()
	s.sessions[userID] = session
	listeners := s.listenerList()
	s.mu.Unlock()

	notify(listeners, session)
}

// listenerList copies listeners so notification happens outside the lock.
// Callers must hold s.mu.
func (s *Store) listenerList() []Listener {
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	return listeners
}

func notify(listeners []Listener, session Session) {
	for _, listener := range listeners {
		listener(session)
	}
}
