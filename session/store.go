package session

import (
	"fmt"
	"sync"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/whwar9739/WhiskeyTracker/storage"
)

// State is the session lifecycle position. A store starts Initializing and
// leaves it exactly once, when Restore runs; afterwards it moves between
// Authenticated and Unauthenticated via login and logout.
type State uint8

const (
	StateInitializing State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Snapshot is the value published to consumers on every transition. User and
// Token are either both set or both empty.
type Snapshot struct {
	State State
	User  UserRecord
	Token string
}

// Store owns the current session pair and mirrors every transition into the
// persistence port. It is safe for concurrent reads; mutation happens on the
// single interaction path.
type Store struct {
	mu       sync.RWMutex
	storage  storage.Port
	tokenKey string
	userKey  string
	logger   glog.Logger

	state State
	user  UserRecord
	token string
}

func NewStore(port storage.Port, tokenKey, userKey string, logger glog.Logger) *Store {
	return &Store{
		storage:  port,
		tokenKey: tokenKey,
		userKey:  userKey,
		logger:   glog.Ensure(logger),
		state:    StateInitializing,
	}
}

// Restore reconstructs the session from persisted state. Both entries
// present and parseable yields Authenticated; either missing yields
// Unauthenticated; present but unparseable is corruption, which removes both
// entries and yields Unauthenticated. Corruption is never an error here: the
// observable outcome is simply "not logged in".
func (s *Store) Restore() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, tokenOK := s.storage.Get(s.tokenKey)
	rawUser, userOK := s.storage.Get(s.userKey)

	if !tokenOK || !userOK {
		s.state = StateUnauthenticated
		s.user = nil
		s.token = ""
		return s.snapshotLocked()
	}

	user, err := ParseUserRecord(rawUser)
	if err != nil {
		s.logger.Debug("discarding corrupt persisted session", "error", err.Error())
		s.storage.Remove(s.tokenKey)
		s.storage.Remove(s.userKey)
		s.state = StateUnauthenticated
		s.user = nil
		s.token = ""
		return s.snapshotLocked()
	}

	s.state = StateAuthenticated
	s.user = user
	s.token = token
	return s.snapshotLocked()
}

// SetSession commits a verified (user, token) pair: both entries are written
// to the port and the store transitions to Authenticated. On encode failure
// nothing changes.
func (s *Store) SetSession(user UserRecord, token string) (Snapshot, error) {
	if user == nil || token == "" {
		return s.Snapshot(), fmt.Errorf("session: user and token are both required")
	}
	encoded, err := user.Encode()
	if err != nil {
		return s.Snapshot(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage.Set(s.tokenKey, token)
	s.storage.Set(s.userKey, encoded)
	s.state = StateAuthenticated
	s.user = user.Clone()
	s.token = token
	return s.snapshotLocked(), nil
}

// ClearSession removes both entries and transitions to Unauthenticated.
func (s *Store) ClearSession() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage.Remove(s.tokenKey)
	s.storage.Remove(s.userKey)
	s.state = StateUnauthenticated
	s.user = nil
	s.token = ""
	return s.snapshotLocked()
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateAuthenticated
}

// Initializing reports whether Restore has not completed yet. Consumers must
// treat this as "undetermined", never as "unauthenticated".
func (s *Store) Initializing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateInitializing
}

// CurrentToken returns the bearer token only while Authenticated.
func (s *Store) CurrentToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateAuthenticated {
		return "", false
	}
	return s.token, true
}

func (s *Store) CurrentUser() (UserRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateAuthenticated {
		return nil, false
	}
	return s.user.Clone(), true
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		State: s.state,
		User:  s.user.Clone(),
		Token: s.token,
	}
}
