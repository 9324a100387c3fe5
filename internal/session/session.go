// Package session holds the client's logged-in state. Login and logout go
// through Store directly and reach every subscriber immediately; Sync
// re-reads the persisted flag to pick up writes made by other processes.
package session

import (
	"context"
	"fmt"
	gosync "sync"

	log "github.com/sirupsen/logrus"
)

// Change is delivered to subscribers whenever the logged-in state flips.
type Change struct {
	LoggedIn bool
}

// subscriberBuffer is the number of undelivered changes kept per subscriber.
const subscriberBuffer = 4

// Store is the single source of truth for the session state.
type Store struct {
	flags FlagStore

	// opMu serializes flag reads and writes with the state update that
	// follows them, so a Sync cannot apply a value read before a Login or
	// Logout that finished in between.
	opMu gosync.Mutex

	mu       gosync.Mutex
	loggedIn bool
	subs     map[int]chan Change
	nextID   int
}

// New creates a Store over the given flag persistence. The initial state
// is logged out until Load or Sync is called.
func New(flags FlagStore) *Store {
	return &Store{
		flags: flags,
		subs:  make(map[int]chan Change),
	}
}

// Load reads the persisted flag once. A missing flag means logged out.
func (s *Store) Load(ctx context.Context) error {
	_, err := s.Sync(ctx)
	return err
}

// LoggedIn reports the current session state.
func (s *Store) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn
}

// Login persists the flag and marks the session logged in.
func (s *Store) Login(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.flags.Set(ctx, loggedInValue); err != nil {
		return fmt.Errorf("persisting session flag: %w", err)
	}
	s.set(true)
	return nil
}

// Logout clears the persisted flag and marks the session logged out. The
// in-memory state is reset even when clearing the flag fails.
func (s *Store) Logout(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	err := s.flags.Delete(ctx)
	s.set(false)
	if err != nil {
		return fmt.Errorf("clearing session flag: %w", err)
	}
	return nil
}

// Sync re-reads the persisted flag and updates the state if it differs.
// It reports whether the state changed.
func (s *Store) Sync(ctx context.Context) (bool, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	value, ok, err := s.flags.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("reading session flag: %w", err)
	}
	return s.set(ok && value == loggedInValue), nil
}

// Subscribe registers for state changes. The returned function
// unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan Change, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Change, subscriberBuffer)
	s.subs[id] = ch

	var once gosync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// set updates the state and notifies subscribers. It returns true when the
// state actually changed.
func (s *Store) set(loggedIn bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loggedIn == loggedIn {
		return false
	}
	s.loggedIn = loggedIn
	log.Debugf("session: logged in = %t", loggedIn)

	change := Change{LoggedIn: loggedIn}
	for _, ch := range s.subs {
		publish(ch, change)
	}
	return true
}

// publish delivers c without blocking, discarding the oldest pending
// change when the subscriber is behind.
func publish(ch chan Change, c Change) {
	for {
		select {
		case ch <- c:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
