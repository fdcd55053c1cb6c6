// Package client is a Go client for the projecthub API that tracks whether
// the caller is signed in.
package client

import (
	"errors"
	"fmt"
	"sync"

	"projecthub/models"
)

// State is the sign-in state of a Session.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrInvalidTransition is returned when an action is not allowed in the
// session's current state.
var ErrInvalidTransition = errors.New("invalid session transition")

// Event names a session transition.
type Event string

const (
	EventRegister      Event = "register"
	EventLogin         Event = "login"
	EventLogout        Event = "logout"
	EventUpdateProfile Event = "update_profile"
)

// allowed lists the state each event may start from.
var allowed = map[Event]State{
	EventRegister:      Anonymous,
	EventLogin:         Anonymous,
	EventLogout:        Authenticated,
	EventUpdateProfile: Authenticated,
}

// Session is the client-side view of who is signed in. The zero value is an
// anonymous session.
type Session struct {
	mu    sync.RWMutex
	state State
	user  models.Profile
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns the signed-in user's profile.
func (s *Session) User() (models.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.state == Authenticated
}

// Can reports whether ev is allowed from the current state.
func (s *Session) Can(ev Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.can(ev)
}

func (s *Session) can(ev Event) error {
	from, ok := allowed[ev]
	if !ok {
		return fmt.Errorf("%w: unknown event %q", ErrInvalidTransition, ev)
	}
	if s.state != from {
		return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, ev, s.state)
	}
	return nil
}

// Login moves an anonymous session to Authenticated(user).
func (s *Session) Login(user models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.can(EventLogin); err != nil {
		return err
	}
	s.state = Authenticated
	s.user = user
	return nil
}

// Logout returns an authenticated session to Anonymous.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.can(EventLogout); err != nil {
		return err
	}
	s.state = Anonymous
	s.user = models.Profile{}
	return nil
}

// UpdateProfile replaces the signed-in user's profile.
func (s *Session) UpdateProfile(user models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.can(EventUpdateProfile); err != nil {
		return err
	}
	s.user = user
	return nil
}
