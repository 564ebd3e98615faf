package user

import (
	"context"
	"sync"
)

// Authenticator checks credentials. *Service implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (User, error)
}

// Session holds the signed-in user of one client and notifies observers when it changes.
type Session struct {
	auth Authenticator

	mu        sync.Mutex
	current   *User
	observers map[int]func(*User)
	nextObsID int
}

func NewSession(auth Authenticator) *Session {
	return &Session{auth: auth, observers: make(map[int]func(*User))}
}

// CurrentUser returns nil when nobody is signed in.
func (s *Session) CurrentUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Session) SignIn(ctx context.Context, email, password string) (User, error) {
	usr, err := s.auth.Authenticate(ctx, Credentials{Email: email, Password: password})
	if err != nil {
		return User{}, err
	}
	s.set(&usr)
	return usr, nil
}

// Resume signs usr in without checking credentials, e.g. from a verified token.
func (s *Session) Resume(usr User) {
	s.set(&usr)
}

func (s *Session) SignOut() {
	s.set(nil)
}

// OnUserChanged calls fn right away with the current user, then after every sign in and sign out.
// The returned func unsubscribes fn.
func (s *Session) OnUserChanged(fn func(usr *User)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	current := s.current
	s.mu.Unlock()

	fn(current)

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Session) set(usr *User) {
	s.mu.Lock()
	s.current = usr
	observers := make([]func(*User), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(usr)
	}
}
