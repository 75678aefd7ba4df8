package session

import (
	"os"
	"sync"
	"time"

	dasherrors "github.com/abatilo/dash/internal/errors"
	"github.com/abatilo/dash/internal/remote"
)

// Gate decides whether remote operations may run. It owns the session file for
// one API endpoint and is the only thing that removes it.
type Gate struct {
	basePath string
	now      func() time.Time

	mu      sync.Mutex
	current *Session
}

// NewGate creates a Gate over the session stored under basePath.
func NewGate(basePath string) *Gate {
	return &Gate{basePath: basePath, now: time.Now}
}

// Session returns the stored session, or NotLoggedInError when there is none.
func (g *Gate) Session() (*Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.load()
}

func (g *Gate) load() (*Session, error) {
	if g.current != nil {
		return g.current, nil
	}
	s, err := Load(g.basePath)
	if os.IsNotExist(err) {
		return nil, dasherrors.NotLoggedInError{}
	}
	if err != nil {
		return nil, err
	}
	g.current = s
	return s, nil
}

// Credentials returns the bearer credential for remote calls. An expired token
// is discarded and reported as SessionInvalidError.
func (g *Gate) Credentials() (remote.Credentials, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, err := g.load()
	if err != nil {
		return remote.Credentials{}, err
	}
	if s.Expired(g.now()) {
		if err = g.invalidate(); err != nil {
			return remote.Credentials{}, err
		}
		return remote.Credentials{}, dasherrors.SessionInvalidError{Op: "credentials"}
	}
	return remote.Credentials{AccessToken: s.AccessToken, TokenType: s.TokenType}, nil
}

// Store persists s as the current session.
func (g *Gate) Store(s *Session) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := Save(g.basePath, s); err != nil {
		return err
	}
	g.current = s
	return nil
}

// Invalidate forgets the session. It is the logout path and runs whenever the
// API rejects the credential.
func (g *Gate) Invalidate() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.invalidate()
}

func (g *Gate) invalidate() error {
	g.current = nil
	return Delete(g.basePath)
}
