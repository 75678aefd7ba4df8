package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionFile = "session.json"

// User is the account a session belongs to.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// Session is a stored login for one API endpoint.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	User        User      `json:"user"`
	APIURL      string    `json:"api_url"`
	SavedAt     time.Time `json:"saved_at"`
}

// TokenClaims is what the API encodes in its access tokens.
type TokenClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Claims decodes the access token payload. The signature is not checked: the
// client cannot know the signing key and the server verifies every request.
func Claims(token string) (*TokenClaims, error) {
	var c TokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Expired reports whether the access token carries an expiry at or before now.
// A token that cannot be decoded is left for the server to judge.
func (s *Session) Expired(now time.Time) bool {
	c, err := Claims(s.AccessToken)
	if err != nil || c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}

// sessionPath returns the full path to session.json for the given base path.
func sessionPath(basePath string) string {
	return filepath.Join(basePath, sessionFile)
}

// Exists checks if a session file exists.
func Exists(basePath string) bool {
	_, err := os.Stat(sessionPath(basePath))
	return err == nil
}

// Load reads the session from disk.
func Load(basePath string) (*Session, error) {
	data, err := os.ReadFile(sessionPath(basePath))
	if err != nil {
		return nil, err
	}

	var s Session
	if unmarshalErr := json.Unmarshal(data, &s); unmarshalErr != nil {
		return nil, unmarshalErr
	}

	return &s, nil
}

// Save writes the session to disk. The file holds a bearer token, so only the
// owner may read it.
func Save(basePath string, s *Session) error {
	if mkdirErr := os.MkdirAll(basePath, 0o700); mkdirErr != nil {
		return mkdirErr
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(sessionPath(basePath), data, 0o600)
}

// Delete removes the session file.
func Delete(basePath string) error {
	err := os.Remove(sessionPath(basePath))
	if os.IsNotExist(err) {
		return nil // Already deleted, not an error
	}
	return err
}
