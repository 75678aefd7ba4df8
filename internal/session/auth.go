package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	dasherrors "github.com/abatilo/dash/internal/errors"
	"github.com/abatilo/dash/internal/remote"
)

// Authenticator exchanges account credentials for a session.
type Authenticator struct {
	client *remote.Client
	now    func() time.Time
}

// NewAuthenticator creates an Authenticator that talks to the API behind c.
// c should carry no credentials.
func NewAuthenticator(c *remote.Client) *Authenticator {
	return &Authenticator{client: c, now: time.Now}
}

type authResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// Login signs in an existing account.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*Session, error) {
	if err := requireField("email", email); err != nil {
		return nil, err
	}
	if err := requireField("password", password); err != nil {
		return nil, err
	}
	body := map[string]string{"email": email, "password": password}
	return a.exchange(ctx, "login", "/auth/login", body)
}

// Register creates an account and signs in to it.
func (a *Authenticator) Register(ctx context.Context, email, password, fullName string) (*Session, error) {
	if err := requireField("email", email); err != nil {
		return nil, err
	}
	if err := requireField("password", password); err != nil {
		return nil, err
	}
	if err := requireField("full_name", fullName); err != nil {
		return nil, err
	}
	body := map[string]string{"email": email, "password": password, "full_name": fullName}
	return a.exchange(ctx, "register", "/auth/register", body)
}

func (a *Authenticator) exchange(ctx context.Context, op, path string, body any) (*Session, error) {
	var resp authResponse
	if err := a.client.Do(ctx, op, http.MethodPost, path, body, &resp); err != nil {
		// No bearer credential is sent here, so a 401 rejects the account
		// details rather than a session.
		var re dasherrors.RemoteError
		if errors.As(err, &re) && (re.StatusCode == http.StatusBadRequest || re.StatusCode == http.StatusUnauthorized) {
			reason := re.Message
			if reason == "" {
				reason = "credentials rejected"
			}
			return nil, dasherrors.ValidationError{Field: "account", Reason: reason}
		}
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, dasherrors.RemoteError{Op: op, Message: "response carried no access token"}
	}

	return &Session{
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
		User:        resp.User,
		APIURL:      a.client.BaseURL(),
		SavedAt:     a.now().UTC(),
	}, nil
}

func requireField(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return dasherrors.ValidationError{Field: name, Reason: "must not be empty"}
	}
	return nil
}
