package tellersdk

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// ErrNoSession is returned by Session methods after Logout.
var ErrNoSession = errors.New("tellersdk: session has been logged out")

// Session performs requests on behalf of a signed-in user. Sessions are not
// refreshed; log in again after ExpiresAt.
type Session struct {
	client *SDKClient

	mu        sync.RWMutex
	token     string
	userID    string
	expiresAt time.Time
}

func newSession(c *SDKClient, resp *LoginResponse) *Session {
	s := &Session{client: c, token: resp.Token}
	if resp.User != nil {
		s.userID = resp.User.ID
	}
	if resp.ExpiresAt != nil {
		s.expiresAt = *resp.ExpiresAt
	}
	return s
}

// Token returns the raw session token.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// UserID returns the signed-in user's id, resolving it with CheckAuth when
// the session was built from a bare token.
func (s *Session) UserID(ctx context.Context) (string, error) {
	s.mu.RLock()
	id := s.userID
	s.mu.RUnlock()
	if id != "" {
		return id, nil
	}

	u, err := s.CheckAuth(ctx)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

// ExpiresAt returns when the session token expires, or the zero time if
// unknown.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

func (s *Session) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	token := s.Token()
	if token == "" {
		return nil, ErrNoSession
	}
	return s.client.doJSON(ctx, method, path, token, body, nil)
}

// CheckAuth returns the signed-in user.
func (s *Session) CheckAuth(ctx context.Context) (*UserResponse, error) {
	resp, err := s.do(ctx, http.MethodGet, "/api/auth/check-auth", nil)
	if err != nil {
		return nil, err
	}

	var u UserResponse
	if err := decodeJSON(resp, &u, http.StatusOK); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.userID = u.ID
	s.mu.Unlock()
	return &u, nil
}

// Logout revokes the session. The Session is unusable afterwards.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.do(ctx, http.MethodPost, "/api/auth/logout", nil)
	if err != nil {
		return err
	}
	if err := decodeJSON(resp, nil, http.StatusOK); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

// UpdateBalance applies a signed amount to one of the user's accounts. An
// empty UserID is filled with the session's user.
func (s *Session) UpdateBalance(ctx context.Context, req BalanceRequest) (*BalanceResponse, error) {
	if req.UserID == "" {
		id, err := s.UserID(ctx)
		if err != nil {
			return nil, err
		}
		req.UserID = id
	}

	resp, err := s.do(ctx, http.MethodPut, "/api/auth/balance", req)
	if err != nil {
		return nil, err
	}

	var out BalanceResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBalances returns both of the user's accounts.
func (s *Session) GetBalances(ctx context.Context) (*BalancesResponse, error) {
	resp, err := s.do(ctx, http.MethodGet, "/api/auth/balance", nil)
	if err != nil {
		return nil, err
	}

	var out BalancesResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTransactions returns the user's transactions, newest first.
func (s *Session) ListTransactions(ctx context.Context) (*TransactionsResponse, error) {
	id, err := s.UserID(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.do(ctx, http.MethodGet, "/api/auth/transactions/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var out TransactionsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
