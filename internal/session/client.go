// Package session is the client-side counterpart of the auth service: it
// holds the current token, attaches it to requests, and reacts to
// verification failure by dropping the cached session.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/bookstore-service/internal/domain"
)

// Client-facing failure messages. Raw backend error text for credential
// failures is never surfaced.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionExpired     = errors.New("session expired, please sign in again")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// Client talks to the auth endpoints and keeps local custody of the token.
type Client struct {
	baseURL string
	http    *http.Client
	store   TokenStore

	mu    sync.RWMutex
	token string
	user  *domain.UserView
}

// NewClient builds a session client against the API base URL.
func NewClient(baseURL string, store TokenStore) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		store:   store,
	}
}

// Load restores a cached session. A cached token is verified exactly once;
// on any failure it is discarded and the client stays unauthenticated. A nil
// user with a nil error means "no session".
func (c *Client) Load(ctx context.Context) (*domain.UserView, error) {
	token, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}

	view, err := c.verify(ctx, token)
	if err != nil {
		_ = c.store.Clear()
		c.setSession("", nil)
		return nil, nil
	}

	c.setSession(token, view)
	return view, nil
}

// SignUp registers a new account and persists the returned token.
func (c *Client) SignUp(ctx context.Context, email, password, fullName string) (*domain.UserView, error) {
	return c.authenticate(ctx, "/api/auth/signup", map[string]string{
		"email":    email,
		"password": password,
		"fullName": fullName,
	})
}

// SignIn authenticates and persists the returned token.
func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.UserView, error) {
	return c.authenticate(ctx, "/api/auth/signin", map[string]string{
		"email":    email,
		"password": password,
	})
}

// SignOut discards the token and clears local user state. Purely local: the
// token stays valid server-side until natural expiry.
func (c *Client) SignOut() error {
	c.setSession("", nil)
	return c.store.Clear()
}

// CurrentUser returns the locally cached user view, or nil when signed out.
func (c *Client) CurrentUser() *domain.UserView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// Token returns the current session token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// AttachAuth sets the Authorization header on an outgoing request.
func (c *Client) AttachAuth(req *http.Request) error {
	token := c.Token()
	if token == "" {
		return ErrNotAuthenticated
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func (c *Client) authenticate(ctx context.Context, path string, body map[string]string) (*domain.UserView, error) {
	var result struct {
		User  domain.UserView `json:"user"`
		Token string          `json:"token"`
	}
	if err := c.post(ctx, path, body, &result); err != nil {
		return nil, err
	}

	if err := c.store.Save(result.Token); err != nil {
		return nil, err
	}
	c.setSession(result.Token, &result.User)
	return &result.User, nil
}

func (c *Client) verify(ctx context.Context, token string) (*domain.UserView, error) {
	var view domain.UserView
	if err := c.post(ctx, "/api/auth/verify", map[string]string{"token": token}, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return mapAPIError(resp.StatusCode, respBody)
	}
	return json.Unmarshal(respBody, out)
}

func (c *Client) setSession(token string, user *domain.UserView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.user = user
}

func mapAPIError(status int, body []byte) error {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(body, &envelope)

	switch envelope.Error.Code {
	case "INVALID_CREDENTIALS":
		return ErrInvalidCredentials
	case "UNAUTHORIZED":
		return ErrSessionExpired
	}
	if envelope.Error.Message != "" {
		return errors.New(envelope.Error.Message)
	}
	return fmt.Errorf("request failed with status %d", status)
}
