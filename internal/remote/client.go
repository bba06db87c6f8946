// Package remote is the HTTP client for the remote user service.  Once a
// token is installed every request carries it as a bearer credential.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/pos-backoffice/internal/model"
)

// APIError is returned for any non-2xx response.  Message holds the
// provider's message when the body carried one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote: status %d", e.Status)
	}
	return fmt.Sprintf("remote: status %d: %s", e.Status, e.Message)
}

// Client talks to the user service under BaseURL.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// New returns a client for baseURL.  A zero timeout means no limit.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetAuthToken attaches token to every following request.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearAuthToken stops sending a bearer credential.
func (c *Client) ClearAuthToken() { c.SetAuthToken("") }

// AuthToken returns the installed token, or "".
func (c *Client) AuthToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) Login(ctx context.Context, creds model.Credentials) (model.LoginResult, error) {
	var out model.LoginResult
	err := c.do(ctx, http.MethodPost, "/users/login", creds, &out)
	return out, err
}

func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var out []model.User
	err := c.do(ctx, http.MethodGet, "/users", nil, &out)
	return out, err
}

func (c *Client) GetUser(ctx context.Context, id int64) (model.User, error) {
	var out model.User
	err := c.do(ctx, http.MethodGet, "/users/"+strconv.FormatInt(id, 10), nil, &out)
	return out, err
}

func (c *Client) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	var out model.User
	err := c.do(ctx, http.MethodGet, "/users/username/"+url.PathEscape(username), nil, &out)
	return out, err
}

func (c *Client) UsersByRole(ctx context.Context, role string) ([]model.User, error) {
	var out []model.User
	err := c.do(ctx, http.MethodGet, "/users/role/"+url.PathEscape(role), nil, &out)
	return out, err
}

func (c *Client) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	var out model.User
	err := c.do(ctx, http.MethodPost, "/users", u, &out)
	return out, err
}

func (c *Client) UpdateUser(ctx context.Context, id int64, u model.User) (model.User, error) {
	var out model.User
	err := c.do(ctx, http.MethodPut, "/users/"+strconv.FormatInt(id, 10), u, &out)
	return out, err
}

// DeactivateUser disables an account; the service keeps the record.
func (c *Client) DeactivateUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/users/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		bs, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(bs)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.AuthToken(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: providerMessage(resp.Body)}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// providerMessage pulls "message" (or "error") out of an error body.
func providerMessage(r io.Reader) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
