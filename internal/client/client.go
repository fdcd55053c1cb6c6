package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"projecthub/internal/service"
	"projecthub/models"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
	Code    string
	Details []string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

// Client calls the API with a cookie jar holding the session token and keeps
// a Session in step with the server.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	session *Session
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithTransport replaces the HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.http.Transport = rt }
}

// New returns an anonymous client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Jar: jar, Timeout: 10 * time.Second},
		session: &Session{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Session returns the client's session state.
func (c *Client) Session() *Session {
	return c.session
}

// Register creates an account. The session stays anonymous; call Login to
// sign in.
func (c *Client) Register(ctx context.Context, in service.SignupInput) error {
	if err := c.session.Can(EventRegister); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/userSignup", in, nil)
}

// Login signs in, then loads the caller's profile into the session.
func (c *Client) Login(ctx context.Context, in service.SigninInput) (models.Profile, error) {
	if err := c.session.Can(EventLogin); err != nil {
		return models.Profile{}, err
	}
	if err := c.do(ctx, http.MethodPost, "/api/userSignin", in, nil); err != nil {
		return models.Profile{}, err
	}

	var profile models.Profile
	if err := c.do(ctx, http.MethodGet, "/api/dashboardProfile", nil, &profile); err != nil {
		return models.Profile{}, err
	}
	if err := c.session.Login(profile); err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

// Logout clears the session cookie and returns the session to Anonymous.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.session.Can(EventLogout); err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodPost, "/api/userLogout", nil, nil); err != nil {
		return err
	}
	return c.session.Logout()
}

// UpdateProfile changes the signed-in user's profile and stores the result.
func (c *Client) UpdateProfile(ctx context.Context, in service.UpdateProfileInput) (models.Profile, error) {
	if err := c.session.Can(EventUpdateProfile); err != nil {
		return models.Profile{}, err
	}

	var out struct {
		User models.Profile `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/updateProfile", in, &out); err != nil {
		return models.Profile{}, err
	}
	if err := c.session.UpdateProfile(out.User); err != nil {
		return models.Profile{}, err
	}
	return out.User, nil
}

// UsernameAvailable asks whether username is free.
func (c *Client) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	path := "/api/usernameCheck?username=" + url.QueryEscape(username)
	err := c.do(ctx, http.MethodGet, path, nil, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == models.CodeConflict {
		return false, nil
	}
	return err == nil, err
}

// CreateProject creates a project owned by the signed-in user.
func (c *Client) CreateProject(ctx context.Context, in service.CreateProjectInput) (*models.Project, error) {
	var p models.Project
	if err := c.do(ctx, http.MethodPost, "/api/createProject", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Project fetches owner/name.
func (c *Client) Project(ctx context.Context, owner, name string) (*models.Project, error) {
	var p models.Project
	path := "/api/project/" + url.PathEscape(owner) + "/" + url.PathEscape(name)
	if err := c.do(ctx, http.MethodGet, path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		var e models.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{Status: resp.StatusCode, Message: e.Error, Code: e.Code, Details: e.Details}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
