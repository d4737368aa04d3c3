// Package authclient talks to the portal server over HTTP. It satisfies the
// session package's Authority and RoleStore contracts so a session.Manager
// can run in a separate process from the authority.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Ayu-zh/placement-connector/internal/api/apierr"
	"github.com/Ayu-zh/placement-connector/internal/model"
	"github.com/Ayu-zh/placement-connector/internal/session"
)

// TokenFunc supplies the bearer token for calls that do not carry one
// explicitly. session.Manager.Token is the usual source.
type TokenFunc func() string

// Error is an error response from the server. It unwraps to the model or
// session sentinel its code stands for.
type Error struct {
	Status  int
	Code    string
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

func (e *Error) Unwrap() error {
	return e.err
}

// Client is an HTTP client for the portal API
type Client struct {
	baseURL    string
	token      TokenFunc
	httpClient *http.Client
	// streamClient has no overall timeout so event streams stay open
	streamClient *http.Client
}

// Ensure Client satisfies the session contracts
var (
	_ session.Authority = (*Client)(nil)
	_ session.RoleStore = (*Client)(nil)
)

// New creates a new API client. token may be nil.
func New(baseURL string, token TokenFunc) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		streamClient: &http.Client{},
	}
}

// tokenFor prefers a token attached to ctx over the client's token source
func (c *Client) tokenFor(ctx context.Context) string {
	if token := session.TokenFromContext(ctx); token != "" {
		return token
	}
	return c.token()
}

// do performs a JSON request. Transport failures and server errors wrap
// session.ErrAuthorityUnavailable; error responses with a known code wrap
// the matching sentinel.
func (c *Client) do(ctx context.Context, method, path, token string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %w", session.ErrAuthorityUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", session.ErrAuthorityUnavailable, err)
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: failed to parse response: %w", session.ErrAuthorityUnavailable, err)
		}
	}
	return nil
}

func decodeError(status int, body []byte) error {
	e := &Error{Status: status, Message: strings.TrimSpace(string(body))}

	var errResp apierr.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Code != "" {
		e.Code = errResp.Error.Code
		e.Message = errResp.Error.Message
		e.err = apierr.Sentinel(e.Code)
	}
	if e.err == nil && status >= 500 {
		e.err = session.ErrAuthorityUnavailable
	}
	return e
}

// SignIn verifies credentials and returns the authority's grant
func (c *Client) SignIn(ctx context.Context, email, password string) (*model.Grant, error) {
	var grant model.Grant
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", "", body, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

// SignOut revokes token. The server treats unknown tokens as a no-op.
func (c *Client) SignOut(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/auth/logout", token, nil, nil)
}

// Resume validates token and returns its current grant
func (c *Client) Resume(ctx context.Context, token string) (*model.Grant, error) {
	var grant model.Grant
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/session", token, nil, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

// Refresh extends the session behind token and returns a new grant
func (c *Client) Refresh(ctx context.Context, token string) (*model.Grant, error) {
	var grant model.Grant
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", token, nil, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

// LookupIdentity reads an identity's role and verification from the server
func (c *Client) LookupIdentity(ctx context.Context, id model.IdentityID) (*model.Identity, error) {
	var identity model.Identity
	path := "/api/v1/identities/" + url.PathEscape(string(id))
	if err := c.do(ctx, http.MethodGet, path, c.tokenFor(ctx), nil, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}
