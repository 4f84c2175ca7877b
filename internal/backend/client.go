package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is a typed REST client for the store-rating backend. It attaches
// the bearer token when one is supplied and normalizes every non-2xx
// response into a single *Error. It performs no retries: a failed call
// surfaces immediately to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a backend client for the given base URL. The timeout is a
// transport-level ceiling on a single call; failed calls are never retried.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		logger: logger,
	}
}

// do executes a single backend call. body (if non-nil) is JSON-encoded;
// out (if non-nil) receives the decoded JSON response. An empty success
// body leaves out untouched, mirroring a JSON-less 204-style response.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return &Error{Message: "backend is unreachable, please try again"}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseError(resp)
	}

	if out == nil {
		return nil
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// Login exchanges credentials for a token and the embedded user.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", creds, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Register creates an account and returns a token and the embedded user.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CurrentUser resolves the token to its user. This is the sole authority
// for "who is logged in"; the result is never cached across requests.
func (c *Client) CurrentUser(ctx context.Context, token string) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/api/users/me", token, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListStores lists stores filtered server-side by q. A limit of zero
// leaves the page size to the backend.
func (c *Client) ListStores(ctx context.Context, token, q string, limit int) (*StoreList, error) {
	params := url.Values{}
	if q != "" {
		params.Set("q", q)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/stores"
	if enc := params.Encode(); enc != "" {
		path += "?" + enc
	}

	var list StoreList
	if err := c.do(ctx, http.MethodGet, path, token, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetStore fetches a single store by id.
func (c *Client) GetStore(ctx context.Context, token string, id int64) (*Store, error) {
	var s Store
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/stores/%d", id), token, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateStore creates a store listing (owner/admin only, enforced by the backend).
func (c *Client) CreateStore(ctx context.Context, token string, in StoreInput) (*Store, error) {
	var s Store
	if err := c.do(ctx, http.MethodPost, "/api/stores", token, in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateStore patches a store listing.
func (c *Client) UpdateStore(ctx context.Context, token string, id int64, in StoreInput) (*Store, error) {
	var s Store
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/stores/%d", id), token, in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteStore removes a store listing.
func (c *Client) DeleteStore(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/stores/%d", id), token, nil, nil)
}

// ListReviews lists the reviews of a store.
func (c *Client) ListReviews(ctx context.Context, token string, storeID int64) (*ReviewList, error) {
	var list ReviewList
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/stores/%d/reviews", storeID), token, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// AddReview submits a review for a store.
func (c *Client) AddReview(ctx context.Context, token string, storeID int64, in ReviewInput) (*Review, error) {
	var rv Review
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/stores/%d/reviews", storeID), token, in, &rv); err != nil {
		return nil, err
	}
	return &rv, nil
}

// ListUsers lists all users (admin only, enforced by the backend).
func (c *Client) ListUsers(ctx context.Context, token string) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/api/users", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetUserRole changes a user's role and returns the updated user.
func (c *Client) SetUserRole(ctx context.Context, token string, id int64, role string) (*User, error) {
	var u User
	body := map[string]string{"role": role}
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/users/%d/role", id), token, body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
