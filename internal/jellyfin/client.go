// Package jellyfin provides a client for the Jellyfin server API.
package jellyfin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	clientName    = "jellywaves"
	clientVersion = "0.1.0"
)

// ErrNotAuthenticated is returned by user-scoped calls made before sign-in.
var ErrNotAuthenticated = errors.New("not authenticated")

// StatusError is returned when the server answers with an unexpected status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: API returned status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: API returned status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// Client provides access to the Jellyfin API.
type Client struct {
	baseURL    string
	deviceID   string
	deviceName string
	httpClient *http.Client
	log        *logrus.Entry

	mu     sync.RWMutex
	token  string
	userID string
}

// NewClient creates a new Jellyfin API client. An empty deviceID gets a
// fresh random one.
func NewClient(baseURL, deviceName, deviceID string) *Client {
	if deviceID == "" {
		deviceID = uuid.NewString()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		deviceID:   deviceID,
		deviceName: deviceName,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logrus.WithField("component", "jellyfin"),
	}
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string { return c.baseURL }

// DeviceID returns the id this client reports to the server.
func (c *Client) DeviceID() string { return c.deviceID }

// HTTPClient returns the underlying HTTP client, for streaming.
func (c *Client) HTTPClient() *http.Client { return c.httpClient }

// SetSession installs the access token and user used by later calls.
func (c *Client) SetSession(token, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.userID = userID
}

// Token returns the current access token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// UserID returns the signed-in user's id.
func (c *Client) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

func (c *Client) authorization() string {
	parts := []string{
		fmt.Sprintf("Client=%q", clientName),
		fmt.Sprintf("Device=%q", c.deviceName),
		fmt.Sprintf("DeviceId=%q", c.deviceID),
		fmt.Sprintf("Version=%q", clientVersion),
	}
	if token := c.Token(); token != "" {
		parts = append(parts, fmt.Sprintf("Token=%q", token))
	}
	return "MediaBrowser " + strings.Join(parts, ", ")
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", c.authorization())
	req.Header.Set("Accept", "application/json")
	if req.Body != nil && req.Body != http.NoBody {
		req.Header.Set("Content-Type", "application/json")
	}
}

// requireUser returns the user id or ErrNotAuthenticated.
func (c *Client) requireUser() (string, error) {
	id := c.UserID()
	if id == "" {
		return "", ErrNotAuthenticated
	}
	return id, nil
}

// do sends a JSON request and decodes a JSON response into out when out is
// not nil. Any 2xx status is a success.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
		"status": resp.StatusCode,
	}).Trace("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(respBody)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// fetch downloads a binary resource such as an image.
func (c *Client) fetch(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.authorization())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Method: http.MethodGet, Path: path, Code: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}
