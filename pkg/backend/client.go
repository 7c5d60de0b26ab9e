package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/openlearnco/classgate/pkg/auth"
	"github.com/openlearnco/classgate/pkg/observability"
)

// APIError is a non-2xx response from the content API
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("content API error (status %d): %s", e.Status, e.Message)
}

// LoginResponse is the provider's credential-check response
type LoginResponse struct {
	JWT  string    `json:"jwt"`
	User auth.User `json:"user"`
}

// Enrollment is a student's membership in a class
type Enrollment struct {
	DocumentID string           `json:"documentId"`
	Class      *EnrollmentClass `json:"class"`
}

// EnrollmentClass is the class reference populated on an enrollment
type EnrollmentClass struct {
	DocumentID string `json:"documentId"`
}

// Client talks to the Strapi-compatible content/identity API. It owns
// identity truth: credential checks and profile fetches here are the
// authoritative validation that the local token checks defer to.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
}

// NewClient creates a content API client with a per-request timeout
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
	}
}

// Login checks credentials against POST /api/auth/local. A non-2xx
// response comes back as *APIError; callers flatten it to a generic
// message before it reaches the browser.
func (c *Client) Login(ctx context.Context, identifier, password string) (*LoginResponse, error) {
	body, err := json.Marshal(map[string]string{
		"identifier": identifier,
		"password":   password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/local", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result LoginResponse
	if err := c.do(req, "auth_local", &result); err != nil {
		return nil, err
	}
	if result.JWT == "" {
		return nil, fmt.Errorf("provider returned an empty token")
	}

	return &result, nil
}

// Me fetches the full user profile, role included, authenticated by the
// bearer token. Success here is what proves the token's signature.
func (c *Client) Me(ctx context.Context, token string) (*auth.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/users/me?populate=role", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var user auth.User
	if err := c.do(req, "users_me", &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// LatestEnrollment returns the user's most recently created enrollment,
// or nil when the user has none.
func (c *Client) LatestEnrollment(ctx context.Context, token string, userID int) (*Enrollment, error) {
	query := url.Values{}
	query.Set("filters[student][id][$eq]", strconv.Itoa(userID))
	query.Set("populate[class][fields][0]", "documentId")
	query.Set("sort[0]", "createdAt:desc")
	query.Set("pagination[limit]", "1")

	endpoint := c.baseURL + "/api/enrollments?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build enrollment request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	// Collection responses arrive wrapped in a data envelope
	var envelope struct {
		Data []Enrollment `json:"data"`
	}
	if err := c.do(req, "enrollments", &envelope); err != nil {
		return nil, err
	}

	if len(envelope.Data) == 0 {
		return nil, nil
	}
	return &envelope.Data[0], nil
}

// Ping checks reachability of the content API for readiness probes
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/_health", nil)
	if err != nil {
		return fmt.Errorf("failed to build health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("content API unreachable: %w", err)
	}
	defer resp.Body.Close()

	// Any response means the API is up; auth failures are still "reachable"
	return nil
}

func (c *Client) do(req *http.Request, endpoint string, dest interface{}) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.metrics != nil {
		c.metrics.BackendRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if c.metrics != nil {
			c.metrics.BackendRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		}
		return fmt.Errorf("content API request failed: %w", err)
	}
	defer resp.Body.Close()

	if c.metrics != nil {
		c.metrics.BackendRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Status:  resp.StatusCode,
			Message: decodeErrorMessage(resp),
		}
	}

	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return fmt.Errorf("failed to decode content API response: %w", err)
		}
	}

	return nil
}

// decodeErrorMessage extracts the provider's error message when present
func decodeErrorMessage(resp *http.Response) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error.Message == "" {
		return http.StatusText(resp.StatusCode)
	}
	return body.Error.Message
}
