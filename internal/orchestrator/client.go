// Package orchestrator talks to the external netcode-shell process manager,
// which actually launches and monitors game-server instances. This service
// only validates and forwards; the shell's status payloads pass through
// uninterpreted.
package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

var (
	// ErrUnavailable means the shell could not be reached in time
	ErrUnavailable = errors.New("instance orchestrator unreachable")
	// ErrMalformed means the shell answered with an unexpected shape
	ErrMalformed = errors.New("instance orchestrator returned an unexpected response")
)

// Instance request bounds, enforced by callers before forwarding
const (
	MinPlayers  = 2
	MaxPlayers  = 16
	MinTickRate = 1
	MaxTickRate = 240
)

// InstanceRequest is the fixed wire shape for a create call. It is never
// persisted; it exists only for the duration of one forwarding call.
type InstanceRequest struct {
	MaxPlayers int   `json:"max_players"`
	OwnerID    int64 `json:"owner_id"`
	Port       int   `json:"port"`
	TickRate   int   `json:"interval"`
}

// Config holds orchestrator client configuration
type Config struct {
	BaseURL string
	// Timeout bounds each connect+read attempt
	Timeout time.Duration
	// RetryDelay is the pause before the single retry
	RetryDelay time.Duration
	// FailThreshold consecutive transport failures open the breaker
	FailThreshold int
	// Cooldown is how long the breaker short-circuits once open
	Cooldown time.Duration
}

// Client forwards instance requests to the shell with a bounded timeout,
// at most one retry, and a short-circuit while the shell has been
// unreachable recently.
type Client struct {
	baseURL    string
	http       *http.Client
	retryDelay time.Duration

	mu            sync.Mutex
	failThreshold int
	cooldown      time.Duration
	failures      int
	openUntil     time.Time
}

// NewClient creates an orchestrator client
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 250 * time.Millisecond
	}
	if cfg.FailThreshold <= 0 {
		cfg.FailThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	return &Client{
		baseURL:       cfg.BaseURL,
		http:          &http.Client{Timeout: cfg.Timeout},
		retryDelay:    cfg.RetryDelay,
		failThreshold: cfg.FailThreshold,
		cooldown:      cfg.Cooldown,
	}
}

// CreateInstance forwards a validated create request to the shell.
// Success means: transport succeeded, the body is valid JSON, and it
// carries an assigned-port field. Anything else is a typed failure,
// never a silent empty result.
func (c *Client) CreateInstance(ctx context.Context, req InstanceRequest) (json.RawMessage, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	body, err := c.roundTrip(ctx, func() (*http.Response, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("X-Request-Id", uuid.NewString())
		return c.http.Do(httpReq)
	})
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if _, ok := fields["Port"]; !ok {
		if _, ok := fields["port"]; !ok {
			return nil, fmt.Errorf("%w: missing assigned port", ErrMalformed)
		}
	}

	return json.RawMessage(body), nil
}

// GetStatus fetches the shell's status blob. The payload is passed through
// opaquely; this service does not interpret its schema.
func (c *Client) GetStatus(ctx context.Context) (json.RawMessage, error) {
	body, err := c.roundTrip(ctx, func() (*http.Response, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/get-status", nil)
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("X-Request-Id", uuid.NewString())
		return c.http.Do(httpReq)
	})
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: status body is not JSON", ErrMalformed)
	}

	return json.RawMessage(body), nil
}

// roundTrip runs one request with a single bounded retry on transport
// failure. Shape failures are not retried; the request reached the shell.
func (c *Client) roundTrip(ctx context.Context, send func() (*http.Response, error)) ([]byte, error) {
	if c.shortCircuit() {
		return nil, fmt.Errorf("%w: circuit open", ErrUnavailable)
	}

	var body []byte
	backoff := retry.WithMaxRetries(1, retry.NewConstant(c.retryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := send()
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%w: %v", ErrUnavailable, err))
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return retry.RetryableError(fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%w: %v", ErrUnavailable, err))
		}
		return nil
	})
	if err != nil {
		c.recordFailure()
		return nil, err
	}

	c.recordSuccess()
	return body, nil
}

func (c *Client) shortCircuit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Now().Before(c.openUntil)
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures++
	if c.failures >= c.failThreshold {
		c.openUntil = time.Now().Add(c.cooldown)
		c.failures = 0
		log.Printf("orchestrator unreachable, short-circuiting calls for %s", c.cooldown)
	}
}

func (c *Client) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = 0
	c.openUntil = time.Time{}
}
