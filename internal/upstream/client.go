package upstream

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
	"unicode/utf8"

	retry "github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spec-kit/skylink-gateway/internal/config"
	"github.com/spec-kit/skylink-gateway/internal/domain"
	"github.com/spec-kit/skylink-gateway/internal/observability"
)

const maxResponseBytes = 1 << 20

// Error carries the upstream's HTTP status and detail message.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Detail)
}

// Status implements the errorutil status-carrier convention.
func (e *Error) Status() int {
	return e.StatusCode
}

// LoginResult is the upstream's login response. Role and FullName are hints;
// the decoded credential stays authoritative.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Role        string `json:"role"`
	FullName    string `json:"full_name"`
}

// RegisterRequest is the upstream's registration payload.
type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FullName   string `json:"full_name,omitempty"`
	Role       string `json:"role,omitempty"`
	EmployeeID string `json:"employee_id,omitempty"`
}

// ResetIssued is the upstream's forgot-password response. The reset link is
// only present when the upstream could not deliver email.
type ResetIssued struct {
	Message   string `json:"message"`
	ResetLink string `json:"reset_link,omitempty"`
}

// BookingRequest is the upstream's booking payload.
type BookingRequest struct {
	FlightID   int64 `json:"flight_id"`
	Passengers int   `json:"passengers"`
}

// Client talks to the black-box SkyLink API. All calls run through a rate
// limiter, a circuit breaker, and a bounded retry loop; 4xx responses are
// terminal and never retried.
type Client struct {
	baseURL  string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker
	limiter  *rate.Limiter
	attempts int
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewClient builds the upstream client from configuration.
func NewClient(cfg config.UpstreamConfig, logger *zap.Logger, metrics *observability.Metrics) *Client {
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "skylink-api",
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    time.Duration(cfg.BreakerIntervalSeconds) * time.Second,
		Timeout:     time.Duration(cfg.BreakerTimeoutSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("upstream breaker state change",
				zap.String("from", from.String()), zap.String("to", to.String()))
			if metrics != nil {
				if to == gobreaker.StateOpen {
					metrics.UpstreamBreakerState.Set(1)
				} else {
					metrics.UpstreamBreakerState.Set(0)
				}
			}
		},
	})

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		http:     &http.Client{Timeout: cfg.Timeout()},
		breaker:  breaker,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
		attempts: attempts,
		logger:   logger,
		metrics:  metrics,
	}
}

// Login exchanges credentials for a bearer token. The upstream expects the
// OAuth2 password form, with the email in the "username" field.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var result LoginResult
	err := c.do(ctx, "login", http.MethodPost, "/auth/login", "application/x-www-form-urlencoded",
		[]byte(form.Encode()), "", &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Register creates a new account upstream.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return c.do(ctx, "register", http.MethodPost, "/auth/register", "application/json", body, "", nil)
}

// ForgotPassword asks the upstream to issue a reset link for the email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*ResetIssued, error) {
	body, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return nil, err
	}
	var result ResetIssued
	if err := c.do(ctx, "forgot_password", http.MethodPost, "/auth/forgot-password", "application/json", body, "", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ResetPassword redeems a reset token for a new password.
func (c *Client) ResetPassword(ctx context.Context, resetToken, password string) error {
	body, err := json.Marshal(map[string]string{"token": resetToken, "password": password})
	if err != nil {
		return err
	}
	return c.do(ctx, "reset_password", http.MethodPost, "/auth/reset-password", "application/json", body, "", nil)
}

// SearchFlights lists flights matching the query.
func (c *Client) SearchFlights(ctx context.Context, query domain.FlightQuery) ([]domain.Flight, error) {
	params := url.Values{}
	if query.Origin != "" {
		params.Set("origin", query.Origin)
	}
	if query.Destination != "" {
		params.Set("destination", query.Destination)
	}
	path := "/flights"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var flights []domain.Flight
	if err := c.do(ctx, "search_flights", http.MethodGet, path, "", nil, "", &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

// BookFlight places a booking on behalf of the credential's owner.
func (c *Client) BookFlight(ctx context.Context, credential string, req BookingRequest) (*domain.Booking, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var booking domain.Booking
	if err := c.do(ctx, "book_flight", http.MethodPost, "/bookings", "application/json", body, credential, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// Ping checks upstream liveness for the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", http.MethodGet, "/", "", nil, "", nil)
}

func (c *Client) do(ctx context.Context, operation, method, path, contentType string, body []byte, credential string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		r := retry.New(
			retry.Context(ctx),
			retry.Attempts(uint(c.attempts)),
		)
		return nil, r.Do(func() error {
			return c.roundTrip(ctx, method, path, contentType, body, credential, out)
		})
	})

	c.metrics.RecordUpstreamRequest(operation, err)
	if err != nil {
		c.logger.Warn("upstream call failed",
			zap.String("operation", operation), zap.Error(err))
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path, contentType string, body []byte, credential string, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return retry.Unrecoverable(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		upstreamErr := &Error{StatusCode: resp.StatusCode, Detail: decodeDetail(raw)}
		if resp.StatusCode < http.StatusInternalServerError {
			// the upstream rejected the request itself; retrying cannot help
			return retry.Unrecoverable(upstreamErr)
		}
		return upstreamErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return retry.Unrecoverable(fmt.Errorf("decode upstream response: %w", err))
	}
	return nil
}

// decodeDetail extracts FastAPI-style {"detail": "..."} messages, falling
// back to the raw body.
func decodeDetail(raw []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	detail := strings.TrimSpace(string(raw))
	if len(detail) > 200 {
		cut := 200
		// back off to a rune boundary so the truncated message stays valid UTF-8
		for cut > 0 && !utf8.RuneStart(detail[cut]) {
			cut--
		}
		detail = detail[:cut]
	}
	return detail
}
