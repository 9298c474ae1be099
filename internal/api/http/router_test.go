package http

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/skylink-gateway/internal/api/http/handlers"
	"github.com/spec-kit/skylink-gateway/internal/config"
	"github.com/spec-kit/skylink-gateway/internal/credstore"
	"github.com/spec-kit/skylink-gateway/internal/events"
	"github.com/spec-kit/skylink-gateway/internal/guard"
	"github.com/spec-kit/skylink-gateway/internal/observability"
	"github.com/spec-kit/skylink-gateway/internal/service"
	"github.com/spec-kit/skylink-gateway/internal/session"
	"github.com/spec-kit/skylink-gateway/internal/token"
	"github.com/spec-kit/skylink-gateway/internal/upstream"
)

const testCookieName = "skylink_session"

func mintCredential(t *testing.T, role string, expiresAt time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  role + "@skylink.test",
		"role": role,
		"exp":  expiresAt.Unix(),
	})
	signed, err := tok.SignedString([]byte("upstream-secret"))
	require.NoError(t, err)
	return signed
}

func newTestApp(t *testing.T, upstreamURL string) (*fiber.App, *credstore.MemoryKeyed) {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics(nil)
	keyed := credstore.NewMemoryKeyed()
	validator := token.NewValidator(nil)
	dispatcher := events.NewInMemoryDispatcher(logger)
	sessions := session.NewManager(keyed, validator, dispatcher, logger)
	accessGuard := guard.New(keyed, validator, dispatcher, metrics, logger)

	client := upstream.NewClient(config.UpstreamConfig{
		BaseURL:        upstreamURL,
		TimeoutSeconds: 2,
		RetryAttempts:  1,
		RatePerSecond:  1000,
		RateBurst:      100,
	}, logger, metrics)

	authService := service.NewAuthService(client, sessions, logger)
	flightService := service.NewFlightService(client, keyed, nil, 0, logger)

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, config.AppConfig{RequestTimeoutSeconds: 5}, config.SessionConfig{CookieName: testCookieName})
	RegisterRoutes(app, RouteConfig{
		Health:  handlers.NewHealthHandler("test", "dev", nil, client),
		Auth:    handlers.NewAuthHandler(authService),
		Flights: handlers.NewFlightsHandler(flightService),
		Profile: handlers.NewProfileHandler(),
		Guard:   accessGuard,
	})
	return app, keyed
}

func withSession(req *nethttp.Request, sessionID string) *nethttp.Request {
	req.AddCookie(&nethttp.Cookie{Name: testCookieName, Value: sessionID})
	return req
}

func TestGatedViewRedirectsAnonymousToLogin(t *testing.T) {
	app, _ := newTestApp(t, "http://127.0.0.1:0")

	req := httptest.NewRequest(nethttp.MethodGet, "/profile/passenger", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, nethttp.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestGatedViewRendersForMatchingRole(t *testing.T) {
	app, keyed := newTestApp(t, "http://127.0.0.1:0")

	sessionID := "sess-render"
	credential := mintCredential(t, "passenger", time.Now().Add(time.Hour))
	require.NoError(t, keyed.For(sessionID).Save(context.Background(), credential))

	req := withSession(httptest.NewRequest(nethttp.MethodGet, "/profile/passenger", nil), sessionID)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "passenger_profile")
}

func TestWrongRoleRedirectsToOwnHome(t *testing.T) {
	app, keyed := newTestApp(t, "http://127.0.0.1:0")

	sessionID := "sess-wrong-role"
	credential := mintCredential(t, "passenger", time.Now().Add(time.Hour))
	require.NoError(t, keyed.For(sessionID).Save(context.Background(), credential))

	req := withSession(httptest.NewRequest(nethttp.MethodGet, "/profile/staff", nil), sessionID)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, nethttp.StatusFound, resp.StatusCode)
	assert.Equal(t, "/profile/passenger", resp.Header.Get("Location"))
}

func TestExpiredCredentialRedirectsAndPurges(t *testing.T) {
	app, keyed := newTestApp(t, "http://127.0.0.1:0")

	sessionID := "sess-expired"
	credential := mintCredential(t, "passenger", time.Now().Add(-time.Minute))
	require.NoError(t, keyed.For(sessionID).Save(context.Background(), credential))

	req := withSession(httptest.NewRequest(nethttp.MethodGet, "/me", nil), sessionID)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, nethttp.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	persisted, err := keyed.For(sessionID).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestMeRendersHydratedIdentity(t *testing.T) {
	app, keyed := newTestApp(t, "http://127.0.0.1:0")

	sessionID := "sess-me"
	credential := mintCredential(t, "staff", time.Now().Add(time.Hour))
	require.NoError(t, keyed.For(sessionID).Save(context.Background(), credential))

	req := withSession(httptest.NewRequest(nethttp.MethodGet, "/me", nil), sessionID)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	var payload struct {
		Data struct {
			Subject string `json:"subject"`
			Role    string `json:"role"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "staff@skylink.test", payload.Data.Subject)
	assert.Equal(t, "staff", payload.Data.Role)
}

func TestLoginWithUnusableCredentialMapsToBadGateway(t *testing.T) {
	upstreamSrv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "not-a-decodable-token",
			"token_type":   "bearer",
			"role":         "passenger",
		})
	}))
	defer upstreamSrv.Close()

	app, keyed := newTestApp(t, upstreamSrv.URL)

	sessionID := "sess-broken-login"
	body := strings.NewReader(`{"email":"ada@skylink.test","password":"hunter2"}`)
	req := withSession(httptest.NewRequest(nethttp.MethodPost, "/auth/login", body), sessionID)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusBadGateway, resp.StatusCode)

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "AUTH_INTEGRATION", payload.Error.Code)

	// the broken credential must not linger in the session
	persisted, err := keyed.For(sessionID).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestLoginFlowBindsCredentialToSession(t *testing.T) {
	credential := mintCredential(t, "passenger", time.Now().Add(time.Hour))

	upstreamSrv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": credential,
			"token_type":   "bearer",
			"role":         "passenger",
		})
	}))
	defer upstreamSrv.Close()

	app, keyed := newTestApp(t, upstreamSrv.URL)

	sessionID := "sess-login"
	body := strings.NewReader(`{"email":"ada@skylink.test","password":"hunter2"}`)
	req := withSession(httptest.NewRequest(nethttp.MethodPost, "/auth/login", body), sessionID)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	var payload struct {
		Data struct {
			Redirect string `json:"redirect"`
			Identity struct {
				Role string `json:"role"`
			} `json:"identity"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "/profile/passenger", payload.Data.Redirect)
	assert.Equal(t, "passenger", payload.Data.Identity.Role)

	persisted, err := keyed.For(sessionID).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, credential, persisted)
}

func TestLogoutClearsSessionAndRedirectsToPublicRoot(t *testing.T) {
	app, keyed := newTestApp(t, "http://127.0.0.1:0")

	sessionID := "sess-logout"
	credential := mintCredential(t, "staff", time.Now().Add(time.Hour))
	require.NoError(t, keyed.For(sessionID).Save(context.Background(), credential))

	req := withSession(httptest.NewRequest(nethttp.MethodPost, "/auth/logout", nil), sessionID)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, nethttp.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	persisted, err := keyed.For(sessionID).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, persisted)
}
