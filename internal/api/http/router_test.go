package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/outagetrack/outage-service/internal/api/http/handlers"
	"github.com/outagetrack/outage-service/internal/auth"
	"github.com/outagetrack/outage-service/internal/domain"
	"github.com/outagetrack/outage-service/internal/events"
	"github.com/outagetrack/outage-service/internal/observability"
	"github.com/outagetrack/outage-service/internal/repository/memory"
	"github.com/outagetrack/outage-service/internal/service"
)

const adminPassword = "admin-password"

type testServer struct {
	app   *fiber.App
	store *memory.Store
	users *service.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	store := memory.NewStore()
	sessions := auth.NewMemorySessionStore()
	tokens := auth.NewTokenManager("router-test-secret", time.Hour)
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	users := service.NewUserService(store, bcrypt.MinCost, logger)
	_, err := users.EnsureAdmin(context.Background(), "admin@example.com", adminPassword)
	require.NoError(t, err)

	app := NewApp("outage-service-test", logger, metrics, 5*time.Second, RouteConfig{
		Health: handlers.NewHealthHandler("outage-service", "test", nil),
		Auth: handlers.NewAuthHandler(service.NewAuthService(service.AuthDependencies{
			UserRepo:   store.Repos().Users,
			Tokens:     tokens,
			Sessions:   sessions,
			BcryptCost: bcrypt.MinCost,
			Logger:     logger,
		})),
		Users: handlers.NewUsersHandler(users),
		Locations: handlers.NewLocationsHandler(service.NewLocationService(service.LocationDependencies{
			Store:      store,
			Dispatcher: events.NewInMemoryDispatcher(),
			Metrics:    metrics,
			Logger:     logger,
		})),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, sessions, store.Repos().Users),
		Gatherer:       registry,
	})
	return &testServer{app: app, store: store, users: users}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	status, body := s.do(t, nethttp.MethodPost, "/api/auth/login", "", map[string]any{"email": email, "password": password})
	require.Equal(t, nethttp.StatusOK, status, body)
	return data(body)["token"].(string)
}

func (s *testServer) staff(t *testing.T, adminToken, email string, role domain.Role) (string, string) {
	t.Helper()
	status, body := s.do(t, nethttp.MethodPost, "/api/accounts/users", adminToken, map[string]any{
		"email": email, "password": "crew-password", "role": string(role), "first_name": "Crew",
	})
	require.Equal(t, nethttp.StatusCreated, status, body)
	return data(body)["id"].(string), s.login(t, email, "crew-password")
}

func data(body map[string]any) map[string]any {
	d, _ := body["data"].(map[string]any)
	return d
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, nethttp.MethodGet, "/health/live", "", nil)
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = s.do(t, nethttp.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "ready", body["status"])

	req := httptest.NewRequest(nethttp.MethodGet, "/metrics", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "http_requests_total")
}

func TestUnknownRouteRendersErrorEnvelope(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, nethttp.MethodGet, "/nope", "", nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestRegisterLoginLogout(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, nethttp.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "rita@example.com", "password": "reporter-pass", "password_confirm": "other-pass",
	})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Equal(t, "passwords don't match", details["password_confirm"])

	status, body = s.do(t, nethttp.MethodPost, "/api/auth/register", "", map[string]any{"email": "not-an-email"})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	details = body["error"].(map[string]any)["details"].(map[string]any)
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")

	status, body = s.do(t, nethttp.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "rita@example.com", "password": "reporter-pass", "password_confirm": "reporter-pass", "first_name": "Rita",
	})
	require.Equal(t, nethttp.StatusCreated, status, body)
	user := data(body)["user"].(map[string]any)
	assert.Equal(t, "reporter", user["role"])
	assert.NotContains(t, user, "password_hash")
	token := data(body)["token"].(string)

	status, body = s.do(t, nethttp.MethodGet, "/api/accounts/profile", token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "Rita", data(body)["first_name"])

	status, _ = s.do(t, nethttp.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, nethttp.StatusOK, status)
	status, body = s.do(t, nethttp.MethodGet, "/api/accounts/profile", token, nil)
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, _ = s.do(t, nethttp.MethodPost, "/api/auth/login", "", map[string]any{"email": "rita@example.com", "password": "wrong-pass"})
	assert.Equal(t, nethttp.StatusUnauthorized, status)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, nethttp.MethodGet, "/api/locations", "", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, _ = s.do(t, nethttp.MethodGet, "/api/locations", "garbage", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, status)
}

func TestLocationWorkflow(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login(t, "admin@example.com", adminPassword)
	memberID, memberToken := s.staff(t, adminToken, "crew@example.com", domain.RoleTeamMember)

	status, body := s.do(t, nethttp.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "rita@example.com", "password": "reporter-pass", "password_confirm": "reporter-pass",
	})
	require.Equal(t, nethttp.StatusCreated, status)
	reporterID := data(body)["user"].(map[string]any)["id"].(string)
	reporterToken := data(body)["token"].(string)

	status, body = s.do(t, nethttp.MethodPost, "/api/locations", reporterToken, map[string]any{
		"name":           "Maple Street",
		"reporter_phone": "(555) 123-4567",
		"latitude":       "40.7127761",
	})
	require.Equal(t, nethttp.StatusCreated, status, body)
	loc := data(body)
	locID := loc["id"].(string)
	assert.Equal(t, "5551234567", loc["reporter_phone"])
	assert.Equal(t, "rita@example.com", loc["reporter_email"])
	assert.Equal(t, "40.712776", loc["latitude"])
	assert.Equal(t, "Reported", loc["status_display"])
	assert.Equal(t, false, loc["is_assigned"])
	assert.Equal(t, reporterID, loc["reported_by"].(map[string]any)["id"])
	assert.Len(t, loc["updates"], 1)

	status, body = s.do(t, nethttp.MethodPost, "/api/locations/"+locID+"/assign", reporterToken, map[string]any{"user_id": memberID})
	assert.Equal(t, nethttp.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	status, body = s.do(t, nethttp.MethodPost, "/api/locations/"+locID+"/assign", adminToken, map[string]any{"user_id": reporterID})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, body = s.do(t, nethttp.MethodPost, "/api/locations/assign/"+locID, adminToken, map[string]any{"user_id": memberID})
	require.Equal(t, nethttp.StatusOK, status, body)
	assert.Equal(t, true, data(body)["is_assigned"])
	latest := data(body)["updates"].([]any)[0].(map[string]any)
	assert.Equal(t, "assignment", latest["update_type"])
	assert.Equal(t, "Assignment", latest["update_type_display"])

	status, body = s.do(t, nethttp.MethodPost, "/api/locations/"+locID+"/update_status", memberToken, map[string]any{"status": "resolved"})
	require.Equal(t, nethttp.StatusOK, status, body)
	latest = data(body)["updates"].([]any)[0].(map[string]any)
	assert.Equal(t, "status_change", latest["update_type"])
	assert.Equal(t, "reported", latest["previous_status"])
	assert.Equal(t, "resolved", latest["new_status"])
	assert.Equal(t, true, data(body)["is_resolved"])

	status, body = s.do(t, nethttp.MethodPost, "/api/locations/"+locID+"/update_status", reporterToken, map[string]any{"status": "in_progress"})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, body = s.do(t, nethttp.MethodPatch, "/api/locations/"+locID, adminToken, map[string]any{"assigned_to": nil})
	require.Equal(t, nethttp.StatusOK, status, body)
	assert.Nil(t, data(body)["assigned_to"])

	status, body = s.do(t, nethttp.MethodPost, "/api/locations/"+locID+"/updates", reporterToken, map[string]any{"notes": "Thanks!"})
	require.Equal(t, nethttp.StatusCreated, status, body)

	status, body = s.do(t, nethttp.MethodGet, "/api/locations/"+locID+"/updates?limit=2", reporterToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Len(t, body["data"], 2)
	assert.Equal(t, float64(5), body["meta"].(map[string]any)["total"])

	status, body = s.do(t, nethttp.MethodGet, "/api/locations?status=resolved", adminToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, float64(1), body["meta"].(map[string]any)["total"])

	status, _ = s.do(t, nethttp.MethodGet, "/api/locations/"+locID, memberToken, nil)
	assert.Equal(t, nethttp.StatusForbidden, status)

	status, _ = s.do(t, nethttp.MethodDelete, "/api/locations/"+locID, memberToken, nil)
	assert.Equal(t, nethttp.StatusForbidden, status)
	status, _ = s.do(t, nethttp.MethodDelete, "/api/locations/"+locID, adminToken, nil)
	assert.Equal(t, nethttp.StatusNoContent, status)
	status, body = s.do(t, nethttp.MethodGet, "/api/locations/"+locID, adminToken, nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestAccountAdministration(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login(t, "admin@example.com", adminPassword)
	leadID, leadToken := s.staff(t, adminToken, "lead@example.com", domain.RoleTeamLead)
	memberID, _ := s.staff(t, adminToken, "crew@example.com", domain.RoleTeamMember)

	status, body := s.do(t, nethttp.MethodGet, "/api/accounts/users", leadToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, float64(1), body["meta"].(map[string]any)["total"])

	status, _ = s.do(t, nethttp.MethodGet, "/api/accounts/users/"+leadID, leadToken, nil)
	assert.Equal(t, nethttp.StatusNotFound, status)

	status, _ = s.do(t, nethttp.MethodPost, "/api/accounts/users", leadToken, map[string]any{"email": "x@example.com", "password": "whatever1"})
	assert.Equal(t, nethttp.StatusForbidden, status)

	status, body = s.do(t, nethttp.MethodPost, "/api/accounts/users", adminToken, map[string]any{"email": "x@example.com", "password": "whatever1", "role": "owner"})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Contains(t, body["error"].(map[string]any)["details"], "role")

	status, body = s.do(t, nethttp.MethodPatch, "/api/accounts/users/"+memberID, adminToken, map[string]any{"is_active": false})
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, false, data(body)["is_active"])

	status, body = s.do(t, nethttp.MethodPost, "/api/auth/login", "", map[string]any{"email": "crew@example.com", "password": "crew-password"})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, _ = s.do(t, nethttp.MethodDelete, "/api/accounts/users/"+memberID, adminToken, nil)
	assert.Equal(t, nethttp.StatusNoContent, status)
}
