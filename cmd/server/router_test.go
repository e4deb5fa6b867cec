package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkarlsen/taskly-api/internal/config"
	"github.com/mkarlsen/taskly-api/internal/service"
	"github.com/mkarlsen/taskly-api/internal/service/auth"
	"github.com/mkarlsen/taskly-api/internal/testutils"
)

// newTestRouter wires the full router against in-memory stores, exercising
// the real middleware chain, handlers, and JWT service together.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:                   "test-secret-key-that-is-32-chars!!",
		TokenLifetimeMinutes:        30,
		RefreshTokenLifetimeMinutes: 10080,
	})
	require.NoError(t, err, "Failed to create JWT service")

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := &application{
		config:           &config.Config{},
		logger:           log,
		userStore:        testutils.NewMemoryUserStore(),
		taskService:      service.NewTaskService(testutils.NewMemoryTaskStore(), nil, log),
		jwtService:       jwtService,
		passwordHasher:   auth.NewBcryptHasher(bcrypt.MinCost),
		passwordVerifier: auth.NewBcryptVerifier(),
	}
	return app.setupRouter()
}

// doJSON performs a request against the router and decodes the JSON response
// body into out when out is non-nil.
func doJSON(
	t *testing.T,
	router http.Handler,
	method, target, token string,
	body, out any,
) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err, "Failed to marshal request body")
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if out != nil && rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), out),
			"Failed to decode response body: %s", rr.Body.String())
	}
	return rr
}

// registerAndLogin registers a user through the API and returns an access token.
func registerAndLogin(t *testing.T, router http.Handler, username, password string) string {
	t.Helper()

	var registered struct {
		Access string `json:"access"`
	}
	rr := doJSON(t, router, http.MethodPost, "/register", "", map[string]string{
		"username": username,
		"email":    fmt.Sprintf("%s@example.com", username),
		"password": password,
	}, &registered)
	require.Equal(t, http.StatusCreated, rr.Code, "Registration failed: %s", rr.Body.String())
	require.NotEmpty(t, registered.Access)
	return registered.Access
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodGet, "/health", "", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	routes := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/tasks"},
		{http.MethodPost, "/tasks"},
		{http.MethodGet, "/tasks/11111111-1111-1111-1111-111111111111"},
		{http.MethodPatch, "/tasks/11111111-1111-1111-1111-111111111111"},
		{http.MethodDelete, "/tasks/11111111-1111-1111-1111-111111111111"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.target, func(t *testing.T) {
			rr := doJSON(t, router, route.method, route.target, "", nil, nil)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestFreshRegistrationTokenAuthorizesImmediately(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	token := registerAndLogin(t, router, "alice", "password123")

	var tasks []json.RawMessage
	rr := doJSON(t, router, http.MethodGet, "/tasks", token, nil, &tasks)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, tasks)
}

func TestTokenRefreshFlow(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	var registered struct {
		Refresh string `json:"refresh"`
	}
	rr := doJSON(t, router, http.MethodPost, "/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	}, &registered)
	require.Equal(t, http.StatusCreated, rr.Code)

	var refreshed struct {
		Access string `json:"access"`
	}
	rr = doJSON(t, router, http.MethodPost, "/token/refresh", "", map[string]string{
		"refresh": registered.Refresh,
	}, &refreshed)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotEmpty(t, refreshed.Access)

	// The refreshed access token works against protected routes.
	rr = doJSON(t, router, http.MethodGet, "/tasks", refreshed.Access, nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

// TestOwnershipIsolation walks two users through the API and verifies that
// neither can see or touch the other's tasks, and that every cross-user
// probe reads as "not found" rather than "forbidden".
func TestOwnershipIsolation(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	aliceToken := registerAndLogin(t, router, "alice", "password123")
	bobToken := registerAndLogin(t, router, "bob", "password456")

	// Alice creates a task.
	var aliceTask struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	rr := doJSON(t, router, http.MethodPost, "/tasks", aliceToken, map[string]string{
		"title": "alice private task",
	}, &aliceTask)
	require.Equal(t, http.StatusCreated, rr.Code)
	require.NotEmpty(t, aliceTask.ID)

	// Bob's list does not contain it.
	var bobTasks []json.RawMessage
	rr = doJSON(t, router, http.MethodGet, "/tasks", bobToken, nil, &bobTasks)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, bobTasks)

	// Bob cannot retrieve, update, or delete it; every probe is a 404.
	rr = doJSON(t, router, http.MethodGet, "/tasks/"+aliceTask.ID, bobToken, nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(t, router, http.MethodPatch, "/tasks/"+aliceTask.ID, bobToken,
		map[string]string{"title": "hijacked"}, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(t, router, http.MethodDelete, "/tasks/"+aliceTask.ID, bobToken, nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// Alice still sees her task, unmodified.
	var got struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	rr = doJSON(t, router, http.MethodGet, "/tasks/"+aliceTask.ID, aliceToken, nil, &got)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, aliceTask.ID, got.ID)
	assert.Equal(t, "alice private task", got.Title)

	// Alice completes her task, then deletes it.
	rr = doJSON(t, router, http.MethodPatch, "/tasks/"+aliceTask.ID, aliceToken,
		map[string]bool{"is_completed": true}, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodDelete, "/tasks/"+aliceTask.ID, aliceToken, nil, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	// Gone for everyone now.
	rr = doJSON(t, router, http.MethodGet, "/tasks/"+aliceTask.ID, aliceToken, nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = doJSON(t, router, http.MethodGet, "/tasks/"+aliceTask.ID, bobToken, nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestLoginThenUseToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	registerAndLogin(t, router, "alice", "password123")

	var login struct {
		Message     string `json:"message"`
		AccessToken string `json:"access_token"`
	}
	rr := doJSON(t, router, http.MethodPost, "/login", "", map[string]string{
		"username": "alice",
		"password": "password123",
	}, &login)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "User authenticated successfully", login.Message)
	require.NotEmpty(t, login.AccessToken)

	rr = doJSON(t, router, http.MethodGet, "/tasks", login.AccessToken, nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}
