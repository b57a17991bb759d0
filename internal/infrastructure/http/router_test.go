package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/MrDNightCore/warden/internal/application/admin"
	"github.com/MrDNightCore/warden/internal/application/audit"
	"github.com/MrDNightCore/warden/internal/application/auth"
	"github.com/MrDNightCore/warden/internal/application/ratelimit"
	"github.com/MrDNightCore/warden/internal/domain"
	"github.com/MrDNightCore/warden/internal/infrastructure/attempts"
	wardenhttp "github.com/MrDNightCore/warden/internal/infrastructure/http"
	"github.com/MrDNightCore/warden/internal/infrastructure/http/handlers"
	"github.com/MrDNightCore/warden/internal/infrastructure/http/middleware"
	"github.com/MrDNightCore/warden/internal/infrastructure/persistence/memory"
	"github.com/MrDNightCore/warden/internal/infrastructure/security"
)

const adminSecret = "test-admin-secret"

type testServer struct {
	router   http.Handler
	accounts *memory.AccountStore
	hasher   *security.Argon2Hasher
}

// newTestServer wires the full stack on in-memory stores, the same shape
// main assembles without Postgres or Redis.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zerolog.Nop()
	accounts := memory.NewAccountStore()
	store := attempts.NewMemoryStore()
	hasher := security.NewArgon2Hasher(security.Argon2Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1})
	limiter := ratelimit.NewLimiter(store, nil, false, log)
	recorder := audit.NewRecorder(log)

	authHandler := handlers.NewAuthHandler(
		auth.NewLogin(accounts, hasher, limiter, recorder, 0, 0),
		auth.NewRegister(accounts, hasher, limiter, recorder),
		log,
	)
	adminHandler := handlers.NewAdminHandler(
		admin.NewListAccounts(accounts),
		admin.NewCreateAccount(accounts, hasher, recorder),
		admin.NewUnlockAccount(accounts, recorder),
		admin.NewSetAccountActive(accounts, recorder),
		log,
	)

	router := wardenhttp.NewRouter(wardenhttp.RouterConfig{
		AuthHandler:   authHandler,
		AdminHandler:  adminHandler,
		HealthHandler: handlers.NewHealthHandler(nil, nil),
		RequireAdmin:  middleware.RequireAdminSecret(adminSecret),
		Log:           log,
		APIVersion:    "v1",
	})
	return &testServer{router: router, accounts: accounts, hasher: hasher}
}

func (s *testServer) seedAccount(t *testing.T, username, email, password string, mutate func(*domain.Account)) *domain.Account {
	t.Helper()
	hash, err := s.hasher.Hash(password)
	require.NoError(t, err)
	now := time.Now().UTC()
	acct := &domain.Account{
		ID:           domain.NewAccountID(uuid.New()),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if mutate != nil {
		mutate(acct)
	}
	require.NoError(t, s.accounts.Create(context.Background(), acct))
	return acct
}

func (s *testServer) do(t *testing.T, method, path, clientIP, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if clientIP != "" {
		req.Header.Set("X-Forwarded-For", clientIP)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func loginBody(username, password string) string {
	b, _ := json.Marshal(map[string]string{"username": username, "password": password})
	return string(b)
}

func adminHeader() map[string]string {
	return map[string]string{"X-Warden-Admin-Secret": adminSecret}
}

func TestLoginDenialsShareOneResponse(t *testing.T) {
	srv := newTestServer(t)
	srv.seedAccount(t, "felix", "felix@example.com", "Sup3r$ecretPass!", nil)
	srv.seedAccount(t, "nadia", "nadia@example.com", "Sup3r$ecretPass!", func(a *domain.Account) {
		until := time.Now().Add(10 * time.Minute)
		a.LockedUntil = &until
		a.FailedLoginAttempts = 5
	})
	srv.seedAccount(t, "olga", "olga@example.com", "Sup3r$ecretPass!", func(a *domain.Account) {
		a.IsActive = false
	})

	responses := map[string]*httptest.ResponseRecorder{
		"wrong password":   srv.do(t, "POST", "/auth/login", "198.51.100.1", loginBody("felix", "not-the-password"), nil),
		"unknown account":  srv.do(t, "POST", "/auth/login", "198.51.100.2", loginBody("ghost", "Sup3r$ecretPass!"), nil),
		"locked account":   srv.do(t, "POST", "/auth/login", "198.51.100.3", loginBody("nadia", "Sup3r$ecretPass!"), nil),
		"inactive account": srv.do(t, "POST", "/auth/login", "198.51.100.4", loginBody("olga", "Sup3r$ecretPass!"), nil),
	}
	var rateLimited *httptest.ResponseRecorder
	for i := 0; i < 6; i++ {
		rateLimited = srv.do(t, "POST", "/auth/login", "198.51.100.5", loginBody("felix", "not-the-password"), nil)
	}
	responses["rate limited"] = rateLimited

	reference := responses["wrong password"]
	require.Equal(t, http.StatusUnauthorized, reference.Code)
	for name, w := range responses {
		require.Equalf(t, http.StatusUnauthorized, w.Code, "status for %s", name)
		require.Equalf(t, reference.Body.String(), w.Body.String(), "body for %s", name)
	}
}

func TestRegisterAndLoginRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, "POST", "/auth/register", "203.0.113.1",
		`{"username":"newuser1","email":"newuser1@example.com","password":"Corr3ct!HorseBat"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Account struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			Email    string `json:"email"`
			IsActive bool   `json:"is_active"`
		} `json:"account"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.Account.ID)
	require.Equal(t, "newuser1", created.Account.Username)
	require.Equal(t, "newuser1@example.com", created.Account.Email)
	require.True(t, created.Account.IsActive)

	w = srv.do(t, "POST", "/auth/login", "203.0.113.1", loginBody("newuser1", "Corr3ct!HorseBat"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var logged struct {
		Account struct {
			Username string `json:"username"`
		} `json:"account"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logged))
	require.Equal(t, "newuser1", logged.Account.Username)
}

func TestRegisterFieldErrors(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, "POST", "/auth/register", "203.0.113.2",
		`{"username":"shortpw","email":"shortpw@example.com","password":"weak"}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "validation_failed", resp["code"])
	require.Equal(t, "password", resp["field"])

	w = srv.do(t, "POST", "/auth/register", "203.0.113.2",
		`{"username":"bad name!","email":"bad@example.com","password":"Corr3ct!HorseBat"}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "username", resp["field"])

	w = srv.do(t, "POST", "/auth/register", "203.0.113.2",
		`{"username":"mismatch","email":"mismatch@example.com","password":"Corr3ct!HorseBat","password_confirm":"Wr0ng!HorseBat"}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "password_confirm", resp["field"])
}

func TestDuplicateRegistrationConflicts(t *testing.T) {
	srv := newTestServer(t)
	srv.seedAccount(t, "taken", "taken@example.com", "Sup3r$ecretPass!", nil)

	w := srv.do(t, "POST", "/auth/register", "203.0.113.3",
		`{"username":"taken","email":"other@example.com","password":"Corr3ct!HorseBat"}`, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "conflict", resp["code"])
}

func TestAdminRequiresSecret(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, "GET", "/admin/accounts", "", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do(t, "GET", "/admin/accounts", "", "", map[string]string{"X-Warden-Admin-Secret": "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do(t, "GET", "/admin/accounts", "", "", adminHeader())
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAdminUnlockRestoresLogin(t *testing.T) {
	srv := newTestServer(t)
	acct := srv.seedAccount(t, "pavel", "pavel@example.com", "Sup3r$ecretPass!", func(a *domain.Account) {
		until := time.Now().Add(15 * time.Minute)
		a.LockedUntil = &until
		a.FailedLoginAttempts = 5
	})

	w := srv.do(t, "POST", "/auth/login", "198.51.100.7", loginBody("pavel", "Sup3r$ecretPass!"), nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do(t, "POST", "/admin/accounts/"+acct.ID.String()+"/unlock", "", "", adminHeader())
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Account struct {
			FailedLoginAttempts int    `json:"failed_login_attempts"`
			LockedUntil         string `json:"locked_until"`
		} `json:"account"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Zero(t, resp.Account.FailedLoginAttempts)
	require.Empty(t, resp.Account.LockedUntil)

	w = srv.do(t, "POST", "/auth/login", "198.51.100.7", loginBody("pavel", "Sup3r$ecretPass!"), nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAdminAccountIDErrors(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, "POST", "/admin/accounts/not-a-uuid/unlock", "", "", adminHeader())
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, "POST", "/admin/accounts/"+uuid.NewString()+"/unlock", "", "", adminHeader())
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminDeactivateBlocksLogin(t *testing.T) {
	srv := newTestServer(t)
	acct := srv.seedAccount(t, "renata", "renata@example.com", "Sup3r$ecretPass!", nil)

	w := srv.do(t, "POST", "/admin/accounts/"+acct.ID.String()+"/deactivate", "", "", adminHeader())
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, "POST", "/auth/login", "198.51.100.8", loginBody("renata", "Sup3r$ecretPass!"), nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do(t, "POST", "/admin/accounts/"+acct.ID.String()+"/activate", "", "", adminHeader())
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, "POST", "/auth/login", "198.51.100.9", loginBody("renata", "Sup3r$ecretPass!"), nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestHealthWithoutBackends(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, "GET", "/health", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "v1", w.Header().Get("X-API-Version"))
	var resp struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp.Status)
	require.Equal(t, "disabled", resp.Checks["database"])
	require.Equal(t, "disabled", resp.Checks["redis"])
}

func TestRejectsNonJSONBody(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader("username=x&password=y"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}
