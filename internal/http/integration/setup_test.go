package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/cache"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/role"
	"github.com/geocoder89/taskhub/internal/domain/user"
	apphttp "github.com/geocoder89/taskhub/internal/http"
	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/geocoder89/taskhub/internal/repo/memory"
	"github.com/geocoder89/taskhub/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "password123"

type app struct {
	router *gin.Engine
	store  *memory.Store
	redis  *miniredis.Miniredis

	superAdmin user.User
	admin      user.User
	manager    user.User
	employee   user.User
	coworker   user.User
}

func testConfig() config.Config {
	return config.Config{
		Env:          "test",
		ServiceName:  "taskhub-test",
		StoreKind:    config.StoreMemory,
		JWTSecret:    "integration-secret",
		JWTTTL:       time.Hour,
		BcryptCost:   bcrypt.MinCost,
		MaxBodyBytes: 1 << 20,
	}
}

func setupApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	store := memory.NewStore()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	router := apphttp.NewRouter(logger, cfg, apphttp.Deps{
		Users:       store.Users,
		Roles:       cache.NewRoles(store.Roles, 16, time.Minute),
		Tasks:       store.Tasks,
		Tokens:      auth.NewManager(auth.Config{Secret: cfg.JWTSecret, TTL: cfg.JWTTTL}),
		Revocations: auth.NewRevocationStore(rdb),
		Ready:       map[string]handlers.Check{"store": store.Ping},
	})

	a := &app{router: router, store: store, redis: mr}
	a.superAdmin = a.seedUser(t, "Root", "root@example.com", role.SuperAdminID)
	a.admin = a.seedUser(t, "Ada", "ada@example.com", role.AdminID)
	a.manager = a.seedUser(t, "Max", "max@example.com", role.ManagerID)
	a.employee = a.seedUser(t, "Eve", "eve@example.com", role.EmployeeID)
	a.coworker = a.seedUser(t, "Carl", "carl@example.com", role.EmployeeID)
	return a
}

func (a *app) seedUser(t *testing.T, name, email, roleID string) user.User {
	t.Helper()

	hash, err := security.HashPassword(testPassword, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u, err := a.store.Users.Create(context.Background(), user.CreateParams{
		Name: name, Email: email, PasswordHash: hash, RoleID: roleID,
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

type response struct {
	code int
	env  envelope
	raw  string
}

func (a *app) call(t *testing.T, method, path, token string, body any) response {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	res := response{code: w.Code, raw: w.Body.String()}
	_ = json.Unmarshal(w.Body.Bytes(), &res.env)
	return res
}

func (a *app) login(t *testing.T, email string) string {
	t.Helper()

	res := a.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": testPassword,
	})
	if res.code != http.StatusOK {
		t.Fatalf("login %s: got status %d, body=%s", email, res.code, res.raw)
	}

	var out handlers.LoginResponse
	if err := json.Unmarshal(res.env.Data, &out); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return out.Token
}

func expect(t *testing.T, res response, status int, message string) {
	t.Helper()
	if res.code != status {
		t.Fatalf("got status %d, want %d, body=%s", res.code, status, res.raw)
	}
	if message != "" && res.env.Message != message {
		t.Fatalf("got message %q, want %q", res.env.Message, message)
	}
}
