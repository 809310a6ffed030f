package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/authz"
	"github.com/geocoder89/taskhub/internal/domain/role"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Make sure Gin does not spam the console during the test
func init() {
	gin.SetMode(gin.TestMode)
}

var testTokens = auth.NewManager(auth.Config{Secret: "handlers-test-secret"})

func newUUID() string {
	return uuid.NewString()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to unmarshal response: %v body=%s", err, w.Body.String())
	}
	return env
}

// Fake repositories

type fakeUsersRepo struct {
	createFn     func(ctx context.Context, p user.CreateParams) (user.User, error)
	getFn        func(ctx context.Context, id string) (user.User, error)
	getByEmailFn func(ctx context.Context, email string) (user.User, error)
	listFn       func(ctx context.Context) ([]user.User, error)
	updateFn     func(ctx context.Context, id string, p user.UpdateParams) (user.User, error)
	deleteFn     func(ctx context.Context, id string) error
}

func (f *fakeUsersRepo) Create(ctx context.Context, p user.CreateParams) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}
	return user.User{ID: newUUID(), Name: p.Name, Email: p.Email, RoleID: p.RoleID}, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return user.User{ID: id}, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersRepo) List(ctx context.Context) ([]user.User, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return []user.User{}, nil
}

func (f *fakeUsersRepo) Update(ctx context.Context, id string, p user.UpdateParams) (user.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, p)
	}
	return user.User{ID: id}, nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

// fakeRolesRepo serves the default catalog.
type fakeRolesRepo struct {
	permissionsFn func(ctx context.Context, roleID string) ([]role.Permission, error)
}

func (f *fakeRolesRepo) GetByID(_ context.Context, id string) (role.Role, error) {
	for _, r := range role.DefaultRoles {
		if r.ID == id {
			return r, nil
		}
	}
	return role.Role{}, role.ErrNotFound
}

func (f *fakeRolesRepo) List(_ context.Context) ([]role.Role, error) {
	return append([]role.Role(nil), role.DefaultRoles...), nil
}

func (f *fakeRolesRepo) Permissions(ctx context.Context, roleID string) ([]role.Permission, error) {
	if f.permissionsFn != nil {
		return f.permissionsFn(ctx, roleID)
	}
	return nil, nil
}

type fakeTasksRepo struct {
	createFn func(ctx context.Context, t task.Task) (task.Task, error)
	getFn    func(ctx context.Context, id string) (task.Task, error)
	listFn   func(ctx context.Context, f task.ListFilter) ([]task.Task, error)
	updateFn func(ctx context.Context, id string, p task.UpdateParams) (task.Task, error)
	deleteFn func(ctx context.Context, id string) error
}

func (f *fakeTasksRepo) Create(ctx context.Context, t task.Task) (task.Task, error) {
	if f.createFn != nil {
		return f.createFn(ctx, t)
	}
	return t, nil
}

func (f *fakeTasksRepo) GetByID(ctx context.Context, id string) (task.Task, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return task.Task{}, task.ErrNotFound
}

func (f *fakeTasksRepo) List(ctx context.Context, filter task.ListFilter) ([]task.Task, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	return []task.Task{}, nil
}

func (f *fakeTasksRepo) Update(ctx context.Context, id string, p task.UpdateParams) (task.Task, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, p)
	}
	return task.Task{ID: id}, nil
}

func (f *fakeTasksRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

// small helper which mounts one route; authenticated routes get RequireAuth first.
func setupRouter(method, path string, authenticated bool, chain ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	if authenticated {
		mw := middlewares.NewAuthMiddleware(testTokens, discardLogger())
		chain = append([]gin.HandlerFunc{mw.RequireAuth()}, chain...)
	}
	r.Handle(method, path, chain...)
	return r
}

type caller struct {
	id   string
	role authz.Role
}

func (c caller) identity() authz.Identity {
	return authz.Identity{UserID: c.id, Email: "caller@example.com", Role: c.role}
}

func do(t *testing.T, r *gin.Engine, method, target, body string, who *caller) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if who != nil {
		tok, err := testTokens.Issue(who.identity())
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, want, w.Body.String())
	}
}
