package middlewares_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/authz"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var tokens = auth.NewManager(auth.Config{Secret: "middleware-test-secret"})

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], f.err
}

type recorder struct {
	decisions map[string]int
	failures  map[string]int
}

func newRecorder() *recorder {
	return &recorder{decisions: map[string]int{}, failures: map[string]int{}}
}

func (r *recorder) RecordDecision(gate string, allowed bool) {
	key := gate + ":deny"
	if allowed {
		key = gate + ":allow"
	}
	r.decisions[key]++
}

func (r *recorder) RecordAuthFailure(reason string) { r.failures[reason]++ }

func issue(t *testing.T, role authz.Role) (string, string) {
	t.Helper()
	tok, err := tokens.Issue(authz.Identity{UserID: uuid.NewString(), Email: "u@example.com", Role: role})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	claims, err := tokens.VerifyClaims(tok)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	return tok, claims.ID
}

func serve(r *gin.Engine, method, path, authHeader, body string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v body=%s", err, w.Body.String())
	}
	if body.Success {
		t.Fatalf("expected failure envelope, body=%s", w.Body.String())
	}
	return body.Message
}

func ok(c *gin.Context) { c.Status(http.StatusNoContent) }

func TestRequireAuth(t *testing.T) {
	valid, _ := issue(t, authz.Employee)
	revokedTok, revokedJTI := issue(t, authz.Employee)
	other := auth.NewManager(auth.Config{Secret: "someone-else"})
	forged, err := other.Issue(authz.Identity{UserID: uuid.NewString(), Role: authz.SuperAdmin})
	if err != nil {
		t.Fatalf("issue forged: %v", err)
	}

	tests := []struct {
		name        string
		header      string
		revErr      error
		wantStatus  int
		wantMessage string
		wantReason  string
	}{
		{name: "valid token", header: "Bearer " + valid, wantStatus: http.StatusNoContent},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized, wantMessage: middlewares.MsgTokenRequired, wantReason: "missing_token"},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantMessage: middlewares.MsgTokenRequired, wantReason: "missing_token"},
		{name: "empty bearer", header: "Bearer    ", wantStatus: http.StatusUnauthorized, wantMessage: middlewares.MsgInvalidTokenFormat, wantReason: "malformed_header"},
		{name: "garbage token", header: "Bearer abc.def.ghi", wantStatus: http.StatusUnauthorized, wantMessage: middlewares.MsgInvalidToken, wantReason: "invalid_token"},
		{name: "wrong secret", header: "Bearer " + forged, wantStatus: http.StatusUnauthorized, wantMessage: middlewares.MsgInvalidToken, wantReason: "invalid_token"},
		{name: "revoked token", header: "Bearer " + revokedTok, wantStatus: http.StatusUnauthorized, wantMessage: middlewares.MsgInvalidToken, wantReason: "revoked_token"},
		{name: "denylist unreachable", header: "Bearer " + valid, revErr: errors.New("dial tcp: refused"), wantStatus: http.StatusUnauthorized, wantMessage: middlewares.MsgInvalidToken, wantReason: "revocation_unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecorder()
			revs := &fakeRevocations{revoked: map[string]bool{revokedJTI: true}, err: tt.revErr}
			mw := middlewares.NewAuthMiddleware(tokens, discard(),
				middlewares.WithRevocation(revs),
				middlewares.WithMetrics(rec),
			)

			r := gin.New()
			r.GET("/p", mw.RequireAuth(), func(c *gin.Context) {
				if _, found := middlewares.Identity(c); !found {
					t.Errorf("identity not attached")
				}
				ok(c)
			})

			w := serve(r, http.MethodGet, "/p", tt.header, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantMessage != "" {
				if got := message(t, w); got != tt.wantMessage {
					t.Fatalf("got message %q, want %q", got, tt.wantMessage)
				}
			}
			if tt.wantReason != "" && rec.failures[tt.wantReason] != 1 {
				t.Fatalf("auth failure %q not recorded: %v", tt.wantReason, rec.failures)
			}
		})
	}
}

func TestRoleGates(t *testing.T) {
	rec := newRecorder()
	mw := middlewares.NewAuthMiddleware(tokens, discard(), middlewares.WithMetrics(rec))

	r := gin.New()
	r.GET("/super", mw.RequireAuth(), mw.RequireSuperAdmin(), ok)
	r.GET("/admin", mw.RequireAuth(), mw.RequireAdmin(), ok)
	r.GET("/manager", mw.RequireAuth(), mw.RequireManager(), ok)
	r.GET("/custom", mw.RequireAuth(), mw.RequireAnyOf(authz.Employee), ok)
	r.GET("/unauthenticated", mw.RequireAdmin(), ok)

	allowed := map[string]map[authz.Role]bool{
		"/super":   {authz.SuperAdmin: true},
		"/admin":   {authz.SuperAdmin: true, authz.Admin: true},
		"/manager": {authz.SuperAdmin: true, authz.Admin: true, authz.Manager: true},
		"/custom":  {authz.Employee: true},
	}

	for path, roles := range allowed {
		for _, role := range authz.Roles() {
			tok, _ := issue(t, role)
			w := serve(r, http.MethodGet, path, "Bearer "+tok, "")

			want := http.StatusForbidden
			if roles[role] {
				want = http.StatusNoContent
			}
			if w.Code != want {
				t.Fatalf("%s as %s: got status %d, want %d", path, role, w.Code, want)
			}
			if want == http.StatusForbidden {
				if got := message(t, w); got != authz.MsgInsufficient {
					t.Fatalf("%s as %s: got message %q", path, role, got)
				}
			}
		}
	}

	// a gate mounted without RequireAuth still refuses anonymous callers
	w := serve(r, http.MethodGet, "/unauthenticated", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", w.Code)
	}

	if rec.decisions["admin_or_above:deny"] == 0 || rec.decisions["admin_or_above:allow"] == 0 {
		t.Fatalf("decisions not recorded: %v", rec.decisions)
	}
}

func TestCanAssignHighPriority(t *testing.T) {
	mw := middlewares.NewAuthMiddleware(tokens, discard())

	r := gin.New()
	r.POST("/tasks", mw.RequireAuth(), mw.CanAssignHighPriority(), ok)

	tests := []struct {
		role authz.Role
		body string
		want int
	}{
		{authz.Employee, `{"priority":"high"}`, http.StatusForbidden},
		{authz.Employee, `{"priority":"low"}`, http.StatusNoContent},
		{authz.Employee, `{"priority":null}`, http.StatusNoContent},
		{authz.Employee, `{}`, http.StatusNoContent},
		{authz.Manager, `{"priority":"high"}`, http.StatusNoContent},
		{authz.Admin, `{"priority":"high"}`, http.StatusNoContent},
		{authz.SuperAdmin, `{"priority":"high"}`, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+" "+tt.body, func(t *testing.T) {
			tok, _ := issue(t, tt.role)
			w := serve(r, http.MethodPost, "/tasks", "Bearer "+tok, tt.body)
			if w.Code != tt.want {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.want, w.Body.String())
			}
			if tt.want == http.StatusForbidden {
				if got := message(t, w); got != authz.MsgHighPriority {
					t.Fatalf("got message %q", got)
				}
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.SecurityHeaders(true))
	r.GET("/x", ok)

	w := serve(r, http.MethodGet, "/x", "", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("got status %d", w.Code)
	}

	want := map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"Referrer-Policy":        "no-referrer",
	}
	for h, v := range want {
		if got := w.Header().Get(h); got != v {
			t.Fatalf("header %s: got %q, want %q", h, got, v)
		}
	}
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS must not be sent in development")
	}
}

func TestRequireJSONAndBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.MaxBodyBytes(16), middlewares.RequireJSON())
	r.POST("/x", ok)

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("name=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("form body: got status %d, want 400", w.Code)
	}

	w = serve(r, http.MethodPost, "/x", "", `{"title":"way too long for the limit"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("oversize body: got status %d, want 400", w.Code)
	}
	if got := message(t, w); got != middlewares.MsgBodyTooLarge {
		t.Fatalf("got message %q", got)
	}

	w = serve(r, http.MethodPost, "/x", "", `{}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("small json body: got status %d", w.Code)
	}
}

func TestRequestIDAndNotFound(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.RequestID(), middlewares.RequestLogger(discard()))
	r.NoRoute(middlewares.NotFound())

	w := serve(r, http.MethodGet, "/missing", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d", w.Code)
	}
	if got := message(t, w); got != "Route not found" {
		t.Fatalf("got message %q", got)
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("request id header missing")
	}
}
