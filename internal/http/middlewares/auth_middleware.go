package middlewares

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/geocoder89/taskhub/internal/actorctx"
	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	MsgTokenRequired      = "Access token required"
	MsgInvalidTokenFormat = "Invalid token format"
	MsgInvalidToken       = "Invalid or expired token"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifyClaims(token string) (*auth.Claims, error)
}

type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type DecisionRecorder interface {
	RecordDecision(gate string, allowed bool)
	RecordAuthFailure(reason string)
}

type AuthMiddleware struct {
	jwt     TokenVerifier
	revoked RevocationChecker
	metrics DecisionRecorder
	log     *slog.Logger
}

type Option func(*AuthMiddleware)

func WithRevocation(r RevocationChecker) Option {
	return func(m *AuthMiddleware) { m.revoked = r }
}

func WithMetrics(d DecisionRecorder) Option {
	return func(m *AuthMiddleware) { m.metrics = d }
}

func NewAuthMiddleware(jwt TokenVerifier, log *slog.Logger, opts ...Option) *AuthMiddleware {
	if log == nil {
		log = slog.Default()
	}
	m := &AuthMiddleware{jwt: jwt, log: log}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			m.rejectAuth(c, "missing_token", MsgTokenRequired, nil)
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if raw == "" {
			m.rejectAuth(c, "malformed_header", MsgInvalidTokenFormat, nil)
			return
		}

		claims, err := m.jwt.VerifyClaims(raw)
		if err != nil {
			m.rejectAuth(c, "invalid_token", MsgInvalidToken, err)
			return
		}

		if m.revoked != nil {
			revoked, err := m.revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// fail closed when the denylist is unreachable
				m.rejectAuth(c, "revocation_unavailable", MsgInvalidToken, err)
				return
			}
			if revoked {
				m.rejectAuth(c, "revoked_token", MsgInvalidToken, nil)
				return
			}
		}

		id := claims.Identity()
		c.Set(ctxIdentityKey, id)
		c.Set(ctxClaimsKey, claims)
		c.Request = c.Request.WithContext(actorctx.WithActor(c.Request.Context(), actorctx.Actor{
			UserID: id.UserID,
			Role:   string(id.Role),
		}))

		m.log.InfoContext(c.Request.Context(), "authenticated",
			"email", id.Email,
			"path", c.Request.URL.Path,
		)

		c.Next()
	}
}

func (m *AuthMiddleware) rejectAuth(c *gin.Context, reason, message string, err error) {
	attrs := []any{
		"reason", reason,
		"ip", c.ClientIP(),
		"path", c.Request.URL.Path,
	}
	if err != nil {
		attrs = append(attrs, "err", err)
	}
	m.log.WarnContext(c.Request.Context(), "authentication failed", attrs...)

	if m.metrics != nil {
		m.metrics.RecordAuthFailure(reason)
	}
	abort(c, http.StatusUnauthorized, message)
}
