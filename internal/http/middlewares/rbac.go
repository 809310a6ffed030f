package middlewares

import (
	"net/http"

	"github.com/geocoder89/taskhub/internal/authz"
	"github.com/gin-gonic/gin"
)

// RequireAnyOf admits callers whose role is exactly one of roles.
func (m *AuthMiddleware) RequireAnyOf(roles ...authz.Role) gin.HandlerFunc {
	return m.roleGate("any_of", authz.RoleSet(roles))
}

func (m *AuthMiddleware) RequireSuperAdmin() gin.HandlerFunc {
	return m.roleGate("super_admin_only", authz.SuperAdminOnly)
}

func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return m.roleGate("admin_or_above", authz.AdminOrAbove)
}

func (m *AuthMiddleware) RequireManager() gin.HandlerFunc {
	return m.roleGate("manager_or_above", authz.ManagerOrAbove)
}

func (m *AuthMiddleware) roleGate(gate string, allowed authz.RoleSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		var caller *authz.Identity
		if id, ok := Identity(c); ok {
			caller = &id
		}

		if err := authz.RequireAnyOf(caller, allowed); err != nil {
			m.deny(c, gate, err, "required", allowed.Strings())
			return
		}

		m.allow(c, gate)
		c.Next()
	}
}

func (m *AuthMiddleware) allow(c *gin.Context, gate string) {
	if m.metrics != nil {
		m.metrics.RecordDecision(gate, true)
	}
	m.log.DebugContext(c.Request.Context(), "authorization granted", "gate", gate)
}

// deny logs the refusal with the caller and aborts with the denial's status.
func (m *AuthMiddleware) deny(c *gin.Context, gate string, err error, extra ...any) {
	if m.metrics != nil {
		m.metrics.RecordDecision(gate, false)
	}

	status := http.StatusForbidden
	message := err.Error()
	if d, ok := authz.AsDenial(err); ok {
		status = DenialStatus(d)
		message = d.Message
	}

	attrs := []any{
		"gate", gate,
		"ip", c.ClientIP(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	}
	if id, ok := Identity(c); ok {
		attrs = append(attrs, "user_id", id.UserID, "role", string(id.Role))
	}
	attrs = append(attrs, extra...)
	m.log.WarnContext(c.Request.Context(), "authorization denied", attrs...)

	abort(c, status, message)
}

// DenialStatus maps a denial to its HTTP status.
func DenialStatus(d *authz.Denial) int {
	switch d.Kind {
	case authz.Unauthenticated:
		return http.StatusUnauthorized
	case authz.Rejected:
		return http.StatusBadRequest
	default:
		return http.StatusForbidden
	}
}
