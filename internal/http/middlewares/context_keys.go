package middlewares

import (
	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/authz"
	"github.com/gin-gonic/gin"
)

const (
	CtxRequestID = "request_id"

	ctxIdentityKey = "auth.identity"
	ctxClaimsKey   = "auth.claims"
	ctxBodyKey     = "request.body"
)

// Identity returns the caller attached by RequireAuth.
func Identity(c *gin.Context) (authz.Identity, bool) {
	v, ok := c.Get(ctxIdentityKey)
	if !ok {
		return authz.Identity{}, false
	}
	id, ok := v.(authz.Identity)
	return id, ok && id.UserID != ""
}

func Claims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ctxClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok && claims != nil
}

// SetBody stores a request payload that already passed validation.
func SetBody(c *gin.Context, body any) {
	c.Set(ctxBodyKey, body)
}

func Body(c *gin.Context) (any, bool) {
	return c.Get(ctxBodyKey)
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
	})
}
