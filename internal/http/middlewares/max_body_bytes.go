package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const MsgBodyTooLarge = "Request body too large"

// MaxBodyBytes caps request bodies. Declared oversize bodies are refused
// up front; chunked ones fail when the handler reads past max.
func MaxBodyBytes(max int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if max <= 0 {
			ctx.Next()
			return
		}
		if ctx.Request.ContentLength > max {
			abort(ctx, http.StatusBadRequest, MsgBodyTooLarge)
			return
		}

		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, max)

		ctx.Next()
	}
}
