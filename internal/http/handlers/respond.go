package handlers

import (
	"net/http"

	"github.com/geocoder89/taskhub/internal/authz"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

const MsgValidationFailed = "Validation failed"

// Envelope is the body of every API response.
type Envelope struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message,omitempty"`
	Data      any      `json:"data,omitempty"`
	Errors    []string `json:"errors,omitempty"`
	RequestID string   `json:"requestId,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get(middlewares.CtxRequestID)

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondData(ctx *gin.Context, status int, message string, data any) {
	ctx.JSON(status, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func RespondError(ctx *gin.Context, status int, message string, errs []string) {
	ctx.JSON(status, Envelope{
		Success:   false,
		Message:   message,
		Errors:    errs,
		RequestID: requestIDFrom(ctx),
	})
}

func RespondValidation(ctx *gin.Context, errs []string) {
	RespondError(ctx, http.StatusBadRequest, MsgValidationFailed, errs)
}

func RespondBadRequest(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusBadRequest, message, nil)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, message, nil)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, message, nil)
}

// RespondDenial writes err when it is an authorization denial and reports
// whether it did.
func RespondDenial(ctx *gin.Context, err error) bool {
	d, ok := authz.AsDenial(err)
	if !ok {
		return false
	}
	RespondError(ctx, middlewares.DenialStatus(d), d.Message, nil)
	return true
}
