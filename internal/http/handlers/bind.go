package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	MsgInvalidJSON   = "Request body must be valid JSON"
	MsgBodyRequired  = "Request body is required"
	validateTimeout  = 3 * time.Second
	storeCallTimeout = 2 * time.Second
)

// CheckFunc runs the structural and referential checks for a payload.
// invalid lists fields whose JSON value had the wrong type.
type CheckFunc[T any] func(ctx context.Context, c *gin.Context, req *T, invalid []validation.Invalid) ([]string, error)

// ValidateJSON binds the body into T, runs check and either answers 400 with
// every problem found or attaches the payload for the handler. A value of the
// wrong type is reported alongside the other problems; unreadable bodies end
// validation early.
func ValidateJSON[T any](log *slog.Logger, check CheckFunc[T]) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req T
		var invalid []validation.Invalid
		if err := ctx.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			invalid = typeMismatches[T](ctx, err)
			if len(invalid) == 0 {
				msgs := bindErrorMessages(err)
				log.WarnContext(ctx.Request.Context(), "request body rejected",
					"path", ctx.Request.URL.Path, "ip", ctx.ClientIP(), "errors", msgs)
				RespondValidation(ctx, msgs)
				ctx.Abort()
				return
			}
		}

		cctx, cancel := config.WithTimeout(ctx.Request.Context(), validateTimeout)
		defer cancel()

		problems, err := check(cctx, ctx, &req, invalid)
		if err != nil {
			log.ErrorContext(ctx.Request.Context(), "validation lookup failed",
				"path", ctx.Request.URL.Path, "err", err)
			RespondInternal(ctx, "Validation error occurred")
			ctx.Abort()
			return
		}
		if len(problems) > 0 {
			log.WarnContext(ctx.Request.Context(), "validation failed",
				"path", ctx.Request.URL.Path, "ip", ctx.ClientIP(), "errors", problems)
			RespondValidation(ctx, problems)
			ctx.Abort()
			return
		}

		middlewares.SetBody(ctx, &req)
		ctx.Next()
	}
}

// boundBody returns the payload attached by ValidateJSON.
func boundBody[T any](ctx *gin.Context) (*T, bool) {
	v, ok := middlewares.Body(ctx)
	if !ok {
		return nil, false
	}
	req, ok := v.(*T)
	return req, ok
}

// typeMismatches lists every top-level field of the cached body whose value
// cannot be decoded into T. Fields are decoded one at a time since
// encoding/json keeps only the first mismatch.
func typeMismatches[T any](ctx *gin.Context, err error) []validation.Invalid {
	var typeError *json.UnmarshalTypeError
	if !errors.As(err, &typeError) || strings.TrimSpace(typeError.Field) == "" {
		return nil
	}
	first := []validation.Invalid{typeMismatch(typeError)}

	raw, ok := ctx.Get(gin.BodyBytesKey)
	if !ok {
		return first
	}
	body, _ := raw.([]byte)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return first
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []validation.Invalid
	for _, k := range keys {
		one, err := json.Marshal(map[string]json.RawMessage{k: fields[k]})
		if err != nil {
			continue
		}
		var scratch T
		var te *json.UnmarshalTypeError
		if err := json.Unmarshal(one, &scratch); errors.As(err, &te) && te.Field != "" {
			out = append(out, typeMismatch(te))
		}
	}
	if len(out) == 0 {
		return first
	}
	return out
}

func typeMismatch(te *json.UnmarshalTypeError) validation.Invalid {
	field := strings.TrimSpace(te.Field)
	return validation.Invalid{
		Field:   field,
		Message: fmt.Sprintf("%s must be of type %s", field, te.Type.String()),
	}
}

func bindErrorMessages(err error) []string {
	if errors.Is(err, io.EOF) {
		return []string{MsgBodyRequired}
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return []string{middlewares.MsgBodyTooLarge}
	}

	var syntaxError *json.SyntaxError
	if errors.As(err, &syntaxError) || errors.Is(err, io.ErrUnexpectedEOF) {
		return []string{MsgInvalidJSON}
	}

	var typeError *json.UnmarshalTypeError
	if errors.As(err, &typeError) {
		if strings.TrimSpace(typeError.Field) == "" {
			return []string{MsgInvalidJSON}
		}
		return []string{typeMismatch(typeError).Message}
	}

	return []string{MsgInvalidJSON}
}

func storeContext(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return config.WithTimeout(ctx.Request.Context(), storeCallTimeout)
}
