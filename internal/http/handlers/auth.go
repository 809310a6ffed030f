package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/taskhub/internal/authz"
	"github.com/geocoder89/taskhub/internal/domain/role"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/security"
	"github.com/geocoder89/taskhub/internal/validation"
	"github.com/gin-gonic/gin"
)

const MsgInvalidCredentials = "Invalid credentials"

type UserReader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, p user.CreateParams) (user.User, error)
}

type TokenIssuer interface {
	Issue(id authz.Identity) (string, error)
}

type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	tokens     TokenIssuer
	revoker    TokenRevoker
	validator  *validation.Validator
	bcryptCost int
	log        *slog.Logger
}

// NewAuthHandler builds the auth endpoints. revoker may be nil, in which case
// logout only acknowledges the request.
func NewAuthHandler(
	users UserReader,
	userWriter UserWriter,
	tokens TokenIssuer,
	revoker TokenRevoker,
	v *validation.Validator,
	bcryptCost int,
	log *slog.Logger,
) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		tokens:     tokens,
		revoker:    revoker,
		validator:  v,
		bcryptCost: bcryptCost,
		log:        log,
	}
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  user.Summary `json:"user"`
}

func (h *AuthHandler) ValidateRegister() gin.HandlerFunc {
	return ValidateJSON(h.log, func(ctx context.Context, _ *gin.Context, req *user.RegisterRequest, invalid []validation.Invalid) ([]string, error) {
		return h.validator.Registration(ctx, *req, invalid...)
	})
}

func (h *AuthHandler) ValidateLogin() gin.HandlerFunc {
	return ValidateJSON(h.log, func(ctx context.Context, _ *gin.Context, req *user.LoginRequest, invalid []validation.Invalid) ([]string, error) {
		return h.validator.Login(ctx, *req, invalid...)
	})
}

func (h *AuthHandler) ValidateCreateUser() gin.HandlerFunc {
	return ValidateJSON(h.log, func(ctx context.Context, _ *gin.Context, req *user.CreateUserRequest, invalid []validation.Invalid) ([]string, error) {
		return h.validator.AdminCreateUser(ctx, *req, invalid...)
	})
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	req, ok := boundBody[user.RegisterRequest](ctx)
	if !ok {
		RespondInternal(ctx, "Failed to register user")
		return
	}

	u, ok := h.createUser(ctx, *req, "Failed to register user")
	if !ok {
		return
	}

	h.log.InfoContext(ctx.Request.Context(), "user registered",
		"user_id", u.ID, "email", u.Email, "ip", ctx.ClientIP())

	RespondData(ctx, http.StatusCreated, "User registered successfully", u.Summary())
}

// CreateUser is the admin path: any existing role may be assigned.
func (h *AuthHandler) CreateUser(ctx *gin.Context) {
	req, ok := boundBody[user.CreateUserRequest](ctx)
	if !ok {
		RespondInternal(ctx, "Failed to create user")
		return
	}

	u, ok := h.createUser(ctx, *req, "Failed to create user")
	if !ok {
		return
	}

	caller, _ := middlewares.Identity(ctx)
	h.log.InfoContext(ctx.Request.Context(), "user created by admin",
		"user_id", u.ID, "role", u.Role, "created_by", caller.UserID, "ip", ctx.ClientIP())

	RespondData(ctx, http.StatusCreated, "User created successfully", u.Summary())
}

func (h *AuthHandler) createUser(ctx *gin.Context, req user.RegisterRequest, failMsg string) (user.User, bool) {
	hash, err := security.HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "hash password failed", "err", err)
		RespondInternal(ctx, failMsg)
		return user.User{}, false
	}

	cctx, cancel := storeContext(ctx)
	defer cancel()

	u, err := h.userWriter.Create(cctx, req.Params(hash))
	switch {
	case errors.Is(err, user.ErrEmailTaken):
		RespondValidation(ctx, []string{validation.MsgEmailTaken})
		return user.User{}, false
	case errors.Is(err, role.ErrNotFound):
		RespondValidation(ctx, []string{validation.MsgRoleNotFound})
		return user.User{}, false
	case err != nil:
		h.log.ErrorContext(ctx.Request.Context(), "create user failed", "email", req.Email, "err", err)
		RespondInternal(ctx, failMsg)
		return user.User{}, false
	}
	return u, true
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	req, ok := boundBody[user.LoginRequest](ctx)
	if !ok {
		RespondInternal(ctx, "Failed to login")
		return
	}

	cctx, cancel := storeContext(ctx)
	defer cancel()

	u, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			security.SpendCompare(req.Password)
			h.log.WarnContext(ctx.Request.Context(), "login failed: unknown email", "ip", ctx.ClientIP())
			RespondUnauthorized(ctx, MsgInvalidCredentials)
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "login lookup failed", "err", err)
		RespondInternal(ctx, "Failed to login")
		return
	}

	if err := security.CheckPassword(u.PasswordHash, req.Password); err != nil {
		if !errors.Is(err, security.ErrPasswordMismatch) {
			h.log.ErrorContext(ctx.Request.Context(), "stored hash unusable", "user_id", u.ID, "err", err)
		} else {
			h.log.WarnContext(ctx.Request.Context(), "login failed: wrong password", "user_id", u.ID, "ip", ctx.ClientIP())
		}
		RespondUnauthorized(ctx, MsgInvalidCredentials)
		return
	}

	token, err := h.tokens.Issue(authz.Identity{UserID: u.ID, Email: u.Email, Role: authz.Role(u.Role)})
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "issue token failed", "user_id", u.ID, "err", err)
		RespondInternal(ctx, "Failed to login")
		return
	}

	h.log.InfoContext(ctx.Request.Context(), "login succeeded", "user_id", u.ID, "role", u.Role, "ip", ctx.ClientIP())

	RespondData(ctx, http.StatusOK, "Login successful", LoginResponse{Token: token, User: u.Summary()})
}

func (h *AuthHandler) Profile(ctx *gin.Context) {
	caller, ok := middlewares.Identity(ctx)
	if !ok {
		RespondUnauthorized(ctx, authz.MsgAuthRequired)
		return
	}

	cctx, cancel := storeContext(ctx)
	defer cancel()

	u, err := h.users.GetByID(cctx, caller.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "get profile failed", "user_id", caller.UserID, "err", err)
		RespondInternal(ctx, "Failed to get profile")
		return
	}

	RespondData(ctx, http.StatusOK, "", u)
}

// Logout denylists the presented token until it would have expired anyway.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	claims, ok := middlewares.Claims(ctx)
	if !ok {
		RespondUnauthorized(ctx, authz.MsgAuthRequired)
		return
	}

	if h.revoker != nil && claims.ID != "" && claims.ExpiresAt != nil {
		cctx, cancel := storeContext(ctx)
		defer cancel()

		if err := h.revoker.Revoke(cctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			h.log.ErrorContext(ctx.Request.Context(), "revoke token failed", "user_id", claims.UserID, "err", err)
			RespondInternal(ctx, "Failed to logout")
			return
		}
	}

	h.log.InfoContext(ctx.Request.Context(), "logout", "user_id", claims.UserID, "ip", ctx.ClientIP())
	RespondData(ctx, http.StatusOK, "Logout successful", nil)
}
