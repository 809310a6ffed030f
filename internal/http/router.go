package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type UserRepo interface {
	Create(ctx context.Context, p user.CreateParams) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Update(ctx context.Context, id string, p user.UpdateParams) (user.User, error)
	Delete(ctx context.Context, id string) error
}

// Revocations is the token denylist. Leave it nil to run without one.
type Revocations interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type Deps struct {
	Users       UserRepo
	Roles       handlers.RoleReader
	Tasks       handlers.TaskStore
	Tokens      *auth.Manager
	Revocations Revocations
	Prom        *observability.Prom
	Ready       map[string]handlers.Check
	// Draining reports that shutdown has begun; readiness then fails.
	Draining    func() bool
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	if deps.Prom == nil {
		deps.Prom = observability.NewProm(prometheus.NewRegistry())
	}

	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(deps.Prom.GinHandleMiddleware())
	r.Use(middlewares.SecurityHeaders(!cfg.IsProd()))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))

	// health + metrics
	h := handlers.NewHealthHandler(log, deps.Ready, deps.Draining)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(deps.Prom.Handler()))

	opts := []middlewares.Option{middlewares.WithMetrics(deps.Prom)}
	var revoker handlers.TokenRevoker
	if deps.Revocations != nil {
		opts = append(opts, middlewares.WithRevocation(deps.Revocations))
		revoker = deps.Revocations
	}
	mw := middlewares.NewAuthMiddleware(deps.Tokens, log, opts...)

	v := validation.New(deps.Roles, deps.Users)

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Users, deps.Tokens, revoker, v, cfg.BcryptCost, log)
	usersHandler := handlers.NewUsersHandler(deps.Users, deps.Roles, v, log)
	rolesHandler := handlers.NewRolesHandler(deps.Roles, log)
	tasksHandler := handlers.NewTasksHandler(deps.Tasks, v, log)

	api := r.Group("/api", middlewares.RequireJSON())

	// auth
	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.ValidateRegister(), authHandler.Register)
	authGroup.POST("/login", authHandler.ValidateLogin(), authHandler.Login)
	authGroup.GET("/profile", mw.RequireAuth(), authHandler.Profile)
	authGroup.POST("/logout", mw.RequireAuth(), authHandler.Logout)
	authGroup.POST("/admin/create-user",
		mw.RequireAuth(),
		mw.RequireAdmin(),
		authHandler.ValidateCreateUser(),
		authHandler.CreateUser,
	)

	// users
	users := api.Group("/users", mw.RequireAuth())
	users.GET("", mw.RequireAdmin(), usersHandler.List)
	users.GET("/:id", usersHandler.Get)
	users.PUT("/:id", usersHandler.ValidateUpdate(), usersHandler.Update)
	users.DELETE("/:id", mw.RequireAdmin(), usersHandler.Delete)

	// roles
	api.GET("/roles", rolesHandler.List)
	api.GET("/roles/:id/permissions", mw.RequireAuth(), mw.RequireAdmin(), rolesHandler.Permissions)

	// tasks
	tasks := api.Group("/tasks", mw.RequireAuth())
	tasks.GET("", tasksHandler.List)
	tasks.GET("/status/:status", tasksHandler.ListByStatus)
	tasks.GET("/priority/:priority", tasksHandler.ListByPriority)
	tasks.GET("/:id", mw.CanViewTask(), tasksHandler.Get)
	tasks.POST("",
		mw.RequireManager(),
		tasksHandler.ValidateCreate(),
		mw.CanAssignHighPriority(),
		tasksHandler.Create,
	)
	tasks.PUT("/:id",
		tasksHandler.ValidateUpdate(),
		mw.CanUpdateTask(),
		mw.CanAssignHighPriority(),
		tasksHandler.Update,
	)
	tasks.DELETE("/:id", mw.RequireAdmin(), tasksHandler.Delete)

	r.NoRoute(middlewares.NotFound())

	return r
}
