// Package auth provides the credential login bounded context.
package auth

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivanjorgee/maxconnect/internal/auth/handler"
	"github.com/ivanjorgee/maxconnect/internal/auth/repository"
	"github.com/ivanjorgee/maxconnect/internal/auth/service"
	apphttp "github.com/ivanjorgee/maxconnect/internal/http"
	"github.com/ivanjorgee/maxconnect/platform/config"
	"github.com/ivanjorgee/maxconnect/platform/logger"
	"github.com/ivanjorgee/maxconnect/platform/validator"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, log)

	return &Module{handler: handler.New(svc, val)}
}

func (m *Module) Name() string {
	return "auth"
}

// RegisterRoutes mounts the public sign-in behind the stricter auth rate
// limiter and the profile endpoint behind JWT auth.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	authGroup := ctx.V1.Group("/auth")
	authGroup.POST("/login", ctx.AuthRateLimiter.RateLimit(), m.handler.SignIn)

	ctx.Protected.GET("/auth/me", m.handler.Me)
}

var _ apphttp.Module = (*Module)(nil)
