// Package leads is the cadence bounded context: the lead funnel, the
// message template catalog, macro transitions and the follow-up sweeps.
package leads

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivanjorgee/maxconnect/internal/events"
	apphttp "github.com/ivanjorgee/maxconnect/internal/http"
	"github.com/ivanjorgee/maxconnect/internal/leads/handler"
	"github.com/ivanjorgee/maxconnect/internal/leads/repository"
	"github.com/ivanjorgee/maxconnect/internal/leads/service"
	"github.com/ivanjorgee/maxconnect/platform/logger"
	"github.com/ivanjorgee/maxconnect/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the leads module. enqueuer may be nil when no task queue
// is configured; the enqueue route is then not mounted.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, cfg service.CadenceConfig, enqueuer handler.SweepEnqueuer, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, log, cfg)

	return &Module{
		handler: handler.New(svc, val, enqueuer),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service exposes the leads service to other composition roots, the
// scheduler worker in particular.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the leads routes: CRUD and macros behind auth, the
// template catalog behind auth, and the sweeps behind the cron secret.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
	m.handler.RegisterCatalogRoutes(ctx.Protected)
	m.handler.RegisterCronRoutes(ctx.Cron)
}

var _ apphttp.Module = (*Module)(nil)
