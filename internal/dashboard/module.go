package dashboard

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivanjorgee/maxconnect/internal/events"
	apphttp "github.com/ivanjorgee/maxconnect/internal/http"
	"github.com/ivanjorgee/maxconnect/platform/config"
	"github.com/ivanjorgee/maxconnect/platform/httpkit"
)

// Module is the dashboard bounded context module implementing http.Module.
type Module struct {
	service *Service
}

// NewModule wires the dashboard module and subscribes the cache to funnel
// events so stats never lag a macro by more than one read.
func NewModule(pool *pgxpool.Pool, bus events.Bus, cfg config.DashboardConfig) *Module {
	svc := NewService(NewRepository(pool), cfg.GetDashboardCacheTTL())

	invalidate := events.HandlerFunc(func(context.Context, events.Event) error {
		svc.Invalidate()
		return nil
	})
	bus.Subscribe(events.LeadFunnelUpdated{}.EventName(), invalidate)
	bus.Subscribe(events.LeadReplied{}.EventName(), invalidate)

	return &Module{service: svc}
}

func (m *Module) Name() string {
	return "dashboard"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/dashboard", m.stats)
}

func (m *Module) stats(c *gin.Context) {
	stats, err := m.service.Stats(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, stats)
}
