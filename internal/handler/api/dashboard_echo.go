package api

import (
	"net/http"

	"OmniTrade/internal/domain/models"
	"OmniTrade/internal/services/governance"
	"OmniTrade/internal/usecase"
	xhttp "OmniTrade/pkg/http"
	"OmniTrade/pkg/http/middleware"
	xlogger "OmniTrade/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DashboardEchoHandler exposes the session over the operator API.
type DashboardEchoHandler struct {
	logger    *xlogger.Logger
	dashboard *usecase.Dashboard
	limiter   middleware.Limiter
}

// NewDashboardEchoHandler builds the handler. A nil limiter leaves the
// mutating routes unthrottled.
func NewDashboardEchoHandler(logger *xlogger.Logger, d *usecase.Dashboard, limiter middleware.Limiter) *DashboardEchoHandler {
	return &DashboardEchoHandler{logger: logger, dashboard: d, limiter: limiter}
}

func (h *DashboardEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Status)

	g := e.Group("/api")
	g.GET("/state", h.State)
	g.GET("/bots", h.Bots)
	g.GET("/governance", h.Governance)
	g.GET("/governance/evaluate", h.Evaluate)
	g.GET("/clock", h.Clock)

	var mw []echo.MiddlewareFunc
	if h.limiter != nil {
		mw = append(mw, middleware.RateLimit(h.limiter))
	}
	g.POST("/bots/:id/toggle", h.Toggle, mw...)
	g.POST("/bots/:id/initialize", h.Initialize, mw...)
	g.PUT("/metrics", h.SetMetrics, mw...)
	g.PUT("/view", h.SetView, mw...)
	g.POST("/advice/refresh", h.RefreshAdvice, mw...)
}

// Status is the liveness document; it skips the envelope.
func (h *DashboardEchoHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "online", "system": "Omnitrade OS"})
}

func (h *DashboardEchoHandler) State(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, h.dashboard.Snapshot())
}

func (h *DashboardEchoHandler) Bots(c echo.Context) error {
	bots := h.dashboard.Snapshot().Bots
	return xhttp.ListResponse(c, bots, int64(len(bots)))
}

func (h *DashboardEchoHandler) Toggle(c echo.Context) error {
	req := &models.BotRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	bot, err := h.dashboard.Toggle(req.ID)
	if err != nil {
		return xhttp.AppErrorResponse(c, h.botError(req.ID, err))
	}
	return xhttp.SuccessResponse(c, bot)
}

func (h *DashboardEchoHandler) Initialize(c echo.Context) error {
	req := &models.BotRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	entry, err := h.dashboard.Initialize(req.ID)
	if err != nil {
		return xhttp.AppErrorResponse(c, h.botError(req.ID, err))
	}
	return xhttp.SuccessResponse(c, entry)
}

func (h *DashboardEchoHandler) Governance(c echo.Context) error {
	snap := h.dashboard.Snapshot()
	return xhttp.SuccessResponse(c, models.HealthReport{HealthScore: snap.Health, Mode: snap.Mode})
}

// Evaluate runs the evaluator on arbitrary inputs without touching state.
func (h *DashboardEchoHandler) Evaluate(c echo.Context) error {
	req := &models.EvaluateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, governance.Evaluate(models.Uncertainty(req.Uncertainty), req.Drawdown))
}

func (h *DashboardEchoHandler) SetMetrics(c echo.Context) error {
	req := &models.MetricsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snap := h.dashboard.SetMetrics(req.SystemMetrics())
	h.logger.Info("system metrics updated",
		xlogger.Float64("drawdown", req.Drawdown),
		xlogger.Int("health", snap.Health),
		xlogger.String("mode", string(snap.Mode)),
	)
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"metrics": snap.Metrics,
		"health":  snap.Health,
		"mode":    snap.Mode,
	})
}

func (h *DashboardEchoHandler) SetView(c echo.Context) error {
	req := &models.ViewRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	snap := h.dashboard.SetView(models.View(req.View))
	return xhttp.SuccessResponse(c, map[string]models.View{"view": snap.View})
}

// RefreshAdvice answers 202; the text arrives on the next snapshot.
func (h *DashboardEchoHandler) RefreshAdvice(c echo.Context) error {
	snap, err := h.dashboard.RefreshAdvice()
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("advice is unavailable during shutdown").WithError(err))
	}
	return xhttp.AcceptedResponse(c, map[string]bool{"adviceLoading": snap.AdviceLoading})
}

func (h *DashboardEchoHandler) Clock(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.dashboard.Clock())
}

func (h *DashboardEchoHandler) botError(id string, err error) error {
	switch {
	case usecase.IsNotFound(err):
		return xhttp.NotFoundError("bot not found").WithParam("id", id).WithError(err)
	case usecase.IsForbidden(err):
		return xhttp.ForbiddenError("bot is inactive").WithParam("id", id).WithError(err)
	}
	h.logger.Error("bot operation failed", xlogger.String("id", id), xlogger.Error(err))
	return xhttp.InternalError("bot operation failed").WithError(err)
}
