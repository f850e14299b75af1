package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"TokenPulse/internal/domain/models"
	drepo "TokenPulse/internal/domain/repository"
	"TokenPulse/internal/usecase"
	xhttp "TokenPulse/pkg/http"
	xlogger "TokenPulse/pkg/logger"
	"TokenPulse/pkg/util"
)

// SignalsHandler serves the dashboard API over Echo.
type SignalsHandler struct {
	logger *xlogger.Logger
	runner *usecase.ScanRunner
	store  drepo.SignalStore // nil when history persistence is disabled
}

func NewSignalsHandler(logger *xlogger.Logger, runner *usecase.ScanRunner, store drepo.SignalStore) *SignalsHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &SignalsHandler{logger: logger, runner: runner, store: store}
}

func (h *SignalsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/signals", h.Latest)
	g.GET("/signals/history", h.History)
	g.POST("/scan", h.Scan)
}

// Latest returns the most recent scan result.
func (h *SignalsHandler) Latest(c echo.Context) error {
	latest := h.runner.Latest()
	if latest == nil {
		return xhttp.NotFoundResponse(c, "no scan has completed yet")
	}
	return xhttp.SuccessResponse(c, latest)
}

// History returns stored signal records for one token.
func (h *SignalsHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.store == nil {
		return xhttp.NotFoundResponse(c, "signal history store is not configured")
	}

	now := time.Now().UTC()
	from := util.ParseTimeDefault(req.From, now.AddDate(0, -1, 0))
	to := util.ParseTimeDefault(req.To, now)

	records, err := h.store.History(c.Request().Context(), req.Token, from, to, req.Limit)
	if err != nil {
		h.logger.Error("signal history error",
			xlogger.String("token", req.Token), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, records)
}

// Scan triggers a scan over the configured universe, optionally restricted
// to a subset of tokens.
func (h *SignalsHandler) Scan(c echo.Context) error {
	req := &models.ScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	result, err := h.runner.RunOnce(c.Request().Context(), req.Tokens)
	if err != nil {
		h.logger.Error("scan request failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.ConflictErrorf("%v", err))
	}
	return xhttp.SuccessResponse(c, result)
}
