package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hypersec/macjanitor/internal/store"
	"github.com/hypersec/macjanitor/pkg/types"
)

// RunHandler handles run trigger and history requests
type RunHandler struct {
	config *ServerConfig
	runner Runner
	store  *store.Store
}

// NewRunHandler creates a new run handler
func NewRunHandler(config *ServerConfig, runner Runner, st *store.Store) *RunHandler {
	return &RunHandler{
		config: config,
		runner: runner,
		store:  st,
	}
}

// TriggerRunRequest optionally selects a policy for this run
type TriggerRunRequest struct {
	Policy string `json:"policy" validate:"omitempty,max=128"`
}

// Trigger handles POST /api/v1/runs — the scheduler's hourly entry point.
// The request body is optional; an empty body runs the default policy.
func (h *RunHandler) Trigger(c echo.Context) error {
	req := &TriggerRunRequest{}
	if c.Request().ContentLength > 0 {
		if err := c.Bind(req); err != nil {
			return ErrorBadRequest(c, "invalid request body")
		}
		if err := c.Validate(req); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.config.RunTimeout)
	defer cancel()

	var (
		report *types.RunReport
		err    error
	)
	if req.Policy != "" {
		report, err = h.runner.RunPolicy(ctx, req.Policy)
	} else {
		report, err = h.runner.Run(ctx)
	}

	if err != nil {
		// Config/inventory-level failures are the only fatal outcomes;
		// per-server failures are already inside the report.
		return ErrorInternal(c, err.Error())
	}

	return SuccessOK(c, report)
}

// List handles GET /api/v1/runs
func (h *RunHandler) List(c echo.Context) error {
	if h.store == nil {
		return ErrorServiceUnavailable(c, "run history not configured")
	}

	params := ParsePaginationParams(c)

	runs, err := h.store.Runs.List(c.Request().Context(), params.PerPage, params.Offset)
	if err != nil {
		return ErrorInternal(c, "failed to list runs")
	}

	total, err := h.store.Runs.Count(c.Request().Context())
	if err != nil {
		return ErrorInternal(c, "failed to count runs")
	}

	return SuccessPaginated(c, runs, CalculatePagination(params.Page, params.PerPage, total))
}

// Get handles GET /api/v1/runs/:id
func (h *RunHandler) Get(c echo.Context) error {
	if h.store == nil {
		return ErrorServiceUnavailable(c, "run history not configured")
	}

	run, err := h.store.Runs.GetByID(c.Request().Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		return ErrorNotFound(c, "run not found")
	}
	if err != nil {
		return ErrorInternal(c, "failed to fetch run")
	}

	return c.JSON(http.StatusOK, run)
}
