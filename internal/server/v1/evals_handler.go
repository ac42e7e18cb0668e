package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/caiatech/dashboard-api/internal/evals"
	"github.com/caiatech/dashboard-api/internal/server/validator"
	"github.com/caiatech/dashboard-api/pkg/api"
)

// EvalsHandler triggers evaluation runs and serves their persisted
// artifacts back.
type EvalsHandler struct {
	runner *evals.Runner
	store  *evals.Store
}

func NewEvalsHandler(runner *evals.Runner, store *evals.Store) *EvalsHandler {
	return &EvalsHandler{runner: runner, store: store}
}

func (h *EvalsHandler) ListRuns(c *gin.Context) {
	var q api.ListRunsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return
	}

	runs, err := h.store.List(q.Limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, runs)
}

func (h *EvalsHandler) Summary(c *gin.Context) {
	summary, err := h.store.Summary(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	rawJSON(c, summary)
}

func (h *EvalsHandler) JSONL(c *gin.Context) {
	path, err := h.store.JSONLPath(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Type", "application/jsonl")
	c.File(path)
}

// Run validates the request, spawns one evaluation synchronously, and
// returns the runner's result stamped with start/finish timestamps.
func (h *EvalsHandler) Run(c *gin.Context) {
	var req api.EvalRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return
	}

	result, err := h.runner.Run(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}
