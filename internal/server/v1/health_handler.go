package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/caiatech/dashboard-api/internal/evals"
	"github.com/caiatech/dashboard-api/internal/gateway"
	"github.com/caiatech/dashboard-api/pkg/api"
)

type HealthHandler struct {
	service *gateway.Service
	runner  *evals.Runner
}

func NewHealthHandler(service *gateway.Service, runner *evals.Runner) *HealthHandler {
	return &HealthHandler{service: service, runner: runner}
}

// Health reports per-upstream reachability plus the eval runner's
// installation state. It always answers 200: a dead upstream is a finding,
// not a failure of this endpoint.
func (h *HealthHandler) Health(c *gin.Context) {
	registry, artifactCache, onyx := h.service.UpstreamHealth(c.Request.Context())

	c.JSON(http.StatusOK, api.HealthReport{
		Status:        "ok",
		Registry:      registry,
		ArtifactCache: artifactCache,
		OnyxAPI:       onyx,
		Eval:          h.runner.Health(),
	})
}
