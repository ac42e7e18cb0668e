package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/caiatech/dashboard-api/internal/gateway"
	"github.com/caiatech/dashboard-api/pkg/api"
)

// ArtifactsHandler forwards to the artifact-cache service.
type ArtifactsHandler struct {
	service *gateway.Service
}

func NewArtifactsHandler(service *gateway.Service) *ArtifactsHandler {
	return &ArtifactsHandler{service: service}
}

func (h *ArtifactsHandler) Health(c *gin.Context) {
	result, err := h.service.ArtifactCache(c.Request.Context(), http.MethodGet, "/health", nil, nil)
	if err != nil {
		_ = c.Error(err)
		return
	}
	rawJSON(c, result)
}

// Resolve passes the caller's body through unchanged. The body contract
// matches the artifact-cache service: {artifact_uri, sha256, size_bytes}.
func (h *ArtifactsHandler) Resolve(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(api.BadRequestError("Invalid JSON body"))
		return
	}

	result, err := h.service.ArtifactCache(c.Request.Context(), http.MethodPost, "/resolve", nil, body)
	if err != nil {
		_ = c.Error(err)
		return
	}
	rawJSON(c, result)
}
