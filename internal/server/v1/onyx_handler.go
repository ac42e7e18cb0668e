package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/caiatech/dashboard-api/internal/gateway"
	"github.com/caiatech/dashboard-api/pkg/api"
)

// OnyxHandler forwards to the inference API.
type OnyxHandler struct {
	service *gateway.Service
}

func NewOnyxHandler(service *gateway.Service) *OnyxHandler {
	return &OnyxHandler{service: service}
}

func (h *OnyxHandler) Health(c *gin.Context) {
	result, err := h.service.Onyx(c.Request.Context(), http.MethodGet, "/health", nil, nil)
	if err != nil {
		_ = c.Error(err)
		return
	}
	rawJSON(c, result)
}

func (h *OnyxHandler) ModelsLoaded(c *gin.Context) {
	result, err := h.service.Onyx(c.Request.Context(), http.MethodGet, "/models_loaded", nil, nil)
	if err != nil {
		_ = c.Error(err)
		return
	}
	rawJSON(c, result)
}

func (h *OnyxHandler) Generate(c *gin.Context) {
	h.forwardNonStreaming(c, "/generate")
}

func (h *OnyxHandler) Chat(c *gin.Context) {
	h.forwardNonStreaming(c, "/chat")
}

// forwardNonStreaming forces stream:false regardless of caller input; the
// dashboard always consumes complete responses.
func (h *OnyxHandler) forwardNonStreaming(c *gin.Context, path string) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(api.BadRequestError("Invalid JSON body"))
		return
	}
	if body == nil {
		body = map[string]interface{}{}
	}
	body["stream"] = false

	result, err := h.service.Onyx(c.Request.Context(), http.MethodPost, path, nil, body)
	if err != nil {
		_ = c.Error(err)
		return
	}
	rawJSON(c, result)
}
