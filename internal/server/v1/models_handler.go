package v1

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/caiatech/dashboard-api/internal/gateway"
	"github.com/caiatech/dashboard-api/internal/server/validator"
	"github.com/caiatech/dashboard-api/pkg/api"
)

// ModelsHandler forwards registry calls, attaching the registry API key.
type ModelsHandler struct {
	service *gateway.Service
}

func NewModelsHandler(service *gateway.Service) *ModelsHandler {
	return &ModelsHandler{service: service}
}

func (h *ModelsHandler) Stats(c *gin.Context) {
	result, err := h.service.Registry(c.Request.Context(), http.MethodGet, "/stats", nil, nil, true)
	if err != nil {
		_ = c.Error(err)
		return
	}
	rawJSON(c, result)
}

func (h *ModelsHandler) List(c *gin.Context) {
	var q api.ListModelsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("offset", strconv.Itoa(q.Offset))
	params.Set("sort", q.Sort)
	params.Set("order", q.Order)
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	if q.Name != "" {
		params.Set("name", q.Name)
	}
	if q.Q != "" {
		params.Set("q", q.Q)
	}
	if q.Tag != "" {
		params.Set("tag", q.Tag)
	}

	result, err := h.service.Registry(c.Request.Context(), http.MethodGet, "/models", params, nil, true)
	if err != nil {
		_ = c.Error(err)
		return
	}
	rawJSON(c, result)
}

func (h *ModelsHandler) Get(c *gin.Context) {
	id, ok := modelID(c)
	if !ok {
		return
	}

	result, err := h.service.Registry(c.Request.Context(), http.MethodGet, fmt.Sprintf("/models/%d", id), nil, nil, true)
	if err != nil {
		_ = c.Error(err)
		return
	}
	rawJSON(c, result)
}

func (h *ModelsHandler) Metrics(c *gin.Context) {
	id, ok := modelID(c)
	if !ok {
		return
	}

	var q api.ModelMetricsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return
	}

	params := url.Values{}
	if q.Suite != "" {
		params.Set("suite", q.Suite)
	}

	result, err := h.service.Registry(c.Request.Context(), http.MethodGet, fmt.Sprintf("/models/%d/metrics", id), params, nil, true)
	if err != nil {
		_ = c.Error(err)
		return
	}
	rawJSON(c, result)
}

func (h *ModelsHandler) Events(c *gin.Context) {
	id, ok := modelID(c)
	if !ok {
		return
	}

	var q api.ModelEventsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("offset", strconv.Itoa(q.Offset))

	result, err := h.service.Registry(c.Request.Context(), http.MethodGet, fmt.Sprintf("/models/%d/events", id), params, nil, true)
	if err != nil {
		_ = c.Error(err)
		return
	}
	rawJSON(c, result)
}

func (h *ModelsHandler) Promote(c *gin.Context) {
	id, ok := modelID(c)
	if !ok {
		return
	}

	var q api.PromoteQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return
	}

	params := url.Values{}
	params.Set("to_status", q.ToStatus)

	result, err := h.service.Registry(c.Request.Context(), http.MethodPost, fmt.Sprintf("/models/%d/promote", id), params, nil, true)
	if err != nil {
		_ = c.Error(err)
		return
	}
	rawJSON(c, result)
}

// ResolveCheckpoint fetches the model record and dispatches the resolution
// request by artifact scheme.
func (h *ModelsHandler) ResolveCheckpoint(c *gin.Context) {
	id, ok := modelID(c)
	if !ok {
		return
	}

	result, err := h.service.ResolveCheckpoint(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	rawJSON(c, result)
}
