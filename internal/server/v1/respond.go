package v1

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/caiatech/dashboard-api/pkg/api"
)

// rawJSON writes an upstream body through unmodified, so repeated calls
// with an unchanged upstream yield byte-identical responses.
func rawJSON(c *gin.Context, raw json.RawMessage) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// modelID parses the :id path segment. Registry model ids are integers;
// anything else is rejected before the upstream is contacted.
func modelID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		_ = c.Error(api.ValidationError(map[string]string{"model_id": "must be an integer"}))
		return 0, false
	}
	return id, true
}
