package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemMarshal_ExtensionsAtRoot(t *testing.T) {
	problem := UpstreamStatus("model-registry", 404, json.RawMessage(`{"detail":"Model not found"}`))

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))

	// RFC 9457 dictates extension members live at the document root
	assert.Equal(t, "model-registry", out["upstream"])
	assert.Equal(t, float64(404), out["upstream_status"])
	assert.Equal(t, float64(404), out["status"])
	assert.Equal(t, TypeUpstreamStatus, out["type"])
	assert.Equal(t, map[string]interface{}{"detail": "Model not found"}, out["error"])
}

func TestExternalProcessError_TrimsStreams(t *testing.T) {
	problem := ExternalProcessError("caiatech-eval-service", 1, "partial\n", "model not found\n")

	assert.Equal(t, 502, problem.Status)
	assert.Equal(t, 1, problem.Extensions["returncode"])
	assert.Equal(t, "partial", problem.Extensions["stdout"])
	assert.Equal(t, "model not found", problem.Extensions["stderr"])
}

func TestValidationError(t *testing.T) {
	problem := ValidationError(map[string]string{"suite": "must be one of [smoke-v1, core-v1, math-corpus-v1]"})

	assert.Equal(t, 400, problem.Status)
	assert.Equal(t, TypeValidation, problem.Type)
}
