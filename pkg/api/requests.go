package api

// Suites recognized by the evaluation runner.
const (
	SuiteSmokeV1      = "smoke-v1"
	SuiteCoreV1       = "core-v1"
	SuiteMathCorpusV1 = "math-corpus-v1"
)

// EvalRunRequest is the body of POST /api/evals/run. Tuning knobs are
// pointers so that only caller-supplied values reach the runner's flags.
type EvalRunRequest struct {
	ModelID      *int   `json:"model_id" binding:"required"`
	Suite        string `json:"suite" binding:"required,oneof=smoke-v1 core-v1 math-corpus-v1"`
	InferenceURL string `json:"inference_url,omitempty"`

	TimeoutSeconds *float64 `json:"timeout_seconds,omitempty"`
	Retries        *int     `json:"retries,omitempty"`
	BackoffSeconds *float64 `json:"backoff_seconds,omitempty"`
	MaxTokens      *int     `json:"max_tokens,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
}

// ListModelsQuery mirrors the registry's /models listing parameters.
type ListModelsQuery struct {
	Status string `form:"status"`
	Name   string `form:"name"`
	Q      string `form:"q"`
	Tag    string `form:"tag"`
	Limit  int    `form:"limit,default=50" binding:"min=1,max=500"`
	Offset int    `form:"offset,default=0" binding:"min=0"`
	Sort   string `form:"sort,default=updated_at"`
	Order  string `form:"order,default=desc"`
}

type ModelMetricsQuery struct {
	Suite string `form:"suite"`
}

type ModelEventsQuery struct {
	Limit  int `form:"limit,default=100" binding:"min=1,max=500"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

type PromoteQuery struct {
	ToStatus string `form:"to_status,default=production"`
}

type ListRunsQuery struct {
	Limit int `form:"limit,default=50" binding:"min=1,max=500"`
}
