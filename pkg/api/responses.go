package api

// UpstreamHealth is one upstream's entry in the aggregate health report.
// Detail carries either the upstream's own health payload or the Problem
// that the probe produced; the report itself never fails.
type UpstreamHealth struct {
	URL            string      `json:"url"`
	Reachable      bool        `json:"reachable"`
	AuthConfigured bool        `json:"auth_configured"`
	Detail         interface{} `json:"detail"`
}

// EvalHealth reports the evaluation runner's installation state.
type EvalHealth struct {
	EvalServiceDir     string `json:"eval_service_dir"`
	EvalServicePresent bool   `json:"eval_service_present"`
	EvalRunsDir        string `json:"eval_runs_dir"`
}

// HealthReport is the response of GET /health.
type HealthReport struct {
	Status        string         `json:"status"`
	Registry      UpstreamHealth `json:"registry"`
	ArtifactCache UpstreamHealth `json:"artifact_cache"`
	OnyxAPI       UpstreamHealth `json:"onyx_api"`
	Eval          EvalHealth     `json:"eval"`
}
