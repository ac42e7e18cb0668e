package api

import (
	"fmt"
	"net/http"
	"strings"
)

// Problem type URIs for the gateway's error taxonomy. Clients switch on
// these rather than parsing detail strings.
const (
	TypeNotConfigured          = "https://caiatech.io/problems/upstream-not-configured"
	TypeAuthNotConfigured      = "https://caiatech.io/problems/auth-not-configured"
	TypeTransportError         = "https://caiatech.io/problems/upstream-unreachable"
	TypeUpstreamStatus         = "https://caiatech.io/problems/upstream-error"
	TypeInvalidUpstream        = "https://caiatech.io/problems/invalid-upstream-response"
	TypeValidation             = "https://caiatech.io/problems/validation"
	TypeUnsupportedScheme      = "https://caiatech.io/problems/unsupported-scheme"
	TypeServiceUnavailable     = "https://caiatech.io/problems/service-unavailable"
	TypeExternalProcess        = "https://caiatech.io/problems/external-process-failed"
	TypeInvalidProcessOutput   = "https://caiatech.io/problems/invalid-process-output"
	TypeExternalProcessTimeout = "https://caiatech.io/problems/external-process-timeout"
	TypeNotFound               = "https://caiatech.io/problems/not-found"
)

// NotConfigured reports a missing upstream base URL. Misconfiguration of the
// gateway itself, not a connectivity failure.
func NotConfigured(upstream string) *Problem {
	return NewProblem(
		http.StatusServiceUnavailable,
		"Upstream Not Configured",
		fmt.Sprintf("%s base URL not configured", upstream),
		WithType(TypeNotConfigured),
		WithExtension("upstream", upstream),
	)
}

// AuthNotConfigured reports a privileged upstream call attempted without a
// configured API key. Raised before any network I/O.
func AuthNotConfigured(upstream, envVar string) *Problem {
	return NewProblem(
		http.StatusServiceUnavailable,
		"Upstream Auth Not Configured",
		fmt.Sprintf("%s not set for dashboard API", envVar),
		WithType(TypeAuthNotConfigured),
		WithExtension("upstream", upstream),
	)
}

// TransportError reports a network-level failure reaching an upstream.
// The upstream_status extension is 0: no HTTP response was received.
func TransportError(upstream string, err error) *Problem {
	return NewProblem(
		http.StatusBadGateway,
		"Upstream Unreachable",
		fmt.Sprintf("%s request failed: %v", upstream, err),
		WithType(TypeTransportError),
		WithExtension("upstream", upstream),
		WithExtension("upstream_status", 0),
		WithLog(err),
	)
}

// UpstreamStatus echoes an explicit upstream rejection. The upstream's own
// status code is preserved verbatim and its payload carried unmodified.
func UpstreamStatus(upstream string, status int, payload interface{}) *Problem {
	return NewProblem(
		status,
		"Upstream Error",
		fmt.Sprintf("%s returned status %d", upstream, status),
		WithType(TypeUpstreamStatus),
		WithExtension("upstream", upstream),
		WithExtension("upstream_status", status),
		WithExtension("error", payload),
	)
}

// InvalidUpstreamResponse reports a 2xx upstream body that is not JSON.
func InvalidUpstreamResponse(upstream string, err error) *Problem {
	return NewProblem(
		http.StatusBadGateway,
		"Invalid Upstream Response",
		fmt.Sprintf("%s returned invalid JSON: %v", upstream, err),
		WithType(TypeInvalidUpstream),
		WithExtension("upstream", upstream),
		WithLog(err),
	)
}

// ValidationError creates a rich validation error from a field->message map.
func ValidationError(validationErrors map[string]string) *Problem {
	return NewProblem(
		http.StatusBadRequest,
		"Validation Error",
		"One or more fields failed validation",
		WithType(TypeValidation),
		WithExtension("errors", validationErrors),
	)
}

// BadRequestError creates a standard error for a bad request
func BadRequestError(detail string, opts ...ProblemOption) *Problem {
	return NewProblem(http.StatusBadRequest, "Bad Request", detail, opts...)
}

// UnsupportedScheme rejects an artifact URI whose scheme the resolution
// dispatcher does not recognize. No upstream call is made.
func UnsupportedScheme(artifactURI string) *Problem {
	return NewProblem(
		http.StatusBadRequest,
		"Unsupported Artifact Scheme",
		fmt.Sprintf("Unsupported artifact_uri scheme for resolution: %s", artifactURI),
		WithType(TypeUnsupportedScheme),
		WithExtension("artifact_uri", artifactURI),
	)
}

// NotFoundError creates a standard 404 error
func NotFoundError(detail string) *Problem {
	return NewProblem(http.StatusNotFound, "Not Found", detail, WithType(TypeNotFound))
}

// ServiceUnavailableError creates a standard 503 error
func ServiceUnavailableError(detail string) *Problem {
	return NewProblem(http.StatusServiceUnavailable, "Service Unavailable", detail, WithType(TypeServiceUnavailable))
}

// ExternalProcessError surfaces a non-zero exit from the evaluation runner.
// Captured streams are attached verbatim for diagnosis.
func ExternalProcessError(upstream string, exitCode int, stdout, stderr string) *Problem {
	return NewProblem(
		http.StatusBadGateway,
		"External Process Failed",
		fmt.Sprintf("%s exited with code %d", upstream, exitCode),
		WithType(TypeExternalProcess),
		WithExtension("upstream", upstream),
		WithExtension("returncode", exitCode),
		WithExtension("stdout", strings.TrimSpace(stdout)),
		WithExtension("stderr", strings.TrimSpace(stderr)),
	)
}

// InvalidProcessOutput reports a runner that exited 0 but violated its
// stdout contract (not a JSON object, or missing eval_run_id).
func InvalidProcessOutput(upstream, detail, stdout string) *Problem {
	return NewProblem(
		http.StatusBadGateway,
		"Invalid Process Output",
		detail,
		WithType(TypeInvalidProcessOutput),
		WithExtension("upstream", upstream),
		WithExtension("stdout", strings.TrimSpace(stdout)),
	)
}

// ExternalProcessTimeout reports a runner killed after exceeding the
// configured wall-clock budget.
func ExternalProcessTimeout(upstream string, seconds float64) *Problem {
	return NewProblem(
		http.StatusGatewayTimeout,
		"External Process Timeout",
		fmt.Sprintf("%s did not finish within %.0fs", upstream, seconds),
		WithType(TypeExternalProcessTimeout),
		WithExtension("upstream", upstream),
	)
}
