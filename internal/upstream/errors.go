package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/caiatech/dashboard-api/pkg/api"
)

// NotConfiguredError means the target has no base URL. Gateway
// misconfiguration, distinct from a connectivity failure.
type NotConfiguredError struct {
	Upstream string
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("%s base URL not configured", e.Upstream)
}

// TransportError is any network-level failure: connection refused, timeout,
// DNS, TLS. No HTTP response was received, so there is no status to echo.
type TransportError struct {
	Upstream string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Upstream, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is an explicit upstream rejection. Status and payload are
// preserved verbatim for the caller to re-surface.
type StatusError struct {
	Upstream string
	Status   int
	Payload  json.RawMessage
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Upstream, e.Status)
}

// InvalidResponseError is an upstream contract violation: a 2xx response
// whose body is not JSON.
type InvalidResponseError struct {
	Upstream string
	Err      error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("%s returned invalid JSON: %v", e.Upstream, e.Err)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

// ToProblem maps a forwarding error to its outward-facing Problem envelope.
func ToProblem(err error) *api.Problem {
	var notConfigured *NotConfiguredError
	if errors.As(err, &notConfigured) {
		return api.NotConfigured(notConfigured.Upstream)
	}

	var transport *TransportError
	if errors.As(err, &transport) {
		return api.TransportError(transport.Upstream, transport.Err)
	}

	var status *StatusError
	if errors.As(err, &status) {
		return api.UpstreamStatus(status.Upstream, status.Status, status.Payload)
	}

	var invalid *InvalidResponseError
	if errors.As(err, &invalid) {
		return api.InvalidUpstreamResponse(invalid.Upstream, invalid.Err)
	}

	var problem *api.Problem
	if errors.As(err, &problem) {
		return problem
	}

	return api.NewProblem(http.StatusInternalServerError, "Internal Server Error", err.Error(), api.WithLog(err))
}
