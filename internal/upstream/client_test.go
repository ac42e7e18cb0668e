package upstream_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caiatech/dashboard-api/internal/upstream"
	"github.com/caiatech/dashboard-api/pkg/api"
)

func target(name, baseURL string) upstream.Target {
	return upstream.Target{Name: name, BaseURL: baseURL}
}

func TestForward_NotConfigured(t *testing.T) {
	client := upstream.NewClient()

	_, err := client.Forward(context.Background(), target("model-registry", ""), upstream.Request{
		Method: http.MethodGet,
		Path:   "/health",
	})

	var notConfigured *upstream.NotConfiguredError
	require.ErrorAs(t, err, &notConfigured)
	assert.Equal(t, "model-registry", notConfigured.Upstream)
}

func TestForward_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Equal(t, "sk-test", r.Header.Get("X-API-Key"))
		_, _ = w.Write([]byte(`{"items":[{"id":1}],"total":1}`))
	}))
	defer server.Close()

	client := upstream.NewClient()
	params := url.Values{}
	params.Set("limit", "50")

	result, err := client.Forward(context.Background(), upstream.Target{
		Name:       "model-registry",
		BaseURL:    server.URL,
		AuthHeader: "X-API-Key",
		AuthKey:    "sk-test",
	}, upstream.Request{Method: http.MethodGet, Path: "/models", Params: params})

	require.NoError(t, err)
	// the body must pass through verbatim
	assert.Equal(t, `{"items":[{"id":1}],"total":1}`, string(result))
}

func TestForward_StatusErrorPreservesJSONPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Model not found"}`))
	}))
	defer server.Close()

	client := upstream.NewClient()
	_, err := client.Forward(context.Background(), target("model-registry", server.URL), upstream.Request{
		Method: http.MethodGet,
		Path:   "/models/99",
	})

	var statusErr *upstream.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Status)
	assert.JSONEq(t, `{"detail":"Model not found"}`, string(statusErr.Payload))
}

func TestForward_StatusErrorWrapsTextPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	client := upstream.NewClient()
	_, err := client.Forward(context.Background(), target("onyx-api", server.URL), upstream.Request{
		Method: http.MethodGet,
		Path:   "/health",
	})

	var statusErr *upstream.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Status)
	assert.JSONEq(t, `{"detail":"upstream exploded"}`, string(statusErr.Payload))
}

func TestForward_NoContentIsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := upstream.NewClient()
	result, err := client.Forward(context.Background(), target("model-registry", server.URL), upstream.Request{
		Method: http.MethodDelete,
		Path:   "/models/1",
	})

	require.NoError(t, err)
	assert.Equal(t, json.RawMessage("null"), result)
}

func TestForward_EmptyBodyIsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := upstream.NewClient()
	result, err := client.Forward(context.Background(), target("model-registry", server.URL), upstream.Request{
		Method: http.MethodGet,
		Path:   "/ping",
	})

	require.NoError(t, err)
	assert.Equal(t, json.RawMessage("null"), result)
}

func TestForward_InvalidJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := upstream.NewClient()
	_, err := client.Forward(context.Background(), target("onyx-api", server.URL), upstream.Request{
		Method: http.MethodGet,
		Path:   "/health",
	})

	var invalid *upstream.InvalidResponseError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "onyx-api", invalid.Upstream)
}

func TestForward_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := upstream.NewClient()
	_, err := client.Forward(context.Background(), target("artifact-cache-service", server.URL), upstream.Request{
		Method: http.MethodGet,
		Path:   "/health",
	})

	var transport *upstream.TransportError
	require.ErrorAs(t, err, &transport)
	assert.Equal(t, "artifact-cache-service", transport.Upstream)
}

func TestForward_SendsJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "s3://bucket/model.bin", body["artifact_uri"])
		_, _ = w.Write([]byte(`{"resolved":true}`))
	}))
	defer server.Close()

	client := upstream.NewClient()
	result, err := client.Forward(context.Background(), target("artifact-cache-service", server.URL), upstream.Request{
		Method: http.MethodPost,
		Path:   "/resolve",
		Body:   map[string]interface{}{"artifact_uri": "s3://bucket/model.bin"},
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"resolved":true}`, string(result))
}

func TestToProblem(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"not configured", &upstream.NotConfiguredError{Upstream: "onyx-api"}, http.StatusServiceUnavailable, api.TypeNotConfigured},
		{"transport", &upstream.TransportError{Upstream: "onyx-api", Err: context.DeadlineExceeded}, http.StatusBadGateway, api.TypeTransportError},
		{"status preserved", &upstream.StatusError{Upstream: "model-registry", Status: 409, Payload: json.RawMessage(`{"detail":"conflict"}`)}, 409, api.TypeUpstreamStatus},
		{"invalid response", &upstream.InvalidResponseError{Upstream: "onyx-api", Err: context.Canceled}, http.StatusBadGateway, api.TypeInvalidUpstream},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			problem := upstream.ToProblem(tc.err)
			assert.Equal(t, tc.wantStatus, problem.Status)
			assert.Equal(t, tc.wantType, problem.Type)
		})
	}
}

func TestToProblem_TransportRecordsStatusZero(t *testing.T) {
	problem := upstream.ToProblem(&upstream.TransportError{Upstream: "onyx-api", Err: context.DeadlineExceeded})
	assert.Equal(t, 0, problem.Extensions["upstream_status"])
	assert.Equal(t, "onyx-api", problem.Extensions["upstream"])
}
