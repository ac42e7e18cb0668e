package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

const (
	// Overall budget is generous so slow-but-alive upstreams can finish;
	// the dial budget is short so dead ones fail fast.
	requestTimeout = 30 * time.Second
	connectTimeout = 3 * time.Second
)

// Target identifies one upstream service. Immutable after construction.
type Target struct {
	Name       string
	BaseURL    string
	AuthHeader string
	AuthKey    string
}

// Request describes one forwarded call.
type Request struct {
	Method  string
	Path    string
	Params  url.Values
	Body    interface{}
	Headers map[string]string
}

// Client issues requests to upstreams over a shared connection pool and
// normalizes every failure into one of the typed errors in errors.go.
// Safe for concurrent use; it holds no per-call state.
type Client struct {
	http *http.Client
}

func NewClient() *Client {
	return &Client{
		http: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
			},
		},
	}
}

// NewClientWithHTTP injects a custom http.Client, mainly for tests.
func NewClientWithHTTP(h *http.Client) *Client {
	return &Client{http: h}
}

// Forward sends one request to the target and returns the decoded JSON body
// verbatim. Every failure mode maps to exactly one typed error:
// empty base URL -> *NotConfiguredError, network failure -> *TransportError,
// status >= 400 -> *StatusError, non-JSON 2xx body -> *InvalidResponseError.
// A 204 or empty body is a success with value null. No retries.
func (c *Client) Forward(ctx context.Context, t Target, r Request) (json.RawMessage, error) {
	if t.BaseURL == "" {
		return nil, &NotConfiguredError{Upstream: t.Name}
	}

	var bodyReader io.Reader
	if r.Body != nil {
		jsonBody, err := json.Marshal(r.Body)
		if err != nil {
			return nil, &TransportError{Upstream: t.Name, Err: err}
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	u := t.BaseURL + r.Path
	if len(r.Params) > 0 {
		u += "?" + r.Params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, u, bodyReader)
	if err != nil {
		return nil, &TransportError{Upstream: t.Name, Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	if t.AuthHeader != "" && t.AuthKey != "" {
		req.Header.Set(t.AuthHeader, t.AuthKey)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Upstream: t.Name, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Upstream: t.Name, Err: err}
	}

	if resp.StatusCode >= 400 {
		return nil, &StatusError{
			Upstream: t.Name,
			Status:   resp.StatusCode,
			Payload:  errorPayload(respBody),
		}
	}

	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
		return json.RawMessage("null"), nil
	}

	var probe interface{}
	if err := json.Unmarshal(respBody, &probe); err != nil {
		return nil, &InvalidResponseError{Upstream: t.Name, Err: err}
	}

	return json.RawMessage(respBody), nil
}

// errorPayload keeps the upstream's JSON error body verbatim, or wraps a
// non-JSON body as {"detail": <text>}.
func errorPayload(body []byte) json.RawMessage {
	if json.Valid(body) && len(bytes.TrimSpace(body)) > 0 {
		return json.RawMessage(body)
	}
	wrapped, _ := json.Marshal(map[string]string{"detail": string(body)})
	return wrapped
}
