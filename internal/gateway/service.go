package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/caiatech/dashboard-api/internal/config"
	"github.com/caiatech/dashboard-api/internal/upstream"
	"github.com/caiatech/dashboard-api/pkg/api"
)

// Upstream names as they appear in error envelopes and health reports.
const (
	UpstreamRegistry      = "model-registry"
	UpstreamArtifactCache = "artifact-cache-service"
	UpstreamOnyx          = "onyx-api"
)

const authHeader = "X-API-Key"

// Service composes the three upstream targets over one shared client.
// Each wrapper attaches the right auth header and delegates; no retries,
// no caching, no request coalescing.
type Service struct {
	client *upstream.Client
	logger *zap.Logger

	registry      upstream.Target
	registryKey   string
	artifactCache upstream.Target
	onyx          upstream.Target
}

func New(cfg *config.Config, client *upstream.Client, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
		// The registry key is attached per call: privileged operations
		// fail fast without it, health probes go out bare.
		registry:    upstream.Target{Name: UpstreamRegistry, BaseURL: cfg.Registry.URL},
		registryKey: cfg.Registry.APIKey,
		artifactCache: upstream.Target{
			Name:       UpstreamArtifactCache,
			BaseURL:    cfg.ArtifactCache.URL,
			AuthHeader: authHeader,
			AuthKey:    cfg.ArtifactCache.APIKey,
		},
		onyx: upstream.Target{
			Name:       UpstreamOnyx,
			BaseURL:    cfg.OnyxAPI.URL,
			AuthHeader: authHeader,
			AuthKey:    cfg.OnyxAPI.APIKey,
		},
	}
}

// OnyxBaseURL exposes the inference upstream's base URL, used as the
// default inference target for evaluation runs.
func (s *Service) OnyxBaseURL() string {
	return s.onyx.BaseURL
}

// RegistryKey returns the registry API key, or an AuthNotConfigured problem
// when none is set. Checked before any network I/O.
func (s *Service) RegistryKey() (string, *api.Problem) {
	if s.registryKey == "" {
		return "", api.AuthNotConfigured(UpstreamRegistry, "CAIA_REGISTRY_API_KEY")
	}
	return s.registryKey, nil
}

// Registry forwards one call to the model registry. When requireKey is set
// the call fails fast with AuthNotConfigured if no key is configured;
// read-only probes pass requireKey=false and go out without credentials.
func (s *Service) Registry(ctx context.Context, method, path string, params url.Values, body interface{}, requireKey bool) (json.RawMessage, error) {
	headers := map[string]string{}
	if requireKey {
		key, problem := s.RegistryKey()
		if problem != nil {
			return nil, problem
		}
		headers[authHeader] = key
	}

	result, err := s.client.Forward(ctx, s.registry, upstream.Request{
		Method:  method,
		Path:    path,
		Params:  params,
		Body:    body,
		Headers: headers,
	})
	if err != nil {
		return nil, upstream.ToProblem(err)
	}
	return result, nil
}

// ArtifactCache forwards one call to the artifact-cache service.
func (s *Service) ArtifactCache(ctx context.Context, method, path string, params url.Values, body interface{}) (json.RawMessage, error) {
	result, err := s.client.Forward(ctx, s.artifactCache, upstream.Request{
		Method: method,
		Path:   path,
		Params: params,
		Body:   body,
	})
	if err != nil {
		return nil, upstream.ToProblem(err)
	}
	return result, nil
}

// Onyx forwards one call to the inference API.
func (s *Service) Onyx(ctx context.Context, method, path string, params url.Values, body interface{}) (json.RawMessage, error) {
	result, err := s.client.Forward(ctx, s.onyx, upstream.Request{
		Method: method,
		Path:   path,
		Params: params,
		Body:   body,
	})
	if err != nil {
		return nil, upstream.ToProblem(err)
	}
	return result, nil
}

// UpstreamHealth probes all three upstreams concurrently. A failed probe is
// recorded in that upstream's entry and never aborts the others; health
// reporting is diagnosis, not gatekeeping.
func (s *Service) UpstreamHealth(ctx context.Context) (registry, artifactCache, onyx api.UpstreamHealth) {
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		result, err := s.Registry(ctx, http.MethodGet, "/health", nil, nil, false)
		registry = probeResult(s.registry.BaseURL, s.registryKey != "", result, err)
	}()
	go func() {
		defer wg.Done()
		result, err := s.ArtifactCache(ctx, http.MethodGet, "/health", nil, nil)
		artifactCache = probeResult(s.artifactCache.BaseURL, s.artifactCache.AuthKey != "", result, err)
	}()
	go func() {
		defer wg.Done()
		result, err := s.Onyx(ctx, http.MethodGet, "/health", nil, nil)
		onyx = probeResult(s.onyx.BaseURL, s.onyx.AuthKey != "", result, err)
	}()

	wg.Wait()
	return registry, artifactCache, onyx
}

func probeResult(baseURL string, authConfigured bool, result json.RawMessage, err error) api.UpstreamHealth {
	h := api.UpstreamHealth{
		URL:            baseURL,
		AuthConfigured: authConfigured,
	}
	if err != nil {
		h.Detail = upstream.ToProblem(err)
		return h
	}
	h.Reachable = true
	h.Detail = result
	return h
}
