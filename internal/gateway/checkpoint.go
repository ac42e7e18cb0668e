package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/caiatech/dashboard-api/pkg/api"
)

// artifactScheme is the closed set of storage media the resolution
// dispatcher understands. Adding a scheme means extending the switch in
// resolvePayload, which the compiler will point at.
type artifactScheme int

const (
	// remote object store; integrity fields are mandatory
	schemeRemote artifactScheme = iota
	// file:// URI or bare filesystem path; integrity fields optional
	schemeLocal
	schemeUnsupported
)

func classifyScheme(artifactURI string) artifactScheme {
	switch {
	case strings.HasPrefix(artifactURI, "s3://"):
		return schemeRemote
	case strings.HasPrefix(artifactURI, "file://"), !strings.Contains(artifactURI, "://"):
		return schemeLocal
	default:
		return schemeUnsupported
	}
}

// checkpointDescriptor is the artifact metadata read off a registry model
// record. Scoped to one resolution call.
type checkpointDescriptor struct {
	ArtifactURI string
	SHA256      string
	SizeBytes   *int64
}

// descriptorFromModel extracts the checkpoint fields from a registry model
// payload. The registry returning anything but a JSON object is a contract
// violation; a model without an artifact_uri is a caller-visible 400.
func descriptorFromModel(raw json.RawMessage) (checkpointDescriptor, *api.Problem) {
	var model map[string]interface{}
	if err := json.Unmarshal(raw, &model); err != nil || model == nil {
		return checkpointDescriptor{}, api.InvalidUpstreamResponse(UpstreamRegistry, fmt.Errorf("model payload is not an object"))
	}

	uri, _ := model["artifact_uri"].(string)
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return checkpointDescriptor{}, api.BadRequestError("Model is missing artifact_uri")
	}

	desc := checkpointDescriptor{ArtifactURI: uri}
	if sha, ok := model["checkpoint_sha256"].(string); ok {
		desc.SHA256 = strings.TrimSpace(sha)
	}
	if size, ok := model["checkpoint_size_bytes"].(float64); ok && size >= 0 && size == math.Trunc(size) {
		n := int64(size)
		desc.SizeBytes = &n
	}

	return desc, nil
}

// resolvePayload produces the artifact-cache resolve request for the
// descriptor, or the Problem that rules it out. Pure and synchronous: the
// dispatch decision is made before any network call, never discovered from
// an upstream error.
func (d checkpointDescriptor) resolvePayload() (map[string]interface{}, *api.Problem) {
	switch classifyScheme(d.ArtifactURI) {
	case schemeRemote:
		// A remote artifact without integrity metadata must never be
		// cached; content addressing is the cache's correctness guarantee.
		fieldErrors := map[string]string{}
		if d.SHA256 == "" {
			fieldErrors["checkpoint_sha256"] = "required for remote artifacts"
		}
		if d.SizeBytes == nil {
			fieldErrors["checkpoint_size_bytes"] = "required for remote artifacts"
		}
		if len(fieldErrors) > 0 {
			return nil, api.ValidationError(fieldErrors)
		}
		return map[string]interface{}{
			"artifact_uri": d.ArtifactURI,
			"sha256":       d.SHA256,
			"size_bytes":   *d.SizeBytes,
		}, nil

	case schemeLocal:
		payload := map[string]interface{}{"artifact_uri": d.ArtifactURI}
		if d.SHA256 != "" {
			payload["sha256"] = d.SHA256
		}
		if d.SizeBytes != nil {
			payload["size_bytes"] = *d.SizeBytes
		}
		return payload, nil

	default:
		return nil, api.UnsupportedScheme(d.ArtifactURI)
	}
}

// ResolveCheckpoint fetches the model record from the registry and asks the
// artifact cache to resolve its checkpoint, choosing the request shape by
// the artifact URI's scheme.
func (s *Service) ResolveCheckpoint(ctx context.Context, modelID int) (json.RawMessage, error) {
	model, err := s.Registry(ctx, http.MethodGet, fmt.Sprintf("/models/%d", modelID), nil, nil, true)
	if err != nil {
		return nil, err
	}

	desc, problem := descriptorFromModel(model)
	if problem != nil {
		return nil, problem
	}

	payload, problem := desc.resolvePayload()
	if problem != nil {
		return nil, problem
	}

	return s.ArtifactCache(ctx, http.MethodPost, "/resolve", nil, payload)
}
