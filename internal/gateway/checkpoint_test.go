package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caiatech/dashboard-api/pkg/api"
)

func TestClassifyScheme(t *testing.T) {
	cases := []struct {
		uri  string
		want artifactScheme
	}{
		{"s3://bucket/checkpoints/model.bin", schemeRemote},
		{"file:///var/models/model.bin", schemeLocal},
		{"/var/models/model.bin", schemeLocal},
		{"relative/path/model.bin", schemeLocal},
		{"ftp://host/model.bin", schemeUnsupported},
		{"gs://bucket/model.bin", schemeUnsupported},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, classifyScheme(tc.uri), "uri %q", tc.uri)
	}
}

func TestDescriptorFromModel(t *testing.T) {
	size := int64(1024)

	t.Run("full descriptor", func(t *testing.T) {
		desc, problem := descriptorFromModel(json.RawMessage(
			`{"id":7,"artifact_uri":" s3://b/m.bin ","checkpoint_sha256":"abc","checkpoint_size_bytes":1024}`))
		require.Nil(t, problem)
		assert.Equal(t, "s3://b/m.bin", desc.ArtifactURI)
		assert.Equal(t, "abc", desc.SHA256)
		require.NotNil(t, desc.SizeBytes)
		assert.Equal(t, size, *desc.SizeBytes)
	})

	t.Run("missing artifact_uri", func(t *testing.T) {
		_, problem := descriptorFromModel(json.RawMessage(`{"id":7}`))
		require.NotNil(t, problem)
		assert.Equal(t, 400, problem.Status)
	})

	t.Run("non-object payload", func(t *testing.T) {
		_, problem := descriptorFromModel(json.RawMessage(`[1,2,3]`))
		require.NotNil(t, problem)
		assert.Equal(t, 502, problem.Status)
	})

	t.Run("non-integer size ignored", func(t *testing.T) {
		desc, problem := descriptorFromModel(json.RawMessage(
			`{"artifact_uri":"/m.bin","checkpoint_size_bytes":10.5}`))
		require.Nil(t, problem)
		assert.Nil(t, desc.SizeBytes)
	})
}

func TestResolvePayload_RemoteRequiresIntegrity(t *testing.T) {
	size := int64(2048)

	t.Run("complete remote descriptor", func(t *testing.T) {
		payload, problem := checkpointDescriptor{
			ArtifactURI: "s3://b/m.bin",
			SHA256:      "abc",
			SizeBytes:   &size,
		}.resolvePayload()
		require.Nil(t, problem)
		assert.Equal(t, map[string]interface{}{
			"artifact_uri": "s3://b/m.bin",
			"sha256":       "abc",
			"size_bytes":   size,
		}, payload)
	})

	t.Run("missing checksum", func(t *testing.T) {
		_, problem := checkpointDescriptor{ArtifactURI: "s3://b/m.bin", SizeBytes: &size}.resolvePayload()
		require.NotNil(t, problem)
		assert.Equal(t, api.TypeValidation, problem.Type)
		errs := problem.Extensions["errors"].(map[string]string)
		assert.Contains(t, errs, "checkpoint_sha256")
	})

	t.Run("missing size", func(t *testing.T) {
		_, problem := checkpointDescriptor{ArtifactURI: "s3://b/m.bin", SHA256: "abc"}.resolvePayload()
		require.NotNil(t, problem)
		errs := problem.Extensions["errors"].(map[string]string)
		assert.Contains(t, errs, "checkpoint_size_bytes")
	})
}

func TestResolvePayload_LocalFieldsOptional(t *testing.T) {
	t.Run("bare path without integrity fields", func(t *testing.T) {
		payload, problem := checkpointDescriptor{ArtifactURI: "/var/models/m.bin"}.resolvePayload()
		require.Nil(t, problem)
		assert.Equal(t, map[string]interface{}{"artifact_uri": "/var/models/m.bin"}, payload)
	})

	t.Run("file URI with checksum only", func(t *testing.T) {
		payload, problem := checkpointDescriptor{ArtifactURI: "file:///m.bin", SHA256: "abc"}.resolvePayload()
		require.Nil(t, problem)
		assert.Equal(t, "abc", payload["sha256"])
		_, hasSize := payload["size_bytes"]
		assert.False(t, hasSize)
	})
}

func TestResolvePayload_UnsupportedScheme(t *testing.T) {
	_, problem := checkpointDescriptor{ArtifactURI: "gs://bucket/m.bin"}.resolvePayload()
	require.NotNil(t, problem)
	assert.Equal(t, api.TypeUnsupportedScheme, problem.Type)
	assert.Equal(t, 400, problem.Status)
	assert.Equal(t, "gs://bucket/m.bin", problem.Extensions["artifact_uri"])
}
