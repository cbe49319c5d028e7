package memstore

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fracktal-labs/fracktal/pkg/codec"
)

func TestValidateArtifactDocument(t *testing.T) {
	artifact := codec.NewDefault().Encode([]byte("schema validation sample"))
	doc := artifactDocument{
		Metadata: Metadata{
			ID:        "mem-1",
			CreatedAt: time.Now().UTC(),
			Kind:      "note",
			EventType: EventNote,
		},
		Artifact: artifact,
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	assert.NoError(t, ValidateArtifactDocument(data))
}

func TestValidateArtifactDocument_EmptyInputArtifact(t *testing.T) {
	// Sub-window inputs produce null chunk and symbol arrays; the schema
	// must accept them.
	artifact := codec.NewDefault().Encode([]byte("x"))
	doc := artifactDocument{
		Metadata: Metadata{
			ID:        "mem-2",
			CreatedAt: time.Now().UTC(),
			Kind:      "note",
			EventType: EventNote,
		},
		Artifact: artifact,
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	assert.NoError(t, ValidateArtifactDocument(data))
}

func TestValidateArtifactDocument_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{{{{"},
		{"missing artifact", `{"metadata": {"id": "a", "created_at": "x", "kind": "note", "event_type": "note"}}`},
		{"missing metadata id", `{"metadata": {"created_at": "x", "kind": "note", "event_type": "note"}, "artifact": {"chunks": null, "symbols": null, "tokens": null, "dictionary": {}, "fingerprint": "` + zeroFingerprint + `", "stats": {}}}`},
		{"bad fingerprint", `{"metadata": {"id": "a", "created_at": "x", "kind": "note", "event_type": "note"}, "artifact": {"chunks": null, "symbols": null, "tokens": null, "dictionary": {}, "fingerprint": "nope", "stats": {}}}`},
		{"negative symbol", `{"metadata": {"id": "a", "created_at": "x", "kind": "note", "event_type": "note"}, "artifact": {"chunks": null, "symbols": [-1], "tokens": null, "dictionary": {}, "fingerprint": "` + zeroFingerprint + `", "stats": {}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, ValidateArtifactDocument([]byte(tt.data)))
		})
	}
}

const zeroFingerprint = "0000000000000000000000000000000000000000000000000000000000000000"
