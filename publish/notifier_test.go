package publish_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perseus-aa/manifest-compiler/compiler"
	"github.com/perseus-aa/manifest-compiler/publish"
)

type message struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	messages []message
	err      error
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, message{subject: subject, data: data})
	return nil
}

func TestNotifierPublish(t *testing.T) {
	pub := &fakePublisher{}
	n := publish.NewNotifier(pub, "", nil)

	err := n.Publish(context.Background(), compiler.Artifact{
		Kind:        compiler.KindManifest,
		EntityID:    "aa_1000",
		Path:        "/tmp/out/1000/aa_1000.json",
		Key:         "1000/aa_1000.json",
		ContentType: "application/ld+json",
		Size:        42,
		RunID:       "run-1",
	})
	require.NoError(t, err)
	require.Len(t, pub.messages, 1)
	assert.Equal(t, "aacompile.artifact.manifest", pub.messages[0].subject)

	var got map[string]any
	require.NoError(t, json.Unmarshal(pub.messages[0].data, &got))
	assert.Equal(t, "aa_1000", got["entity_id"])
	assert.Equal(t, "1000/aa_1000.json", got["key"])
	assert.Equal(t, "run-1", got["run_id"])
	assert.Equal(t, float64(42), got["size"])
	assert.NotContains(t, got, "Path", "local paths are not announced")
	assert.Contains(t, got, "published_at")
}

func TestNotifierCustomSubject(t *testing.T) {
	n := publish.NewNotifier(&fakePublisher{}, "museum.aa", nil)
	assert.Equal(t, "museum.aa.page", n.Subject(compiler.KindWebPage))
}

func TestNotifierPublishError(t *testing.T) {
	n := publish.NewNotifier(&fakePublisher{err: assert.AnError}, "", nil)
	err := n.Publish(context.Background(), compiler.Artifact{Kind: compiler.KindProps})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestNilNotifierIsNoop(t *testing.T) {
	var n *publish.Notifier
	assert.NoError(t, n.Publish(context.Background(), compiler.Artifact{}))
	assert.NoError(t, publish.NewNotifier(nil, "", nil).Publish(context.Background(), compiler.Artifact{}))
}

var _ compiler.Sink = (*publish.Notifier)(nil)
