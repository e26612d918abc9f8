package iiif_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perseus-aa/manifest-compiler/iiif"
)

type countingObserver struct {
	present, missing atomic.Int32
}

func (o *countingObserver) ObserveProbe(exists bool, _ time.Duration) {
	if exists {
		o.present.Add(1)
	} else {
		o.missing.Add(1)
	}
}

func newImageServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/iiif/3/ok/info.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/ld+json")
		_, _ = w.Write([]byte(`{"id":"http://example/iiif/3/ok","type":"ImageService3","width":1200,"height":800}`))
	})
	mux.HandleFunc("/iiif/3/legacy/info.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"@id":"http://example/iiif/2/legacy","width":10,"height":20}`))
	})
	mux.HandleFunc("/iiif/3/broken/info.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/iiif/3/forbidden/info.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/iiif/3/garbage/info.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestProbe(t *testing.T) {
	srv := newImageServer(t)
	obs := &countingObserver{}
	client := iiif.NewClient(iiif.ClientConfig{Observer: obs})
	ctx := context.Background()

	info, ok := client.Probe(ctx, srv.URL+"/iiif/3/ok")
	require.True(t, ok)
	require.NotNil(t, info)
	assert.Equal(t, 1200, info.Width)
	assert.Equal(t, 800, info.Height)

	info, ok = client.Probe(ctx, srv.URL+"/iiif/3/legacy/")
	require.True(t, ok)
	assert.Equal(t, "http://example/iiif/2/legacy", info.ID)

	_, ok = client.Probe(ctx, srv.URL+"/iiif/3/missing")
	assert.False(t, ok, "404 means missing")

	_, ok = client.Probe(ctx, srv.URL+"/iiif/3/broken")
	assert.False(t, ok, "500 means missing")

	info, ok = client.Probe(ctx, srv.URL+"/iiif/3/forbidden")
	assert.True(t, ok, "other statuses count as present")
	assert.Nil(t, info)

	info, ok = client.Probe(ctx, srv.URL+"/iiif/3/garbage")
	assert.True(t, ok)
	assert.Nil(t, info)

	assert.EqualValues(t, 4, obs.present.Load())
	assert.EqualValues(t, 2, obs.missing.Load())
}

func TestProbeTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := iiif.NewClient(iiif.ClientConfig{Timeout: time.Second})
	_, ok := client.Probe(context.Background(), url+"/iiif/3/x")
	assert.False(t, ok)
}

func TestProbeIsNotCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := iiif.NewClient(iiif.ClientConfig{})
	for range 3 {
		_, ok := client.Probe(context.Background(), srv.URL+"/img")
		require.True(t, ok)
	}
	assert.EqualValues(t, 3, hits.Load())
}

func TestProbeSendsUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := iiif.NewClient(iiif.ClientConfig{UserAgent: "aacompile/test"})
	client.Probe(context.Background(), srv.URL+"/img")
	assert.Equal(t, "aacompile/test", got)
}
