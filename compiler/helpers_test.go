package compiler_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/perseus-aa/manifest-compiler/catalog"
	"github.com/perseus-aa/manifest-compiler/compiler"
	"github.com/perseus-aa/manifest-compiler/iiif"
)

const imageNS = "https://iiif.perseus.tufts.edu/iiif/3/"

type fakeProber struct {
	mu      sync.Mutex
	present map[string]bool
	calls   int
}

func newFakeProber(present ...string) *fakeProber {
	p := &fakeProber{present: make(map[string]bool)}
	for _, id := range present {
		p.present[imageNS+id] = true
	}
	return p
}

func (p *fakeProber) Probe(_ context.Context, serviceURL string) (*iiif.ImageInfo, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if !p.present[serviceURL] {
		return nil, false
	}
	return &iiif.ImageInfo{ID: serviceURL, Width: 640, Height: 480}, true
}

func (p *fakeProber) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func newCatalog(t *testing.T, prober iiif.Prober) *catalog.Catalog {
	t.Helper()
	c := catalog.New(catalog.Options{Prober: prober})
	_, err := c.LoadAll("testdata")
	require.NoError(t, err)
	return c
}

func testConfig(t *testing.T) compiler.Config {
	t.Helper()
	cfg := compiler.DefaultConfig()
	cfg.Root = t.TempDir()
	return cfg
}

type sinkRecorder struct {
	artifacts []compiler.Artifact
}

func (s *sinkRecorder) Publish(_ context.Context, a compiler.Artifact) error {
	s.artifacts = append(s.artifacts, a)
	return nil
}

func (s *sinkRecorder) keys() []string {
	keys := make([]string, len(s.artifacts))
	for i, a := range s.artifacts {
		keys[i] = a.Key
	}
	return keys
}

type outcomeCounter map[string]int

func (c outcomeCounter) RecordOutcome(name string, o compiler.Outcome) {
	c[name+"/"+string(o)]++
}

func outputPath(cfg compiler.Config, elem ...string) string {
	return filepath.Join(append([]string{cfg.Root}, elem...)...)
}
