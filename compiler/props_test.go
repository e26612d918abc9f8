package compiler_test

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perseus-aa/manifest-compiler/compiler"
	"github.com/perseus-aa/manifest-compiler/graph"
)

func TestPropsCompiler(t *testing.T) {
	cfg := testConfig(t)
	c := compiler.NewPropsCompiler(newCatalog(t, newFakeProber("img_3988_1")), cfg)

	res, err := c.Compile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Written)

	data, err := os.ReadFile(outputPath(cfg, compiler.PropsFile))
	require.NoError(t, err)
	var props map[string]map[string]string
	require.NoError(t, json.Unmarshal(data, &props))

	assert.Equal(t, map[string]map[string]string{
		"aa_1000": {"material": "bronze"},
		"aa_3988": {
			"thumbnail": imageNS + "img_3988_1/full/pct:20/0/default.png",
			"shape":     "kylix",
			"period":    "Archaic",
		},
		"aa_4001": {"shape": "amphora"},
	}, props)
}

func TestDumpCompiler(t *testing.T) {
	cfg := testConfig(t)
	c := compiler.NewDumpCompiler(newCatalog(t, newFakeProber()), cfg)
	assert.Equal(t, "graph.ttl", c.Key())

	_, err := c.Compile(context.Background())
	require.NoError(t, err)

	text := readFile(t, outputPath(cfg, "graph.ttl"))
	assert.Contains(t, text, "@prefix aa: <http://perseus.tufts.edu/ns/aa/> .")
	assert.Contains(t, text, "Boston 12.440")
}

func TestDumpCompilerNTriples(t *testing.T) {
	cfg := testConfig(t)
	cfg.DumpFormat = graph.FormatNTriples
	sink := &sinkRecorder{}
	cfg.Sinks = []compiler.Sink{sink}

	c := compiler.NewDumpCompiler(newCatalog(t, newFakeProber()), cfg)
	_, err := c.Compile(context.Background())
	require.NoError(t, err)

	text := readFile(t, outputPath(cfg, "graph.nt"))
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		assert.True(t, strings.HasSuffix(line, " ."), line)
	}
	require.Len(t, sink.artifacts, 1)
	assert.Equal(t, "application/n-triples", sink.artifacts[0].ContentType)
}

func TestConfigValidate(t *testing.T) {
	cfg := compiler.DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.DumpFormat = graph.FormatRDFXML
	assert.Error(t, cfg.Validate())

	cfg = compiler.DefaultConfig()
	cfg.Root = ""
	assert.Error(t, cfg.Validate())
}
