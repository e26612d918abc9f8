package graph_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perseus-aa/manifest-compiler/graph"
)

const (
	rdfType   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	rdfsLabel = "http://www.w3.org/2000/01/rdf-schema#label"
	hasNote   = "http://www.cidoc-crm.org/cidoc-crm/P3_has_note"
	e22       = "http://www.cidoc-crm.org/cidoc-crm/E22_Human-Made_Object"
	aa1000    = "http://perseus.tufts.edu/ns/aa/aa_1000"
)

func TestStoreAddDeduplicates(t *testing.T) {
	s := graph.NewStore()
	tr := graph.Triple{
		Subject:   graph.IRI(aa1000),
		Predicate: graph.IRI(rdfsLabel),
		Object:    graph.Literal("Boston 12.440"),
	}

	assert.True(t, s.Add(tr))
	assert.False(t, s.Add(tr))
	assert.Equal(t, 1, s.Len())
}

func TestStoreQueriesPreserveInsertionOrder(t *testing.T) {
	s := graph.NewStore()
	subj := graph.IRI(aa1000)
	note := graph.IRI(hasNote)
	for _, n := range []string{"b: 2", "a: 1", "c: 3"} {
		s.Add(graph.Triple{Subject: subj, Predicate: note, Object: graph.Literal(n)})
	}

	objs := s.Objects(subj, note)
	require.Len(t, objs, 3)
	assert.Equal(t, "b: 2", objs[0].String())
	assert.Equal(t, "a: 1", objs[1].String())
	assert.Equal(t, "c: 3", objs[2].String())

	first, ok := s.Value(subj, note)
	require.True(t, ok)
	assert.Equal(t, "b: 2", first.String())

	_, ok = s.Value(subj, graph.IRI(rdfsLabel))
	assert.False(t, ok)
}

func TestLoadTurtle(t *testing.T) {
	s := graph.NewStore()
	n, err := s.Load(filepath.Join("testdata", "sample.ttl"))
	require.NoError(t, err)
	assert.Equal(t, 9, n)

	subjects := s.Subjects(graph.IRI(rdfType), graph.IRI(e22))
	require.Len(t, subjects, 2)
	assert.Equal(t, aa1000, subjects[0].String())

	label, ok := s.Value(graph.IRI("http://perseus.tufts.edu/ns/aa/aa_2000"), graph.IRI(rdfsLabel))
	require.True(t, ok)
	assert.Equal(t, "Athens 1234", label.String())
	assert.Equal(t, "en", label.Lang)

	notes := s.Objects(graph.IRI(aa1000), graph.IRI(hasNote))
	assert.Len(t, notes, 2)
}

func TestLoadMergesFiles(t *testing.T) {
	s := graph.NewStore()
	_, err := s.Load(filepath.Join("testdata", "sample.ttl"))
	require.NoError(t, err)
	n, err := s.Load(filepath.Join("testdata", "sample.ttl"))
	require.NoError(t, err)
	assert.Equal(t, 0, n, "reloading the same file adds nothing")

	_, err = s.Load(filepath.Join("testdata", "extra.nq"))
	require.NoError(t, err)
	subjects := s.Subjects(graph.IRI(rdfType), graph.IRI(e22))
	assert.Len(t, subjects, 3)
}

func TestLoadParseError(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile(filepath.Join("testdata", "broken.ttl.bad"))
	require.NoError(t, err)
	path := filepath.Join(dir, "broken.ttl")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	s := graph.NewStore()
	_, err = s.Load(path)
	require.Error(t, err)

	var perr *graph.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, path, perr.Path)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	s := graph.NewStore()
	_, err := s.Load("graph.csv")
	assert.ErrorIs(t, err, graph.ErrUnsupportedFormat)
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile(filepath.Join("testdata", "sample.ttl"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.ttl"), data, 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "object_image_graphs"), 0o755))
	nq, err := os.ReadFile(filepath.Join("testdata", "extra.nq"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "object_image_graphs", "b.nq"), nq, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# notes"), 0o644))

	s := graph.NewStore()
	files, err := s.LoadAll(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, files, "default pattern only matches top-level turtle")

	s = graph.NewStore()
	files, err = s.LoadAll(dir, "**/*.ttl", "**/*.nq", "*.ttl")
	require.NoError(t, err)
	assert.Equal(t, 2, files)
	assert.Len(t, s.Subjects(graph.IRI(rdfType), graph.IRI(e22)), 3)
}

func TestLoadAllMissingDirectory(t *testing.T) {
	s := graph.NewStore()
	_, err := s.LoadAll(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestDumpTurtleUsesPrefixes(t *testing.T) {
	s := graph.NewStore()
	s.Bind("aa", "http://perseus.tufts.edu/ns/aa/")
	s.Bind("rdfs", "http://www.w3.org/2000/01/rdf-schema#")
	s.Add(graph.Triple{
		Subject:   graph.IRI(aa1000),
		Predicate: graph.IRI(rdfsLabel),
		Object:    graph.Literal(`Boston "12.440"`),
	})
	s.Add(graph.Triple{
		Subject:   graph.IRI(aa1000),
		Predicate: graph.IRI(rdfType),
		Object:    graph.IRI(e22),
	})

	var buf bytes.Buffer
	require.NoError(t, s.Dump(&buf, graph.FormatTurtle))
	out := buf.String()

	assert.Contains(t, out, "@prefix aa: <http://perseus.tufts.edu/ns/aa/> .")
	assert.Contains(t, out, "aa:aa_1000\n")
	assert.Contains(t, out, `rdfs:label "Boston \"12.440\"" ;`)
	assert.Contains(t, out, "a <"+e22+"> .")
}

func TestDumpNTriples(t *testing.T) {
	s := graph.NewStore()
	s.Add(graph.Triple{
		Subject:   graph.IRI(aa1000),
		Predicate: graph.IRI(rdfsLabel),
		Object:    graph.LangLiteral("Boston", "en"),
	})

	var buf bytes.Buffer
	require.NoError(t, s.Dump(&buf, graph.FormatNTriples))
	line := strings.TrimSpace(buf.String())
	assert.Equal(t, "<"+aa1000+"> <"+rdfsLabel+`> "Boston"@en .`, line)

	assert.ErrorIs(t, s.Dump(&buf, graph.FormatRDFXML), graph.ErrUnsupportedFormat)
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]graph.Format{
		"a.ttl":     graph.FormatTurtle,
		"a.TTL":     graph.FormatTurtle,
		"b.nt":      graph.FormatNTriples,
		"c.nq":      graph.FormatNQuads,
		"d.rdf":     graph.FormatRDFXML,
		"dir/e.owl": graph.FormatRDFXML,
	}
	for path, want := range tests {
		got, ok := graph.FormatForPath(path)
		if assert.True(t, ok, path) {
			assert.Equal(t, want, got, path)
		}
	}
	_, ok := graph.FormatForPath("f.json")
	assert.False(t, ok)
}
