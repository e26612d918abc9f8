package graph

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"
	"github.com/knakk/rdf"
)

// DefaultPatterns are the glob patterns LoadAll uses when none are given.
var DefaultPatterns = []string{"*.ttl"}

// Load parses one graph file into the store, merging its triples with those
// already present. It returns the number of new triples.
func (s *Store) Load(path string) (int, error) {
	format, ok := FormatForPath(path)
	if !ok {
		return 0, &ParseError{Path: path, Err: ErrUnsupportedFormat}
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open graph file: %w", err)
	}
	defer f.Close()

	n, err := s.Decode(f, format)
	if err != nil {
		return n, &ParseError{Path: path, Err: err}
	}
	return n, nil
}

// Decode reads triples in the given format from r into the store.
func (s *Store) Decode(r io.Reader, format Format) (int, error) {
	switch format {
	case FormatNQuads:
		return s.decodeNQuads(r)
	case FormatTurtle, FormatNTriples, FormatRDFXML:
		return s.decodeRDF(r, format)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// LoadAll loads every file in dir matching one of the glob patterns
// (DefaultPatterns when none are given). Patterns are relative to dir and
// may use "**". Files are loaded in directory listing order; the first
// parse error stops the load. It returns the number of files loaded.
func (s *Store) LoadAll(dir string, patterns ...string) (int, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	info, err := os.Stat(dir)
	if err != nil {
		return 0, fmt.Errorf("stat graph directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", dir)
	}

	files, err := MatchFiles(dir, patterns...)
	if err != nil {
		return 0, err
	}

	for i, path := range files {
		if _, err := s.Load(path); err != nil {
			return i, err
		}
	}
	return len(files), nil
}

// MatchFiles returns the regular files under dir matching any of the
// patterns, without duplicates.
func MatchFiles(dir string, patterns ...string) ([]string, error) {
	fsys := os.DirFS(dir)
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, filepath.ToSlash(pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			fi, err := fs.Stat(fsys, m)
			if err != nil || fi.IsDir() {
				continue
			}
			seen[m] = true
			files = append(files, filepath.Join(dir, filepath.FromSlash(m)))
		}
	}
	return files, nil
}

func (s *Store) decodeRDF(r io.Reader, format Format) (int, error) {
	var rf rdf.Format
	switch format {
	case FormatTurtle:
		rf = rdf.Turtle
	case FormatNTriples:
		rf = rdf.NTriples
	case FormatRDFXML:
		rf = rdf.RDFXML
	}

	dec := rdf.NewTripleDecoder(r, rf)
	added := 0
	for {
		tr, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return added, nil
		}
		if err != nil {
			return added, err
		}
		t := Triple{
			Subject:   fromRDFTerm(tr.Subj),
			Predicate: fromRDFTerm(tr.Pred),
			Object:    fromRDFTerm(tr.Obj),
		}
		if s.Add(t) {
			added++
		}
	}
}

func fromRDFTerm(t rdf.Term) Term {
	switch v := t.(type) {
	case rdf.IRI:
		return IRI(v.String())
	case rdf.Blank:
		return Blank(v.String())
	case rdf.Literal:
		if lang := v.Lang(); lang != "" {
			return LangLiteral(v.String(), lang)
		}
		if dt := v.DataType.String(); dt != "" && dt != xsdString {
			return TypedLiteral(v.String(), dt)
		}
		return Literal(v.String())
	default:
		return Literal(t.String())
	}
}

func (s *Store) decodeNQuads(r io.Reader) (int, error) {
	qr := nquads.NewReader(r, true)
	added := 0
	for {
		q, err := qr.ReadQuad()
		if errors.Is(err, io.EOF) {
			return added, nil
		}
		if err != nil {
			return added, err
		}
		t := Triple{
			Subject:   fromQuadValue(q.Subject),
			Predicate: fromQuadValue(q.Predicate),
			Object:    fromQuadValue(q.Object),
		}
		if s.Add(t) {
			added++
		}
	}
}

func fromQuadValue(v quad.Value) Term {
	switch x := v.(type) {
	case quad.IRI:
		return IRI(string(x))
	case quad.BNode:
		return Blank(string(x))
	case quad.String:
		return Literal(string(x))
	case quad.LangString:
		return LangLiteral(string(x.Value), x.Lang)
	case quad.TypedString:
		if string(x.Type) == xsdString {
			return Literal(string(x.Value))
		}
		return TypedLiteral(string(x.Value), string(x.Type))
	default:
		return Literal(fmt.Sprint(v.Native()))
	}
}

const xsdString = "http://www.w3.org/2001/XMLSchema#string"

// FormatForPath picks a decoder format from a file extension.
func FormatForPath(path string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for name, info := range FormatRegistry {
		for _, e := range info.Extensions {
			if e == ext {
				return name, true
			}
		}
	}
	return "", false
}
