package graph

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
)

const rdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

var localNameRe = regexp.MustCompile(`^[A-Za-z0-9_]([A-Za-z0-9_.-]*[A-Za-z0-9_-])?$`)

// Dump serializes the store in the given format. Turtle output uses the
// bound prefixes and groups statements by subject in insertion order.
func (s *Store) Dump(w io.Writer, format Format) error {
	bw := bufio.NewWriter(w)
	switch format {
	case FormatTurtle:
		s.writeTurtle(bw)
	case FormatNTriples:
		s.writeNTriples(bw)
	default:
		return fmt.Errorf("%w: cannot write %s", ErrUnsupportedFormat, format)
	}
	return bw.Flush()
}

func (s *Store) writeNTriples(w *bufio.Writer) {
	for _, t := range s.Triples() {
		fmt.Fprintf(w, "%s %s %s .\n", ntTerm(t.Subject), ntTerm(t.Predicate), ntTerm(t.Object))
	}
}

func (s *Store) writeTurtle(w *bufio.Writer) {
	prefixes := s.Prefixes()

	// Sort prefixes for consistent output
	keys := make([]string, 0, len(prefixes))
	for k := range prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, prefix := range keys {
		fmt.Fprintf(w, "@prefix %s: <%s> .\n", prefix, prefixes[prefix])
	}
	w.WriteString("\n")

	triples := s.Triples()
	var order []Term
	bySubject := make(map[Term][]Triple)
	for _, t := range triples {
		if _, ok := bySubject[t.Subject]; !ok {
			order = append(order, t.Subject)
		}
		bySubject[t.Subject] = append(bySubject[t.Subject], t)
	}

	for _, subj := range order {
		stmts := bySubject[subj]
		fmt.Fprintf(w, "%s\n", ttlTerm(subj, prefixes))
		for i, t := range stmts {
			pred := ttlTerm(t.Predicate, prefixes)
			if t.Predicate.Value == rdfType {
				pred = "a"
			}
			terminator := " ;"
			if i == len(stmts)-1 {
				terminator = " ."
			}
			fmt.Fprintf(w, "    %s %s%s\n", pred, ttlTerm(t.Object, prefixes), terminator)
		}
		w.WriteString("\n")
	}
}

func ntTerm(t Term) string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	default:
		lit := `"` + escapeString(t.Value) + `"`
		if t.Lang != "" {
			return lit + "@" + t.Lang
		}
		if t.Datatype != "" {
			return lit + "^^<" + t.Datatype + ">"
		}
		return lit
	}
}

func ttlTerm(t Term, prefixes map[string]string) string {
	switch t.Kind {
	case KindIRI:
		return compactIRI(t.Value, prefixes)
	case KindLiteral:
		lit := `"` + escapeString(t.Value) + `"`
		if t.Lang != "" {
			return lit + "@" + t.Lang
		}
		if t.Datatype != "" {
			return lit + "^^" + compactIRI(t.Datatype, prefixes)
		}
		return lit
	default:
		return ntTerm(t)
	}
}

// compactIRI abbreviates iri with the longest matching namespace whose
// remainder is a valid local name.
func compactIRI(iri string, prefixes map[string]string) string {
	best, bestNS := "", ""
	for prefix, ns := range prefixes {
		if len(ns) <= len(bestNS) || !strings.HasPrefix(iri, ns) {
			continue
		}
		if local := iri[len(ns):]; localNameRe.MatchString(local) {
			best, bestNS = prefix, ns
		}
	}
	if bestNS == "" {
		return "<" + iri + ">"
	}
	return best + ":" + iri[len(bestNS):]
}

// escapeString escapes special characters in strings for RDF serialization.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
