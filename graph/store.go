package graph

import (
	"maps"
	"sync"
)

type spKey struct{ s, p Term }
type poKey struct{ p, o Term }

// Store is an in-memory triple set indexed by (subject, predicate) and
// (predicate, object). Query results preserve insertion order.
//
// A Store is written during loading and read afterwards; the lock only
// guards against a watcher reload racing a reader.
type Store struct {
	mu       sync.RWMutex
	prefixes map[string]string
	triples  []Triple
	seen     map[Triple]struct{}
	bySP     map[spKey][]int
	byPO     map[poKey][]int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		prefixes: make(map[string]string),
		seen:     make(map[Triple]struct{}),
		bySP:     make(map[spKey][]int),
		byPO:     make(map[poKey][]int),
	}
}

// Bind associates a prefix with a namespace IRI. Prefixes are used only
// when serializing the store.
func (s *Store) Bind(prefix, namespace string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefixes[prefix] = namespace
}

// Prefixes returns a copy of the bound prefixes.
func (s *Store) Prefixes() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.prefixes)
}

// Add inserts a triple. It reports false if the triple was already present.
func (s *Store) Add(t Triple) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(t)
}

func (s *Store) add(t Triple) bool {
	if _, ok := s.seen[t]; ok {
		return false
	}
	idx := len(s.triples)
	s.triples = append(s.triples, t)
	s.seen[t] = struct{}{}
	sp := spKey{t.Subject, t.Predicate}
	s.bySP[sp] = append(s.bySP[sp], idx)
	po := poKey{t.Predicate, t.Object}
	s.byPO[po] = append(s.byPO[po], idx)
	return true
}

// Len returns the number of triples in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.triples)
}

// Triples returns a copy of all triples in insertion order.
func (s *Store) Triples() []Triple {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Triple, len(s.triples))
	copy(out, s.triples)
	return out
}

// Objects returns the objects of all triples matching subject and predicate.
func (s *Store) Objects(subject, predicate Term) []Term {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idxs := s.bySP[spKey{subject, predicate}]
	out := make([]Term, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, s.triples[i].Object)
	}
	return out
}

// Value returns the first object matching subject and predicate.
func (s *Store) Value(subject, predicate Term) (Term, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idxs := s.bySP[spKey{subject, predicate}]
	if len(idxs) == 0 {
		return Term{}, false
	}
	return s.triples[idxs[0]].Object, true
}

// Subjects returns the subjects of all triples matching predicate and object.
func (s *Store) Subjects(predicate, object Term) []Term {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idxs := s.byPO[poKey{predicate, object}]
	out := make([]Term, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, s.triples[i].Subject)
	}
	return out
}

// Reset removes every triple, keeping the bound prefixes.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triples = nil
	s.seen = make(map[Triple]struct{})
	s.bySP = make(map[spKey][]int)
	s.byPO = make(map[poKey][]int)
}
