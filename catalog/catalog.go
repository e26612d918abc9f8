package catalog

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/perseus-aa/manifest-compiler/graph"
	"github.com/perseus-aa/manifest-compiler/vocabulary/aa"
)

// Catalog is the entity database: a graph store plus the artifacts found in it.
type Catalog struct {
	store    *graph.Store
	opts     *Options
	entities []*Entity
}

// New creates an empty catalog with the artifact vocabulary prefixes bound.
func New(opts Options) *Catalog {
	o := opts.withDefaults()
	store := graph.NewStore()
	for prefix, ns := range aa.Prefixes() {
		store.Bind(prefix, ns)
	}
	return &Catalog{store: store, opts: &o}
}

// Store returns the underlying graph store.
func (c *Catalog) Store() *graph.Store { return c.store }

// Options returns the options entities are derived with.
func (c *Catalog) Options() Options { return *c.opts }

// Load parses one graph file into the catalog.
func (c *Catalog) Load(path string) error {
	n, err := c.store.Load(path)
	// A failed parse may still have merged triples.
	c.entities = nil
	if err != nil {
		return err
	}
	c.opts.Logger.Debug("Loaded graph file", "path", path, "triples", n)
	return nil
}

// LoadAll loads every graph file in dir matching the patterns.
func (c *Catalog) LoadAll(dir string, patterns ...string) (int, error) {
	n, err := c.store.LoadAll(dir, patterns...)
	c.entities = nil
	if err != nil {
		return n, fmt.Errorf("load %s: %w", dir, err)
	}
	c.opts.Logger.Info("Loaded graph directory", "dir", dir, "files", n, "triples", c.store.Len())
	return n, nil
}

// Refresh drops the cached entities, and with them every memoized field,
// keeping the graph. The next access re-derives thumbnails, manifests and
// pages, probing images again.
func (c *Catalog) Refresh() {
	c.entities = nil
}

// SetPageRenderer sets the renderer used by Entity.WebPage, including for
// entities already handed out.
func (c *Catalog) SetPageRenderer(r PageRenderer) {
	c.opts.Pages = r
}

// Reset drops every triple and cached entity.
func (c *Catalog) Reset() {
	c.store.Reset()
	c.entities = nil
}

// Entities returns every subject typed crm:E22_Human-Made_Object. The list
// is computed once and reused until more data is loaded.
func (c *Catalog) Entities() []*Entity {
	if c.entities == nil {
		subjects := c.store.Subjects(graph.IRI(aa.PredicateType), graph.IRI(aa.ClassHumanMadeObject))
		c.entities = make([]*Entity, 0, len(subjects))
		for _, s := range subjects {
			if !s.IsIRI() {
				continue
			}
			c.entities = append(c.entities, newEntity(s.Value, c.store, c.opts))
		}
	}
	return c.entities
}

// Entity returns a fresh view of the entity identified by ref, which is
// either a full IRI or an identifier in the aa: namespace. The entity need
// not exist in the graph.
func (c *Catalog) Entity(ref string) *Entity {
	iri := ref
	if !strings.Contains(ref, "://") {
		iri = aa.EntityNamespace + ref
	}
	return newEntity(iri, c.store, c.opts)
}

// EntityByID finds a cached entity by identifier.
func (c *Catalog) EntityByID(id string) (*Entity, error) {
	for _, e := range c.Entities() {
		if e.ID() == id {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// EntitiesByType yields the entities of type t. The filter runs again on
// every iteration.
func (c *Catalog) EntitiesByType(t aa.ArtifactType) iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		for _, e := range c.Entities() {
			if e.Type() != t {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

func (c *Catalog) Buildings() iter.Seq[*Entity]  { return c.EntitiesByType(aa.ArtifactTypeBuilding) }
func (c *Catalog) Coins() iter.Seq[*Entity]      { return c.EntitiesByType(aa.ArtifactTypeCoin) }
func (c *Catalog) Gems() iter.Seq[*Entity]       { return c.EntitiesByType(aa.ArtifactTypeGem) }
func (c *Catalog) Sculptures() iter.Seq[*Entity] { return c.EntitiesByType(aa.ArtifactTypeSculpture) }
func (c *Catalog) Sites() iter.Seq[*Entity]      { return c.EntitiesByType(aa.ArtifactTypeSite) }
func (c *Catalog) Vases() iter.Seq[*Entity]      { return c.EntitiesByType(aa.ArtifactTypeVase) }

// Props returns the properties of every entity that has any, keyed by id.
func (c *Catalog) Props(ctx context.Context) map[string]map[string]string {
	out := make(map[string]map[string]string)
	for _, e := range c.Entities() {
		if p := e.Props(ctx); len(p) > 0 {
			out[e.ID()] = p
		}
	}
	return out
}

// PropsByType returns the property maps of every entity of type t, in
// entity order.
func (c *Catalog) PropsByType(ctx context.Context, t aa.ArtifactType) []map[string]string {
	var out []map[string]string
	for e := range c.EntitiesByType(t) {
		out = append(out, e.Props(ctx))
	}
	return out
}
