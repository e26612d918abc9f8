package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perseus-aa/manifest-compiler/catalog"
	"github.com/perseus-aa/manifest-compiler/graph"
	"github.com/perseus-aa/manifest-compiler/iiif"
	"github.com/perseus-aa/manifest-compiler/vocabulary/aa"
)

const imageNS = "https://iiif.perseus.tufts.edu/iiif/3/"

// fakeProber reports the images in present as existing and counts probes.
type fakeProber struct {
	present map[string]bool
	calls   map[string]int
}

func newFakeProber(present ...string) *fakeProber {
	p := &fakeProber{present: make(map[string]bool), calls: make(map[string]int)}
	for _, id := range present {
		p.present[imageNS+id] = true
	}
	return p
}

func (p *fakeProber) Probe(_ context.Context, serviceURL string) (*iiif.ImageInfo, bool) {
	p.calls[serviceURL]++
	if !p.present[serviceURL] {
		return nil, false
	}
	return &iiif.ImageInfo{ID: serviceURL, Width: 100, Height: 50}, true
}

func (p *fakeProber) total() int {
	n := 0
	for _, c := range p.calls {
		n += c
	}
	return n
}

func loadCatalog(t *testing.T, prober iiif.Prober) *catalog.Catalog {
	t.Helper()
	c := catalog.New(catalog.Options{Prober: prober})
	require.NoError(t, c.Load(filepath.Join("testdata", "images.ttl")))
	require.NoError(t, c.Load(filepath.Join("testdata", "artifacts.ttl")))
	return c
}

func TestEntities(t *testing.T) {
	c := loadCatalog(t, newFakeProber())

	entities := c.Entities()
	require.Len(t, entities, 5)

	ids := make([]string, len(entities))
	for i, e := range entities {
		ids[i] = e.ID()
	}
	assert.Equal(t, []string{"aa_1000", "aa_3988", "aa_4001", "aa_0007", "aa_5120"}, ids)

	assert.Same(t, entities[0], c.Entities()[0], "entity list is memoized")
}

func TestEntityIDRoundTrip(t *testing.T) {
	c := loadCatalog(t, newFakeProber())

	for _, e := range c.Entities() {
		assert.Equal(t, e.ID(), c.Entity(e.ID()).ID())
		assert.Equal(t, e.IRI(), c.Entity(e.IRI()).IRI())
	}

	e := c.Entity(aa.EntityNamespace + "aa_3988")
	assert.Equal(t, "aa_3988", e.ID())
}

func TestEntityByID(t *testing.T) {
	c := loadCatalog(t, newFakeProber())

	e, err := c.EntityByID("aa_4001")
	require.NoError(t, err)
	assert.Equal(t, "Athens 1234", e.Label())

	_, err = c.EntityByID("aa_9999")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestEntityFields(t *testing.T) {
	prober := newFakeProber("img_1000_1", "img_1000_2")
	c := loadCatalog(t, prober)
	ctx := context.Background()

	e := c.Entity("aa_1000")
	assert.Equal(t, "aa_1000", e.ID())
	assert.Equal(t, "Boston 12.440", e.Label())
	assert.Equal(t, aa.ArtifactTypeCoin, e.Type())
	require.Len(t, e.Images(), 2)

	notes := e.Images()[0].Notes()
	require.Len(t, notes, 2)
	assert.Equal(t, "Obverse: Helmeted head of Roma", notes[0])

	props := e.Props(ctx)
	assert.Equal(t, map[string]string{
		"thumbnail": imageNS + "img_1000_1/full/pct:20/0/default.png",
		"material":  "bronze",
	}, props)
}

func TestPropsWithoutThumbnail(t *testing.T) {
	c := loadCatalog(t, newFakeProber())
	e := c.Entity("aa_1000")

	assert.Equal(t, map[string]string{"material": "bronze"}, e.Props(context.Background()))
}

func TestPropsDropMalformedNotes(t *testing.T) {
	c := loadCatalog(t, newFakeProber())
	e := c.Entity("aa_3988")

	props := e.Properties(context.Background())
	assert.Equal(t, []catalog.Property{
		{Key: "shape", Value: "kylix"},
		{Key: "period", Value: "Archaic"},
	}, props)
}

func TestParseNote(t *testing.T) {
	tests := []struct {
		note     string
		key, val string
		ok       bool
	}{
		{"color: red", "color", "red", true},
		{"color:red  ", "color", "red", true},
		{" color : red", " color ", "red", true},
		{"malformed note", "", "", false},
		{"a: b: c", "", "", false},
		{"empty:", "empty", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.note, func(t *testing.T) {
			k, v, ok := catalog.ParseNote(tc.note)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.key, k)
			assert.Equal(t, tc.val, v)
		})
	}
}

func TestLabelFallback(t *testing.T) {
	c := loadCatalog(t, newFakeProber())
	assert.Equal(t, catalog.NoLabel, c.Entity("aa_0007").Label())
	assert.Equal(t, catalog.NoLabel, c.Entity("aa_missing").Label())
}

func TestTypeDerivation(t *testing.T) {
	c := loadCatalog(t, newFakeProber())

	assert.Equal(t, aa.ArtifactTypeVase, c.Entity("aa_3988").Type())
	assert.Equal(t, aa.ClassVase, c.Entity("aa_3988").TypeIRI())
	assert.Equal(t, aa.ArtifactTypeUnknown, c.Entity("aa_0007").Type())
	assert.Equal(t, "", c.Entity("aa_0007").TypeIRI())
}

func TestTypeFilters(t *testing.T) {
	c := loadCatalog(t, newFakeProber())

	vases := slices.Collect(c.EntitiesByType(aa.ArtifactTypeVase))
	assert.Len(t, vases, 2)
	assert.Len(t, slices.Collect(c.Vases()), 2, "filter is re-evaluated on each access")
	assert.Len(t, slices.Collect(c.Coins()), 1)
	assert.Empty(t, slices.Collect(c.Buildings()))
	assert.Len(t, c.Entities(), 5, "filtering does not mutate the cached list")

	assert.Len(t, c.PropsByType(context.Background(), aa.ArtifactTypeVase), 2)
}

func TestCatalogProps(t *testing.T) {
	c := loadCatalog(t, newFakeProber())
	props := c.Props(context.Background())

	assert.Contains(t, props, "aa_1000")
	assert.Contains(t, props, "aa_4001")
	assert.NotContains(t, props, "aa_0007", "entities without props are omitted")
}

func TestThumbnailRequiresExistingImage(t *testing.T) {
	prober := newFakeProber("img_1000_2")
	c := loadCatalog(t, prober)
	ctx := context.Background()
	e := c.Entity("aa_1000")

	_, ok := e.Thumbnail(ctx)
	assert.False(t, ok, "only the first image is considered")

	_, ok = c.Entity("aa_4001").Thumbnail(ctx)
	assert.False(t, ok)
}

func TestImageFields(t *testing.T) {
	prober := newFakeProber("img_3988_1")
	c := loadCatalog(t, prober)
	ctx := context.Background()

	img := c.Entity("aa_3988").Images()[0]
	assert.Equal(t, "img_3988_1", img.ID())

	caption, ok := img.Caption()
	require.True(t, ok)
	assert.Equal(t, "Side A: symposion", caption)
	credit, ok := img.CreditText()
	require.True(t, ok)
	assert.Equal(t, "Antikensammlung Berlin", credit)

	small, ok := img.Small(ctx)
	require.True(t, ok)
	assert.Equal(t, imageNS+"img_3988_1/full/pct:50/0/default.png", small)

	urls, ok := img.URLs(ctx)
	require.True(t, ok)
	assert.Equal(t, imageNS+"img_3988_1/full/max/0/default.png", urls.Full)

	assert.True(t, img.Exists(ctx))
	assert.True(t, img.Exists(ctx))
	assert.Equal(t, 4, prober.calls[imageNS+"img_3988_1"], "existence is never cached")

	other := c.Entity("aa_1000").Images()[0]
	_, ok = other.Caption()
	assert.False(t, ok)
	_, ok = other.Thumbnail(ctx)
	assert.False(t, ok)
}

func TestImageBaseURLRebase(t *testing.T) {
	prober := &fakeProber{present: map[string]bool{"http://localhost:8182/iiif/3/img_3988_1": true}, calls: map[string]int{}}
	c := catalog.New(catalog.Options{
		Prober:       prober,
		ImageBaseURL: "http://localhost:8182/iiif/3",
		Templates:    iiif.Templates{Thumbnail: "full/100,/0/default.jpg"},
	})
	require.NoError(t, c.Load(filepath.Join("testdata", "artifacts.ttl")))

	thumb, ok := c.Entity("aa_3988").Thumbnail(context.Background())
	require.True(t, ok)
	assert.Equal(t, "http://localhost:8182/iiif/3/img_3988_1/full/100,/0/default.jpg", thumb)
}

func TestManifest(t *testing.T) {
	prober := newFakeProber("img_1000_1", "img_1000_2")
	c := loadCatalog(t, prober)
	ctx := context.Background()
	e := c.Entity("aa_1000")

	m := e.Manifest(ctx)
	assert.Equal(t, catalog.DefaultManifestBaseURL+"/aa_1000", m.ID)
	assert.Equal(t, []string{"Boston 12.440"}, m.Label["en"])
	require.Len(t, m.Items, 2)
	assert.Equal(t, []string{"Obverse: Helmeted head of Roma", "Reverse: Dioscuri riding right"}, m.Items[0].Label["en"])
	require.Len(t, m.Thumbnail, 1)
	require.Len(t, m.Metadata, 2)
	assert.Equal(t, []string{"thumbnail"}, m.Metadata[0].Label["en"])

	calls := prober.total()
	assert.Same(t, m, e.Manifest(ctx), "manifest is memoized")
	assert.Equal(t, calls, prober.total())
}

func TestManifestSkipsMissingImages(t *testing.T) {
	c := loadCatalog(t, newFakeProber("img_1000_2"))
	m := c.Entity("aa_1000").Manifest(context.Background())

	require.Len(t, m.Items, 1)
	assert.Empty(t, m.Thumbnail)
	assert.Equal(t, 100, m.Items[0].Width)
}

func TestManifestCanvasLabelsFromCaption(t *testing.T) {
	c := loadCatalog(t, newFakeProber("img_3988_1"))
	m := c.Entity("aa_3988").Manifest(context.Background())

	require.Len(t, m.Items, 1)
	assert.Equal(t, []string{"Side A: symposion", "Antikensammlung Berlin"}, m.Items[0].Label["en"])
}

type stubRenderer struct{ calls int }

func (r *stubRenderer) RenderPage(_ context.Context, e *catalog.Entity) (string, error) {
	r.calls++
	return "<h1>" + e.Label() + "</h1>", nil
}

func TestWebPageIsMemoized(t *testing.T) {
	r := &stubRenderer{}
	c := catalog.New(catalog.Options{Prober: newFakeProber(), Pages: r})
	require.NoError(t, c.Load(filepath.Join("testdata", "artifacts.ttl")))

	e := c.Entities()[0]
	page, err := e.WebPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "<h1>Boston 12.440</h1>", page)

	_, err = e.WebPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, r.calls)
}

func TestWebPageWithoutRenderer(t *testing.T) {
	c := loadCatalog(t, newFakeProber())
	_, err := c.Entity("aa_1000").WebPage(context.Background())
	assert.ErrorIs(t, err, catalog.ErrNoRenderer)
}

func TestLoadInvalidatesEntityCache(t *testing.T) {
	c := catalog.New(catalog.Options{Prober: newFakeProber()})
	assert.Empty(t, c.Entities())

	require.NoError(t, c.Load(filepath.Join("testdata", "artifacts.ttl")))
	assert.Len(t, c.Entities(), 5)

	n, err := c.LoadAll("testdata")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, c.Entities(), 5)

	c.Reset()
	assert.Empty(t, c.Entities())
}

func TestFailedLoadInvalidatesEntityCache(t *testing.T) {
	c := loadCatalog(t, newFakeProber())
	require.Len(t, c.Entities(), 5)

	broken := filepath.Join(t.TempDir(), "broken.ttl")
	ttl := `<http://perseus.tufts.edu/ns/aa/aa_8000> a <http://www.cidoc-crm.org/cidoc-crm/E22_Human-Made_Object> .
<http://perseus.tufts.edu/ns/aa/aa_8001> a
`
	require.NoError(t, os.WriteFile(broken, []byte(ttl), 0o644))
	assert.Error(t, c.Load(broken))

	// The entity list matches whatever the store holds after the failure.
	subjects := c.Store().Subjects(graph.IRI(aa.PredicateType), graph.IRI(aa.ClassHumanMadeObject))
	assert.Len(t, c.Entities(), len(subjects))
}

func TestRefreshDropsMemoizedFields(t *testing.T) {
	prober := newFakeProber()
	r := &stubRenderer{}
	c := catalog.New(catalog.Options{Prober: prober, Pages: r})
	require.NoError(t, c.Load(filepath.Join("testdata", "images.ttl")))
	require.NoError(t, c.Load(filepath.Join("testdata", "artifacts.ttl")))

	e, err := c.EntityByID("aa_1000")
	require.NoError(t, err)
	_, ok := e.Thumbnail(context.Background())
	assert.False(t, ok)
	_, err = e.WebPage(context.Background())
	require.NoError(t, err)

	prober.present[imageNS+"img_1000_1"] = true
	_, ok = e.Thumbnail(context.Background())
	assert.False(t, ok, "a held entity keeps its memoized thumbnail")

	c.Refresh()
	assert.Len(t, c.Entities(), 5, "the graph is kept")

	e, err = c.EntityByID("aa_1000")
	require.NoError(t, err)
	thumb, ok := e.Thumbnail(context.Background())
	assert.True(t, ok)
	assert.Equal(t, imageNS+"img_1000_1/full/pct:20/0/default.png", thumb)
	_, err = e.WebPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, r.calls)
}

func TestSetPageRendererReachesHeldEntities(t *testing.T) {
	c := loadCatalog(t, newFakeProber())
	e, err := c.EntityByID("aa_1000")
	require.NoError(t, err)

	_, err = e.WebPage(context.Background())
	require.ErrorIs(t, err, catalog.ErrNoRenderer)

	c.SetPageRenderer(&stubRenderer{})
	page, err := e.WebPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "<h1>Boston 12.440</h1>", page)
}
