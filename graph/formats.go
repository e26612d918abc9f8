package graph

// Format names a graph serialization.
type Format string

const (
	// FormatTurtle is Turtle (.ttl).
	FormatTurtle Format = "turtle"

	// FormatNTriples is N-Triples (.nt).
	FormatNTriples Format = "ntriples"

	// FormatNQuads is N-Quads (.nq). Graph labels are dropped on load.
	FormatNQuads Format = "nquads"

	// FormatRDFXML is RDF/XML (.rdf). Decode only.
	FormatRDFXML Format = "rdfxml"
)

// FormatInfo provides metadata about a graph format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extensions are the recognised file extensions (with dot).
	Extensions []string

	// Writable reports whether Dump supports the format.
	Writable bool
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatTurtle: {
		Name:       FormatTurtle,
		MIMEType:   "text/turtle",
		Extensions: []string{".ttl"},
		Writable:   true,
	},
	FormatNTriples: {
		Name:       FormatNTriples,
		MIMEType:   "application/n-triples",
		Extensions: []string{".nt"},
		Writable:   true,
	},
	FormatNQuads: {
		Name:       FormatNQuads,
		MIMEType:   "application/n-quads",
		Extensions: []string{".nq"},
	},
	FormatRDFXML: {
		Name:       FormatRDFXML,
		MIMEType:   "application/rdf+xml",
		Extensions: []string{".rdf", ".xml", ".owl"},
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}
