package compiler

// Kind names a class of compiled output.
type Kind string

const (
	KindManifest    Kind = "manifest"
	KindWebPage     Kind = "page"
	KindMarkdown    Kind = "markdown"
	KindEntityTable Kind = "entity-table"
	KindImageTable  Kind = "image-table"
	KindProps       Kind = "props"
	KindDump        Kind = "dump"
)

// KindInfo provides metadata about an output kind.
type KindInfo struct {
	// Name is the kind identifier.
	Name Kind

	// MIMEType is the content type sinks publish the file with.
	MIMEType string

	// Extension is the file extension (with dot). Empty when it depends on
	// the serialization, as for graph dumps.
	Extension string

	// Description describes the output.
	Description string
}

// KindRegistry contains metadata for every output kind.
var KindRegistry = map[Kind]KindInfo{
	KindManifest: {
		Name:        KindManifest,
		MIMEType:    "application/ld+json",
		Extension:   ".json",
		Description: "IIIF Presentation 3 manifest",
	},
	KindWebPage: {
		Name:        KindWebPage,
		MIMEType:    "text/html; charset=utf-8",
		Extension:   ".html",
		Description: "Artifact web page",
	},
	KindMarkdown: {
		Name:        KindMarkdown,
		MIMEType:    "text/markdown; charset=utf-8",
		Extension:   ".md",
		Description: "Artifact page as Markdown with front matter",
	},
	KindEntityTable: {
		Name:        KindEntityTable,
		MIMEType:    "text/csv; charset=utf-8",
		Extension:   ".csv",
		Description: "One row per artifact of the selected type",
	},
	KindImageTable: {
		Name:        KindImageTable,
		MIMEType:    "text/csv; charset=utf-8",
		Extension:   ".csv",
		Description: "One row per image of the selected type",
	},
	KindProps: {
		Name:        KindProps,
		MIMEType:    "application/json",
		Extension:   ".json",
		Description: "Artifact properties keyed by identifier",
	},
	KindDump: {
		Name:        KindDump,
		Description: "Serialized merged graph",
	},
}

// GetKindInfo returns metadata for a kind.
func GetKindInfo(kind Kind) (KindInfo, bool) {
	info, ok := KindRegistry[kind]
	return info, ok
}
