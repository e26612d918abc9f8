package aa

import (
	"fmt"
	"strings"
)

// ArtifactType is the closed set of artifact subtypes.
type ArtifactType int

const (
	ArtifactTypeUnknown ArtifactType = iota
	ArtifactTypeBuilding
	ArtifactTypeCoin
	ArtifactTypeGem
	ArtifactTypeSculpture
	ArtifactTypeSite
	ArtifactTypeVase
)

// ArtifactTypes lists every known subtype, excluding ArtifactTypeUnknown.
var ArtifactTypes = []ArtifactType{
	ArtifactTypeBuilding,
	ArtifactTypeCoin,
	ArtifactTypeGem,
	ArtifactTypeSculpture,
	ArtifactTypeSite,
	ArtifactTypeVase,
}

// ArtifactTypeFromIRI maps a class IRI to its ArtifactType.
// Unrecognised IRIs map to ArtifactTypeUnknown.
func ArtifactTypeFromIRI(iri string) ArtifactType {
	switch iri {
	case ClassBuilding:
		return ArtifactTypeBuilding
	case ClassCoin:
		return ArtifactTypeCoin
	case ClassGem:
		return ArtifactTypeGem
	case ClassSculpture:
		return ArtifactTypeSculpture
	case ClassSite:
		return ArtifactTypeSite
	case ClassVase:
		return ArtifactTypeVase
	default:
		return ArtifactTypeUnknown
	}
}

// IRI returns the class IRI for the type, or "" for ArtifactTypeUnknown.
func (t ArtifactType) IRI() string {
	switch t {
	case ArtifactTypeBuilding:
		return ClassBuilding
	case ArtifactTypeCoin:
		return ClassCoin
	case ArtifactTypeGem:
		return ClassGem
	case ArtifactTypeSculpture:
		return ClassSculpture
	case ArtifactTypeSite:
		return ClassSite
	case ArtifactTypeVase:
		return ClassVase
	default:
		return ""
	}
}

// Directory returns the output directory name used for web pages of this type.
func (t ArtifactType) Directory() string {
	switch t {
	case ArtifactTypeBuilding:
		return "buildings"
	case ArtifactTypeCoin:
		return "coins"
	case ArtifactTypeGem:
		return "gems"
	case ArtifactTypeSculpture:
		return "sculptures"
	case ArtifactTypeSite:
		return "sites"
	case ArtifactTypeVase:
		return "vases"
	default:
		return "unknown"
	}
}

// String returns the singular lower-case name of the type.
func (t ArtifactType) String() string {
	switch t {
	case ArtifactTypeBuilding:
		return "building"
	case ArtifactTypeCoin:
		return "coin"
	case ArtifactTypeGem:
		return "gem"
	case ArtifactTypeSculpture:
		return "sculpture"
	case ArtifactTypeSite:
		return "site"
	case ArtifactTypeVase:
		return "vase"
	default:
		return "unknown"
	}
}

// ParseArtifactType parses a singular or plural type name, case-insensitively.
func ParseArtifactType(name string) (ArtifactType, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, t := range ArtifactTypes {
		if n == t.String() || n == t.Directory() {
			return t, nil
		}
	}
	return ArtifactTypeUnknown, fmt.Errorf("unknown artifact type: %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (t ArtifactType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ArtifactType) UnmarshalText(text []byte) error {
	if strings.EqualFold(string(text), "unknown") {
		*t = ArtifactTypeUnknown
		return nil
	}
	parsed, err := ParseArtifactType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
