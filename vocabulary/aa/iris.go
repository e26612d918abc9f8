package aa

import (
	"github.com/cayleygraph/quad/voc/rdf"
	"github.com/cayleygraph/quad/voc/rdfs"
)

// Namespace IRIs.
const (
	// AAT is the Getty Art & Architecture Thesaurus namespace.
	AAT = "http://vocab.getty.edu/aat/"

	// CRM is the CIDOC Conceptual Reference Model namespace.
	CRM = "http://www.cidoc-crm.org/cidoc-crm/"

	// EntityNamespace is the base IRI for artifact instances.
	EntityNamespace = "http://perseus.tufts.edu/ns/aa/"

	// Schema is the schema.org namespace.
	Schema = "https://schema.org/"

	// ImageNamespace is the canonical IIIF image service namespace. Image
	// IRIs in the graphs live under it.
	ImageNamespace = "https://iiif.perseus.tufts.edu/iiif/3/"

	// RDF and RDFS namespaces.
	RDF  = rdf.NS
	RDFS = rdfs.NS
)

// Predicate IRIs.
const (
	PredicateType          = RDF + "type"
	PredicateLabel         = RDFS + "label"
	PredicateNote          = CRM + "P3_has_note"
	PredicateRepresentedBy = CRM + "P138i_is_represented_by"
	PredicateCaption       = Schema + "caption"
	PredicateCreditText    = Schema + "creditText"
)

// Class IRIs.
const (
	// ClassHumanMadeObject is the generic marker every artifact carries in
	// addition to its AAT type.
	ClassHumanMadeObject = CRM + "E22_Human-Made_Object"

	// ClassHumanMadeObjectLegacy is a misspelling of ClassHumanMadeObject
	// found in older graph files.
	ClassHumanMadeObjectLegacy = CRM + "E22_Human_Made_Object"

	// ClassArtifact is the AAT concept for artifacts in general.
	ClassArtifact = AAT + "300117127"

	ClassBuilding  = AAT + "building"
	ClassCoin      = AAT + "coin"
	ClassGem       = AAT + "300011172"
	ClassSculpture = AAT + "sculpture"
	ClassSite      = AAT + "site"
	ClassVase      = AAT + "300132254"
)

// Prefixes returns the namespace prefixes bound on every graph store.
// They only affect serialization.
func Prefixes() map[string]string {
	return map[string]string{
		"aa":     EntityNamespace,
		"aat":    AAT,
		"crm":    CRM,
		"image":  ImageNamespace,
		"schema": Schema,
		"rdf":    RDF,
		"rdfs":   RDFS,
	}
}

// IsGenericClass reports whether iri is one of the generic classes that
// every artifact carries and which therefore do not classify it.
func IsGenericClass(iri string) bool {
	switch iri {
	case ClassHumanMadeObject, ClassHumanMadeObjectLegacy, ClassArtifact:
		return true
	}
	return false
}
