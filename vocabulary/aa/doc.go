// Package aa provides the vocabulary used by the Perseus art & archaeology
// artifact graphs.
//
// The graphs describe artifacts with a small, fixed set of CIDOC-CRM,
// Getty AAT, RDF/RDFS and schema.org terms:
//
//	rdf:type                        artifact class (crm:E22_Human-Made_Object + one AAT type)
//	rdfs:label                      display label
//	crm:P3_has_note                 "key: value" notes, used as ad hoc properties
//	crm:P138i_is_represented_by     link from an artifact to an IIIF image
//	schema:caption                  image caption
//	schema:creditText               image credit line
//
// Artifact subtypes are modelled as the closed ArtifactType enumeration, each
// bound to its AAT identifier and to an output directory.
package aa
