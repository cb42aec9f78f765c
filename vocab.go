package mzident

import xw "github.com/shabbyrobe/xmlwriter"

// ControlledVocabulary declares a term source referenced by cvParam elements
// throughout the document.
type ControlledVocabulary struct {
	ID       string
	FullName string
	URI      string
	Version  string
}

func (v ControlledVocabulary) elem() xw.Elem {
	attrs := []xw.Attr{
		{Name: "id", Value: v.ID},
		{Name: "fullName", Value: v.FullName},
	}
	if v.Version != "" {
		attrs = append(attrs, xw.Attr{Name: "version", Value: v.Version})
	}
	attrs = append(attrs, xw.Attr{Name: "uri", Value: v.URI})
	return xw.Elem{Name: "cv", Attrs: attrs}
}

// DefaultVocabularies returns the catalog every new session starts with:
// the PSI-MS vocabulary, UNIMOD, and the Unit Ontology.
func DefaultVocabularies() []ControlledVocabulary {
	return []ControlledVocabulary{
		{
			ID:       "PSI-MS",
			FullName: "Proteomics Standards Initiative Mass Spectrometry Vocabularies",
			URI:      "http://psidev.cvs.sourceforge.net/viewvc/psidev/psi/psi-ms/mzML/controlledVocabulary/psi-ms.obo",
			Version:  "2.25.0",
		},
		{
			ID:       "UNIMOD",
			FullName: "UNIMOD",
			URI:      "http://www.unimod.org/obo/unimod.obo",
		},
		{
			ID:       "UO",
			FullName: "Unit Ontology",
			URI:      "http://obo.cvs.sourceforge.net/*checkout*/obo/obo/ontology/phenotype/unit.obo",
		},
	}
}
