package mzident

import (
	"strconv"
	"strings"

	xw "github.com/shabbyrobe/xmlwriter"
)

// Param is a controlled-vocabulary or user-defined annotation attached to a
// document entity. It is satisfied by CVParam and UserParam.
type Param interface {
	paramElem() xw.Elem
}

// CVParam is a reference to a term from a controlled vocabulary, optionally
// carrying a value and a unit.
type CVParam struct {
	Accession string
	Name      string
	Value     string
	Ref       string // vocabulary id; derived from Accession when empty

	UnitAccession string
	UnitName      string
	UnitRef       string
}

// Unit attaches a unit to the param by name, looking the accession up in the
// well-known unit table.
func (p CVParam) Unit(name string) CVParam {
	p.UnitName = name
	if acc, ok := unitAccessions[name]; ok {
		p.UnitAccession = acc
		p.UnitRef = vocabularyRef(acc)
	}
	return p
}

func (p CVParam) paramElem() xw.Elem {
	ref := p.Ref
	if ref == "" {
		ref = vocabularyRef(p.Accession)
	}
	attrs := []xw.Attr{
		{Name: "cvRef", Value: ref},
		{Name: "accession", Value: p.Accession},
		{Name: "name", Value: p.Name},
	}
	if p.Value != "" {
		attrs = append(attrs, xw.Attr{Name: "value", Value: p.Value})
	}
	if p.UnitAccession != "" {
		unitRef := p.UnitRef
		if unitRef == "" {
			unitRef = vocabularyRef(p.UnitAccession)
		}
		attrs = append(attrs,
			xw.Attr{Name: "unitAccession", Value: p.UnitAccession},
			xw.Attr{Name: "unitName", Value: p.UnitName},
			xw.Attr{Name: "unitCvRef", Value: unitRef},
		)
	}
	return xw.Elem{Name: "cvParam", Attrs: attrs}
}

// UserParam is a free-form annotation for values with no vocabulary term.
type UserParam struct {
	Name  string
	Value string
	Type  string
}

func (p UserParam) paramElem() xw.Elem {
	attrs := []xw.Attr{{Name: "name", Value: p.Name}}
	if p.Value != "" {
		attrs = append(attrs, xw.Attr{Name: "value", Value: p.Value})
	}
	if p.Type != "" {
		attrs = append(attrs, xw.Attr{Name: "type", Value: p.Type})
	}
	return xw.Elem{Name: "userParam", Attrs: attrs}
}

// vocabularyRef derives the owning vocabulary id from a term accession, e.g.
// "MS:1001083" belongs to "PSI-MS".
func vocabularyRef(accession string) string {
	prefix, _, ok := strings.Cut(accession, ":")
	if !ok {
		return "PSI-MS"
	}
	switch prefix {
	case "MS":
		return "PSI-MS"
	default:
		return prefix
	}
}

// Well-known unit terms from the Unit Ontology.
var unitAccessions = map[string]string{
	"dalton":            "UO:0000221",
	"parts per million": "UO:0000169",
	"second":            "UO:0000010",
	"minute":            "UO:0000031",
	"percent":           "UO:0000187",
}

// Search type terms accepted by SpectrumIdentificationProtocol.
var searchTypes = map[string]string{
	"ms-ms search":                "MS:1001083",
	"de novo search":              "MS:1001010",
	"pmf search":                  "MS:1001081",
	"tag search":                  "MS:1001082",
	"combined pmf + ms-ms search": "MS:1001581",
}

// Enzyme name terms. Names missing here are written as userParams.
var enzymeAccessions = map[string]string{
	"trypsin":      "MS:1001251",
	"arg-c":        "MS:1001303",
	"asp-n":        "MS:1001304",
	"chymotrypsin": "MS:1001306",
	"lys-c":        "MS:1001309",
	"pepsin a":     "MS:1001311",
	"no cleavage":  "MS:1001955",
}

const (
	termResearcher          = "MS:1001271"
	termNoThreshold         = "MS:1001494"
	termTolerancePlusValue  = "MS:1001412"
	termToleranceMinusValue = "MS:1001413"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
