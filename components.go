package mzident

import (
	xw "github.com/shabbyrobe/xmlwriter"
)

// Entity builders. Each entity is a plain struct built by the caller,
// converted to a serializer node tree with its ids resolved through the
// session's Registry, written, and discarded. Builders never retain state;
// the Registry is the only thing shared between them.

// refKey substitutes the format's conventional default key for reference
// fields the caller left empty, so an unkeyed reference points at the first
// entity of its type rather than minting a dangling id.
func refKey(key string) string {
	if key == "" {
		return "1"
	}
	return key
}

func paramNodes(params []Param) []xw.Writable {
	if len(params) == 0 {
		return nil
	}
	nodes := make([]xw.Writable, 0, len(params))
	for _, p := range params {
		nodes = append(nodes, p.paramElem())
	}
	return nodes
}

// Software describes one AnalysisSoftware entry.
type Software struct {
	ID      string
	Name    string
	Version string
	URI     string
	Params  []Param
}

func (s Software) elem(ids *Registry) (xw.Elem, error) {
	attrs := []xw.Attr{{Name: "id", Value: ids.Resolve("AnalysisSoftware", s.ID)}}
	if s.Name != "" {
		attrs = append(attrs, xw.Attr{Name: "name", Value: s.Name})
	}
	if s.Version != "" {
		attrs = append(attrs, xw.Attr{Name: "version", Value: s.Version})
	}
	if s.URI != "" {
		attrs = append(attrs, xw.Attr{Name: "uri", Value: s.URI})
	}
	name := paramNodes(s.Params)
	if name == nil {
		name = []xw.Writable{UserParam{Name: s.Name}.paramElem()}
	}
	return xw.Elem{
		Name:  "AnalysisSoftware",
		Attrs: attrs,
		Content: []xw.Writable{
			xw.Elem{Name: "SoftwareName", Content: name},
		},
	}, nil
}

// Person describes a contact in the audit collection. Affiliation is the
// key of the Organization the person belongs to.
type Person struct {
	ID          string
	FirstName   string
	LastName    string
	Affiliation string
	Params      []Param
}

func (p Person) elem(ids *Registry) (xw.Elem, error) {
	attrs := []xw.Attr{{Name: "id", Value: ids.Resolve("Person", p.ID)}}
	if p.FirstName != "" {
		attrs = append(attrs, xw.Attr{Name: "firstName", Value: p.FirstName})
	}
	if p.LastName != "" {
		attrs = append(attrs, xw.Attr{Name: "lastName", Value: p.LastName})
	}
	content := paramNodes(p.Params)
	if p.Affiliation != "" {
		content = append(content, xw.Elem{
			Name:  "Affiliation",
			Attrs: []xw.Attr{{Name: "organization_ref", Value: ids.Resolve("Organization", p.Affiliation)}},
		})
	}
	return xw.Elem{Name: "Person", Attrs: attrs, Content: content}, nil
}

// Organization describes an organization in the audit collection.
type Organization struct {
	ID     string
	Name   string
	Params []Param
}

func (o Organization) elem(ids *Registry) (xw.Elem, error) {
	attrs := []xw.Attr{{Name: "id", Value: ids.Resolve("Organization", o.ID)}}
	if o.Name != "" {
		attrs = append(attrs, xw.Attr{Name: "name", Value: o.Name})
	}
	return xw.Elem{Name: "Organization", Attrs: attrs, Content: paramNodes(o.Params)}, nil
}

func providerElem(ids *Registry, contactID string) xw.Elem {
	return xw.Elem{
		Name:  "Provider",
		Attrs: []xw.Attr{{Name: "id", Value: ids.Resolve("Provider", "")}},
		Content: []xw.Writable{
			xw.Elem{
				Name:  "ContactRole",
				Attrs: []xw.Attr{{Name: "contact_ref", Value: contactID}},
				Content: []xw.Writable{
					xw.Elem{Name: "Role", Content: []xw.Writable{
						CVParam{Accession: termResearcher, Name: "researcher"}.paramElem(),
					}},
				},
			},
		},
	}
}

func fileFormatElem(name, accession string) (xw.Elem, bool) {
	if name == "" && accession == "" {
		return xw.Elem{}, false
	}
	var term xw.Elem
	if accession != "" {
		term = CVParam{Accession: accession, Name: name}.paramElem()
	} else {
		term = UserParam{Name: name}.paramElem()
	}
	return xw.Elem{Name: "FileFormat", Content: []xw.Writable{term}}, true
}

// SourceFile describes one input file reference.
type SourceFile struct {
	ID              string
	Location        string
	Format          string
	FormatAccession string
	Params          []Param
}

func (f SourceFile) elem(ids *Registry) (xw.Elem, error) {
	if f.Location == "" {
		return xw.Elem{}, invalid("SourceFile", "Location", "is required")
	}
	content := []xw.Writable{}
	if ff, ok := fileFormatElem(f.Format, f.FormatAccession); ok {
		content = append(content, ff)
	}
	content = append(content, paramNodes(f.Params)...)
	return xw.Elem{
		Name: "SourceFile",
		Attrs: []xw.Attr{
			{Name: "id", Value: ids.Resolve("SourceFile", f.ID)},
			{Name: "location", Value: f.Location},
		},
		Content: content,
	}, nil
}

// SearchDatabase describes a sequence database searched by the analysis.
type SearchDatabase struct {
	ID              string
	Name            string
	Location        string
	Format          string
	FormatAccession string
	Params          []Param
}

func (d SearchDatabase) elem(ids *Registry) (xw.Elem, error) {
	if d.Location == "" {
		return xw.Elem{}, invalid("SearchDatabase", "Location", "is required")
	}
	attrs := []xw.Attr{
		{Name: "id", Value: ids.Resolve("SearchDatabase", d.ID)},
		{Name: "location", Value: d.Location},
	}
	if d.Name != "" {
		attrs = append(attrs, xw.Attr{Name: "name", Value: d.Name})
	}
	content := []xw.Writable{}
	if ff, ok := fileFormatElem(d.Format, d.FormatAccession); ok {
		content = append(content, ff)
	}
	dbName := d.Name
	if dbName == "" {
		dbName = d.Location
	}
	content = append(content, xw.Elem{
		Name:    "DatabaseName",
		Content: []xw.Writable{UserParam{Name: dbName}.paramElem()},
	})
	content = append(content, paramNodes(d.Params)...)
	return xw.Elem{Name: "SearchDatabase", Attrs: attrs, Content: content}, nil
}

// SpectraData describes the spectra source the identifications refer to.
type SpectraData struct {
	ID                        string
	Location                  string
	Format                    string
	FormatAccession           string
	SpectrumIDFormat          string
	SpectrumIDFormatAccession string
	Params                    []Param
}

func (d SpectraData) elem(ids *Registry) (xw.Elem, error) {
	if d.Location == "" {
		return xw.Elem{}, invalid("SpectraData", "Location", "is required")
	}
	content := []xw.Writable{}
	if ff, ok := fileFormatElem(d.Format, d.FormatAccession); ok {
		content = append(content, ff)
	}
	if d.SpectrumIDFormat != "" || d.SpectrumIDFormatAccession != "" {
		var term xw.Elem
		if d.SpectrumIDFormatAccession != "" {
			term = CVParam{Accession: d.SpectrumIDFormatAccession, Name: d.SpectrumIDFormat}.paramElem()
		} else {
			term = UserParam{Name: d.SpectrumIDFormat}.paramElem()
		}
		content = append(content, xw.Elem{Name: "SpectrumIDFormat", Content: []xw.Writable{term}})
	}
	content = append(content, paramNodes(d.Params)...)
	return xw.Elem{
		Name: "SpectraData",
		Attrs: []xw.Attr{
			{Name: "id", Value: ids.Resolve("SpectraData", d.ID)},
			{Name: "location", Value: d.Location},
		},
		Content: content,
	}, nil
}

// DBSequence describes a database protein sequence.
type DBSequence struct {
	ID               string
	Accession        string
	Sequence         string
	SearchDatabaseID string
	Params           []Param
}

func (s DBSequence) elem(ids *Registry) (xw.Elem, error) {
	if s.Accession == "" {
		return xw.Elem{}, invalid("DBSequence", "Accession", "is required")
	}
	attrs := []xw.Attr{
		{Name: "id", Value: ids.Resolve("DBSequence", s.ID)},
		{Name: "accession", Value: s.Accession},
		{Name: "searchDatabase_ref", Value: ids.Resolve("SearchDatabase", refKey(s.SearchDatabaseID))},
	}
	content := []xw.Writable{}
	if s.Sequence != "" {
		attrs = append(attrs, xw.Attr{Name: "length"}.Int(len(s.Sequence)))
		content = append(content, xw.Elem{Name: "Seq", Content: []xw.Writable{xw.Text(s.Sequence)}})
	}
	content = append(content, paramNodes(s.Params)...)
	return xw.Elem{Name: "DBSequence", Attrs: attrs, Content: content}, nil
}

// Modification is a located mass modification on a peptide.
type Modification struct {
	Location              int
	Residues              string
	MonoisotopicMassDelta float64
	Name                  string
	Accession             string
}

func (m Modification) elem() xw.Elem {
	attrs := []xw.Attr{
		xw.Attr{Name: "location"}.Int(m.Location),
		{Name: "monoisotopicMassDelta", Value: formatFloat(m.MonoisotopicMassDelta)},
	}
	if m.Residues != "" {
		attrs = append(attrs, xw.Attr{Name: "residues", Value: m.Residues})
	}
	var term xw.Elem
	if m.Accession != "" {
		term = CVParam{Accession: m.Accession, Name: m.Name}.paramElem()
	} else {
		term = UserParam{Name: m.Name}.paramElem()
	}
	return xw.Elem{Name: "Modification", Attrs: attrs, Content: []xw.Writable{term}}
}

// Peptide describes one peptide sequence with its modifications.
type Peptide struct {
	ID            string
	Sequence      string
	Modifications []Modification
	Params        []Param
}

func (p Peptide) elem(ids *Registry) (xw.Elem, error) {
	if p.Sequence == "" {
		return xw.Elem{}, invalid("Peptide", "Sequence", "is required")
	}
	content := []xw.Writable{
		xw.Elem{Name: "PeptideSequence", Content: []xw.Writable{xw.Text(p.Sequence)}},
	}
	for _, m := range p.Modifications {
		content = append(content, m.elem())
	}
	content = append(content, paramNodes(p.Params)...)
	return xw.Elem{
		Name:    "Peptide",
		Attrs:   []xw.Attr{{Name: "id", Value: ids.Resolve("Peptide", p.ID)}},
		Content: content,
	}, nil
}

// PeptideEvidence links a Peptide to the DBSequence it was observed in.
type PeptideEvidence struct {
	ID           string
	PeptideID    string
	DBSequenceID string
	Start        int
	End          int
	Pre          string
	Post         string
	IsDecoy      bool
	Params       []Param
}

func (e PeptideEvidence) elem(ids *Registry) (xw.Elem, error) {
	if e.PeptideID == "" {
		return xw.Elem{}, invalid("PeptideEvidence", "PeptideID", "is required")
	}
	attrs := []xw.Attr{
		{Name: "id", Value: ids.Resolve("PeptideEvidence", e.ID)},
		{Name: "peptide_ref", Value: ids.Resolve("Peptide", e.PeptideID)},
		{Name: "dBSequence_ref", Value: ids.Resolve("DBSequence", refKey(e.DBSequenceID))},
	}
	if e.Start != 0 || e.End != 0 {
		attrs = append(attrs,
			xw.Attr{Name: "start"}.Int(e.Start),
			xw.Attr{Name: "end"}.Int(e.End))
	}
	if e.Pre != "" {
		attrs = append(attrs, xw.Attr{Name: "pre", Value: e.Pre})
	}
	if e.Post != "" {
		attrs = append(attrs, xw.Attr{Name: "post", Value: e.Post})
	}
	attrs = append(attrs, xw.Attr{Name: "isDecoy"}.Bool(e.IsDecoy))
	return xw.Elem{Name: "PeptideEvidence", Attrs: attrs, Content: paramNodes(e.Params)}, nil
}

// Enzyme describes a cleavage agent used by the search.
type Enzyme struct {
	ID              string
	Name            string
	SiteRegexp      string
	MissedCleavages int
	SemiSpecific    bool
}

func (e Enzyme) elem(ids *Registry) (xw.Elem, error) {
	attrs := []xw.Attr{
		{Name: "id", Value: ids.Resolve("Enzyme", e.ID)},
		xw.Attr{Name: "missedCleavages"}.Int(e.MissedCleavages),
		xw.Attr{Name: "semiSpecific"}.Bool(e.SemiSpecific),
	}
	content := []xw.Writable{}
	if e.SiteRegexp != "" {
		content = append(content, xw.Elem{
			Name:    "SiteRegexp",
			Content: []xw.Writable{xw.CData{Content: e.SiteRegexp}},
		})
	}
	if e.Name != "" {
		var term xw.Elem
		if acc, ok := enzymeAccessions[e.Name]; ok {
			term = CVParam{Accession: acc, Name: e.Name}.paramElem()
		} else {
			term = UserParam{Name: e.Name}.paramElem()
		}
		content = append(content, xw.Elem{Name: "EnzymeName", Content: []xw.Writable{term}})
	}
	return xw.Elem{Name: "Enzyme", Attrs: attrs, Content: content}, nil
}

// SearchModification describes a fixed or variable modification considered
// by the search.
type SearchModification struct {
	Fixed     bool
	Mass      float64
	Residues  string
	Name      string
	Accession string
}

func (m SearchModification) elem() xw.Elem {
	attrs := []xw.Attr{
		xw.Attr{Name: "fixedMod"}.Bool(m.Fixed),
		{Name: "massDelta", Value: formatFloat(m.Mass)},
		{Name: "residues", Value: m.Residues},
	}
	var term xw.Elem
	if m.Accession != "" {
		term = CVParam{Accession: m.Accession, Name: m.Name}.paramElem()
	} else {
		term = UserParam{Name: m.Name}.paramElem()
	}
	return xw.Elem{Name: "SearchModification", Attrs: attrs, Content: []xw.Writable{term}}
}

// Tolerance is a search tolerance window. A zero Minus mirrors Plus; Unit
// defaults to dalton.
type Tolerance struct {
	Plus  float64
	Minus float64
	Unit  string
}

// SymmetricTolerance builds a Tolerance with the same magnitude either side.
func SymmetricTolerance(v float64, unit string) *Tolerance {
	return &Tolerance{Plus: v, Minus: v, Unit: unit}
}

func (t Tolerance) elem(name string) xw.Elem {
	minus := t.Minus
	if minus == 0 {
		minus = t.Plus
	}
	unit := t.Unit
	if unit == "" {
		unit = "dalton"
	}
	return xw.Elem{Name: name, Content: []xw.Writable{
		CVParam{
			Accession: termTolerancePlusValue,
			Name:      "search tolerance plus value",
			Value:     formatFloat(t.Plus),
		}.Unit(unit).paramElem(),
		CVParam{
			Accession: termToleranceMinusValue,
			Name:      "search tolerance minus value",
			Value:     formatFloat(minus),
		}.Unit(unit).paramElem(),
	}}
}

func thresholdElem(params []Param) xw.Elem {
	content := paramNodes(params)
	if content == nil {
		content = []xw.Writable{
			CVParam{Accession: termNoThreshold, Name: "no threshold"}.paramElem(),
		}
	}
	return xw.Elem{Name: "Threshold", Content: content}
}

// Score is the search engine score attached to an identification item.
// With an Accession it is written as a cvParam, otherwise as a userParam.
type Score struct {
	Name      string
	Accession string
	Value     float64
}

func (s Score) param() Param {
	name := s.Name
	if name == "" {
		name = "score"
	}
	if s.Accession != "" {
		return CVParam{Accession: s.Accession, Name: name, Value: formatFloat(s.Value)}
	}
	return UserParam{Name: name, Value: formatFloat(s.Value), Type: "xsd:float"}
}

// IdentificationItem is one candidate match for a spectrum.
type IdentificationItem struct {
	ID                       string
	CalculatedMassToCharge   float64
	ExperimentalMassToCharge float64
	ChargeState              int
	PeptideID                string
	PeptideEvidenceID        string
	Score                    *Score
	Params                   []Param

	// PassThreshold defaults to true when nil; Rank defaults to 1 when 0.
	PassThreshold *bool
	Rank          int
}

func (it IdentificationItem) elem(ids *Registry) (xw.Elem, error) {
	if it.PeptideID == "" {
		return xw.Elem{}, invalid("SpectrumIdentificationItem", "PeptideID", "is required")
	}
	if it.PeptideEvidenceID == "" {
		return xw.Elem{}, invalid("SpectrumIdentificationItem", "PeptideEvidenceID", "is required")
	}
	pass := true
	if it.PassThreshold != nil {
		pass = *it.PassThreshold
	}
	rank := it.Rank
	if rank == 0 {
		rank = 1
	}
	attrs := []xw.Attr{
		{Name: "id", Value: ids.Resolve("SpectrumIdentificationItem", it.ID)},
		{Name: "calculatedMassToCharge", Value: formatFloat(it.CalculatedMassToCharge)},
		{Name: "experimentalMassToCharge", Value: formatFloat(it.ExperimentalMassToCharge)},
		xw.Attr{Name: "chargeState"}.Int(it.ChargeState),
		{Name: "peptide_ref", Value: ids.Resolve("Peptide", it.PeptideID)},
		xw.Attr{Name: "rank"}.Int(rank),
		xw.Attr{Name: "passThreshold"}.Bool(pass),
	}
	content := []xw.Writable{
		xw.Elem{
			Name: "PeptideEvidenceRef",
			Attrs: []xw.Attr{{
				Name:  "peptideEvidence_ref",
				Value: ids.Resolve("PeptideEvidence", it.PeptideEvidenceID),
			}},
		},
	}
	if it.Score != nil {
		content = append(content, it.Score.param().paramElem())
	}
	content = append(content, paramNodes(it.Params)...)
	return xw.Elem{Name: "SpectrumIdentificationItem", Attrs: attrs, Content: content}, nil
}

// IdentificationResult groups the candidate items for one spectrum.
type IdentificationResult struct {
	ID            string
	SpectrumID    string
	SpectraDataID string
	Items         []IdentificationItem
	Params        []Param
}

func (r IdentificationResult) elem(ids *Registry) (xw.Elem, error) {
	if r.SpectrumID == "" {
		return xw.Elem{}, invalid("SpectrumIdentificationResult", "SpectrumID", "is required")
	}
	attrs := []xw.Attr{
		{Name: "id", Value: ids.Resolve("SpectrumIdentificationResult", r.ID)},
		{Name: "spectrumID", Value: r.SpectrumID},
		{Name: "spectraData_ref", Value: ids.Resolve("SpectraData", refKey(r.SpectraDataID))},
	}
	content := make([]xw.Writable, 0, len(r.Items))
	for _, it := range r.Items {
		e, err := it.elem(ids)
		if err != nil {
			return xw.Elem{}, err
		}
		content = append(content, e)
	}
	content = append(content, paramNodes(r.Params)...)
	return xw.Elem{Name: "SpectrumIdentificationResult", Attrs: attrs, Content: content}, nil
}
