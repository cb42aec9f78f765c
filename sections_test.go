package mzident

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func begin(t *testing.T, opts ...Option) (*bytes.Buffer, *Writer) {
	t.Helper()
	b := &bytes.Buffer{}
	w := New(b, opts...)
	require.NoError(t, w.Begin())
	return b, w
}

func TestInputsEmptyStillPresent(t *testing.T) {
	b, w := begin(t)
	require.NoError(t, w.Inputs(nil, nil, nil))

	// The section element must be written, not skipped, when all three
	// collections are empty.
	require.Contains(t, b.String(), "<Inputs></Inputs>")
}

func TestInputsFixedOrder(t *testing.T) {
	b, w := begin(t)
	err := w.Inputs(
		[]SourceFile{{Location: "spectra.mgf"}},
		[]SearchDatabase{{Location: "proteins.fasta"}},
		[]SpectraData{{Location: "spectra.mgf"}},
	)
	require.NoError(t, err)

	out := b.String()
	sf := strings.Index(out, "<SourceFile")
	db := strings.Index(out, "<SearchDatabase")
	sd := strings.Index(out, "<SpectraData")
	require.True(t, sf >= 0 && db > sf && sd > db, "expected SourceFile < SearchDatabase < SpectraData in %q", out)
}

func TestProvidenceDefaults(t *testing.T) {
	b, w := begin(t)
	require.NoError(t, w.Providence(nil, nil, nil))
	out := b.String()

	personID := regexp.MustCompile(`<Person id="([^"]+)"`).FindStringSubmatch(out)
	require.NotNil(t, personID, "no Person element in %q", out)
	contactRef := regexp.MustCompile(`contact_ref="([^"]+)"`).FindStringSubmatch(out)
	require.NotNil(t, contactRef, "no contact_ref in %q", out)

	// The Provider must reference the id written on the default Person.
	require.Equal(t, personID[1], contactRef[1])

	orgID := regexp.MustCompile(`<Organization id="([^"]+)"`).FindStringSubmatch(out)
	require.NotNil(t, orgID)
	affiliation := regexp.MustCompile(`organization_ref="([^"]+)"`).FindStringSubmatch(out)
	require.NotNil(t, affiliation)
	require.Equal(t, orgID[1], affiliation[1])

	require.Contains(t, out, "<AnalysisSoftwareList")
	require.Contains(t, out, `accession="MS:1001271" name="researcher"`)
}

func TestProvidenceSingleSoftware(t *testing.T) {
	b, w := begin(t)
	err := w.Providence([]Software{{Name: "searcher", Version: "1.0"}}, nil, nil)
	require.NoError(t, err)
	require.Contains(t, b.String(),
		`<AnalysisSoftware id="AnalysisSoftware_1" name="searcher" version="1.0">`)
}

func TestControlledVocabulariesAccumulate(t *testing.T) {
	b, w := begin(t)
	require.NoError(t, w.ControlledVocabularies())

	extra := ControlledVocabulary{ID: "NCIT", FullName: "NCI Thesaurus", URI: "http://example.org/ncit.obo"}
	require.NoError(t, w.ControlledVocabularies(extra))

	out := b.String()
	// The second call re-emits the defaults already written by the first:
	// accumulation grows the list, it never de-duplicates.
	require.Equal(t, 2, strings.Count(out, `<cv id="PSI-MS"`))
	require.Equal(t, 1, strings.Count(out, `<cv id="NCIT"`))
	require.Equal(t, 2, strings.Count(out, "<cvList>"))
}

func TestControlledVocabulariesEmptyCallKeepsList(t *testing.T) {
	b, w := begin(t)
	require.NoError(t, w.ControlledVocabularies())
	require.NoError(t, w.ControlledVocabularies())

	// Two identical cvList elements, same content, duplicated in document
	// order.
	require.Equal(t, 2, strings.Count(b.String(), `<cv id="UNIMOD"`))
}

func TestSequenceCollectionRoundTrip(t *testing.T) {
	b, w := begin(t)
	err := w.SequenceCollection(
		StreamOf[DBSequence](),
		StreamOf(Peptide{ID: "P1", Sequence: "PEPTIDE"}),
		StreamOf(PeptideEvidence{ID: "PE1", PeptideID: "P1"}),
	)
	require.NoError(t, err)
	out := b.String()

	peptideID := regexp.MustCompile(`<Peptide id="([^"]+)"`).FindStringSubmatch(out)
	require.NotNil(t, peptideID)
	peptideRef := regexp.MustCompile(`peptide_ref="([^"]+)"`).FindStringSubmatch(out)
	require.NotNil(t, peptideRef)
	require.Equal(t, peptideID[1], peptideRef[1])
	require.Contains(t, out, "<PeptideSequence>PEPTIDE</PeptideSequence>")
}

func TestSequenceCollectionConsumesStreamsOnce(t *testing.T) {
	_, w := begin(t)
	peptides := StreamOf(
		Peptide{ID: "P1", Sequence: "PEPTIDE"},
		Peptide{ID: "P2", Sequence: "EDITPEP"},
	)
	err := w.SequenceCollection(StreamOf[DBSequence](), peptides, StreamOf[PeptideEvidence]())
	require.NoError(t, err)

	// The section drained the stream; re-consumption yields nothing.
	_, ok := peptides.Next()
	require.False(t, ok)
}

func TestProtocolDefaults(t *testing.T) {
	b, w := begin(t)
	require.NoError(t, w.SpectrumIdentificationProtocol(Protocol{}))
	out := b.String()

	require.Contains(t, out,
		`<SpectrumIdentificationProtocol id="SpectrumIdentificationProtocol_1" analysisSoftware_ref="AnalysisSoftware_1">`)
	require.Contains(t, out, `accession="MS:1001083" name="ms-ms search"`)
	require.Contains(t, out,
		`<Threshold><cvParam cvRef="PSI-MS" accession="MS:1001494" name="no threshold"/></Threshold>`)
}

func TestProtocolTolerances(t *testing.T) {
	b, w := begin(t)
	err := w.SpectrumIdentificationProtocol(Protocol{
		FragmentTolerance: &Tolerance{Plus: 0.02},
		ParentTolerance:   SymmetricTolerance(10, "parts per million"),
	})
	require.NoError(t, err)
	out := b.String()

	// A missing minus value mirrors plus; the unit defaults to dalton.
	require.Contains(t, out,
		`<FragmentTolerance><cvParam cvRef="PSI-MS" accession="MS:1001412" name="search tolerance plus value" value="0.02" unitAccession="UO:0000221" unitName="dalton" unitCvRef="UO"/>`)
	require.Contains(t, out,
		`accession="MS:1001413" name="search tolerance minus value" value="0.02"`)
	require.Contains(t, out,
		`<ParentTolerance><cvParam cvRef="PSI-MS" accession="MS:1001412" name="search tolerance plus value" value="10" unitAccession="UO:0000169" unitName="parts per million" unitCvRef="UO"/>`)
}

func TestProtocolEnzymesAndModifications(t *testing.T) {
	b, w := begin(t)
	err := w.SpectrumIdentificationProtocol(Protocol{
		Enzymes: []Enzyme{{Name: "trypsin", MissedCleavages: 2, SiteRegexp: `(?<=[KR])(?!P)`}},
		ModificationParams: []SearchModification{{
			Fixed: true, Mass: 57.02146, Residues: "C",
			Name: "Carbamidomethyl", Accession: "UNIMOD:4",
		}},
	})
	require.NoError(t, err)
	out := b.String()

	require.Contains(t, out, `<Enzyme id="Enzyme_1" missedCleavages="2" semiSpecific="false">`)
	require.Contains(t, out, `<SiteRegexp><![CDATA[(?<=[KR])(?!P)]]></SiteRegexp>`)
	require.Contains(t, out, `accession="MS:1001251" name="trypsin"`)
	require.Contains(t, out,
		`<SearchModification fixedMod="true" massDelta="57.02146" residues="C">`)
	require.Contains(t, out, `cvRef="UNIMOD" accession="UNIMOD:4" name="Carbamidomethyl"`)
}

func TestIdentificationListDefaults(t *testing.T) {
	b, w := begin(t)
	err := w.SpectrumIdentificationList("1", StreamOf(IdentificationResult{
		SpectrumID: "index=0",
		Items: []IdentificationItem{{
			CalculatedMassToCharge:   500.25,
			ExperimentalMassToCharge: 500.26,
			ChargeState:              2,
			PeptideID:                "P1",
			PeptideEvidenceID:        "PE1",
		}},
	}))
	require.NoError(t, err)
	out := b.String()

	require.Contains(t, out, `<SpectrumIdentificationList id="SpectrumIdentificationList_1">`)
	require.Contains(t, out, `rank="1" passThreshold="true"`)
	require.Contains(t, out, `<PeptideEvidenceRef peptideEvidence_ref="PeptideEvidence_PE1"/>`)
}

func TestIdentificationListExplicitFlags(t *testing.T) {
	b, w := begin(t)
	fail := false
	err := w.SpectrumIdentificationList("1", StreamOf(IdentificationResult{
		SpectrumID: "index=1",
		Items: []IdentificationItem{{
			PeptideID: "P1", PeptideEvidenceID: "PE1",
			PassThreshold: &fail, Rank: 3,
			Score: &Score{Name: "mascot:score", Value: 12.5},
		}},
	}))
	require.NoError(t, err)
	out := b.String()

	require.Contains(t, out, `rank="3" passThreshold="false"`)
	require.Contains(t, out, `<userParam name="mascot:score" value="12.5" type="xsd:float"/>`)
}

func TestSectionValidationErrors(t *testing.T) {
	var ve *ValidationError

	_, w := begin(t)
	err := w.Inputs([]SourceFile{{}}, nil, nil)
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "SourceFile", ve.Elem)

	err = w.SequenceCollection(
		StreamOf[DBSequence](),
		StreamOf(Peptide{ID: "P1"}),
		StreamOf[PeptideEvidence](),
	)
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "Peptide", ve.Elem)

	err = w.SpectrumIdentificationList("1", StreamOf(IdentificationResult{}))
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "SpectrumIdentificationResult", ve.Elem)
}
