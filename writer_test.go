package mzident

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	xw "github.com/shabbyrobe/xmlwriter"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

type closeBuffer struct {
	bytes.Buffer
	closed bool
}

func (c *closeBuffer) Close() error {
	c.closed = true
	return nil
}

func TestWriterNotReadyBeforeBegin(t *testing.T) {
	w := New(&bytes.Buffer{})

	var nr *NotReadyError
	require.ErrorAs(t, w.ControlledVocabularies(), &nr)
	require.ErrorAs(t, w.Providence(nil, nil, nil), &nr)
	require.ErrorAs(t, w.Inputs(nil, nil, nil), &nr)
	require.ErrorAs(t, w.SpectrumIdentificationProtocol(Protocol{}), &nr)
	require.ErrorAs(t, w.Close(), &nr)
}

func TestWriterClosed(t *testing.T) {
	_, w := begin(t)
	require.NoError(t, w.Close())

	var sv *ScopeViolationError
	require.ErrorAs(t, w.ControlledVocabularies(), &sv)
	require.ErrorAs(t, w.Inputs(nil, nil, nil), &sv)
	require.ErrorAs(t, w.Close(), &sv)
	require.ErrorAs(t, w.Begin(), &sv)
}

func TestWriterBeginTwice(t *testing.T) {
	_, w := begin(t)

	var sv *ScopeViolationError
	require.ErrorAs(t, w.Begin(), &sv)
}

func TestWriterEmptyDocument(t *testing.T) {
	b := &bytes.Buffer{}
	w := New(b,
		WithID("empty"),
		WithCreationDate(time.Date(2021, 3, 30, 14, 0, 0, 0, time.UTC)))
	require.NoError(t, w.Begin())
	require.NoError(t, w.Close())

	require.Equal(t, `<?xml version="1.0" encoding="UTF-8"?>`+"\n"+
		`<MzIdentML id="empty" version="1.1.0"`+
		` xmlns="http://psidev.info/psi/pi/mzIdentML/1.1"`+
		` xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"`+
		` xsi:schemaLocation="http://psidev.info/psi/pi/mzIdentML/1.1 http://www.psidev.info/files/mzIdentML1.1.0.xsd"`+
		` creationDate="2021-03-30T14:00:00"/>`, b.String())
}

func TestWriterClosesSink(t *testing.T) {
	cb := &closeBuffer{}
	w := New(cb)
	require.NoError(t, w.Begin())
	require.NoError(t, w.Close())
	require.True(t, cb.closed)
}

func TestWriterEncoding(t *testing.T) {
	b := &bytes.Buffer{}
	w := New(b, WithEncoding("windows-1252", charmap.Windows1252.NewEncoder()))
	require.NoError(t, w.Begin())
	require.NoError(t, w.Close())
	require.Contains(t, b.String(), `encoding="windows-1252"`)
}

func TestWriterResolvePreassignsIDs(t *testing.T) {
	b, w := begin(t)

	// Ids requested up front must match the ids later written.
	id := w.Resolve("Peptide", "P1")
	err := w.SequenceCollection(
		StreamOf[DBSequence](),
		StreamOf(Peptide{ID: "P1", Sequence: "PEPTIDE"}),
		StreamOf[PeptideEvidence](),
	)
	require.NoError(t, err)
	require.Contains(t, b.String(), `<Peptide id="`+id+`">`)
}

func TestGenerateBuildErrorWins(t *testing.T) {
	boom := errors.New("boom")
	b := &closeBuffer{}
	err := Generate(b, func(w *Writer) error { return boom })
	require.ErrorIs(t, err, boom)

	// The session is still wound down: the sink holds a complete document
	// and has been closed.
	require.True(t, b.closed)
	require.True(t, strings.HasSuffix(b.String(), "/>"), "unterminated document: %q", b.String())
}

func TestGenerateSectionError(t *testing.T) {
	var ve *ValidationError
	err := Generate(&bytes.Buffer{}, func(w *Writer) error {
		return w.Inputs([]SourceFile{{}}, nil, nil)
	})
	require.ErrorAs(t, err, &ve)
}

func TestDocumentGolden(t *testing.T) {
	b := &bytes.Buffer{}
	err := Generate(b, func(w *Writer) (err error) {
		ec := &xw.ErrCollector{}
		defer ec.Set(&err)
		ec.Do(
			w.ControlledVocabularies(),
			w.Providence([]Software{{Name: "mzident-go", Version: "0.1.0"}}, nil, nil),
			w.Inputs(
				[]SourceFile{{Location: "spectra.mgf"}},
				[]SearchDatabase{{Name: "target", Location: "proteins.fasta"}},
				[]SpectraData{{
					Location:                  "spectra.mgf",
					SpectrumIDFormat:          "multiple peak list nativeID format",
					SpectrumIDFormatAccession: "MS:1000774",
				}},
			),
			w.SpectrumIdentificationProtocol(Protocol{
				Enzymes:           []Enzyme{{Name: "trypsin", MissedCleavages: 2}},
				FragmentTolerance: SymmetricTolerance(0.5, "dalton"),
			}),
			w.SequenceCollection(
				StreamOf(DBSequence{Accession: "PROT1", Sequence: "MKTAYIAKQR"}),
				StreamOf(Peptide{ID: "P1", Sequence: "TAYIAK"}),
				StreamOf(PeptideEvidence{ID: "PE1", PeptideID: "P1", Start: 3, End: 8, Pre: "K", Post: "Q"}),
			),
			w.SpectrumIdentificationList("1", StreamOf(IdentificationResult{
				ID:         "R1",
				SpectrumID: "index=0",
				Items: []IdentificationItem{{
					ID:                       "I1",
					CalculatedMassToCharge:   333.68,
					ExperimentalMassToCharge: 333.69,
					ChargeState:              2,
					PeptideID:                "P1",
					PeptideEvidenceID:        "PE1",
					Score:                    &Score{Name: "mascot:score", Value: 51},
				}},
			})),
		)
		return nil
	},
		WithID("example_1"),
		WithCreationDate(time.Date(2021, 3, 30, 14, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"))
	g.Assert(t, "document", b.Bytes())
}
