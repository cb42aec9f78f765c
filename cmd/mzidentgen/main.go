// Command mzidentgen renders a YAML document description into a streamed
// MzIdentML file.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	mzident "github.com/JB-MS/mzidentml-writer"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type options struct {
	Output  string
	Indent  bool
	Verbose bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "mzidentgen <description.yaml>",
		Short: "Generate an MzIdentML document from a YAML description",
		Long: `Generate an MzIdentML identification document from a YAML description.

The description mirrors the document's sections: vocabularies, providence,
inputs, a sequence collection, a protocol, and identification lists. Sections
missing from the description are skipped; everything present is streamed to
the output in the conventional section order.

Example:
  mzidentgen analysis.yaml -o analysis.mzid
  mzidentgen analysis.yaml --indent > analysis.mzid`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.Indent, "indent", false, "indent the generated XML")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging")

	return cmd
}

func run(opts *options, descPath string) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	slog.Debug("loading description", "path", descPath)
	desc, err := loadDescription(descPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", descPath, err)
	}

	var out io.Writer = os.Stdout
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return err
		}
		// The writer closes the sink for us on session exit.
		out = f
	}

	wopts := []mzident.Option{mzident.WithID(desc.ID)}
	if opts.Indent {
		wopts = append(wopts, mzident.WithIndent())
	}
	if desc.CreationDate != "" {
		t, err := time.Parse(time.RFC3339, desc.CreationDate)
		if err != nil {
			return fmt.Errorf("creation_date: %w", err)
		}
		wopts = append(wopts, mzident.WithCreationDate(t))
	}

	slog.Info("generating document", "id", desc.ID, "output", opts.Output)
	if err := mzident.Generate(out, desc.build, wopts...); err != nil {
		return err
	}
	slog.Info("document complete")
	return nil
}

func loadDescription(path string) (*description, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var desc description
	if err := yaml.Unmarshal(raw, &desc); err != nil {
		return nil, err
	}
	return &desc, nil
}

// description is the YAML shape of one document. Field names follow the
// writer's section operations.
type description struct {
	ID           string           `yaml:"id"`
	CreationDate string           `yaml:"creation_date,omitempty"`
	Vocabularies []vocabularyDesc `yaml:"vocabularies,omitempty"`

	Providence *struct {
		Software     []softwareDesc    `yaml:"software"`
		Owner        *personDesc       `yaml:"owner,omitempty"`
		Organization *organizationDesc `yaml:"organization,omitempty"`
	} `yaml:"providence,omitempty"`

	Inputs *struct {
		SourceFiles     []sourceFileDesc     `yaml:"source_files,omitempty"`
		SearchDatabases []searchDatabaseDesc `yaml:"search_databases,omitempty"`
		SpectraData     []spectraDataDesc    `yaml:"spectra_data,omitempty"`
	} `yaml:"inputs,omitempty"`

	Protocol *protocolDesc `yaml:"protocol,omitempty"`

	SequenceCollection *struct {
		DBSequences     []dbSequenceDesc      `yaml:"db_sequences,omitempty"`
		Peptides        []peptideDesc         `yaml:"peptides,omitempty"`
		PeptideEvidence []peptideEvidenceDesc `yaml:"peptide_evidence,omitempty"`
	} `yaml:"sequence_collection,omitempty"`

	IdentificationLists []identificationListDesc `yaml:"identification_lists,omitempty"`
}

type vocabularyDesc struct {
	ID       string `yaml:"id"`
	FullName string `yaml:"full_name"`
	URI      string `yaml:"uri"`
	Version  string `yaml:"version,omitempty"`
}

type softwareDesc struct {
	ID      string `yaml:"id,omitempty"`
	Name    string `yaml:"name"`
	Version string `yaml:"version,omitempty"`
	URI     string `yaml:"uri,omitempty"`
}

type personDesc struct {
	ID        string `yaml:"id,omitempty"`
	FirstName string `yaml:"first_name,omitempty"`
	LastName  string `yaml:"last_name,omitempty"`
}

type organizationDesc struct {
	ID   string `yaml:"id,omitempty"`
	Name string `yaml:"name,omitempty"`
}

type sourceFileDesc struct {
	ID       string `yaml:"id,omitempty"`
	Location string `yaml:"location"`
	Format   string `yaml:"format,omitempty"`
}

type searchDatabaseDesc struct {
	ID       string `yaml:"id,omitempty"`
	Name     string `yaml:"name,omitempty"`
	Location string `yaml:"location"`
	Format   string `yaml:"format,omitempty"`
}

type spectraDataDesc struct {
	ID               string `yaml:"id,omitempty"`
	Location         string `yaml:"location"`
	Format           string `yaml:"format,omitempty"`
	SpectrumIDFormat string `yaml:"spectrum_id_format,omitempty"`
}

type protocolDesc struct {
	ID                 string                   `yaml:"id,omitempty"`
	SearchType         string                   `yaml:"search_type,omitempty"`
	Software           string                   `yaml:"software,omitempty"`
	Enzymes            []enzymeDesc             `yaml:"enzymes,omitempty"`
	ModificationParams []searchModificationDesc `yaml:"modification_params,omitempty"`
	FragmentTolerance  *toleranceDesc           `yaml:"fragment_tolerance,omitempty"`
	ParentTolerance    *toleranceDesc           `yaml:"parent_tolerance,omitempty"`
}

type enzymeDesc struct {
	ID              string `yaml:"id,omitempty"`
	Name            string `yaml:"name"`
	SiteRegexp      string `yaml:"site_regexp,omitempty"`
	MissedCleavages int    `yaml:"missed_cleavages,omitempty"`
	SemiSpecific    bool   `yaml:"semi_specific,omitempty"`
}

type searchModificationDesc struct {
	Fixed     bool    `yaml:"fixed,omitempty"`
	Mass      float64 `yaml:"mass"`
	Residues  string  `yaml:"residues"`
	Name      string  `yaml:"name,omitempty"`
	Accession string  `yaml:"accession,omitempty"`
}

type toleranceDesc struct {
	Plus  float64 `yaml:"plus"`
	Minus float64 `yaml:"minus,omitempty"`
	Unit  string  `yaml:"unit,omitempty"`
}

type dbSequenceDesc struct {
	ID             string `yaml:"id,omitempty"`
	Accession      string `yaml:"accession"`
	Sequence       string `yaml:"sequence,omitempty"`
	SearchDatabase string `yaml:"search_database,omitempty"`
}

type peptideDesc struct {
	ID            string             `yaml:"id,omitempty"`
	Sequence      string             `yaml:"sequence"`
	Modifications []modificationDesc `yaml:"modifications,omitempty"`
}

type modificationDesc struct {
	Location  int     `yaml:"location"`
	Residues  string  `yaml:"residues,omitempty"`
	Mass      float64 `yaml:"mass"`
	Name      string  `yaml:"name,omitempty"`
	Accession string  `yaml:"accession,omitempty"`
}

type peptideEvidenceDesc struct {
	ID         string `yaml:"id,omitempty"`
	Peptide    string `yaml:"peptide"`
	DBSequence string `yaml:"db_sequence,omitempty"`
	Start      int    `yaml:"start,omitempty"`
	End        int    `yaml:"end,omitempty"`
	Pre        string `yaml:"pre,omitempty"`
	Post       string `yaml:"post,omitempty"`
	IsDecoy    bool   `yaml:"is_decoy,omitempty"`
}

type identificationListDesc struct {
	ID      string       `yaml:"id,omitempty"`
	Results []resultDesc `yaml:"results"`
}

type resultDesc struct {
	ID          string     `yaml:"id,omitempty"`
	SpectrumID  string     `yaml:"spectrum_id"`
	SpectraData string     `yaml:"spectra_data,omitempty"`
	Items       []itemDesc `yaml:"items,omitempty"`
}

type itemDesc struct {
	ID              string     `yaml:"id,omitempty"`
	CalculatedMZ    float64    `yaml:"calculated_mz"`
	ExperimentalMZ  float64    `yaml:"experimental_mz"`
	Charge          int        `yaml:"charge"`
	Peptide         string     `yaml:"peptide"`
	PeptideEvidence string     `yaml:"peptide_evidence"`
	Score           *scoreDesc `yaml:"score,omitempty"`
	PassThreshold   *bool      `yaml:"pass_threshold,omitempty"`
	Rank            int        `yaml:"rank,omitempty"`
}

type scoreDesc struct {
	Name      string  `yaml:"name,omitempty"`
	Accession string  `yaml:"accession,omitempty"`
	Value     float64 `yaml:"value"`
}

func (d *description) build(w *mzident.Writer) error {
	vocabs := make([]mzident.ControlledVocabulary, 0, len(d.Vocabularies))
	for _, v := range d.Vocabularies {
		vocabs = append(vocabs, mzident.ControlledVocabulary(v))
	}
	if err := w.ControlledVocabularies(vocabs...); err != nil {
		return err
	}

	if d.Providence != nil {
		software := make([]mzident.Software, 0, len(d.Providence.Software))
		for _, s := range d.Providence.Software {
			software = append(software, mzident.Software{
				ID: s.ID, Name: s.Name, Version: s.Version, URI: s.URI,
			})
		}
		var owner *mzident.Person
		if p := d.Providence.Owner; p != nil {
			owner = &mzident.Person{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName}
		}
		var org *mzident.Organization
		if o := d.Providence.Organization; o != nil {
			org = &mzident.Organization{ID: o.ID, Name: o.Name}
		}
		if err := w.Providence(software, owner, org); err != nil {
			return err
		}
	}

	if d.Inputs != nil {
		files := make([]mzident.SourceFile, 0, len(d.Inputs.SourceFiles))
		for _, f := range d.Inputs.SourceFiles {
			files = append(files, mzident.SourceFile{ID: f.ID, Location: f.Location, Format: f.Format})
		}
		dbs := make([]mzident.SearchDatabase, 0, len(d.Inputs.SearchDatabases))
		for _, s := range d.Inputs.SearchDatabases {
			dbs = append(dbs, mzident.SearchDatabase{
				ID: s.ID, Name: s.Name, Location: s.Location, Format: s.Format,
			})
		}
		spectra := make([]mzident.SpectraData, 0, len(d.Inputs.SpectraData))
		for _, s := range d.Inputs.SpectraData {
			spectra = append(spectra, mzident.SpectraData{
				ID: s.ID, Location: s.Location, Format: s.Format,
				SpectrumIDFormat: s.SpectrumIDFormat,
			})
		}
		if err := w.Inputs(files, dbs, spectra); err != nil {
			return err
		}
	}

	if p := d.Protocol; p != nil {
		enzymes := make([]mzident.Enzyme, 0, len(p.Enzymes))
		for _, e := range p.Enzymes {
			enzymes = append(enzymes, mzident.Enzyme{
				ID: e.ID, Name: e.Name, SiteRegexp: e.SiteRegexp,
				MissedCleavages: e.MissedCleavages, SemiSpecific: e.SemiSpecific,
			})
		}
		mods := make([]mzident.SearchModification, 0, len(p.ModificationParams))
		for _, m := range p.ModificationParams {
			mods = append(mods, mzident.SearchModification{
				Fixed: m.Fixed, Mass: m.Mass, Residues: m.Residues,
				Name: m.Name, Accession: m.Accession,
			})
		}
		if err := w.SpectrumIdentificationProtocol(mzident.Protocol{
			ID:                 p.ID,
			SearchType:         p.SearchType,
			AnalysisSoftwareID: p.Software,
			Enzymes:            enzymes,
			ModificationParams: mods,
			FragmentTolerance:  p.FragmentTolerance.tolerance(),
			ParentTolerance:    p.ParentTolerance.tolerance(),
		}); err != nil {
			return err
		}
	}

	if sc := d.SequenceCollection; sc != nil {
		dbSeqs := make([]mzident.DBSequence, 0, len(sc.DBSequences))
		for _, s := range sc.DBSequences {
			dbSeqs = append(dbSeqs, mzident.DBSequence{
				ID: s.ID, Accession: s.Accession, Sequence: s.Sequence,
				SearchDatabaseID: s.SearchDatabase,
			})
		}
		peptides := make([]mzident.Peptide, 0, len(sc.Peptides))
		for _, p := range sc.Peptides {
			mods := make([]mzident.Modification, 0, len(p.Modifications))
			for _, m := range p.Modifications {
				mods = append(mods, mzident.Modification{
					Location: m.Location, Residues: m.Residues,
					MonoisotopicMassDelta: m.Mass, Name: m.Name, Accession: m.Accession,
				})
			}
			peptides = append(peptides, mzident.Peptide{
				ID: p.ID, Sequence: p.Sequence, Modifications: mods,
			})
		}
		evidence := make([]mzident.PeptideEvidence, 0, len(sc.PeptideEvidence))
		for _, e := range sc.PeptideEvidence {
			evidence = append(evidence, mzident.PeptideEvidence{
				ID: e.ID, PeptideID: e.Peptide, DBSequenceID: e.DBSequence,
				Start: e.Start, End: e.End, Pre: e.Pre, Post: e.Post,
				IsDecoy: e.IsDecoy,
			})
		}
		if err := w.SequenceCollection(
			mzident.StreamOf(dbSeqs...),
			mzident.StreamOf(peptides...),
			mzident.StreamOf(evidence...),
		); err != nil {
			return err
		}
	}

	for _, list := range d.IdentificationLists {
		results := make([]mzident.IdentificationResult, 0, len(list.Results))
		for _, r := range list.Results {
			items := make([]mzident.IdentificationItem, 0, len(r.Items))
			for _, it := range r.Items {
				var score *mzident.Score
				if it.Score != nil {
					score = &mzident.Score{
						Name: it.Score.Name, Accession: it.Score.Accession,
						Value: it.Score.Value,
					}
				}
				items = append(items, mzident.IdentificationItem{
					ID:                       it.ID,
					CalculatedMassToCharge:   it.CalculatedMZ,
					ExperimentalMassToCharge: it.ExperimentalMZ,
					ChargeState:              it.Charge,
					PeptideID:                it.Peptide,
					PeptideEvidenceID:        it.PeptideEvidence,
					Score:                    score,
					PassThreshold:            it.PassThreshold,
					Rank:                     it.Rank,
				})
			}
			results = append(results, mzident.IdentificationResult{
				ID: r.ID, SpectrumID: r.SpectrumID, SpectraDataID: r.SpectraData,
				Items: items,
			})
		}
		slog.Debug("writing identification list", "id", list.ID, "results", len(results))
		if err := w.SpectrumIdentificationList(list.ID, mzident.StreamOf(results...)); err != nil {
			return err
		}
	}
	return nil
}

func (t *toleranceDesc) tolerance() *mzident.Tolerance {
	if t == nil {
		return nil
	}
	return &mzident.Tolerance{Plus: t.Plus, Minus: t.Minus, Unit: t.Unit}
}
