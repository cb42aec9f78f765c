/*
Package mzident provides a fast, forward-only way to generate MzIdentML
identification documents from plain Go values.

The writer is incremental: elements are emitted to the output as soon as they
are complete, so arbitrarily large result sets can be written without holding
the document tree in memory. It is built on the streaming serializer from
github.com/shabbyrobe/xmlwriter.

Creating

Writer takes any io.Writer along with a variable list of options:

	f, _ := os.Create("analysis.mzid")
	w := mzident.New(f, mzident.WithID("report_1"))
	if err := w.Begin(); err != nil { ... }
	defer w.Close()

Options are based on Dave Cheney's functional options pattern. Provided
options are:
  - WithID(string)
  - WithCreationDate(time.Time)
  - WithVocabularies(...ControlledVocabulary)
  - WithIndent()
  - WithEncoding(string, *encoding.Encoder)

If you prefer not to manage the lifecycle yourself, Generate runs a build
function between Begin and Close and guarantees the sink is released on every
exit path:

	err := mzident.Generate(f, func(w *mzident.Writer) error {
		if err := w.Providence(software, nil, nil); err != nil {
			return err
		}
		return w.Inputs(files, dbs, spectra)
	})

Sections

One document is made of top-level sections, each written by a single call on
the Writer: ControlledVocabularies, Providence, Inputs, SequenceCollection,
SpectrumIdentificationProtocol and SpectrumIdentificationList. The
conventional order is:

	Providence -> Inputs -> Protocol -> SequenceCollection -> Identification

The writer does not enforce this order; it is a convention of the format, not
a constraint of this package, and callers who know better may deviate.

Identifiers

Every element carries an id resolved through the session's identity registry.
Resolving the same (type, key) pair always yields the same id within one
document, so a SpectrumIdentificationItem may reference a Peptide written
later (or never written at all). Keys you supply are preserved inside the
generated id ("P1" becomes "Peptide_P1"); omitted keys mint ordinals.

Large collections

SequenceCollection and SpectrumIdentificationList accept Stream values.
A Stream is consumed exactly once, entity by entity, and yields nothing when
re-consumed; wrap slices with StreamOf or supply your own pull function with
StreamFunc to feed rows straight from a cursor.
*/
package mzident
