package mzident

import (
	xw "github.com/shabbyrobe/xmlwriter"
)

// Top-level document sections. Each method opens one section scope directly
// under the MzIdentML root, emits its children, and closes it before
// returning, flushing as it goes. The conventional order is Providence,
// Inputs, Protocol, SequenceCollection, then identification lists, but the
// writer does not enforce it.

// ControlledVocabularies appends extra declarations to the session's running
// vocabulary list and emits the cumulative cvList element. The list only
// ever grows: calling this twice re-emits entries the first call already
// wrote, duplicated in document order.
func (w *Writer) ControlledVocabularies(extra ...ControlledVocabulary) error {
	if err := w.stack.check("ControlledVocabularies"); err != nil {
		return err
	}
	w.vocabularies = append(w.vocabularies, extra...)
	err := w.stack.Nest("cvList", nil, func() error {
		for _, v := range w.vocabularies {
			if err := w.stack.WriteNode(v.elem()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return w.stack.Flush()
}

// Providence writes the analysis providence sections: the
// AnalysisSoftwareList, a Provider referencing the owner, and an
// AuditCollection holding the owner and their organization. A nil owner or
// organization becomes a default entity; the Provider's contact_ref is
// guaranteed to match the id written on the owner's Person element.
func (w *Writer) Providence(software []Software, owner *Person, organization *Organization) error {
	if err := w.stack.check("Providence"); err != nil {
		return err
	}
	var own Person
	if owner != nil {
		own = *owner
	}
	var org Organization
	if organization != nil {
		org = *organization
	}
	orgID := w.ids.Resolve("Organization", org.ID)
	if org.ID == "" {
		// Re-key so the owner's Affiliation resolves to the same entity.
		org.ID = orgID[len("Organization_"):]
	}
	if own.Affiliation == "" {
		own.Affiliation = org.ID
	}
	ownerID := w.ids.Resolve("Person", own.ID)
	if own.ID == "" {
		own.ID = ownerID[len("Person_"):]
	}

	err := w.stack.Nest("AnalysisSoftwareList", nil, func() error {
		for _, s := range software {
			e, err := s.elem(w.ids)
			if err != nil {
				return err
			}
			if err := w.stack.WriteNode(e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := w.stack.WriteNode(providerElem(w.ids, ownerID)); err != nil {
		return err
	}
	err = w.stack.Nest("AuditCollection", nil, func() error {
		pe, err := own.elem(w.ids)
		if err != nil {
			return err
		}
		oe, err := org.elem(w.ids)
		if err != nil {
			return err
		}
		return w.stack.WriteNode(pe, oe)
	})
	if err != nil {
		return err
	}
	return w.stack.Flush()
}

// Inputs writes the Inputs section: source files, search databases and
// spectra data, in that order. The section element is written even when all
// three lists are empty.
func (w *Writer) Inputs(sourceFiles []SourceFile, searchDatabases []SearchDatabase, spectraData []SpectraData) error {
	if err := w.stack.check("Inputs"); err != nil {
		return err
	}
	sc, err := w.stack.Open("Inputs")
	if err != nil {
		return err
	}
	werr := func() error {
		for _, f := range sourceFiles {
			e, err := f.elem(w.ids)
			if err != nil {
				return err
			}
			if err := w.stack.WriteNode(e); err != nil {
				return err
			}
		}
		for _, d := range searchDatabases {
			e, err := d.elem(w.ids)
			if err != nil {
				return err
			}
			if err := w.stack.WriteNode(e); err != nil {
				return err
			}
		}
		for _, d := range spectraData {
			e, err := d.elem(w.ids)
			if err != nil {
				return err
			}
			if err := w.stack.WriteNode(e); err != nil {
				return err
			}
		}
		return nil
	}()
	if cerr := w.stack.CloseFull(sc); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return werr
	}
	return w.stack.Flush()
}

// SequenceCollection writes the SequenceCollection section from three
// single-pass streams: database sequences, peptides, then peptide evidence.
// Each stream is consumed exactly once, entity by entity, so collections of
// any size pass through without buffering.
func (w *Writer) SequenceCollection(dbSequences Stream[DBSequence], peptides Stream[Peptide], evidence Stream[PeptideEvidence]) error {
	if err := w.stack.check("SequenceCollection"); err != nil {
		return err
	}
	err := w.stack.Nest("SequenceCollection", nil, func() error {
		if err := dbSequences.Each(func(s DBSequence) error {
			return w.writeEntity(s.elem(w.ids))
		}); err != nil {
			return err
		}
		if err := peptides.Each(func(p Peptide) error {
			return w.writeEntity(p.elem(w.ids))
		}); err != nil {
			return err
		}
		return evidence.Each(func(e PeptideEvidence) error {
			return w.writeEntity(e.elem(w.ids))
		})
	})
	if err != nil {
		return err
	}
	return w.stack.Flush()
}

// Protocol describes one SpectrumIdentificationProtocol section. Zero-value
// fields fall back to the format's defaults: id "1", search type
// "ms-ms search", analysis software "1", and a "no threshold" Threshold.
type Protocol struct {
	ID                     string
	SearchType             string
	AnalysisSoftwareID     string
	AdditionalSearchParams []Param
	Enzymes                []Enzyme
	ModificationParams     []SearchModification
	FragmentTolerance      *Tolerance
	ParentTolerance        *Tolerance
	Threshold              []Param
}

// SpectrumIdentificationProtocol writes one protocol section.
func (w *Writer) SpectrumIdentificationProtocol(p Protocol) error {
	if err := w.stack.check("SpectrumIdentificationProtocol"); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = "1"
	}
	if p.SearchType == "" {
		p.SearchType = "ms-ms search"
	}
	if p.AnalysisSoftwareID == "" {
		p.AnalysisSoftwareID = "1"
	}
	attrs := []xw.Attr{
		{Name: "id", Value: w.ids.Resolve("SpectrumIdentificationProtocol", p.ID)},
		{Name: "analysisSoftware_ref", Value: w.ids.Resolve("AnalysisSoftware", p.AnalysisSoftwareID)},
	}
	err := w.stack.Nest("SpectrumIdentificationProtocol", attrs, func() error {
		var search xw.Writable
		if acc, ok := searchTypes[p.SearchType]; ok {
			search = CVParam{Accession: acc, Name: p.SearchType}.paramElem()
		} else {
			search = UserParam{Name: p.SearchType}.paramElem()
		}
		if err := w.stack.WriteNode(xw.Elem{Name: "SearchType", Content: []xw.Writable{search}}); err != nil {
			return err
		}
		if len(p.AdditionalSearchParams) > 0 {
			if err := w.stack.WriteNode(xw.Elem{
				Name:    "AdditionalSearchParams",
				Content: paramNodes(p.AdditionalSearchParams),
			}); err != nil {
				return err
			}
		}
		if len(p.ModificationParams) > 0 {
			mods := make([]xw.Writable, 0, len(p.ModificationParams))
			for _, m := range p.ModificationParams {
				mods = append(mods, m.elem())
			}
			if err := w.stack.WriteNode(xw.Elem{Name: "ModificationParams", Content: mods}); err != nil {
				return err
			}
		}
		if len(p.Enzymes) > 0 {
			if err := w.stack.Nest("Enzymes", nil, func() error {
				for _, e := range p.Enzymes {
					if err := w.writeEntity(e.elem(w.ids)); err != nil {
						return err
					}
				}
				return nil
			}); err != nil {
				return err
			}
		}
		if p.FragmentTolerance != nil {
			if err := w.stack.WriteNode(p.FragmentTolerance.elem("FragmentTolerance")); err != nil {
				return err
			}
		}
		if p.ParentTolerance != nil {
			if err := w.stack.WriteNode(p.ParentTolerance.elem("ParentTolerance")); err != nil {
				return err
			}
		}
		return w.stack.WriteNode(thresholdElem(p.Threshold))
	})
	if err != nil {
		return err
	}
	return w.stack.Flush()
}

// SpectrumIdentificationList writes one identification list section from a
// single-pass stream of results. This is the deepest nesting in the document
// and the hot path for large result sets: each result is converted and
// written as it is pulled, never buffered.
func (w *Writer) SpectrumIdentificationList(id string, results Stream[IdentificationResult]) error {
	if err := w.stack.check("SpectrumIdentificationList"); err != nil {
		return err
	}
	attrs := []xw.Attr{{Name: "id", Value: w.ids.Resolve("SpectrumIdentificationList", id)}}
	err := w.stack.Nest("SpectrumIdentificationList", attrs, func() error {
		return results.Each(func(r IdentificationResult) error {
			return w.writeEntity(r.elem(w.ids))
		})
	})
	if err != nil {
		return err
	}
	return w.stack.Flush()
}

func (w *Writer) writeEntity(e xw.Elem, err error) error {
	if err != nil {
		return err
	}
	return w.stack.WriteNode(e)
}
