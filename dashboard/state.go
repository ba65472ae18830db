// Package dashboard turns normalized tables into per-session state and the
// derived views the presentation layer renders.
package dashboard

import (
	"errors"
	"fmt"

	"beta-dashboard/loader"
	"beta-dashboard/models"
	"beta-dashboard/reference"
)

// Source records where the bank-beta table came from.
type Source string

const (
	SourceNone       Source = "none"
	SourceDiscovered Source = "discovered"
	SourceUploaded   Source = "uploaded"
)

// Warning is a non-fatal, dismissible problem shown to the user.
type Warning struct {
	ID       string `json:"id"`
	Document string `json:"document"`
	Message  string `json:"message"`
}

// State is one session's immutable snapshot. The With* methods return new states.
type State struct {
	store      reference.Store
	glossary   map[models.Language]models.ReferenceEntry
	regional   []models.RegionalSummaryRow
	banks      []models.BankBetaRow
	insights   models.InsightLookup
	warnings   []Warning
	bankSource Source
	seq        int
}

// New starts a session from the defaults plus an optional auto-discovered
// bank-beta document. A nil document leaves the bank table empty without a warning.
func New(store reference.Store, discovered *loader.BankBetaDocument) *State {
	s := &State{
		store:      store,
		glossary:   store.Glossary(),
		regional:   store.Regional(),
		banks:      []models.BankBetaRow{},
		insights:   models.NewInsightLookup(),
		bankSource: SourceNone,
	}
	if discovered != nil {
		s.banks = append(s.banks, discovered.Rows...)
		s.insights = discovered.Insights.Clone()
		s.bankSource = SourceDiscovered
	}
	return s
}

func (s *State) clone() *State {
	c := *s
	c.warnings = append([]Warning(nil), s.warnings...)
	return &c
}

func (s *State) warn(document string, err error) {
	var pe *loader.ParseError
	if errors.As(err, &pe) {
		document = pe.Document
	}
	s.seq++
	s.warnings = append(s.warnings, Warning{
		ID:       fmt.Sprintf("w%d", s.seq),
		Document: document,
		Message:  err.Error(),
	})
}

// WithRegional applies the result of parsing a regional-summary upload. On error the
// previous glossary and regional table are kept and a warning is recorded.
func (s *State) WithRegional(doc *loader.RegionalDocument, err error) *State {
	next := s.clone()
	if err == nil && doc == nil {
		err = errors.New("no document")
	}
	if err != nil {
		next.warn(loader.RegionalDocumentName, err)
		return next
	}
	next.glossary = make(map[models.Language]models.ReferenceEntry, len(doc.Reference))
	for k, v := range doc.Reference {
		next.glossary[k] = v
	}
	next.regional = append([]models.RegionalSummaryRow{}, doc.Regional...)
	return next
}

// WithBankBeta applies the result of parsing an explicit bank-beta upload. On error
// the bank table and insights are emptied and a warning is recorded.
func (s *State) WithBankBeta(doc *loader.BankBetaDocument, err error) *State {
	next := s.clone()
	if err == nil && doc == nil {
		err = errors.New("no document")
	}
	if err != nil {
		next.banks = []models.BankBetaRow{}
		next.insights = models.NewInsightLookup()
		next.bankSource = SourceNone
		next.warn(loader.BankBetaDocumentName, err)
		return next
	}
	next.banks = append([]models.BankBetaRow{}, doc.Rows...)
	next.insights = doc.Insights.Clone()
	next.bankSource = SourceUploaded
	return next
}

// WithoutWarning dismisses a warning. Unknown ids are ignored.
func (s *State) WithoutWarning(id string) *State {
	next := s.clone()
	kept := next.warnings[:0]
	for _, w := range next.warnings {
		if w.ID != id {
			kept = append(kept, w)
		}
	}
	next.warnings = kept
	return next
}

func (s *State) Warnings() []Warning {
	return append([]Warning(nil), s.warnings...)
}

func (s *State) Banks() []models.BankBetaRow {
	return append([]models.BankBetaRow(nil), s.banks...)
}

func (s *State) Regional() []models.RegionalSummaryRow {
	return append([]models.RegionalSummaryRow(nil), s.regional...)
}

// Reference returns the glossary entry for lang, falling back to English when
// lang has no entry or its entry has blank fields.
func (s *State) Reference(lang models.Language) models.ReferenceEntry {
	if e, ok := s.glossary[lang]; ok && e.Complete() {
		return e
	}
	return s.glossary[models.English]
}

// Insights returns a copy of the country -> insight map for lang.
func (s *State) Insights(lang models.Language) map[string]string {
	out := map[string]string{}
	for k, v := range s.insights[lang] {
		out[k] = v
	}
	return out
}

func (s *State) Insight(lang models.Language, country string) string {
	return s.insights.Get(lang, country)
}

func (s *State) BankSource() Source { return s.bankSource }

func (s *State) Store() reference.Store { return s.store }
