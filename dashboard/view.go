package dashboard

import (
	"beta-dashboard/models"
	"beta-dashboard/reference"
)

type LanguageOption struct {
	Code     models.Language `json:"code"`
	Name     string          `json:"name"`
	Selected bool            `json:"selected"`
}

// GroupView is an index card: the group plus the insight for its country.
type GroupView struct {
	IndexGroup
	Insight string `json:"insight"`
	Color   string `json:"color"`
}

// View is everything one rendering of the dashboard needs.
type View struct {
	Language   models.Language             `json:"language"`
	Languages  []LanguageOption            `json:"languages"`
	Glossary   []models.Concept            `json:"glossary"`
	Geo        []models.GeoBetaRow         `json:"geo"`
	Map        reference.MapSettings       `json:"map"`
	Regional   []models.RegionalSummaryRow `json:"regional"`
	Groups     []GroupView                 `json:"groups"`
	HasBanks   bool                        `json:"has_banks"`
	Filter     Filter                      `json:"filter"`
	Countries  []string                    `json:"countries"`
	Banks      []string                    `json:"banks"`
	Filtered   []models.BankBetaRow        `json:"filtered"`
	Insight    string                      `json:"insight,omitempty"`
	Warnings   []Warning                   `json:"warnings"`
	BankSource Source                      `json:"bank_source"`
}

// View derives a rendering for the selected language and filter. The state is not modified.
func (s *State) View(lang models.Language, f Filter) View {
	if _, ok := models.ParseLanguage(string(lang)); !ok {
		lang = models.English
	}
	f = f.Normalize(s.banks)

	v := View{
		Language:   lang,
		Glossary:   s.Reference(lang).Concepts(),
		Geo:        s.store.Geo(),
		Map:        s.store.Map(),
		Regional:   s.Regional(),
		HasBanks:   len(s.banks) > 0,
		Filter:     f,
		Countries:  CountryChoices(s.banks),
		Banks:      BankChoices(s.banks, f.Country),
		Filtered:   f.Apply(s.banks),
		Warnings:   s.Warnings(),
		BankSource: s.bankSource,
	}
	for _, l := range models.SupportedLanguages {
		v.Languages = append(v.Languages, LanguageOption{Code: l, Name: l.Name(), Selected: l == lang})
	}
	for _, g := range GroupByIndex(s.banks) {
		v.Groups = append(v.Groups, GroupView{
			IndexGroup: g,
			Insight:    s.insights.Get(lang, g.Country),
			Color:      g.Band.Color(),
		})
	}
	if f.Country != All {
		v.Insight = s.insights.Get(lang, f.Country)
	}
	return v
}
