package models

// GeoBetaRow feeds the choropleth map.
type GeoBetaRow struct {
	Country      string  `json:"country"`
	ISOCode      string  `json:"iso_code"` // ISO 3166-1 alpha-3, e.g. "IND"
	BankingIndex string  `json:"banking_index"`
	Beta         float64 `json:"beta"`
}

// ReferenceEntry is the glossary text for one language.
type ReferenceEntry struct {
	Definition       string `json:"definition"`
	StockUseCase     string `json:"stock_use_case"`
	PortfolioUseCase string `json:"portfolio_use_case"`
}

// Concept is one (Concept, Content) row of the glossary table.
type Concept struct {
	Concept string `json:"concept"`
	Content string `json:"content"`
}

// Concepts returns the entry as table rows in display order.
func (e ReferenceEntry) Concepts() []Concept {
	return []Concept{
		{Concept: "Definition", Content: e.Definition},
		{Concept: "Stock Use Case", Content: e.StockUseCase},
		{Concept: "Portfolio Use Case", Content: e.PortfolioUseCase},
	}
}

// Complete reports whether every field is populated.
func (e ReferenceEntry) Complete() bool {
	return e.Definition != "" && e.StockUseCase != "" && e.PortfolioUseCase != ""
}

// RegionalSummaryRow describes one country's banking index in the summary table.
type RegionalSummaryRow struct {
	Country    string `json:"Country"`
	Index      string `json:"Index"`
	BetaRange  string `json:"Beta Range"` // "1.2", "0.52–0.88", "<0.7"
	Volatility string `json:"Volatility"`
	Notes      string `json:"Notes"`
}

// BankBetaRow is one bank of one country's index, flattened.
type BankBetaRow struct {
	Country   string  `json:"country"`
	Index     string  `json:"index"`
	IndexBeta string  `json:"index_beta"` // free-form, may carry "<" or ">" prefixes
	BankName  string  `json:"bank_name"`
	BankBeta  float64 `json:"bank_beta"`
}
