// Package reference holds the hardcoded tables the dashboard falls back to when
// no valid uploads are supplied.
package reference

import "beta-dashboard/models"

// MapSettings configures the choropleth colouring.
type MapSettings struct {
	ColorScale string  `json:"color_scale"`
	RangeMin   float64 `json:"range_min"`
	RangeMax   float64 `json:"range_max"`
	Projection string  `json:"projection"`
}

// Store is the immutable set of default tables. Accessors return copies.
type Store struct {
	geo      []models.GeoBetaRow
	glossary map[models.Language]models.ReferenceEntry
	regional []models.RegionalSummaryRow
	mapCfg   MapSettings
}

// Default builds the store with the built-in defaults.
func Default() Store {
	return Store{
		geo: []models.GeoBetaRow{
			{Country: "India", ISOCode: "IND", BankingIndex: "NIFTYBANK", Beta: 1.20},
			{Country: "United States", ISOCode: "USA", BankingIndex: "Dow Jones U.S. Banks Index", Beta: 1.10},
			{Country: "United Kingdom", ISOCode: "GBR", BankingIndex: "FTSE 350 Banks Index", Beta: 0.95},
			{Country: "Japan", ISOCode: "JPN", BankingIndex: "TOPIX Banks Index", Beta: 0.85},
		},
		glossary: map[models.Language]models.ReferenceEntry{
			models.English: {
				Definition:       "Beta measures the volatility of a stock or portfolio relative to market movements.",
				StockUseCase:     "Used in CAPM to calculate expected return and evaluate market-driven risk.",
				PortfolioUseCase: "Helps adjust portfolio exposure and supports strategic rebalancing.",
			},
			models.Tamil: {
				Definition:       "பீட்டா என்பது சந்தை இயக்கங்களை ஒப்பிடும் ஒரு பங்கு அல்லது போர்ட்ஃபோலியோவின் மாறுபாட்டை அளவிடும் ஒரு அளவீடு.",
				StockUseCase:     "CAPM மூலம் எதிர்பார்க்கப்படும் வருமானம் மற்றும் சந்தை சார்ந்த அபாயத்தை கணக்கிட பயன்படுகிறது.",
				PortfolioUseCase: "போர்ட்ஃபோலியோ உள்ளடக்கத்தை சரிசெய்யவும் மறுஉறுப்பாய்வை ஆதரிக்கவும் உதவுகிறது.",
			},
			models.Hindi: {
				Definition:       "बीटा बाजार की गति के सापेक्ष किसी स्टॉक या पोर्टफोलियो की अस्थिरता को मापता है।",
				StockUseCase:     "CAPM में अपेक्षित रिटर्न की गणना और बाजार-प्रेरित जोखिम का मूल्यांकन करने में प्रयोग होता है।",
				PortfolioUseCase: "पोर्टफोलियो एक्सपोज़र को समायोजित करने और पुनर्संतुलन में सहायक।",
			},
		},
		regional: []models.RegionalSummaryRow{
			{Country: "India", Index: "NIFTY Bank Index", BetaRange: "1.2", Volatility: "High Volatility", Notes: "Sensitive to macroeconomic shifts"},
			{Country: "USA", Index: "Dow Jones Banking Index", BetaRange: "0.52–0.88", Volatility: "Moderate Volatility", Notes: "Wide range by bank size"},
			{Country: "UK", Index: "FTSE Banks", BetaRange: "0.6–1.0", Volatility: "Moderate Volatility", Notes: "Global vs domestic split"},
			{Country: "Japan", Index: "Tokyo Banks", BetaRange: "<0.7", Volatility: "Low Volatility", Notes: "Stable, conservative lending model"},
		},
		mapCfg: MapSettings{ColorScale: "Reds", RangeMin: 0.8, RangeMax: 1.4, Projection: "natural earth"},
	}
}

func (s Store) Geo() []models.GeoBetaRow {
	return append([]models.GeoBetaRow(nil), s.geo...)
}

func (s Store) Regional() []models.RegionalSummaryRow {
	return append([]models.RegionalSummaryRow(nil), s.regional...)
}

// Glossary returns a copy of the per-language glossary.
func (s Store) Glossary() map[models.Language]models.ReferenceEntry {
	out := make(map[models.Language]models.ReferenceEntry, len(s.glossary))
	for k, v := range s.glossary {
		out[k] = v
	}
	return out
}

// Entry returns the glossary entry for lang, falling back to English.
func (s Store) Entry(lang models.Language) models.ReferenceEntry {
	if e, ok := s.glossary[lang]; ok {
		return e
	}
	return s.glossary[models.English]
}

func (s Store) Map() MapSettings {
	return s.mapCfg
}
