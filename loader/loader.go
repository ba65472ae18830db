package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"beta-dashboard/models"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/multierr"
)

const (
	RegionalDocumentName = "regional_summaries.json"
	BankBetaDocumentName = "beta_comparison.json"
)

var (
	jsonAPI          = jsoniter.ConfigCompatibleWithStandardLibrary
	errEmptyDocument = errors.New("empty document")
)

// RegionalDocument is a normalized regional_summaries.json.
type RegionalDocument struct {
	Reference map[models.Language]models.ReferenceEntry
	Regional  []models.RegionalSummaryRow
}

// BankBetaDocument is a normalized beta_comparison.json.
type BankBetaDocument struct {
	Rows     []models.BankBetaRow
	Insights models.InsightLookup
}

type regionalPayload struct {
	Definition map[string]*string `json:"definition"`
	UseCases   map[string]*struct {
		Stock     *string `json:"stock"`
		Portfolio *string `json:"portfolio"`
	} `json:"use_cases"`
	RegionalSummaries []map[string]json.RawMessage `json:"regional_summaries"`
}

type countryPayload struct {
	Index         *string         `json:"Index"`
	IndexBeta     json.RawMessage `json:"Index_Beta"`
	LargeCapBanks []struct {
		Name *string         `json:"name"`
		Beta json.RawMessage `json:"beta"`
	} `json:"Large_Cap_Banks"`
	Insights   json.RawMessage `json:"Insights"`
	InsightsTA json.RawMessage `json:"Insights_TA"`
	InsightsHI json.RawMessage `json:"Insights_HI"`
}

// ParseRegional normalizes a regional-summary document. Every supported language
// must resolve to a complete glossary entry, otherwise the whole document is rejected.
func ParseRegional(r io.Reader) (*RegionalDocument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Document: RegionalDocumentName, Err: err}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{Document: RegionalDocumentName, Err: errEmptyDocument}
	}

	var payload regionalPayload
	if err := jsonAPI.Unmarshal(data, &payload); err != nil {
		return nil, &ParseError{Document: RegionalDocumentName, Err: err}
	}

	var problems error
	if payload.Definition == nil {
		problems = multierr.Append(problems, errors.New(`missing key "definition"`))
	}
	if payload.UseCases == nil {
		problems = multierr.Append(problems, errors.New(`missing key "use_cases"`))
	}
	if payload.RegionalSummaries == nil {
		problems = multierr.Append(problems, errors.New(`missing key "regional_summaries"`))
	}

	doc := &RegionalDocument{Reference: make(map[models.Language]models.ReferenceEntry, len(models.SupportedLanguages))}
	for _, lang := range models.SupportedLanguages {
		var entry models.ReferenceEntry
		if payload.Definition != nil {
			if def := payload.Definition[string(lang)]; def != nil {
				entry.Definition = *def
			} else {
				problems = multierr.Append(problems, fmt.Errorf("missing definition for %q", lang))
			}
		}
		if payload.UseCases != nil {
			uc := payload.UseCases[string(lang)]
			switch {
			case uc == nil:
				problems = multierr.Append(problems, fmt.Errorf("missing use_cases for %q", lang))
			default:
				if uc.Stock == nil {
					problems = multierr.Append(problems, fmt.Errorf("missing use_cases.%s.stock", lang))
				} else {
					entry.StockUseCase = *uc.Stock
				}
				if uc.Portfolio == nil {
					problems = multierr.Append(problems, fmt.Errorf("missing use_cases.%s.portfolio", lang))
				} else {
					entry.PortfolioUseCase = *uc.Portfolio
				}
			}
		}
		doc.Reference[lang] = entry
	}

	for i, row := range payload.RegionalSummaries {
		var rowProblems error
		cell := func(key string, required bool) string {
			v, ok, err := textValue(row[key])
			if err != nil {
				rowProblems = multierr.Append(rowProblems, fmt.Errorf("regional_summaries[%d].%s: %w", i, key, err))
			} else if !ok && required {
				rowProblems = multierr.Append(rowProblems, fmt.Errorf("regional_summaries[%d]: missing key %q", i, key))
			}
			return v
		}
		summary := models.RegionalSummaryRow{
			Country:    cell("Country", true),
			Index:      cell("Index", true),
			BetaRange:  cell("Beta Range", false),
			Volatility: cell("Volatility", false),
			Notes:      cell("Notes", false),
		}
		problems = multierr.Append(problems, rowProblems)
		doc.Regional = append(doc.Regional, summary)
	}

	if problems != nil {
		return nil, &ParseError{Document: RegionalDocumentName, Err: problems}
	}
	if doc.Regional == nil {
		doc.Regional = []models.RegionalSummaryRow{}
	}
	return doc, nil
}

// ParseBankBeta flattens a bank-beta document into one row per (country, bank),
// preserving the country order of the document.
func ParseBankBeta(r io.Reader) (*BankBetaDocument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Document: BankBetaDocumentName, Err: err}
	}
	return parseBankBeta(data, BankBetaDocumentName)
}

func parseBankBeta(data []byte, document string) (*BankBetaDocument, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{Document: document, Err: errEmptyDocument}
	}
	var probe interface{}
	if err := jsonAPI.Unmarshal(data, &probe); err != nil {
		return nil, &ParseError{Document: document, Err: err}
	}
	if _, ok := probe.(map[string]interface{}); !ok {
		return nil, &ParseError{Document: document, Err: errors.New("expected an object keyed by country")}
	}

	// Go maps lose key order; walk the object with the iterator instead.
	type entry struct {
		country string
		raw     []byte
	}
	var entries []entry
	// A repeated country replaces the earlier value but keeps its position.
	seen := make(map[string]int)
	iter := jsoniter.ParseBytes(jsonAPI, data)
	iter.ReadMapCB(func(it *jsoniter.Iterator, country string) bool {
		raw := it.SkipAndReturnBytes()
		if i, ok := seen[country]; ok {
			entries[i].raw = raw
		} else {
			seen[country] = len(entries)
			entries = append(entries, entry{country: country, raw: raw})
		}
		return it.Error == nil
	})
	if iter.Error != nil && iter.Error != io.EOF {
		return nil, &ParseError{Document: document, Err: iter.Error}
	}

	doc := &BankBetaDocument{Rows: []models.BankBetaRow{}, Insights: models.NewInsightLookup()}
	var problems error
	for _, e := range entries {
		rows, insights, err := flattenCountry(e.country, e.raw)
		if err != nil {
			problems = multierr.Append(problems, err)
			continue
		}
		doc.Rows = append(doc.Rows, rows...)
		doc.Insights[models.English][e.country] = insights[0]
		doc.Insights[models.Tamil][e.country] = insights[1]
		doc.Insights[models.Hindi][e.country] = insights[2]
	}
	if problems != nil {
		return nil, &ParseError{Document: document, Err: problems}
	}
	return doc, nil
}

func flattenCountry(country string, raw []byte) ([]models.BankBetaRow, [3]string, error) {
	var insights [3]string
	var p countryPayload
	if err := jsonAPI.Unmarshal(raw, &p); err != nil {
		return nil, insights, fmt.Errorf("country %q: %w", country, err)
	}

	var problems error
	if p.Index == nil {
		problems = multierr.Append(problems, fmt.Errorf("country %q: missing key %q", country, "Index"))
	}
	indexBeta, ok, err := textValue(p.IndexBeta)
	if err != nil {
		problems = multierr.Append(problems, fmt.Errorf("country %q: Index_Beta: %w", country, err))
	} else if !ok {
		problems = multierr.Append(problems, fmt.Errorf("country %q: missing key %q", country, "Index_Beta"))
	}
	if p.LargeCapBanks == nil {
		problems = multierr.Append(problems, fmt.Errorf("country %q: missing key %q", country, "Large_Cap_Banks"))
	}

	rows := make([]models.BankBetaRow, 0, len(p.LargeCapBanks))
	for i, bank := range p.LargeCapBanks {
		if bank.Name == nil {
			problems = multierr.Append(problems, fmt.Errorf("country %q: Large_Cap_Banks[%d]: missing key %q", country, i, "name"))
		}
		beta, err := numberValue(bank.Beta)
		if err != nil {
			problems = multierr.Append(problems, fmt.Errorf("country %q: Large_Cap_Banks[%d].beta: %w", country, i, err))
		}
		if problems != nil {
			continue
		}
		rows = append(rows, models.BankBetaRow{
			Country:   country,
			Index:     *p.Index,
			IndexBeta: indexBeta,
			BankName:  *bank.Name,
			BankBeta:  beta,
		})
	}
	if problems != nil {
		return nil, insights, problems
	}

	insights = [3]string{insightText(p.Insights), insightText(p.InsightsTA), insightText(p.InsightsHI)}
	return rows, insights, nil
}

// textValue accepts a JSON string or number; ok is false for missing or null values.
func textValue(raw json.RawMessage) (string, bool, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", false, nil
	}
	switch c := trimmed[0]; {
	case c == '"':
		var s string
		if err := jsonAPI.Unmarshal(raw, &s); err != nil {
			return "", false, err
		}
		return s, true, nil
	case c == '-' || (c >= '0' && c <= '9'):
		return trimmed, true, nil
	}
	return "", false, fmt.Errorf("expected string or number, got %s", trimmed)
}

// insightText reads an optional insight. Numbers keep their literal text; any
// other non-string value reads as no insight.
func insightText(raw json.RawMessage) string {
	s, _, err := textValue(raw)
	if err != nil {
		return ""
	}
	return s
}

func numberValue(raw json.RawMessage) (float64, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return 0, errors.New("missing value")
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("expected a number, got %s", trimmed)
	}
	return f, nil
}

// LoadBankBetaFile reads and parses a bank-beta document from disk.
func LoadBankBetaFile(path string) (*BankBetaDocument, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &MissingFileError{Path: path}
	}
	if err != nil {
		return nil, &ParseError{Document: filepath.Base(path), Err: err}
	}
	return parseBankBeta(data, filepath.Base(path))
}

// LoadRegionalFile reads and parses a regional-summary document from disk.
func LoadRegionalFile(path string) (*RegionalDocument, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &MissingFileError{Path: path}
	}
	if err != nil {
		return nil, &ParseError{Document: filepath.Base(path), Err: err}
	}
	defer f.Close()
	return ParseRegional(f)
}

// DiscoverBankBeta looks for the conventionally named bank-beta document in dir.
// An empty name means BankBetaDocumentName.
func DiscoverBankBeta(dir, name string) (*BankBetaDocument, error) {
	if name == "" {
		name = BankBetaDocumentName
	}
	return LoadBankBetaFile(filepath.Join(dir, name))
}
