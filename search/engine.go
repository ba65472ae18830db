package search

import (
	"fmt"
	"strings"

	"beta-dashboard/models"
)

type SearchEngine interface {
	Search(query string) ([]models.BankBetaRow, error)
	GetBank(name string) *models.BankBetaRow
	Close() error
}

const (
	EngineBleve  = "bleve"
	EngineMemory = "memory"
)

// NewEngine builds the engine named by kind over a session's bank rows.
func NewEngine(kind string, rows []models.BankBetaRow) (SearchEngine, error) {
	switch kind {
	case "", EngineBleve:
		e, err := NewBleveEngine(rows)
		if err != nil {
			return nil, err
		}
		return e, nil
	case EngineMemory:
		return NewInMemoryEngine(rows), nil
	default:
		return nil, fmt.Errorf("unknown search engine %q", kind)
	}
}

type InMemoryEngine struct {
	rows []models.BankBetaRow
}

func NewInMemoryEngine(rows []models.BankBetaRow) *InMemoryEngine {
	return &InMemoryEngine{rows: append([]models.BankBetaRow(nil), rows...)}
}

// Search matches a bank-name prefix first, then substrings of bank, country or index.
func (e *InMemoryEngine) Search(query string) ([]models.BankBetaRow, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []models.BankBetaRow{}, nil
	}
	var prefix, contains []models.BankBetaRow
	for _, r := range e.rows {
		name := strings.ToLower(r.BankName)
		switch {
		case strings.HasPrefix(name, q):
			prefix = append(prefix, r)
		case strings.Contains(name, q),
			strings.Contains(strings.ToLower(r.Country), q),
			strings.Contains(strings.ToLower(r.Index), q):
			contains = append(contains, r)
		}
	}
	return append(append([]models.BankBetaRow{}, prefix...), contains...), nil
}

func (e *InMemoryEngine) GetBank(name string) *models.BankBetaRow {
	for _, r := range e.rows {
		if strings.EqualFold(r.BankName, name) {
			r := r
			return &r
		}
	}
	return nil
}

func (e *InMemoryEngine) Close() error { return nil }
