package search

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"beta-dashboard/models"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
)

// bankDocument is what gets indexed; the document id is the row position.
type bankDocument struct {
	BankName string  `json:"bank_name"`
	BankKey  string  `json:"bank_key"`
	Country  string  `json:"country"`
	Index    string  `json:"index"`
	BankBeta float64 `json:"bank_beta"`
}

// BleveEngine searches a session's banks through an in-memory bleve index.
type BleveEngine struct {
	index bleve.Index
	rows  []models.BankBetaRow
}

func NewBleveEngine(rows []models.BankBetaRow) (*BleveEngine, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	batch := index.NewBatch()
	for i, r := range rows {
		doc := bankDocument{
			BankName: r.BankName,
			BankKey:  strings.ToLower(r.BankName),
			Country:  r.Country,
			Index:    r.Index,
			BankBeta: r.BankBeta,
		}
		if err := batch.Index(strconv.Itoa(i), doc); err != nil {
			index.Close()
			return nil, fmt.Errorf("failed to add to batch: %w", err)
		}
	}
	if err := index.Batch(batch); err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to execute batch: %w", err)
	}

	return &BleveEngine{
		index: index,
		rows:  append([]models.BankBetaRow(nil), rows...),
	}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	bankMapping := bleve.NewDocumentMapping()

	textFieldMapping := bleve.NewTextFieldMapping()
	bankMapping.AddFieldMappingsAt("bank_name", textFieldMapping)
	bankMapping.AddFieldMappingsAt("country", textFieldMapping)
	bankMapping.AddFieldMappingsAt("index", textFieldMapping)

	// exact, case-folded lookups for GetBank
	keyFieldMapping := bleve.NewTextFieldMapping()
	keyFieldMapping.Analyzer = keyword.Name
	bankMapping.AddFieldMappingsAt("bank_key", keyFieldMapping)

	betaFieldMapping := bleve.NewNumericFieldMapping()
	bankMapping.AddFieldMappingsAt("bank_beta", betaFieldMapping)

	indexMapping.DefaultMapping = bankMapping
	return indexMapping
}

// Search ranks by match type (name prefix > name > country > index > name
// wildcard), breaking ties by higher bank beta.
func (e *BleveEngine) Search(query string) ([]models.BankBetaRow, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []models.BankBetaRow{}, nil
	}

	prefixQuery := bleve.NewPrefixQuery(q)
	prefixQuery.SetField("bank_name")
	prefixQuery.SetBoost(5.0)

	nameMatchQuery := bleve.NewMatchQuery(query)
	nameMatchQuery.SetField("bank_name")
	nameMatchQuery.SetBoost(3.0)

	countryQuery := bleve.NewMatchQuery(query)
	countryQuery.SetField("country")
	countryQuery.SetBoost(2.0)

	indexQuery := bleve.NewMatchQuery(query)
	indexQuery.SetField("index")
	indexQuery.SetBoost(1.5)

	wildcardName := bleve.NewWildcardQuery("*" + q + "*")
	wildcardName.SetField("bank_name")
	wildcardName.SetBoost(1.0)

	searchRequest := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(
		prefixQuery,
		nameMatchQuery,
		countryQuery,
		indexQuery,
		wildcardName,
	))
	searchRequest.Size = len(e.rows) + 1

	searchResults, err := e.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	type scoredRow struct {
		row   models.BankBetaRow
		score float64
	}
	var scored []scoredRow
	for _, hit := range searchResults.Hits {
		if r, ok := e.rowFor(hit.ID); ok {
			scored = append(scored, scoredRow{row: r, score: hit.Score})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].row.BankBeta > scored[j].row.BankBeta
	})

	results := make([]models.BankBetaRow, 0, len(scored))
	for _, s := range scored {
		results = append(results, s.row)
	}
	return results, nil
}

func (e *BleveEngine) GetBank(name string) *models.BankBetaRow {
	termQuery := bleve.NewTermQuery(strings.ToLower(strings.TrimSpace(name)))
	termQuery.SetField("bank_key")

	searchRequest := bleve.NewSearchRequest(termQuery)
	searchRequest.Size = 1

	searchResults, err := e.index.Search(searchRequest)
	if err != nil || len(searchResults.Hits) == 0 {
		return nil
	}
	r, ok := e.rowFor(searchResults.Hits[0].ID)
	if !ok {
		return nil
	}
	return &r
}

func (e *BleveEngine) rowFor(id string) (models.BankBetaRow, bool) {
	i, err := strconv.Atoi(id)
	if err != nil || i < 0 || i >= len(e.rows) {
		return models.BankBetaRow{}, false
	}
	return e.rows[i], true
}

func (e *BleveEngine) Close() error {
	return e.index.Close()
}
