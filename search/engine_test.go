package search

import (
	"testing"

	"beta-dashboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRows() []models.BankBetaRow {
	return []models.BankBetaRow{
		{Country: "India", Index: "NIFTY Bank", IndexBeta: "1.2", BankName: "HDFC Bank", BankBeta: 1.3},
		{Country: "India", Index: "NIFTY Bank", IndexBeta: "1.2", BankName: "ICICI Bank", BankBeta: 1.1},
		{Country: "India", Index: "NIFTY Bank", IndexBeta: "1.2", BankName: "State Bank of India", BankBeta: 1.4},
		{Country: "Japan", Index: "TOPIX Banks", IndexBeta: "<0.7", BankName: "MUFG", BankBeta: 0.65},
	}
}

func engines(t *testing.T) map[string]SearchEngine {
	t.Helper()
	out := map[string]SearchEngine{}
	for _, kind := range []string{EngineMemory, EngineBleve} {
		e, err := NewEngine(kind, testRows())
		require.NoError(t, err)
		t.Cleanup(func() { e.Close() })
		out[kind] = e
	}
	return out
}

func TestSearchByBankPrefix(t *testing.T) {
	for kind, e := range engines(t) {
		t.Run(kind, func(t *testing.T) {
			results, err := e.Search("hdf")
			require.NoError(t, err)
			require.NotEmpty(t, results)
			assert.Equal(t, "HDFC Bank", results[0].BankName)
		})
	}
}

func TestSearchByCountry(t *testing.T) {
	for kind, e := range engines(t) {
		t.Run(kind, func(t *testing.T) {
			results, err := e.Search("Japan")
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, "MUFG", results[0].BankName)
		})
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	for kind, e := range engines(t) {
		t.Run(kind, func(t *testing.T) {
			results, err := e.Search("  ")
			require.NoError(t, err)
			assert.Empty(t, results)
		})
	}
}

func TestGetBank(t *testing.T) {
	for kind, e := range engines(t) {
		t.Run(kind, func(t *testing.T) {
			r := e.GetBank("icici bank")
			require.NotNil(t, r)
			assert.Equal(t, 1.1, r.BankBeta)
			assert.Equal(t, "India", r.Country)

			assert.Nil(t, e.GetBank("Barclays"))
		})
	}
}

func TestNewEngineUnknownKind(t *testing.T) {
	_, err := NewEngine("solr", nil)
	assert.Error(t, err)
}

func TestBleveEngineEmptyRows(t *testing.T) {
	e, err := NewBleveEngine(nil)
	require.NoError(t, err)
	defer e.Close()

	results, err := e.Search("hdfc")
	require.NoError(t, err)
	assert.Empty(t, results)
}
