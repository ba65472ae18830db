// Package report renders dashboard views outside the browser: CSV and PDF
// downloads and the terminal output of the render command.
package report

import (
	"encoding/csv"
	"io"

	"beta-dashboard/models"

	"github.com/shopspring/decimal"
)

var bankColumns = []string{"Country", "Index", "Index Beta", "Bank Name", "Bank Beta"}

// FormatBeta prints a beta with the shortest exact decimal form, e.g. 1.3 not 1.300000.
func FormatBeta(beta float64) string {
	return decimal.NewFromFloat(beta).String()
}

func bankRecord(r models.BankBetaRow) []string {
	return []string{r.Country, r.Index, r.IndexBeta, r.BankName, FormatBeta(r.BankBeta)}
}

// WriteBanksCSV writes the bank table with a header row.
func WriteBanksCSV(w io.Writer, rows []models.BankBetaRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(bankColumns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(bankRecord(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
