package dashboard

import (
	"beta-dashboard/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// All is the selector value meaning "no constraint".
const All = "All"

// Filter selects bank rows by country and bank name. Empty fields mean All.
type Filter struct {
	Country string `json:"country"`
	Bank    string `json:"bank"`
}

func isAll(v string) bool { return v == "" || v == All }

// Apply returns the matching rows as a new slice.
func (f Filter) Apply(rows []models.BankBetaRow) []models.BankBetaRow {
	out := make([]models.BankBetaRow, 0, len(rows))
	for _, r := range rows {
		if !isAll(f.Country) && r.Country != f.Country {
			continue
		}
		if !isAll(f.Bank) && r.BankName != f.Bank {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Normalize spells out All and drops a bank that is not offered for the selected
// country, the way a selector resets when its options change.
func (f Filter) Normalize(rows []models.BankBetaRow) Filter {
	n := Filter{Country: f.Country, Bank: f.Bank}
	if isAll(n.Country) {
		n.Country = All
	}
	if isAll(n.Bank) {
		n.Bank = All
		return n
	}
	for _, b := range BankChoices(rows, n.Country) {
		if b == n.Bank {
			return n
		}
	}
	n.Bank = All
	return n
}

// CountryChoices is All followed by the sorted distinct countries.
func CountryChoices(rows []models.BankBetaRow) []string {
	seen := map[string]bool{}
	var countries []string
	for _, r := range rows {
		if !seen[r.Country] {
			seen[r.Country] = true
			countries = append(countries, r.Country)
		}
	}
	return withAll(countries)
}

// BankChoices is All followed by the sorted distinct bank names, restricted to
// country unless it is All.
func BankChoices(rows []models.BankBetaRow, country string) []string {
	seen := map[string]bool{}
	var banks []string
	for _, r := range rows {
		if !isAll(country) && r.Country != country {
			continue
		}
		if !seen[r.BankName] {
			seen[r.BankName] = true
			banks = append(banks, r.BankName)
		}
	}
	return withAll(banks)
}

func withAll(values []string) []string {
	collate.New(language.English).SortStrings(values)
	return append([]string{All}, values...)
}
