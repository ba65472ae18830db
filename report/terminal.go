package report

import (
	"fmt"
	"io"
	"strings"

	"beta-dashboard/dashboard"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	primary = lipgloss.Color("#003366")
	border  = lipgloss.Color("#dce0e5")
	muted   = lipgloss.Color("#6a737d")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(primary).MarginBottom(1)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(primary).Underline(true).MarginTop(1)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted).Italic(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
)

func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(border)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// RenderTerminal writes the same sections as the web page, as text tables.
func RenderTerminal(w io.Writer, v dashboard.View) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Global Banking Beta Dashboard"))
	b.WriteString("\n")

	for _, warn := range v.Warnings {
		b.WriteString(warnStyle.Render(fmt.Sprintf("! %s: %s", warn.Document, warn.Message)))
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render("Beta Definition and Use Cases"))
	b.WriteString("\n")
	glossary := make([][]string, 0, len(v.Glossary))
	for _, c := range v.Glossary {
		glossary = append(glossary, []string{c.Concept, lipgloss.NewStyle().Width(70).Render(c.Content)})
	}
	b.WriteString(newTable([]string{"Concept", "Content"}, glossary).String())
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Beta Dispersion by Country"))
	b.WriteString("\n")
	geo := make([][]string, 0, len(v.Geo))
	for _, g := range v.Geo {
		geo = append(geo, []string{g.Country, g.ISOCode, g.BankingIndex, FormatBeta(g.Beta)})
	}
	b.WriteString(newTable([]string{"Country", "ISO", "Banking Index", "Beta"}, geo).String())
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Regional Beta Summary"))
	b.WriteString("\n")
	regional := make([][]string, 0, len(v.Regional))
	for _, s := range v.Regional {
		regional = append(regional, []string{s.Country, s.Index, s.BetaRange, s.Volatility, s.Notes})
	}
	b.WriteString(newTable([]string{"Country", "Index", "Beta Range", "Volatility", "Notes"}, regional).String())
	b.WriteString("\n")

	if !v.HasBanks {
		b.WriteString(mutedStyle.Render("No bank beta data loaded."))
		b.WriteString("\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString(sectionStyle.Render("Index-wise Beta Overview"))
	b.WriteString("\n")
	for _, g := range v.Groups {
		card := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#101F38")).
			Background(lipgloss.Color(g.Color)).
			Padding(0, 1)
		b.WriteString(card.Render(fmt.Sprintf("%s - Beta: %s", g.Index, g.IndexBeta)))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%s: %s\n", g.Country, g.Insight))
		banks := make([][]string, 0, len(g.Rows))
		for _, r := range g.Rows {
			banks = append(banks, []string{r.BankName, FormatBeta(r.BankBeta)})
		}
		b.WriteString(newTable([]string{"Bank Name", "Bank Beta"}, banks).String())
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render(fmt.Sprintf("Bank Betas (Country: %s, Bank: %s)", v.Filter.Country, v.Filter.Bank)))
	b.WriteString("\n")
	filtered := make([][]string, 0, len(v.Filtered))
	for _, r := range v.Filtered {
		filtered = append(filtered, bankRecord(r))
	}
	b.WriteString(newTable(bankColumns, filtered).String())
	b.WriteString("\n")
	if v.Insight != "" {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("Insight for %s: %s", v.Filter.Country, v.Insight)))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
