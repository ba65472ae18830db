package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"beta-dashboard/dashboard"

	"github.com/go-pdf/fpdf"
)

type pdfReport struct {
	pdf          *fpdf.Fpdf
	tr           func(string) string
	contentWidth float64
}

// WritePDF renders the view as an A4 report. Core PDF fonts are Latin-1 only, so
// callers should pass an English view.
func WritePDF(w io.Writer, v dashboard.View) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle("Global Banking Beta Dashboard", true)
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()

	r := &pdfReport{
		pdf:          pdf,
		tr:           pdf.UnicodeTranslatorFromDescriptor(""),
		contentWidth: pageWidth - left - right,
	}

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 20)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(r.contentWidth, 12, "Global Banking Beta Dashboard", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	r.section("Beta Definition and Use Cases")
	for _, c := range v.Glossary {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(r.contentWidth, 6, r.tr(c.Concept), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(r.contentWidth, 5, r.tr(c.Content), "", "L", false)
		pdf.Ln(1)
	}

	r.section("Beta Dispersion by Country")
	geo := make([][]string, 0, len(v.Geo))
	for _, g := range v.Geo {
		geo = append(geo, []string{g.Country, g.ISOCode, g.BankingIndex, FormatBeta(g.Beta)})
	}
	r.table([]string{"Country", "ISO", "Banking Index", "Beta"}, []float64{0.25, 0.1, 0.5, 0.15}, geo)

	r.section("Regional Beta Summary")
	regional := make([][]string, 0, len(v.Regional))
	for _, s := range v.Regional {
		regional = append(regional, []string{s.Country, s.Index, s.BetaRange, s.Volatility, s.Notes})
	}
	r.table([]string{"Country", "Index", "Beta Range", "Volatility", "Notes"}, []float64{0.14, 0.22, 0.14, 0.2, 0.3}, regional)

	if v.HasBanks {
		r.section("Index-wise Beta Overview")
		for _, g := range v.Groups {
			red, green, blue := hexRGB(g.Color)
			pdf.SetFillColor(red, green, blue)
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(r.contentWidth, 7, r.tr(fmt.Sprintf("%s - Beta: %s", g.Index, g.IndexBeta)), "1", 1, "L", true, 0, "")
			pdf.SetFont("Arial", "", 9)
			text := g.Country
			if g.Insight != "" {
				text += ": " + g.Insight
			}
			pdf.MultiCell(r.contentWidth, 5, r.tr(text), "LRB", "L", true)
			banks := make([][]string, 0, len(g.Rows))
			for _, b := range g.Rows {
				banks = append(banks, []string{b.BankName, FormatBeta(b.BankBeta)})
			}
			r.table([]string{"Bank Name", "Bank Beta"}, []float64{0.7, 0.3}, banks)
			pdf.Ln(2)
		}

		title := "Bank Betas"
		if v.Filter.Country != dashboard.All || v.Filter.Bank != dashboard.All {
			title = fmt.Sprintf("Bank Betas (Country: %s, Bank: %s)", v.Filter.Country, v.Filter.Bank)
		}
		r.section(title)
		banks := make([][]string, 0, len(v.Filtered))
		for _, b := range v.Filtered {
			banks = append(banks, bankRecord(b))
		}
		r.table(bankColumns, []float64{0.18, 0.27, 0.15, 0.25, 0.15}, banks)
		if v.Insight != "" {
			pdf.Ln(2)
			pdf.SetFont("Arial", "I", 10)
			pdf.MultiCell(r.contentWidth, 5, r.tr(fmt.Sprintf("Insight for %s: %s", v.Filter.Country, v.Insight)), "", "L", false)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func (r *pdfReport) section(title string) {
	r.pdf.Ln(4)
	r.pdf.SetFont("Arial", "B", 13)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(r.contentWidth, 8, r.tr(title), "B", 1, "L", false, 0, "")
	r.pdf.SetTextColor(50, 50, 50)
	r.pdf.Ln(2)
}

// table draws single-line cells; widths are fractions of the content width.
func (r *pdfReport) table(headers []string, widths []float64, rows [][]string) {
	r.pdf.SetFont("Arial", "B", 9)
	r.pdf.SetFillColor(245, 247, 250)
	for i, h := range headers {
		r.pdf.CellFormat(widths[i]*r.contentWidth, 7, r.tr(h), "1", 0, "C", true, 0, "")
	}
	r.pdf.Ln(-1)

	r.pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		for i, cell := range row {
			w := widths[i] * r.contentWidth
			r.pdf.CellFormat(w, 6, r.fit(cell, w), "1", 0, "L", false, 0, "")
		}
		r.pdf.Ln(-1)
	}
}

// fit truncates text that would overflow a cell of width w.
func (r *pdfReport) fit(s string, w float64) string {
	t := r.tr(s)
	if r.pdf.GetStringWidth(t) <= w-2 {
		return t
	}
	for len(t) > 0 && r.pdf.GetStringWidth(t+"...") > w-2 {
		t = t[:len(t)-1]
	}
	return t + "..."
}

func hexRGB(hex string) (int, int, int) {
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 {
		return 255, 255, 255
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 255, 255, 255
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
