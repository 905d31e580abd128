package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"cashlens/internal/core"
	"cashlens/internal/filter"
)

// PDF renders a one-table report: one row per expense and a total line.
type PDF struct {
	// Symbol prefixes amounts, e.g. "₹". Empty prints bare numbers.
	Symbol    string
	Generated time.Time
}

func (PDF) Extension() string { return "pdf" }

func (p PDF) Export(w io.Writer, expenses []core.Expense) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	generated := p.Generated
	if generated.IsZero() {
		generated = time.Now()
	}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, tr("Generated by cashlens | "+generated.Format("2006-01-02")), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, "  Expense Report", "", 1, "L", true, 0, "")
	pdf.Ln(6)

	widths := []float64{28, 70, 35, 30, 27}
	headers := []string{"Date", "Title", "Category", "Amount", "Notes"}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
	for i, h := range headers {
		align := "L"
		if h == "Amount" {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, h, "B", 0, align, false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, e := range expenses {
		notes := ""
		if e.Notes != "" {
			notes = "yes"
		}
		pdf.CellFormat(widths[0], 6, e.Date.Format("2006-01-02"), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, tr(truncate(e.Title, 40)), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, tr(e.Category.Name()), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, tr(p.amount(e.Amount)), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, notes, "", 1, "L", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], 8, fmt.Sprintf("Total (%d expenses)", len(expenses)), "T", 0, "L", false, 0, "")
	pdf.CellFormat(widths[3], 8, tr(p.amount(filter.Sum(expenses))), "T", 0, "R", false, 0, "")
	pdf.CellFormat(widths[4], 8, "", "T", 1, "L", false, 0, "")

	return pdf.Output(w)
}

func (p PDF) amount(m core.Money) string {
	if p.Symbol == "" {
		return m.String()
	}
	return m.Format(p.Symbol)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
