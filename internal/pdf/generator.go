package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/automatize/proposals-service/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() (*Generator, error) {
	return &Generator{fontName: "Helvetica"}, nil
}

var brl = message.NewPrinter(language.BrazilianPortuguese)

var monthNames = []string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// Render produces the proposal PDF. Item values are printed only when the
// show-values flag is set.
func (g *Generator) Render(doc model.ProposalDocument) ([]byte, error) {
	proposal := doc.Proposal

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, tr("Proposta Comercial"), "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Cliente: %s", proposal.CustomerName)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Data: %s  —  Revisão: %s", formatDate(proposal.ProposalDate), proposal.DocRevision)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Finalidade: %s", proposal.ProjectType)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for i, order := range proposal.Orders {
		g.addOrderBlock(pdf, tr, i+1, order, doc.ShowItemValues)
	}

	pdf.Ln(2)
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Valor total: %s", formatBRL(proposal.TotalValue))), "", 1, "R", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Condições"), "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.MultiCell(0, 6, tr(fmt.Sprintf("Condição de pagamento: %s", proposal.PaymentCondition)), "", "L", false)
	pdf.MultiCell(0, 6, tr(fmt.Sprintf("Prazo de execução: %s", proposal.ExecutionTime)), "", "L", false)

	pdf.Ln(6)
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s: ______________________", proposal.CustomerName)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Automatize: ______________________", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) addOrderBlock(pdf *gofpdf.Fpdf, tr func(string) string, position int, order model.Order, showValues bool) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("%d. Pedido %s — %s", position, order.OrderNumber, order.Description)), "", 1, "L", false, 0, "")

	headers := []string{"Item", "Qtde."}
	colWidths := []float64{120, 30}
	if showValues {
		headers = append(headers, "Valor")
		colWidths = []float64{95, 30, 25}
	}
	g.drawTableRow(pdf, tr, headers, colWidths, true)

	for _, item := range order.Items {
		row := []string{item.Name, item.Quantity}
		if showValues {
			row = append(row, formatBRL(item.Value))
		}
		g.drawTableRow(pdf, tr, row, colWidths, false)
	}

	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Valor do pedido: %s", formatBRL(order.Value))), "", 1, "R", false, 0, "")

	if bullets := splitServiceDescription(order.ServiceDescription); len(bullets) > 0 {
		pdf.SetFont(g.fontName, "B", 10)
		pdf.CellFormat(0, 6, tr("Serviços inclusos:"), "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 10)
		for _, bullet := range bullets {
			pdf.MultiCell(0, 5, tr("• "+bullet), "", "L", false)
		}
	}
	pdf.Ln(3)
}

func (g *Generator) drawTableRow(pdf *gofpdf.Fpdf, tr func(string) string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(g.fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, tr(col), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

// splitServiceDescription turns the semicolon-separated service text into
// bullet lines, dropping empty segments.
func splitServiceDescription(raw string) []string {
	parts := strings.Split(raw, ";")
	bullets := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			bullets = append(bullets, part)
		}
	}
	return bullets
}

func formatBRL(value float64) string {
	return brl.Sprintf("R$ %.2f", value)
}

// formatDate writes dates the way the proposals do: 10.Março.2024.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return fmt.Sprintf("%02d.%s.%d", t.Day(), monthNames[t.Month()-1], t.Year())
}
