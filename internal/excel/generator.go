package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/automatize/proposals-service/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate writes the proposal list into a workbook: one summary sheet
// with totals plus a detail table of every proposal.
func (g *Generator) Generate(rows []model.ProposalRow) ([]byte, error) {
	file := excelize.NewFile()

	sheet := "Propostas"
	file.SetSheetName("Sheet1", sheet)

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Relatório de propostas")
	set("A2", "Gerado em")
	set("B2", time.Now().Format("02.01.2006 15:04"))
	set("A3", "Quantidade")
	set("B3", len(rows))

	total := 0.0
	for _, row := range rows {
		total += row.TotalValue
	}
	set("A4", "Valor total")
	set("B4", total)

	headerRow := 6
	headers := []string{"Cliente", "Data", "Valor", "Finalidade", "Revisão", "Criado por", "Documento"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return nil, err
		}
		set(cell, header)
	}

	for i, row := range rows {
		values := []interface{}{
			row.CustomerName,
			row.ProposalDate.Format("02.01.2006"),
			row.TotalValue,
			row.ProjectType,
			row.DocRevision,
			row.CreatedByName,
			docLink(row),
		}
		for j, value := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, headerRow+1+i)
			if err != nil {
				return nil, err
			}
			set(cell, value)
		}
	}

	for i := range headers {
		column, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		_ = file.SetColWidth(sheet, column, column, 22)
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func docLink(row model.ProposalRow) string {
	if row.DocLink == nil {
		return ""
	}
	return *row.DocLink
}

// BuildFileName names the export after the generation moment.
func BuildFileName(now time.Time) string {
	return fmt.Sprintf("propostas-%s.xlsx", now.Format("20060102-150405"))
}
