package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/automatize/proposals-service/internal/model"
)

func TestGenerate(t *testing.T) {
	link := "https://files.example.com/pdfs/doc.pdf"
	rows := []model.ProposalRow{
		{
			ID:            uuid.New(),
			CustomerName:  "Acme",
			ProposalDate:  time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			TotalValue:    500.00,
			ProjectType:   "Soluções de Tecnologia Residencial",
			DocRevision:   "00",
			DocLink:       &link,
			CreatedByName: "Maria Souza",
		},
		{
			ID:           uuid.New(),
			CustomerName: "João da Silva",
			ProposalDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			TotalValue:   1200.00,
		},
	}

	content, err := NewGenerator().Generate(rows)
	require.NoError(t, err)
	require.NotEmpty(t, content)

	file, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer file.Close()

	customer, err := file.GetCellValue("Propostas", "A7")
	require.NoError(t, err)
	assert.Equal(t, "Acme", customer)

	creator, err := file.GetCellValue("Propostas", "F7")
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", creator)
}

func TestGenerateEmptyList(t *testing.T) {
	content, err := NewGenerator().Generate(nil)
	require.NoError(t, err)
	require.NotEmpty(t, content)
}

func TestBuildFileName(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "propostas-20240310-150405.xlsx", BuildFileName(now))
}
