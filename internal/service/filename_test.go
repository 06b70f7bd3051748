package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveDocumentPath(t *testing.T) {
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	path := deriveDocumentPath("Acme", date, "00", "")
	assert.Equal(t, "pdfs/Proposta-Automatize-Acme-10032024-REV00.pdf", path)
}

func TestDeriveDocumentPathIsDeterministic(t *testing.T) {
	date := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	first := deriveDocumentPath("João & Cia Ltda.", date, "02", "obra nova")
	second := deriveDocumentPath("João & Cia Ltda.", date, "02", "obra nova")
	assert.Equal(t, first, second)
}

func TestDeriveDocumentPathNormalizesCustomer(t *testing.T) {
	date := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)

	path := deriveDocumentPath("João & Cia Ltda.", date, "01", "")
	assert.Equal(t, "pdfs/Proposta-Automatize-Joao-Cia-Ltda-01122024-REV01.pdf", path)
}

func TestDeriveDocumentPathWithTag(t *testing.T) {
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	path := deriveDocumentPath("Acme", date, "00", "piso térreo")
	assert.Equal(t, "pdfs/Proposta-Automatize-Acme-10032024-REV00-piso-terreo.pdf", path)
}

func TestNormalizeToken(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Acme", "Acme"},
		{"João da Silva", "Joao-da-Silva"},
		{"  espaços  extras ", "espacos-extras"},
		{"ação & reação", "acao-reacao"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, normalizeToken(tc.input), "input %q", tc.input)
	}
}

func TestBlobPathFromURL(t *testing.T) {
	url := "https://files.example.com/pdfs/Proposta-Automatize-Acme-10032024-REV00.pdf"
	assert.Equal(t, "pdfs/Proposta-Automatize-Acme-10032024-REV00.pdf", blobPathFromURL(url))

	assert.Equal(t, "", blobPathFromURL("https://files.example.com/other/file.pdf"))
}
