package service

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var brlPrinter = message.NewPrinter(language.BrazilianPortuguese)

// formatBRL renders a value as Brazilian currency, e.g. "R$ 1.234,56".
func formatBRL(value float64) string {
	return brlPrinter.Sprintf("R$ %.2f", value)
}
