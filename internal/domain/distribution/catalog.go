package distribution

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CatalogItem names an aid item offered in the entry form. The catalog only
// feeds the selection list; deliveries may name items outside it.
type CatalogItem struct {
	Name string
}

// NormalizeItemName title-cases a free-text item name typed by an operator,
// e.g. "  kit de HIGIENE " becomes "Kit De Higiene".
func NormalizeItemName(name string) string {
	// A Caser keeps state between calls, so each call gets its own.
	return cases.Title(language.LatinAmericanSpanish).String(strings.Join(strings.Fields(name), " "))
}
