package model

import "time"

// GeneralCategory é a categoria sintética que todo conjunto de especificações
// válido precisa ter, com Name preenchido.
const GeneralCategory = "General"

// SpecCategory mapeia o rótulo de um atributo para o valor exibido no site.
// As chaves são texto livre ("Wi-Fi 802.11 a/b/g", "3.5mm jack") e nunca
// são interpretadas como caminhos.
type SpecCategory map[string]string

// Specifications agrupa atributos por categoria ("Network", "Display", ...).
type Specifications map[string]SpecCategory

// Name returns General.Name, or "" when absent.
func (s Specifications) Name() string {
	return s[GeneralCategory]["Name"]
}

// Valid reports whether s is empty or carries a named General category.
func (s Specifications) Valid() bool {
	return len(s) == 0 || s.Name() != ""
}

type Product struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	URL              string         `json:"url"`
	Image            string         `json:"image"`
	ImageRetina      string         `json:"imageRetina,omitempty"`
	BrandID          string         `json:"brandId"`
	Specifications   Specifications `json:"specifications,omitempty"`
	SpecsLastUpdated *time.Time     `json:"specsLastUpdated,omitempty"`
	LastUpdated      time.Time      `json:"lastUpdated"`
}

// HasSpecs indica se as especificações já foram buscadas ao menos uma vez.
func (p Product) HasSpecs() bool {
	return len(p.Specifications) > 0
}
