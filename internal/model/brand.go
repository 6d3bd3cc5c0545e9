package model

import (
	"strings"
	"time"
)

// DefaultBrandCode é usado quando o href da marca não traz sufixo numérico.
const DefaultBrandCode = "0"

type Brand struct {
	ID          string    `json:"id"`
	CleanID     string    `json:"cleanId"`
	BrandCode   string    `json:"brandCode"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Logo        string    `json:"logo,omitempty"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// BaseSlug returns the first dash-separated token of an external id
// ("samsung-phones-9" -> "samsung").
func BaseSlug(id string) string {
	base, _, _ := strings.Cut(id, "-")
	return base
}
