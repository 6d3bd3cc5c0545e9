package cache

import (
	"strings"
	"time"

	"catalogsync/internal/config"
)

// Tier agrupa chaves por frequência de mudança do recurso.
type Tier string

const (
	TierShort  Tier = "short"
	TierMedium Tier = "medium"
	TierLong   Tier = "long"
)

var tiers = []Tier{TierShort, TierMedium, TierLong}

// Policy carries the TTL of each kind of cached resource.
type Policy struct {
	Brands   time.Duration
	Products time.Duration
	Specs    time.Duration
	Default  time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		Brands:   24 * time.Hour,
		Products: 12 * time.Hour,
		Specs:    6 * time.Hour,
		Default:  time.Hour,
	}
}

// PolicyFromConfig usa os TTLs configurados, caindo no padrão quando zerados.
func PolicyFromConfig(cfg config.CacheConfig) Policy {
	p := DefaultPolicy()
	if cfg.BrandsTTL > 0 {
		p.Brands = cfg.BrandsTTL
	}
	if cfg.ProductsTTL > 0 {
		p.Products = cfg.ProductsTTL
	}
	if cfg.SpecsTTL > 0 {
		p.Specs = cfg.SpecsTTL
	}
	if cfg.DefaultTTL > 0 {
		p.Default = cfg.DefaultTTL
	}
	return p
}

// Route decide o tier e o TTL de uma chave pelo prefixo. A ordem importa:
// "phones_" precisa ser testado antes de "phone_".
func (p Policy) Route(key string) (Tier, time.Duration) {
	switch {
	case strings.HasPrefix(key, "brands"):
		return TierLong, p.Brands
	case strings.HasPrefix(key, "brand_all_"), strings.HasPrefix(key, "phones_"):
		return TierMedium, p.Products
	case strings.HasPrefix(key, "phone_"):
		return TierMedium, p.Specs
	default:
		return TierShort, p.Default
	}
}
