package crawler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"catalogsync/internal/model"
	"catalogsync/internal/observability"
)

// listingURL monta a URL da página N da listagem de uma marca. A primeira
// página usa o caminho da própria marca; as demais usam o formato paginado.
func (c *Crawler) listingURL(brand model.Brand, page int) string {
	if page == 1 {
		return fmt.Sprintf("%s/%s.php", c.baseURL, brand.ID)
	}
	code := brand.BrandCode
	if code == "" {
		code = model.DefaultBrandCode
	}
	return fmt.Sprintf("%s/%s-phones-f-%s-0-p%d.php", c.baseURL, model.BaseSlug(brand.ID), code, page)
}

// CollectProducts percorre as páginas da marca enquanto houver link de
// próxima página, até maxPages. Uma falha depois da primeira página encerra a
// travessia e devolve o que já foi acumulado; só a falha da primeira página é
// erro, porque aí não há nada a aproveitar.
func (c *Crawler) CollectProducts(ctx context.Context, brand model.Brand) ([]model.Product, error) {
	var all []model.Product

	for page := 1; page <= c.maxPages; page++ {
		u := c.listingURL(brand, page)
		c.log.Info("buscando página", zap.String("brand", brand.ID), zap.Int("page", page), zap.String("url", u))
		c.transition("listing_page", u, StateFetching)

		body, err := c.fetcher.Fetch(ctx, u)
		if err != nil {
			c.transition("listing_page", u, StateFailed)
			if page == 1 {
				return nil, err
			}
			c.log.Warn("falha na listagem, mantendo resultado parcial",
				zap.String("brand", brand.ID), zap.Int("page", page), zap.Int("products", len(all)), zap.Error(err))
			return all, nil
		}

		doc, err := ParseDocument(body)
		if err != nil {
			c.transition("listing_page", u, StateFailed)
			if page == 1 {
				return nil, fmt.Errorf("parse listing of %s: %w", brand.ID, err)
			}
			c.log.Warn("página de listagem ilegível", zap.String("brand", brand.ID), zap.Int("page", page), zap.Error(err))
			return all, nil
		}

		all = append(all, ExtractProducts(doc, brand.ID)...)
		observability.PagesCrawled.Inc()
		c.transition("listing_page", u, StateExtracted)

		if !HasNextPage(doc) {
			return all, nil
		}
		// Atraso entre páginas para não disparar o bloqueio do site
		if err := c.sleep(ctx, jitter(c.pageDelay)); err != nil {
			return all, nil
		}
	}

	c.log.Warn("limite de páginas atingido", zap.String("brand", brand.ID), zap.Int("max_pages", c.maxPages))
	return all, nil
}
