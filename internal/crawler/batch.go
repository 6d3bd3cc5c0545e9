package crawler

import "context"

// UnitResult é o resultado de uma unidade dentro de uma execução em lote.
type UnitResult struct {
	ID    string
	Count int
	Err   error
}

// SyncBrandsProducts sincroniza os produtos de cada marca, uma de cada vez,
// com atraso entre marcas. Falha de uma marca vai para o handler e não
// interrompe as demais.
func (c *Crawler) SyncBrandsProducts(ctx context.Context, brandIDs []string, handler func(UnitResult)) error {
	for i, id := range brandIDs {
		n, err := c.SyncProducts(ctx, id)
		handler(UnitResult{ID: id, Count: n, Err: err})

		if i == len(brandIDs)-1 {
			break
		}
		if err := c.sleep(ctx, jitter(c.brandDelay)); err != nil {
			return err
		}
	}
	return nil
}

// RefreshSpecsSample atualiza as especificações de até n produtos sorteados,
// com atraso depois de cada um.
func (c *Crawler) RefreshSpecsSample(ctx context.Context, n int, handler func(UnitResult)) error {
	products, err := c.store.SampleProducts(ctx, n)
	if err != nil {
		return err
	}

	for _, p := range products {
		specs, err := c.SyncSpecs(ctx, p.ID)
		handler(UnitResult{ID: p.ID, Count: len(specs), Err: err})

		if err := c.sleep(ctx, jitter(c.specDelay)); err != nil {
			return err
		}
	}
	return nil
}
