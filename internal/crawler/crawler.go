package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"catalogsync/internal/logger"
	"catalogsync/internal/model"
	"catalogsync/internal/observability"
	"catalogsync/internal/reconcile"
	"catalogsync/internal/repository"
)

// UnitState é o estado de uma unidade de sincronização (marca, página de
// listagem, especificação). Falhas não vão para fila nenhuma: a unidade fica
// desatualizada até a próxima execução.
type UnitState string

const (
	StateFetching   UnitState = "fetching"
	StateExtracted  UnitState = "extracted"
	StateReconciled UnitState = "reconciled"
	StateFailed     UnitState = "failed"
)

type Options struct {
	BaseURL    string
	PageDelay  time.Duration
	SpecDelay  time.Duration
	BrandDelay time.Duration
	MaxPages   int
	Logos      LogoResolver
	Logger     *zap.Logger
}

// Crawler orquestra fetch, extração e reconciliação. Dentro de uma marca as
// páginas são percorridas em série, e as marcas de uma execução agendada
// também, sempre com atraso entre requisições.
type Crawler struct {
	fetcher    PageFetcher
	store      repository.Store
	rec        *reconcile.Reconciler
	logos      LogoResolver
	baseURL    string
	pageDelay  time.Duration
	specDelay  time.Duration
	brandDelay time.Duration
	maxPages   int
	log        *zap.Logger
	sleep      func(context.Context, time.Duration) error
}

func New(fetcher PageFetcher, store repository.Store, rec *reconcile.Reconciler, opts Options) *Crawler {
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = 100
	}
	return &Crawler{
		fetcher:    fetcher,
		store:      store,
		rec:        rec,
		logos:      opts.Logos,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		pageDelay:  opts.PageDelay,
		specDelay:  opts.SpecDelay,
		brandDelay: opts.BrandDelay,
		maxPages:   maxPages,
		log:        logger.OrNop(opts.Logger),
		sleep:      sleepCtx,
	}
}

func (c *Crawler) transition(unit, target string, state UnitState) {
	observability.SyncUnits.WithLabelValues(unit, string(state)).Inc()
	c.log.Debug("sync unit", zap.String("unit", unit), zap.String("target", target), zap.String("state", string(state)))
}

// SyncBrands busca a página inicial uma vez, grava todas as marcas e depois
// tenta resolver o logo de cada uma.
func (c *Crawler) SyncBrands(ctx context.Context) ([]model.Brand, error) {
	c.transition("brands", c.baseURL, StateFetching)
	body, err := c.fetcher.Fetch(ctx, c.baseURL)
	if err != nil {
		c.transition("brands", c.baseURL, StateFailed)
		return nil, err
	}
	doc, err := ParseDocument(body)
	if err != nil {
		c.transition("brands", c.baseURL, StateFailed)
		return nil, fmt.Errorf("parse brand list: %w", err)
	}
	brands, err := ExtractBrands(doc)
	if err != nil {
		c.transition("brands", c.baseURL, StateFailed)
		return nil, err
	}
	c.transition("brands", c.baseURL, StateExtracted)

	stored := make([]model.Brand, 0, len(brands))
	for _, b := range brands {
		sb, err := c.rec.UpsertBrand(ctx, b)
		if err != nil {
			c.transition("brands", c.baseURL, StateFailed)
			return stored, err
		}
		stored = append(stored, sb)
	}
	c.transition("brands", c.baseURL, StateReconciled)
	c.log.Info("marcas atualizadas", zap.Int("brands", len(stored)))

	if c.logos != nil {
		c.resolveLogos(ctx, stored)
	}
	return stored, nil
}

func (c *Crawler) resolveLogos(ctx context.Context, brands []model.Brand) {
	for i, b := range brands {
		logo := c.logos.Resolve(ctx, b.Name)
		if logo == "" {
			continue
		}
		updated, err := c.rec.UpsertBrand(ctx, model.Brand{ID: b.ID, Logo: logo})
		if err != nil {
			c.log.Warn("falha ao gravar logo", zap.String("brand", b.ID), zap.Error(err))
			continue
		}
		brands[i] = updated
	}
}

// SyncProducts percorre a listagem da marca e grava os produtos encontrados.
// Devolve quantos foram gravados. brandID pode ser só o slug ("samsung").
func (c *Crawler) SyncProducts(ctx context.Context, brandID string) (int, error) {
	brand, err := c.store.FindBrand(ctx, brandID)
	if errors.Is(err, repository.ErrNotFound) {
		brand, err = c.store.FindBrandByCleanID(ctx, model.BaseSlug(brandID))
	}
	if err != nil {
		return 0, err
	}

	products, err := c.CollectProducts(ctx, brand)
	if err != nil {
		// falha na página 1 sobe de propósito: lista vazia ficaria 12h no cache
		return 0, err
	}
	if len(products) == 0 {
		c.log.Warn("nenhum produto encontrado", zap.String("brand", brand.ID))
		return 0, nil
	}

	var (
		saved int
		errs  []error
	)
	for _, p := range products {
		if err := c.rec.UpsertProduct(ctx, p); err != nil {
			errs = append(errs, err)
			continue
		}
		saved++
	}
	c.log.Info("produtos atualizados", zap.String("brand", brand.Name), zap.Int("products", saved))
	return saved, errors.Join(errs...)
}

// SyncSpecs busca a página de especificações de um produto já conhecido.
func (c *Crawler) SyncSpecs(ctx context.Context, productID string) (model.Specifications, error) {
	product, err := c.store.FindProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	u := c.baseURL + "/" + product.ID + ".php"
	c.transition("specs", u, StateFetching)
	body, err := c.fetcher.Fetch(ctx, u)
	if err != nil {
		c.transition("specs", u, StateFailed)
		return nil, err
	}
	doc, err := ParseDocument(body)
	if err != nil {
		c.transition("specs", u, StateFailed)
		return nil, fmt.Errorf("parse specifications of %s: %w", product.ID, err)
	}
	specs, err := ExtractSpecifications(doc, product.Image)
	if err != nil {
		c.transition("specs", u, StateFailed)
		return nil, fmt.Errorf("%s: %w", product.ID, err)
	}
	c.transition("specs", u, StateExtracted)

	if err := c.rec.ApplySpecifications(ctx, product.ID, specs); err != nil {
		c.transition("specs", u, StateFailed)
		return nil, err
	}
	c.transition("specs", u, StateReconciled)
	return specs, nil
}
