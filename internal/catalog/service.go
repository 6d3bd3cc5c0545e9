// Package catalog é o caminho de leitura: serve marcas, produtos e
// especificações a partir do cache, caindo no repositório e, quando o
// repositório está frio, disparando a sincronização correspondente.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"catalogsync/internal/cache"
	"catalogsync/internal/logger"
	"catalogsync/internal/model"
	"catalogsync/internal/repository"
)

const (
	KeyBrands       = "brands"
	keyBrandProduct = "brand_all_"
	keyProductSpecs = "phone_"
)

func BrandProductsKey(brandID string) string { return keyBrandProduct + brandID }
func ProductSpecsKey(productID string) string { return keyProductSpecs + productID }

// Syncer é a parte do crawler de que o serviço precisa.
type Syncer interface {
	SyncBrands(ctx context.Context) ([]model.Brand, error)
	SyncProducts(ctx context.Context, brandID string) (int, error)
	SyncSpecs(ctx context.Context, productID string) (model.Specifications, error)
}

type BrandProducts struct {
	Products      []model.Product `json:"products"`
	BrandID       string          `json:"brandId"`
	BrandName     string          `json:"brandName"`
	TotalProducts int             `json:"totalProducts"`
}

type Service struct {
	store  repository.Store
	cache  cache.Cache
	syncer Syncer
	log    *zap.Logger
}

func NewService(store repository.Store, c cache.Cache, syncer Syncer, log *zap.Logger) *Service {
	return &Service{store: store, cache: c, syncer: syncer, log: logger.OrNop(log)}
}

func cached[T any](ctx context.Context, c cache.Cache, key string, load func(context.Context) (T, error)) (T, error) {
	var out T
	raw, err := c.GetOrSet(ctx, key, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode cache %s: %w", key, err)
	}
	return out, nil
}

// GetBrands devolve todas as marcas. Com o repositório vazio sincroniza antes.
func (s *Service) GetBrands(ctx context.Context) ([]model.Brand, error) {
	return cached(ctx, s.cache, KeyBrands, func(ctx context.Context) ([]model.Brand, error) {
		brands, err := s.store.ListBrands(ctx)
		if err != nil {
			return nil, err
		}
		if len(brands) > 0 {
			return brands, nil
		}

		s.log.Info("repositório sem marcas, sincronizando")
		if _, err := s.syncer.SyncBrands(ctx); err != nil {
			return nil, fmt.Errorf("sync brands: %w", err)
		}
		return s.store.ListBrands(ctx)
	})
}

// GetBrand aceita o id completo ou só o slug ("apple" ou "apple-48").
func (s *Service) GetBrand(ctx context.Context, idOrSlug string) (model.Brand, error) {
	brands, err := s.GetBrands(ctx)
	if err != nil {
		return model.Brand{}, err
	}

	slug := model.BaseSlug(idOrSlug)
	var (
		bySlug model.Brand
		found  bool
	)
	for _, b := range brands {
		if b.ID == idOrSlug {
			return b, nil
		}
		if b.CleanID == slug && (!found || b.ID < bySlug.ID) {
			bySlug, found = b, true
		}
	}
	if found {
		return bySlug, nil
	}
	return model.Brand{}, repository.BrandNotFound(idOrSlug)
}

func (s *Service) GetProductsByBrand(ctx context.Context, idOrSlug string) (BrandProducts, error) {
	brand, err := s.GetBrand(ctx, idOrSlug)
	if err != nil {
		return BrandProducts{}, err
	}

	return cached(ctx, s.cache, BrandProductsKey(brand.ID), func(ctx context.Context) (BrandProducts, error) {
		products, err := s.store.ListProductsByBrand(ctx, brand.ID)
		if err != nil {
			return BrandProducts{}, err
		}
		if len(products) == 0 {
			s.log.Info("marca sem produtos, sincronizando", zap.String("brand", brand.ID))
			if _, err := s.syncer.SyncProducts(ctx, brand.ID); err != nil {
				return BrandProducts{}, fmt.Errorf("sync products of %s: %w", brand.ID, err)
			}
			if products, err = s.store.ListProductsByBrand(ctx, brand.ID); err != nil {
				return BrandProducts{}, err
			}
		}
		if products == nil {
			products = []model.Product{}
		}
		return BrandProducts{
			Products:      products,
			BrandID:       brand.ID,
			BrandName:     brand.Name,
			TotalProducts: len(products),
		}, nil
	})
}

// GetProductSpecs devolve o produto com especificações, buscando-as na
// origem na primeira vez.
func (s *Service) GetProductSpecs(ctx context.Context, productID string) (model.Product, error) {
	return cached(ctx, s.cache, ProductSpecsKey(productID), func(ctx context.Context) (model.Product, error) {
		p, err := s.store.FindProduct(ctx, productID)
		if err != nil {
			return model.Product{}, err
		}
		if p.HasSpecs() {
			return p, nil
		}

		s.log.Info("produto sem especificações, sincronizando", zap.String("product", productID))
		if _, err := s.syncer.SyncSpecs(ctx, productID); err != nil {
			return model.Product{}, fmt.Errorf("sync specifications of %s: %w", productID, err)
		}
		return s.store.FindProduct(ctx, productID)
	})
}

// TriggerFullBrandSync força a releitura das marcas e invalida a lista.
func (s *Service) TriggerFullBrandSync(ctx context.Context) (int, error) {
	brands, err := s.syncer.SyncBrands(ctx)
	if err != nil {
		return 0, err
	}
	s.cache.Delete(ctx, KeyBrands)
	return len(brands), nil
}

// IsNotFound diz se err corresponde a marca ou produto inexistente.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
