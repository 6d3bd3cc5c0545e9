package repository

import (
	"context"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"

	"catalogsync/internal/model"
)

// MemoryStore implementa Store em memória, com a mesma semântica de merge do
// PostgresStore. Usado nos testes e quando DATABASE_URL não está definido.
type MemoryStore struct {
	mu       sync.RWMutex
	brands   map[string]model.Brand
	products map[string]model.Product
	failures []model.SyncFailure
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		brands:   make(map[string]model.Brand),
		products: make(map[string]model.Product),
	}
}

func (s *MemoryStore) FindBrand(_ context.Context, id string) (model.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.brands[id]
	if !ok {
		return model.Brand{}, BrandNotFound(id)
	}
	return b, nil
}

func (s *MemoryStore) FindBrandByCleanID(_ context.Context, cleanID string) (model.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Mais de um id histórico pode compartilhar o mesmo slug; o menor id vence
	// para a busca ser determinística.
	var (
		found model.Brand
		ok    bool
	)
	for _, b := range s.brands {
		if b.CleanID != cleanID {
			continue
		}
		if !ok || b.ID < found.ID {
			found, ok = b, true
		}
	}
	if !ok {
		return model.Brand{}, BrandNotFound(cleanID)
	}
	return found, nil
}

func (s *MemoryStore) ListBrands(_ context.Context) ([]model.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Brand, 0, len(s.brands))
	for _, b := range s.brands {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *MemoryStore) UpsertBrand(_ context.Context, in model.Brand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.brands[in.ID]
	if !ok {
		cur = model.Brand{ID: in.ID, BrandCode: model.DefaultBrandCode}
	}
	setIfPresent(&cur.CleanID, in.CleanID)
	setIfPresent(&cur.BrandCode, in.BrandCode)
	setIfPresent(&cur.Name, in.Name)
	setIfPresent(&cur.URL, in.URL)
	setIfPresent(&cur.Logo, in.Logo)
	if !in.LastUpdated.IsZero() {
		cur.LastUpdated = in.LastUpdated
	}
	s.brands[in.ID] = cur
	return nil
}

func (s *MemoryStore) FindProduct(_ context.Context, id string) (model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return model.Product{}, ProductNotFound(id)
	}
	return cloneProduct(p), nil
}

func (s *MemoryStore) ListProductsByBrand(_ context.Context, brandID string) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Product
	for _, p := range s.products {
		if p.BrandID == brandID {
			out = append(out, cloneProduct(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) SampleProducts(_ context.Context, n int) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		all = append(all, cloneProduct(p))
	}
	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if n < len(all) {
		all = all[:n]
	}
	return all, nil
}

func (s *MemoryStore) UpsertProduct(_ context.Context, in model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.products[in.ID]
	if !ok {
		cur = model.Product{ID: in.ID}
	}
	setIfPresent(&cur.Name, in.Name)
	setIfPresent(&cur.URL, in.URL)
	setIfPresent(&cur.Image, in.Image)
	setIfPresent(&cur.ImageRetina, in.ImageRetina)
	setIfPresent(&cur.BrandID, in.BrandID)
	if in.Specifications != nil {
		cur.Specifications = cloneSpecs(in.Specifications)
	}
	if in.SpecsLastUpdated != nil {
		t := *in.SpecsLastUpdated
		cur.SpecsLastUpdated = &t
	}
	if !in.LastUpdated.IsZero() {
		cur.LastUpdated = in.LastUpdated
	}
	s.products[in.ID] = cur
	return nil
}

func (s *MemoryStore) RecordFailure(_ context.Context, f model.SyncFailure) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, f)
	return nil
}

// Failures returns a copy of the recorded failures.
func (s *MemoryStore) Failures() []model.SyncFailure {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.SyncFailure(nil), s.failures...)
}

func setIfPresent(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func cloneProduct(p model.Product) model.Product {
	p.Specifications = cloneSpecs(p.Specifications)
	if p.SpecsLastUpdated != nil {
		t := *p.SpecsLastUpdated
		p.SpecsLastUpdated = &t
	}
	return p
}

func cloneSpecs(in model.Specifications) model.Specifications {
	if in == nil {
		return nil
	}
	out := make(model.Specifications, len(in))
	for cat, attrs := range in {
		c := make(model.SpecCategory, len(attrs))
		for k, v := range attrs {
			c[k] = v
		}
		out[cat] = c
	}
	return out
}
