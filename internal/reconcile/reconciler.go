// Package reconcile grava registros extraídos no repositório, chaveados pelo
// id externo estável. Reaplicar o mesmo registro não gera duplicatas e campos
// ausentes nunca apagam o que já foi gravado.
package reconcile

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
	"catalogsync/internal/repository"
)

var ErrMissingID = errors.New("record without stable id")

type Reconciler struct {
	store repository.Store
	log   *zap.Logger
	now   func() time.Time
}

func New(store repository.Store, log *zap.Logger) *Reconciler {
	return &Reconciler{
		store: store,
		log:   logger.OrNop(log),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// UpsertBrand grava b e devolve o estado resultante do repositório.
func (r *Reconciler) UpsertBrand(ctx context.Context, b model.Brand) (model.Brand, error) {
	b.ID = strings.TrimSpace(b.ID)
	if b.ID == "" {
		return model.Brand{}, ErrMissingID
	}
	b.LastUpdated = r.now()

	if err := r.store.UpsertBrand(ctx, b); err != nil {
		return model.Brand{}, fmt.Errorf("upsert brand %s: %w", b.ID, err)
	}
	observability.Upserts.WithLabelValues("brand").Inc()
	return r.store.FindBrand(ctx, b.ID)
}

// UpsertProduct exige que a marca referenciada já exista: o banco não tem FK,
// então a sanidade referencial é garantida aqui.
func (r *Reconciler) UpsertProduct(ctx context.Context, p model.Product) error {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return ErrMissingID
	}
	if p.BrandID != "" {
		if _, err := r.store.FindBrand(ctx, p.BrandID); err != nil {
			return fmt.Errorf("product %s: %w", p.ID, err)
		}
	} else if _, err := r.store.FindProduct(ctx, p.ID); err != nil {
		// produto novo sem marca violaria a invariante de brandId
		return fmt.Errorf("product %s without brand: %w", p.ID, err)
	}

	// listagens nunca trazem especificações; só ApplySpecifications grava
	p.Specifications = nil
	p.SpecsLastUpdated = nil
	p.LastUpdated = r.now()

	if err := r.store.UpsertProduct(ctx, p); err != nil {
		return fmt.Errorf("upsert product %s: %w", p.ID, err)
	}
	observability.Upserts.WithLabelValues("product").Inc()
	return nil
}

func (r *Reconciler) ApplySpecifications(ctx context.Context, productID string, specs model.Specifications) error {
	if _, err := r.store.FindProduct(ctx, productID); err != nil {
		return err
	}
	if len(specs) == 0 || !specs.Valid() {
		return fmt.Errorf("specifications of %s: missing %s name", productID, model.GeneralCategory)
	}

	now := r.now()
	err := r.store.UpsertProduct(ctx, model.Product{
		ID:               productID,
		Specifications:   specs,
		SpecsLastUpdated: &now,
		LastUpdated:      now,
	})
	if err != nil {
		return fmt.Errorf("apply specifications to %s: %w", productID, err)
	}
	observability.Upserts.WithLabelValues("specifications").Inc()
	r.log.Debug("especificações gravadas", zap.String("product", productID), zap.Int("categories", len(specs)))
	return nil
}
