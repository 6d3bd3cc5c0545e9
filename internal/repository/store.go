package repository

import (
	"context"
	"errors"
	"fmt"

	"catalogsync/internal/model"
)

// Store é a fronteira com o armazenamento persistente. Upserts fazem merge
// campo a campo: valores zero ("" / nil) nunca sobrescrevem o que já existe.
// Nada é apagado.
type Store interface {
	FindBrand(ctx context.Context, id string) (model.Brand, error)
	FindBrandByCleanID(ctx context.Context, cleanID string) (model.Brand, error)
	ListBrands(ctx context.Context) ([]model.Brand, error)
	UpsertBrand(ctx context.Context, b model.Brand) error

	FindProduct(ctx context.Context, id string) (model.Product, error)
	ListProductsByBrand(ctx context.Context, brandID string) ([]model.Product, error)
	SampleProducts(ctx context.Context, n int) ([]model.Product, error)
	UpsertProduct(ctx context.Context, p model.Product) error

	RecordFailure(ctx context.Context, f model.SyncFailure) error
}

var ErrNotFound = errors.New("not found")

// NotFoundError identifies which brand or product was missing.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func BrandNotFound(id string) error   { return &NotFoundError{Resource: "brand", ID: id} }
func ProductNotFound(id string) error { return &NotFoundError{Resource: "product", ID: id} }
