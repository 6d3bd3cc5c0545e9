package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"catalogsync/internal/cache"
	"catalogsync/internal/catalog"
	"catalogsync/internal/model"
	"catalogsync/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeCatalog struct {
	brands  []model.Brand
	product model.Product
	err     error
	synced  int
}

func (f *fakeCatalog) GetBrands(context.Context) ([]model.Brand, error) { return f.brands, f.err }

func (f *fakeCatalog) GetBrand(_ context.Context, id string) (model.Brand, error) {
	for _, b := range f.brands {
		if b.ID == id || b.CleanID == id {
			return b, nil
		}
	}
	return model.Brand{}, repository.BrandNotFound(id)
}

func (f *fakeCatalog) GetProductsByBrand(ctx context.Context, id string) (catalog.BrandProducts, error) {
	b, err := f.GetBrand(ctx, id)
	if err != nil {
		return catalog.BrandProducts{}, err
	}
	return catalog.BrandProducts{BrandID: b.ID, BrandName: b.Name, Products: []model.Product{f.product}, TotalProducts: 1}, nil
}

func (f *fakeCatalog) GetProductSpecs(_ context.Context, id string) (model.Product, error) {
	if f.err != nil {
		return model.Product{}, f.err
	}
	if id != f.product.ID {
		return model.Product{}, repository.ProductNotFound(id)
	}
	return f.product, nil
}

func (f *fakeCatalog) TriggerFullBrandSync(context.Context) (int, error) {
	f.synced++
	return len(f.brands), f.err
}

func newTestRouter(fc *fakeCatalog, production bool) (*gin.Engine, *cache.Tiered) {
	c := cache.NewMemory(cache.DefaultPolicy(), nil)
	return NewRouter(NewHandler(fc, c, nil, production)), c
}

func do(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func sample() *fakeCatalog {
	return &fakeCatalog{
		brands: []model.Brand{{ID: "apple-phones-48", CleanID: "apple", Name: "Apple"}},
		product: model.Product{
			ID: "apple_iphone_15-12559", Name: "iPhone 15", BrandID: "apple-phones-48",
			Specifications: model.Specifications{"General": {"Name": "Apple iPhone 15"}},
		},
	}
}

func TestGetBrandBySlug(t *testing.T) {
	r, _ := newTestRouter(sample(), false)

	w := do(r, http.MethodGet, "/brands/apple")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var b model.Brand
	if err := json.Unmarshal(w.Body.Bytes(), &b); err != nil {
		t.Fatal(err)
	}
	if b.ID != "apple-phones-48" {
		t.Errorf("brand = %+v", b)
	}
	if w.Header().Get("X-Frame-Options") != "DENY" || w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}

func TestNotFoundMapsTo404(t *testing.T) {
	r, _ := newTestRouter(sample(), false)

	for _, path := range []string{"/brands/nokia", "/brands/nokia/products", "/products/ghost-1/specs"} {
		if w := do(r, http.MethodGet, path); w.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, w.Code)
		}
	}
}

func TestInternalErrorHidesDetailsInProduction(t *testing.T) {
	fc := sample()
	fc.err = errors.New("fetch http://site.test: status 429")

	r, _ := newTestRouter(fc, true)
	w := do(r, http.MethodGet, "/brands")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if _, ok := body["details"]; ok {
		t.Errorf("details leaked: %v", body)
	}

	r, _ = newTestRouter(fc, false)
	w = do(r, http.MethodGet, "/brands")
	body = nil
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["details"] == "" {
		t.Errorf("details expected outside production: %v", body)
	}
}

func TestProductsAndSpecs(t *testing.T) {
	r, _ := newTestRouter(sample(), false)

	w := do(r, http.MethodGet, "/brands/apple/products")
	var bp catalog.BrandProducts
	if err := json.Unmarshal(w.Body.Bytes(), &bp); err != nil || bp.TotalProducts != 1 || bp.BrandName != "Apple" {
		t.Errorf("products response = %s", w.Body.String())
	}

	w = do(r, http.MethodGet, "/products/apple_iphone_15-12559/specs")
	var p model.Product
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil || p.Specifications.Name() != "Apple iPhone 15" {
		t.Errorf("specs response = %s", w.Body.String())
	}
}

func TestSyncRoutes(t *testing.T) {
	fc := sample()
	r, _ := newTestRouter(fc, false)

	if w := do(r, http.MethodPost, "/sync/brands"); w.Code != http.StatusOK {
		t.Errorf("POST /sync/brands = %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/update-brands"); w.Code != http.StatusOK {
		t.Errorf("GET /update-brands = %d", w.Code)
	}
	if fc.synced != 2 {
		t.Errorf("synced = %d", fc.synced)
	}
}

func TestCacheRoutes(t *testing.T) {
	r, c := newTestRouter(sample(), false)
	ctx := context.Background()
	c.Set(ctx, "brands", []byte("[]"), 0)

	w := do(r, http.MethodGet, "/cache/stats")
	var stats map[cache.Tier]cache.TierStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats[cache.TierLong].Keys != 1 {
		t.Errorf("stats = %+v", stats)
	}

	if w := do(r, http.MethodDelete, "/cache"); w.Code != http.StatusNoContent {
		t.Errorf("DELETE /cache = %d", w.Code)
	}
	if _, ok := c.Get(ctx, "brands"); ok {
		t.Error("cache not flushed")
	}
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(sample(), false)
	if w := do(r, http.MethodGet, "/healthz"); w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}
