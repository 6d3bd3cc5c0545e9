package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"catalogsync/internal/cache"
	"catalogsync/internal/catalog"
	"catalogsync/internal/logger"
	"catalogsync/internal/model"
)

// Catalog é o caminho de leitura usado pelos handlers.
type Catalog interface {
	GetBrands(ctx context.Context) ([]model.Brand, error)
	GetBrand(ctx context.Context, idOrSlug string) (model.Brand, error)
	GetProductsByBrand(ctx context.Context, idOrSlug string) (catalog.BrandProducts, error)
	GetProductSpecs(ctx context.Context, productID string) (model.Product, error)
	TriggerFullBrandSync(ctx context.Context) (int, error)
}

type Handler struct {
	catalog    Catalog
	cache      cache.Cache
	log        *zap.Logger
	production bool
}

func NewHandler(c Catalog, cc cache.Cache, log *zap.Logger, production bool) *Handler {
	return &Handler{catalog: c, cache: cc, log: logger.OrNop(log), production: production}
}

func (h *Handler) fail(c *gin.Context, err error) {
	if catalog.IsNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	h.log.Error("erro na requisição",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	body := gin.H{"error": "Something went wrong"}
	if !h.production {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}

func (h *Handler) ListBrands(c *gin.Context) {
	brands, err := h.catalog.GetBrands(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"brands": brands, "total": len(brands)})
}

func (h *Handler) GetBrand(c *gin.Context) {
	brand, err := h.catalog.GetBrand(c.Request.Context(), c.Param("brandId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, brand)
}

func (h *Handler) ListBrandProducts(c *gin.Context) {
	res, err := h.catalog.GetProductsByBrand(c.Request.Context(), c.Param("brandId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetProductSpecs(c *gin.Context) {
	p, err := h.catalog.GetProductSpecs(c.Request.Context(), c.Param("productId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) SyncBrands(c *gin.Context) {
	n, err := h.catalog.TriggerFullBrandSync(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"brands": n})
}

func (h *Handler) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.cache.Stats(c.Request.Context()))
}

func (h *Handler) FlushCache(c *gin.Context) {
	h.cache.Flush(c.Request.Context())
	c.Status(http.StatusNoContent)
}
