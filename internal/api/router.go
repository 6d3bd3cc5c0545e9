// Package api expõe o catálogo por HTTP com gin.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Next()
	}
}

// RequestLogger troca o logger padrão do gin pelo zap.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(h.log))
	r.Use(SecurityHeaders())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	brands := r.Group("/brands")
	{
		brands.GET("", h.ListBrands)
		brands.GET("/:brandId", h.GetBrand)
		brands.GET("/:brandId/products", h.ListBrandProducts)
	}
	r.GET("/products/:productId/specs", h.GetProductSpecs)

	r.POST("/sync/brands", h.SyncBrands)
	r.GET("/update-brands", h.SyncBrands)

	r.GET("/cache/stats", h.CacheStats)
	r.DELETE("/cache", h.FlushCache)

	return r
}
