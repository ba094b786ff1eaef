// Package catalog はログイン必須のストアページのハンドラーを提供します。
package catalog

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/storefront/internal/auth"
	"github.com/yourusername/storefront/internal/config"
	"github.com/yourusername/storefront/internal/store"
)

// Handler はカタログ表示のハンドラーをまとめた構造体です。
type Handler struct {
	cfg     *config.Config
	catalog store.CatalogStore
	logger  *log.Logger
}

// NewHandler はカタログハンドラーを作成します。
func NewHandler(cfg *config.Config, catalog store.CatalogStore, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		cfg:     cfg,
		catalog: catalog,
		logger:  logger,
	}
}

// Home は GET / のハンドラーです。
func (h *Handler) Home(c *gin.Context) {
	auth.Render(c, "home", gin.H{
		"storeName": h.cfg.StoreName,
	})
}

// About は GET /about のハンドラーです。
func (h *Handler) About(c *gin.Context) {
	auth.Render(c, "about", gin.H{
		"storeName": h.cfg.StoreName,
		"email":     h.cfg.ContactEmail,
		"phone":     h.cfg.ContactPhone,
	})
}

// Products は GET /products のハンドラーです。カテゴリーの一覧を返します。
// 取得に失敗した場合はエラーページにせず、空の一覧として表示を続けます。
func (h *Handler) Products(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		h.logger.Printf("catalog: failed to list categories: %v", err)
		categories = nil
	}
	if categories == nil {
		categories = []string{}
	}
	auth.Render(c, "products", gin.H{
		"categories": categories,
	})
}

// Category は GET /products/:category のハンドラーです。
// 指定されたカテゴリーの商品一覧を返します。失敗時は空の一覧に縮退します。
func (h *Handler) Category(c *gin.Context) {
	category := c.Param("category")

	products, err := h.catalog.ByCategory(c.Request.Context(), category)
	if err != nil {
		h.logger.Printf("catalog: failed to list products in %q: %v", category, err)
		products = nil
	}
	if products == nil {
		products = []store.Product{}
	}
	auth.Render(c, "category", gin.H{
		"category": category,
		"products": products,
	})
}
