package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"despensa/internal/repository"
)

// CatalogHandler exposes the read-only store views consumed by the front
// end: markets, products and recorded prices.
type CatalogHandler struct {
	Repo repository.Repository
}

func (h *CatalogHandler) Register(r *gin.Engine) {
	group := r.Group("/api/catalog")
	group.GET("/mercados", h.listMarkets)
	group.GET("/produtos", h.listProducts)
	group.GET("/precos", h.listPrices)
}

// @Summary List markets
// @Tags catalog
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Success 200 {object} apiResponse
// @Router /api/catalog/mercados [get]
func (h *CatalogHandler) listMarkets(c *gin.Context) {
	items, err := h.Repo.ListMarkets(c.Request.Context(), repository.ListParams{
		Limit:  intQuery(c, "limit", 0),
		Offset: intQuery(c, "offset", 0),
	})
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

// @Summary List products
// @Tags catalog
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Success 200 {object} apiResponse
// @Router /api/catalog/produtos [get]
func (h *CatalogHandler) listProducts(c *gin.Context) {
	items, err := h.Repo.ListProducts(c.Request.Context(), repository.ListParams{
		Limit:  intQuery(c, "limit", 0),
		Offset: intQuery(c, "offset", 0),
	})
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

// @Summary List recorded prices
// @Tags catalog
// @Param produto_id query int false "filter by product"
// @Param mercado_id query int false "filter by market"
// @Param desde query string false "RFC3339 lower bound on record date"
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Success 200 {object} apiResponse
// @Router /api/catalog/precos [get]
func (h *CatalogHandler) listPrices(c *gin.Context) {
	params := repository.ListPricesParams{
		ProductID: uintQueryPtr(c, "produto_id"),
		MarketID:  uintQueryPtr(c, "mercado_id"),
		Limit:     intQuery(c, "limit", 0),
		Offset:    intQuery(c, "offset", 0),
	}
	if since := timeQuery(c, "desde"); since != nil {
		params.Since = since
	}
	items, err := h.Repo.ListPriceRecords(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func uintQueryPtr(c *gin.Context, key string) *uint64 {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &value
}

func timeQuery(c *gin.Context, key string) *time.Time {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &value
}
