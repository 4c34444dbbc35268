package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"despensa/internal/service"
)

type SyncHandler struct {
	Service *service.PriceSyncService
	Logger  *zap.Logger
}

func (h *SyncHandler) Register(r *gin.Engine) {
	group := r.Group("/api/sync")
	group.POST("/precos", h.syncPrices)
}

// @Summary Run one price synchronization pass
// @Tags sync
// @Success 200 {object} service.Report
// @Failure 500 {object} service.Report
// @Router /api/sync/precos [post]
func (h *SyncHandler) syncPrices(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	report := h.Service.Run(c.Request.Context())
	if !report.Success {
		if h.Logger != nil {
			h.Logger.Warn("price sync failed", zap.Strings("errors", report.Errors))
		}
		c.JSON(http.StatusInternalServerError, report)
		return
	}
	c.JSON(http.StatusOK, report)
}
