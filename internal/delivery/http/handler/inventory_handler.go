package handler

import (
	"net/http"

	"goldshop/internal/service"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	inventoryService *service.InventoryService
}

func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// Weight is the stock weight view: per-category totals plus the grand
// total over unsold products.
func (h *InventoryHandler) Weight(c *gin.Context) {
	summaries, err := h.inventoryService.WeightByCategory()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	total, err := h.inventoryService.TotalWeight()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": summaries, "total": total})
}

func (h *InventoryHandler) Stats(c *gin.Context) {
	stats, err := h.inventoryService.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
