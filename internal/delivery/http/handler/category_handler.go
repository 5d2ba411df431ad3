package handler

import (
	"net/http"

	"goldshop/internal/service"

	"github.com/gin-gonic/gin"
)

// CategoryHandler serves the category/base browsing views: category
// counts, the base groups of a category and the items of one base.
type CategoryHandler struct {
	productService   *service.ProductService
	inventoryService *service.InventoryService
}

func NewCategoryHandler(productService *service.ProductService, inventoryService *service.InventoryService) *CategoryHandler {
	return &CategoryHandler{productService: productService, inventoryService: inventoryService}
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	counts, err := h.inventoryService.CategoryCounts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	total, err := h.inventoryService.TotalCount()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": counts, "total": total})
}

func (h *CategoryHandler) ListBases(c *gin.Context) {
	category := c.Param("category")
	groups, err := h.productService.BasesByCategory(category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category, "bases": groups})
}

func (h *CategoryHandler) ListBaseProducts(c *gin.Context) {
	category := c.Param("category")
	baseNumber := c.Param("base")
	products, err := h.productService.ByCategoryAndBase(category, baseNumber)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"category":    category,
		"base_number": baseNumber,
		"products":    products,
		"count":       len(products),
	})
}

// SetBaseImage uploads the group photograph for a (category, base) pair.
func (h *CategoryHandler) SetBaseImage(c *gin.Context) {
	category := c.Param("category")
	baseNumber := c.Param("base")

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	base, err := h.productService.SetBaseImage(category, baseNumber, src, file.Filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, base)
}

func (h *CategoryHandler) GetBase(c *gin.Context) {
	base, err := h.productService.GetBase(c.Param("category"), c.Param("base"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if base == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "base image not set"})
		return
	}
	c.JSON(http.StatusOK, base)
}
