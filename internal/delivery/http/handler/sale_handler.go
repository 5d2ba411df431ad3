package handler

import (
	"net/http"
	"strconv"

	entity "goldshop/internal/domain"
	"goldshop/internal/service"

	"github.com/gin-gonic/gin"
)

type SaleHandler struct {
	saleService *service.SaleService
}

func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Sell records a sale. An empty invoice falls back to today's Jalali date.
func (h *SaleHandler) Sell(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var input entity.SellInput
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	sold, err := h.saleService.Sell(id, input.Invoice)
	if err != nil {
		switch err {
		case service.ErrProductNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case service.ErrAlreadySold:
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, sold)
}

func (h *SaleHandler) SuggestedInvoice(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"invoice": h.saleService.SuggestedInvoice()})
}

// RestoreProduct puts one sold product back into stock.
func (h *SaleHandler) RestoreProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	p, err := h.saleService.RestoreProduct(id)
	if err != nil {
		switch err {
		case service.ErrProductNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case service.ErrNotSold:
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, p)
}

// RestoreInvoice restores every product sold under one invoice.
func (h *SaleHandler) RestoreInvoice(c *gin.Context) {
	invoice := c.Param("invoice")
	n, err := h.saleService.RestoreInvoice(invoice)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": invoice, "restored": n})
}

// ListSold returns recent invoices with their products; "q" filters by
// invoice substring.
func (h *SaleHandler) ListSold(c *gin.Context) {
	var (
		groups []entity.InvoiceGroup
		err    error
	)
	if q := c.Query("q"); q != "" {
		groups, err = h.saleService.SearchSold(q)
	} else {
		groups, err = h.saleService.SoldGrouped()
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": groups, "count": len(groups)})
}
