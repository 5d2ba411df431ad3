package handler

import (
	"net/http"
	"strconv"

	entity "goldshop/internal/domain"
	"goldshop/internal/service"
	utils "goldshop/pkg"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productService *service.ProductService
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// CreateProduct takes a multipart form: the descriptive fields plus an
// optional "image" file that becomes the product photo and thumbnail.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input entity.CreateProductInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form-data", "detail": err.Error()})
		return
	}

	var imagePath, thumbPath string
	if file, err := c.FormFile("image"); err == nil {
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		imagePath, thumbPath, err = h.productService.SaveUpload(src, file.Filename)
		src.Close()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	p, err := h.productService.Create(input, imagePath, thumbPath)
	if err != nil {
		switch err {
		case service.ErrNameRequired:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, p)
}

// CreateBatch registers several items for one (category, base_number)
// pair. Item photos are uploaded beforehand via UploadImage; the batch
// body carries the stored paths.
func (h *ProductHandler) CreateBatch(c *gin.Context) {
	var input entity.BatchCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "detail": err.Error()})
		return
	}

	products, err := h.productService.CreateBatch(input)
	if err != nil {
		switch err {
		case service.ErrEmptyBatch:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case service.ErrBaseImageRequired:
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "saved": len(products)})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"products": products, "count": len(products)})
}

// UploadImage stores a photo and returns the image/thumb paths for later
// reference from a batch body.
func (h *ProductHandler) UploadImage(c *gin.Context) {
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

	imagePath, thumbPath, err := h.productService.SaveUpload(src, file.Filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"image": imagePath, "thumb": thumbPath})
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	p, err := h.productService.Get(id)
	if err != nil {
		if err == service.ErrProductNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetProductByCode looks a product up by its human-readable code.
func (h *ProductHandler) GetProductByCode(c *gin.Context) {
	p, err := h.productService.GetByCode(utils.NormalizeDigits(c.Param("code")))
	if err != nil {
		if err == service.ErrProductNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListProducts lists or searches products. "q" runs the ranked search,
// Persian and Arabic digits in it are normalized first; "category" plus
// "base_number" narrow to one group.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	includeSold := c.Query("include_sold") == "true"

	if category := c.Query("category"); category != "" {
		baseNumber := c.Query("base_number")
		if baseNumber == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "base_number is required with category"})
			return
		}
		products, err := h.productService.ByCategoryAndBase(category, baseNumber)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
		return
	}

	if q := utils.NormalizeDigits(c.Query("q")); q != "" {
		products, err := h.productService.Search(q, includeSold)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	products, err := h.productService.List(includeSold, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var input entity.UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "detail": err.Error()})
		return
	}

	p, err := h.productService.Update(id, input)
	if err != nil {
		if err == service.ErrProductNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := h.productService.Delete(id); err != nil {
		if err == service.ErrProductNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}
