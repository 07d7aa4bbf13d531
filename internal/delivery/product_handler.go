package delivery

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"

	"sweetshop_api/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductHandler struct {
	catalog   usecase.CatalogUseCase
	inventory usecase.InventoryUseCase
	log       *logrus.Logger
}

func NewProductHandler(catalog usecase.CatalogUseCase, inventory usecase.InventoryUseCase, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		catalog:   catalog,
		inventory: inventory,
		log:       logger,
	}
}

// RegisterRoutes wires the catalog endpoints. Browsing is open; purchasing
// requires any authenticated caller; everything that mutates the catalog
// itself requires an admin.
func (h *ProductHandler) RegisterRoutes(router gin.IRouter, authenticate, requireAdmin gin.HandlerFunc) {
	sweets := router.Group("/sweets")
	{
		sweets.GET("", h.ListProducts)
		sweets.GET("/search", h.SearchProducts)

		authed := sweets.Group("", authenticate)
		{
			authed.POST("/:id/purchase", h.PurchaseProduct)

			admin := authed.Group("", requireAdmin)
			{
				admin.POST("", h.CreateProduct)
				admin.PUT("/:id", h.UpdateProduct)
				admin.DELETE("/:id", h.DeleteProduct)
				admin.POST("/:id/restock", h.RestockProduct)
			}
		}
	}
}

type createProductRequest struct {
	Name        string      `json:"name"`
	Price       json.Number `json:"price"`
	Description string      `json:"description"`
	ImageURL    string      `json:"imageUrl"`
	Category    string      `json:"category"`
	Quantity    json.Number `json:"quantity"`
}

type updateProductRequest struct {
	Name        *string      `json:"name"`
	Price       *json.Number `json:"price"`
	Description *string      `json:"description"`
	ImageURL    *string      `json:"imageUrl"`
	Category    *string      `json:"category"`
	Quantity    *json.Number `json:"quantity"`
}

type restockRequest struct {
	Quantity json.Number `json:"quantity"`
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		h.log.Errorf("Handler: Failed to list products: %v", err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve products: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", products)
}

func (h *ProductHandler) SearchProducts(c *gin.Context) {
	input := usecase.SearchInput{
		Name:     c.Query("name"),
		Category: c.Query("category"),
		MinPrice: c.Query("minPrice"),
		MaxPrice: c.Query("maxPrice"),
	}

	products, err := h.catalog.SearchProducts(c.Request.Context(), input)
	if err != nil {
		h.log.Warnf("Handler: Product search failed: %v", err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to search products: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", products)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	input, file, ok := h.bindCreateInput(c)
	if !ok {
		return
	}
	if file != nil {
		defer file.Close()
	}

	created, err := h.catalog.CreateProduct(c.Request.Context(), input)
	if err != nil {
		h.log.Errorf("Handler: Failed to create product '%s': %v", input.Name, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to create product: "+err.Error())
		return
	}

	h.log.Infof("Handler: Product created successfully: ID %s, Name %s", created.ID.Hex(), created.Name)
	SuccessResponse(c, http.StatusCreated, "Product created successfully", created)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	input, file, ok := h.bindUpdateInput(c)
	if !ok {
		return
	}
	if file != nil {
		defer file.Close()
	}

	updated, err := h.catalog.UpdateProduct(c.Request.Context(), id, input)
	if err != nil {
		h.log.Errorf("Handler: Failed to update product ID %s: %v", id.Hex(), err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to update product: "+err.Error())
		return
	}

	h.log.Infof("Handler: Product updated successfully: ID %s", updated.ID.Hex())
	SuccessResponse(c, http.StatusOK, "Product updated successfully", updated)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		h.log.Warnf("Handler: Failed to delete product ID %s: %v", id.Hex(), err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to delete product: "+err.Error())
		return
	}

	h.log.Infof("Handler: Product deleted successfully: ID %s", id.Hex())
	SuccessResponse(c, http.StatusOK, "Product deleted successfully", nil)
}

func (h *ProductHandler) PurchaseProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	product, err := h.inventory.PurchaseProduct(c.Request.Context(), id)
	if err != nil {
		h.log.Warnf("Handler: Purchase failed for product ID %s: %v", id.Hex(), err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to purchase product: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Product purchased successfully", product)
}

func (h *ProductHandler) RestockProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	var req restockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Handler: Failed to bind JSON for restock of product ID %s: %v", id.Hex(), err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	product, err := h.inventory.RestockProduct(c.Request.Context(), id, req.Quantity.String())
	if err != nil {
		h.log.Warnf("Handler: Restock failed for product ID %s: %v", id.Hex(), err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to restock product: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Product restocked successfully", product)
}

func (h *ProductHandler) productID(c *gin.Context) (primitive.ObjectID, bool) {
	idStr := c.Param("id")
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		h.log.Warnf("Handler: Invalid product ID parameter: %s", idStr)
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return primitive.NilObjectID, false
	}
	return id, true
}

// bindCreateInput accepts either a JSON body or a multipart form carrying an
// image file under the "image" field.
func (h *ProductHandler) bindCreateInput(c *gin.Context) (usecase.CreateProductInput, multipart.File, bool) {
	if isMultipart(c) {
		input := usecase.CreateProductInput{
			Name:        c.PostForm("name"),
			Price:       c.PostForm("price"),
			Description: c.PostForm("description"),
			ImageURL:    c.PostForm("imageUrl"),
			Category:    c.PostForm("category"),
			Quantity:    c.PostForm("quantity"),
		}
		file, ok := h.openImageFile(c)
		if !ok {
			return usecase.CreateProductInput{}, nil, false
		}
		if file != nil {
			input.Image = file
		}
		return input, file, true
	}

	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Handler: Failed to bind JSON for create product: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return usecase.CreateProductInput{}, nil, false
	}

	return usecase.CreateProductInput{
		Name:        req.Name,
		Price:       req.Price.String(),
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		Quantity:    req.Quantity.String(),
	}, nil, true
}

func (h *ProductHandler) bindUpdateInput(c *gin.Context) (usecase.UpdateProductInput, multipart.File, bool) {
	if isMultipart(c) {
		input := usecase.UpdateProductInput{}
		if v, present := c.GetPostForm("name"); present {
			input.Name = &v
		}
		if v, present := c.GetPostForm("price"); present {
			input.Price = &v
		}
		if v, present := c.GetPostForm("description"); present {
			input.Description = &v
		}
		if v, present := c.GetPostForm("imageUrl"); present {
			input.ImageURL = &v
		}
		if v, present := c.GetPostForm("category"); present {
			input.Category = &v
		}
		if v, present := c.GetPostForm("quantity"); present {
			input.Quantity = &v
		}
		file, ok := h.openImageFile(c)
		if !ok {
			return usecase.UpdateProductInput{}, nil, false
		}
		if file != nil {
			input.Image = file
		}
		return input, file, true
	}

	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Handler: Failed to bind JSON for update product: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return usecase.UpdateProductInput{}, nil, false
	}

	input := usecase.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
	}
	if req.Price != nil {
		v := req.Price.String()
		input.Price = &v
	}
	if req.Quantity != nil {
		v := req.Quantity.String()
		input.Quantity = &v
	}
	return input, nil, true
}

// openImageFile returns the uploaded "image" file when one was attached.
// A missing file is not an error; direct imageUrl values are still accepted.
func (h *ProductHandler) openImageFile(c *gin.Context) (multipart.File, bool) {
	header, err := c.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, true
		}
		h.log.Warnf("Handler: Failed to read image form file: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid image file: "+err.Error())
		return nil, false
	}

	file, err := header.Open()
	if err != nil {
		h.log.Errorf("Handler: Failed to open uploaded image file: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid image file: "+err.Error())
		return nil, false
	}
	return file, true
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}
