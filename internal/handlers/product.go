// internal/handlers/product.go
package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/craftai/craftai-backend/internal/models"
	"github.com/craftai/craftai-backend/internal/services"
	"github.com/craftai/craftai-backend/internal/utils"
)

type ProductHandler struct {
	catalogService *services.CatalogService
	storageService *services.StorageService
}

func NewProductHandler(catalogService *services.CatalogService, storageService *services.StorageService) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		storageService: storageService,
	}
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	limit := parseLimit(c, 50)

	products, err := h.catalogService.GetPublishedProducts(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"products": products,
	})
}

// GET /products/search
func (h *ProductHandler) SearchProducts(c *gin.Context) {
	term := c.Query("q")
	category := c.Query("category")
	limit := parseLimit(c, 50)

	products, err := h.catalogService.SearchProducts(c.Request.Context(), term, category, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"products": products,
		"query":    term,
		"category": category,
	})
}

// POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req services.CreateProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), ownerID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"product": product,
	})
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	// Count the view for published listings. Owners looking at their own
	// listing do not inflate the counter.
	viewerID, _ := utils.GetUserIDFromContext(c)
	if product.Status == models.ProductStatusPublished && viewerID != product.CreatedBy.String() {
		h.catalogService.IncrementViews(c.Request.Context(), id)
	}

	utils.SuccessResponse(c, gin.H{
		"product": product,
	})
}

// PUT /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req services.UpdateProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), ownerID, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product": product,
	})
}

// DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), ownerID, id); err != nil {
		respondError(c, err)
		return
	}

	// Stored image cleanup happens after the record is gone; a failure
	// here is logged inside the storage service and never surfaced.
	h.storageService.DeleteProductImage(c.Request.Context(), product.ImagePath)

	utils.SuccessResponse(c, gin.H{
		"message": "Product deleted",
	})
}

// POST /products/:id/publish
func (h *ProductHandler) PublishProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}

	product, err := h.catalogService.PublishProduct(c.Request.Context(), ownerID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product": product,
	})
}

// POST /products/:id/archive
func (h *ProductHandler) ArchiveProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}

	product, err := h.catalogService.ArchiveProduct(c.Request.Context(), ownerID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product": product,
	})
}

// GET /my/products
func (h *ProductHandler) GetMyProducts(c *gin.Context) {
	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}

	status := models.ProductStatus(c.Query("status"))
	forceRefresh, _ := strconv.ParseBool(c.DefaultQuery("refresh", "false"))

	products, err := h.catalogService.GetUserProducts(c.Request.Context(), ownerID, status, forceRefresh)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"products": products,
	})
}

// POST /products/upload-image
func (h *ProductHandler) UploadProductImage(c *gin.Context) {
	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, "No image uploaded", err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.BadRequestResponse(c, "Unable to read uploaded file", nil)
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadProductImage(c.Request.Context(), ownerID, file, fileHeader)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"image": result,
	})
}

// DELETE /products/image
func (h *ProductHandler) DeleteProductImage(c *gin.Context) {
	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}

	key := c.Query("key")
	if key == "" {
		utils.BadRequestResponse(c, "Missing image key", nil)
		return
	}

	// Keys are namespaced per owner; nobody deletes another artisan's images.
	if !strings.HasPrefix(key, "products/"+ownerID.String()+"/") {
		utils.ForbiddenResponse(c, "")
		return
	}

	h.storageService.DeleteProductImage(c.Request.Context(), key)

	utils.SuccessResponse(c, gin.H{
		"message": "Image deleted",
	})
}

// GET /categories
func (h *ProductHandler) GetCategories(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"categories": models.Categories,
	})
}

func requireUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return uuid.Nil, false
	}
	return userID, true
}

func parseLimit(c *gin.Context, fallback int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(fallback)))
	if err != nil || limit <= 0 || limit > 100 {
		return fallback
	}
	return limit
}
