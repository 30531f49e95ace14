package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/syncbridge/backend/internal/application/productsync"
	"github.com/syncbridge/backend/internal/interfaces/http/dto"
)

// ProductHandler exposes the operator catalog API
type ProductHandler struct {
	BaseHandler
	productService *productsync.Service
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *productsync.Service) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ApplyInternal handles PATCH /api/v1/products/:id/fields. An internal
// edit wins field ownership and fans out to every linked channel.
func (h *ProductHandler) ApplyInternal(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid product id")
		return
	}

	var req productsync.InternalProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ErrorWithCode(c, dto.ErrCodeInvalidJSON, err.Error())
		return
	}
	req.ProductID = id

	result, err := h.productService.ApplyInternal(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// PushAll handles POST /api/v1/products/:id/push. It re-queues the
// product for every active channel with product sync enabled.
func (h *ProductHandler) PushAll(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid product id")
		return
	}

	if err := h.productService.PushAll(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ResolveConflict handles POST /api/v1/conflicts/:id/resolve
func (h *ProductHandler) ResolveConflict(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid conflict id")
		return
	}

	var req productsync.ResolveConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ErrorWithCode(c, dto.ErrCodeInvalidJSON, err.Error())
		return
	}
	req.ConflictID = id

	if err := h.productService.ResolveConflict(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers all catalog routes
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.PATCH("/:id/fields", h.ApplyInternal)
		products.POST("/:id/push", h.PushAll)
	}
	rg.POST("/conflicts/:id/resolve", h.ResolveConflict)
}
