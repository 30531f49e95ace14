package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/syncbridge/backend/internal/application/stocksync"
	"github.com/syncbridge/backend/internal/interfaces/http/dto"
)

// ReconcileRequest triggers a stock reconciliation run. With no SKUs
// the whole known catalog is checked; force pushes even unchanged
// quantities.
type ReconcileRequest struct {
	Skus  []string `json:"skus"`
	Force bool     `json:"force"`
}

// StockHandler exposes the operator stock API
type StockHandler struct {
	BaseHandler
	stockService *stocksync.Service
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *stocksync.Service) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// Reconcile handles POST /api/v1/stock/reconcile
func (h *StockHandler) Reconcile(c *gin.Context) {
	var req ReconcileRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.ErrorWithCode(c, dto.ErrCodeInvalidJSON, err.Error())
			return
		}
	}

	var result *stocksync.ReconcileResult
	var err error
	if len(req.Skus) > 0 {
		result, err = h.stockService.ReconcileSkus(c.Request.Context(), req.Skus, req.Force)
	} else {
		result, err = h.stockService.ReconcileAll(c.Request.Context(), req.Force)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// PollInbound handles POST /api/v1/stock/poll-inbound. It pulls
// completed inbound deliveries from the warehouse and reconciles the
// affected SKUs.
func (h *StockHandler) PollInbound(c *gin.Context) {
	result, err := h.stockService.PollInbound(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RegisterRoutes registers all stock routes
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	{
		stock.POST("/reconcile", h.Reconcile)
		stock.POST("/poll-inbound", h.PollInbound)
	}
}
