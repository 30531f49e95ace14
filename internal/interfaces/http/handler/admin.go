package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/syncbridge/backend/internal/application/admin"
	"github.com/syncbridge/backend/internal/domain/synclog"
	"github.com/syncbridge/backend/internal/interfaces/http/dto"
)

// AuditQuery narrows audit trail listings
type AuditQuery struct {
	EntityType string `form:"entityType"`
	EntityID   string `form:"entityId"`
	ExternalID string `form:"externalId"`
	Target     string `form:"target"`
	Direction  string `form:"direction"`
	Success    *bool  `form:"success"`
	Since      string `form:"since"`
	Page       int    `form:"page"`
	PageSize   int    `form:"pageSize"`
}

// AdminHandler exposes the operator maintenance API
type AdminHandler struct {
	BaseHandler
	adminService *admin.Service
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(adminService *admin.Service) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ListDeadJobs handles GET /api/v1/admin/jobs/dead
func (h *AdminHandler) ListDeadJobs(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "invalid query parameters")
		return
	}
	req.Normalize()

	jobs, total, err := h.adminService.ListDeadJobs(c.Request.Context(), req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	views := make([]dto.DeadJobResponse, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, dto.ToDeadJobResponse(job))
	}
	h.SuccessWithMeta(c, views, total, req.Page, req.PageSize)
}

// RetryDeadJob handles POST /api/v1/admin/jobs/:id/retry
func (h *AdminHandler) RetryDeadJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid job id")
		return
	}

	job, err := h.adminService.RetryDeadJob(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToDeadJobResponse(job))
}

// Stats handles GET /api/v1/admin/jobs/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// ListConflicts handles GET /api/v1/admin/conflicts
func (h *AdminHandler) ListConflicts(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "invalid query parameters")
		return
	}
	req.Normalize()

	conflicts, total, err := h.adminService.ListConflicts(c.Request.Context(), req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	views := make([]dto.ConflictResponse, 0, len(conflicts))
	for _, conflict := range conflicts {
		views = append(views, dto.ToConflictResponse(conflict))
	}
	h.SuccessWithMeta(c, views, total, req.Page, req.PageSize)
}

// ListMismatches handles GET /api/v1/admin/mismatches
func (h *AdminHandler) ListMismatches(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "invalid query parameters")
		return
	}
	req.Normalize()

	mismatches, total, err := h.adminService.ListMismatches(c.Request.Context(), req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	views := make([]dto.MismatchResponse, 0, len(mismatches))
	for _, mismatch := range mismatches {
		views = append(views, dto.ToMismatchResponse(mismatch))
	}
	h.SuccessWithMeta(c, views, total, req.Page, req.PageSize)
}

// AddMapping handles POST /api/v1/admin/shipping/mappings
func (h *AdminHandler) AddMapping(c *gin.Context) {
	var req admin.AddMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ErrorWithCode(c, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	result, err := h.adminService.AddMapping(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// AuditTrail handles GET /api/v1/admin/audit
func (h *AdminHandler) AuditTrail(c *gin.Context) {
	var query AuditQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "invalid query parameters")
		return
	}

	filter, err := toAuditFilter(query)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entries, total, err := h.adminService.AuditTrail(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	views := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		views = append(views, dto.ToAuditEntryResponse(entry))
	}
	h.SuccessWithMeta(c, views, total, filter.Page, filter.PageSize)
}

// RegisterRoutes registers all admin routes
func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	adminGroup := rg.Group("/admin")
	{
		adminGroup.GET("/jobs/dead", h.ListDeadJobs)
		adminGroup.GET("/jobs/stats", h.Stats)
		adminGroup.POST("/jobs/:id/retry", h.RetryDeadJob)
		adminGroup.GET("/conflicts", h.ListConflicts)
		adminGroup.GET("/mismatches", h.ListMismatches)
		adminGroup.POST("/shipping/mappings", h.AddMapping)
		adminGroup.GET("/audit", h.AuditTrail)
	}
}

func toAuditFilter(query AuditQuery) (synclog.Filter, error) {
	filter := synclog.Filter{
		ExternalID: query.ExternalID,
		Target:     query.Target,
		Success:    query.Success,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	if query.EntityType != "" {
		entityType := synclog.EntityType(query.EntityType)
		filter.EntityType = &entityType
	}
	if query.Direction != "" {
		direction := synclog.Direction(query.Direction)
		filter.Direction = &direction
	}
	if query.EntityID != "" {
		id, err := uuid.Parse(query.EntityID)
		if err != nil {
			return filter, err
		}
		filter.EntityID = &id
	}
	if query.Since != "" {
		since, err := time.Parse(time.RFC3339, query.Since)
		if err != nil {
			return filter, err
		}
		filter.Since = &since
	}
	return filter, nil
}
