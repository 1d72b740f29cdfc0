package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/event-storefront/internal/dto"
	"github.com/prohmpiriya/event-storefront/internal/service"
	"github.com/prohmpiriya/event-storefront/pkg/middleware"
	"github.com/prohmpiriya/event-storefront/pkg/response"
)

// ScheduleHandler handles the organizer schedule editor requests
type ScheduleHandler struct {
	scheduleService service.ScheduleService
}

// NewScheduleHandler creates a new ScheduleHandler
func NewScheduleHandler(scheduleService service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
	}
}

// RegisterRoutes mounts the schedule routes. The group must already require
// an authenticated organizer or admin.
func (h *ScheduleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	schedule := rg.Group("/events/:id/schedule")
	schedule.GET("", h.Get)
	schedule.POST("/save", h.Save)

	sections := schedule.Group("/sections/:area")
	sections.PUT("", h.ReplaceSection)
	sections.PATCH("/blocks/:index", h.UpdateBlock)
	sections.POST("/blocks/:index/split", h.SplitBlock)
	sections.DELETE("/blocks/:blockId", h.DeleteBlock)
	sections.POST("/reorder", h.Reorder)
	sections.POST("/drag", h.Drag)
}

// editorKey reads the editor identity from JWT context
func editorKey(c *gin.Context) (service.EditorKey, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok || userID == "" {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("User ID not found in token"))
		return service.EditorKey{}, false
	}
	role, _ := middleware.GetRole(c)
	return service.EditorKey{UserID: userID, Role: role, EventID: c.Param("id")}, true
}

// blockIndex parses the :index path parameter
func blockIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid block index"))
		return 0, false
	}
	return index, true
}

func (h *ScheduleHandler) respond(c *gin.Context, resp *dto.ScheduleResponse, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(resp))
}

// Get handles GET /admin/events/:id/schedule
func (h *ScheduleHandler) Get(c *gin.Context) {
	key, ok := editorKey(c)
	if !ok {
		return
	}
	resp, err := h.scheduleService.Get(c.Request.Context(), key)
	h.respond(c, resp, err)
}

// ReplaceSection handles PUT /admin/events/:id/schedule/sections/:area
func (h *ScheduleHandler) ReplaceSection(c *gin.Context) {
	key, ok := editorKey(c)
	if !ok {
		return
	}

	var req dto.ReplaceSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err, "Invalid request body")
		return
	}

	resp, err := h.scheduleService.ReplaceSection(c.Request.Context(), key, c.Param("area"), &req)
	h.respond(c, resp, err)
}

// UpdateBlock handles PATCH /admin/events/:id/schedule/sections/:area/blocks/:index
func (h *ScheduleHandler) UpdateBlock(c *gin.Context) {
	key, ok := editorKey(c)
	if !ok {
		return
	}
	index, ok := blockIndex(c)
	if !ok {
		return
	}

	var req dto.UpdateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err, "Invalid request body")
		return
	}
	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	resp, err := h.scheduleService.UpdateBlock(c.Request.Context(), key, c.Param("area"), index, &req)
	h.respond(c, resp, err)
}

// SplitBlock handles POST /admin/events/:id/schedule/sections/:area/blocks/:index/split
func (h *ScheduleHandler) SplitBlock(c *gin.Context) {
	key, ok := editorKey(c)
	if !ok {
		return
	}
	index, ok := blockIndex(c)
	if !ok {
		return
	}

	resp, err := h.scheduleService.SplitBlock(c.Request.Context(), key, c.Param("area"), index)
	h.respond(c, resp, err)
}

// DeleteBlock handles DELETE /admin/events/:id/schedule/sections/:area/blocks/:blockId
func (h *ScheduleHandler) DeleteBlock(c *gin.Context) {
	key, ok := editorKey(c)
	if !ok {
		return
	}

	resp, err := h.scheduleService.DeleteBlock(c.Request.Context(), key, c.Param("area"), c.Param("blockId"))
	h.respond(c, resp, err)
}

// Reorder handles POST /admin/events/:id/schedule/sections/:area/reorder
func (h *ScheduleHandler) Reorder(c *gin.Context) {
	key, ok := editorKey(c)
	if !ok {
		return
	}

	var req dto.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err, "Invalid request body")
		return
	}

	resp, err := h.scheduleService.Reorder(c.Request.Context(), key, c.Param("area"), &req)
	h.respond(c, resp, err)
}

// Drag handles POST /admin/events/:id/schedule/sections/:area/drag
func (h *ScheduleHandler) Drag(c *gin.Context) {
	key, ok := editorKey(c)
	if !ok {
		return
	}

	var req dto.DragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err, "Invalid request body")
		return
	}

	resp, err := h.scheduleService.Drag(c.Request.Context(), key, c.Param("area"), &req)
	h.respond(c, resp, err)
}

// Save handles POST /admin/events/:id/schedule/save
func (h *ScheduleHandler) Save(c *gin.Context) {
	key, ok := editorKey(c)
	if !ok {
		return
	}
	token, _ := middleware.GetAccessToken(c)

	resp, err := h.scheduleService.Save(c.Request.Context(), key, token)
	h.respond(c, resp, err)
}
