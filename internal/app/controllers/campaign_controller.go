package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	"github.com/eduhealth/schoolhealth/internal/app/services"
	"github.com/eduhealth/schoolhealth/internal/middleware"
)

// CampaignController serves one campaign kind. It is mounted twice, at
// /health-examinations and /vaccination-schedules; the swagger blocks
// document the examination routes.
type CampaignController struct {
	campaignService *services.CampaignService
}

// NewCampaignController creates a new CampaignController
func NewCampaignController(campaignService *services.CampaignService) *CampaignController {
	return &CampaignController{campaignService: campaignService}
}

func parseEventID(ctx *gin.Context) (uuid.UUID, bool) {
	eventID, err := uuid.Parse(ctx.Param("eventId"))
	if err != nil {
		middleware.RespondWithError(ctx, http.StatusBadRequest,
			dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid eventId").WithField("eventId"))
		return uuid.Nil, false
	}
	return eventID, true
}

// Create fans a campaign out to its target students
// @Summary Create a campaign
// @Description Resolves the target students (by grade or a single student) and creates one Pending row per student. Each student's parent is notified.
// @Tags health-examinations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCampaignRequest true "Campaign"
// @Success 201 {object} dto.APIResponse{data=dto.CampaignCreatedResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request or no target students"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /health-examinations [post]
func (c *CampaignController) Create(ctx *gin.Context) {
	var req dto.CreateCampaignRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result, err := c.campaignService.Create(ctx.Request.Context(), &req, middleware.CurrentUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, result)
}

// ListEvents lists campaigns with their status tallies
// @Summary List campaign events
// @Tags health-examinations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.EventSummary}
// @Router /health-examinations/events [get]
func (c *CampaignController) ListEvents(ctx *gin.Context) {
	events, err := c.campaignService.ListEvents(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, events)
}

// GetEventDetail returns the event with a per-class breakdown
// @Summary Get a campaign event
// @Tags health-examinations
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "Event ID (uuid)"
// @Success 200 {object} dto.APIResponse{data=dto.EventDetail}
// @Failure 400 {object} dto.ErrorResponse "Invalid eventId"
// @Failure 404 {object} dto.ErrorResponse "Campaign event not found"
// @Router /health-examinations/events/{eventId} [get]
func (c *CampaignController) GetEventDetail(ctx *gin.Context) {
	eventID, ok := parseEventID(ctx)
	if !ok {
		return
	}

	detail, err := c.campaignService.GetEventDetail(ctx.Request.Context(), eventID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, detail)
}

// GetClassDetail returns one class's rows within an event
// @Summary Get a class within a campaign event
// @Tags health-examinations
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "Event ID (uuid)"
// @Param classId path int true "Class ID"
// @Success 200 {object} dto.APIResponse{data=dto.ClassDetail}
// @Failure 404 {object} dto.ErrorResponse "Campaign event not found"
// @Router /health-examinations/events/{eventId}/classes/{classId} [get]
func (c *CampaignController) GetClassDetail(ctx *gin.Context) {
	eventID, ok := parseEventID(ctx)
	if !ok {
		return
	}
	classID, ok := middleware.ParseIDParam(ctx, "classId")
	if !ok {
		return
	}

	detail, err := c.campaignService.GetClassDetail(ctx.Request.Context(), eventID, classID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, detail)
}

// DeleteEvent removes an event and all of its rows
// @Summary Delete a campaign event
// @Tags health-examinations
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "Event ID (uuid)"
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse}
// @Failure 404 {object} dto.ErrorResponse "Campaign event not found"
// @Router /health-examinations/events/{eventId} [delete]
func (c *CampaignController) DeleteEvent(ctx *gin.Context) {
	eventID, ok := parseEventID(ctx)
	if !ok {
		return
	}

	deleted, err := c.campaignService.DeleteEvent(ctx.Request.Context(), eventID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.CountResponse{Count: deleted})
}

// List returns every row of this kind
// @Summary List campaign rows
// @Tags health-examinations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Schedule}
// @Router /health-examinations [get]
func (c *CampaignController) List(ctx *gin.Context) {
	rows, err := c.campaignService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, rows)
}

// GetByID retrieves one row
// @Summary Get a campaign row
// @Tags health-examinations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Row ID"
// @Success 200 {object} dto.APIResponse{data=models.Schedule}
// @Failure 404 {object} dto.ErrorResponse "Schedule not found"
// @Router /health-examinations/{id} [get]
func (c *CampaignController) GetByID(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	row, err := c.campaignService.GetByID(ctx.Request.Context(), actorFrom(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, row)
}

// GetByStudent lists the rows of one student
// @Summary List a student's campaign rows
// @Tags health-examinations
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Schedule}
// @Router /health-examinations/student/{studentId} [get]
func (c *CampaignController) GetByStudent(ctx *gin.Context) {
	studentID, ok := middleware.ParseIDParam(ctx, "studentId")
	if !ok {
		return
	}

	rows, err := c.campaignService.GetByStudent(ctx.Request.Context(), studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, rows)
}

// GetByParent lists the rows of a parent's children
// @Summary List a parent's campaign rows
// @Tags health-examinations
// @Produce json
// @Security BearerAuth
// @Param parentId path int true "Parent ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Schedule}
// @Failure 403 {object} dto.ErrorResponse "Another parent's data"
// @Router /health-examinations/parent/{parentId} [get]
func (c *CampaignController) GetByParent(ctx *gin.Context) {
	parentID, ok := parentParam(ctx)
	if !ok {
		return
	}

	rows, err := c.campaignService.GetByParent(ctx.Request.Context(), parentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, rows)
}

// UpdateStatus records a parent response or a staff status change
// @Summary Change a row's status
// @Description Parents answer Approved or Rejected for their own children. Staff may set any status.
// @Tags health-examinations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Row ID"
// @Param request body dto.UpdateStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.Schedule}
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 403 {object} dto.ErrorResponse "Not allowed for this role"
// @Failure 404 {object} dto.ErrorResponse "Schedule not found"
// @Failure 409 {object} dto.ErrorResponse "Transition not allowed"
// @Router /health-examinations/{id}/status [patch]
func (c *CampaignController) UpdateStatus(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	row, err := c.campaignService.UpdateStatus(ctx.Request.Context(), actorFrom(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, row)
}

// UpdateResult records the examination or vaccination outcome
// @Summary Record a row's result
// @Tags health-examinations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Row ID"
// @Param request body dto.UpdateResultRequest true "Result"
// @Success 200 {object} dto.APIResponse{data=models.Schedule}
// @Failure 404 {object} dto.ErrorResponse "Schedule not found"
// @Router /health-examinations/{id}/result [patch]
func (c *CampaignController) UpdateResult(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateResultRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	row, err := c.campaignService.UpdateResult(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, row)
}

// Delete removes a single row
// @Summary Delete a campaign row
// @Tags health-examinations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Row ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Schedule not found"
// @Router /health-examinations/{id} [delete]
func (c *CampaignController) Delete(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.campaignService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil)
}
