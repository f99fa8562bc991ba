package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	"github.com/eduhealth/schoolhealth/internal/app/services"
	"github.com/eduhealth/schoolhealth/internal/middleware"
)

// FeedbackController handles parent feedback
type FeedbackController struct {
	feedbackService *services.FeedbackService
}

// NewFeedbackController creates a new FeedbackController
func NewFeedbackController(feedbackService *services.FeedbackService) *FeedbackController {
	return &FeedbackController{feedbackService: feedbackService}
}

// Create submits feedback
// @Summary Submit feedback
// @Tags feedbacks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.FeedbackRequest true "Feedback"
// @Success 201 {object} dto.APIResponse{data=models.Feedback}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Router /feedbacks [post]
func (c *FeedbackController) Create(ctx *gin.Context) {
	var req dto.FeedbackRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	fb, err := c.feedbackService.Create(ctx.Request.Context(), actorFrom(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, fb)
}

// GetAll lists all feedback
// @Summary List feedback
// @Tags feedbacks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Feedback}
// @Router /feedbacks [get]
func (c *FeedbackController) GetAll(ctx *gin.Context) {
	list, err := c.feedbackService.GetAll(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, list)
}

// GetByID retrieves one feedback
// @Summary Get feedback
// @Tags feedbacks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Feedback ID"
// @Success 200 {object} dto.APIResponse{data=models.Feedback}
// @Failure 404 {object} dto.ErrorResponse "Feedback not found"
// @Router /feedbacks/{id} [get]
func (c *FeedbackController) GetByID(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	fb, err := c.feedbackService.GetByID(ctx.Request.Context(), actorFrom(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, fb)
}

// GetByParent lists a parent's feedback
// @Summary List a parent's feedback
// @Tags feedbacks
// @Produce json
// @Security BearerAuth
// @Param parentId path int true "Parent ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Feedback}
// @Failure 403 {object} dto.ErrorResponse "Another parent's data"
// @Router /feedbacks/parent/{parentId} [get]
func (c *FeedbackController) GetByParent(ctx *gin.Context) {
	parentID, ok := parentParam(ctx)
	if !ok {
		return
	}

	list, err := c.feedbackService.GetByParent(ctx.Request.Context(), parentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, list)
}

// Update edits feedback that has not been answered yet
// @Summary Update feedback
// @Tags feedbacks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Feedback ID"
// @Param request body dto.FeedbackRequest true "Feedback"
// @Success 200 {object} dto.APIResponse{data=models.Feedback}
// @Failure 404 {object} dto.ErrorResponse "Feedback not found"
// @Failure 409 {object} dto.ErrorResponse "Feedback already answered"
// @Router /feedbacks/{id} [put]
func (c *FeedbackController) Update(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.FeedbackRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	fb, err := c.feedbackService.Update(ctx.Request.Context(), actorFrom(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, fb)
}

// Respond answers feedback and notifies the parent
// @Summary Respond to feedback
// @Tags feedbacks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Feedback ID"
// @Param request body dto.RespondFeedbackRequest true "Response"
// @Success 200 {object} dto.APIResponse{data=models.Feedback}
// @Failure 404 {object} dto.ErrorResponse "Feedback not found"
// @Router /feedbacks/{id}/respond [patch]
func (c *FeedbackController) Respond(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.RespondFeedbackRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	fb, err := c.feedbackService.Respond(ctx.Request.Context(), actorFrom(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, fb)
}

// Delete removes feedback
// @Summary Delete feedback
// @Tags feedbacks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Feedback ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Feedback not found"
// @Router /feedbacks/{id} [delete]
func (c *FeedbackController) Delete(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.feedbackService.Delete(ctx.Request.Context(), actorFrom(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil)
}
