package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	"github.com/eduhealth/schoolhealth/internal/app/services"
	"github.com/eduhealth/schoolhealth/internal/middleware"
)

// NotificationController handles parent notifications
type NotificationController struct {
	notificationService *services.NotificationService
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notificationService *services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// Create sends a notification to a parent
// @Summary Create a notification
// @Description Stores the notification and pushes it to the parent's open connections
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateNotificationRequest true "Notification"
// @Success 201 {object} dto.APIResponse{data=models.Notification}
// @Failure 404 {object} dto.ErrorResponse "Parent or student not found"
// @Router /notifications [post]
func (c *NotificationController) Create(ctx *gin.Context) {
	var req dto.CreateNotificationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	n, err := c.notificationService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, n)
}

// GetAll lists every notification
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Notification}
// @Router /notifications [get]
func (c *NotificationController) GetAll(ctx *gin.Context) {
	list, err := c.notificationService.GetAll(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, list)
}

// GetByID retrieves a notification
// @Summary Get a notification
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} dto.APIResponse{data=models.Notification}
// @Failure 404 {object} dto.ErrorResponse "Notification not found"
// @Router /notifications/{id} [get]
func (c *NotificationController) GetByID(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	n, err := c.notificationService.GetByID(ctx.Request.Context(), actorFrom(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, n)
}

// GetByParent lists a parent's notifications, newest first
// @Summary List a parent's notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param parentId path int true "Parent ID"
// @Param unread query bool false "Only unread notifications"
// @Success 200 {object} dto.APIResponse{data=[]models.Notification}
// @Failure 403 {object} dto.ErrorResponse "Another parent's data"
// @Router /notifications/parent/{parentId} [get]
func (c *NotificationController) GetByParent(ctx *gin.Context) {
	parentID, ok := parentParam(ctx)
	if !ok {
		return
	}
	unreadOnly, _ := strconv.ParseBool(ctx.DefaultQuery("unread", "false"))

	list, err := c.notificationService.GetByParent(ctx.Request.Context(), parentID, unreadOnly)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, list)
}

// GetByStudent lists the notifications about one student
// @Summary List a student's notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Notification}
// @Router /notifications/student/{studentId} [get]
func (c *NotificationController) GetByStudent(ctx *gin.Context) {
	studentID, ok := middleware.ParseIDParam(ctx, "studentId")
	if !ok {
		return
	}

	list, err := c.notificationService.GetByStudent(ctx.Request.Context(), studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, list)
}

// MarkAsRead flags a notification as read; repeating it is harmless
// @Summary Mark a notification as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} dto.APIResponse{data=models.Notification}
// @Failure 404 {object} dto.ErrorResponse "Notification not found"
// @Router /notifications/{id}/read [patch]
func (c *NotificationController) MarkAsRead(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	n, err := c.notificationService.MarkAsRead(ctx.Request.Context(), actorFrom(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, n)
}

// MarkAllAsRead flags every notification of a parent as read
// @Summary Mark all of a parent's notifications as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param parentId path int true "Parent ID"
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse}
// @Failure 403 {object} dto.ErrorResponse "Another parent's data"
// @Router /notifications/parent/{parentId}/read-all [patch]
func (c *NotificationController) MarkAllAsRead(ctx *gin.Context) {
	parentID, ok := parentParam(ctx)
	if !ok {
		return
	}

	changed, err := c.notificationService.MarkAllAsRead(ctx.Request.Context(), parentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.CountResponse{Count: changed})
}

// CountUnread returns how many notifications a parent has not read
// @Summary Count unread notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param parentId path int true "Parent ID"
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse}
// @Failure 403 {object} dto.ErrorResponse "Another parent's data"
// @Router /notifications/parent/{parentId}/unread-count [get]
func (c *NotificationController) CountUnread(ctx *gin.Context) {
	parentID, ok := parentParam(ctx)
	if !ok {
		return
	}

	count, err := c.notificationService.CountUnread(ctx.Request.Context(), parentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.CountResponse{Count: count})
}

// Delete removes a notification
// @Summary Delete a notification
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Notification not found"
// @Router /notifications/{id} [delete]
func (c *NotificationController) Delete(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.notificationService.Delete(ctx.Request.Context(), actorFrom(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil)
}
