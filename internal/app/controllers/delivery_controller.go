package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	"github.com/eduhealth/schoolhealth/internal/app/services"
	"github.com/eduhealth/schoolhealth/internal/middleware"
)

// DeliveryController handles medicine sent in by parents
type DeliveryController struct {
	deliveryService *services.DeliveryService
}

// NewDeliveryController creates a new DeliveryController
func NewDeliveryController(deliveryService *services.DeliveryService) *DeliveryController {
	return &DeliveryController{deliveryService: deliveryService}
}

// Create handles a new medicine delivery
// @Summary Submit a medicine delivery
// @Description Parents submit for their own children; staff may submit on a parent's behalf
// @Tags medicine-deliveries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.MedicineDeliveryRequest true "Delivery"
// @Success 201 {object} dto.APIResponse{data=models.MedicineDelivery}
// @Failure 400 {object} dto.ErrorResponse "Invalid dates or doses"
// @Failure 403 {object} dto.ErrorResponse "Not the student's parent"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /medicine-deliveries [post]
func (c *DeliveryController) Create(ctx *gin.Context) {
	var req dto.MedicineDeliveryRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	delivery, err := c.deliveryService.Create(ctx.Request.Context(), actorFrom(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, delivery)
}

// GetAll lists every delivery
// @Summary List medicine deliveries
// @Tags medicine-deliveries
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.MedicineDelivery}
// @Router /medicine-deliveries [get]
func (c *DeliveryController) GetAll(ctx *gin.Context) {
	deliveries, err := c.deliveryService.GetAll(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, deliveries)
}

// GetByID retrieves a delivery
// @Summary Get a medicine delivery
// @Tags medicine-deliveries
// @Produce json
// @Security BearerAuth
// @Param id path int true "Delivery ID"
// @Success 200 {object} dto.APIResponse{data=models.MedicineDelivery}
// @Failure 404 {object} dto.ErrorResponse "Delivery not found"
// @Router /medicine-deliveries/{id} [get]
func (c *DeliveryController) GetByID(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	delivery, err := c.deliveryService.GetByID(ctx.Request.Context(), actorFrom(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, delivery)
}

// GetByStudent lists the deliveries for one student
// @Summary List a student's deliveries
// @Tags medicine-deliveries
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]models.MedicineDelivery}
// @Router /medicine-deliveries/student/{studentId} [get]
func (c *DeliveryController) GetByStudent(ctx *gin.Context) {
	studentID, ok := middleware.ParseIDParam(ctx, "studentId")
	if !ok {
		return
	}

	deliveries, err := c.deliveryService.GetByStudent(ctx.Request.Context(), studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, deliveries)
}

// GetByParent lists a parent's deliveries
// @Summary List a parent's deliveries
// @Tags medicine-deliveries
// @Produce json
// @Security BearerAuth
// @Param parentId path int true "Parent ID"
// @Success 200 {object} dto.APIResponse{data=[]models.MedicineDelivery}
// @Failure 403 {object} dto.ErrorResponse "Another parent's data"
// @Router /medicine-deliveries/parent/{parentId} [get]
func (c *DeliveryController) GetByParent(ctx *gin.Context) {
	parentID, ok := parentParam(ctx)
	if !ok {
		return
	}

	deliveries, err := c.deliveryService.GetByParent(ctx.Request.Context(), parentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, deliveries)
}

// Update edits a delivery that is still pending
// @Summary Update a medicine delivery
// @Tags medicine-deliveries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Delivery ID"
// @Param request body dto.MedicineDeliveryRequest true "Delivery"
// @Success 200 {object} dto.APIResponse{data=models.MedicineDelivery}
// @Failure 404 {object} dto.ErrorResponse "Delivery not found"
// @Failure 409 {object} dto.ErrorResponse "Delivery is no longer pending"
// @Router /medicine-deliveries/{id} [put]
func (c *DeliveryController) Update(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.MedicineDeliveryRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	delivery, err := c.deliveryService.Update(ctx.Request.Context(), actorFrom(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, delivery)
}

// UpdateStatus moves a delivery through its workflow
// @Summary Change a delivery's status
// @Description Staff approve, reject or complete; parents may only cancel a pending delivery
// @Tags medicine-deliveries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Delivery ID"
// @Param request body dto.DeliveryStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.MedicineDelivery}
// @Failure 403 {object} dto.ErrorResponse "Not allowed for this role"
// @Failure 404 {object} dto.ErrorResponse "Delivery not found"
// @Failure 409 {object} dto.ErrorResponse "Transition not allowed"
// @Router /medicine-deliveries/{id}/status [patch]
func (c *DeliveryController) UpdateStatus(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.DeliveryStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	delivery, err := c.deliveryService.UpdateStatus(ctx.Request.Context(), actorFrom(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, delivery)
}

// Delete removes a delivery
// @Summary Delete a medicine delivery
// @Tags medicine-deliveries
// @Produce json
// @Security BearerAuth
// @Param id path int true "Delivery ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Delivery not found"
// @Router /medicine-deliveries/{id} [delete]
func (c *DeliveryController) Delete(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.deliveryService.Delete(ctx.Request.Context(), actorFrom(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil)
}
