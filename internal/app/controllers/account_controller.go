package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	"github.com/eduhealth/schoolhealth/internal/app/services"
	"github.com/eduhealth/schoolhealth/internal/middleware"
)

// AccountController serves one role-scoped account collection (parents or staff).
// The swagger blocks document the parent routes; staff routes mirror them under /staff.
type AccountController struct {
	accountService services.AccountService
}

// NewAccountController creates a new AccountController
func NewAccountController(accountService services.AccountService) *AccountController {
	return &AccountController{accountService: accountService}
}

// Create handles account creation
// @Summary Create a parent account
// @Tags parents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAccountRequest true "Account data"
// @Success 201 {object} dto.APIResponse{data=models.User}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /parents [post]
func (c *AccountController) Create(ctx *gin.Context) {
	var req dto.CreateAccountRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	user, err := c.accountService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, user)
}

// GetAll lists the accounts
// @Summary List parent accounts
// @Tags parents
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.User}
// @Router /parents [get]
func (c *AccountController) GetAll(ctx *gin.Context) {
	users, err := c.accountService.GetAll(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, users)
}

// GetByID retrieves an account
// @Summary Get a parent account
// @Tags parents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Success 200 {object} dto.APIResponse{data=models.User}
// @Failure 404 {object} dto.ErrorResponse "Parent not found"
// @Router /parents/{id} [get]
func (c *AccountController) GetByID(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	user, err := c.accountService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, user)
}

// Update modifies an account
// @Summary Update a parent account
// @Tags parents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Param request body dto.UpdateAccountRequest true "Account data"
// @Success 200 {object} dto.APIResponse{data=models.User}
// @Failure 404 {object} dto.ErrorResponse "Parent not found"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /parents/{id} [put]
func (c *AccountController) Update(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateAccountRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	user, err := c.accountService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, user)
}

// Delete removes an account
// @Summary Delete a parent account
// @Tags parents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Parent not found"
// @Router /parents/{id} [delete]
func (c *AccountController) Delete(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.accountService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil)
}

// Children lists the students linked to a parent
// @Summary List a parent's children
// @Tags parents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Parent ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Student}
// @Failure 404 {object} dto.ErrorResponse "Parent not found"
// @Router /parents/{id}/students [get]
func (c *AccountController) Children(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	students, err := c.accountService.Children(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, students)
}
