package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	"github.com/eduhealth/schoolhealth/internal/app/services"
	"github.com/eduhealth/schoolhealth/internal/middleware"
)

// HealthRecordController handles student health records
type HealthRecordController struct {
	recordService *services.HealthRecordService
}

// NewHealthRecordController creates a new HealthRecordController
func NewHealthRecordController(recordService *services.HealthRecordService) *HealthRecordController {
	return &HealthRecordController{recordService: recordService}
}

// Create handles health record creation
// @Summary Create a health record
// @Description A student has at most one health record
// @Tags health-records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.HealthRecordRequest true "Health record"
// @Success 201 {object} dto.APIResponse{data=models.HealthRecord}
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Student already has a health record"
// @Router /health-records [post]
func (c *HealthRecordController) Create(ctx *gin.Context) {
	var req dto.HealthRecordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	record, err := c.recordService.Create(ctx.Request.Context(), actorFrom(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, record)
}

// GetAll lists health records
// @Summary List health records
// @Tags health-records
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.HealthRecord}
// @Router /health-records [get]
func (c *HealthRecordController) GetAll(ctx *gin.Context) {
	records, err := c.recordService.GetAll(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, records)
}

// GetByID retrieves a health record
// @Summary Get a health record
// @Tags health-records
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID"
// @Success 200 {object} dto.APIResponse{data=models.HealthRecord}
// @Failure 404 {object} dto.ErrorResponse "Health record not found"
// @Router /health-records/{id} [get]
func (c *HealthRecordController) GetByID(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	record, err := c.recordService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, record)
}

// GetByStudent retrieves the record of one student
// @Summary Get a student's health record
// @Tags health-records
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.HealthRecord}
// @Failure 404 {object} dto.ErrorResponse "Health record not found"
// @Router /health-records/student/{studentId} [get]
func (c *HealthRecordController) GetByStudent(ctx *gin.Context) {
	studentID, ok := middleware.ParseIDParam(ctx, "studentId")
	if !ok {
		return
	}

	record, err := c.recordService.GetByStudent(ctx.Request.Context(), studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, record)
}

// Update modifies a health record
// @Summary Update a health record
// @Tags health-records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID"
// @Param request body dto.HealthRecordRequest true "Health record"
// @Success 200 {object} dto.APIResponse{data=models.HealthRecord}
// @Failure 400 {object} dto.ErrorResponse "Record cannot move to another student"
// @Failure 404 {object} dto.ErrorResponse "Health record not found"
// @Router /health-records/{id} [put]
func (c *HealthRecordController) Update(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.HealthRecordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	record, err := c.recordService.Update(ctx.Request.Context(), actorFrom(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, record)
}

// Delete removes a health record
// @Summary Delete a health record
// @Tags health-records
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Health record not found"
// @Router /health-records/{id} [delete]
func (c *HealthRecordController) Delete(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.recordService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil)
}

// TreatmentController handles the append-only treatment history
type TreatmentController struct {
	treatmentService *services.TreatmentService
}

// NewTreatmentController creates a new TreatmentController
func NewTreatmentController(treatmentService *services.TreatmentService) *TreatmentController {
	return &TreatmentController{treatmentService: treatmentService}
}

// Create appends a treatment entry
// @Summary Record a treatment
// @Description The treating staff member defaults to the caller
// @Tags treatment-histories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TreatmentHistoryRequest true "Treatment"
// @Success 201 {object} dto.APIResponse{data=models.TreatmentHistory}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /treatment-histories [post]
func (c *TreatmentController) Create(ctx *gin.Context) {
	var req dto.TreatmentHistoryRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	entry, err := c.treatmentService.Create(ctx.Request.Context(), actorFrom(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, entry)
}

// GetAll lists treatment entries
// @Summary List treatments
// @Tags treatment-histories
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.TreatmentHistory}
// @Router /treatment-histories [get]
func (c *TreatmentController) GetAll(ctx *gin.Context) {
	entries, err := c.treatmentService.GetAll(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, entries)
}

// GetByID retrieves a treatment entry
// @Summary Get a treatment
// @Tags treatment-histories
// @Produce json
// @Security BearerAuth
// @Param id path int true "Treatment ID"
// @Success 200 {object} dto.APIResponse{data=models.TreatmentHistory}
// @Failure 404 {object} dto.ErrorResponse "Treatment not found"
// @Router /treatment-histories/{id} [get]
func (c *TreatmentController) GetByID(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	entry, err := c.treatmentService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, entry)
}

// GetByStudent lists the treatments of a student
// @Summary List a student's treatments
// @Tags treatment-histories
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]models.TreatmentHistory}
// @Router /treatment-histories/student/{studentId} [get]
func (c *TreatmentController) GetByStudent(ctx *gin.Context) {
	studentID, ok := middleware.ParseIDParam(ctx, "studentId")
	if !ok {
		return
	}

	entries, err := c.treatmentService.GetByStudent(ctx.Request.Context(), studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, entries)
}

// Delete removes a treatment entry
// @Summary Delete a treatment
// @Tags treatment-histories
// @Produce json
// @Security BearerAuth
// @Param id path int true "Treatment ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Treatment not found"
// @Router /treatment-histories/{id} [delete]
func (c *TreatmentController) Delete(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.treatmentService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil)
}

// MedicineController handles the medicine storage inventory
type MedicineController struct {
	medicineService *services.MedicineService
}

// NewMedicineController creates a new MedicineController
func NewMedicineController(medicineService *services.MedicineService) *MedicineController {
	return &MedicineController{medicineService: medicineService}
}

// Create adds a storage item
// @Summary Add a medicine to storage
// @Tags medicine-storages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.MedicineRequest true "Medicine"
// @Success 201 {object} dto.APIResponse{data=models.Medicine}
// @Failure 409 {object} dto.ErrorResponse "Medicine already exists"
// @Router /medicine-storages [post]
func (c *MedicineController) Create(ctx *gin.Context) {
	var req dto.MedicineRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	medicine, err := c.medicineService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, medicine)
}

// GetAll lists the inventory
// @Summary List medicines in storage
// @Tags medicine-storages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Medicine}
// @Router /medicine-storages [get]
func (c *MedicineController) GetAll(ctx *gin.Context) {
	medicines, err := c.medicineService.GetAll(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, medicines)
}

// GetByID retrieves a storage item
// @Summary Get a medicine
// @Tags medicine-storages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Medicine ID"
// @Success 200 {object} dto.APIResponse{data=models.Medicine}
// @Failure 404 {object} dto.ErrorResponse "Medicine not found"
// @Router /medicine-storages/{id} [get]
func (c *MedicineController) GetByID(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	medicine, err := c.medicineService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, medicine)
}

// Update modifies a storage item
// @Summary Update a medicine
// @Tags medicine-storages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Medicine ID"
// @Param request body dto.MedicineRequest true "Medicine"
// @Success 200 {object} dto.APIResponse{data=models.Medicine}
// @Failure 404 {object} dto.ErrorResponse "Medicine not found"
// @Router /medicine-storages/{id} [put]
func (c *MedicineController) Update(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.MedicineRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	medicine, err := c.medicineService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, medicine)
}

// Delete removes a storage item
// @Summary Delete a medicine
// @Tags medicine-storages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Medicine ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Medicine not found"
// @Router /medicine-storages/{id} [delete]
func (c *MedicineController) Delete(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.medicineService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil)
}
