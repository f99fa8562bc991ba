package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	"github.com/eduhealth/schoolhealth/internal/app/services"
	"github.com/eduhealth/schoolhealth/internal/middleware"
	"github.com/eduhealth/schoolhealth/internal/pkg/helpers"
)

// ClassController handles class operations
type ClassController struct {
	classService *services.ClassService
}

// NewClassController creates a new ClassController
func NewClassController(classService *services.ClassService) *ClassController {
	return &ClassController{classService: classService}
}

// CreateClass handles class creation
// @Summary Create a class
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ClassRequest true "Class data"
// @Success 201 {object} dto.APIResponse{data=models.Class}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Class name already exists"
// @Router /classes [post]
func (c *ClassController) CreateClass(ctx *gin.Context) {
	var req dto.ClassRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	class, err := c.classService.CreateClass(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, class)
}

// GetAllClasses lists every class
// @Summary List classes
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Class}
// @Router /classes [get]
func (c *ClassController) GetAllClasses(ctx *gin.Context) {
	classes, err := c.classService.GetAllClasses(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, classes)
}

// GetClassByID retrieves a class
// @Summary Get a class
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Success 200 {object} dto.APIResponse{data=models.Class}
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id} [get]
func (c *ClassController) GetClassByID(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	class, err := c.classService.GetClassByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, class)
}

// UpdateClass modifies a class
// @Summary Update a class
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Param request body dto.ClassRequest true "Class data"
// @Success 200 {object} dto.APIResponse{data=models.Class}
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Failure 409 {object} dto.ErrorResponse "Class name already exists"
// @Router /classes/{id} [put]
func (c *ClassController) UpdateClass(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ClassRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	class, err := c.classService.UpdateClass(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, class)
}

// DeleteClass removes a class; its students keep existing without a class
// @Summary Delete a class
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id} [delete]
func (c *ClassController) DeleteClass(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.classService.DeleteClass(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil)
}

// GetClassStudents lists the students of a class
// @Summary List students in a class
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Student}
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id}/students [get]
func (c *ClassController) GetClassStudents(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	students, err := c.classService.GetClassStudents(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, students)
}

// StudentController handles student operations
type StudentController struct {
	studentService *services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService *services.StudentService) *StudentController {
	return &StudentController{studentService: studentService}
}

// CreateStudent handles student creation
// @Summary Create a student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StudentRequest true "Student data"
// @Success 201 {object} dto.APIResponse{data=models.Student}
// @Failure 400 {object} dto.ErrorResponse "Invalid data or unknown class/parent"
// @Failure 409 {object} dto.ErrorResponse "Student code already exists"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.StudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	student, err := c.studentService.CreateStudent(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, student)
}

// GetStudents lists students page by page
// @Summary List students
// @Description Lists students with optional search on name/code and class filter
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name or student code"
// @Param classId query int false "Class filter"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid classId"
// @Router /students [get]
func (c *StudentController) GetStudents(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	params := services.StudentListParams{
		Search:   ctx.Query("search"),
		Page:     page,
		PageSize: size,
	}
	if raw := ctx.Query("classId"); raw != "" {
		classID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || classID <= 0 {
			middleware.RespondWithError(ctx, http.StatusBadRequest,
				dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid classId").WithField("classId"))
			return
		}
		params.ClassID = &classID
	}

	result, err := c.studentService.GetStudents(ctx.Request.Context(), params)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result)
}

// GetStudentByID retrieves a student; parents only see their own children
// @Summary Get a student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (c *StudentController) GetStudentByID(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	student, err := c.studentService.GetStudentByID(ctx.Request.Context(), actorFrom(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, student)
}

// GetStudentsByParent lists a parent's children
// @Summary List students of a parent
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param parentId path int true "Parent ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Student}
// @Failure 403 {object} dto.ErrorResponse "Another parent's data"
// @Router /students/parent/{parentId} [get]
func (c *StudentController) GetStudentsByParent(ctx *gin.Context) {
	parentID, ok := parentParam(ctx)
	if !ok {
		return
	}

	students, err := c.studentService.GetStudentsByParent(ctx.Request.Context(), parentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, students)
}

// GetStudentsByClass lists the students of a class
// @Summary List students of a class
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param classId path int true "Class ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Student}
// @Router /students/class/{classId} [get]
func (c *StudentController) GetStudentsByClass(ctx *gin.Context) {
	classID, ok := middleware.ParseIDParam(ctx, "classId")
	if !ok {
		return
	}

	students, err := c.studentService.GetStudentsByClass(ctx.Request.Context(), classID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, students)
}

// UpdateStudent modifies a student
// @Summary Update a student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.StudentRequest true "Student data"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Student code already exists"
// @Router /students/{id} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.StudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	student, err := c.studentService.UpdateStudent(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, student)
}

// DeleteStudent removes a student
// @Summary Delete a student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.studentService.DeleteStudent(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil)
}
