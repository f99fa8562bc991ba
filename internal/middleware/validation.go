package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	"github.com/eduhealth/schoolhealth/internal/pkg/validation"
)

// RegisterValidators installs the custom binding tags on gin's validator
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return validation.Register(v)
}

// BindJSON binds and validates the body, answering 400 on failure
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		RespondWithError(c, http.StatusBadRequest, dto.HandleValidationError(err))
		return false
	}
	return true
}

// ParseIDParam parses a positive integer path parameter, answering 400 on failure
func ParseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		RespondWithError(c, http.StatusBadRequest,
			dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid "+name).WithField(name))
		return 0, false
	}
	return id, true
}
