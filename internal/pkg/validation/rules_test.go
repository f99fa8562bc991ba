package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Status      string  `json:"status" validate:"schedule_status"`
	Delivery    string  `json:"delivery" validate:"delivery_status"`
	StudentCode string  `json:"studentCode" validate:"student_code"`
	Phone       *string `json:"phone" validate:"omitempty,phone"`
}

func TestRegister(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	phone := "+84 901-234-567"
	ok := sample{Status: "Approved", Delivery: "pending", StudentCode: "HS0001", Phone: &phone}
	assert.NoError(t, v.Struct(ok))

	bad := sample{Status: "approved", Delivery: "Done", StudentCode: "hs1"}
	err := v.Struct(bad)
	require.Error(t, err)

	var fields []string
	for _, fe := range err.(validator.ValidationErrors) {
		fields = append(fields, fe.Field())
	}
	assert.ElementsMatch(t, []string{"status", "delivery", "studentCode"}, fields)
}
