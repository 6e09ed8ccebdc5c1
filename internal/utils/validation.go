package utils

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"coopsave/internal/models"
)

var validate *validator.Validate

var (
	accountNumberRegex = regexp.MustCompile(`^\d{10}$`)
	bankCodeRegex      = regexp.MustCompile(`^\d{3,6}$`)
)

func init() {
	validate = validator.New()

	validate.RegisterValidation("phone", validatePhone)
	validate.RegisterValidation("permission", validatePermission)
	validate.RegisterValidation("role_type", validateRoleType)
	validate.RegisterValidation("account_number", validateAccountNumber)
	validate.RegisterValidation("bank_code", validateBankCode)
	validate.RegisterValidation("tenure_months", validateTenureMonths)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validatePhone(fl validator.FieldLevel) bool {
	return IsValidPhone(fl.Field().String())
}

func validatePermission(fl validator.FieldLevel) bool {
	return models.IsValidPermission(models.Permission(fl.Field().String()))
}

func validateRoleType(fl validator.FieldLevel) bool {
	switch models.RoleType(fl.Field().String()) {
	case models.RoleTypeGeneral, models.RoleTypeBranch, models.RoleTypeAssigned:
		return true
	}
	return false
}

func validateAccountNumber(fl validator.FieldLevel) bool {
	return accountNumberRegex.MatchString(fl.Field().String())
}

func validateBankCode(fl validator.FieldLevel) bool {
	return bankCodeRegex.MatchString(fl.Field().String())
}

func validateTenureMonths(fl validator.FieldLevel) bool {
	months := fl.Field().Int()
	return months >= MinPlanTenureMonths && months <= MaxPlanTenureMonths
}

// FormatValidationErrors flattens validator errors into a field to message map
// suitable for ValidationErrorResponse.
func FormatValidationErrors(err error) map[string]string {
	details := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, verr := range verrs {
			details[verr.Field()] = "failed validation on " + verr.Tag()
		}
	}
	return details
}
