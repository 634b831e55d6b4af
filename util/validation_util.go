// api/util/validation_util.go

package util

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/chittoorhealth/api/model"
)

type ValidationUtil struct {
	validate *validator.Validate
}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{validate: validator.New()}
}

func (v *ValidationUtil) ValidateResident(resident model.Resident) error {
	if resident.Name == "" {
		return fmt.Errorf("resident name cannot be empty")
	}
	if resident.Mandal == "" {
		return fmt.Errorf("resident mandal cannot be empty")
	}
	if resident.Secretariat == "" {
		return fmt.Errorf("resident secretariat cannot be empty")
	}
	if resident.Age < 0 || resident.Age > 130 {
		return fmt.Errorf("resident age must be between 0 and 130")
	}
	if err := v.validate.Var(resident.Phone, "omitempty,numeric,len=10"); err != nil {
		return fmt.Errorf("resident phone must be a 10-digit number")
	}
	if err := v.validate.Var(resident.AadhaarLast4, "omitempty,numeric,len=4"); err != nil {
		return fmt.Errorf("aadhaar last4 must be 4 digits")
	}
	return nil
}

func (v *ValidationUtil) ValidateUser(user model.User) error {
	if user.Username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if err := v.validate.Var(user.Email, "required,email"); err != nil {
		return fmt.Errorf("invalid email address")
	}
	if !user.Role.Valid() {
		return fmt.Errorf("unknown role: %s", user.Role)
	}
	return nil
}
