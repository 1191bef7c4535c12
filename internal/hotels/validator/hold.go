package validator

import (
	"errors"

	"roombook/pkg/logger"
	"roombook/pkg/model"
	"roombook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type HoldValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewHoldValidator(log *logger.Logger) *HoldValidator {
	return &HoldValidator{
		validate: validation.New(),
		logger:   log,
	}
}

func (v *HoldValidator) Validate(params *model.HoldParams) error {
	if err := v.validate.Struct(params); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return validation.Translate(validationErrs)
		}
		return err
	}
	return validation.CheckDateRange("startDate", "endDate", params.StartDate, params.EndDate)
}
