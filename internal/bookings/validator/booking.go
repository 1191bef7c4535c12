package validator

import (
	"errors"

	"roombook/pkg/logger"
	"roombook/pkg/model"
	"roombook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// BookingInput is the full set of fields a booking is created from.
type BookingInput struct {
	RequestID string     `json:"requestId" validate:"required,max=128"`
	UserID    int64      `json:"userId" validate:"gt=0"`
	RoomID    int64      `json:"roomId" validate:"gt=0"`
	StartDate model.Date `json:"startDate" validate:"required"`
	EndDate   model.Date `json:"endDate" validate:"required"`
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return &BookingValidator{
		validate: validation.New(),
		logger:   log,
	}
}

func (v *BookingValidator) Validate(input *BookingInput) error {
	return v.check(input, input.StartDate, input.EndDate)
}

// ValidateRequest checks the HTTP body before the caller-supplied headers
// are merged in.
func (v *BookingValidator) ValidateRequest(req *model.CreateBookingRequest) error {
	return v.check(req, req.StartDate, req.EndDate)
}

func (v *BookingValidator) check(s any, start, end model.Date) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return validation.Translate(validationErrs)
		}
		v.logger.Error("unexpected validation failure", "error", err)
		return err
	}
	return validation.CheckDateRange("startDate", "endDate", start, end)
}
