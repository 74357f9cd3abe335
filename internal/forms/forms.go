// Package forms validates operator input before it is sent to the backend.
// Validation mirrors what the backend enforces so the console can reject bad
// drafts locally instead of burning a round trip on a 422.
package forms

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/oakfield-health/practice-console/internal/api"
	"github.com/oakfield-health/practice-console/internal/timewire"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Naive local datetime, "2006-01-02T15:04".
	_ = v.RegisterValidation("localdatetime", func(fl validator.FieldLevel) bool {
		_, err := timewire.ParseLocal(fl.Field().String(), time.UTC)
		return err == nil
	})
	return v
}

// AppointmentDraft is an appointment form as the operator fills it in. Times
// are naive local strings; conversion to wire format happens after validation.
type AppointmentDraft struct {
	Title     string   `validate:"required,max=200"`
	StartTime string   `validate:"required,localdatetime"`
	EndTime   string   `validate:"required,localdatetime"`
	PatientID string   `validate:"required"`
	Type      string   `validate:"omitempty,oneof=checkup consultation treatment followup"`
	Status    string   `validate:"omitempty,oneof=scheduled confirmed completed cancelled"`
	Fee       *float64 `validate:"omitempty,gte=0"`
}

// Validate checks field constraints plus the start/end ordering the tag
// language cannot express.
func (d AppointmentDraft) Validate() error {
	if err := validate.Struct(d); err != nil {
		return describeErrors("appointment", err)
	}
	start, _ := timewire.ParseLocal(d.StartTime, time.UTC)
	end, _ := timewire.ParseLocal(d.EndTime, time.UTC)
	if !end.After(start) {
		return fmt.Errorf("forms: appointment: end time must be after start time")
	}
	return nil
}

// Request converts a validated draft into the wire request, resolving naive
// local times against the viewer's zone.
func (d AppointmentDraft) Request(loc *time.Location) (api.AppointmentRequest, error) {
	startWire, err := timewire.ToWire(d.StartTime, loc)
	if err != nil {
		return api.AppointmentRequest{}, fmt.Errorf("forms: appointment start: %w", err)
	}
	endWire, err := timewire.ToWire(d.EndTime, loc)
	if err != nil {
		return api.AppointmentRequest{}, fmt.Errorf("forms: appointment end: %w", err)
	}
	return api.AppointmentRequest{
		Title:     d.Title,
		StartTime: startWire,
		EndTime:   endWire,
		PatientID: d.PatientID,
		Type:      d.Type,
		Status:    d.Status,
		Fee:       d.Fee,
	}, nil
}

// PatientForm is a patient create/update form.
type PatientForm struct {
	FirstName      string `json:"firstName" validate:"required,max=100"`
	LastName       string `json:"lastName" validate:"required,max=100"`
	Email          string `json:"email,omitempty" validate:"omitempty,email"`
	Phone          string `json:"phone,omitempty" validate:"omitempty,e164"`
	DateOfBirth    string `json:"dateOfBirth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Address        string `json:"address,omitempty" validate:"max=500"`
	MedicalHistory string `json:"medicalHistory,omitempty" validate:"max=5000"`
}

func (f PatientForm) Validate() error {
	if err := validate.Struct(f); err != nil {
		return describeErrors("patient", err)
	}
	return nil
}

// Request converts a validated form into the wire request.
func (f PatientForm) Request() api.PatientRequest {
	return api.PatientRequest{
		FirstName:      f.FirstName,
		LastName:       f.LastName,
		Email:          f.Email,
		Phone:          f.Phone,
		DateOfBirth:    f.DateOfBirth,
		Address:        f.Address,
		MedicalHistory: f.MedicalHistory,
	}
}

// describeErrors flattens validator output into one operator-readable error.
func describeErrors(form string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("forms: %s: %w", form, err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s fails %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("forms: %s: %s", form, strings.Join(parts, "; "))
}
