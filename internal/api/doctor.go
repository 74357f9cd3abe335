package api

import (
	"context"
	"net/http"
)

// DoctorProfile is the practitioner profile shown on the settings screen.
type DoctorProfile struct {
	ID        string `json:"id,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Specialty string `json:"specialty,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	City      string `json:"city,omitempty"`
	ZipCode   string `json:"zipCode,omitempty"`
	Country   string `json:"country,omitempty"`
	Website   string `json:"website,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// WorkingHours configures availability for one weekday.
// DayOfWeek: 0 = Sunday through 6 = Saturday. Times are "HH:mm".
type WorkingHours struct {
	DayOfWeek      int    `json:"dayOfWeek"`
	IsAvailable    bool   `json:"isAvailable"`
	StartTime      string `json:"startTime,omitempty"`
	EndTime        string `json:"endTime,omitempty"`
	BreakStartTime string `json:"breakStartTime,omitempty"`
	BreakEndTime   string `json:"breakEndTime,omitempty"`
}

// ConsultationType prices one appointment type.
type ConsultationType struct {
	Type     string   `json:"type"`
	Duration int      `json:"duration"`
	Fee      *float64 `json:"fee,omitempty"`
}

// AppointmentSettings holds scheduling defaults.
type AppointmentSettings struct {
	DefaultDuration   int                `json:"defaultDuration"`
	DefaultFee        *float64           `json:"defaultFee,omitempty"`
	ConsultationTypes []ConsultationType `json:"consultationTypes,omitempty"`
	TimeSlotInterval  int                `json:"timeSlotInterval,omitempty"`
	AdvanceBookingDays int               `json:"advanceBookingDays,omitempty"`
	SameDayBooking    bool               `json:"sameDayBooking,omitempty"`
}

// Vacation blocks out a date range.
type Vacation struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason,omitempty"`
}

// DoctorSettings aggregates everything on the settings screen.
type DoctorSettings struct {
	Profile             DoctorProfile       `json:"profile"`
	WorkingHours        []WorkingHours      `json:"workingHours"`
	AppointmentSettings AppointmentSettings `json:"appointmentSettings"`
	Vacations           []Vacation          `json:"vacations,omitempty"`
}

// GetDoctorSettings fetches the full settings document.
func (c *Client) GetDoctorSettings(ctx context.Context) (*DoctorSettings, error) {
	var out DoctorSettings
	if err := c.do(ctx, http.MethodGet, "doctor.settings", "/doctor/settings", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateDoctorProfile patches the profile section.
func (c *Client) UpdateDoctorProfile(ctx context.Context, profile DoctorProfile) (*DoctorProfile, error) {
	var out DoctorProfile
	if err := c.do(ctx, http.MethodPatch, "doctor.profile", "/doctor/profile", nil, profile, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateWorkingHours replaces the weekly availability table.
func (c *Client) UpdateWorkingHours(ctx context.Context, hours []WorkingHours) ([]WorkingHours, error) {
	body := map[string][]WorkingHours{"workingHours": hours}
	var out struct {
		WorkingHours []WorkingHours `json:"workingHours"`
	}
	if err := c.do(ctx, http.MethodPatch, "doctor.working_hours", "/doctor/working-hours", nil, body, &out); err != nil {
		return nil, err
	}
	return out.WorkingHours, nil
}

// UpdateAppointmentSettings patches scheduling defaults.
func (c *Client) UpdateAppointmentSettings(ctx context.Context, settings AppointmentSettings) (*AppointmentSettings, error) {
	var out AppointmentSettings
	if err := c.do(ctx, http.MethodPatch, "doctor.appointment_settings", "/doctor/appointment-settings", nil, settings, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateDoctorSettings patches the full settings document at once.
func (c *Client) UpdateDoctorSettings(ctx context.Context, settings DoctorSettings) (*DoctorSettings, error) {
	var out DoctorSettings
	if err := c.do(ctx, http.MethodPatch, "doctor.settings_update", "/doctor/settings", nil, settings, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
