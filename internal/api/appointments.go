package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Appointment is the wire shape of an appointment record. Start and end times
// are UTC ISO-8601 strings; timewire owns the conversion to instants.
type Appointment struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	StartTime       string   `json:"startTime"`
	EndTime         string   `json:"endTime"`
	Type            string   `json:"type,omitempty"`
	Status          string   `json:"status,omitempty"`
	Patient         *Patient `json:"patient,omitempty"`
	PatientID       string   `json:"patientId,omitempty"`
	PatientFullName string   `json:"patientFullName,omitempty"`
	Fee             *float64 `json:"fee,omitempty"`
	CreatedAt       string   `json:"createdAt,omitempty"`
}

// Paginated is the backend's list envelope.
type Paginated[T any] struct {
	Items []T      `json:"items"`
	Meta  PageMeta `json:"meta"`
}

// PageMeta carries pagination totals.
type PageMeta struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// AppointmentRequest is the mutable subset of an appointment accepted by
// create and update calls. Zero-valued fields are omitted so PATCH stays
// partial.
type AppointmentRequest struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	StartTime   string   `json:"startTime,omitempty"`
	EndTime     string   `json:"endTime,omitempty"`
	Type        string   `json:"type,omitempty"`
	Status      string   `json:"status,omitempty"`
	PatientID   string   `json:"patientId,omitempty"`
	Fee         *float64 `json:"fee,omitempty"`
}

// ListAppointments returns one page of appointments.
func (c *Client) ListAppointments(ctx context.Context, page, limit int) (*Paginated[Appointment], error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out Paginated[Appointment]
	if err := c.do(ctx, http.MethodGet, "appointments.list", "/appointments", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DayAppointments returns all appointments for one calendar day, identified
// by its local date key ("YYYY-MM-DD").
func (c *Client) DayAppointments(ctx context.Context, dateKey string) ([]Appointment, error) {
	var out []Appointment
	if err := c.do(ctx, http.MethodGet, "appointments.day", "/appointments/calendar/"+dateKey, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAppointment creates a new appointment.
func (c *Client) CreateAppointment(ctx context.Context, req AppointmentRequest) (*Appointment, error) {
	var out Appointment
	if err := c.do(ctx, http.MethodPost, "appointments.create", "/appointments", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAppointment patches an existing appointment.
func (c *Client) UpdateAppointment(ctx context.Context, id string, req AppointmentRequest) (*Appointment, error) {
	if id == "" {
		return nil, fmt.Errorf("api: appointments.update: missing id")
	}
	var out Appointment
	if err := c.do(ctx, http.MethodPatch, "appointments.update", "/appointments/"+id, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAppointment deletes an appointment.
func (c *Client) DeleteAppointment(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("api: appointments.delete: missing id")
	}
	return c.do(ctx, http.MethodDelete, "appointments.delete", "/appointments/"+id, nil, nil, nil)
}
