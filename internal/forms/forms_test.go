package forms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDraft() AppointmentDraft {
	return AppointmentDraft{
		Title:     "Checkup",
		StartTime: "2025-06-15T09:00",
		EndTime:   "2025-06-15T09:30",
		PatientID: "p1",
		Type:      "checkup",
		Status:    "scheduled",
	}
}

func TestAppointmentDraftValid(t *testing.T) {
	require.NoError(t, validDraft().Validate())
}

func TestAppointmentDraftFieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppointmentDraft)
	}{
		{"missing title", func(d *AppointmentDraft) { d.Title = "" }},
		{"missing patient", func(d *AppointmentDraft) { d.PatientID = "" }},
		{"bad start format", func(d *AppointmentDraft) { d.StartTime = "2025-06-15 09:00" }},
		{"bad end format", func(d *AppointmentDraft) { d.EndTime = "garbage" }},
		{"unknown type", func(d *AppointmentDraft) { d.Type = "surgery" }},
		{"unknown status", func(d *AppointmentDraft) { d.Status = "pending" }},
		{"negative fee", func(d *AppointmentDraft) { fee := -10.0; d.Fee = &fee }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			assert.Error(t, d.Validate())
		})
	}
}

func TestAppointmentDraftOrdering(t *testing.T) {
	d := validDraft()
	d.EndTime = d.StartTime
	assert.Error(t, d.Validate(), "zero-length slot must be rejected")

	d.EndTime = "2025-06-15T08:30"
	assert.Error(t, d.Validate(), "inverted slot must be rejected")
}

func TestAppointmentDraftRequest(t *testing.T) {
	d := validDraft()
	require.NoError(t, d.Validate())

	loc := time.FixedZone("UTC+1", 3600)
	req, err := d.Request(loc)
	require.NoError(t, err)

	// Local 09:00 in UTC+1 is 08:00Z on the wire.
	assert.Equal(t, "2025-06-15T08:00:00.000Z", req.StartTime)
	assert.Equal(t, "2025-06-15T08:30:00.000Z", req.EndTime)
	assert.Equal(t, "p1", req.PatientID)
}

func TestPatientForm(t *testing.T) {
	f := PatientForm{FirstName: "Ann", LastName: "Smith", Email: "ann@example.com", DateOfBirth: "1988-04-02"}
	require.NoError(t, f.Validate())

	req := f.Request()
	assert.Equal(t, "Ann", req.FirstName)
	assert.Equal(t, "1988-04-02", req.DateOfBirth)

	f.Email = "not-an-email"
	assert.Error(t, f.Validate())

	f = PatientForm{FirstName: "Ann"}
	assert.Error(t, f.Validate(), "last name is required")
}
