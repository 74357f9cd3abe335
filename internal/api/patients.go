package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Patient is the wire shape of a patient record. The backend exposes patients
// under /clients.
type Patient struct {
	ID             string `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	DateOfBirth    string `json:"dateOfBirth,omitempty"`
	Address        string `json:"address,omitempty"`
	MedicalHistory string `json:"medicalHistory,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
	Label          string `json:"label,omitempty"`
}

// DisplayLabel returns the select-display label, falling back to the name
// when the backend did not denormalize one.
func (p Patient) DisplayLabel() string {
	if p.Label != "" {
		return p.Label
	}
	return p.FirstName + " " + p.LastName
}

// PatientQuery filters and paginates a patient listing.
type PatientQuery struct {
	Page   int
	Limit  int
	Search string
}

// PatientRequest is the mutable subset of a patient record.
type PatientRequest struct {
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	DateOfBirth    string `json:"dateOfBirth,omitempty"`
	Address        string `json:"address,omitempty"`
	MedicalHistory string `json:"medicalHistory,omitempty"`
}

// ListPatients returns one page of patients, optionally filtered by a search
// term.
func (c *Client) ListPatients(ctx context.Context, query PatientQuery) (*Paginated[Patient], error) {
	q := url.Values{}
	if query.Page > 0 {
		q.Set("page", strconv.Itoa(query.Page))
	}
	if query.Limit > 0 {
		q.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Search != "" {
		q.Set("search", query.Search)
	}
	var out Paginated[Patient]
	if err := c.do(ctx, http.MethodGet, "patients.list", "/clients", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePatient creates a new patient.
func (c *Client) CreatePatient(ctx context.Context, req PatientRequest) (*Patient, error) {
	var out Patient
	if err := c.do(ctx, http.MethodPost, "patients.create", "/clients", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePatient patches an existing patient.
func (c *Client) UpdatePatient(ctx context.Context, id string, req PatientRequest) (*Patient, error) {
	if id == "" {
		return nil, fmt.Errorf("api: patients.update: missing id")
	}
	var out Patient
	if err := c.do(ctx, http.MethodPatch, "patients.update", "/clients/"+id, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePatient deletes a patient.
func (c *Client) DeletePatient(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("api: patients.delete: missing id")
	}
	return c.do(ctx, http.MethodDelete, "patients.delete", "/clients/"+id, nil, nil, nil)
}
