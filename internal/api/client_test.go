package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDayAppointments(t *testing.T) {
	var gotPath, gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": "a1", "title": "Checkup", "startTime": "2025-06-15T08:00:00.000Z", "endTime": "2025-06-15T08:30:00.000Z"},
		})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, nil, WithCredentials(StaticToken("tok-123")))
	appts, err := c.DayAppointments(context.Background(), "2025-06-15")
	if err != nil {
		t.Fatalf("DayAppointments error: %v", err)
	}
	if gotPath != "/appointments/calendar/2025-06-15" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("unexpected auth header: %s", gotAuth)
	}
	if len(appts) != 1 || appts[0].ID != "a1" {
		t.Fatalf("unexpected appointments: %+v", appts)
	}
}

func TestCreateAppointmentPayload(t *testing.T) {
	var body map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/appointments" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "a9", "title": body["title"], "startTime": body["startTime"], "endTime": body["endTime"]})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, nil)
	fee := 80.0
	created, err := c.CreateAppointment(context.Background(), AppointmentRequest{
		Title:     "Consultation",
		StartTime: "2025-06-15T08:00:00.000Z",
		EndTime:   "2025-06-15T08:30:00.000Z",
		PatientID: "p1",
		Fee:       &fee,
	})
	if err != nil {
		t.Fatalf("CreateAppointment error: %v", err)
	}
	if created.ID != "a9" {
		t.Fatalf("unexpected created appointment: %+v", created)
	}
	if body["startTime"] != "2025-06-15T08:00:00.000Z" || body["endTime"] != "2025-06-15T08:30:00.000Z" {
		t.Fatalf("wire times not passed through: %+v", body)
	}
	if _, present := body["status"]; present {
		t.Fatalf("zero-value fields must be omitted from PATCH/POST body: %+v", body)
	}
}

func TestListPatientsQuery(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/clients" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("limit") != "25" || q.Get("search") != "smith" {
			t.Fatalf("unexpected query: %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{{"id": "p1", "firstName": "Ann", "lastName": "Smith", "email": "ann@example.com"}},
			"meta":  map[string]any{"total": 51, "page": 2, "limit": 25},
		})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, nil)
	page, err := c.ListPatients(context.Background(), PatientQuery{Page: 2, Limit: 25, Search: "smith"})
	if err != nil {
		t.Fatalf("ListPatients error: %v", err)
	}
	if page.Meta.Total != 51 || len(page.Items) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Items[0].DisplayLabel() != "Ann Smith" {
		t.Fatalf("unexpected display label: %s", page.Items[0].DisplayLabel())
	}
}

func TestUnauthorizedEvictsSession(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}))
	defer ts.Close()

	evicted := false
	c := NewClient(ts.URL, nil, WithUnauthorizedHook(func() { evicted = true }))
	_, err := c.DayAppointments(context.Background(), "2025-06-15")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if !evicted {
		t.Fatal("expected unauthorized hook to fire")
	}
}

func TestStatusErrorBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "appointment overlaps", http.StatusConflict)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, nil)
	_, err := c.UpdateAppointment(context.Background(), "a1", AppointmentRequest{Title: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	se, ok := err.(*StatusError)
	if !ok {
		t.Fatalf("expected StatusError, got %T", err)
	}
	if se.StatusCode != http.StatusConflict || se.Body != "appointment overlaps" {
		t.Fatalf("unexpected status error: %+v", se)
	}
}

func TestNetworkFailureWrapped(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", nil)
	err := c.DeleteAppointment(context.Background(), "a1")
	if err == nil {
		t.Fatal("expected network error")
	}
	if IsUnauthorized(err) {
		t.Fatal("network failure must not look like an auth failure")
	}
}

func TestLogin(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var req LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "doc@example.com" {
			t.Fatalf("unexpected email: %s", req.Email)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-9"})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, nil)
	resp, err := c.Login(context.Background(), "doc@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if resp.AccessToken != "tok-9" {
		t.Fatalf("unexpected token: %s", resp.AccessToken)
	}
}

func TestGetDoctorSettings(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/doctor/settings" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"profile":             map[string]any{"firstName": "Grace", "lastName": "Hopper", "email": "g@example.com"},
			"workingHours":        []map[string]any{{"dayOfWeek": 1, "isAvailable": true, "startTime": "08:00", "endTime": "16:00"}},
			"appointmentSettings": map[string]any{"defaultDuration": 30, "timeSlotInterval": 15},
		})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, nil)
	settings, err := c.GetDoctorSettings(context.Background())
	if err != nil {
		t.Fatalf("GetDoctorSettings error: %v", err)
	}
	if settings.Profile.FirstName != "Grace" {
		t.Fatalf("unexpected profile: %+v", settings.Profile)
	}
	if len(settings.WorkingHours) != 1 || settings.WorkingHours[0].DayOfWeek != 1 {
		t.Fatalf("unexpected working hours: %+v", settings.WorkingHours)
	}
	if settings.AppointmentSettings.DefaultDuration != 30 {
		t.Fatalf("unexpected appointment settings: %+v", settings.AppointmentSettings)
	}
}
