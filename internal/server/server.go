// Package server exposes the console over HTTP: calendar state, appointment
// mutations, the dashboard snapshot, ICS downloads, and operational probes.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/oakfield-health/practice-console/internal/api"
	"github.com/oakfield-health/practice-console/internal/calendar"
	"github.com/oakfield-health/practice-console/internal/dashboard"
	"github.com/oakfield-health/practice-console/internal/forms"
	"github.com/oakfield-health/practice-console/internal/icsexport"
	"github.com/oakfield-health/practice-console/internal/session"
	"github.com/oakfield-health/practice-console/internal/timewire"
	"github.com/oakfield-health/practice-console/internal/view"
	"github.com/oakfield-health/practice-console/pkg/logging"
)

// Config holds server dependencies.
type Config struct {
	Logger         *logging.Logger
	Client         *api.Client
	Calendar       *view.Calendar
	Dashboard      *dashboard.Builder
	Exporter       *icsexport.Exporter
	Session        *session.Store
	Location       *time.Location
	MetricsHandler http.Handler
}

// Server serializes access to the calendar controller; the controller itself
// is single-threaded by design.
type Server struct {
	cfg Config
	mu  sync.Mutex
}

// New creates a Chi router with all console routes configured.
func New(cfg Config) http.Handler {
	s := &Server{cfg: cfg}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Get("/session", s.handleSession)

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/calendar", s.handleCalendar)
		r.Get("/export/day", s.handleExportDay)

		r.Post("/appointments", s.handleCreate)
		r.Post("/appointments/{id}/move", s.handleMove)
		r.Delete("/appointments/{id}", s.handleDelete)

		r.Get("/patients", s.handlePatientList)
		r.Post("/patients", s.handlePatientCreate)
		r.Patch("/patients/{id}", s.handlePatientUpdate)
		r.Delete("/patients/{id}", s.handlePatientDelete)

		r.Get("/settings", s.handleSettings)
		r.Patch("/settings/profile", s.handleProfileUpdate)
		r.Patch("/settings/working-hours", s.handleWorkingHoursUpdate)
		r.Patch("/settings/appointments", s.handleAppointmentSettingsUpdate)
	})
	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resp, err := s.cfg.Client.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if api.IsUnauthorized(err) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.fail(w, "login", err)
		return
	}
	if err := s.cfg.Session.SetToken(resp.AccessToken); err != nil {
		s.fail(w, "persist token", err)
		return
	}
	s.handleSession(w, r)
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.cfg.Session.Clear()
	writeJSON(w, http.StatusOK, map[string]bool{"loggedIn": false})
}

type sessionResponse struct {
	LoggedIn  bool   `json:"loggedIn"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

func (s *Server) handleSession(w http.ResponseWriter, _ *http.Request) {
	resp := sessionResponse{LoggedIn: s.cfg.Session.LoggedIn()}
	if exp, ok := s.cfg.Session.ExpiresAt(); ok {
		resp.ExpiresAt = timewire.FormatWire(exp)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap := s.cfg.Dashboard.Build(r.Context())
	writeJSON(w, http.StatusOK, snapshotResponse(snap))
}

type cardDTO struct {
	Value any    `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

func card[T any](c dashboard.Card[T]) cardDTO {
	if c.Err != nil {
		return cardDTO{Error: c.Err.Error()}
	}
	return cardDTO{Value: c.Value}
}

func snapshotResponse(snap dashboard.Snapshot) map[string]any {
	return map[string]any{
		"todayCount":    card(snap.TodayCount),
		"weekCount":     card(snap.WeekCount),
		"patientTotal":  card(snap.PatientTotal),
		"backendHealth": card(snap.BackendHealth),
		"backendInfo":   card(snap.BackendInfo),
		"takenAt":       timewire.FormatWire(snap.TakenAt),
	}
}

type blockDTO struct {
	EventID  string  `json:"eventId,omitempty"`
	Title    string  `json:"title,omitempty"`
	StartMin int     `json:"startMin"`
	EndMin   int     `json:"endMin"`
	TopPx    float64 `json:"topPx"`
	HeightPx float64 `json:"heightPx"`
}

type dayDTO struct {
	Date   string     `json:"date"`
	Blocks []blockDTO `json:"blocks,omitempty"`
	Count  int        `json:"count"`
}

type calendarResponse struct {
	Mode   string `json:"mode"`
	Cursor string `json:"cursor"`
	// Degraded marks a render where some days failed to fetch; delivered
	// days are still present and the client may retry.
	Degraded bool     `json:"degraded,omitempty"`
	Days     []dayDTO `json:"days"`
}

// handleCalendar moves the shared view to the requested mode and date, then
// renders it. Omitted parameters keep their current value.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cal := s.cfg.Calendar

	if mode := r.URL.Query().Get("mode"); mode != "" && view.Mode(mode) != cal.Mode() {
		if err := cal.SetMode(r.Context(), view.Mode(mode)); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	// Days fetch independently; a failed day degrades the render instead of
	// failing the request, so six healthy columns still come back.
	var loadErr error
	if date := r.URL.Query().Get("date"); date != "" {
		day, err := timewire.ParseDateKey(date, s.cfg.Location)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		loadErr = cal.GoTo(r.Context(), day)
	} else {
		loadErr = cal.Load(r.Context())
	}

	resp := s.renderCalendar()
	if loadErr != nil {
		s.cfg.Logger.Warn("calendar render degraded", "error", loadErr)
		resp.Degraded = true
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) renderCalendar() calendarResponse {
	cal := s.cfg.Calendar
	resp := calendarResponse{
		Mode:   string(cal.Mode()),
		Cursor: timewire.DateKey(cal.Cursor(), s.cfg.Location),
	}
	switch cal.Mode() {
	case view.ModeDay:
		grid := cal.DayGrid()
		resp.Days = []dayDTO{renderDay(grid, s.cfg.Location)}
	case view.ModeWeek:
		week := cal.Week()
		for i := 0; i < 7; i++ {
			resp.Days = append(resp.Days, renderDay(week.GridAt(i), s.cfg.Location))
		}
	case view.ModeMonth:
		month := cal.Month()
		for _, day := range month.VisibleDays() {
			resp.Days = append(resp.Days, dayDTO{
				Date:  timewire.DateKey(day, s.cfg.Location),
				Count: len(month.EventsOn(day)),
			})
		}
	}
	return resp
}

func renderDay(grid *calendar.DayGrid, loc *time.Location) dayDTO {
	d := dayDTO{Date: timewire.DateKey(grid.Day(), loc)}
	for _, b := range grid.Blocks() {
		d.Blocks = append(d.Blocks, blockDTO{
			EventID:  b.EventID,
			Title:    b.Title,
			StartMin: b.StartMin,
			EndMin:   b.EndMin,
			TopPx:    b.TopPx,
			HeightPx: b.HeightPx,
		})
	}
	d.Count = len(d.Blocks)
	return d
}

type createRequest struct {
	Title     string   `json:"title"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	PatientID string   `json:"patientId"`
	Type      string   `json:"type,omitempty"`
	Status    string   `json:"status,omitempty"`
	Fee       *float64 `json:"fee,omitempty"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	draft := forms.AppointmentDraft{
		Title:     req.Title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		PatientID: req.PatientID,
		Type:      req.Type,
		Status:    req.Status,
		Fee:       req.Fee,
	}
	if err := draft.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.mu.Lock()
	created, err := s.cfg.Calendar.CommitCreate(r.Context(), draft)
	s.mu.Unlock()
	if err != nil {
		s.fail(w, "create appointment", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type moveRequest struct {
	Date     string `json:"date"`
	StartMin int    `json:"startMin"`
	EndMin   int    `json:"endMin"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	day, err := timewire.ParseDateKey(req.Date, s.cfg.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	if req.EndMin <= req.StartMin {
		writeError(w, http.StatusUnprocessableEntity, "endMin must be after startMin")
		return
	}

	s.mu.Lock()
	err = s.cfg.Calendar.CommitMove(r.Context(), day, id, req.StartMin, req.EndMin)
	s.mu.Unlock()
	if err != nil {
		if api.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "appointment not found")
			return
		}
		s.fail(w, "move appointment", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "moved"})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	date := r.URL.Query().Get("date")
	day, err := timewire.ParseDateKey(date, s.cfg.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date query parameter must be YYYY-MM-DD")
		return
	}

	s.mu.Lock()
	err = s.cfg.Calendar.Delete(r.Context(), calendar.Event{ID: id, Start: day, End: day})
	s.mu.Unlock()
	if err != nil {
		if api.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "appointment not found")
			return
		}
		s.fail(w, "delete appointment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePatientList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := api.PatientQuery{Search: q.Get("search")}
	query.Page, _ = strconv.Atoi(q.Get("page"))
	query.Limit, _ = strconv.Atoi(q.Get("limit"))

	page, err := s.cfg.Client.ListPatients(r.Context(), query)
	if err != nil {
		s.fail(w, "list patients", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// decodePatientForm reads and validates a patient payload; a nil return
// means the response has already been written.
func (s *Server) decodePatientForm(w http.ResponseWriter, r *http.Request) *forms.PatientForm {
	var form forms.PatientForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil
	}
	if err := form.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return nil
	}
	return &form
}

func (s *Server) handlePatientCreate(w http.ResponseWriter, r *http.Request) {
	form := s.decodePatientForm(w, r)
	if form == nil {
		return
	}
	created, err := s.cfg.Client.CreatePatient(r.Context(), form.Request())
	if err != nil {
		s.fail(w, "create patient", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handlePatientUpdate(w http.ResponseWriter, r *http.Request) {
	form := s.decodePatientForm(w, r)
	if form == nil {
		return
	}
	updated, err := s.cfg.Client.UpdatePatient(r.Context(), chi.URLParam(r, "id"), form.Request())
	if err != nil {
		if api.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "patient not found")
			return
		}
		s.fail(w, "update patient", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handlePatientDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.Client.DeletePatient(r.Context(), chi.URLParam(r, "id")); err != nil {
		if api.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "patient not found")
			return
		}
		s.fail(w, "delete patient", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.cfg.Client.GetDoctorSettings(r.Context())
	if err != nil {
		s.fail(w, "fetch settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	var profile api.DoctorProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := s.cfg.Client.UpdateDoctorProfile(r.Context(), profile)
	if err != nil {
		s.fail(w, "update profile", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleWorkingHoursUpdate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		WorkingHours []api.WorkingHours `json:"workingHours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := s.cfg.Client.UpdateWorkingHours(r.Context(), body.WorkingHours)
	if err != nil {
		s.fail(w, "update working hours", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]api.WorkingHours{"workingHours": updated})
}

func (s *Server) handleAppointmentSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var settings api.AppointmentSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := s.cfg.Client.UpdateAppointmentSettings(r.Context(), settings)
	if err != nil {
		s.fail(w, "update appointment settings", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleExportDay(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	day, err := timewire.ParseDateKey(date, s.cfg.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date query parameter must be YYYY-MM-DD")
		return
	}
	events, err := s.cfg.Calendar.DayEvents(r.Context(), date)
	if err != nil {
		s.fail(w, "fetch day", err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+icsexport.Filename(day, s.cfg.Location)+`"`)
	_, _ = w.Write([]byte(s.cfg.Exporter.Export(events)))
}

// fail logs and maps an upstream error onto the console's own response.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	s.cfg.Logger.Error(op+" failed", "error", err)
	if api.IsUnauthorized(err) {
		writeError(w, http.StatusUnauthorized, "session expired, log in again")
		return
	}
	writeError(w, http.StatusBadGateway, op+" failed")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
