// Package server exposes the delay-send controller over HTTP for the
// add-in's event handlers and settings panel.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kezhenxu94/after-hours/pkg/controller"
	"github.com/kezhenxu94/after-hours/pkg/mailbox"
	"github.com/kezhenxu94/after-hours/pkg/metrics"
	"github.com/kezhenxu94/after-hours/pkg/schedule"
	"github.com/kezhenxu94/after-hours/pkg/settings"
)

// TimeLayout is the wall-clock format accepted for "now" and "at" values.
// Times carry no zone and are read in the server's local time.
const TimeLayout = "2006-01-02T15:04:05"

// Server serves the add-in HTTP API.
type Server struct {
	controller *controller.DelayController
	location   *time.Location
	router     chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLocation sets the location used to read zone-less times. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Server) {
		s.location = loc
	}
}

// New creates a Server for the given controller.
func New(c *controller.DelayController, opts ...Option) *Server {
	s := &Server{
		controller: c,
		location:   time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/events/compose", s.handleCompose)
		r.Post("/delay/toggle", s.handleToggle)
		r.Post("/delay/remove", s.handleRemoveDelay)
		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings/hours", s.handleSaveHours)
		r.Get("/schedule", s.handleSchedule)
		r.Get("/holidays/{year}", s.handleHolidays)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on address until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, address string) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "address", address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %v", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		slog.Info("Shutting down HTTP server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down http server: %v", err)
		}
		return ctx.Err()
	}
}

// eventResponse is returned by every event endpoint. Actions are the host
// API calls the add-in must replay on the item, in order.
type eventResponse struct {
	Outcome  *controller.Outcome `json:"outcome,omitempty"`
	Enabled  *bool               `json:"enabled,omitempty"`
	Settings *settingsResponse   `json:"settings,omitempty"`
	Actions  []mailbox.Action    `json:"actions"`
	Error    string              `json:"error,omitempty"`
}

type settingsResponse struct {
	settings.Settings
	Summary string `json:"summary"`
}

type scheduleResponse struct {
	At                   string `json:"at"`
	OutsideBusinessHours bool   `json:"outsideBusinessHours"`
	Holiday              string `json:"holiday,omitempty"`
	NextBusinessDayStart string `json:"nextBusinessDayStart"`
	BusinessHours        string `json:"businessHours"`
	DelayWouldBeApplied  bool   `json:"delayWouldBeApplied"`
}

type holidayResponse struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Now string `json:"now"`
	}
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var now time.Time
	if req.Now != "" {
		t, err := time.ParseInLocation(TimeLayout, req.Now, s.location)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid now %q: expected %s", req.Now, TimeLayout))
			return
		}
		now = t
	}

	item := mailbox.NewRecorder()
	outcome := s.controller.CheckAfterHours(r.Context(), item, now)
	writeJSON(w, http.StatusOK, eventResponse{Outcome: &outcome, Actions: actionsOf(item)})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	item := mailbox.NewRecorder()
	enabled, err := s.controller.ToggleDelaySend(r.Context(), item, req.Enabled)
	if err != nil {
		// The error notification still has to reach the user.
		writeJSON(w, http.StatusInternalServerError, eventResponse{Actions: actionsOf(item), Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, eventResponse{Enabled: &enabled, Actions: actionsOf(item)})
}

func (s *Server) handleRemoveDelay(w http.ResponseWriter, r *http.Request) {
	item := mailbox.NewRecorder()
	if err := s.controller.RemoveDelay(r.Context(), item); err != nil {
		writeJSON(w, http.StatusInternalServerError, eventResponse{Actions: actionsOf(item), Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, eventResponse{Actions: actionsOf(item)})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	current, err := s.controller.Settings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Settings: current, Summary: controller.HoursSummary(current)})
}

func (s *Server) handleSaveHours(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Start *int `json:"start"`
		End   *int `json:"end"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}
	if req.Start == nil || req.End == nil {
		writeError(w, http.StatusBadRequest, errors.New("start and end are required"))
		return
	}

	item := mailbox.NewRecorder()
	saved, err := s.controller.SaveBusinessHours(r.Context(), item, *req.Start, *req.End)
	switch {
	case errors.Is(err, settings.ErrInvalidBusinessHours):
		writeJSON(w, http.StatusBadRequest, eventResponse{Actions: actionsOf(item), Error: err.Error()})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, eventResponse{Actions: actionsOf(item), Error: err.Error()})
	default:
		writeJSON(w, http.StatusOK, eventResponse{
			Settings: &settingsResponse{Settings: saved, Summary: controller.HoursSummary(saved)},
			Actions:  actionsOf(item),
		})
	}
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	at := s.controller.Now().In(s.location)
	if v := r.URL.Query().Get("at"); v != "" {
		t, err := time.ParseInLocation(TimeLayout, v, s.location)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid at %q: expected %s", v, TimeLayout))
			return
		}
		at = t
	}

	current, err := s.controller.Settings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	hours := current.BusinessHours()
	isWork, err := s.controller.Scheduler(hours).IsWorkTime(r.Context(), at)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	holiday, _ := schedule.HolidayName(at)
	writeJSON(w, http.StatusOK, scheduleResponse{
		At:                   at.Format(TimeLayout),
		OutsideBusinessHours: schedule.IsOutsideBusinessHours(at, hours),
		Holiday:              holiday,
		NextBusinessDayStart: schedule.CalculateNextBusinessDayStart(at, hours).Format(TimeLayout),
		BusinessHours:        controller.HoursSummary(current),
		DelayWouldBeApplied:  current.DelaySendEnabled && !isWork,
	})
}

func (s *Server) handleHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 || year > 9999 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid year %q", chi.URLParam(r, "year")))
		return
	}

	if r.URL.Query().Get("format") == "ics" {
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=us-holidays-%d.ics", year))
		if err := schedule.WriteHolidayCalendar(w, year, s.location); err != nil {
			slog.Error("Failed to write holiday calendar", "year", year, "error", err)
		}
		return
	}

	holidays := schedule.HolidaysInYear(year, s.location)
	resp := make([]holidayResponse, 0, len(holidays))
	for _, h := range holidays {
		resp = append(resp, holidayResponse{Name: h.Name, Date: h.Date.Format("2006-01-02")})
	}
	writeJSON(w, http.StatusOK, resp)
}

func actionsOf(item *mailbox.Recorder) []mailbox.Action {
	actions := item.Actions()
	if actions == nil {
		return []mailbox.Action{}
	}
	return actions
}

// decodeOptionalJSON decodes the request body into v, accepting an empty body.
func decodeOptionalJSON(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("invalid request body: %v", err)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
