package rest

import (
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/secondmind/internal/server/models"
)

type reminderEvent struct {
	Title       string     `json:"title"`
	EndDate     *time.Time `json:"endDate"`
	Address     string     `json:"address"`
	Description string     `json:"descriptionEvent"`
}

type reminderRequest struct {
	Email string        `json:"email"`
	Event reminderEvent `json:"event"`
}

type summarizeRequest struct {
	Text string `json:"text"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func (s *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "SecondMind backend is running")
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.svc.DB != nil {
		if err := s.svc.DB.PingContext(r.Context()); err != nil {
			s.logger.Error(r.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *HTTPServer) handleSendReminder(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ev := models.EventReminder{
		Title:       req.Event.Title,
		EndDate:     req.Event.EndDate,
		Address:     req.Event.Address,
		Description: req.Event.Description,
	}
	if err := s.svc.Reminders.Send(r.Context(), req.Email, ev); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeMessage(w, "Reminder sent.")
}

func (s *HTTPServer) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	summary, err := s.svc.Summarizer.Summarize(r.Context(), req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summarizeResponse{Summary: summary})
}
