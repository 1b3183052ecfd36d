package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"attendance-bot/internal/logging"
	"attendance-bot/internal/service"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

var logger = logging.New()

type Handler struct {
	attendance *service.AttendanceService
	reports    *service.ReportService
	tasks      *service.TaskService
}

type TasksRequest struct {
	Tasks []service.TaskInput `json:"tasks"`
}

func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	status, err := h.attendance.GetTodayStatus(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	res, err := h.attendance.CheckIn(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	res, err := h.attendance.CheckOut(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) ManualEntry(w http.ResponseWriter, r *http.Request) {
	var req service.ManualEntryInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	res, err := h.attendance.ManualEntry(r.Context(), mux.Vars(r)["userId"], req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	report, err := h.reports.GetMonthlyReport(r.Context(), vars["userId"], vars["yearMonth"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) WeeklyReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.GetWeeklyReport(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) LogTasks(w http.ResponseWriter, r *http.Request) {
	var req TasksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	entries, err := h.tasks.LogTasks(r.Context(), mux.Vars(r)["userId"], req.Tasks)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entries)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	reason := service.Reason(err)
	if status == http.StatusInternalServerError || reason == "" {
		logger.WithError(err).Error("Request failed")
		reason = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": reason})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.WithFields(logrus.Fields{"status": status}).WithError(err).Warn("Failed to encode response")
	}
}
