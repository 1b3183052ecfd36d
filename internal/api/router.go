package api

import (
	"net/http"

	"attendance-bot/internal/app"

	"github.com/gorilla/mux"
)

// NewRouter sets up the gorilla/mux router and defines all API routes.
func NewRouter(services *app.Services) *mux.Router {
	h := &Handler{
		attendance: services.Attendance,
		reports:    services.Reports,
		tasks:      services.Tasks,
	}

	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Service is operational."))
	}).Methods(http.MethodGet)

	users := r.PathPrefix("/api/v1/users/{userId}").Subrouter()

	users.HandleFunc("/today", h.Today).Methods(http.MethodGet)
	users.HandleFunc("/check-in", h.CheckIn).Methods(http.MethodPost)
	users.HandleFunc("/check-out", h.CheckOut).Methods(http.MethodPost)
	users.HandleFunc("/manual-entries", h.ManualEntry).Methods(http.MethodPost)
	users.HandleFunc("/reports/monthly/{yearMonth}", h.MonthlyReport).Methods(http.MethodGet)
	users.HandleFunc("/reports/weekly", h.WeeklyReport).Methods(http.MethodGet)
	users.HandleFunc("/tasks", h.LogTasks).Methods(http.MethodPost)

	return r
}
