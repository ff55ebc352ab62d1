package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"toolshed-backend/internal/repository"
	"toolshed-backend/internal/service"
	"toolshed-backend/internal/utils"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services holds all service dependencies needed by the handlers
type Services struct {
	Availability  service.AvailabilityService
	Engine        service.AllocationEngine
	Reservations  service.ReservationService
	Rules         service.AutoApprovalEvaluator
	Calendar      service.CalendarService
	Notifications service.NotificationService
}

// Handler serves the booking API.
type Handler struct {
	svc   Services
	users repository.UserRepository
	now   func() time.Time
}

func NewHandler(svc Services, users repository.UserRepository) *Handler {
	return &Handler{
		svc:   svc,
		users: users,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the wall clock; tests pin "today" with it.
func (h *Handler) SetClock(now func() time.Time) {
	h.now = now
}

// NewRouter wires every route. Each route template must have an entry in
// config.EndpointSecurityConfig; unknown routes default to admin-only.
func NewRouter(h *Handler, auth *AuthMiddleware) *mux.Router {
	r := mux.NewRouter()
	r.Use(PanicRecovery, MetricsMiddleware, auth.Authenticate)

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/tools/{id}/availability", h.CheckAvailability).Methods(http.MethodGet)
	r.HandleFunc("/tools/{id}/availability/summary", h.AvailabilitySummary).Methods(http.MethodGet)
	r.HandleFunc("/tools/{id}/availability/days", h.AvailableForDates).Methods(http.MethodGet)
	r.HandleFunc("/tools/{id}/overlap", h.UserOverlap).Methods(http.MethodGet)
	r.HandleFunc("/tools/{id}/commitments", h.ListCommitments).Methods(http.MethodGet)
	r.HandleFunc("/tools/{id}/status-log", h.ToolStatusLog).Methods(http.MethodGet)

	r.HandleFunc("/reservations", h.CreateReservation).Methods(http.MethodPost)
	r.HandleFunc("/reservations/{id}/approve", h.ApproveReservation).Methods(http.MethodPost)
	r.HandleFunc("/reservations/{id}/decline", h.DeclineReservation).Methods(http.MethodPost)
	r.HandleFunc("/reservations/{id}/cancel", h.CancelReservation).Methods(http.MethodPost)

	r.HandleFunc("/allocations/{id}/transition", h.TransitionAllocation).Methods(http.MethodPost)

	r.HandleFunc("/auto-approval/evaluate", h.EvaluateAutoApproval).Methods(http.MethodPost)

	r.HandleFunc("/calendar/validate", h.ValidateCalendarRange).Methods(http.MethodGet)
	r.HandleFunc("/calendar/holidays", h.Holidays).Methods(http.MethodGet)
	r.HandleFunc("/calendar/closed", h.ClosedDates).Methods(http.MethodGet)

	r.HandleFunc("/notifications", h.ListNotifications).Methods(http.MethodGet)
	r.HandleFunc("/notifications/{id}/read", h.MarkNotificationRead).Methods(http.MethodPost)

	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func pathID(r *http.Request) (int32, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", errBadRequest, raw)
	}
	return int32(id), nil
}

func queryDate(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", errBadRequest, name)
	}
	d, err := utils.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", errBadRequest, name, err)
	}
	return d, nil
}

func queryRange(r *http.Request, startName, endName string) (time.Time, time.Time, error) {
	start, err := queryDate(r, startName)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := queryDate(r, endName)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// queryInt32 returns def when name is absent.
func queryInt32(r *http.Request, name string, def int32) (int32, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadRequest, name, raw)
	}
	return int32(v), nil
}
