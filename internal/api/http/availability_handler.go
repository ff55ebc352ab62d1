package http

import (
	"net/http"

	"toolshed-backend/internal/utils"
)

// CheckAvailability answers GET /tools/{id}/availability?start=&end=&exclude=
func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	toolID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	start, end, err := queryRange(r, "start", "end")
	if err != nil {
		writeError(w, err)
		return
	}
	exclude, err := queryInt32(r, "exclude", 0)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.svc.Availability.CheckAvailability(r.Context(), toolID, start, end, exclude)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) AvailabilitySummary(w http.ResponseWriter, r *http.Request) {
	toolID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	summary, err := h.svc.Availability.CalculateAvailability(r.Context(), toolID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type dayAvailabilityResponse struct {
	Date      string `json:"date"`
	Committed int    `json:"committed"`
	Available int    `json:"available"`
}

func (h *Handler) AvailableForDates(w http.ResponseWriter, r *http.Request) {
	toolID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	from, to, err := queryRange(r, "from", "to")
	if err != nil {
		writeError(w, err)
		return
	}

	days, err := h.svc.Availability.AvailableForDates(r.Context(), toolID, from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]dayAvailabilityResponse, 0, len(days))
	for _, d := range days {
		out = append(out, dayAvailabilityResponse{Date: utils.FormatDate(d.Date), Committed: d.Committed, Available: d.Available})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tool_id": toolID, "days": out})
}

// UserOverlap reports whether the caller already holds the tool in the window.
func (h *Handler) UserOverlap(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	toolID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	start, end, err := queryRange(r, "start", "end")
	if err != nil {
		writeError(w, err)
		return
	}
	exclude, err := queryInt32(r, "exclude", 0)
	if err != nil {
		writeError(w, err)
		return
	}

	overlapping, err := h.svc.Availability.HasUserOverlappingReservation(r.Context(), toolID, user.ID, start, end, exclude)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"overlapping": overlapping})
}

func (h *Handler) ListCommitments(w http.ResponseWriter, r *http.Request) {
	toolID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	from, to, err := queryRange(r, "from", "to")
	if err != nil {
		writeError(w, err)
		return
	}

	commitments, err := h.svc.Availability.ListCommitments(r.Context(), toolID, from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"allocations":  commitments.Allocations,
		"reservations": commitments.Reservations,
		"total":        commitments.Total(),
	})
}

func (h *Handler) ToolStatusLog(w http.ResponseWriter, r *http.Request) {
	toolID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	limit, err := queryInt32(r, "limit", 0)
	if err != nil {
		writeError(w, err)
		return
	}

	logs, err := h.svc.Availability.StatusHistory(r.Context(), toolID, int(limit))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tool_id": toolID, "entries": logs})
}
