package http

import (
	"net/http"

	"toolshed-backend/internal/utils"
)

func (h *Handler) ValidateCalendarRange(w http.ResponseWriter, r *http.Request) {
	start, end, err := queryRange(r, "start", "end")
	if err != nil {
		writeError(w, err)
		return
	}
	problems, err := h.svc.Calendar.ValidateRangeForBooking(r.Context(), start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	if problems == nil {
		problems = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": len(problems) == 0, "problems": problems})
}

func (h *Handler) Holidays(w http.ResponseWriter, r *http.Request) {
	from, to, err := queryRange(r, "from", "to")
	if err != nil {
		writeError(w, err)
		return
	}
	names, err := h.svc.Calendar.GetHolidaysInRange(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"holidays": names})
}

func (h *Handler) ClosedDates(w http.ResponseWriter, r *http.Request) {
	from, to, err := queryRange(r, "from", "to")
	if err != nil {
		writeError(w, err)
		return
	}
	closed, err := h.svc.Calendar.GetClosedDatesInRange(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	dates := make([]string, 0, len(closed))
	for _, d := range closed {
		dates = append(dates, utils.FormatDate(d))
	}
	writeJSON(w, http.StatusOK, map[string][]string{"closed": dates})
}
