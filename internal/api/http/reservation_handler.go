package http

import (
	"net/http"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/utils"
)

type createReservationRequest struct {
	ToolID    int32  `json:"tool_id" validate:"required,gt=0"`
	StartDate string `json:"start_date" validate:"required,date"`
	EndDate   string `json:"end_date" validate:"required,date"`
	Notes     string `json:"notes" validate:"max=1000"`
}

type reservationResponse struct {
	Reservation *domain.Reservation `json:"reservation"`
	Allocation  *domain.Allocation  `json:"allocation,omitempty"`
}

func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	var req createReservationRequest
	if err := Validate(r.Body, &req); err != nil {
		writeError(w, err)
		return
	}
	start, _ := utils.ParseDate(req.StartDate)
	end, _ := utils.ParseDate(req.EndDate)

	res, alloc, err := h.svc.Reservations.CreateReservation(r.Context(), user, req.ToolID, start, end, req.Notes, h.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reservationResponse{Reservation: res, Allocation: alloc})
}

func (h *Handler) ApproveReservation(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	alloc, err := h.svc.Engine.ApproveReservation(r.Context(), id, user.ID, h.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alloc)
}

type declineReservationRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

func (h *Handler) DeclineReservation(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req declineReservationRequest
	if err := Validate(r.Body, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.svc.Reservations.DeclineReservation(r.Context(), id, user.ID, req.Reason, h.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := h.svc.Reservations.CancelReservation(r.Context(), id, user, h.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type transitionRequest struct {
	To        string `json:"to" validate:"required,allocation_status"`
	Reason    string `json:"reason" validate:"max=500"`
	Condition string `json:"condition" validate:"omitempty,oneof=EXCELLENT GOOD ACCEPTABLE DAMAGED/NEEDS_REPAIR"`
	Notes     string `json:"notes" validate:"max=1000"`
}

func (h *Handler) TransitionAllocation(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req transitionRequest
	if err := Validate(r.Body, &req); err != nil {
		writeError(w, err)
		return
	}

	alloc, err := h.svc.Engine.TransitionAllocation(r.Context(), id, domain.AllocationStatus(req.To), domain.TransitionMetadata{
		ActorUserID:  user.ID,
		ActorIsAdmin: user.IsAdmin(),
		Now:          h.now(),
		Reason:       req.Reason,
		Condition:    req.Condition,
		Notes:        req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alloc)
}

type evaluateRequest struct {
	UserID             int32  `json:"user_id" validate:"required,gt=0"`
	ToolID             int32  `json:"tool_id" validate:"required,gt=0"`
	BorrowDate         string `json:"borrow_date" validate:"required,date"`
	ExpectedReturnDate string `json:"expected_return_date" validate:"required,date"`
}

// EvaluateAutoApproval dry-runs the auto-approval rules for a hypothetical borrow.
func (h *Handler) EvaluateAutoApproval(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := Validate(r.Body, &req); err != nil {
		writeError(w, err)
		return
	}
	borrower, err := h.users.GetByID(r.Context(), req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	borrow, _ := utils.ParseDate(req.BorrowDate)
	ret, _ := utils.ParseDate(req.ExpectedReturnDate)

	passes, err := h.svc.Rules.PassesAnyRule(r.Context(), borrower, domain.BorrowContext{
		UserID:             req.UserID,
		ToolID:             req.ToolID,
		BorrowDate:         borrow,
		ExpectedReturnDate: ret,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"auto_approve": passes})
}
