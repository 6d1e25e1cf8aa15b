package ledger

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yzeid/tally/internal/ledger/split"
	"github.com/yzeid/tally/pkg/middleware"
	"github.com/yzeid/tally/pkg/response"
)

// Handler handles HTTP requests for settlement-ledger operations.
type Handler struct {
	service *Service
}

// NewHandler creates a new ledger handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for ledger endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.ListMine)
	r.Get("/{id}", h.GetByID)
	r.Delete("/{id}", h.Delete)
	r.Patch("/{id}/shares", h.UpdateShares)
	r.Put("/{id}/participants/{userId}/settlement", h.SetSettlement)

	// Group-based listing
	r.Get("/group/{groupId}", h.ListByGroup)

	return r
}

// isValidationErr reports whether the error came from split validation and
// should be surfaced to the caller as a bad request.
func isValidationErr(err error) bool {
	return errors.Is(err, split.ErrUnknownMethod) ||
		errors.Is(err, split.ErrNoParticipants) ||
		errors.Is(err, split.ErrNegativeAmount) ||
		errors.Is(err, split.ErrMissingPercentage) ||
		errors.Is(err, split.ErrMissingAmount) ||
		errors.Is(err, split.ErrPercentageOutOfRange) ||
		errors.Is(err, split.ErrAmountSumMismatch) ||
		errors.Is(err, split.ErrPercentSumMismatch) ||
		errors.Is(err, ErrPayerNotParticipant) ||
		errors.Is(err, ErrParticipantSetFixed) ||
		errors.Is(err, ErrInvalidCurrency)
}

// Create handles POST /ledgers
// @Summary      Split an expense
// @Description  Create a settlement ledger with shares allocated via EQUALLY, BY_AMOUNT, or BY_PERCENTAGE
// @Tags         ledgers
// @Accept       json
// @Produce      json
// @Param        request body CreateLedgerRequest true "Ledger creation request"
// @Success      201 {object} response.APIResponse{data=LedgerResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /ledgers [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		actorID = 1
	}

	var req CreateLedgerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	l, err := h.service.Create(r.Context(), actorID, &req)
	if err != nil {
		if isValidationErr(err) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create ledger")
		return
	}

	response.JSON(w, http.StatusCreated, l.ToResponse())
}

// GetByID handles GET /ledgers/{id}
// @Summary      Get ledger by ID
// @Tags         ledgers
// @Produce      json
// @Param        id path int true "Ledger ID"
// @Success      200 {object} response.APIResponse{data=LedgerResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /ledgers/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid ledger ID")
		return
	}

	l, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrLedgerNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get ledger")
		return
	}

	response.JSON(w, http.StatusOK, l.ToResponse())
}

// ListMine handles GET /ledgers
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		userID = 1
	}

	ledgers, err := h.service.ListInvolvingUser(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list ledgers")
		return
	}

	responses := make([]*LedgerResponse, len(ledgers))
	for i, l := range ledgers {
		responses[i] = l.ToResponse()
	}

	response.JSON(w, http.StatusOK, responses)
}

// ListByGroup handles GET /ledgers/group/{groupId}
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	ledgers, err := h.service.ListByGroupID(r.Context(), groupID)
	if err != nil {
		response.InternalError(w, "Failed to list ledgers")
		return
	}

	responses := make([]*LedgerResponse, len(ledgers))
	for i, l := range ledgers {
		responses[i] = l.ToResponse()
	}

	response.JSON(w, http.StatusOK, responses)
}

// UpdateShares handles PATCH /ledgers/{id}/shares
// @Summary      Update ledger shares
// @Description  Change the split method and/or each existing participant's share; rejected if shares do not reconcile with the original total
// @Tags         ledgers
// @Accept       json
// @Produce      json
// @Param        id path int true "Ledger ID"
// @Param        request body UpdateSharesRequest true "Share update request"
// @Success      200 {object} response.APIResponse{data=LedgerResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /ledgers/{id}/shares [patch]
func (h *Handler) UpdateShares(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid ledger ID")
		return
	}

	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		actorID = 1
	}

	var req UpdateSharesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	l, err := h.service.UpdateShares(r.Context(), actorID, id, &req)
	if err != nil {
		if errors.Is(err, ErrLedgerNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if isValidationErr(err) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update shares")
		return
	}

	response.JSON(w, http.StatusOK, l.ToResponse())
}

// SetSettlement handles PUT /ledgers/{id}/participants/{userId}/settlement
// @Summary      Set a participant's settlement state
// @Description  Mark one participant's share settled or unsettled; unsettling is a logged reversal
// @Tags         ledgers
// @Accept       json
// @Produce      json
// @Param        id path int true "Ledger ID"
// @Param        userId path int true "Participant user ID"
// @Param        request body SetSettlementRequest true "Settlement flag"
// @Success      200 {object} response.APIResponse{data=LedgerResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /ledgers/{id}/participants/{userId}/settlement [put]
func (h *Handler) SetSettlement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid ledger ID")
		return
	}

	participantID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid participant user ID")
		return
	}

	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		actorID = 1
	}

	var req SetSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	l, err := h.service.SetParticipantSettlement(r.Context(), actorID, id, participantID, req.Settled)
	if err != nil {
		if errors.Is(err, ErrLedgerNotFound) || errors.Is(err, ErrParticipantNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update settlement")
		return
	}

	response.JSON(w, http.StatusOK, l.ToResponse())
}

// Delete handles DELETE /ledgers/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid ledger ID")
		return
	}

	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		actorID = 1
	}

	if err := h.service.Delete(r.Context(), actorID, id); err != nil {
		if errors.Is(err, ErrLedgerNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete ledger")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Ledger deleted successfully"})
}
