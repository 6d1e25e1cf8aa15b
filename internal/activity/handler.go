package activity

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yzeid/tally/pkg/middleware"
	"github.com/yzeid/tally/pkg/response"
)

// Handler handles HTTP requests for the activity feed.
type Handler struct {
	service *Service
}

// NewHandler creates a new activity handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for activity endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)

	return r
}

// EventResponse represents an event in the activity feed.
type EventResponse struct {
	ID               string  `json:"id"`
	ActorID          int64   `json:"actor_id"`
	ActorName        string  `json:"actor_name"`
	Action           string  `json:"action"`
	Details          string  `json:"details"`
	RelatedExpenseID *int64  `json:"related_expense_id,omitempty"`
	RelatedMemberID  *int64  `json:"related_member_id,omitempty"`
	PreviousValue    *string `json:"previous_value,omitempty"`
	NewValue         *string `json:"new_value,omitempty"`
	CreatedAt        string  `json:"created_at"`
}

func toResponse(e *Event) *EventResponse {
	return &EventResponse{
		ID:               e.ID.String(),
		ActorID:          e.ActorID,
		ActorName:        e.ActorName,
		Action:           string(e.Action),
		Details:          e.Details,
		RelatedExpenseID: e.RelatedExpenseID,
		RelatedMemberID:  e.RelatedMemberID,
		PreviousValue:    e.PreviousValue,
		NewValue:         e.NewValue,
		CreatedAt:        e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// List handles GET /activity
// @Summary      List activity feed
// @Description  Get a paginated audit log of balance-affecting changes involving the current user
// @Tags         activity
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]EventResponse}
// @Router       /activity [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		userID = 1
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	events, total, err := h.service.ListByUserID(r.Context(), userID, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list activity")
		return
	}

	eventResponses := make([]*EventResponse, len(events))
	for i, e := range events {
		eventResponses[i] = toResponse(e)
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, eventResponses, meta)
}
