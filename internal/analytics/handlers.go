package analytics

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/branch-digest/internal/common"
)

// Handler exposes history read, clear and export endpoints.
type Handler struct {
	Svc      *Service
	Location *time.Location
	Logger   zerolog.Logger
}

// ParseQuery reads the branch and sort query parameters of a history request.
func ParseQuery(r *http.Request) (Filter, SortOrder, *common.AppError) {
	query := r.URL.Query()
	filter, err := ParseFilter(query.Get("branch"))
	if err != nil {
		return "", "", common.NewAppError("BAD_REQUEST", "invalid branch filter", http.StatusBadRequest, err)
	}
	order, err := ParseSortOrder(query.Get("sort"))
	if err != nil {
		return "", "", common.NewAppError("BAD_REQUEST", "invalid sort order", http.StatusBadRequest, err)
	}
	return filter, order, nil
}

// List handles GET /api/v1/history.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "ANALYTICS_NOT_CONFIGURED", "analytics service not configured", nil)
		return
	}
	filter, order, appErr := ParseQuery(r)
	if appErr != nil {
		common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, nil)
		return
	}
	projection, err := h.Svc.History(r.Context(), filter, order)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "ANALYTICS_ERROR", err.Error(), nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": projection})
}

// Clear handles DELETE /api/v1/history.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "ANALYTICS_NOT_CONFIGURED", "analytics service not configured", nil)
		return
	}
	if err := h.Svc.Clear(r.Context()); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "HISTORY_CLEAR_FAILED", "could not clear history", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
