package entry

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/branch-digest/internal/branch"
	"github.com/noah-isme/branch-digest/internal/common"
	"github.com/noah-isme/branch-digest/internal/report"
)

// Handler exposes the branch entry endpoints.
type Handler struct {
	Service *Service
}

// BranchInfo describes a registered branch for clients.
type BranchInfo struct {
	ID             string `json:"id"`
	Slug           string `json:"slug"`
	SalesHeading   string `json:"sales_heading"`
	MetricsHeading string `json:"metrics_heading"`
}

// Branches handles GET /api/v1/branches.
func (h *Handler) Branches(w http.ResponseWriter, _ *http.Request) {
	all := branch.All()
	out := make([]BranchInfo, 0, len(all))
	for _, b := range all {
		out = append(out, BranchInfo{
			ID:             b.String(),
			Slug:           b.Slug(),
			SalesHeading:   b.SalesHeading(),
			MetricsHeading: b.MetricsHeading(),
		})
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

// Preview handles POST /api/v1/branches/{branch}/preview.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "entry service not configured", nil)
		return
	}
	b, form, ok := h.decode(w, r)
	if !ok {
		return
	}
	result, err := h.Service.Preview(b, form)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}

// Submit handles POST /api/v1/branches/{branch}/reports.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "entry service not configured", nil)
		return
	}
	b, form, ok := h.decode(w, r)
	if !ok {
		return
	}
	result, err := h.Service.Submit(r.Context(), b, form)
	if err != nil {
		h.writeError(w, err)
		return
	}
	status := http.StatusCreated
	if !result.Saved {
		status = http.StatusOK
	}
	common.JSON(w, status, map[string]any{"data": result})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (branch.Branch, report.Form, bool) {
	b, err := branch.Parse(chi.URLParam(r, "branch"))
	if err != nil {
		h.writeError(w, err)
		return "", report.Form{}, false
	}
	var form report.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request payload", nil)
		return "", report.Form{}, false
	}
	return b, form, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, branch.ErrUnknownBranch) {
		common.JSONError(w, http.StatusNotFound, "UNKNOWN_BRANCH", "branch not found", nil)
		return
	}
	common.WriteError(w, err)
}
