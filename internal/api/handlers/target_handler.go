package handlers

import (
	"net/http"
	"strconv"
	"time"

	apperror "github.com/Paddy1981/larun-space/internal/error"
	"github.com/Paddy1981/larun-space/internal/usage"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// defaultSearchRadius is the cone-search radius in arcminutes used when
// the query does not specify one.
const defaultSearchRadius = 2.0

// ------------------------------------------------------------------------------------------------------
// TargetHandler resolves a catalog target through the response cache
func (h *Handler) TargetHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	radius := defaultSearchRadius
	if raw := r.URL.Query().Get("radius"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			h.sendErrorResponse(w, apperror.NewValidationError("radius must be a positive number", err))
			return
		}
		radius = parsed
	}

	target, err := h.catalog.Lookup(r.Context(), id, radius)
	if err != nil {
		h.logger.Error("Target lookup failed", zap.String("target", id), zap.Error(err))
		h.sendErrorResponse(w, apperror.NewUpstreamError("target lookup failed", err))
		return
	}

	if h.recorder != nil {
		if err := h.recorder.Record(r.Context(), usage.Event{
			Type:      usage.EventTargetLookup,
			TargetID:  id,
			Detail:    target.Source,
			Tier:      h.tier(r.Context()),
			CreatedAt: time.Now(),
		}); err != nil {
			h.logger.Warn("Failed to record usage event", zap.Error(err))
		}
	}

	h.writeJSON(w, http.StatusOK, target)
}
