package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Paddy1981/larun-space/internal/catalog"
	apperror "github.com/Paddy1981/larun-space/internal/error"
	"github.com/Paddy1981/larun-space/internal/session"
	"github.com/Paddy1981/larun-space/internal/store"
	"github.com/Paddy1981/larun-space/internal/usage"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Handler struct {
	session  *session.Session
	store    store.Store
	catalog  *catalog.Client
	recorder usage.Recorder
	tiers    usage.TierReader
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// ChatRequest is the wire shape of a chat message
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatResponse is the wire shape of a completed chat turn
type ChatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ------------------------------------------------------------------------------------------------------
func NewHandler(
	sess *session.Session,
	st store.Store,
	cat *catalog.Client,
	recorder usage.Recorder,
	tiers usage.TierReader,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		session:  sess,
		store:    st,
		catalog:  cat,
		recorder: recorder,
		tiers:    tiers,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ------------------------------------------------------------------------------------------------------
func (h *Handler) ChatHandler(w http.ResponseWriter, r *http.Request) {

	if r.Header.Get("Upgrade") == "websocket" || r.Header.Get("Connection") == "Upgrade" {
		h.handleWebSocketChat(w, r)
		return
	}

	accept := r.Header.Get("Accept")

	if accept == "text/event-stream" || r.URL.Query().Get("stream") == "true" {
		h.handleSSEChat(w, r)
		return
	}

	h.handleJSONChat(w, r)
}

// ------------------------------------------------------------------------------------------------------
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte("OK")); err != nil {
		h.logger.Error("Failed to write health response", zap.Error(err))
	}
}

// ------------------------------------------------------------------------------------------------------
// tier resolves the account tier for event stamping; lookup failures
// degrade to an empty tier.
func (h *Handler) tier(ctx context.Context) string {
	if h.tiers == nil {
		return ""
	}
	t, err := h.tiers.Tier(ctx, "")
	if err != nil {
		h.logger.Warn("Failed to resolve account tier", zap.Error(err))
		return ""
	}
	return t
}

// ------------------------------------------------------------------------------------------------------
func (h *Handler) sendErrorResponse(w http.ResponseWriter, err error) {
	statusCode := apperror.GetHTTPStatusCode(err)
	errorResponse := apperror.NewErrorResponse(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if encodeErr := json.NewEncoder(w).Encode(errorResponse); encodeErr != nil {
		h.logger.Error("Failed to encode error response",
			zap.Error(encodeErr),
			zap.Error(err),
		)
	}
}

// ------------------------------------------------------------------------------------------------------
func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
