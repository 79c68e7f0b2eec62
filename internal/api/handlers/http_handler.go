package handlers

import (
	"encoding/json"
	"net/http"

	apperror "github.com/Paddy1981/larun-space/internal/error"
	"github.com/Paddy1981/larun-space/internal/store"
	"go.uber.org/zap"
)

// ----------------------------------------------------------------------------------------------------------------
func (h *Handler) handleJSONChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := h.processChat(r)
	if err != nil {
		h.logger.Error("Chat processing failed", zap.Error(err))
		h.sendErrorResponse(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, ChatResponse{
		Response:       result.Reply.Content,
		ConversationID: result.ConversationID,
	})
}

// ----------------------------------------------------------------------------------------------------------------
// processChat decodes a chat request, resolves the target conversation
// and runs one Send through the session controller.
func (h *Handler) processChat(r *http.Request) (*sendOutcome, error) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, apperror.NewValidationError("Invalid JSON in request body", err)
	}

	if req.ConversationID != "" {
		if err := h.session.Select(r.Context(), req.ConversationID); err != nil {
			if err == store.ErrNotFound {
				return nil, apperror.NewNotFoundError("conversation not found", err)
			}
			return nil, apperror.NewInternalError("failed to select conversation", err)
		}
	}

	result, err := h.session.Send(r.Context(), req.Message)
	if err != nil {
		return nil, err
	}

	observeCompletion(string(result.Source))

	return &sendOutcome{
		Reply:          result.Reply,
		ConversationID: result.ConversationID,
	}, nil
}

// ----------------------------------------------------------------------------------------------------------------
type sendOutcome struct {
	Reply          *store.Message
	ConversationID string
}
