package handlers

import (
	"net/http"

	apperror "github.com/Paddy1981/larun-space/internal/error"
	"github.com/Paddy1981/larun-space/internal/store"
	"go.uber.org/zap"
)

func (h *Handler) handleWebSocketChat(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	var req ChatRequest
	if err := conn.ReadJSON(&req); err != nil {
		h.logger.Error("Failed to read WebSocket message", zap.Error(err))

		errorResponse := apperror.NewErrorResponse(
			apperror.NewValidationError("Failed to read WebSocket message: invalid JSON", err),
		)

		_ = conn.WriteJSON(errorResponse)
		return
	}

	if req.ConversationID != "" {
		if err := h.session.Select(r.Context(), req.ConversationID); err != nil {
			if err == store.ErrNotFound {
				err = apperror.NewNotFoundError("conversation not found", err)
			}
			_ = conn.WriteJSON(apperror.NewErrorResponse(err))
			return
		}
	}

	result, err := h.session.Send(r.Context(), req.Message)
	if err != nil {
		h.logger.Error("WebSocket chat failed", zap.Error(err))
		_ = conn.WriteJSON(apperror.NewErrorResponse(err))
		return
	}

	observeCompletion(string(result.Source))

	for _, chunk := range chunkText(result.Reply.Content, sseChunkSize) {
		if err := conn.WriteJSON(map[string]string{"token": chunk}); err != nil {
			h.logger.Error("Failed to write WebSocket chunk", zap.Error(err))
			return
		}
	}

	err = conn.WriteJSON(map[string]string{
		"done":            "true",
		"conversation_id": result.ConversationID,
	})
	if err != nil {
		h.logger.Error("Failed to write done message", zap.Error(err))
		return
	}
}
