package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	apperror "github.com/Paddy1981/larun-space/internal/error"
	"github.com/Paddy1981/larun-space/internal/store"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ------------------------------------------------------------------------------------------------------
// ListConversationsHandler returns all conversations grouped by recency
// (today / yesterday / older), most recently updated first.
func (h *Handler) ListConversationsHandler(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list conversations", zap.Error(err))
		h.sendErrorResponse(w, apperror.NewInternalError("failed to list conversations", err))
		return
	}

	h.writeJSON(w, http.StatusOK, store.GroupByRecency(summaries, time.Now()))
}

// ------------------------------------------------------------------------------------------------------
// NewConversationHandler is the "new chat" action: it clears the current
// conversation so the next message starts a fresh one. When a title is
// supplied, the conversation is created and selected immediately.
func (h *Handler) NewConversationHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.sendErrorResponse(w, apperror.NewValidationError("Invalid JSON in request body", err))
			return
		}
	}

	h.session.NewConversation()

	if req.Title == "" {
		h.writeJSON(w, http.StatusOK, map[string]any{"conversation_id": nil})
		return
	}

	conv, err := h.store.Create(r.Context(), store.DeriveTitle(req.Title))
	if err != nil {
		h.logger.Error("Failed to create conversation", zap.Error(err))
		h.sendErrorResponse(w, apperror.NewPersistenceError("failed to create conversation", err))
		return
	}

	if err := h.session.Select(r.Context(), conv.ID); err != nil {
		h.logger.Error("Failed to select new conversation", zap.Error(err))
	}

	h.writeJSON(w, http.StatusCreated, conv)
}

// ------------------------------------------------------------------------------------------------------
func (h *Handler) GetConversationHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	conv, err := h.store.Get(r.Context(), id)
	if err != nil {
		if err == store.ErrNotFound {
			h.sendErrorResponse(w, apperror.NewNotFoundError("conversation not found", err))
			return
		}
		h.logger.Error("Failed to load conversation", zap.Error(err))
		h.sendErrorResponse(w, apperror.NewInternalError("failed to load conversation", err))
		return
	}

	h.writeJSON(w, http.StatusOK, conv)
}

// ------------------------------------------------------------------------------------------------------
func (h *Handler) RenameConversationHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendErrorResponse(w, apperror.NewValidationError("Invalid JSON in request body", err))
		return
	}
	if req.Title == "" {
		h.sendErrorResponse(w, apperror.NewValidationError("title cannot be empty", nil))
		return
	}

	if err := h.store.Rename(r.Context(), id, req.Title); err != nil {
		if err == store.ErrNotFound {
			h.sendErrorResponse(w, apperror.NewNotFoundError("conversation not found", err))
			return
		}
		h.logger.Error("Failed to rename conversation", zap.Error(err))
		h.sendErrorResponse(w, apperror.NewPersistenceError("failed to rename conversation", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ------------------------------------------------------------------------------------------------------
// DeleteConversationHandler removes a conversation. Idempotent: deleting
// an unknown id still returns 204.
func (h *Handler) DeleteConversationHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.session.DeleteConversation(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete conversation", zap.Error(err))
		h.sendErrorResponse(w, apperror.NewPersistenceError("failed to delete conversation", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
