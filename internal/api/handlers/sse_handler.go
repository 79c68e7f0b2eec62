package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// sseChunkSize is the rough character length of each streamed chunk.
// The completion arrives whole; we chunk it so the UI can render
// progressively the way it does against streaming providers.
const sseChunkSize = 48

// ------------------------------------------------------------------------------------------------------
func (h *Handler) handleSSEChat(w http.ResponseWriter, r *http.Request) {

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

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	for _, chunk := range chunkText(result.Reply.Content, sseChunkSize) {
		data := fmt.Sprintf("data: %s\n\n", chunk)
		if _, err := w.Write([]byte(data)); err != nil {
			h.logger.Error("Failed to write SSE chunk", zap.Error(err))
			return
		}
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
	}

	// Send completion marker
	if _, err := w.Write([]byte("data: [DONE]\n\n")); err != nil {
		h.logger.Error("Failed to write completion marker", zap.Error(err))
		return
	}

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// ------------------------------------------------------------------------------------------------------
// chunkText splits text into chunks of roughly size characters, breaking
// on line boundaries so tables survive the trip.
func chunkText(text string, size int) []string {
	if text == "" {
		return nil
	}

	var chunks []string
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > size {
			chunks = append(chunks, line[:size])
			line = line[size:]
		}
		if line != "" {
			chunks = append(chunks, line)
		}
	}
	return chunks
}
