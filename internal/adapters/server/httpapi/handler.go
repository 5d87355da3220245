// Package httpapi exposes the action engine as a minimal JSON-over-HTTP API.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/hylla/dagord/internal/engine"
)

// Handler serves the execute endpoint.
type Handler struct {
	eng *engine.Engine
	mux *http.ServeMux
}

// NewHandler builds the REST adapter over the engine.
func NewHandler(eng *engine.Engine) *Handler {
	h := &Handler{eng: eng, mux: http.NewServeMux()}
	h.mux.HandleFunc("/execute", h.handleExecute)
	return h
}

// ServeHTTP dispatches one API request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// handleExecute decodes one command and runs it. Business failures still
// answer 200 with success=false; only malformed transport input is a 4xx.
func (h *Handler) handleExecute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	var cmd engine.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json: " + err.Error()})
		return
	}
	res := h.eng.Execute(r.Context(), cmd)
	writeJSON(w, http.StatusOK, res)
}

// writeJSON renders one JSON response.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
