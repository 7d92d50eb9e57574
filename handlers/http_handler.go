package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/MuaazSM/multimodal-travel-agent/memory"
	"github.com/MuaazSM/multimodal-travel-agent/travelagent"
)

type QueryRequest struct {
	ThreadID string `json:"thread_id,omitempty"`
	Query    string `json:"query"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type HTTPHandler struct {
	turns TurnRunner
	newID func() string
}

func NewHTTPHandler(turns TurnRunner) *HTTPHandler {
	return &HTTPHandler{turns: turns, newID: newThreadID}
}

// Register mounts the travel API on router.
func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/health", h.handleHealth).Methods("GET")

	api := router.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/query", h.handleQuery).Methods("POST")
	api.HandleFunc("/threads/{id}/query", h.handleQuery).Methods("POST")
	api.HandleFunc("/threads/{id}", h.handleGetThread).Methods("GET")
	api.HandleFunc("/threads/{id}", h.handleDeleteThread).Methods("DELETE")
}

func (h *HTTPHandler) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is required"})
		return
	}

	threadID := mux.Vars(r)["id"]
	if threadID == "" {
		threadID = req.ThreadID
	}
	if threadID == "" {
		threadID = h.newID()
	}

	st, err := h.turns.Run(r.Context(), threadID, req.Query)
	switch {
	case err != nil && st != nil:
		logger.Error("Turn finished without saving", zap.String("threadId", threadID), zap.Error(err))
		writeJSON(w, http.StatusOK, withSaveWarning(travelagent.NewTravelOutput(st), err))
	case err != nil:
		logger.Error("Turn failed", zap.String("threadId", threadID), zap.Error(err))
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusOK, travelagent.NewTravelOutput(st))
	}
}

func (h *HTTPHandler) handleGetThread(w http.ResponseWriter, r *http.Request) {
	threadID := mux.Vars(r)["id"]

	st, err := h.turns.Thread(r.Context(), threadID)
	if err != nil {
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, st)
}

func (h *HTTPHandler) handleDeleteThread(w http.ResponseWriter, r *http.Request) {
	threadID := mux.Vars(r)["id"]

	if err := h.turns.Reset(r.Context(), threadID); err != nil {
		logger.Error("Failed to reset thread", zap.String("threadId", threadID), zap.Error(err))
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, memory.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, memory.ErrInvalidID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}
