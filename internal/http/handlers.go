package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	. "github.com/curamyn/curamyn/internal/logging"
	"github.com/curamyn/curamyn/internal/types"
)

// handleInteract handles POST /api/interact - one user turn.
func (s *Server) handleInteract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req types.InteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	// The core never mints identity: a missing session id gets one here,
	// at the caller layer.
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	resp, err := s.orch.RunInteraction(r.Context(), &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logTranscript(r, &req, resp)

	writeJSON(w, http.StatusOK, resp)
}

// logTranscript appends the turn to the chat-history log. Display only;
// failures never affect the interaction.
func (s *Server) logTranscript(r *http.Request, req *types.InteractionRequest, resp *types.InteractionResponse) {
	if req.UserID == "" {
		return
	}

	userLine := req.Text
	switch req.InputType {
	case types.InputAudio:
		userLine = "[voice message]"
	case types.InputImage:
		userLine = "[image upload]"
	}

	if err := s.store.AppendTranscript(r.Context(), req.UserID, req.SessionID,
		types.TranscriptEntry{Role: "user", Content: userLine}); err != nil {
		L_warn("http: transcript append failed", "sessionId", req.SessionID, "error", err)
		return
	}
	if err := s.store.AppendTranscript(r.Context(), req.UserID, req.SessionID,
		types.TranscriptEntry{Role: "assistant", Content: resp.Message}); err != nil {
		L_warn("http: transcript append failed", "sessionId", req.SessionID, "error", err)
	}
}

// handleSessionEnd handles POST /api/session/end - explicit logout.
func (s *Server) handleSessionEnd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
		UserID    string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id required")
		return
	}

	s.lifecycle.EndSession(r.Context(), req.SessionID, req.UserID)

	writeJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

// handleConsent handles GET and PUT /api/consent.
func (s *Server) handleConsent(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			writeError(w, http.StatusBadRequest, "user_id required")
			return
		}
		consent, err := s.store.GetConsent(r.Context(), userID)
		if err != nil {
			L_error("http: consent read failed", "userId", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "Consent lookup failed")
			return
		}
		writeJSON(w, http.StatusOK, consent)

	case http.MethodPut:
		var req struct {
			UserID string `json:"user_id"`
			types.Consent
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
			writeError(w, http.StatusBadRequest, "user_id required")
			return
		}
		if err := s.store.SetConsent(r.Context(), req.UserID, req.Consent); err != nil {
			L_error("http: consent update failed", "userId", req.UserID, "error", err)
			writeError(w, http.StatusInternalServerError, "Consent update failed")
			return
		}
		writeJSON(w, http.StatusOK, req.Consent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleHistory handles GET and DELETE /api/history - the chat-history
// transcript log.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	sessionID := r.URL.Query().Get("session_id")
	if userID == "" || sessionID == "" {
		writeError(w, http.StatusBadRequest, "user_id and session_id required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		entries, err := s.store.GetTranscript(r.Context(), userID, sessionID)
		if err != nil {
			L_error("http: transcript read failed", "sessionId", sessionID, "error", err)
			writeError(w, http.StatusInternalServerError, "History lookup failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entries": entries})

	case http.MethodDelete:
		if err := s.store.DeleteTranscript(r.Context(), userID, sessionID); err != nil {
			L_error("http: transcript delete failed", "sessionId", sessionID, "error", err)
			writeError(w, http.StatusInternalServerError, "History delete failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleSummary handles GET /api/summary - a stored session summary.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID := r.URL.Query().Get("user_id")
	sessionID := r.URL.Query().Get("session_id")
	if userID == "" || sessionID == "" {
		writeError(w, http.StatusBadRequest, "user_id and session_id required")
		return
	}

	summary, err := s.store.LoadSummary(r.Context(), userID, sessionID)
	if err != nil {
		L_error("http: summary read failed", "sessionId", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "Summary lookup failed")
		return
	}
	if summary == nil {
		writeError(w, http.StatusNotFound, "No summary for this session")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
