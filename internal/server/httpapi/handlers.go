package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/bkkdisplay/confeditor/internal/common"
	"github.com/bkkdisplay/confeditor/internal/configdoc"
	"github.com/bkkdisplay/confeditor/internal/server/services"
)

const maxUploadBytes = 1 << 20

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type codeRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request) {
	cs := s.session(w, r)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid request payload", common.ErrorValidation))
		return
	}

	outcome, err := cs.editor.SubmitCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status := "verification_sent"
	if outcome == services.OutcomeLoggedIn {
		status = "logged_in"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	cs := s.session(w, r)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	var req codeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid request payload", common.ErrorValidation))
		return
	}

	if err := cs.editor.VerifyCode(r.Context(), req.Code); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_in"})
}

func (s *Server) handleResend(w http.ResponseWriter, r *http.Request) {
	cs := s.session(w, r)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if err := cs.editor.ResendCode(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "verification_sent"})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	cs := s.session(w, r)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.editor.CancelVerification()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	cs := s.session(w, r)
	cs.mu.Lock()
	cs.editor.Logout()
	cs.mu.Unlock()

	s.dropSession(r)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (s *Server) handleSessionInfo(w http.ResponseWriter, r *http.Request) {
	cs := s.session(w, r)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	st := cs.editor.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"stage":       st.Stage.String(),
		"email":       st.Email,
		"fingerprint": st.Fingerprint,
	})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cs := s.session(w, r)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	st := cs.editor.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"config":      st.Document,
		"fingerprint": st.Fingerprint,
	})
}

func (s *Server) handleSubmitEdits(w http.ResponseWriter, r *http.Request) {
	cs := s.session(w, r)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	var edits configdoc.Partial
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes)).Decode(&edits); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid config payload", common.ErrorValidation))
		return
	}

	count, err := cs.editor.SubmitEdits(r.Context(), edits)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"upload_count": count,
		"fingerprint":  cs.editor.State().Fingerprint,
	})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	cs := s.session(w, r)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: reading upload", common.ErrorValidation))
		return
	}

	if err := cs.editor.StageUpload(string(body)); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"staged": true})
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	cs := s.session(w, r)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	applied := cs.editor.ApplyUploadedOverride()
	st := cs.editor.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"applied":     applied,
		"config":      st.Document,
		"fingerprint": st.Fingerprint,
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	cs := s.session(w, r)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if err := cs.editor.ReloadFromStore(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	st := cs.editor.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"config":      st.Document,
		"fingerprint": st.Fingerprint,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	cs := s.session(w, r)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="config.json"`)
	_, _ = io.WriteString(w, cs.editor.Export())
}
