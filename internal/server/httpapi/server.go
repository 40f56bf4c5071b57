// Package httpapi exposes the editor over a JSON/HTTP API for the browser
// frontend. Each browser gets a signed session cookie binding it to one
// editor session on the server.
package httpapi

import (
	"net/http"
	"os"
	"time"

	"github.com/bkkdisplay/confeditor/internal/logging"
	"github.com/bkkdisplay/confeditor/internal/server/auth"
	"github.com/bkkdisplay/confeditor/internal/server/services"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

const sessionCookie = "confeditor_session"

// Server holds the HTTP surface: routing, the session registry and cookie
// issuance. Business rules stay in the services; the server only translates
// requests and errors.
type Server struct {
	auth          *services.AuthService
	configs       *services.ConfigService
	sessions      *sessionRegistry
	secretKey     []byte
	tokenValidity time.Duration
	logger        logging.Logger
}

func NewServer(authSvc *services.AuthService, configs *services.ConfigService, secretKey []byte, tokenValidity time.Duration, logger logging.Logger) *Server {
	return &Server{
		auth:          authSvc,
		configs:       configs,
		sessions:      newSessionRegistry(),
		secretKey:     secretKey,
		tokenValidity: tokenValidity,
		logger:        logger,
	}
}

// Handler builds the full middleware-wrapped route tree.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/continue", s.handleContinue).Methods(http.MethodPost)
	api.HandleFunc("/auth/verify", s.handleVerify).Methods(http.MethodPost)
	api.HandleFunc("/auth/resend", s.handleResend).Methods(http.MethodPost)
	api.HandleFunc("/auth/cancel", s.handleCancel).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	api.HandleFunc("/session", s.handleSessionInfo).Methods(http.MethodGet)
	api.HandleFunc("/config", s.handleGetConfig).Methods(http.MethodGet)
	api.HandleFunc("/config", s.handleSubmitEdits).Methods(http.MethodPut)
	api.HandleFunc("/config/import", s.handleImport).Methods(http.MethodPost)
	api.HandleFunc("/config/apply", s.handleApply).Methods(http.MethodPost)
	api.HandleFunc("/config/reload", s.handleReload).Methods(http.MethodPost)
	api.HandleFunc("/config/export", s.handleExport).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.AllowCredentials(),
	)
	return handlers.RecoveryHandler()(cors(handlers.LoggingHandler(os.Stdout, router)))
}

// session resolves the editor session for the request, minting a session and
// its cookie on first contact. An expired or unknown cookie is replaced the
// same way, so the client always ends up with a working session.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *clientSession {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if id, err := auth.GetSessionIDFromToken(cookie.Value, s.secretKey); err == nil {
			if cs, ok := s.sessions.get(id); ok {
				return cs
			}
		}
	}

	editor := services.NewEditorSession(s.auth, s.configs)
	id, cs := s.sessions.create(editor)

	token, err := auth.GenerateToken(id, s.secretKey, s.tokenValidity)
	if err != nil {
		// The session still works for this request; the client just comes
		// back without a cookie and gets a new one.
		s.logger.Error(r.Context(), "signing session cookie", "error", err.Error())
		return cs
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.tokenValidity.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return cs
}

// dropSession forgets the server side of the request's session, if any.
func (s *Server) dropSession(r *http.Request) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return
	}
	if id, err := auth.GetSessionIDFromToken(cookie.Value, s.secretKey); err == nil {
		s.sessions.drop(id)
	}
}
