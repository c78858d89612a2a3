// Package server exposes the HTTP API: account and session endpoints, chat
// CRUD, and the streaming generation endpoint.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"rudra/auth"
	"rudra/engine"
	"rudra/storage"
)

type Server struct {
	auth   *auth.Service
	store  *storage.Store
	engine *engine.Engine
	log    *logrus.Logger
}

func New(authSvc *auth.Service, store *storage.Store, eng *engine.Engine, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.New()
	}
	return &Server{auth: authSvc, store: store, engine: eng, log: log}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)

	mux.HandleFunc("GET /api/chats", s.handleListChats)
	mux.HandleFunc("POST /api/chats", s.handleCreateChat)
	mux.HandleFunc("GET /api/chats/{id}/messages", s.handleListMessages)
	mux.HandleFunc("PATCH /api/chats/{id}", s.handleUpdateChat)
	mux.HandleFunc("DELETE /api/chats/{id}", s.handleDeleteChat)

	mux.HandleFunc("POST /api/chat", s.handleGenerate)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
