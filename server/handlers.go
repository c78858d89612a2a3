package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"rudra/auth"
	"rudra/model"
)

const sessionCookieMaxAge = 30 * 24 * time.Hour

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string         `json:"token"`
	User  model.Identity `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	identity, err := s.auth.Register(req.Name, req.Email, req.Password)
	if errors.Is(err, auth.ErrEmailTaken) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.log.WithError(err).Error("registration failed")
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, identity)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, identity, err := s.auth.Login(req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		s.log.WithError(err).Error("login failed")
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(sessionCookieMaxAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: identity})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(auth.TokenFromRequest(r)); err != nil {
		s.log.WithError(err).Warn("logout failed")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	identity, err := s.auth.Identify(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	chats, err := s.store.ListChats(identity.ID)
	if err != nil {
		s.log.WithError(err).Error("failed to list chats")
		writeError(w, http.StatusInternalServerError, "failed to list chats")
		return
	}
	writeJSON(w, http.StatusOK, chats)
}

func (s *Server) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	identity, err := s.auth.Identify(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "New Chat"
	}

	chat := model.Chat{
		ID:        uuid.New().String(),
		UserID:    identity.ID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateChat(chat); err != nil {
		s.log.WithError(err).Error("failed to create chat")
		writeError(w, http.StatusInternalServerError, "failed to create chat")
		return
	}
	writeJSON(w, http.StatusCreated, chat)
}

// ownedChat loads a chat and verifies the caller owns it. Absence and
// foreign ownership are indistinguishable to the caller.
func (s *Server) ownedChat(w http.ResponseWriter, r *http.Request, chatID string) (model.Chat, bool) {
	identity, err := s.auth.Identify(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return model.Chat{}, false
	}
	return s.ownedChatForIdentity(w, identity, chatID)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	chat, ok := s.ownedChat(w, r, r.PathValue("id"))
	if !ok {
		return
	}

	messages, err := s.store.LoadMessages(chat.ID)
	if err != nil {
		s.log.WithError(err).Error("failed to load messages")
		writeError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (s *Server) handleUpdateChat(w http.ResponseWriter, r *http.Request) {
	chat, ok := s.ownedChat(w, r, r.PathValue("id"))
	if !ok {
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	if err := s.store.UpdateChatTitle(chat.ID, title); err != nil {
		s.log.WithError(err).Error("failed to update chat title")
		writeError(w, http.StatusInternalServerError, "failed to update chat")
		return
	}
	chat.Title = title
	writeJSON(w, http.StatusOK, chat)
}

func (s *Server) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	chat, ok := s.ownedChat(w, r, r.PathValue("id"))
	if !ok {
		return
	}

	if err := s.store.DeleteChat(chat.ID); err != nil {
		s.log.WithError(err).Error("failed to delete chat")
		writeError(w, http.StatusInternalServerError, "failed to delete chat")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
