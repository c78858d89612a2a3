package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"rudra/model"
	"rudra/storage"
	"rudra/stream"
	"rudra/tools"
)

type generateRequest struct {
	Messages []model.Message `json:"messages"`
	ChatID   string          `json:"chatId"`
}

// handleGenerate runs one assistant turn and streams it back. Storage
// failures are logged and never abort the stream; the caller sees their
// generation complete even if a write was lost.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	identity, err := s.auth.Identify(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req generateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ChatID == "" {
		writeError(w, http.StatusBadRequest, "chatId is required")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages are required")
		return
	}

	chat, ok := s.ownedChatForIdentity(w, identity, req.ChatID)
	if !ok {
		return
	}

	// Persist the user's turn before generation so a disconnect cannot
	// lose it.
	last := req.Messages[len(req.Messages)-1]
	if last.Role == model.RoleUser {
		if err := s.store.AppendMessage(chat.ID, stamped(last)); err != nil {
			s.log.WithError(err).WithField("chat", chat.ID).Warn("failed to persist user message")
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	sw := stream.NewWriter(w)
	wrote := false
	emit := func(ev model.StreamEvent) error {
		wrote = true
		return sw.WriteEvent(ev)
	}

	result, err := s.engine.Run(r.Context(), req.Messages, emit)
	if err != nil {
		s.log.WithError(err).WithField("chat", chat.ID).Error("generation failed")
		if !wrote {
			writeError(w, http.StatusBadGateway, "generation failed")
			return
		}
		sw.WriteEvent(model.StreamEndEvent())
		return
	}

	if err := sw.WriteEvent(model.StreamEndEvent()); err != nil {
		s.log.WithError(err).Debug("client went away before stream end")
	}

	s.persistAssistantTurn(chat.ID, result.Text, result.ToolInvocations)
}

// persistAssistantTurn applies the shared failure predicate to the turn's
// invocations and writes the assistant message only when something survives:
// non-blank text or at least one successful tool result. Failed invocations
// are dropped outright rather than stored flagged.
func (s *Server) persistAssistantTurn(chatID, text string, invocations []model.ToolInvocation) {
	kept := make([]model.ToolInvocation, 0, len(invocations))
	for _, inv := range invocations {
		if inv.Completed() && !tools.Failed(inv) {
			kept = append(kept, inv)
		}
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" && len(kept) == 0 {
		return
	}

	msg := model.Message{
		ID:              uuid.New().String(),
		Role:            model.RoleAssistant,
		Content:         text,
		ToolInvocations: kept,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.store.AppendMessage(chatID, msg); err != nil {
		s.log.WithError(err).WithField("chat", chatID).Warn("failed to persist assistant message")
	}
}

// ownedChatForIdentity is the ownership check for callers that already
// resolved their identity.
func (s *Server) ownedChatForIdentity(w http.ResponseWriter, identity model.Identity, chatID string) (model.Chat, bool) {
	chat, err := s.store.GetChat(chatID)
	if err == nil && chat.UserID == identity.ID {
		return chat, true
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.log.WithError(err).Error("failed to load chat")
		writeError(w, http.StatusInternalServerError, "failed to load chat")
		return model.Chat{}, false
	}
	writeError(w, http.StatusNotFound, "chat not found")
	return model.Chat{}, false
}

func stamped(msg model.Message) model.Message {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	return msg
}
