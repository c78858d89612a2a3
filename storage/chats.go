package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"rudra/model"
)

func (s *Store) CreateChat(chat model.Chat) error {
	_, err := s.db.Exec(
		`INSERT INTO chats (id, user_id, title, created_at) VALUES (?, ?, ?, ?)`,
		chat.ID, chat.UserID, chat.Title, chat.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	return nil
}

func (s *Store) GetChat(id string) (model.Chat, error) {
	var chat model.Chat
	err := s.db.QueryRow(
		`SELECT id, user_id, title, created_at FROM chats WHERE id = ?`,
		id,
	).Scan(&chat.ID, &chat.UserID, &chat.Title, &chat.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Chat{}, ErrNotFound
	}
	if err != nil {
		return model.Chat{}, fmt.Errorf("failed to load chat: %w", err)
	}
	return chat, nil
}

// ListChats returns a user's chats, newest first.
func (s *Store) ListChats(userID string) ([]model.Chat, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, title, created_at FROM chats WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	chats := []model.Chat{}
	for rows.Next() {
		var chat model.Chat
		if err := rows.Scan(&chat.ID, &chat.UserID, &chat.Title, &chat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

func (s *Store) UpdateChatTitle(id, title string) error {
	res, err := s.db.Exec(`UPDATE chats SET title = ? WHERE id = ?`, title, id)
	if err != nil {
		return fmt.Errorf("failed to update chat title: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update chat title: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteChat removes a chat together with its messages.
func (s *Store) DeleteChat(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages WHERE chat_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete chat messages: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM chats WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	return tx.Commit()
}

// AppendMessage stores one message at the end of a chat. Tool invocations are
// serialized as JSON in a single column.
func (s *Store) AppendMessage(chatID string, msg model.Message) error {
	var invocations sql.NullString
	if len(msg.ToolInvocations) > 0 {
		raw, err := json.Marshal(msg.ToolInvocations)
		if err != nil {
			return fmt.Errorf("failed to encode tool invocations: %w", err)
		}
		invocations = sql.NullString{String: string(raw), Valid: true}
	}

	_, err := s.db.Exec(
		`INSERT INTO messages (id, chat_id, role, content, tool_invocations, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, chatID, msg.Role, msg.Content, invocations, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// LoadMessages returns a chat's messages, oldest first.
func (s *Store) LoadMessages(chatID string) ([]model.Message, error) {
	rows, err := s.db.Query(
		`SELECT id, role, content, tool_invocations, created_at FROM messages WHERE chat_id = ? ORDER BY created_at ASC, id ASC`,
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var msg model.Message
		var invocations sql.NullString
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &invocations, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if invocations.Valid && invocations.String != "" {
			if err := json.Unmarshal([]byte(invocations.String), &msg.ToolInvocations); err != nil {
				return nil, fmt.Errorf("failed to decode tool invocations: %w", err)
			}
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
