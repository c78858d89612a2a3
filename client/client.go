// Package client is the HTTP client side of the API: auth calls, chat CRUD,
// and turn submission with optimistic conversation state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"rudra/conversation"
	"rudra/model"
	"rudra/stream"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{}}
}

// SetToken sets the session token used for subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, name, email, password string) (model.Identity, error) {
	var identity model.Identity
	err := c.postJSON(ctx, "/api/register", map[string]string{
		"name": name, "email": email, "password": password,
	}, &identity)
	return identity, err
}

// Login opens a session and remembers its token.
func (c *Client) Login(ctx context.Context, email, password string) (model.Identity, error) {
	var resp struct {
		Token string         `json:"token"`
		User  model.Identity `json:"user"`
	}
	if err := c.postJSON(ctx, "/api/login", map[string]string{
		"email": email, "password": password,
	}, &resp); err != nil {
		return model.Identity{}, err
	}
	c.token = resp.Token
	return resp.User, nil
}

// CreateChat creates a conversation and returns it.
func (c *Client) CreateChat(ctx context.Context, title string) (model.Chat, error) {
	var chat model.Chat
	err := c.postJSON(ctx, "/api/chats", map[string]string{"title": title}, &chat)
	return chat, err
}

// Chats lists the caller's conversations, newest first.
func (c *Client) Chats(ctx context.Context) ([]model.Chat, error) {
	var chats []model.Chat
	err := c.getJSON(ctx, "/api/chats", &chats)
	return chats, err
}

// Messages loads a conversation's history, oldest first.
func (c *Client) Messages(ctx context.Context, chatID string) ([]model.Message, error) {
	var messages []model.Message
	err := c.getJSON(ctx, "/api/chats/"+chatID+"/messages", &messages)
	return messages, err
}

// SyncTitle renames a chat from its first user message.
func (c *Client) SyncTitle(ctx context.Context, chatID, title string) error {
	body, err := json.Marshal(map[string]string{"title": title})
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPatch, "/api/chats/"+chatID, bytes.NewReader(body))
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("title sync failed: %s", resp.Status)
	}
	return nil
}

// SubmitTurn sends the conversation to the generation endpoint and folds the
// streamed response back into it. A transport failure rolls back the
// optimistic assistant placeholder; the user's message stays so they can
// retry.
func (c *Client) SubmitTurn(ctx context.Context, conv *conversation.Conversation, chatID string) error {
	payload, err := json.Marshal(map[string]any{
		"messages": conv.Messages(),
		"chatId":   chatID,
	})
	if err != nil {
		return err
	}

	conv.BeginTurn()

	req, err := c.newRequest(ctx, http.MethodPost, "/api/chat", bytes.NewReader(payload))
	if err != nil {
		conv.Rollback()
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		conv.Rollback()
		return fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		conv.Rollback()
		return fmt.Errorf("chat request failed: %s", resp.Status)
	}

	dec := stream.NewDecoder(resp.Body)
	for {
		ev, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			conv.Rollback()
			return fmt.Errorf("stream decode failed: %w", err)
		}
		conv.Apply(ev)
		if ev.Type == model.EventStreamEnd {
			break
		}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("request failed: %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
