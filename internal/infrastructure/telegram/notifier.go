package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"QuotePress/internal/ports"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier announces published articles in a Telegram chat through the bot API.
type Notifier struct {
	apiBase  string
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

type sendMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type apiReply struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		apiBase:  defaultAPIBase,
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify sends message as plain text.
func (n *Notifier) Notify(ctx context.Context, message string) error {
	if n.botToken == "" || n.chatID == "" {
		return errors.New("telegram notifier misconfigured")
	}

	payload, err := json.Marshal(sendMessage{ChatID: n.chatID, Text: message})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(n.apiBase, "/"), n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	var reply apiReply
	decodeErr := json.NewDecoder(resp.Body).Decode(&reply)
	if resp.StatusCode != http.StatusOK || !reply.OK {
		if decodeErr == nil && reply.Description != "" {
			return fmt.Errorf("telegram %s: %s", resp.Status, reply.Description)
		}
		return fmt.Errorf("telegram %s", resp.Status)
	}
	return nil
}
