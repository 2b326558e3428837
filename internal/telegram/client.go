// Package telegram is the chat transport: a thin Bot API client and a
// long-poll loop that feeds inbound updates to the dispatch router.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/grechaniuk/svitlo-bot/internal/bot"
)

const defaultBaseURL = "https://api.telegram.org"

// longPollSeconds is the server-side hold time for getUpdates. The HTTP
// client timeout must stay above it.
const longPollSeconds = 50

// ─── Wire types ──────────────────────────────────────────────────────────────

// Update is one inbound event. Exactly one of the pointer fields is set.
type Update struct {
	UpdateID int64          `json:"update_id"`
	Message  *Message       `json:"message"`
	Callback *CallbackQuery `json:"callback_query"`
}

// Message is an inbound chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

// Chat identifies the conversation. For this bot it is always a private
// chat, so Chat.ID equals the user id.
type Chat struct {
	ID int64 `json:"id"`
}

// User is the message sender.
type User struct {
	ID           int64  `json:"id"`
	LanguageCode string `json:"language_code"`
}

// CallbackQuery is an inline-button press.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Data    string   `json:"data"`
	Message *Message `json:"message"`
}

type inlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type inlineKeyboardMarkup struct {
	InlineKeyboard [][]inlineKeyboardButton `json:"inline_keyboard"`
}

// apiEnvelope is the Bot API response wrapper.
type apiEnvelope struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// ─── Client ──────────────────────────────────────────────────────────────────

// Client is a minimal Bot API client covering exactly the methods this
// bot uses: getUpdates, sendMessage, answerCallbackQuery.
type Client struct {
	httpc *http.Client
	base  string
}

// NewClient creates a client for the given bot token.
func NewClient(token string) *Client {
	return newClient(token, defaultBaseURL, &http.Client{
		Timeout: (longPollSeconds + 10) * time.Second,
	})
}

func newClient(token, baseURL string, httpc *http.Client) *Client {
	return &Client{
		httpc: httpc,
		base:  baseURL + "/bot" + token,
	}
}

func (c *Client) call(ctx context.Context, method string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: encode %s: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/"+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: build %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: %s: %w", method, err)
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("telegram: decode %s: %w", method, err)
	}
	if !env.OK {
		return fmt.Errorf("telegram: %s: %s", method, env.Description)
	}
	if out != nil {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("telegram: decode %s result: %w", method, err)
		}
	}
	return nil
}

// GetUpdates long-polls for inbound updates after the given offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	payload := map[string]any{
		"offset":          offset,
		"timeout":         longPollSeconds,
		"allowed_updates": []string{"message", "callback_query"},
	}
	var updates []Update
	if err := c.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage delivers one reply, with an inline keyboard when the
// reply carries buttons.
func (c *Client) SendMessage(ctx context.Context, chatID int64, reply bot.Reply) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    reply.Text,
	}
	if len(reply.Buttons) > 0 {
		markup := inlineKeyboardMarkup{}
		for _, row := range reply.Buttons {
			wire := make([]inlineKeyboardButton, 0, len(row))
			for _, b := range row {
				wire = append(wire, inlineKeyboardButton{Text: b.Label, CallbackData: b.Data})
			}
			markup.InlineKeyboard = append(markup.InlineKeyboard, wire)
		}
		payload["reply_markup"] = markup
	}
	return c.call(ctx, "sendMessage", payload, nil)
}

// AnswerCallback acknowledges a button press so the client stops
// showing the progress spinner.
func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	return c.call(ctx, "answerCallbackQuery", map[string]any{"callback_query_id": callbackID}, nil)
}
