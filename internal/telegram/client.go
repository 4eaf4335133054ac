package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gerardthecreator/taller-citas/config"
)

const defaultBaseURL = "https://api.telegram.org"

// Client is a minimal Bot API client covering the two methods this service
// uses: sendMessage and editMessageText.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a Bot API client from the given configuration. The base
// URL is overridable so tests can point the client at a local server.
func NewClient(cfg *config.TelegramConfig) *Client {
	baseURL := cfg.APIBaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		token:   cfg.Token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SendMessage sends a Markdown-formatted message, optionally with an inline
// keyboard, to the given chat.
func (c *Client) SendMessage(ctx context.Context, chatID, text string, markup *InlineKeyboardMarkup) error {
	return c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   "Markdown",
		ReplyMarkup: markup,
	})
}

// EditMessageText replaces the body of an existing message. Supplying no
// reply markup drops any inline keyboard the message carried.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	return c.call(ctx, "editMessageText", editMessageTextRequest{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		ParseMode: "Markdown",
	})
}

// call posts a JSON payload to a Bot API method and checks the response
// envelope. Response contents beyond the envelope are discarded.
func (c *Client) call(ctx context.Context, method string, payload any) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s received non-200 status code: %d", method, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response body: %w", method, err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return fmt.Errorf("failed to unmarshal %s response: %w", method, err)
	}
	if !apiResp.OK {
		return fmt.Errorf("%s returned ok=false: %s", method, apiResp.Description)
	}

	return nil
}
