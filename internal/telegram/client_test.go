package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gerardthecreator/taller-citas/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&config.TelegramConfig{
		Token:      "test-token",
		APIBaseURL: srv.URL,
	})
}

func TestSendMessage(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"ok":true,"result":{}}`))
	})

	markup := &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{{
			{Text: "✅ Aceptar", CallbackData: "aceptar_abc"},
		}},
	}
	err := client.SendMessage(context.Background(), "4242", "hola *mundo*", markup)
	require.NoError(t, err)

	assert.Equal(t, "/bottest-token/sendMessage", gotPath)
	assert.Equal(t, "4242", gotBody["chat_id"])
	assert.Equal(t, "hola *mundo*", gotBody["text"])
	assert.Equal(t, "Markdown", gotBody["parse_mode"])
	assert.NotNil(t, gotBody["reply_markup"])
}

func TestSendMessageOmitsEmptyMarkup(t *testing.T) {
	var gotBody map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"ok":true}`))
	})

	require.NoError(t, client.SendMessage(context.Background(), "4242", "hola", nil))
	_, present := gotBody["reply_markup"]
	assert.False(t, present)
}

func TestEditMessageText(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"ok":true,"result":{}}`))
	})

	err := client.EditMessageText(context.Background(), 99, 7, "texto nuevo")
	require.NoError(t, err)

	assert.Equal(t, "/bottest-token/editMessageText", gotPath)
	assert.Equal(t, float64(99), gotBody["chat_id"])
	assert.Equal(t, float64(7), gotBody["message_id"])
	assert.Equal(t, "texto nuevo", gotBody["text"])
	assert.Equal(t, "Markdown", gotBody["parse_mode"])
}

func TestCallNon200(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := client.SendMessage(context.Background(), "4242", "hola", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-200 status code: 502")
}

func TestCallAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	})

	err := client.SendMessage(context.Background(), "4242", "hola", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}
