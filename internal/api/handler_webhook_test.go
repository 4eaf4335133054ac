package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gerardthecreator/taller-citas/internal/model"
	"github.com/gerardthecreator/taller-citas/internal/notification"
)

// sentEdit decodes the payload of a captured editMessageText call.
type sentEdit struct {
	ChatID    int64  `json:"chat_id"`
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

func callbackBody(data, text string) string {
	payload := map[string]any{
		"callback_query": map[string]any{
			"data": data,
			"message": map[string]any{
				"message_id": 7,
				"chat":       map[string]any{"id": 99},
				"text":       text,
			},
		},
	}
	b, _ := json.Marshal(payload)
	return string(b)
}

func seedPending(t *testing.T, env *testEnv) string {
	t.Helper()
	id, err := env.bookings.Create(t.Context(), &model.Booking{
		Name:    "Ana",
		Vehicle: "Civic",
		Date:    "2024-05-01T10:00:00Z",
		Status:  model.StatusPending,
	})
	require.NoError(t, err)
	return id
}

func TestWebhookAccept(t *testing.T) {
	env := newTestEnv(t)
	id := seedPending(t, env)

	w := env.do(http.MethodPost, "/api/telegram/webhook",
		callbackBody("aceptar_"+id, "Nueva solicitud de cita: Ana"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	assert.Equal(t, model.StatusAccepted, env.bookings.get(id).Status)

	call := env.tg.lastCall(t)
	assert.Equal(t, "editMessageText", call.method)

	var edit sentEdit
	require.NoError(t, json.Unmarshal(call.body, &edit))
	assert.Equal(t, int64(99), edit.ChatID)
	assert.Equal(t, int64(7), edit.MessageID)
	assert.Equal(t, "Markdown", edit.ParseMode)
	assert.Equal(t, "Nueva solicitud de cita: Ana\n\n*--- ESTADO: ACCEPTED ---*", edit.Text)

	// A decision notice was queued for the push workers.
	select {
	case job := <-env.pool.Jobs():
		assert.Equal(t, notification.DecisionJob{BookingID: id, Status: model.StatusAccepted}, job)
	default:
		t.Fatal("expected a decision job to be queued")
	}
}

func TestWebhookReject(t *testing.T) {
	env := newTestEnv(t)
	id := seedPending(t, env)

	w := env.do(http.MethodPost, "/api/telegram/webhook",
		callbackBody("rechazar_"+id, "Nueva solicitud de cita: Ana"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.Equal(t, model.StatusDenied, env.bookings.get(id).Status)

	var edit sentEdit
	require.NoError(t, json.Unmarshal(env.tg.lastCall(t).body, &edit))
	assert.Contains(t, edit.Text, "*--- ESTADO: DENIED ---*")
}

func TestWebhookUnknownActionDenies(t *testing.T) {
	env := newTestEnv(t)
	id := seedPending(t, env)

	w := env.do(http.MethodPost, "/api/telegram/webhook",
		callbackBody("cancelar_"+id, "Nueva solicitud"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.StatusDenied, env.bookings.get(id).Status)
}

func TestWebhookIDWithUnderscore(t *testing.T) {
	env := newTestEnv(t)

	// Push keys can contain underscores; only the first one delimits.
	w := env.do(http.MethodPost, "/api/telegram/webhook",
		callbackBody("aceptar_-Na_bc123", "Nueva solicitud"))

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.bookings.get("-Na_bc123"))
	assert.Equal(t, model.StatusAccepted, env.bookings.get("-Na_bc123").Status)
}

func TestWebhookNoCallbackQuery(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{`{}`, `{"message":{"text":"hola"}}`, `not json`} {
		w := env.do(http.MethodPost, "/api/telegram/webhook", body)

		assert.Equal(t, http.StatusOK, w.Code, body)
		assert.Equal(t, "OK", w.Body.String(), body)
	}

	assert.Zero(t, env.bookings.len(), "no store call should occur")
	assert.Zero(t, env.tg.callCount(), "no gateway call should occur")
}

func TestWebhookStoreFailureStillAcks(t *testing.T) {
	env := newTestEnv(t)
	env.bookings.updateErr = fmt.Errorf("connection refused")

	w := env.do(http.MethodPost, "/api/telegram/webhook",
		callbackBody("aceptar_abc", "Nueva solicitud"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	// The edit is skipped when the update fails.
	assert.Zero(t, env.tg.callCount())
	select {
	case <-env.pool.Jobs():
		t.Fatal("no decision job should be queued")
	default:
	}
}

func TestWebhookEditFailureStillAcks(t *testing.T) {
	env := newTestEnv(t)
	id := seedPending(t, env)
	env.tg.fail = true

	w := env.do(http.MethodPost, "/api/telegram/webhook",
		callbackBody("aceptar_"+id, "Nueva solicitud"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	// The status update went through even though the edit failed.
	assert.Equal(t, model.StatusAccepted, env.bookings.get(id).Status)
}

// Duplicate decisions are not guarded against: the second callback
// overwrites the first.
func TestWebhookDuplicateDecisionOverwrites(t *testing.T) {
	env := newTestEnv(t)
	id := seedPending(t, env)

	env.do(http.MethodPost, "/api/telegram/webhook",
		callbackBody("aceptar_"+id, "Nueva solicitud"))
	assert.Equal(t, model.StatusAccepted, env.bookings.get(id).Status)

	env.do(http.MethodPost, "/api/telegram/webhook",
		callbackBody("rechazar_"+id, "Nueva solicitud"))
	assert.Equal(t, model.StatusDenied, env.bookings.get(id).Status)
}
