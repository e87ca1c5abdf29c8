package server

import (
	"FolderVaultBot/internal/logging"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jsonParser struct{}

func (jsonParser) HandleUpdate(r *http.Request) (*tgbotapi.Update, error) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		return nil, errors.New("decode update")
	}
	return &update, nil
}

type staticStats map[string]interface{}

func (s staticStats) GetStats() map[string]interface{} { return s }

func newTestRouter(path string, got *[]tgbotapi.Update) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(path, jsonParser{}, func(u tgbotapi.Update) {
		*got = append(*got, u)
	}, staticStats{"active_sessions": 2}, logging.Discard())
}

func TestWebhook_DispatchesUpdate(t *testing.T) {
	var got []tgbotapi.Update
	r := newTestRouter("", &got)

	body := `{"update_id": 7, "message": {"message_id": 1, "chat": {"id": 42}, "text": "hi"}}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, DefaultWebhookPath, strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, got, 1)
	assert.Equal(t, 7, got[0].UpdateID)
	assert.Equal(t, int64(42), got[0].Message.Chat.ID)
}

func TestWebhook_BadPayload(t *testing.T) {
	var got []tgbotapi.Update
	r := newTestRouter("/hook", &got)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, got)
}

func TestWebhook_WrongMethod(t *testing.T) {
	var got []tgbotapi.Update
	r := newTestRouter("", &got)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, DefaultWebhookPath, nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, got)
}

func TestHealthz(t *testing.T) {
	var got []tgbotapi.Update
	r := newTestRouter("", &got)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status   string         `json:"status"`
		Sessions map[string]int `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 2, body.Sessions["active_sessions"])
}
