package telegram

import (
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mroshb/anonchat_bot/internal/handlers"
	"github.com/stretchr/testify/assert"
)

func TestUserIDOf(t *testing.T) {
	user := &tgbotapi.User{ID: 77}

	assert.Equal(t, int64(77), userIDOf(tgbotapi.Update{Message: &tgbotapi.Message{From: user}}))
	assert.Equal(t, int64(77), userIDOf(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{From: user}}))
	assert.Zero(t, userIDOf(tgbotapi.Update{Message: &tgbotapi.Message{}}))
	assert.Zero(t, userIDOf(tgbotapi.Update{}))
}

func TestWorkerIndex_StablePerUser(t *testing.T) {
	for _, id := range []int64{0, 1, 7, 8, 123456789, -42} {
		idx := workerIndex(id, 8)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 8)
		assert.Equal(t, idx, workerIndex(id, 8))
	}
	assert.Equal(t, workerIndex(3, 8), workerIndex(11, 8))
}

func TestMainMenuKeyboard_ButtonsParse(t *testing.T) {
	kb := MainMenuKeyboard(false)
	for _, row := range kb.Keyboard {
		for _, btn := range row {
			assert.NotEqual(t, handlers.ActionNone, handlers.ParseButton(btn.Text), btn.Text)
		}
	}

	admin := MainMenuKeyboard(true)
	assert.Len(t, admin.Keyboard, len(kb.Keyboard)+1)
	last := admin.Keyboard[len(admin.Keyboard)-1]
	assert.Equal(t, handlers.ActionStats, handlers.ParseCommand(last[0].Text[1:]))
	assert.Equal(t, handlers.ActionReports, handlers.ParseCommand(last[1].Text[1:]))
}

func TestRateLimitedText(t *testing.T) {
	assert.Equal(t, "⏳ Slow down a little. Try again in 40s.", rateLimitedText(40*time.Second))
	assert.Equal(t, "⏳ Slow down a little. Try again in 1s.", rateLimitedText(0))
}
