package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mroshb/anonchat_bot/internal/handlers"
)

// Admin-only reply buttons send the command text itself.
const (
	BtnAdminStats   = "/stats"
	BtnAdminReports = "/reports"
)

// MainMenuKeyboard creates the main menu keyboard
func MainMenuKeyboard(isAdmin bool) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton

	// Row 1 - Find a partner
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(handlers.BtnSearchAny),
	))

	// Row 2 - Filtered search - My gender
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(handlers.BtnSearchFilter),
		tgbotapi.NewKeyboardButton(handlers.BtnMyGender),
	))

	// Row 3 - Status - Invite - Help
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(handlers.BtnStatus),
		tgbotapi.NewKeyboardButton(handlers.BtnInvite),
		tgbotapi.NewKeyboardButton(handlers.BtnHelp),
	))

	if isAdmin {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnAdminStats),
			tgbotapi.NewKeyboardButton(BtnAdminReports),
		))
	}

	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}
