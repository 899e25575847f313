package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mroshb/anonchat_bot/internal/matchmaking"
)

// ChatKeyboard is the reply keyboard shown while paired.
func ChatKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnSkip),
			tgbotapi.NewKeyboardButton(BtnStop),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnReport),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// SearchingKeyboard is the reply keyboard shown while waiting in the queue.
func SearchingKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnStop),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// RatingKeyboard asks for a 👍/👎 on the last partner.
func RatingKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(BtnRateUp, CbRate+"up"),
			tgbotapi.NewInlineKeyboardButtonData(BtnRateDown, CbRate+"down"),
		),
	)
}

// SearchFilterKeyboard offers the three search categories.
func SearchFilterKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(BtnAnyone, CbSearch+string(matchmaking.CategoryAny)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(BtnMale, CbSearch+string(matchmaking.CategoryMale)),
			tgbotapi.NewInlineKeyboardButtonData(BtnFemale, CbSearch+string(matchmaking.CategoryFemale)),
		),
	)
}

// GenderKeyboard lets a user set or clear their own gender.
func GenderKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(BtnMale, CbGender+"male"),
			tgbotapi.NewInlineKeyboardButtonData(BtnFemale, CbGender+"female"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(BtnClear, CbGender+"clear"),
		),
	)
}
