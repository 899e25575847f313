package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mroshb/anonchat_bot/internal/config"
	"github.com/mroshb/anonchat_bot/internal/handlers"
	"github.com/mroshb/anonchat_bot/internal/middleware"
	"github.com/mroshb/anonchat_bot/pkg/logger"
	"go.uber.org/zap"
)

const (
	workerQueueSize = 100
	handlerTimeout  = 15 * time.Second
	sendRetries     = 3
)

type Bot struct {
	api      *tgbotapi.BotAPI
	config   *config.Config
	handlers *handlers.HandlerManager
	limiter  *middleware.RateLimiter
	log      *zap.SugaredLogger

	// Worker pool for parallel processing
	workerChans []chan tgbotapi.Update
	ctx         context.Context
}

func InitBot(cfg *config.Config, h *handlers.HandlerManager, limiter *middleware.RateLimiter) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	if cfg.AppEnv == "development" {
		api.Debug = true
	}

	log := logger.Named("telegram")
	log.Infow("Authorized on account", "username", api.Self.UserName)

	workers := cfg.WorkerCount
	if workers <= 0 {
		workers = 1
	}

	return &Bot{
		api:         api,
		config:      cfg,
		handlers:    h,
		limiter:     limiter,
		log:         log,
		workerChans: make([]chan tgbotapi.Update, workers),
		ctx:         context.Background(),
	}, nil
}

// Run receives updates until ctx is done, then drains the workers.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx

	var wg sync.WaitGroup
	for i := range b.workerChans {
		b.workerChans[i] = make(chan tgbotapi.Update, workerQueueSize)
		wg.Add(1)
		go func(ch chan tgbotapi.Update) {
			defer wg.Done()
			b.startWorker(ch)
		}(b.workerChans[i])
	}

	b.startUpdateListener(ctx)

	for _, ch := range b.workerChans {
		close(ch)
	}
	wg.Wait()
	b.log.Info("Bot stopped receiving updates")
	return ctx.Err()
}

func (b *Bot) startUpdateListener(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	b.log.Info("Starting update listener...")
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			userID := userIDOf(update)
			if userID == 0 {
				continue
			}
			// Hashed dispatch to workers to ensure per-user ordered processing
			b.workerChans[workerIndex(userID, len(b.workerChans))] <- update
		}
	}
}

func userIDOf(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		return update.CallbackQuery.From.ID
	}
	return 0
}

func workerIndex(userID int64, workers int) int {
	idx := userID % int64(workers)
	if idx < 0 {
		idx = -idx
	}
	return int(idx)
}

func (b *Bot) startWorker(ch chan tgbotapi.Update) {
	for update := range ch {
		b.handleUpdate(update)
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Errorw("Panic in handleUpdate", "error", r)
		}
	}()

	ctx, cancel := context.WithTimeout(b.ctx, handlerTimeout)
	defer cancel()

	if update.Message != nil {
		b.handleMessage(ctx, update.Message)
	} else if update.CallbackQuery != nil {
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil || !message.Chat.IsPrivate() {
		return
	}
	userID := message.From.ID

	if !b.limiter.Allow(userID) {
		b.log.Debugw("Rate limited", "user_id", userID)
		if message.IsCommand() {
			b.sendMessage(userID, b.rateLimitedText(userID), nil)
		}
		return
	}

	if message.IsCommand() {
		action := handlers.ParseCommand(message.Command())
		if action != handlers.ActionStart {
			b.handlers.MarkSeen(ctx, userID)
		}
		b.dispatch(ctx, message, action)
		return
	}

	b.handlers.MarkSeen(ctx, userID)

	if action := handlers.ParseButton(message.Text); action != handlers.ActionNone {
		b.dispatch(ctx, message, action)
		return
	}

	b.handlers.HandleChatMessage(userID, message.MessageID, b)
}

func (b *Bot) dispatch(ctx context.Context, message *tgbotapi.Message, action handlers.Action) {
	userID := message.From.ID

	if category, ok := action.SearchCategory(); ok {
		b.handlers.HandleSearch(ctx, userID, category, b)
		return
	}

	switch action {
	case handlers.ActionStart:
		b.handlers.HandleStart(ctx, userID, message.From.FirstName, message.CommandArguments(), b)
	case handlers.ActionSearchMenu:
		b.handlers.HandleSearchMenu(userID, b)
	case handlers.ActionStop:
		b.handlers.HandleStop(ctx, userID, b)
	case handlers.ActionSkip:
		b.handlers.HandleSkip(ctx, userID, b)
	case handlers.ActionReport:
		b.handlers.HandleReport(ctx, userID, message.CommandArguments(), b)
	case handlers.ActionGenderMenu:
		b.handlers.HandleGenderMenu(ctx, userID, b)
	case handlers.ActionStatus:
		b.handlers.HandleStatus(ctx, userID, b)
	case handlers.ActionInvite:
		b.handlers.HandleInvite(userID, b)
	case handlers.ActionStats:
		b.handlers.HandleAdminStats(ctx, userID, b)
	case handlers.ActionReports:
		b.handlers.HandleAdminReports(ctx, userID, b)
	default:
		b.handlers.HandleHelp(userID, b)
	}
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID

	if !b.limiter.Allow(userID) {
		b.AnswerCallbackQuery(query.ID, b.rateLimitedText(userID), false)
		return
	}
	b.handlers.MarkSeen(ctx, userID)

	cb := handlers.ParseCallback(query.Data)

	if category, ok := cb.Action.SearchCategory(); ok {
		b.AnswerCallbackQuery(query.ID, "", false)
		b.handlers.HandleSearch(ctx, userID, category, b)
		return
	}

	switch cb.Action {
	case handlers.ActionRate:
		messageID := 0
		if query.Message != nil {
			messageID = query.Message.MessageID
		}
		b.handlers.HandleRate(ctx, userID, cb.Arg, query.ID, messageID, b)
	case handlers.ActionSetGender:
		b.AnswerCallbackQuery(query.ID, "", false)
		if query.Message != nil {
			b.EditMessageReplyMarkup(userID, query.Message.MessageID, nil)
		}
		b.handlers.HandleSetGender(ctx, userID, cb.Arg, b)
	default:
		b.log.Debugw("Unknown callback", "user_id", userID, "data", query.Data)
		b.AnswerCallbackQuery(query.ID, "", false)
	}
}

func (b *Bot) rateLimitedText(userID int64) string {
	return rateLimitedText(b.limiter.RetryAfter(userID))
}

func rateLimitedText(wait time.Duration) string {
	if wait < time.Second {
		wait = time.Second
	}
	return fmt.Sprintf(handlers.MsgRateLimited, wait)
}

func (b *Bot) sendMessage(chatID int64, text string, keyboard interface{}) int {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	switch kb := keyboard.(type) {
	case tgbotapi.ReplyKeyboardMarkup:
		msg.ReplyMarkup = kb
	case tgbotapi.InlineKeyboardMarkup:
		msg.ReplyMarkup = kb
	case tgbotapi.ReplyKeyboardRemove:
		msg.ReplyMarkup = kb
	}

	for i := 0; i < sendRetries; i++ {
		sentMsg, err := b.api.Send(msg)
		if err != nil {
			b.log.Errorw("Failed to send message", "error", err, "chat_id", chatID, "attempt", i+1)

			// If it's a network error, wait and retry
			if isTransient(err) {
				time.Sleep(time.Duration(i+1) * time.Second)
				continue
			}
			return 0
		}
		return sentMsg.MessageID
	}
	return 0
}

func isTransient(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "network is unreachable")
}

func (b *Bot) SendMessage(chatID int64, text string, keyboard interface{}) int {
	return b.sendMessage(chatID, text, keyboard)
}

// CopyMessage relays any message type without the "forwarded from" header,
// which would reveal the sender.
func (b *Bot) CopyMessage(toChatID, fromChatID int64, messageID int) error {
	_, err := b.api.CopyMessage(tgbotapi.NewCopyMessage(toChatID, fromChatID, messageID))
	return err
}

func (b *Bot) SendDocument(chatID int64, fileName string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: fileName, Bytes: data})
	doc.Caption = caption
	_, err := b.api.Send(doc)
	return err
}

func (b *Bot) AnswerCallbackQuery(queryID string, text string, showAlert bool) {
	callback := tgbotapi.NewCallback(queryID, text)
	callback.ShowAlert = showAlert
	if _, err := b.api.Request(callback); err != nil {
		b.log.Errorw("Failed to answer callback query", "error", err, "query_id", queryID)
	}
}

// EditMessageReplyMarkup replaces an inline keyboard; nil removes it.
func (b *Bot) EditMessageReplyMarkup(chatID int64, messageID int, keyboard interface{}) {
	if messageID == 0 {
		return
	}
	kb, ok := keyboard.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		kb = tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	}
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, kb)
	if _, err := b.api.Request(edit); err != nil {
		b.log.Warnw("Failed to edit reply markup", "error", err, "chat_id", chatID, "message_id", messageID)
	}
}

func (b *Bot) GetMainMenuKeyboard(isAdmin bool) interface{} {
	return MainMenuKeyboard(isAdmin)
}

func (b *Bot) Username() string {
	return b.api.Self.UserName
}
