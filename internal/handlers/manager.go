package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/mroshb/anonchat_bot/internal/config"
	"github.com/mroshb/anonchat_bot/internal/matchmaking"
	"github.com/mroshb/anonchat_bot/internal/repositories"
	"github.com/mroshb/anonchat_bot/pkg/clock"
	"github.com/mroshb/anonchat_bot/pkg/logger"
	"go.uber.org/zap"
)

// Bot interface to avoid circular dependency
type BotInterface interface {
	SendMessage(chatID int64, text string, keyboard interface{}) int
	CopyMessage(toChatID, fromChatID int64, messageID int) error
	SendDocument(chatID int64, fileName string, data []byte, caption string) error
	AnswerCallbackQuery(queryID string, text string, showAlert bool)
	EditMessageReplyMarkup(chatID int64, messageID int, keyboard interface{})
	GetMainMenuKeyboard(isAdmin bool) interface{}
	Username() string
}

// AttributeInvalidator drops cached matchmaking attributes after a profile
// change. The Redis attribute cache implements it.
type AttributeInvalidator interface {
	Invalidate(ctx context.Context, user matchmaking.UserID)
}

// seenThrottle is the minimum gap between last-seen writes for one user.
const seenThrottle = 5 * time.Minute

type HandlerManager struct {
	Config         *config.Config
	Engine         *matchmaking.Engine
	Store          matchmaking.UserStore
	UserRepo       *repositories.UserRepository
	ReportRepo     *repositories.ReportRepository
	SessionLogRepo *repositories.SessionLogRepository
	Cache          AttributeInvalidator
	Clock          clock.Clock

	log      *zap.SugaredLogger
	lastSeen sync.Map // telegram id -> time.Time of last persisted touch
}

func NewHandlerManager(
	cfg *config.Config,
	engine *matchmaking.Engine,
	store matchmaking.UserStore,
	userRepo *repositories.UserRepository,
	reportRepo *repositories.ReportRepository,
	sessionLogRepo *repositories.SessionLogRepository,
	cache AttributeInvalidator,
	clk clock.Clock,
) *HandlerManager {
	if clk == nil {
		clk = clock.Real()
	}
	return &HandlerManager{
		Config:         cfg,
		Engine:         engine,
		Store:          store,
		UserRepo:       userRepo,
		ReportRepo:     reportRepo,
		SessionLogRepo: sessionLogRepo,
		Cache:          cache,
		Clock:          clk,
		log:            logger.Named("handlers"),
	}
}

func (h *HandlerManager) isAdmin(userID int64) bool {
	return h.Config.IsAdmin(userID)
}

func (h *HandlerManager) invalidate(ctx context.Context, userID int64) {
	if h.Cache != nil {
		h.Cache.Invalidate(ctx, matchmaking.UserID(userID))
	}
}

// MarkSeen persists user activity for the idle nudge, at most once per
// seenThrottle per user.
func (h *HandlerManager) MarkSeen(ctx context.Context, userID int64) {
	now := h.Clock.Now()
	if prev, ok := h.lastSeen.Load(userID); ok && now.Sub(prev.(time.Time)) < seenThrottle {
		return
	}
	if err := h.UserRepo.Touch(ctx, userID, now); err != nil {
		h.log.Warnw("Failed to update last seen", "user_id", userID, "error", err)
		return
	}
	h.lastSeen.Store(userID, now)
}

// NewSessionRecorder returns an Engine OnSessionEnded hook that writes the
// session history.
func NewSessionRecorder(repo *repositories.SessionLogRepository, timeout time.Duration) func(matchmaking.EndedSession) {
	log := logger.Named("session_log")
	return func(es matchmaking.EndedSession) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := repo.Record(ctx, es); err != nil {
			log.Errorw("Failed to record ended session", "session_id", es.ID, "error", err)
		}
	}
}
