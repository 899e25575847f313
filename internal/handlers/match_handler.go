package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/mroshb/anonchat_bot/internal/matchmaking"
	"github.com/mroshb/anonchat_bot/internal/models"
	"github.com/mroshb/anonchat_bot/internal/security"
)

// HandleSearchMenu shows the category picker for a filtered search.
func (h *HandlerManager) HandleSearchMenu(userID int64, bot BotInterface) {
	bot.SendMessage(userID, MsgChooseFilter, SearchFilterKeyboard())
}

// HandleSearch queues the user or pairs them right away. Gendered categories
// need FilterMinReferrals referrals unless the user is an admin.
func (h *HandlerManager) HandleSearch(ctx context.Context, userID int64, category matchmaking.Category, bot BotInterface) {
	uid := matchmaking.UserID(userID)

	if category != matchmaking.CategoryAny && !h.isAdmin(userID) {
		attrs, err := h.Store.GetAttributes(ctx, uid)
		if err != nil {
			h.log.Errorw("Failed to load attributes", "user_id", userID, "error", err)
			bot.SendMessage(userID, MsgError, nil)
			return
		}
		if attrs.ReferralTier < h.Config.FilterMinReferrals {
			bot.SendMessage(userID, fmt.Sprintf(MsgFilterLocked,
				h.Config.FilterMinReferrals, attrs.ReferralTier, InviteLink(bot.Username(), userID)), nil)
			return
		}
	}

	wasSearching := h.Engine.State(uid) == matchmaking.StateSearching

	res, err := h.Engine.Search(ctx, uid, category)
	switch {
	case errors.Is(err, matchmaking.ErrAlreadyPaired):
		bot.SendMessage(userID, MsgAlreadyPaired, nil)
		return
	case err != nil:
		h.log.Errorw("Search failed", "user_id", userID, "category", category, "error", err)
		bot.SendMessage(userID, MsgError, nil)
		return
	}

	if res.Paired() {
		h.notifyPaired(ctx, userID, int64(res.Partner), bot)
		return
	}

	if wasSearching {
		bot.SendMessage(userID, MsgStillSearching, SearchingKeyboard())
		return
	}
	bot.SendMessage(userID, MsgSearching, SearchingKeyboard())
}

// HandleStop leaves the queue or the current chat.
func (h *HandlerManager) HandleStop(ctx context.Context, userID int64, bot BotInterface) {
	uid := matchmaking.UserID(userID)

	if err := h.Engine.Cancel(uid); err == nil {
		bot.SendMessage(userID, MsgSearchCanceled, bot.GetMainMenuKeyboard(h.isAdmin(userID)))
		return
	}

	partner, had := h.Engine.Stop(uid)
	if !had {
		bot.SendMessage(userID, MsgNothingToStop, bot.GetMainMenuKeyboard(h.isAdmin(userID)))
		return
	}

	h.sendEnded(userID, MsgStopped, true, bot)
	h.sendEnded(int64(partner), MsgPartnerLeft, true, bot)
}

// HandleSkip ends the current chat, if any, and searches again.
func (h *HandlerManager) HandleSkip(ctx context.Context, userID int64, bot BotInterface) {
	res, err := h.Engine.Skip(ctx, matchmaking.UserID(userID))
	if err != nil {
		h.log.Errorw("Skip failed", "user_id", userID, "error", err)
		bot.SendMessage(userID, MsgError, nil)
		return
	}

	if res.HadPartner {
		h.sendEnded(int64(res.PreviousPartner), MsgPartnerSkipped, true, bot)
		bot.SendMessage(userID, MsgRatePrompt, RatingKeyboard())
	}

	if res.Match.Paired() {
		h.notifyPaired(ctx, userID, int64(res.Match.Partner), bot)
		return
	}
	bot.SendMessage(userID, MsgSearching, SearchingKeyboard())
}

// HandleReport blocks the current partner, ends the chat and files a report.
func (h *HandlerManager) HandleReport(ctx context.Context, userID int64, reason string, bot BotInterface) {
	reason = security.SanitizeReason(reason)

	res, err := h.Engine.Report(ctx, matchmaking.UserID(userID), reason)
	if errors.Is(err, matchmaking.ErrNotPaired) {
		bot.SendMessage(userID, MsgNotInChat, nil)
		return
	}
	if err != nil {
		// The session is gone and the block holds in memory; only the
		// persisted copy is missing.
		h.log.Errorw("Failed to persist block", "user_id", userID, "partner_id", res.Partner, "error", err)
	}

	report := &models.Report{
		ReporterID: userID,
		ReportedID: int64(res.Partner),
		SessionID:  res.SessionID,
		Reason:     res.Reason,
	}
	if err := h.ReportRepo.Create(ctx, report); err != nil {
		h.log.Errorw("Failed to save report", "user_id", userID, "partner_id", res.Partner, "error", err)
	}

	h.sendEnded(userID, MsgReported, false, bot)
	h.sendEnded(int64(res.Partner), MsgReportedNotice, true, bot)
}

// HandleRate applies a 👍/👎 from the rating keyboard. arg is "up" or "down".
func (h *HandlerManager) HandleRate(ctx context.Context, userID int64, arg, queryID string, messageID int, bot BotInterface) {
	partner, err := h.Engine.RatePartner(ctx, matchmaking.UserID(userID), arg == "up")
	if errors.Is(err, matchmaking.ErrNothingToRate) {
		bot.AnswerCallbackQuery(queryID, MsgNothingToRate, false)
		bot.EditMessageReplyMarkup(userID, messageID, nil)
		return
	}
	if err != nil {
		h.log.Errorw("Failed to rate partner", "user_id", userID, "partner_id", partner, "error", err)
		bot.AnswerCallbackQuery(queryID, MsgError, false)
		return
	}

	bot.AnswerCallbackQuery(queryID, MsgRated, false)
	bot.EditMessageReplyMarkup(userID, messageID, nil)
}

// NotifyExpired tells both users of every reaped session that it closed.
func (h *HandlerManager) NotifyExpired(pairs []matchmaking.Pair, bot BotInterface) {
	for _, p := range pairs {
		h.sendEnded(int64(p.A), MsgChatExpired, true, bot)
		h.sendEnded(int64(p.B), MsgChatExpired, true, bot)
	}
}

func (h *HandlerManager) sendEnded(userID int64, text string, rate bool, bot BotInterface) {
	bot.SendMessage(userID, text, bot.GetMainMenuKeyboard(h.isAdmin(userID)))
	if rate {
		bot.SendMessage(userID, MsgRatePrompt, RatingKeyboard())
	}
}

func (h *HandlerManager) notifyPaired(ctx context.Context, requester, partner int64, bot BotInterface) {
	bot.SendMessage(requester, fmt.Sprintf(MsgPaired, h.partnerName(ctx, partner)), ChatKeyboard())
	bot.SendMessage(partner, fmt.Sprintf(MsgPaired, h.partnerName(ctx, requester)), ChatKeyboard())
}

func (h *HandlerManager) partnerName(ctx context.Context, userID int64) string {
	user, err := h.UserRepo.GetByTelegramID(ctx, userID)
	if err != nil {
		h.log.Warnw("Failed to load partner profile", "user_id", userID, "error", err)
		return DisplayName("", 0, 0)
	}
	return DisplayName(user.FirstName, user.Karma, h.Config.GoodKarmaThreshold)
}
