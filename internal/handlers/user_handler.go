package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mroshb/anonchat_bot/internal/matchmaking"
	"github.com/mroshb/anonchat_bot/internal/models"
	"github.com/mroshb/anonchat_bot/internal/security"
	apperrors "github.com/mroshb/anonchat_bot/pkg/errors"
	"github.com/mroshb/anonchat_bot/pkg/utils"
)

const referralPrefix = "ref_"

// ParseReferral extracts the referrer's Telegram ID from a /start payload.
func ParseReferral(payload string) (int64, bool) {
	payload = utils.NormalizeDigits(strings.TrimSpace(payload))
	if !strings.HasPrefix(payload, referralPrefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(payload, referralPrefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// InviteLink is the deep link that credits userID when a new user opens it.
func InviteLink(botUsername string, userID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=%s%d", botUsername, referralPrefix, userID)
}

// HandleStart registers the user and credits the referrer on first contact.
func (h *HandlerManager) HandleStart(ctx context.Context, userID int64, firstName, payload string, bot BotInterface) {
	now := h.Clock.Now()
	user, created, err := h.UserRepo.Register(ctx, userID, security.SanitizeName(firstName), now)
	if err != nil {
		h.log.Errorw("Failed to register user", "user_id", userID, "error", err)
		bot.SendMessage(userID, MsgError, nil)
		return
	}
	h.lastSeen.Store(userID, now)

	menu := bot.GetMainMenuKeyboard(h.isAdmin(userID))
	if !created {
		bot.SendMessage(userID, fmt.Sprintf(MsgWelcomeBack, BtnSearchAny), menu)
		return
	}

	h.log.Infow("New user registered", "user_id", userID)
	bot.SendMessage(userID, fmt.Sprintf(MsgWelcome, BtnSearchAny), menu)

	referrerID, ok := ParseReferral(payload)
	if !ok {
		return
	}
	credited, err := h.UserRepo.CreditReferral(ctx, user.TelegramID, referrerID)
	if err != nil {
		h.log.Errorw("Failed to credit referral", "user_id", userID, "referrer_id", referrerID, "error", err)
		return
	}
	if !credited {
		return
	}

	h.invalidate(ctx, referrerID)
	h.log.Infow("Referral credited", "user_id", userID, "referrer_id", referrerID)

	referrer, err := h.UserRepo.GetByTelegramID(ctx, referrerID)
	if err != nil {
		h.log.Warnw("Failed to load referrer", "referrer_id", referrerID, "error", err)
		return
	}
	bot.SendMessage(referrerID, fmt.Sprintf(MsgReferralThanks, referrer.ReferralCount), nil)
}

// loadUser fetches a registered user, replying with a hint when they are not.
func (h *HandlerManager) loadUser(ctx context.Context, userID int64, bot BotInterface) (*models.User, bool) {
	user, err := h.UserRepo.GetByTelegramID(ctx, userID)
	if err == nil {
		return user, true
	}
	if apperrors.CodeOf(err) == apperrors.ErrCodeNotFound {
		bot.SendMessage(userID, MsgNotRegistered, nil)
	} else {
		h.log.Errorw("Failed to load user", "user_id", userID, "error", err)
		bot.SendMessage(userID, MsgError, nil)
	}
	return nil, false
}

func genderLabel(gender string) string {
	switch gender {
	case models.GenderMale:
		return BtnMale
	case models.GenderFemale:
		return BtnFemale
	}
	return BtnClear
}

func (h *HandlerManager) HandleGenderMenu(ctx context.Context, userID int64, bot BotInterface) {
	user, ok := h.loadUser(ctx, userID, bot)
	if !ok {
		return
	}
	bot.SendMessage(userID, fmt.Sprintf(MsgChooseGender, genderLabel(user.Gender)), GenderKeyboard())
}

// HandleSetGender stores the choice from the gender keyboard. arg is "male",
// "female" or "clear".
func (h *HandlerManager) HandleSetGender(ctx context.Context, userID int64, arg string, bot BotInterface) {
	gender := arg
	if arg == "clear" {
		gender = models.GenderUnset
	}

	if err := h.UserRepo.SetGender(ctx, userID, gender); err != nil {
		if apperrors.CodeOf(err) == apperrors.ErrCodeNotFound {
			bot.SendMessage(userID, MsgNotRegistered, nil)
			return
		}
		h.log.Errorw("Failed to set gender", "user_id", userID, "error", err)
		bot.SendMessage(userID, MsgError, nil)
		return
	}

	// The new gender only affects future queue entries.
	h.invalidate(ctx, userID)
	bot.SendMessage(userID, fmt.Sprintf(MsgGenderSaved, genderLabel(gender)), nil)
}

func (h *HandlerManager) HandleStatus(ctx context.Context, userID int64, bot BotInterface) {
	user, ok := h.loadUser(ctx, userID, bot)
	if !ok {
		return
	}

	format := MsgStatusIdle
	switch h.Engine.State(matchmaking.UserID(userID)) {
	case matchmaking.StateSearching:
		format = MsgStatusWaiting
	case matchmaking.StatePaired:
		format = MsgStatusPaired
	}
	bot.SendMessage(userID, fmt.Sprintf(format, user.ReferralCount, user.Karma), nil)
}

func (h *HandlerManager) HandleInvite(userID int64, bot BotInterface) {
	bot.SendMessage(userID, fmt.Sprintf(MsgInvite, InviteLink(bot.Username(), userID)), nil)
}

func (h *HandlerManager) HandleHelp(userID int64, bot BotInterface) {
	bot.SendMessage(userID, fmt.Sprintf(MsgHelp, h.Config.FilterMinReferrals, h.Config.InactivityThreshold), nil)
}
