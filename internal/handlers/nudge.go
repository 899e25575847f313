package handlers

import (
	"context"

	"github.com/mroshb/anonchat_bot/internal/matchmaking"
)

const nudgeBatchSize = 100

// NudgeIdleUsers sends one "come back" message to every user idle for longer
// than IdleNudgeAfter and returns how many were nudged. The flag is cleared
// again by the user's next activity.
func (h *HandlerManager) NudgeIdleUsers(ctx context.Context, bot BotInterface) (int, error) {
	cutoff := h.Clock.Now().Add(-h.Config.IdleNudgeAfter)
	nudged := 0

	for {
		users, err := h.UserRepo.FindIdleUnnotified(ctx, cutoff, nudgeBatchSize)
		if err != nil {
			return nudged, err
		}
		if len(users) == 0 {
			return nudged, nil
		}

		ids := make([]int64, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.TelegramID)
			if h.Engine.State(matchmaking.UserID(u.TelegramID)) != matchmaking.StateIdle {
				continue
			}
			bot.SendMessage(u.TelegramID, MsgIdleNudge, nil)
			nudged++
		}

		if err := h.UserRepo.MarkIdleNotified(ctx, ids); err != nil {
			return nudged, err
		}
		if len(users) < nudgeBatchSize {
			return nudged, nil
		}
	}
}

// RunIdleNudger calls NudgeIdleUsers every IdleNudgeInterval until ctx is
// done.
func (h *HandlerManager) RunIdleNudger(ctx context.Context, bot BotInterface) error {
	ticker := h.Clock.NewTicker(h.Config.IdleNudgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := h.NudgeIdleUsers(ctx, bot)
			if err != nil {
				h.log.Errorw("Idle nudge failed", "error", err)
				continue
			}
			if n > 0 {
				h.log.Infow("Nudged idle users", "count", n)
			}
		}
	}
}
