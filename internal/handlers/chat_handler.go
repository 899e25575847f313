package handlers

import (
	"errors"

	"github.com/mroshb/anonchat_bot/internal/matchmaking"
)

// HandleChatMessage relays a non-command message to the sender's partner.
func (h *HandlerManager) HandleChatMessage(userID int64, messageID int, bot BotInterface) {
	partner, err := h.Engine.RouteMessage(matchmaking.UserID(userID))
	if errors.Is(err, matchmaking.ErrNotPaired) {
		bot.SendMessage(userID, MsgNotInChat, nil)
		return
	}
	if err != nil {
		h.log.Errorw("Failed to route message", "user_id", userID, "error", err)
		return
	}

	if err := bot.CopyMessage(int64(partner), userID, messageID); err != nil {
		h.log.Warnw("Failed to relay message", "from", userID, "to", partner, "error", err)
		bot.SendMessage(userID, MsgUnsupported, nil)
		return
	}

	h.log.Debugw("Message relayed", "from", userID, "to", partner)
}
