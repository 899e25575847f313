package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/mroshb/anonchat_bot/internal/models"
	"github.com/mroshb/anonchat_bot/internal/reports"
)

const (
	statsWindow       = 24 * time.Hour
	reportsWindow     = 7 * 24 * time.Hour
	reportsExportMax  = 1000
	mostReportedLimit = 20
)

// HandleAdminStats shows bot statistics
func (h *HandlerManager) HandleAdminStats(ctx context.Context, userID int64, bot BotInterface) {
	if !h.isAdmin(userID) {
		bot.SendMessage(userID, MsgAdminOnly, nil)
		return
	}

	since := h.Clock.Now().Add(-statsWindow)

	totalUsers, err := h.UserRepo.Count(ctx)
	if err != nil {
		h.log.Errorw("Failed to count users", "error", err)
		bot.SendMessage(userID, MsgError, nil)
		return
	}
	activeUsers, err := h.UserRepo.CountActiveSince(ctx, since)
	if err != nil {
		h.log.Errorw("Failed to count active users", "error", err)
		bot.SendMessage(userID, MsgError, nil)
		return
	}
	ended, err := h.SessionLogRepo.CountSince(ctx, since)
	if err != nil {
		h.log.Errorw("Failed to count sessions", "error", err)
		bot.SendMessage(userID, MsgError, nil)
		return
	}
	byReason, err := h.SessionLogRepo.CountByReasonSince(ctx, since)
	if err != nil {
		h.log.Errorw("Failed to count sessions by reason", "error", err)
		bot.SendMessage(userID, MsgError, nil)
		return
	}
	reportsFiled, err := h.ReportRepo.CountSince(ctx, since)
	if err != nil {
		h.log.Errorw("Failed to count reports", "error", err)
		bot.SendMessage(userID, MsgError, nil)
		return
	}

	stats := h.Engine.Stats()
	bot.SendMessage(userID, fmt.Sprintf(MsgAdminStats,
		totalUsers, activeUsers,
		stats.Waiting, stats.ActiveSessions,
		ended,
		byReason[models.EndReasonUserStopped],
		byReason[models.EndReasonUserSkipped],
		byReason[models.EndReasonReported],
		byReason[models.EndReasonInactivity],
		reportsFiled,
	), nil)
}

// HandleAdminReports sends the last week's reports as an xlsx document.
func (h *HandlerManager) HandleAdminReports(ctx context.Context, userID int64, bot BotInterface) {
	if !h.isAdmin(userID) {
		bot.SendMessage(userID, MsgAdminOnly, nil)
		return
	}

	now := h.Clock.Now()
	since := now.Add(-reportsWindow)

	list, err := h.ReportRepo.ListSince(ctx, since, reportsExportMax)
	if err != nil {
		h.log.Errorw("Failed to list reports", "error", err)
		bot.SendMessage(userID, MsgError, nil)
		return
	}
	if len(list) == 0 {
		bot.SendMessage(userID, MsgNoReports, nil)
		return
	}

	ranking, err := h.ReportRepo.TopReported(ctx, since, mostReportedLimit)
	if err != nil {
		h.log.Errorw("Failed to rank reported users", "error", err)
		bot.SendMessage(userID, MsgError, nil)
		return
	}

	buf, err := reports.Workbook(list, ranking, now)
	if err != nil {
		h.log.Errorw("Failed to build reports workbook", "error", err)
		bot.SendMessage(userID, MsgError, nil)
		return
	}

	caption := fmt.Sprintf("🚩 %d reports since %s", len(list), since.UTC().Format(time.DateOnly))
	if err := bot.SendDocument(userID, reports.FileName(now), buf.Bytes(), caption); err != nil {
		h.log.Errorw("Failed to send reports workbook", "error", err)
		bot.SendMessage(userID, MsgError, nil)
	}
}
