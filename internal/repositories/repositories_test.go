package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/mroshb/anonchat_bot/internal/matchmaking"
	"github.com/mroshb/anonchat_bot/internal/models"
	"github.com/mroshb/anonchat_bot/internal/repositories"
	apperrors "github.com/mroshb/anonchat_bot/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var day = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	})
	require.NoError(t, err)

	// a single connection keeps every query on the same in-memory database
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(
		&models.User{},
		&models.Block{},
		&models.Report{},
		&models.ChatSessionLog{},
	))
	return database
}

func TestUserRepository_RegisterUpserts(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewUserRepository(setupTestDB(t))

	u, created, err := repo.Register(ctx, 1001, "Sara", day)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Sara", u.FirstName)

	require.NoError(t, repo.SetGender(ctx, 1001, models.GenderFemale))

	u, created, err = repo.Register(ctx, 1001, "Sara B", day.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Sara B", u.FirstName)
	assert.Equal(t, models.GenderFemale, u.Gender, "re-registering keeps the profile")
	assert.True(t, u.LastSeen.Equal(day.Add(time.Hour)))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUserRepository_GetByTelegramIDNotFound(t *testing.T) {
	repo := repositories.NewUserRepository(setupTestDB(t))

	_, err := repo.GetByTelegramID(context.Background(), 42)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(err))
}

func TestUserRepository_CreditReferral(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewUserRepository(setupTestDB(t))

	_, _, err := repo.Register(ctx, 1, "Referrer", day)
	require.NoError(t, err)
	_, _, err = repo.Register(ctx, 2, "Invitee", day)
	require.NoError(t, err)
	_, _, err = repo.Register(ctx, 3, "Other", day)
	require.NoError(t, err)

	tests := []struct {
		name     string
		user     int64
		referrer int64
		want     bool
	}{
		{"first referral", 2, 1, true},
		{"second referral for same user", 2, 3, false},
		{"self referral", 3, 3, false},
		{"unknown referrer", 3, 999, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.CreditReferral(ctx, tt.user, tt.referrer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	referrer, err := repo.GetByTelegramID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, referrer.ReferralCount)

	other, err := repo.GetByTelegramID(ctx, 3)
	require.NoError(t, err)
	assert.Zero(t, other.ReferralCount, "rolled back increment must not stick")
	assert.Zero(t, other.ReferrerID)

	attrs, err := repo.GetAttributes(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, attrs.ReferralTier)
}

func TestUserRepository_SetGender(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewUserRepository(setupTestDB(t))
	_, _, err := repo.Register(ctx, 5, "Ali", day)
	require.NoError(t, err)

	require.NoError(t, repo.SetGender(ctx, 5, models.GenderMale))
	attrs, err := repo.GetAttributes(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, matchmaking.CategoryMale, attrs.Category)

	err = repo.SetGender(ctx, 5, "robot")
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))

	err = repo.SetGender(ctx, 6, models.GenderMale)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(err))
}

func TestUserRepository_AttributesForUnknownUser(t *testing.T) {
	repo := repositories.NewUserRepository(setupTestDB(t))

	attrs, err := repo.GetAttributes(context.Background(), 77)
	require.NoError(t, err)
	assert.Equal(t, matchmaking.CategoryAny, attrs.Category)
	assert.Empty(t, attrs.BlockList)
}

func TestUserRepository_BlocksAndKarma(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewUserRepository(setupTestDB(t))
	_, _, err := repo.Register(ctx, 10, "A", day)
	require.NoError(t, err)

	require.NoError(t, repo.AddBlock(ctx, 10, 20))
	require.NoError(t, repo.AddBlock(ctx, 10, 20))
	require.NoError(t, repo.AddBlock(ctx, 10, 30))

	require.NoError(t, repo.IncrementKarma(ctx, 10, true))
	require.NoError(t, repo.IncrementKarma(ctx, 10, true))
	require.NoError(t, repo.IncrementKarma(ctx, 10, false))

	attrs, err := repo.GetAttributes(ctx, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []matchmaking.UserID{20, 30}, attrs.BlockList)
	assert.Equal(t, int64(1), attrs.Karma)
}

func TestUserRepository_IdleNudgeLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewUserRepository(setupTestDB(t))

	_, _, err := repo.Register(ctx, 1, "Old", day.Add(-48*time.Hour))
	require.NoError(t, err)
	_, _, err = repo.Register(ctx, 2, "Older", day.Add(-72*time.Hour))
	require.NoError(t, err)
	_, _, err = repo.Register(ctx, 3, "Fresh", day)
	require.NoError(t, err)

	cutoff := day.Add(-24 * time.Hour)
	idle, err := repo.FindIdleUnnotified(ctx, cutoff, 10)
	require.NoError(t, err)
	require.Len(t, idle, 2)
	assert.Equal(t, int64(2), idle[0].TelegramID, "oldest first")

	require.NoError(t, repo.MarkIdleNotified(ctx, []int64{1, 2}))
	idle, err = repo.FindIdleUnnotified(ctx, cutoff, 10)
	require.NoError(t, err)
	assert.Empty(t, idle)

	// activity re-arms the nudge
	require.NoError(t, repo.Touch(ctx, 1, day.Add(-30*time.Hour)))
	idle, err = repo.FindIdleUnnotified(ctx, cutoff, 10)
	require.NoError(t, err)
	require.Len(t, idle, 1)
	assert.Equal(t, int64(1), idle[0].TelegramID)

	active, err := repo.CountActiveSince(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), active)
}

func TestReportRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewReportRepository(setupTestDB(t))

	for _, r := range []models.Report{
		{ReporterID: 1, ReportedID: 9, Reason: "spam", SessionID: "s1"},
		{ReporterID: 2, ReportedID: 9, Reason: "abuse", SessionID: "s2"},
		{ReporterID: 3, ReportedID: 8, Reason: "spam", SessionID: "s3"},
	} {
		r := r
		require.NoError(t, repo.Create(ctx, &r))
	}

	since := time.Now().UTC().Add(-time.Hour)

	count, err := repo.CountSince(ctx, since)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	list, err := repo.ListSince(ctx, since, 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	top, err := repo.TopReported(ctx, since, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, repositories.ReportedCount{ReportedID: 9, Count: 2}, top[0])
	assert.Equal(t, repositories.ReportedCount{ReportedID: 8, Count: 1}, top[1])
}

func TestSessionLogRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewSessionLogRepository(setupTestDB(t))

	ended := []matchmaking.EndedSession{
		{
			Session: matchmaking.Session{ID: "a", UserA: 1, UserB: 2, StartedAt: day},
			Reason:  matchmaking.ReasonUserStopped, EndedBy: 1, EndedAt: day.Add(time.Minute),
		},
		{
			Session: matchmaking.Session{ID: "b", UserA: 3, UserB: 4, StartedAt: day},
			Reason:  matchmaking.ReasonInactivity, EndedBy: 3, EndedAt: day.Add(11 * time.Minute),
		},
		{
			Session: matchmaking.Session{ID: "c", UserA: 5, UserB: 6, StartedAt: day},
			Reason:  matchmaking.ReasonInactivity, EndedBy: 5, EndedAt: day.Add(12 * time.Minute),
		},
	}
	for _, es := range ended {
		require.NoError(t, repo.Record(ctx, es))
	}
	require.NoError(t, repo.Record(ctx, ended[0]), "duplicate record is ignored")

	count, err := repo.CountSince(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	byReason, err := repo.CountByReasonSince(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		string(matchmaking.ReasonUserStopped): 1,
		string(matchmaking.ReasonInactivity):  2,
	}, byReason)
}
