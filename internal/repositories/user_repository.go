package repositories

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/mroshb/anonchat_bot/internal/matchmaking"
	"github.com/mroshb/anonchat_bot/internal/models"
	"github.com/mroshb/anonchat_bot/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Register upserts the user on /start. The boolean reports whether the row
// was created by this call.
func (r *UserRepository) Register(ctx context.Context, telegramID int64, firstName string, now time.Time) (*models.User, bool, error) {
	user := &models.User{
		TelegramID: telegramID,
		FirstName:  firstName,
		LastSeen:   now,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "telegram_id"}},
			DoNothing: true,
		}).
		Create(user)
	if result.Error != nil {
		return nil, false, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to register user")
	}
	created := result.RowsAffected == 1

	if !created {
		err := r.db.WithContext(ctx).Model(&models.User{}).
			Where("telegram_id = ?", telegramID).
			UpdateColumns(map[string]interface{}{
				"first_name":    firstName,
				"last_seen":     now,
				"idle_notified": false,
			}).Error
		if err != nil {
			return nil, false, errors.Wrap(err, errors.ErrCodeInternalError, "failed to refresh user")
		}
	}

	stored, err := r.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

// GetByTelegramID retrieves a user by Telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user)

	if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get user")
	}

	return &user, nil
}

// CreditReferral links a newly registered user to the referrer and bumps the
// referrer's count. A user can be referred at most once and never by
// themselves; in those cases, or when the referrer is unknown, it returns false.
func (r *UserRepository) CreditReferral(ctx context.Context, telegramID, referrerID int64) (bool, error) {
	if telegramID == referrerID || referrerID == 0 {
		return false, nil
	}

	credited := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("telegram_id = ?", referrerID).
			UpdateColumn("referral_count", gorm.Expr("referral_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		res = tx.Model(&models.User{}).
			Where("telegram_id = ? AND referrer_id = 0", telegramID).
			UpdateColumn("referrer_id", referrerID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errAlreadyReferred
		}

		credited = true
		return nil
	})

	if stderrors.Is(err, errAlreadyReferred) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeInternalError, "failed to credit referral")
	}
	return credited, nil
}

// errAlreadyReferred rolls back the referrer increment.
var errAlreadyReferred = stderrors.New("user already has a referrer")

// SetGender stores the user's own gender; "" clears it.
func (r *UserRepository) SetGender(ctx context.Context, telegramID int64, gender string) error {
	switch gender {
	case models.GenderUnset, models.GenderMale, models.GenderFemale:
	default:
		return errors.New(errors.ErrCodeValidation, "invalid gender")
	}

	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("telegram_id = ?", telegramID).
		UpdateColumn("gender", gender)
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to update gender")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrCodeNotFound, "user not found")
	}
	return nil
}

// Touch records activity and re-arms the idle nudge.
func (r *UserRepository) Touch(ctx context.Context, telegramID int64, now time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("telegram_id = ?", telegramID).
		UpdateColumns(map[string]interface{}{
			"last_seen":     now,
			"idle_notified": false,
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to update last seen")
	}
	return nil
}

// FindIdleUnnotified returns users last seen before cutoff who have not been
// nudged since, oldest first.
func (r *UserRepository) FindIdleUnnotified(ctx context.Context, cutoff time.Time, limit int) ([]models.User, error) {
	var users []models.User
	result := r.db.WithContext(ctx).
		Where("last_seen < ? AND idle_notified = ?", cutoff, false).
		Order("last_seen ASC").
		Limit(limit).
		Find(&users)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to find idle users")
	}
	return users, nil
}

func (r *UserRepository) MarkIdleNotified(ctx context.Context, telegramIDs []int64) error {
	if len(telegramIDs) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("telegram_id IN ?", telegramIDs).
		UpdateColumn("idle_notified", true)
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to mark idle users")
	}
	return nil
}

// Count returns the number of registered users.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInternalError, "failed to count users")
	}
	return count, nil
}

// CountActiveSince returns the number of users seen at or after since.
func (r *UserRepository) CountActiveSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("last_seen >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInternalError, "failed to count active users")
	}
	return count, nil
}

// GetAttributes implements matchmaking.UserStore. Unregistered users get an
// Any profile with no blocks.
func (r *UserRepository) GetAttributes(ctx context.Context, user matchmaking.UserID) (matchmaking.Attributes, error) {
	var u models.User
	result := r.db.WithContext(ctx).
		Select("telegram_id", "gender", "referral_count", "karma").
		Where("telegram_id = ?", int64(user)).
		First(&u)
	if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
		return matchmaking.Attributes{Category: matchmaking.CategoryAny}, nil
	}
	if result.Error != nil {
		return matchmaking.Attributes{}, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to load attributes")
	}

	var blocked []int64
	err := r.db.WithContext(ctx).Model(&models.Block{}).
		Where("blocker_id = ?", int64(user)).
		Pluck("blocked_id", &blocked).Error
	if err != nil {
		return matchmaking.Attributes{}, errors.Wrap(err, errors.ErrCodeInternalError, "failed to load block list")
	}

	attrs := matchmaking.Attributes{
		Category:     u.Category(),
		ReferralTier: u.ReferralCount,
		Karma:        u.Karma,
		BlockList:    make([]matchmaking.UserID, 0, len(blocked)),
	}
	for _, id := range blocked {
		attrs.BlockList = append(attrs.BlockList, matchmaking.UserID(id))
	}
	return attrs, nil
}

// AddBlock implements matchmaking.UserStore. Repeated blocks are ignored.
func (r *UserRepository) AddBlock(ctx context.Context, user, target matchmaking.UserID) error {
	block := models.Block{
		BlockerID: int64(user),
		BlockedID: int64(target),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "blocker_id"}, {Name: "blocked_id"}},
			DoNothing: true,
		}).
		Create(&block).Error
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to add block")
	}
	return nil
}

// IncrementKarma implements matchmaking.UserStore.
func (r *UserRepository) IncrementKarma(ctx context.Context, user matchmaking.UserID, positive bool) error {
	delta := -1
	if positive {
		delta = 1
	}
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("telegram_id = ?", int64(user)).
		UpdateColumn("karma", gorm.Expr("karma + ?", delta))
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to update karma")
	}
	return nil
}
