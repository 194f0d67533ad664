package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/nopparoot15/Saltybot/bot"
)

// Repository provides access to the verification database. It implements
// bot.VerifyRepository and bot.RoleDirectory on the same SQLite file.
type Repository struct {
	db *gorm.DB
}

// NewSQLiteRepository creates a repository backed by SQLite.
func NewSQLiteRepository(dsn string, gormLogger logger.Interface) (*Repository, error) {
	if dsn == "" {
		return nil, fmt.Errorf("dsn required")
	}

	if gormLogger == nil {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}

	dbDir := filepath.Dir(dsn)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 gormLogger,
	})
	if err != nil {
		return nil, err
	}

	if err := applySQLitePragmas(db); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&VerifyRequestModel{}, &MemberProfileModel{}, &ApprovalPointerModel{}, &MemberRoleModel{}); err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Repository{db: db}, nil
}

// ConfigurePool updates the database connection pool settings.
func (r *Repository) ConfigurePool(maxOpen, maxIdle int, maxLifetime time.Duration) error {
	if r == nil || r.db == nil {
		return errors.New("repository not configured")
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	if maxOpen >= 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	if maxIdle >= 0 {
		sqlDB.SetMaxIdleConns(maxIdle)
	}
	if maxLifetime >= 0 {
		sqlDB.SetConnMaxLifetime(maxLifetime)
	}
	return nil
}

// InsertRequest stores a new submitted request and returns its id.
func (r *Repository) InsertRequest(ctx context.Context, req *bot.VerificationRequest) (uint, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("repository not configured")
	}
	model := requestToModel(req)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return 0, err
	}
	return model.ID, nil
}

// SetRequestStatus moves the request identified by messageID into a
// terminal status. The update is guarded on the current status being
// Submitted, so of two racing decisions exactly one wins.
func (r *Repository) SetRequestStatus(ctx context.Context, messageID int64, status bot.RequestStatus, decidedBy int64) (bool, error) {
	if r == nil || r.db == nil {
		return false, errors.New("repository not configured")
	}
	result := r.db.WithContext(ctx).
		Model(&VerifyRequestModel{}).
		Where("message_id = ? AND status = ?", messageID, string(bot.StatusSubmitted)).
		Updates(map[string]any{
			"status":     string(status),
			"decided_by": decidedBy,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindRequestByMessageID returns the request carrying the given approval
// card, or gorm.ErrRecordNotFound.
func (r *Repository) FindRequestByMessageID(ctx context.Context, messageID int64) (*bot.VerificationRequest, error) {
	var model VerifyRequestModel
	err := r.db.WithContext(ctx).Where("message_id = ?", messageID).First(&model).Error
	if err != nil {
		return nil, err
	}
	return requestToInternal(model), nil
}

// CountRequestsByStatus aggregates request counts per status for a guild.
func (r *Repository) CountRequestsByStatus(ctx context.Context, guildID int64) (map[bot.RequestStatus]int64, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("repository not configured")
	}
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&VerifyRequestModel{}).
		Select("status, COUNT(*) AS total").
		Where("guild_id = ?", guildID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[bot.RequestStatus]int64, len(rows))
	for _, item := range rows {
		counts[bot.RequestStatus(item.Status)] = item.Total
	}
	return counts, nil
}

// UpsertMemberProfile stores the latest form fields for a member.
func (r *Repository) UpsertMemberProfile(ctx context.Context, profile *bot.MemberProfile) error {
	if r == nil || r.db == nil {
		return errors.New("repository not configured")
	}
	if profile == nil {
		return errors.New("profile required")
	}
	model := MemberProfileModel{
		GuildID:      profile.GuildID,
		UserID:       profile.UserID,
		Nickname:     profile.Nickname,
		AgeText:      profile.AgeText,
		GenderText:   profile.GenderText,
		BirthdayText: profile.BirthdayText,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "guild_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"updated_at",
			"nickname",
			"age_text",
			"gender_text",
			"birthday_text",
		}),
	}).Create(&model).Error
}

// MemberProfileFor returns the stored profile for a member, or nil when
// the member never submitted a form.
func (r *Repository) MemberProfileFor(ctx context.Context, guildID, userID int64) (*bot.MemberProfile, error) {
	var model MemberProfileModel
	err := r.db.WithContext(ctx).Where("guild_id = ? AND user_id = ?", guildID, userID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return profileToInternal(model), nil
}

// SetLatestApproval records the newest approval card for a member.
func (r *Repository) SetLatestApproval(ctx context.Context, ptr *bot.ApprovalPointer) error {
	if r == nil || r.db == nil {
		return errors.New("repository not configured")
	}
	if ptr == nil {
		return errors.New("pointer required")
	}
	model := ApprovalPointerModel{
		GuildID:   ptr.GuildID,
		UserID:    ptr.UserID,
		ChannelID: ptr.ChannelID,
		MessageID: ptr.MessageID,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "guild_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"updated_at",
			"channel_id",
			"message_id",
		}),
	}).Create(&model).Error
}

// LatestApproval returns the newest approval card pointer for a member,
// or nil when none was recorded.
func (r *Repository) LatestApproval(ctx context.Context, guildID, userID int64) (*bot.ApprovalPointer, error) {
	var model ApprovalPointerModel
	err := r.db.WithContext(ctx).Where("guild_id = ? AND user_id = ?", guildID, userID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bot.ApprovalPointer{
		GuildID:   model.GuildID,
		UserID:    model.UserID,
		ChannelID: model.ChannelID,
		MessageID: model.MessageID,
	}, nil
}

// MemberRoles lists the role buckets a member currently holds.
func (r *Repository) MemberRoles(ctx context.Context, guildID, userID int64) ([]bot.RoleBucket, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("repository not configured")
	}
	var models []MemberRoleModel
	err := r.db.WithContext(ctx).
		Where("guild_id = ? AND user_id = ?", guildID, userID).
		Order("bucket").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	buckets := make([]bot.RoleBucket, 0, len(models))
	for _, m := range models {
		buckets = append(buckets, bot.RoleBucket(m.Bucket))
	}
	return buckets, nil
}

// AddRoles grants the given buckets to a member. Already held buckets are
// skipped via the unique index.
func (r *Repository) AddRoles(ctx context.Context, guildID, userID int64, buckets []bot.RoleBucket, reason string) error {
	if r == nil || r.db == nil {
		return errors.New("repository not configured")
	}
	if len(buckets) == 0 {
		return nil
	}
	models := make([]MemberRoleModel, 0, len(buckets))
	for _, b := range buckets {
		models = append(models, MemberRoleModel{GuildID: guildID, UserID: userID, Bucket: string(b)})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}, {Name: "user_id"}, {Name: "bucket"}},
		DoNothing: true,
	}).Create(&models).Error
}

// RemoveRoles revokes the given buckets from a member. Missing buckets
// are not an error.
func (r *Repository) RemoveRoles(ctx context.Context, guildID, userID int64, buckets []bot.RoleBucket, reason string) error {
	if r == nil || r.db == nil {
		return errors.New("repository not configured")
	}
	if len(buckets) == 0 {
		return nil
	}
	names := make([]string, 0, len(buckets))
	for _, b := range buckets {
		names = append(names, string(b))
	}
	return r.db.WithContext(ctx).
		Where("guild_id = ? AND user_id = ? AND bucket IN ?", guildID, userID, names).
		Delete(&MemberRoleModel{}).Error
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func applySQLitePragmas(db *gorm.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=-64000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	return nil
}
