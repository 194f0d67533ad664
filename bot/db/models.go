package db

import (
	"gorm.io/gorm"

	"github.com/nopparoot15/Saltybot/bot"
)

// VerifyRequestModel mirrors the verify_requests schema. Each row is one
// submitted identity form; message_id identifies the approval card.
type VerifyRequestModel struct {
	gorm.Model
	GuildID        int64  `gorm:"not null;index"`
	UserID         int64  `gorm:"not null;index"`
	ChannelID      int64  `gorm:"not null"`
	MessageID      int64  `gorm:"uniqueIndex;not null"`
	Nickname       string `gorm:"not null"`
	AgeText        string
	GenderText     string
	BirthdayText   string
	AccountAgeDays *int
	RiskTier       string `gorm:"not null;default:'UNKNOWN'"`
	Status         string `gorm:"not null;default:'SUBMITTED';index"`
	DecidedBy      int64
}

func (VerifyRequestModel) TableName() string {
	return "verify_requests"
}

// MemberProfileModel stores the latest accepted form fields per member.
type MemberProfileModel struct {
	gorm.Model
	GuildID      int64 `gorm:"not null;index:idx_guild_user,unique"`
	UserID       int64 `gorm:"not null;index:idx_guild_user,unique"`
	Nickname     string
	AgeText      string
	GenderText   string
	BirthdayText string
}

func (MemberProfileModel) TableName() string {
	return "member_profiles"
}

// ApprovalPointerModel remembers the newest approval card per member so
// admins can jump to it.
type ApprovalPointerModel struct {
	gorm.Model
	GuildID   int64 `gorm:"not null;index:idx_guild_user_ptr,unique"`
	UserID    int64 `gorm:"not null;index:idx_guild_user_ptr,unique"`
	ChannelID int64 `gorm:"not null"`
	MessageID int64 `gorm:"not null"`
}

func (ApprovalPointerModel) TableName() string {
	return "approval_pointers"
}

// MemberRoleModel assigns one role bucket to a member. A member may hold
// several buckets but at most one per axis; the axis rule is enforced by
// the verify service, not the schema.
type MemberRoleModel struct {
	gorm.Model
	GuildID int64  `gorm:"not null;index:idx_member_role,unique"`
	UserID  int64  `gorm:"not null;index:idx_member_role,unique"`
	Bucket  string `gorm:"not null;index:idx_member_role,unique"`
}

func (MemberRoleModel) TableName() string {
	return "member_roles"
}

func requestToInternal(model VerifyRequestModel) *bot.VerificationRequest {
	return &bot.VerificationRequest{
		ID:             model.ID,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
		GuildID:        model.GuildID,
		UserID:         model.UserID,
		ChannelID:      model.ChannelID,
		MessageID:      model.MessageID,
		Nickname:       model.Nickname,
		AgeText:        model.AgeText,
		GenderText:     model.GenderText,
		BirthdayText:   model.BirthdayText,
		AccountAgeDays: model.AccountAgeDays,
		RiskTier:       bot.RiskTier(model.RiskTier),
		Status:         bot.RequestStatus(model.Status),
		DecidedBy:      model.DecidedBy,
	}
}

func requestToModel(req *bot.VerificationRequest) *VerifyRequestModel {
	if req == nil {
		return &VerifyRequestModel{}
	}
	status := req.Status
	if status == "" {
		status = bot.StatusSubmitted
	}
	tier := req.RiskTier
	if tier == "" {
		tier = bot.RiskUnknown
	}
	return &VerifyRequestModel{
		GuildID:        req.GuildID,
		UserID:         req.UserID,
		ChannelID:      req.ChannelID,
		MessageID:      req.MessageID,
		Nickname:       req.Nickname,
		AgeText:        req.AgeText,
		GenderText:     req.GenderText,
		BirthdayText:   req.BirthdayText,
		AccountAgeDays: req.AccountAgeDays,
		RiskTier:       string(tier),
		Status:         string(status),
		DecidedBy:      req.DecidedBy,
	}
}

func profileToInternal(model MemberProfileModel) *bot.MemberProfile {
	return &bot.MemberProfile{
		ID:           model.ID,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
		GuildID:      model.GuildID,
		UserID:       model.UserID,
		Nickname:     model.Nickname,
		AgeText:      model.AgeText,
		GenderText:   model.GenderText,
		BirthdayText: model.BirthdayText,
	}
}
