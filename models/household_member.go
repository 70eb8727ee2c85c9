package models

import "time"

// HouseholdMember 家庭-成员多对多关联（已加入）
type HouseholdMember struct {
	HouseholdID uint `gorm:"primaryKey;autoIncrement:false"`
	UserID      uint `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt   time.Time
}

// TableName 设置表名
func (HouseholdMember) TableName() string {
	return "household_members"
}

// HouseholdInvitation 家庭-用户多对多关联（已邀请未加入）
type HouseholdInvitation struct {
	HouseholdID uint `gorm:"primaryKey;autoIncrement:false"`
	UserID      uint `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt   time.Time
}

// TableName 设置表名
func (HouseholdInvitation) TableName() string {
	return "household_invitations"
}
