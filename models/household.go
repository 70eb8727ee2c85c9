package models

import (
	"time"
)

// Household 家庭账本，类别、银行账户与成员的归属边界
type Household struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Description string    `json:"description" gorm:"size:255"`
	OwnerID     uint      `json:"owner_id" gorm:"index;not null"` // 唯一的所有者，不出现在成员表与邀请表中
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 设置表名
func (Household) TableName() string {
	return "households"
}
