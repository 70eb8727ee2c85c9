package models

import (
	"time"
)

// Category 家庭内的消费类别，仅所有者可维护
type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	HouseholdID uint      `json:"household_id" gorm:"index;not null"`
	Name        string    `json:"name" gorm:"size:50;not null"`
	Description string    `json:"description" gorm:"size:255"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}
