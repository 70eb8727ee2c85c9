package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankAccount 银行账户，Balance 为未作废交易金额的累计值
type BankAccount struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	HouseholdID uint            `json:"household_id" gorm:"index;not null"`
	Name        string          `json:"name" gorm:"size:100;not null"`
	Description string          `json:"description" gorm:"size:255"`
	Balance     decimal.Decimal `json:"balance" gorm:"type:decimal(18,2);not null;default:0"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName 设置表名
func (BankAccount) TableName() string {
	return "bank_accounts"
}
