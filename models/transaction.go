package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction 交易记录模型，金额有符号：负数为支出，正数为收入
type Transaction struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	BankAccountID   uint            `json:"bank_account_id" gorm:"index;not null"`
	CategoryID      uint            `json:"category_id" gorm:"index;not null"`
	CreatorID       uint            `json:"creator_id" gorm:"index;not null"`
	Title           string          `json:"title" gorm:"size:100;not null"`
	Description     string          `json:"description" gorm:"size:255"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(18,2);not null"`
	Void            bool            `json:"void" gorm:"default:false;index"` // 作废后不计入余额，不可恢复
	TransactionDate time.Time       `json:"transaction_date" gorm:"not null"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName 设置表名
func (Transaction) TableName() string {
	return "transactions"
}
