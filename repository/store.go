// Package repository 定义家庭账本的持久化接口，按主键与外键显式查询，
// 不通过对象导航属性读取关联数据。
package repository

import (
	"context"
	"errors"

	"budget/models"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate 违反唯一约束
	ErrDuplicate = errors.New("duplicated key")
)

// Store 持久化接口
type Store interface {
	// WithTx 在同一个数据库事务中执行 fn，fn 返回错误时整体回滚
	WithTx(ctx context.Context, fn func(tx Store) error) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error)

	CreateHousehold(ctx context.Context, h *models.Household) error
	GetHousehold(ctx context.Context, id uint) (*models.Household, error)
	UpdateHousehold(ctx context.Context, h *models.Household) error
	// DeleteHousehold 删除家庭及其成员、邀请、类别、账户和交易
	DeleteHousehold(ctx context.Context, id uint) error
	// ListHouseholdsForUser 返回用户拥有或已加入的家庭
	ListHouseholdsForUser(ctx context.Context, userID uint) ([]models.Household, error)

	AddMember(ctx context.Context, householdID, userID uint) error
	RemoveMember(ctx context.Context, householdID, userID uint) error
	IsMember(ctx context.Context, householdID, userID uint) (bool, error)
	ListMemberIDs(ctx context.Context, householdID uint) ([]uint, error)

	AddInvitation(ctx context.Context, householdID, userID uint) error
	RemoveInvitation(ctx context.Context, householdID, userID uint) error
	IsInvited(ctx context.Context, householdID, userID uint) (bool, error)
	// ListInvitedHouseholds 返回邀请了该用户但尚未加入的家庭
	ListInvitedHouseholds(ctx context.Context, userID uint) ([]models.Household, error)

	CreateCategory(ctx context.Context, c *models.Category) error
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	UpdateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id uint) error
	ListCategories(ctx context.Context, householdID uint) ([]models.Category, error)
	CountTransactionsByCategory(ctx context.Context, categoryID uint) (int64, error)

	CreateBankAccount(ctx context.Context, a *models.BankAccount) error
	GetBankAccount(ctx context.Context, id uint) (*models.BankAccount, error)
	UpdateBankAccount(ctx context.Context, a *models.BankAccount) error
	// DeleteBankAccount 删除账户及其全部交易
	DeleteBankAccount(ctx context.Context, id uint) error
	ListBankAccounts(ctx context.Context, householdID uint) ([]models.BankAccount, error)
	// AdjustBalance 以 balance = balance + delta 的方式原子更新余额
	AdjustBalance(ctx context.Context, accountID uint, delta decimal.Decimal) error
	SetBalance(ctx context.Context, accountID uint, balance decimal.Decimal) error

	CreateTransaction(ctx context.Context, t *models.Transaction) error
	GetTransaction(ctx context.Context, id uint) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, t *models.Transaction) error
	DeleteTransaction(ctx context.Context, id uint) error
	ListTransactions(ctx context.Context, accountID uint) ([]models.Transaction, error)
	// PageTransactions 按交易时间倒序分页，同时返回总数
	PageTransactions(ctx context.Context, accountID uint, offset, limit int) ([]models.Transaction, int64, error)
}
