package service

import (
	"context"
	"strings"

	"budget/models"
	"budget/repository"

	"github.com/shopspring/decimal"
)

// AccountService 银行账户管理
type AccountService struct {
	store repository.Store
	gate  *Gate
}

// NewAccountService 创建账户服务
func NewAccountService(store repository.Store) *AccountService {
	return &AccountService{store: store, gate: NewGate(store)}
}

// AccountInput 创建/编辑账户的参数
type AccountInput struct {
	Name        string
	Description string
}

func (in *AccountInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" {
		return Validation("参数错误", map[string]string{"name": "名称不能为空"})
	}
	return nil
}

// Create 创建账户，初始余额为 0，仅所有者
func (s *AccountService) Create(ctx context.Context, userID, householdID uint, in AccountInput) (*models.BankAccount, error) {
	h, err := loadHousehold(ctx, s.store, householdID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(userID, h, "只有所有者可以创建银行账户"); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	a := &models.BankAccount{
		HouseholdID: h.ID,
		Name:        in.Name,
		Description: in.Description,
		Balance:     decimal.Zero,
	}
	if err := s.store.CreateBankAccount(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Get 获取账户详情，所有者或成员可见
func (s *AccountService) Get(ctx context.Context, userID, id uint) (*models.BankAccount, error) {
	a, h, err := loadAccount(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.requireView(ctx, userID, h); err != nil {
		return nil, err
	}
	return a, nil
}

// Update 编辑账户名称与描述，仅所有者；余额只能通过交易或重新计算改变
func (s *AccountService) Update(ctx context.Context, userID, id uint, in AccountInput) (*models.BankAccount, error) {
	a, h, err := loadAccount(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(userID, h, "只有所有者可以编辑银行账户"); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	a.Name, a.Description = in.Name, in.Description
	if err := s.store.UpdateBankAccount(ctx, a); err != nil {
		return nil, err
	}
	updated, _, err := loadAccount(ctx, s.store, id)
	return updated, err
}

// Delete 删除账户及其交易，仅所有者
func (s *AccountService) Delete(ctx context.Context, userID, id uint) error {
	_, h, err := loadAccount(ctx, s.store, id)
	if err != nil {
		return err
	}
	if err := requireOwner(userID, h, "只有所有者可以删除银行账户"); err != nil {
		return err
	}
	return s.store.DeleteBankAccount(ctx, id)
}

// List 列出家庭下的账户，所有者或成员可见
func (s *AccountService) List(ctx context.Context, userID, householdID uint) ([]models.BankAccount, error) {
	h, err := loadHousehold(ctx, s.store, householdID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.requireView(ctx, userID, h); err != nil {
		return nil, err
	}
	return s.store.ListBankAccounts(ctx, h.ID)
}

// Recalculate 按未作废交易重新计算余额，仅所有者
func (s *AccountService) Recalculate(ctx context.Context, userID, id uint) (*models.BankAccount, error) {
	var result *models.BankAccount
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		a, h, err := loadAccount(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := requireOwner(userID, h, "只有所有者可以重新计算余额"); err != nil {
			return err
		}
		list, err := tx.ListTransactions(ctx, a.ID)
		if err != nil {
			return err
		}
		if err := tx.SetBalance(ctx, a.ID, ActiveTotal(list)); err != nil {
			return err
		}
		result, _, err = loadAccount(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
