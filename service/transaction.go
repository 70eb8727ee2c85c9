package service

import (
	"context"
	"strings"
	"time"

	"budget/models"
	"budget/repository"

	"github.com/shopspring/decimal"
)

// TransactionService 交易记录管理，每次写入都在同一事务内调整账户余额
type TransactionService struct {
	store repository.Store
	gate  *Gate
	now   func() time.Time
}

// NewTransactionService 创建交易服务
func NewTransactionService(store repository.Store) *TransactionService {
	return &TransactionService{store: store, gate: NewGate(store), now: time.Now}
}

const amountScale = 2

// TransactionInput 创建/编辑交易的参数，Amount 为有符号金额
type TransactionInput struct {
	Title           string
	Description     string
	Amount          decimal.Decimal
	CategoryID      uint
	TransactionDate time.Time
}

func (in *TransactionInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	fields := map[string]string{}
	if in.Title == "" {
		fields["title"] = "标题不能为空"
	}
	if in.CategoryID == 0 {
		fields["category_id"] = "类别不能为空"
	}
	// 与 decimal(18,2) 列精度一致
	if !in.Amount.Equal(in.Amount.Round(amountScale)) {
		fields["amount"] = "金额最多保留两位小数"
	}
	if len(fields) > 0 {
		return Validation("参数错误", fields)
	}
	in.Amount = in.Amount.Round(amountScale)
	return nil
}

// Create 所有者或成员在账户下记一笔交易，余额增加 amount
func (s *TransactionService) Create(ctx context.Context, userID, accountID uint, in TransactionInput) (*models.Transaction, error) {
	var created *models.Transaction
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		a, h, err := loadAccount(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if err := NewGate(tx).requireView(ctx, userID, h); err != nil {
			return err
		}
		if err := in.normalize(); err != nil {
			return err
		}
		if _, err := loadCategoryIn(ctx, tx, in.CategoryID, h.ID); err != nil {
			return err
		}

		date := in.TransactionDate
		if date.IsZero() {
			date = s.now()
		}
		t := &models.Transaction{
			BankAccountID:   a.ID,
			CategoryID:      in.CategoryID,
			CreatorID:       userID,
			Title:           in.Title,
			Description:     in.Description,
			Amount:          in.Amount,
			TransactionDate: date,
		}
		if err := tx.CreateTransaction(ctx, t); err != nil {
			return err
		}
		if err := tx.AdjustBalance(ctx, a.ID, createDelta(t)); err != nil {
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update 创建者或所有者编辑交易，未作废时余额按新旧金额差调整
func (s *TransactionService) Update(ctx context.Context, userID, id uint, in TransactionInput) (*models.Transaction, error) {
	var updated *models.Transaction
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		t, a, h, err := loadTransaction(ctx, tx, id)
		if err != nil {
			return err
		}
		if !CanManageTransaction(userID, t, h) {
			return Forbidden("您无权编辑该交易")
		}
		if err := in.normalize(); err != nil {
			return err
		}
		if _, err := loadCategoryIn(ctx, tx, in.CategoryID, h.ID); err != nil {
			return err
		}

		delta := editDelta(t, in.Amount)
		t.CategoryID = in.CategoryID
		t.Title = in.Title
		t.Description = in.Description
		t.Amount = in.Amount
		if !in.TransactionDate.IsZero() {
			t.TransactionDate = in.TransactionDate
		}
		if err := tx.UpdateTransaction(ctx, t); err != nil {
			return err
		}
		if !delta.IsZero() {
			if err := tx.AdjustBalance(ctx, a.ID, delta); err != nil {
				return err
			}
		}
		updated, err = tx.GetTransaction(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete 创建者或所有者删除交易，未作废时先从余额中扣除其金额
func (s *TransactionService) Delete(ctx context.Context, userID, id uint) error {
	return s.store.WithTx(ctx, func(tx repository.Store) error {
		t, a, h, err := loadTransaction(ctx, tx, id)
		if err != nil {
			return err
		}
		if !CanManageTransaction(userID, t, h) {
			return Forbidden("您无权删除该交易")
		}
		if delta := deleteDelta(t); !delta.IsZero() {
			if err := tx.AdjustBalance(ctx, a.ID, delta); err != nil {
				return err
			}
		}
		return tx.DeleteTransaction(ctx, t.ID)
	})
}

// Void 作废交易：从余额中扣除其金额并永久标记，不可撤销
func (s *TransactionService) Void(ctx context.Context, userID, id uint) (*models.Transaction, error) {
	var voided *models.Transaction
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		t, a, h, err := loadTransaction(ctx, tx, id)
		if err != nil {
			return err
		}
		if !CanManageTransaction(userID, t, h) {
			return Forbidden("您无权作废该交易")
		}
		if t.Void {
			return Conflict("该交易已作废")
		}
		if err := tx.AdjustBalance(ctx, a.ID, voidDelta(t)); err != nil {
			return err
		}
		t.Void = true
		if err := tx.UpdateTransaction(ctx, t); err != nil {
			return err
		}
		voided = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return voided, nil
}

// Get 获取单条交易，所有者或成员可见
func (s *TransactionService) Get(ctx context.Context, userID, id uint) (*models.Transaction, error) {
	t, _, h, err := loadTransaction(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.requireView(ctx, userID, h); err != nil {
		return nil, err
	}
	return t, nil
}

// List 列出账户下的全部交易（含已作废），所有者或成员可见
func (s *TransactionService) List(ctx context.Context, userID, accountID uint) ([]models.Transaction, error) {
	a, h, err := loadAccount(ctx, s.store, accountID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.requireView(ctx, userID, h); err != nil {
		return nil, err
	}
	return s.store.ListTransactions(ctx, a.ID)
}

// Page 分页列出账户下的交易，page 从 1 开始
func (s *TransactionService) Page(ctx context.Context, userID, accountID uint, page, pageSize int) ([]models.Transaction, int64, error) {
	a, h, err := loadAccount(ctx, s.store, accountID)
	if err != nil {
		return nil, 0, err
	}
	if err := s.gate.requireView(ctx, userID, h); err != nil {
		return nil, 0, err
	}
	return s.store.PageTransactions(ctx, a.ID, (page-1)*pageSize, pageSize)
}
