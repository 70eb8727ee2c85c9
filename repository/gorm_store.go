package repository

import (
	"context"
	"errors"
	"fmt"

	"budget/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore 基于 gorm 的 Store 实现
type GormStore struct {
	db   *gorm.DB
	inTx bool
}

// NewGormStore 创建 gorm 存储
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, inTx: true})
	})
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// forUpdate 事务内读取需要修改余额的行时加行锁，避免并发写丢失
func (s *GormStore) forUpdate(ctx context.Context) *gorm.DB {
	q := s.conn(ctx)
	if s.inTx {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func wrap(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.conn(ctx).Create(user).Error; err != nil {
		return wrap("create user", err)
	}
	return nil
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).First(&user, id).Error; err != nil {
		return nil, wrap("get user", err)
	}
	return &user, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, wrap("get user by email", err)
	}
	return &user, nil
}

func (s *GormStore) ListUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	if err := s.conn(ctx).Where("id IN ?", ids).Order("id ASC").Find(&users).Error; err != nil {
		return nil, wrap("list users", err)
	}
	return users, nil
}

func (s *GormStore) CreateHousehold(ctx context.Context, h *models.Household) error {
	if err := s.conn(ctx).Create(h).Error; err != nil {
		return wrap("create household", err)
	}
	return nil
}

func (s *GormStore) GetHousehold(ctx context.Context, id uint) (*models.Household, error) {
	var h models.Household
	if err := s.conn(ctx).First(&h, id).Error; err != nil {
		return nil, wrap("get household", err)
	}
	return &h, nil
}

func (s *GormStore) UpdateHousehold(ctx context.Context, h *models.Household) error {
	err := s.conn(ctx).Model(&models.Household{ID: h.ID}).Updates(map[string]interface{}{
		"name":        h.Name,
		"description": h.Description,
	}).Error
	if err != nil {
		return wrap("update household", err)
	}
	return nil
}

func (s *GormStore) DeleteHousehold(ctx context.Context, id uint) error {
	return s.WithTx(ctx, func(tx Store) error {
		db := tx.(*GormStore).conn(ctx)

		var accountIDs []uint
		if err := db.Model(&models.BankAccount{}).Where("household_id = ?", id).Pluck("id", &accountIDs).Error; err != nil {
			return wrap("list household accounts", err)
		}
		if len(accountIDs) > 0 {
			if err := db.Where("bank_account_id IN ?", accountIDs).Delete(&models.Transaction{}).Error; err != nil {
				return wrap("delete household transactions", err)
			}
		}
		steps := []struct {
			op    string
			model interface{}
		}{
			{"delete household accounts", &models.BankAccount{}},
			{"delete household categories", &models.Category{}},
			{"delete household members", &models.HouseholdMember{}},
			{"delete household invitations", &models.HouseholdInvitation{}},
		}
		for _, step := range steps {
			if err := db.Where("household_id = ?", id).Delete(step.model).Error; err != nil {
				return wrap(step.op, err)
			}
		}

		res := db.Delete(&models.Household{}, id)
		if res.Error != nil {
			return wrap("delete household", res.Error)
		}
		if res.RowsAffected == 0 {
			return wrap("delete household", ErrNotFound)
		}
		return nil
	})
}

func (s *GormStore) ListHouseholdsForUser(ctx context.Context, userID uint) ([]models.Household, error) {
	db := s.conn(ctx)
	memberOf := db.Model(&models.HouseholdMember{}).Select("household_id").Where("user_id = ?", userID)
	list := []models.Household{}
	if err := db.Where("owner_id = ? OR id IN (?)", userID, memberOf).Order("id ASC").Find(&list).Error; err != nil {
		return nil, wrap("list households", err)
	}
	return list, nil
}

func (s *GormStore) AddMember(ctx context.Context, householdID, userID uint) error {
	m := models.HouseholdMember{HouseholdID: householdID, UserID: userID}
	if err := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&m).Error; err != nil {
		return wrap("add member", err)
	}
	return nil
}

func (s *GormStore) RemoveMember(ctx context.Context, householdID, userID uint) error {
	err := s.conn(ctx).Where("household_id = ? AND user_id = ?", householdID, userID).
		Delete(&models.HouseholdMember{}).Error
	if err != nil {
		return wrap("remove member", err)
	}
	return nil
}

func (s *GormStore) IsMember(ctx context.Context, householdID, userID uint) (bool, error) {
	var count int64
	err := s.conn(ctx).Model(&models.HouseholdMember{}).
		Where("household_id = ? AND user_id = ?", householdID, userID).Count(&count).Error
	if err != nil {
		return false, wrap("check member", err)
	}
	return count > 0, nil
}

func (s *GormStore) ListMemberIDs(ctx context.Context, householdID uint) ([]uint, error) {
	ids := []uint{}
	err := s.conn(ctx).Model(&models.HouseholdMember{}).
		Where("household_id = ?", householdID).Order("user_id ASC").Pluck("user_id", &ids).Error
	if err != nil {
		return nil, wrap("list members", err)
	}
	return ids, nil
}

func (s *GormStore) AddInvitation(ctx context.Context, householdID, userID uint) error {
	inv := models.HouseholdInvitation{HouseholdID: householdID, UserID: userID}
	if err := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&inv).Error; err != nil {
		return wrap("add invitation", err)
	}
	return nil
}

func (s *GormStore) RemoveInvitation(ctx context.Context, householdID, userID uint) error {
	err := s.conn(ctx).Where("household_id = ? AND user_id = ?", householdID, userID).
		Delete(&models.HouseholdInvitation{}).Error
	if err != nil {
		return wrap("remove invitation", err)
	}
	return nil
}

func (s *GormStore) IsInvited(ctx context.Context, householdID, userID uint) (bool, error) {
	var count int64
	err := s.conn(ctx).Model(&models.HouseholdInvitation{}).
		Where("household_id = ? AND user_id = ?", householdID, userID).Count(&count).Error
	if err != nil {
		return false, wrap("check invitation", err)
	}
	return count > 0, nil
}

func (s *GormStore) ListInvitedHouseholds(ctx context.Context, userID uint) ([]models.Household, error) {
	db := s.conn(ctx)
	invited := db.Model(&models.HouseholdInvitation{}).Select("household_id").Where("user_id = ?", userID)
	list := []models.Household{}
	if err := db.Where("id IN (?)", invited).Order("id ASC").Find(&list).Error; err != nil {
		return nil, wrap("list invitations", err)
	}
	return list, nil
}

func (s *GormStore) CreateCategory(ctx context.Context, c *models.Category) error {
	if err := s.conn(ctx).Create(c).Error; err != nil {
		return wrap("create category", err)
	}
	return nil
}

func (s *GormStore) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := s.conn(ctx).First(&c, id).Error; err != nil {
		return nil, wrap("get category", err)
	}
	return &c, nil
}

func (s *GormStore) UpdateCategory(ctx context.Context, c *models.Category) error {
	err := s.conn(ctx).Model(&models.Category{ID: c.ID}).Updates(map[string]interface{}{
		"name":        c.Name,
		"description": c.Description,
	}).Error
	if err != nil {
		return wrap("update category", err)
	}
	return nil
}

func (s *GormStore) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.conn(ctx).Delete(&models.Category{}, id).Error; err != nil {
		return wrap("delete category", err)
	}
	return nil
}

func (s *GormStore) ListCategories(ctx context.Context, householdID uint) ([]models.Category, error) {
	list := []models.Category{}
	if err := s.conn(ctx).Where("household_id = ?", householdID).Order("id ASC").Find(&list).Error; err != nil {
		return nil, wrap("list categories", err)
	}
	return list, nil
}

func (s *GormStore) CountTransactionsByCategory(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	if err := s.conn(ctx).Model(&models.Transaction{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
		return 0, wrap("count category transactions", err)
	}
	return count, nil
}

func (s *GormStore) CreateBankAccount(ctx context.Context, a *models.BankAccount) error {
	if err := s.conn(ctx).Create(a).Error; err != nil {
		return wrap("create bank account", err)
	}
	return nil
}

func (s *GormStore) GetBankAccount(ctx context.Context, id uint) (*models.BankAccount, error) {
	var a models.BankAccount
	if err := s.forUpdate(ctx).First(&a, id).Error; err != nil {
		return nil, wrap("get bank account", err)
	}
	return &a, nil
}

func (s *GormStore) UpdateBankAccount(ctx context.Context, a *models.BankAccount) error {
	err := s.conn(ctx).Model(&models.BankAccount{ID: a.ID}).Updates(map[string]interface{}{
		"name":        a.Name,
		"description": a.Description,
	}).Error
	if err != nil {
		return wrap("update bank account", err)
	}
	return nil
}

func (s *GormStore) DeleteBankAccount(ctx context.Context, id uint) error {
	return s.WithTx(ctx, func(tx Store) error {
		db := tx.(*GormStore).conn(ctx)
		if err := db.Where("bank_account_id = ?", id).Delete(&models.Transaction{}).Error; err != nil {
			return wrap("delete account transactions", err)
		}
		if err := db.Delete(&models.BankAccount{}, id).Error; err != nil {
			return wrap("delete bank account", err)
		}
		return nil
	})
}

func (s *GormStore) ListBankAccounts(ctx context.Context, householdID uint) ([]models.BankAccount, error) {
	list := []models.BankAccount{}
	if err := s.conn(ctx).Where("household_id = ?", householdID).Order("id ASC").Find(&list).Error; err != nil {
		return nil, wrap("list bank accounts", err)
	}
	return list, nil
}

func (s *GormStore) AdjustBalance(ctx context.Context, accountID uint, delta decimal.Decimal) error {
	res := s.conn(ctx).Model(&models.BankAccount{}).Where("id = ?", accountID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return wrap("adjust balance", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("adjust balance", ErrNotFound)
	}
	return nil
}

func (s *GormStore) SetBalance(ctx context.Context, accountID uint, balance decimal.Decimal) error {
	err := s.conn(ctx).Model(&models.BankAccount{}).Where("id = ?", accountID).
		Update("balance", balance).Error
	if err != nil {
		return wrap("set balance", err)
	}
	return nil
}

func (s *GormStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	if err := s.conn(ctx).Create(t).Error; err != nil {
		return wrap("create transaction", err)
	}
	return nil
}

func (s *GormStore) GetTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	var t models.Transaction
	if err := s.forUpdate(ctx).First(&t, id).Error; err != nil {
		return nil, wrap("get transaction", err)
	}
	return &t, nil
}

func (s *GormStore) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	err := s.conn(ctx).Model(&models.Transaction{ID: t.ID}).Updates(map[string]interface{}{
		"category_id":      t.CategoryID,
		"title":            t.Title,
		"description":      t.Description,
		"amount":           t.Amount,
		"void":             t.Void,
		"transaction_date": t.TransactionDate,
	}).Error
	if err != nil {
		return wrap("update transaction", err)
	}
	return nil
}

func (s *GormStore) DeleteTransaction(ctx context.Context, id uint) error {
	if err := s.conn(ctx).Delete(&models.Transaction{}, id).Error; err != nil {
		return wrap("delete transaction", err)
	}
	return nil
}

func (s *GormStore) ListTransactions(ctx context.Context, accountID uint) ([]models.Transaction, error) {
	list := []models.Transaction{}
	err := s.conn(ctx).Where("bank_account_id = ?", accountID).
		Order("transaction_date DESC, id DESC").Find(&list).Error
	if err != nil {
		return nil, wrap("list transactions", err)
	}
	return list, nil
}

func (s *GormStore) PageTransactions(ctx context.Context, accountID uint, offset, limit int) ([]models.Transaction, int64, error) {
	query := s.conn(ctx).Model(&models.Transaction{}).Where("bank_account_id = ?", accountID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrap("count transactions", err)
	}
	list := []models.Transaction{}
	err := query.Order("transaction_date DESC, id DESC").Offset(offset).Limit(limit).Find(&list).Error
	if err != nil {
		return nil, 0, wrap("page transactions", err)
	}
	return list, total, nil
}

var _ Store = (*GormStore)(nil)
