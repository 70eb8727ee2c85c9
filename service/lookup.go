package service

import (
	"context"

	"budget/models"
	"budget/repository"
)

func loadHousehold(ctx context.Context, st repository.Store, id uint) (*models.Household, error) {
	h, err := st.GetHousehold(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "家庭不存在")
	}
	return h, nil
}

func loadAccount(ctx context.Context, st repository.Store, id uint) (*models.BankAccount, *models.Household, error) {
	a, err := st.GetBankAccount(ctx, id)
	if err != nil {
		return nil, nil, notFoundOr(err, "银行账户不存在")
	}
	h, err := loadHousehold(ctx, st, a.HouseholdID)
	if err != nil {
		return nil, nil, err
	}
	return a, h, nil
}

func loadTransaction(ctx context.Context, st repository.Store, id uint) (*models.Transaction, *models.BankAccount, *models.Household, error) {
	t, err := st.GetTransaction(ctx, id)
	if err != nil {
		return nil, nil, nil, notFoundOr(err, "交易不存在")
	}
	a, h, err := loadAccount(ctx, st, t.BankAccountID)
	if err != nil {
		return nil, nil, nil, err
	}
	return t, a, h, nil
}

// loadCategoryIn 类别必须属于指定家庭，其它家庭的类别视为不存在
func loadCategoryIn(ctx context.Context, st repository.Store, categoryID, householdID uint) (*models.Category, error) {
	c, err := st.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, notFoundOr(err, "该家庭下不存在此类别")
	}
	if c.HouseholdID != householdID {
		return nil, NotFound("该家庭下不存在此类别")
	}
	return c, nil
}
