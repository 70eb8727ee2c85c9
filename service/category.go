package service

import (
	"context"
	"strings"

	"budget/models"
	"budget/repository"
)

// CategoryService 家庭消费类别管理
type CategoryService struct {
	store repository.Store
	gate  *Gate
}

// NewCategoryService 创建类别服务
func NewCategoryService(store repository.Store) *CategoryService {
	return &CategoryService{store: store, gate: NewGate(store)}
}

// CategoryInput 创建/编辑类别的参数
type CategoryInput struct {
	Name        string
	Description string
}

func (in *CategoryInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" {
		return Validation("参数错误", map[string]string{"name": "名称不能为空"})
	}
	return nil
}

// Create 在家庭下创建类别，仅所有者
func (s *CategoryService) Create(ctx context.Context, userID, householdID uint, in CategoryInput) (*models.Category, error) {
	h, err := loadHousehold(ctx, s.store, householdID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(userID, h, "只有所有者可以创建类别"); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	c := &models.Category{HouseholdID: h.ID, Name: in.Name, Description: in.Description}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update 编辑类别，仅所有者
func (s *CategoryService) Update(ctx context.Context, userID, id uint, in CategoryInput) (*models.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "类别不存在")
	}
	h, err := loadHousehold(ctx, s.store, c.HouseholdID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(userID, h, "只有所有者可以编辑类别"); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	c.Name, c.Description = in.Name, in.Description
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	updated, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "类别不存在")
	}
	return updated, nil
}

// Delete 删除类别，仅所有者；仍被交易引用的类别不可删除
func (s *CategoryService) Delete(ctx context.Context, userID, id uint) error {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return notFoundOr(err, "类别不存在")
	}
	h, err := loadHousehold(ctx, s.store, c.HouseholdID)
	if err != nil {
		return err
	}
	if err := requireOwner(userID, h, "只有所有者可以删除类别"); err != nil {
		return err
	}
	return s.store.WithTx(ctx, func(tx repository.Store) error {
		used, err := tx.CountTransactionsByCategory(ctx, c.ID)
		if err != nil {
			return err
		}
		if used > 0 {
			return Conflict("该类别下仍有交易记录，无法删除")
		}
		return tx.DeleteCategory(ctx, c.ID)
	})
}

// List 列出家庭下的类别，所有者或成员可见
func (s *CategoryService) List(ctx context.Context, userID, householdID uint) ([]models.Category, error) {
	h, err := loadHousehold(ctx, s.store, householdID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.requireView(ctx, userID, h); err != nil {
		return nil, err
	}
	return s.store.ListCategories(ctx, h.ID)
}
