package service

import (
	"context"

	"budget/models"
	"budget/repository"
)

// Gate 基于家庭所有权、成员关系与交易创建者的权限判断
type Gate struct {
	store repository.Store
}

// NewGate 创建权限判断器
func NewGate(store repository.Store) *Gate {
	return &Gate{store: store}
}

// CanManageHousehold 仅所有者可管理家庭（类别、账户、成员邀请）
func CanManageHousehold(userID uint, h *models.Household) bool {
	return h != nil && userID != 0 && h.OwnerID == userID
}

// CanManageTransaction 交易创建者或家庭所有者可修改、删除、作废交易
func CanManageTransaction(userID uint, t *models.Transaction, h *models.Household) bool {
	if t == nil || userID == 0 {
		return false
	}
	return t.CreatorID == userID || CanManageHousehold(userID, h)
}

// CanViewHousehold 所有者或已加入的成员可查看家庭数据
func (g *Gate) CanViewHousehold(ctx context.Context, userID uint, h *models.Household) (bool, error) {
	if CanManageHousehold(userID, h) {
		return true, nil
	}
	if h == nil || userID == 0 {
		return false, nil
	}
	return g.store.IsMember(ctx, h.ID, userID)
}

// requireView 所有者或成员，否则返回 Forbidden
func (g *Gate) requireView(ctx context.Context, userID uint, h *models.Household) error {
	ok, err := g.CanViewHousehold(ctx, userID, h)
	if err != nil {
		return err
	}
	if !ok {
		return Forbidden("您不是该家庭的成员")
	}
	return nil
}

// requireOwner 仅所有者，否则返回 Forbidden
func requireOwner(userID uint, h *models.Household, message string) error {
	if !CanManageHousehold(userID, h) {
		return Forbidden(message)
	}
	return nil
}
