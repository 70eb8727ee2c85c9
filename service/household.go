package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"budget/models"
	"budget/repository"
)

// notifyTimeout 单次邀请通知的超时时间
const notifyTimeout = 30 * time.Second

// HouseholdService 家庭与成员关系管理
type HouseholdService struct {
	store    repository.Store
	gate     *Gate
	notifier Notifier
}

// NewHouseholdService 创建家庭服务，notifier 为 nil 时不发送邀请通知
func NewHouseholdService(store repository.Store, notifier Notifier) *HouseholdService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &HouseholdService{store: store, gate: NewGate(store), notifier: notifier}
}

// HouseholdInput 创建/编辑家庭的参数
type HouseholdInput struct {
	Name        string
	Description string
}

func (in *HouseholdInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" {
		return Validation("参数错误", map[string]string{"name": "名称不能为空"})
	}
	return nil
}

// Member 家庭成员（含所有者）
type Member struct {
	User  models.User
	Owner bool
}

// Create 创建家庭，当前用户成为所有者
func (s *HouseholdService) Create(ctx context.Context, userID uint, in HouseholdInput) (*models.Household, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	h := &models.Household{Name: in.Name, Description: in.Description, OwnerID: userID}
	if err := s.store.CreateHousehold(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Get 获取家庭详情，所有者或成员可见
func (s *HouseholdService) Get(ctx context.Context, userID, id uint) (*models.Household, error) {
	h, err := loadHousehold(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.requireView(ctx, userID, h); err != nil {
		return nil, err
	}
	return h, nil
}

// ListMine 当前用户拥有或已加入的家庭
func (s *HouseholdService) ListMine(ctx context.Context, userID uint) ([]models.Household, error) {
	return s.store.ListHouseholdsForUser(ctx, userID)
}

// Update 编辑家庭信息，仅所有者
func (s *HouseholdService) Update(ctx context.Context, userID, id uint, in HouseholdInput) (*models.Household, error) {
	h, err := loadHousehold(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(userID, h, "只有所有者可以编辑家庭"); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	h.Name, h.Description = in.Name, in.Description
	if err := s.store.UpdateHousehold(ctx, h); err != nil {
		return nil, err
	}
	return loadHousehold(ctx, s.store, id)
}

// Delete 删除家庭及其全部数据，仅所有者
func (s *HouseholdService) Delete(ctx context.Context, userID, id uint) error {
	h, err := loadHousehold(ctx, s.store, id)
	if err != nil {
		return err
	}
	if err := requireOwner(userID, h, "只有所有者可以删除家庭"); err != nil {
		return err
	}
	return s.store.DeleteHousehold(ctx, id)
}

// Invite 所有者按邮箱邀请用户。重复邀请已在邀请列表中的用户不报错也不重复通知。
func (s *HouseholdService) Invite(ctx context.Context, userID, id uint, email string) error {
	h, err := loadHousehold(ctx, s.store, id)
	if err != nil {
		return err
	}
	if err := requireOwner(userID, h, "只有所有者可以邀请成员"); err != nil {
		return err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return Validation("参数错误", map[string]string{"email": "邮箱不能为空"})
	}

	target, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return notFoundOr(err, "用户不存在")
	}
	if target.ID == h.OwnerID {
		return Conflict("不能邀请家庭所有者")
	}

	added := false
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		member, err := tx.IsMember(ctx, h.ID, target.ID)
		if err != nil {
			return err
		}
		if member {
			return Conflict("该用户已是家庭成员")
		}
		invited, err := tx.IsInvited(ctx, h.ID, target.ID)
		if err != nil {
			return err
		}
		if invited {
			return nil
		}
		added = true
		return tx.AddInvitation(ctx, h.ID, target.ID)
	})
	if err != nil {
		return err
	}

	if added {
		notice := InvitationNotice{
			HouseholdID:   h.ID,
			HouseholdName: h.Name,
			InviteeEmail:  target.Email,
			InvitedAt:     time.Now(),
		}
		if owner, err := s.store.GetUser(ctx, userID); err == nil {
			notice.InviterEmail = owner.Email
		}
		s.notifyInvitation(ctx, notice)
	}
	return nil
}

// notifyInvitation 异步发送邀请通知，失败只记录日志，不影响邀请结果
func (s *HouseholdService) notifyInvitation(ctx context.Context, notice InvitationNotice) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyInvitation(ctx, notice); err != nil {
			log.Printf("发送邀请通知失败: household=%d email=%s err=%v", notice.HouseholdID, notice.InviteeEmail, err)
		}
	}()
}

// Join 受邀用户加入家庭：移出邀请列表并加入成员列表，两步在同一事务内完成
func (s *HouseholdService) Join(ctx context.Context, userID, id uint) error {
	h, err := loadHousehold(ctx, s.store, id)
	if err != nil {
		return err
	}
	if h.OwnerID == userID {
		return Conflict("您已是该家庭的所有者")
	}
	return s.store.WithTx(ctx, func(tx repository.Store) error {
		invited, err := tx.IsInvited(ctx, h.ID, userID)
		if err != nil {
			return err
		}
		if !invited {
			return Conflict("您尚未收到该家庭的邀请")
		}
		if err := tx.RemoveInvitation(ctx, h.ID, userID); err != nil {
			return err
		}
		return tx.AddMember(ctx, h.ID, userID)
	})
}

// Leave 成员退出家庭，所有者只能删除家庭
func (s *HouseholdService) Leave(ctx context.Context, userID, id uint) error {
	h, err := loadHousehold(ctx, s.store, id)
	if err != nil {
		return err
	}
	if h.OwnerID == userID {
		return Conflict("所有者不能退出家庭，只能删除家庭")
	}
	member, err := s.store.IsMember(ctx, h.ID, userID)
	if err != nil {
		return err
	}
	if !member {
		return Conflict("您不是该家庭的成员")
	}
	return s.store.RemoveMember(ctx, h.ID, userID)
}

// ListMembers 列出所有者与成员，所有者排在首位
func (s *HouseholdService) ListMembers(ctx context.Context, userID, id uint) ([]Member, error) {
	h, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	ids, err := s.store.ListMemberIDs(ctx, h.ID)
	if err != nil {
		return nil, err
	}
	out := make([]Member, 0, len(ids)+1)
	owner, err := s.store.GetUser(ctx, h.OwnerID)
	switch {
	case err == nil:
		out = append(out, Member{User: *owner, Owner: true})
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}
	users, err := s.store.ListUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out = append(out, Member{User: u})
	}
	return out, nil
}

// ListInvitations 当前用户待处理的邀请
func (s *HouseholdService) ListInvitations(ctx context.Context, userID uint) ([]models.Household, error) {
	return s.store.ListInvitedHouseholds(ctx, userID)
}
