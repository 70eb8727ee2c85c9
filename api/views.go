package api

import (
	"time"

	"budget/models"
	"budget/service"

	"github.com/shopspring/decimal"
)

// 对外返回的视图，只包含调用方可见的字段

// UserView 用户视图
type UserView struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// HouseholdView 家庭视图
type HouseholdView struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     uint      `json:"owner_id"`
	IsOwner     bool      `json:"is_owner"`
	CreatedAt   time.Time `json:"created_at"`
}

// MemberView 家庭成员视图
type MemberView struct {
	UserID  uint   `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsOwner bool   `json:"is_owner"`
}

// CategoryView 类别视图
type CategoryView struct {
	ID          uint   `json:"id"`
	HouseholdID uint   `json:"household_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AccountView 银行账户视图
type AccountView struct {
	ID          uint            `json:"id"`
	HouseholdID uint            `json:"household_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Balance     decimal.Decimal `json:"balance" swaggertype:"string" example:"100.00"`
}

// TransactionView 交易视图
type TransactionView struct {
	ID              uint            `json:"id"`
	BankAccountID   uint            `json:"bank_account_id"`
	CategoryID      uint            `json:"category_id"`
	CreatorID       uint            `json:"creator_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount" swaggertype:"string" example:"-20.50"`
	Void            bool            `json:"void"`
	TransactionDate time.Time       `json:"transaction_date"`
	CreatedAt       time.Time       `json:"created_at"`
}

func toUserView(u *models.User) UserView {
	return UserView{ID: u.ID, Email: u.Email, Name: u.Name}
}

func toHouseholdView(h *models.Household, viewerID uint) HouseholdView {
	return HouseholdView{
		ID:          h.ID,
		Name:        h.Name,
		Description: h.Description,
		OwnerID:     h.OwnerID,
		IsOwner:     h.OwnerID == viewerID,
		CreatedAt:   h.CreatedAt,
	}
}

func toMemberView(m service.Member) MemberView {
	return MemberView{UserID: m.User.ID, Email: m.User.Email, Name: m.User.Name, IsOwner: m.Owner}
}

func toCategoryView(c *models.Category) CategoryView {
	return CategoryView{ID: c.ID, HouseholdID: c.HouseholdID, Name: c.Name, Description: c.Description}
}

func toAccountView(a *models.BankAccount) AccountView {
	return AccountView{
		ID:          a.ID,
		HouseholdID: a.HouseholdID,
		Name:        a.Name,
		Description: a.Description,
		Balance:     a.Balance.Round(2),
	}
}

func toTransactionView(t *models.Transaction) TransactionView {
	return TransactionView{
		ID:              t.ID,
		BankAccountID:   t.BankAccountID,
		CategoryID:      t.CategoryID,
		CreatorID:       t.CreatorID,
		Title:           t.Title,
		Description:     t.Description,
		Amount:          t.Amount,
		Void:            t.Void,
		TransactionDate: t.TransactionDate,
		CreatedAt:       t.CreatedAt,
	}
}

// mapViews 按同一投影函数转换列表，空列表返回 [] 而不是 null
func mapViews[T any, V any](list []T, fn func(*T) V) []V {
	out := make([]V, 0, len(list))
	for i := range list {
		out = append(out, fn(&list[i]))
	}
	return out
}
