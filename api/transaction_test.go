package api

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"budget/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ledgerFixture 所有者 owner 的家庭，成员 member，局外人 stranger，一个账户与一个类别
type ledgerFixture struct {
	*testAPI
	owner, member, stranger *models.User
	householdID             uint
	account                 AccountView
	category                CategoryView
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	ta := newTestAPI(t)
	f := &ledgerFixture{
		testAPI:  ta,
		owner:    ta.user(t, "owner@example.com"),
		member:   ta.user(t, "member@example.com"),
		stranger: ta.user(t, "stranger@example.com"),
	}
	ctx := context.Background()

	var h HouseholdView
	decode(t, ta.do("POST", "/households", f.owner.ID, map[string]string{"name": "张家"}), &h)
	f.householdID = h.ID
	require.NoError(t, ta.households.Invite(ctx, f.owner.ID, h.ID, f.member.Email))
	require.NoError(t, ta.households.Join(ctx, f.member.ID, h.ID))

	w := ta.do("POST", fmt.Sprintf("/households/%d/accounts", h.ID), f.owner.ID, map[string]string{"name": "招商银行"})
	require.Equal(t, 200, w.Code)
	decode(t, w, &f.account)

	w = ta.do("POST", fmt.Sprintf("/households/%d/categories", h.ID), f.owner.ID, map[string]string{"name": "餐饮"})
	require.Equal(t, 200, w.Code)
	decode(t, w, &f.category)
	return f
}

func (f *ledgerFixture) create(t *testing.T, userID uint, amount string) TransactionView {
	t.Helper()
	body := fmt.Sprintf(`{"title":"记账","amount":%s,"category_id":%d}`, amount, f.category.ID)
	w := f.do("POST", fmt.Sprintf("/accounts/%d/transactions", f.account.ID), userID, body)
	require.Equal(t, 200, w.Code, w.Body.String())
	var v TransactionView
	decode(t, w, &v)
	return v
}

func (f *ledgerFixture) balance(t *testing.T) string {
	t.Helper()
	w := f.do("GET", fmt.Sprintf("/accounts/%d", f.account.ID), f.owner.ID, nil)
	require.Equal(t, 200, w.Code)
	var a AccountView
	decode(t, w, &a)
	return a.Balance.StringFixed(2)
}

func TestTransactionHandler_Scenario(t *testing.T) {
	f := newLedgerFixture(t)
	assert.Equal(t, "0.00", f.balance(t))

	t1 := f.create(t, f.owner.ID, "100")
	assert.Equal(t, "100.00", f.balance(t))

	body := fmt.Sprintf(`{"title":"记账","amount":"40","category_id":%d,"transaction_date":"2024-01-15 12:30:00"}`, f.category.ID)
	w := f.do("PUT", fmt.Sprintf("/transactions/%d", t1.ID), f.owner.ID, body)
	require.Equal(t, 200, w.Code, w.Body.String())
	var edited TransactionView
	decode(t, w, &edited)
	assert.Equal(t, "2024-01-15 12:30:00", edited.TransactionDate.Format(dateTimeLayout))
	assert.Equal(t, "40.00", f.balance(t))

	t2 := f.create(t, f.member.ID, "-20")
	assert.Equal(t, "20.00", f.balance(t))

	w = f.do("DELETE", fmt.Sprintf("/transactions/%d", t1.ID), f.member.ID, nil)
	assert.Equal(t, 403, w.Code)

	w = f.do("POST", fmt.Sprintf("/transactions/%d/void", t1.ID), f.owner.ID, nil)
	require.Equal(t, 200, w.Code)
	var voided TransactionView
	decode(t, w, &voided)
	assert.True(t, voided.Void)
	assert.Equal(t, "-20.00", f.balance(t))

	w = f.do("POST", fmt.Sprintf("/transactions/%d/void", t1.ID), f.owner.ID, nil)
	assert.Equal(t, 409, w.Code)
	assert.Equal(t, "-20.00", f.balance(t))

	w = f.do("DELETE", fmt.Sprintf("/transactions/%d", t2.ID), f.member.ID, nil)
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "0.00", f.balance(t))

	w = f.do("POST", fmt.Sprintf("/accounts/%d/recalculate", f.account.ID), f.owner.ID, nil)
	require.Equal(t, 200, w.Code)
	var a AccountView
	decode(t, w, &a)
	assert.True(t, a.Balance.IsZero())
}

func TestTransactionHandler_Validation(t *testing.T) {
	f := newLedgerFixture(t)
	path := fmt.Sprintf("/accounts/%d/transactions", f.account.ID)

	w := f.do("POST", path, f.owner.ID, `{"title":"x"}`)
	assert.Equal(t, 400, w.Code)
	resp := decode(t, w, nil)
	assert.Contains(t, resp.Errors, "amount")
	assert.Contains(t, resp.Errors, "category_id")

	body := fmt.Sprintf(`{"title":"x","amount":1,"category_id":%d,"transaction_date":"2024/01/01"}`, f.category.ID)
	w = f.do("POST", path, f.owner.ID, body)
	assert.Equal(t, 400, w.Code)
	assert.Contains(t, decode(t, w, nil).Errors, "transaction_date")

	body = fmt.Sprintf(`{"title":"x","amount":"0.005","category_id":%d}`, f.category.ID)
	w = f.do("POST", path, f.owner.ID, body)
	assert.Equal(t, 400, w.Code)
	assert.Contains(t, decode(t, w, nil).Errors, "amount")
	assert.Equal(t, "0.00", f.balance(t))

	w = f.do("POST", path, f.owner.ID, `{"title":"x","amount":1,"category_id":9999}`)
	assert.Equal(t, 404, w.Code)

	w = f.do("POST", "/accounts/9999/transactions", f.stranger.ID, `{"title":"x","amount":1,"category_id":1}`)
	assert.Equal(t, 404, w.Code)
}

func TestTransactionHandler_StrangerForbidden(t *testing.T) {
	f := newLedgerFixture(t)
	t1 := f.create(t, f.owner.ID, "5")

	for _, tc := range []struct{ method, path string }{
		{"GET", fmt.Sprintf("/households/%d/categories", f.householdID)},
		{"GET", fmt.Sprintf("/households/%d/accounts", f.householdID)},
		{"GET", fmt.Sprintf("/accounts/%d/transactions", f.account.ID)},
		{"GET", fmt.Sprintf("/transactions/%d", t1.ID)},
		{"GET", fmt.Sprintf("/accounts/%d/export/csv", f.account.ID)},
	} {
		w := f.do(tc.method, tc.path, f.stranger.ID, nil)
		assert.Equal(t, 403, w.Code, tc.path)
		assert.NotContains(t, w.Body.String(), "招商银行", tc.path)
	}
}

func TestTransactionHandler_ListPaging(t *testing.T) {
	f := newLedgerFixture(t)
	for i := 1; i <= 3; i++ {
		f.create(t, f.member.ID, fmt.Sprintf("%d", i))
	}

	w := f.do("GET", fmt.Sprintf("/accounts/%d/transactions?page=2&page_size=2", f.account.ID), f.member.ID, nil)
	require.Equal(t, 200, w.Code)
	var page struct {
		Total    int64             `json:"total"`
		Page     int               `json:"page"`
		PageSize int               `json:"page_size"`
		List     []TransactionView `json:"list"`
	}
	decode(t, w, &page)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.List, 1)

	w = f.do("GET", fmt.Sprintf("/accounts/%d/transactions?page=9", f.account.ID), f.member.ID, nil)
	require.Equal(t, 200, w.Code)
	decode(t, w, &page)
	assert.Empty(t, page.List)
}

func TestCategoryAndAccountHandlers(t *testing.T) {
	f := newLedgerFixture(t)
	f.create(t, f.owner.ID, "1")

	w := f.do("PUT", fmt.Sprintf("/categories/%d", f.category.ID), f.member.ID, map[string]string{"name": "外卖"})
	assert.Equal(t, 403, w.Code)
	w = f.do("PUT", fmt.Sprintf("/categories/%d", f.category.ID), f.owner.ID, map[string]string{"name": "外卖"})
	assert.Equal(t, 200, w.Code)

	w = f.do("DELETE", fmt.Sprintf("/categories/%d", f.category.ID), f.owner.ID, nil)
	assert.Equal(t, 409, w.Code)

	w = f.do("POST", fmt.Sprintf("/households/%d/accounts", f.householdID), f.member.ID, map[string]string{"name": "现金"})
	assert.Equal(t, 403, w.Code)

	w = f.do("PUT", fmt.Sprintf("/accounts/%d", f.account.ID), f.owner.ID, map[string]string{"name": "工资卡"})
	require.Equal(t, 200, w.Code)
	var a AccountView
	decode(t, w, &a)
	assert.Equal(t, "工资卡", a.Name)

	w = f.do("GET", fmt.Sprintf("/households/%d/accounts", f.householdID), f.member.ID, nil)
	var accounts []AccountView
	decode(t, w, &accounts)
	require.Len(t, accounts, 1)
	assert.Equal(t, "1.00", accounts[0].Balance.StringFixed(2))

	w = f.do("DELETE", fmt.Sprintf("/accounts/%d", f.account.ID), f.owner.ID, nil)
	assert.Equal(t, 200, w.Code)
	w = f.do("DELETE", fmt.Sprintf("/categories/%d", f.category.ID), f.owner.ID, nil)
	assert.Equal(t, 200, w.Code)
}

func TestExportHandler(t *testing.T) {
	f := newLedgerFixture(t)
	f.create(t, f.member.ID, "-12.5")

	w := f.do("GET", fmt.Sprintf("/accounts/%d/export/csv", f.account.ID), f.member.ID, nil)
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.True(t, strings.Contains(w.Body.String(), "-12.50"))

	w = f.do("GET", fmt.Sprintf("/accounts/%d/export/excel", f.account.ID), f.owner.ID, nil)
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.Greater(t, w.Body.Len(), 0)

	w = f.do("GET", "/accounts/9999/export/excel", f.owner.ID, nil)
	assert.Equal(t, 404, w.Code)
}
