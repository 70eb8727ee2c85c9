package service

import (
	"context"
	"testing"

	"budget/models"
	"budget/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// fixture 一个家庭 H：所有者 owner，成员 member，局外人 stranger，账户 A，类别 C
type fixture struct {
	ctx      context.Context
	store    *repository.MemoryStore
	notifier *recordingNotifier

	users        *UserService
	households   *HouseholdService
	categories   *CategoryService
	accounts     *AccountService
	transactions *TransactionService
	exports      *ExportService

	owner, member, stranger *models.User
	household               *models.Household
	account                 *models.BankAccount
	category                *models.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := repository.NewMemoryStore()
	n := newRecordingNotifier()
	f := &fixture{
		ctx:          context.Background(),
		store:        st,
		notifier:     n,
		users:        NewUserService(st),
		households:   NewHouseholdService(st, n),
		categories:   NewCategoryService(st),
		accounts:     NewAccountService(st),
		transactions: NewTransactionService(st),
		exports:      NewExportService(st),
	}

	f.owner = f.register(t, "owner@example.com")
	f.member = f.register(t, "member@example.com")
	f.stranger = f.register(t, "stranger@example.com")

	h, err := f.households.Create(f.ctx, f.owner.ID, HouseholdInput{Name: "张家"})
	require.NoError(t, err)
	f.household = h

	require.NoError(t, f.households.Invite(f.ctx, f.owner.ID, h.ID, f.member.Email))
	f.notifier.wait(t)
	require.NoError(t, f.households.Join(f.ctx, f.member.ID, h.ID))

	a, err := f.accounts.Create(f.ctx, f.owner.ID, h.ID, AccountInput{Name: "招商银行"})
	require.NoError(t, err)
	f.account = a

	c, err := f.categories.Create(f.ctx, f.owner.ID, h.ID, CategoryInput{Name: "餐饮"})
	require.NoError(t, err)
	f.category = c
	return f
}

func (f *fixture) register(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := f.users.Register(f.ctx, email, "secret123", "")
	require.NoError(t, err)
	return u
}

func (f *fixture) addTx(t *testing.T, userID uint, amount string) *models.Transaction {
	t.Helper()
	tx, err := f.transactions.Create(f.ctx, userID, f.account.ID, TransactionInput{
		Title:      "记账",
		Amount:     decimal.RequireFromString(amount),
		CategoryID: f.category.ID,
	})
	require.NoError(t, err)
	return tx
}

func (f *fixture) balance(t *testing.T) decimal.Decimal {
	t.Helper()
	a, err := f.store.GetBankAccount(f.ctx, f.account.ID)
	require.NoError(t, err)
	return a.Balance
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func requireKind(t *testing.T, kind ErrorKind, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equalf(t, kind, KindOf(err), "unexpected error: %v", err)
}
