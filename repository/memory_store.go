package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"budget/models"

	"github.com/shopspring/decimal"
)

type memberKey struct {
	householdID uint
	userID      uint
}

type memData struct {
	seq          map[string]uint
	users        map[uint]models.User
	households   map[uint]models.Household
	members      map[memberKey]time.Time
	invitations  map[memberKey]time.Time
	categories   map[uint]models.Category
	accounts     map[uint]models.BankAccount
	transactions map[uint]models.Transaction
}

func newMemData() *memData {
	return &memData{
		seq:          map[string]uint{},
		users:        map[uint]models.User{},
		households:   map[uint]models.Household{},
		members:      map[memberKey]time.Time{},
		invitations:  map[memberKey]time.Time{},
		categories:   map[uint]models.Category{},
		accounts:     map[uint]models.BankAccount{},
		transactions: map[uint]models.Transaction{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *memData) clone() *memData {
	return &memData{
		seq:          cloneMap(d.seq),
		users:        cloneMap(d.users),
		households:   cloneMap(d.households),
		members:      cloneMap(d.members),
		invitations:  cloneMap(d.invitations),
		categories:   cloneMap(d.categories),
		accounts:     cloneMap(d.accounts),
		transactions: cloneMap(d.transactions),
	}
}

func (d *memData) next(table string) uint {
	d.seq[table]++
	return d.seq[table]
}

// MemoryStore 进程内存储，用于测试与本地调试（database.driver=memory）。
// 事务在数据副本上执行，成功后整体替换。
type MemoryStore struct {
	mu   *sync.Mutex
	data *memData
	inTx bool
	now  func() time.Time
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{mu: &sync.Mutex{}, data: newMemData(), now: time.Now}
}

func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &MemoryStore{mu: s.mu, data: s.data.clone(), inTx: true, now: s.now}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, ErrNotFound)
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	defer s.lock()()
	for _, u := range s.data.users {
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("create user: %w", ErrDuplicate)
		}
	}
	user.ID = s.data.next("users")
	user.CreatedAt, user.UpdatedAt = s.now(), s.now()
	s.data.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	defer s.lock()()
	u, ok := s.data.users[id]
	if !ok {
		return nil, notFound("get user")
	}
	return &u, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	defer s.lock()()
	for _, u := range s.data.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, notFound("get user by email")
}

func (s *MemoryStore) ListUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	defer s.lock()()
	users := []models.User{}
	for _, id := range ids {
		if u, ok := s.data.users[id]; ok {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *MemoryStore) CreateHousehold(ctx context.Context, h *models.Household) error {
	defer s.lock()()
	h.ID = s.data.next("households")
	h.CreatedAt, h.UpdatedAt = s.now(), s.now()
	s.data.households[h.ID] = *h
	return nil
}

func (s *MemoryStore) GetHousehold(ctx context.Context, id uint) (*models.Household, error) {
	defer s.lock()()
	h, ok := s.data.households[id]
	if !ok {
		return nil, notFound("get household")
	}
	return &h, nil
}

func (s *MemoryStore) UpdateHousehold(ctx context.Context, h *models.Household) error {
	defer s.lock()()
	cur, ok := s.data.households[h.ID]
	if !ok {
		return notFound("update household")
	}
	cur.Name, cur.Description, cur.UpdatedAt = h.Name, h.Description, s.now()
	s.data.households[h.ID] = cur
	return nil
}

func (s *MemoryStore) DeleteHousehold(ctx context.Context, id uint) error {
	defer s.lock()()
	if _, ok := s.data.households[id]; !ok {
		return notFound("delete household")
	}
	for aid, a := range s.data.accounts {
		if a.HouseholdID != id {
			continue
		}
		for tid, t := range s.data.transactions {
			if t.BankAccountID == aid {
				delete(s.data.transactions, tid)
			}
		}
		delete(s.data.accounts, aid)
	}
	for cid, c := range s.data.categories {
		if c.HouseholdID == id {
			delete(s.data.categories, cid)
		}
	}
	for k := range s.data.members {
		if k.householdID == id {
			delete(s.data.members, k)
		}
	}
	for k := range s.data.invitations {
		if k.householdID == id {
			delete(s.data.invitations, k)
		}
	}
	delete(s.data.households, id)
	return nil
}

func (s *MemoryStore) sortedHouseholds(match func(h models.Household) bool) []models.Household {
	list := []models.Household{}
	for _, h := range s.data.households {
		if match(h) {
			list = append(list, h)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (s *MemoryStore) ListHouseholdsForUser(ctx context.Context, userID uint) ([]models.Household, error) {
	defer s.lock()()
	return s.sortedHouseholds(func(h models.Household) bool {
		_, member := s.data.members[memberKey{h.ID, userID}]
		return h.OwnerID == userID || member
	}), nil
}

func (s *MemoryStore) AddMember(ctx context.Context, householdID, userID uint) error {
	defer s.lock()()
	k := memberKey{householdID, userID}
	if _, ok := s.data.members[k]; !ok {
		s.data.members[k] = s.now()
	}
	return nil
}

func (s *MemoryStore) RemoveMember(ctx context.Context, householdID, userID uint) error {
	defer s.lock()()
	delete(s.data.members, memberKey{householdID, userID})
	return nil
}

func (s *MemoryStore) IsMember(ctx context.Context, householdID, userID uint) (bool, error) {
	defer s.lock()()
	_, ok := s.data.members[memberKey{householdID, userID}]
	return ok, nil
}

func (s *MemoryStore) ListMemberIDs(ctx context.Context, householdID uint) ([]uint, error) {
	defer s.lock()()
	ids := []uint{}
	for k := range s.data.members {
		if k.householdID == householdID {
			ids = append(ids, k.userID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *MemoryStore) AddInvitation(ctx context.Context, householdID, userID uint) error {
	defer s.lock()()
	k := memberKey{householdID, userID}
	if _, ok := s.data.invitations[k]; !ok {
		s.data.invitations[k] = s.now()
	}
	return nil
}

func (s *MemoryStore) RemoveInvitation(ctx context.Context, householdID, userID uint) error {
	defer s.lock()()
	delete(s.data.invitations, memberKey{householdID, userID})
	return nil
}

func (s *MemoryStore) IsInvited(ctx context.Context, householdID, userID uint) (bool, error) {
	defer s.lock()()
	_, ok := s.data.invitations[memberKey{householdID, userID}]
	return ok, nil
}

func (s *MemoryStore) ListInvitedHouseholds(ctx context.Context, userID uint) ([]models.Household, error) {
	defer s.lock()()
	return s.sortedHouseholds(func(h models.Household) bool {
		_, ok := s.data.invitations[memberKey{h.ID, userID}]
		return ok
	}), nil
}

func (s *MemoryStore) CreateCategory(ctx context.Context, c *models.Category) error {
	defer s.lock()()
	c.ID = s.data.next("categories")
	c.CreatedAt, c.UpdatedAt = s.now(), s.now()
	s.data.categories[c.ID] = *c
	return nil
}

func (s *MemoryStore) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	defer s.lock()()
	c, ok := s.data.categories[id]
	if !ok {
		return nil, notFound("get category")
	}
	return &c, nil
}

func (s *MemoryStore) UpdateCategory(ctx context.Context, c *models.Category) error {
	defer s.lock()()
	cur, ok := s.data.categories[c.ID]
	if !ok {
		return notFound("update category")
	}
	cur.Name, cur.Description, cur.UpdatedAt = c.Name, c.Description, s.now()
	s.data.categories[c.ID] = cur
	return nil
}

func (s *MemoryStore) DeleteCategory(ctx context.Context, id uint) error {
	defer s.lock()()
	delete(s.data.categories, id)
	return nil
}

func (s *MemoryStore) ListCategories(ctx context.Context, householdID uint) ([]models.Category, error) {
	defer s.lock()()
	list := []models.Category{}
	for _, c := range s.data.categories {
		if c.HouseholdID == householdID {
			list = append(list, c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (s *MemoryStore) CountTransactionsByCategory(ctx context.Context, categoryID uint) (int64, error) {
	defer s.lock()()
	var count int64
	for _, t := range s.data.transactions {
		if t.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) CreateBankAccount(ctx context.Context, a *models.BankAccount) error {
	defer s.lock()()
	a.ID = s.data.next("bank_accounts")
	a.CreatedAt, a.UpdatedAt = s.now(), s.now()
	s.data.accounts[a.ID] = *a
	return nil
}

func (s *MemoryStore) GetBankAccount(ctx context.Context, id uint) (*models.BankAccount, error) {
	defer s.lock()()
	a, ok := s.data.accounts[id]
	if !ok {
		return nil, notFound("get bank account")
	}
	return &a, nil
}

func (s *MemoryStore) UpdateBankAccount(ctx context.Context, a *models.BankAccount) error {
	defer s.lock()()
	cur, ok := s.data.accounts[a.ID]
	if !ok {
		return notFound("update bank account")
	}
	cur.Name, cur.Description, cur.UpdatedAt = a.Name, a.Description, s.now()
	s.data.accounts[a.ID] = cur
	return nil
}

func (s *MemoryStore) DeleteBankAccount(ctx context.Context, id uint) error {
	defer s.lock()()
	for tid, t := range s.data.transactions {
		if t.BankAccountID == id {
			delete(s.data.transactions, tid)
		}
	}
	delete(s.data.accounts, id)
	return nil
}

func (s *MemoryStore) ListBankAccounts(ctx context.Context, householdID uint) ([]models.BankAccount, error) {
	defer s.lock()()
	list := []models.BankAccount{}
	for _, a := range s.data.accounts {
		if a.HouseholdID == householdID {
			list = append(list, a)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (s *MemoryStore) AdjustBalance(ctx context.Context, accountID uint, delta decimal.Decimal) error {
	defer s.lock()()
	a, ok := s.data.accounts[accountID]
	if !ok {
		return notFound("adjust balance")
	}
	a.Balance = a.Balance.Add(delta)
	a.UpdatedAt = s.now()
	s.data.accounts[accountID] = a
	return nil
}

func (s *MemoryStore) SetBalance(ctx context.Context, accountID uint, balance decimal.Decimal) error {
	defer s.lock()()
	a, ok := s.data.accounts[accountID]
	if !ok {
		return notFound("set balance")
	}
	a.Balance = balance
	a.UpdatedAt = s.now()
	s.data.accounts[accountID] = a
	return nil
}

func (s *MemoryStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	defer s.lock()()
	t.ID = s.data.next("transactions")
	t.CreatedAt, t.UpdatedAt = s.now(), s.now()
	s.data.transactions[t.ID] = *t
	return nil
}

func (s *MemoryStore) GetTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	defer s.lock()()
	t, ok := s.data.transactions[id]
	if !ok {
		return nil, notFound("get transaction")
	}
	return &t, nil
}

func (s *MemoryStore) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	defer s.lock()()
	cur, ok := s.data.transactions[t.ID]
	if !ok {
		return notFound("update transaction")
	}
	cur.CategoryID = t.CategoryID
	cur.Title = t.Title
	cur.Description = t.Description
	cur.Amount = t.Amount
	cur.Void = t.Void
	cur.TransactionDate = t.TransactionDate
	cur.UpdatedAt = s.now()
	s.data.transactions[t.ID] = cur
	return nil
}

func (s *MemoryStore) DeleteTransaction(ctx context.Context, id uint) error {
	defer s.lock()()
	delete(s.data.transactions, id)
	return nil
}

func (s *MemoryStore) ListTransactions(ctx context.Context, accountID uint) ([]models.Transaction, error) {
	defer s.lock()()
	return s.sortedTransactions(accountID), nil
}

func (s *MemoryStore) PageTransactions(ctx context.Context, accountID uint, offset, limit int) ([]models.Transaction, int64, error) {
	defer s.lock()()
	list := s.sortedTransactions(accountID)
	total := int64(len(list))
	start := min(max(offset, 0), len(list))
	end := min(start+limit, len(list))
	return list[start:end], total, nil
}

func (s *MemoryStore) sortedTransactions(accountID uint) []models.Transaction {
	list := []models.Transaction{}
	for _, t := range s.data.transactions {
		if t.BankAccountID == accountID {
			list = append(list, t)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].TransactionDate.Equal(list[j].TransactionDate) {
			return list[i].TransactionDate.After(list[j].TransactionDate)
		}
		return list[i].ID > list[j].ID
	})
	return list
}

var _ Store = (*MemoryStore)(nil)
