package repository

import (
	"context"
	"testing"

	"budget/models"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	return NewGormStore(db), mock
}

func TestGormStore_GetUser(t *testing.T) {
	store, mock := setupMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "email", "name", "password"}).
		AddRow(1, "zhang@example.com", "张三", "hash")
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE `users`.`id` = \\?").WillReturnRows(rows)

	user, err := store.GetUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "zhang@example.com", user.Email)
	assert.Equal(t, "张三", user.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_GetUserNotFound(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery("SELECT \\* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	_, err := store.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_CreateUserDuplicate(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	err := store.CreateUser(context.Background(), &models.User{Email: "zhang@example.com", Password: "hash"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_AdjustBalanceIsAtomicIncrement(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `bank_accounts` SET `balance`=balance \\+ \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.AdjustBalance(context.Background(), 7, decimal.RequireFromString("-12.50"))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_AdjustBalanceMissingAccount(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `bank_accounts`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := store.AdjustBalance(context.Background(), 99, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_WithTxLocksAccountRow(t *testing.T) {
	store, mock := setupMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "household_id", "name", "balance"}).
		AddRow(7, 1, "招商银行", "100.00")
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `bank_accounts` WHERE `bank_accounts`.`id` = \\?.* FOR UPDATE").
		WillReturnRows(rows)
	mock.ExpectExec("UPDATE `bank_accounts` SET `balance`=balance \\+ \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.WithTx(context.Background(), func(tx Store) error {
		account, err := tx.GetBankAccount(context.Background(), 7)
		if err != nil {
			return err
		}
		assert.True(t, account.Balance.Equal(decimal.NewFromInt(100)))
		return tx.AdjustBalance(context.Background(), account.ID, decimal.NewFromInt(5))
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_WithTxRollsBackOnError(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `transactions`.* FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := store.WithTx(context.Background(), func(tx Store) error {
		_, err := tx.GetTransaction(context.Background(), 3)
		return err
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_IsMember(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `household_members` WHERE household_id = \\? AND user_id = \\?").
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := store.IsMember(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_DeleteHouseholdCascades(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `id` FROM `bank_accounts` WHERE household_id = \\?").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3).AddRow(4))
	mock.ExpectExec("DELETE FROM `transactions` WHERE bank_account_id IN \\(\\?,\\?\\)").
		WithArgs(3, 4).
		WillReturnResult(sqlmock.NewResult(0, 5))
	for _, table := range []string{"bank_accounts", "categories", "household_members", "household_invitations"} {
		mock.ExpectExec("DELETE FROM `" + table + "` WHERE household_id = \\?").
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec("DELETE FROM `households` WHERE `households`.`id` = \\?").
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.DeleteHousehold(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_DeleteHouseholdMissing(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `id` FROM `bank_accounts`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	for _, table := range []string{"bank_accounts", "categories", "household_members", "household_invitations"} {
		mock.ExpectExec("DELETE FROM `" + table + "`").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec("DELETE FROM `households`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.DeleteHousehold(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_PageTransactions(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `transactions` WHERE bank_account_id = \\?").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("SELECT \\* FROM `transactions` WHERE bank_account_id = \\? ORDER BY transaction_date DESC, id DESC LIMIT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "bank_account_id", "amount"}).AddRow(1, 7, "-9.90"))

	list, total, err := store.PageTransactions(context.Background(), 7, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 1)
	assert.True(t, list[0].Amount.Equal(decimal.RequireFromString("-9.9")))
	assert.NoError(t, mock.ExpectationsWereMet())
}
