package service

import (
	"context"
	"strings"
	"testing"

	"budget/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_RegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	s := NewUserService(repository.NewMemoryStore())

	u, err := s.Register(ctx, " Alice@Example.com ", "secret123", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEqual(t, "secret123", u.Password)

	_, err = s.Register(ctx, "ALICE@example.com", "another", "")
	requireKind(t, KindConflict, err)

	got, err := s.Authenticate(ctx, "alice@EXAMPLE.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.Authenticate(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Authenticate(ctx, "bob@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Get(ctx, 9999)
	requireKind(t, KindNotFound, err)
}

func TestUser_RegisterRejectsPasswordOverBcryptLimit(t *testing.T) {
	ctx := context.Background()
	s := NewUserService(repository.NewMemoryStore())

	// 30 个汉字共 90 字节
	_, err := s.Register(ctx, "cjk@example.com", strings.Repeat("密", 30), "")
	requireKind(t, KindValidation, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Contains(t, e.Fields, "password")

	_, err = s.Register(ctx, "cjk@example.com", strings.Repeat("密", 24), "")
	require.NoError(t, err)
}
