package service

import (
	"context"
	"errors"
	"strings"

	"budget/models"
	"budget/repository"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials 邮箱或密码错误
var ErrInvalidCredentials = errors.New("invalid credentials")

const maxPasswordBytes = 72

func passwordTooLong() error {
	return Validation("参数错误", map[string]string{"password": "密码过长"})
}

// UserService 用户注册与登录校验
type UserService struct {
	store repository.Store
}

// NewUserService 创建用户服务
func NewUserService(store repository.Store) *UserService {
	return &UserService{store: store}
}

// Register 注册新用户，邮箱不区分大小写且唯一
func (s *UserService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, Conflict("邮箱已被注册")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// bcrypt 只接受 72 字节以内的密码，按字节而非字符计算
	if len(password) > maxPasswordBytes {
		return nil, passwordTooLong()
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, passwordTooLong()
		}
		return nil, err
	}
	user := &models.User{
		Email:    email,
		Name:     strings.TrimSpace(name),
		Password: string(hashed),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, Conflict("邮箱已被注册")
		}
		return nil, err
	}
	return user, nil
}

// Authenticate 校验邮箱与密码
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Get 获取用户
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "用户不存在")
	}
	return user, nil
}
