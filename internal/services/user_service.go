package services

import (
	"context"
	"errors"
	"fmt"

	"cwh-todolist/backend/internal/models"
	"cwh-todolist/backend/internal/repositories"
)

var (
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserService はユーザー関連のビジネスロジックを扱います。
type UserService struct {
	userRepo   repositories.UserStore
	jwtService *JWTService
}

// NewUserService は新しいUserServiceを作成します。
func NewUserService(userRepo repositories.UserStore, jwtService *JWTService) *UserService {
	return &UserService{userRepo: userRepo, jwtService: jwtService}
}

// Signup はユーザーを登録し、トークンを発行します。
// ユーザー名の重複をメールアドレスより先に確認します。
func (s *UserService) Signup(ctx context.Context, req models.UserSignupRequest) (*models.AuthResponse, error) {
	if err := s.ensureUnused(ctx, req.Username, req.Email); err != nil {
		return nil, err
	}

	hashedPassword, err := repositories.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	createdUser, err := s.userRepo.Create(ctx, &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
	})
	if errors.Is(err, repositories.ErrDuplicateUser) {
		// 事前確認と挿入の間に同じ値が登録された場合
		if cerr := s.ensureUnused(ctx, req.Username, req.Email); cerr != nil {
			return nil, cerr
		}
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("could not create user: %w", err)
	}

	return s.issue(createdUser)
}

// Login はメールアドレスとパスワードでユーザーを認証します。
// ユーザーが存在しない場合もパスワード不一致と同じエラーを返します。
func (s *UserService) Login(ctx context.Context, req models.UserLoginRequest) (*models.AuthResponse, error) {
	foundUser, err := s.userRepo.FindByEmail(ctx, req.Email)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("could not look up user: %w", err)
	}

	if err := repositories.VerifyPassword(foundUser.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(foundUser)
}

func (s *UserService) ensureUnused(ctx context.Context, username, email string) error {
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return fmt.Errorf("could not look up username: %w", err)
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return fmt.Errorf("could not look up email: %w", err)
	}
	return nil
}

func (s *UserService) issue(u *models.User) (*models.AuthResponse, error) {
	token, err := s.jwtService.GenerateToken(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = "" // レスポンスにパスワードを含めない
	return &models.AuthResponse{Token: token, User: u}, nil
}
