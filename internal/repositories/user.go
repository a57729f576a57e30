package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"cwh-todolist/backend/internal/models"

	"golang.org/x/crypto/bcrypt" // パスワードのハッシュ化用
)

// MySQLの重複エントリーエラーコード
const mysqlErrDuplicateEntry = 1062

// UserRepository はMySQLでユーザーを扱うリポジトリです。
type UserRepository struct {
	DB *sql.DB
}

var _ UserStore = (*UserRepository)(nil)

// NewUserRepository は新しいUserRepositoryインスタンスを作成します。
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// HashPassword は与えられたパスワードをbcryptでハッシュ化します。
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedPassword), nil
}

// VerifyPassword はハッシュ化されたパスワードと平文のパスワードを比較します。
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// Create は新しいユーザーをデータベースに挿入します。IDとタイムスタンプはここで採番します。
func (r *UserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	created := *u
	created.ID = uuid.NewString()
	created.CreatedAt = now
	created.UpdatedAt = now

	query := "INSERT INTO users (id, username, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)"
	_, err := r.DB.ExecContext(ctx, query,
		created.ID, created.Username, created.Email, created.PasswordHash, created.CreatedAt, created.UpdatedAt)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("could not insert user: %w", err)
	}
	return &created, nil
}

// FindByID はIDでユーザーを検索します。
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, "id", id)
}

// FindByUsername はユーザー名（大文字小文字を区別）でユーザーを検索します。
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username", username)
}

// FindByEmail はメールアドレスでユーザーを検索します。
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email", email)
}

// column は呼び出し元の固定値のみ（ユーザー入力を渡さないこと）
func (r *UserRepository) findOne(ctx context.Context, column, value string) (*models.User, error) {
	query := "SELECT id, username, email, password_hash, created_at, updated_at FROM users WHERE " + column + " = ?"
	var u models.User
	err := r.DB.QueryRowContext(ctx, query, value).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not query user by %s: %w", column, err)
	}
	return &u, nil
}
