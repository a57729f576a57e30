// Package repositories はデータベース操作を行うリポジトリを提供します。
package repositories

import (
	"context"
	"errors"

	"cwh-todolist/backend/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("duplicate username or email")
	ErrTodoNotFound  = errors.New("todo not found")
)

// UserStore はユーザー（認証情報）の永続化を抽象化します。
type UserStore interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// TodoStore はTodoの永続化を抽象化します。
// すべての操作は所有ユーザーで絞り込まれ、他人のTodoは ErrTodoNotFound として扱われます。
type TodoStore interface {
	List(ctx context.Context, userID string, filter models.TodoFilter) ([]*models.Todo, error)
	FindByID(ctx context.Context, id, userID string) (*models.Todo, error)
	Create(ctx context.Context, t *models.Todo) (*models.Todo, error)
	Update(ctx context.Context, id, userID string, patch models.TodoPatch) (*models.Todo, error)
	Delete(ctx context.Context, id, userID string) error
}
