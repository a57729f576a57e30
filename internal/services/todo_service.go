package services

import (
	"context"
	"errors"

	"cwh-todolist/backend/internal/models"
	"cwh-todolist/backend/internal/repositories"
)

// ErrInvalidDateRange は期限が開始日時より後になっていない場合のエラーです。
var ErrInvalidDateRange = errors.New("dueDate must be after startDate")

// TodoService はTodo関連のビジネスロジックを扱います。
// すべての操作は認証済みユーザーのIDで絞り込まれます。
type TodoService struct {
	todoRepo repositories.TodoStore
}

// NewTodoService は新しいTodoServiceを作成します。
func NewTodoService(todoRepo repositories.TodoStore) *TodoService {
	return &TodoService{todoRepo: todoRepo}
}

// ListTodos はユーザーのTodoを取得します。
func (s *TodoService) ListTodos(ctx context.Context, userID string, filter models.TodoFilter) ([]*models.Todo, error) {
	return s.todoRepo.List(ctx, userID, filter)
}

// GetTodo は指定IDのTodoを取得します。
func (s *TodoService) GetTodo(ctx context.Context, id, userID string) (*models.Todo, error) {
	return s.todoRepo.FindByID(ctx, id, userID)
}

// CreateTodo は新しいTodoを作成します。
func (s *TodoService) CreateTodo(ctx context.Context, userID string, todo *models.Todo) (*models.Todo, error) {
	if !todo.DueDate.After(todo.StartDate) {
		return nil, ErrInvalidDateRange
	}
	todo.UserID = userID
	return s.todoRepo.Create(ctx, todo)
}

// UpdateTodo は指定されたフィールドのみ更新します。
// 日時の前後関係は両方が指定された場合のみ確認します。
func (s *TodoService) UpdateTodo(ctx context.Context, id, userID string, patch models.TodoPatch) (*models.Todo, error) {
	if patch.StartDate != nil && patch.DueDate != nil && !patch.DueDate.After(*patch.StartDate) {
		return nil, ErrInvalidDateRange
	}
	return s.todoRepo.Update(ctx, id, userID, patch)
}

// DeleteTodo はTodoを削除します。
func (s *TodoService) DeleteTodo(ctx context.Context, id, userID string) error {
	return s.todoRepo.Delete(ctx, id, userID)
}
