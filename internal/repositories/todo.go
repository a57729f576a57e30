package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cwh-todolist/backend/internal/models"
)

const todoColumns = "id, user_id, title, description, start_date, due_date, status, created_at, updated_at"

// TodoRepository はMySQLでTodoを扱うリポジトリです。
type TodoRepository struct {
	DB *sql.DB
}

var _ TodoStore = (*TodoRepository)(nil)

// NewTodoRepository は新しいTodoRepositoryインスタンスを作成します。
func NewTodoRepository(db *sql.DB) *TodoRepository {
	return &TodoRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (*models.Todo, error) {
	var t models.Todo
	var description sql.NullString
	if err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &description,
		&t.StartDate, &t.DueDate, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if description.Valid {
		t.Description = &description.String
	}
	return &t, nil
}

// List はユーザーのTodoを条件付きで取得します。Status 未指定時は ACTIVE のみです。
func (r *TodoRepository) List(ctx context.Context, userID string, filter models.TodoFilter) ([]*models.Todo, error) {
	status := filter.Status
	if status == "" {
		status = models.TodoStatusActive
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + todoColumns + " FROM todos WHERE user_id = ? AND status = ?")
	args := []any{userID, string(status)}

	if filter.StartFrom != nil {
		sb.WriteString(" AND start_date >= ?")
		args = append(args, filter.StartFrom.UTC())
	}
	if filter.DueUntil != nil {
		sb.WriteString(" AND due_date <= ?")
		args = append(args, filter.DueUntil.UTC())
	}
	if filter.Sort == models.SortByDueDate {
		sb.WriteString(" ORDER BY due_date ASC")
	} else {
		sb.WriteString(" ORDER BY created_at DESC")
	}

	rows, err := r.DB.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("could not query todos: %w", err)
	}
	defer rows.Close()

	todos := []*models.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}
	return todos, nil
}

// FindByID は所有者が userID のTodoを取得します。存在しない場合も他人のものの場合も ErrTodoNotFound です。
func (r *TodoRepository) FindByID(ctx context.Context, id, userID string) (*models.Todo, error) {
	query := "SELECT " + todoColumns + " FROM todos WHERE id = ? AND user_id = ?"
	t, err := scanTodo(r.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("could not query todo: %w", err)
	}
	return t, nil
}

// Create は新しいTodoを ACTIVE 状態で挿入します。
func (r *TodoRepository) Create(ctx context.Context, t *models.Todo) (*models.Todo, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	created := *t
	created.ID = uuid.NewString()
	created.Status = models.TodoStatusActive
	created.StartDate = created.StartDate.UTC()
	created.DueDate = created.DueDate.UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	query := "INSERT INTO todos (" + todoColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := r.DB.ExecContext(ctx, query,
		created.ID, created.UserID, created.Title, nullableString(created.Description),
		created.StartDate, created.DueDate, string(created.Status), created.CreatedAt, created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("could not insert todo: %w", err)
	}
	return &created, nil
}

// Update は所有者を再確認したうえで、指定されたフィールドのみ更新します。
func (r *TodoRepository) Update(ctx context.Context, id, userID string, patch models.TodoPatch) (*models.Todo, error) {
	existing, err := r.FindByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return existing, nil
	}

	var sets []string
	var args []any
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, nullableString(patch.Description))
	}
	if patch.StartDate != nil {
		sets = append(sets, "start_date = ?")
		args = append(args, patch.StartDate.UTC())
	}
	if patch.DueDate != nil {
		sets = append(sets, "due_date = ?")
		args = append(args, patch.DueDate.UTC())
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Truncate(time.Millisecond), id, userID)

	query := "UPDATE todos SET " + strings.Join(sets, ", ") + " WHERE id = ? AND user_id = ?"
	if _, err := r.DB.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("could not update todo: %w", err)
	}

	// 更新されたTODOを取得して返す
	return r.FindByID(ctx, id, userID)
}

// Delete は所有者を再確認したうえでTodoを物理削除します。
func (r *TodoRepository) Delete(ctx context.Context, id, userID string) error {
	if _, err := r.FindByID(ctx, id, userID); err != nil {
		return err
	}

	result, err := r.DB.ExecContext(ctx, "DELETE FROM todos WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("could not delete todo: %w", err)
	}

	// 削除された行数を確認
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTodoNotFound
	}
	return nil
}

// 空文字は NULL として保存する
func nullableString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
