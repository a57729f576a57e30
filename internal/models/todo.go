// Package modelsはTodoとUserを定義します。
package models

import (
	"strings"
	"time"
)

// TodoStatus はTodoのライフサイクル状態です。
type TodoStatus string

const (
	TodoStatusActive  TodoStatus = "ACTIVE"
	TodoStatusTrashed TodoStatus = "TRASHED"
)

// IsValid は定義済みの状態かどうかを返します。
func (s TodoStatus) IsValid() bool {
	return s == TodoStatusActive || s == TodoStatusTrashed
}

type Todo struct {
	ID          string     `json:"id"`          // 主キー (UUID)
	UserID      string     `json:"userId"`      // 所有ユーザー
	Title       string     `json:"title"`       // タスクのタイトル
	Description *string    `json:"description"` // 任意。未設定なら null
	StartDate   time.Time  `json:"startDate"`
	DueDate     time.Time  `json:"dueDate"` // StartDate より後
	Status      TodoStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TodoSort は一覧の並び順です。
type TodoSort string

const (
	SortByCreatedAt TodoSort = "createdAt" // created_at 降順（デフォルト）
	SortByDueDate   TodoSort = "dueDate"   // due_date 昇順
)

// TodoFilter は一覧取得の条件です。
type TodoFilter struct {
	Status    TodoStatus
	StartFrom *time.Time // start_date >= StartFrom
	DueUntil  *time.Time // due_date <= DueUntil
	Sort      TodoSort
}

// TodoPatch は更新対象のフィールドのみを保持します。nil のフィールドは変更しません。
type TodoPatch struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	DueDate     *time.Time
	Status      *TodoStatus
}

// IsEmpty は更新するフィールドが一つも無いかを返します。
func (p TodoPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.StartDate == nil && p.DueDate == nil && p.Status == nil
}

// CreateTodoRequest はTodo作成リクエストです。日付は ISO 8601 文字列で受け取ります。
type CreateTodoRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=100"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
	StartDate   string  `json:"startDate" validate:"required,iso8601"`
	DueDate     string  `json:"dueDate" validate:"required,iso8601"`
}

// Normalize はタイトルと説明の前後の空白を除去します。空の説明は未指定として扱います。
func (r *CreateTodoRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = trimOptional(r.Description)
	if r.Description != nil && *r.Description == "" {
		r.Description = nil
	}
}

// UpdateTodoRequest はTodo更新リクエストです。すべてのフィールドが任意です。
type UpdateTodoRequest struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=100"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
	StartDate   *string `json:"startDate" validate:"omitnil,iso8601"`
	DueDate     *string `json:"dueDate" validate:"omitnil,iso8601"`
	Status      *string `json:"status" validate:"omitnil,oneof=ACTIVE TRASHED"`
}

// Normalize は文字列フィールドの前後の空白を除去します。
func (r *UpdateTodoRequest) Normalize() {
	r.Title = trimOptional(r.Title)
	r.Description = trimOptional(r.Description)
}

// ListTodosQuery は GET /api/todos のクエリパラメータです。
type ListTodosQuery struct {
	StartDate string `form:"startDate" json:"startDate" validate:"omitempty,iso8601"`
	EndDate   string `form:"endDate" json:"endDate" validate:"omitempty,iso8601"`
	Sort      string `form:"sort" json:"sort" validate:"omitempty,oneof=dueDate createdAt"`
	Status    string `form:"status" json:"status" validate:"omitempty,oneof=ACTIVE TRASHED"`
}

// TodoListResponse は一覧取得の data 部分です。
type TodoListResponse struct {
	Todos []*Todo `json:"todos"`
	Count int     `json:"count"`
}

// TodoResponse は単一Todoの data 部分です。
type TodoResponse struct {
	Todo *Todo `json:"todo"`
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
