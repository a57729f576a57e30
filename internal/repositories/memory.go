package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"cwh-todolist/backend/internal/models"
)

// MemoryStore はプロセス内で完結するストアです。DB_DRIVER=memory での起動とテストで使います。
// 再起動するとデータは失われます。
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]models.User
	todos map[string]memoryTodo
	seq   int64
}

type memoryTodo struct {
	todo models.Todo
	seq  int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]models.User),
		todos: make(map[string]memoryTodo),
	}
}

// Users はユーザー用のビューを返します。
func (s *MemoryStore) Users() *MemoryUserRepository {
	return &MemoryUserRepository{s: s}
}

// Todos はTodo用のビューを返します。
func (s *MemoryStore) Todos() *MemoryTodoRepository {
	return &MemoryTodoRepository{s: s}
}

func memoryNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

type MemoryUserRepository struct {
	s *MemoryStore
}

var _ UserStore = (*MemoryUserRepository)(nil)

func (r *MemoryUserRepository) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return nil, ErrDuplicateUser
		}
	}

	now := memoryNow()
	created := *u
	created.ID = uuid.NewString()
	created.CreatedAt = now
	created.UpdatedAt = now
	r.s.users[created.ID] = created
	return &created, nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *MemoryUserRepository) find(match func(models.User) bool) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, ErrUserNotFound
}

type MemoryTodoRepository struct {
	s *MemoryStore
}

var _ TodoStore = (*MemoryTodoRepository)(nil)

func (r *MemoryTodoRepository) List(_ context.Context, userID string, filter models.TodoFilter) ([]*models.Todo, error) {
	status := filter.Status
	if status == "" {
		status = models.TodoStatusActive
	}

	r.s.mu.RLock()
	var matched []memoryTodo
	for _, e := range r.s.todos {
		t := e.todo
		if t.UserID != userID || t.Status != status {
			continue
		}
		if filter.StartFrom != nil && t.StartDate.Before(*filter.StartFrom) {
			continue
		}
		if filter.DueUntil != nil && t.DueDate.After(*filter.DueUntil) {
			continue
		}
		matched = append(matched, e)
	}
	r.s.mu.RUnlock()

	if filter.Sort == models.SortByDueDate {
		sort.Slice(matched, func(i, j int) bool {
			a, b := matched[i], matched[j]
			if !a.todo.DueDate.Equal(b.todo.DueDate) {
				return a.todo.DueDate.Before(b.todo.DueDate)
			}
			return a.seq < b.seq
		})
	} else {
		// 作成日時の降順。同時刻は後から作成したものを先に並べる
		sort.Slice(matched, func(i, j int) bool {
			a, b := matched[i], matched[j]
			if !a.todo.CreatedAt.Equal(b.todo.CreatedAt) {
				return a.todo.CreatedAt.After(b.todo.CreatedAt)
			}
			return a.seq > b.seq
		})
	}

	todos := make([]*models.Todo, 0, len(matched))
	for _, e := range matched {
		todos = append(todos, cloneTodo(e.todo))
	}
	return todos, nil
}

func (r *MemoryTodoRepository) FindByID(_ context.Context, id, userID string) (*models.Todo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.todos[id]
	if !ok || e.todo.UserID != userID {
		return nil, ErrTodoNotFound
	}
	return cloneTodo(e.todo), nil
}

func (r *MemoryTodoRepository) Create(_ context.Context, t *models.Todo) (*models.Todo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := memoryNow()
	created := *cloneTodo(*t)
	created.ID = uuid.NewString()
	created.Status = models.TodoStatusActive
	created.StartDate = created.StartDate.UTC()
	created.DueDate = created.DueDate.UTC()
	if created.Description != nil && *created.Description == "" {
		created.Description = nil
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.s.seq++
	r.s.todos[created.ID] = memoryTodo{todo: created, seq: r.s.seq}
	return cloneTodo(created), nil
}

func (r *MemoryTodoRepository) Update(_ context.Context, id, userID string, patch models.TodoPatch) (*models.Todo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.todos[id]
	if !ok || e.todo.UserID != userID {
		return nil, ErrTodoNotFound
	}
	if patch.IsEmpty() {
		return cloneTodo(e.todo), nil
	}

	t := e.todo
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		if *patch.Description == "" {
			t.Description = nil
		} else {
			d := *patch.Description
			t.Description = &d
		}
	}
	if patch.StartDate != nil {
		t.StartDate = patch.StartDate.UTC()
	}
	if patch.DueDate != nil {
		t.DueDate = patch.DueDate.UTC()
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	t.UpdatedAt = memoryNow()

	e.todo = t
	r.s.todos[id] = e
	return cloneTodo(t), nil
}

func (r *MemoryTodoRepository) Delete(_ context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.todos[id]
	if !ok || e.todo.UserID != userID {
		return ErrTodoNotFound
	}
	delete(r.s.todos, id)
	return nil
}

func cloneTodo(t models.Todo) *models.Todo {
	c := t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	return &c
}
