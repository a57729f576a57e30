package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cwh-todolist/backend/internal/apierror"
	"cwh-todolist/backend/internal/models"
	"cwh-todolist/backend/internal/repositories"
	"cwh-todolist/backend/internal/services"
	"cwh-todolist/backend/internal/validation"
)

const todoNotFoundMessage = "Todo not found"

// TodoHandler はTodo関連のハンドラーを管理します。
// 認証ミドルウェアの後ろで使う前提です。
type TodoHandler struct {
	todoService *services.TodoService
	validator   *validation.Validator
}

// NewTodoHandler は新しいTodoHandlerを作成します。
func NewTodoHandler(todoService *services.TodoService, v *validation.Validator) *TodoHandler {
	return &TodoHandler{todoService: todoService, validator: v}
}

// GetTodosHandler はユーザーのTodo一覧を取得します。
func (h *TodoHandler) GetTodosHandler(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var q models.ListTodosQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, apierror.Validation([]validation.FieldError{{Field: "query", Message: "Query parameters are invalid"}}))
		return
	}
	if errs := h.validator.Struct(&q); errs != nil {
		fail(c, apierror.Validation(errs))
		return
	}

	filter := models.TodoFilter{
		Status: models.TodoStatus(q.Status),
		Sort:   models.TodoSort(q.Sort),
	}
	if q.StartDate != "" {
		from, _ := validation.ParseTime(q.StartDate)
		filter.StartFrom = &from
	}
	if q.EndDate != "" {
		until, _ := validation.ParseTime(q.EndDate)
		filter.DueUntil = &until
	}

	todos, err := h.todoService.ListTodos(c.Request.Context(), p.UserID, filter)
	if err != nil {
		fail(c, apierror.Internal("Failed to retrieve todos", err))
		return
	}
	respondData(c, http.StatusOK, models.TodoListResponse{Todos: todos, Count: len(todos)})
}

// GetTodoByIDHandler は指定IDのTodoを取得します。
func (h *TodoHandler) GetTodoByIDHandler(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	todo, err := h.todoService.GetTodo(c.Request.Context(), c.Param("id"), p.UserID)
	if err != nil {
		fail(c, todoError(err, "Failed to retrieve todo"))
		return
	}
	respondData(c, http.StatusOK, models.TodoResponse{Todo: todo})
}

// CreateTodoHandler は新しいTodoを作成します。
func (h *TodoHandler) CreateTodoHandler(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req models.CreateTodoRequest
	if apiErr := bindJSON(c, h.validator, &req); apiErr != nil {
		fail(c, apiErr)
		return
	}

	// 日時は検証済み
	start, _ := validation.ParseTime(req.StartDate)
	due, _ := validation.ParseTime(req.DueDate)

	created, err := h.todoService.CreateTodo(c.Request.Context(), p.UserID, &models.Todo{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   start,
		DueDate:     due,
	})
	if err != nil {
		fail(c, todoError(err, "Failed to create todo"))
		return
	}
	respondData(c, http.StatusCreated, models.TodoResponse{Todo: created})
}

// UpdateTodoHandler はTodoを部分更新します。
func (h *TodoHandler) UpdateTodoHandler(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req models.UpdateTodoRequest
	if apiErr := bindJSON(c, h.validator, &req); apiErr != nil {
		fail(c, apiErr)
		return
	}

	patch := models.TodoPatch{Title: req.Title, Description: req.Description}
	if req.StartDate != nil {
		start, _ := validation.ParseTime(*req.StartDate)
		patch.StartDate = &start
	}
	if req.DueDate != nil {
		due, _ := validation.ParseTime(*req.DueDate)
		patch.DueDate = &due
	}
	if req.Status != nil {
		status := models.TodoStatus(*req.Status)
		patch.Status = &status
	}

	updated, err := h.todoService.UpdateTodo(c.Request.Context(), c.Param("id"), p.UserID, patch)
	if err != nil {
		fail(c, todoError(err, "Failed to update todo"))
		return
	}
	respondData(c, http.StatusOK, models.TodoResponse{Todo: updated})
}

// DeleteTodoHandler はTodoを削除します。
func (h *TodoHandler) DeleteTodoHandler(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	if err := h.todoService.DeleteTodo(c.Request.Context(), c.Param("id"), p.UserID); err != nil {
		fail(c, todoError(err, "Failed to delete todo"))
		return
	}
	respondMessage(c, http.StatusOK, "Todo deleted successfully")
}

func todoError(err error, internalMessage string) *apierror.Error {
	switch {
	case errors.Is(err, repositories.ErrTodoNotFound):
		return apierror.NotFound(todoNotFoundMessage)
	case errors.Is(err, services.ErrInvalidDateRange):
		return apierror.Validation([]validation.FieldError{{Field: "dueDate", Message: err.Error()}})
	default:
		return apierror.Internal(internalMessage, err)
	}
}
