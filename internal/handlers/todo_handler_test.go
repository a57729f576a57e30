package handlers_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cwh-todolist/backend/internal/models"
	"cwh-todolist/backend/testutil"
)

func setupWithUser(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	r := testutil.SetupTestRouter(t)
	return r, testutil.SignupAndGetToken(t, r, "alice", "alice@example.com", "Password1")
}

func listTodos(t *testing.T, r *gin.Engine, token, query string) models.TodoListResponse {
	t.Helper()
	w := testutil.PerformRequest(r, http.MethodGet, "/api/todos"+query, nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res models.TodoListResponse
	testutil.DecodeEnvelope(t, w, &res)
	return res
}

func TestTodoFlow_EndToEnd(t *testing.T) {
	r := testutil.SetupTestRouter(t)

	w := testutil.PerformRequest(r, http.MethodPost, "/api/auth/signup", map[string]string{
		"username": "alice", "email": "a@x.com", "password": "Password123!",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var auth models.AuthResponse
	testutil.DecodeEnvelope(t, w, &auth)
	assert.Equal(t, "alice", auth.User.Username)

	w = testutil.PerformRequest(r, http.MethodPost, "/api/todos", map[string]string{
		"title":     "buy milk",
		"startDate": "2024-01-01T00:00:00Z",
		"dueDate":   "2024-01-02T00:00:00Z",
	}, auth.Token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.TodoResponse
	testutil.DecodeEnvelope(t, w, &created)
	assert.Equal(t, "buy milk", created.Todo.Title)

	list := listTodos(t, r, auth.Token, "")
	assert.Equal(t, 1, list.Count)
	require.Len(t, list.Todos, 1)
	assert.Equal(t, "buy milk", list.Todos[0].Title)
}

func TestCreateTodoHandler(t *testing.T) {
	r, token := setupWithUser(t)

	w := testutil.PerformRequest(r, http.MethodPost, "/api/todos", map[string]string{
		"title":       "  Write report  ",
		"description": "quarterly",
		"startDate":   "2025-01-01T09:00:00+09:00",
		"dueDate":     "2025-01-02",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res models.TodoResponse
	env := testutil.DecodeEnvelope(t, w, &res)
	assert.True(t, env.Success)
	assert.Equal(t, "Write report", res.Todo.Title)
	require.NotNil(t, res.Todo.Description)
	assert.Equal(t, "quarterly", *res.Todo.Description)
	assert.Equal(t, models.TodoStatusActive, res.Todo.Status)
	assert.True(t, res.Todo.StartDate.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, res.Todo.DueDate.Equal(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)))
	assert.NotEmpty(t, res.Todo.UserID)
}

func TestCreateTodoHandler_EmptyDescriptionIsNull(t *testing.T) {
	r, token := setupWithUser(t)

	w := testutil.PerformRequest(r, http.MethodPost, "/api/todos", map[string]string{
		"title": "x", "description": "   ", "startDate": "2025-01-01", "dueDate": "2025-01-02",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"description":null`)
}

func TestCreateTodoHandler_Validation(t *testing.T) {
	r, token := setupWithUser(t)

	tests := []struct {
		name   string
		body   any
		fields []string
	}{
		{"missing fields", map[string]string{}, []string{"title", "startDate", "dueDate"}},
		{"blank title", map[string]string{"title": "   ", "startDate": "2025-01-01", "dueDate": "2025-01-02"}, []string{"title"}},
		{"long title", map[string]string{"title": strings.Repeat("a", 101), "startDate": "2025-01-01", "dueDate": "2025-01-02"}, []string{"title"}},
		{"long description", map[string]string{"title": "x", "description": strings.Repeat("a", 1001), "startDate": "2025-01-01", "dueDate": "2025-01-02"}, []string{"description"}},
		{"bad date", map[string]string{"title": "x", "startDate": "tomorrow", "dueDate": "2025-01-02"}, []string{"startDate"}},
		{"due equals start", map[string]string{"title": "x", "startDate": "2025-01-02", "dueDate": "2025-01-02"}, []string{"dueDate"}},
		{"due before start", map[string]string{"title": "x", "startDate": "2025-01-03", "dueDate": "2025-01-02"}, []string{"dueDate"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.PerformRequest(r, http.MethodPost, "/api/todos", tt.body, token)

			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			env := testutil.DecodeEnvelope(t, w, nil)
			require.NotNil(t, env.Error)
			assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
			assert.ElementsMatch(t, tt.fields, detailFields(env))
		})
	}

	assert.Equal(t, 0, listTodos(t, r, token, "").Count)
}

func TestGetTodosHandler_FiltersAndSort(t *testing.T) {
	r, token := setupWithUser(t)

	testutil.CreateTestTodo(t, r, token, "late", "2025-01-01", "2025-01-20")
	testutil.CreateTestTodo(t, r, token, "early", "2025-01-05", "2025-01-07")
	testutil.CreateTestTodo(t, r, token, "middle", "2025-01-10", "2025-01-12")

	titles := func(res models.TodoListResponse) []string {
		var out []string
		for _, td := range res.Todos {
			out = append(out, td.Title)
		}
		return out
	}

	assert.Equal(t, []string{"middle", "early", "late"}, titles(listTodos(t, r, token, "")))
	assert.Equal(t, []string{"early", "middle", "late"}, titles(listTodos(t, r, token, "?sort=dueDate")))
	assert.Equal(t, []string{"middle", "early"}, titles(listTodos(t, r, token, "?startDate=2025-01-05")))
	assert.Equal(t, []string{"early"}, titles(listTodos(t, r, token, "?startDate=2025-01-02&endDate=2025-01-10&sort=dueDate")))

	w := testutil.PerformRequest(r, http.MethodGet, "/api/todos?sort=title", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = testutil.PerformRequest(r, http.MethodGet, "/api/todos?startDate=yesterday", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTodosHandler_EmptyListIsArray(t *testing.T) {
	r, token := setupWithUser(t)

	w := testutil.PerformRequest(r, http.MethodGet, "/api/todos", nil, token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"todos":[],"count":0}}`, w.Body.String())
}

func TestUpdateTodoHandler(t *testing.T) {
	r, token := setupWithUser(t)
	created := testutil.CreateTestTodo(t, r, token, "draft", "2025-01-01", "2025-01-02")

	w := testutil.PerformRequest(r, http.MethodPut, "/api/todos/"+created.ID, map[string]string{
		"title": "final", "description": "notes",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res models.TodoResponse
	testutil.DecodeEnvelope(t, w, &res)
	assert.Equal(t, "final", res.Todo.Title)
	require.NotNil(t, res.Todo.Description)
	assert.Equal(t, "notes", *res.Todo.Description)
	assert.True(t, res.Todo.StartDate.Equal(created.StartDate))
	assert.False(t, res.Todo.UpdatedAt.Before(created.UpdatedAt))

	// 空文字の説明は削除
	w = testutil.PerformRequest(r, http.MethodPut, "/api/todos/"+created.ID, map[string]string{"description": ""}, token)
	require.Equal(t, http.StatusOK, w.Code)
	testutil.DecodeEnvelope(t, w, &res)
	assert.Nil(t, res.Todo.Description)
	assert.Equal(t, "final", res.Todo.Title)

	// 空のボディは何も変更しない
	w = testutil.PerformRequest(r, http.MethodPut, "/api/todos/"+created.ID, map[string]string{}, token)
	require.Equal(t, http.StatusOK, w.Code)
	testutil.DecodeEnvelope(t, w, &res)
	assert.Equal(t, "final", res.Todo.Title)
}

func TestUpdateTodoHandler_Validation(t *testing.T) {
	r, token := setupWithUser(t)
	created := testutil.CreateTestTodo(t, r, token, "draft", "2025-01-01", "2025-01-02")

	tests := []struct {
		name   string
		body   any
		fields []string
	}{
		{"blank title", map[string]string{"title": " "}, []string{"title"}},
		{"bad status", map[string]string{"status": "DONE"}, []string{"status"}},
		{"bad date", map[string]string{"dueDate": "soon"}, []string{"dueDate"}},
		{"order with both dates", map[string]string{"startDate": "2025-02-02", "dueDate": "2025-02-01"}, []string{"dueDate"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.PerformRequest(r, http.MethodPut, "/api/todos/"+created.ID, tt.body, token)

			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			env := testutil.DecodeEnvelope(t, w, nil)
			require.NotNil(t, env.Error)
			assert.ElementsMatch(t, tt.fields, detailFields(env))
		})
	}

	// 片方の日時のみの更新は前後関係を確認しない
	w := testutil.PerformRequest(r, http.MethodPut, "/api/todos/"+created.ID, map[string]string{"startDate": "2025-03-01"}, token)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestUpdateTodoHandler_TrashAndRestore(t *testing.T) {
	r, token := setupWithUser(t)
	created := testutil.CreateTestTodo(t, r, token, "old task", "2025-01-01", "2025-01-02")

	w := testutil.PerformRequest(r, http.MethodPut, "/api/todos/"+created.ID, map[string]string{"status": "TRASHED"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, 0, listTodos(t, r, token, "").Count)
	trash := listTodos(t, r, token, "?status=TRASHED")
	require.Equal(t, 1, trash.Count)
	assert.Equal(t, models.TodoStatusTrashed, trash.Todos[0].Status)

	w = testutil.PerformRequest(r, http.MethodPut, "/api/todos/"+created.ID, map[string]string{"status": "ACTIVE"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, listTodos(t, r, token, "").Count)
}

func TestTodoHandlers_NotFound(t *testing.T) {
	r, token := setupWithUser(t)
	const missing = "00000000-0000-0000-0000-000000000000"

	requests := []struct {
		method string
		body   any
	}{
		{http.MethodGet, nil},
		{http.MethodPut, map[string]string{"title": "x"}},
		{http.MethodDelete, nil},
	}
	for _, rq := range requests {
		w := testutil.PerformRequest(r, rq.method, "/api/todos/"+missing, rq.body, token)

		assert.Equal(t, http.StatusNotFound, w.Code, rq.method)
		env := testutil.DecodeEnvelope(t, w, nil)
		require.NotNil(t, env.Error)
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	}
}

func TestTodoHandlers_OwnershipIsHidden(t *testing.T) {
	r, aliceToken := setupWithUser(t)
	bobToken := testutil.SignupAndGetToken(t, r, "bob", "bob@example.com", "Password1")
	todo := testutil.CreateTestTodo(t, r, aliceToken, "alice's", "2025-01-01", "2025-01-02")

	missing := testutil.PerformRequest(r, http.MethodGet, "/api/todos/00000000-0000-0000-0000-000000000000", nil, bobToken)

	requests := []struct {
		method string
		body   any
	}{
		{http.MethodGet, nil},
		{http.MethodPut, map[string]string{"title": "mine now"}},
		{http.MethodDelete, nil},
	}
	for _, rq := range requests {
		w := testutil.PerformRequest(r, rq.method, "/api/todos/"+todo.ID, rq.body, bobToken)

		// 他人のTodoは存在しないTodoと同じ応答になる
		assert.Equal(t, missing.Code, w.Code, rq.method)
		assert.JSONEq(t, missing.Body.String(), w.Body.String(), rq.method)
	}

	assert.Equal(t, 0, listTodos(t, r, bobToken, "").Count)

	w := testutil.PerformRequest(r, http.MethodGet, "/api/todos/"+todo.ID, nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)
	var res models.TodoResponse
	testutil.DecodeEnvelope(t, w, &res)
	assert.Equal(t, "alice's", res.Todo.Title)
}

func TestDeleteTodoHandler(t *testing.T) {
	r, token := setupWithUser(t)
	created := testutil.CreateTestTodo(t, r, token, "temp", "2025-01-01", "2025-01-02")

	w := testutil.PerformRequest(r, http.MethodDelete, "/api/todos/"+created.ID, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	env := testutil.DecodeEnvelope(t, w, nil)
	assert.True(t, env.Success)
	assert.Equal(t, "Todo deleted successfully", env.Message)

	w = testutil.PerformRequest(r, http.MethodGet, "/api/todos/"+created.ID, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = testutil.PerformRequest(r, http.MethodDelete, "/api/todos/"+created.ID, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTodoHandlers_AuthBeforeValidation(t *testing.T) {
	r := testutil.SetupTestRouter(t)

	w := testutil.PerformRequest(r, http.MethodPost, "/api/todos", map[string]string{}, "not-a-token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	env := testutil.DecodeEnvelope(t, w, nil)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Token format is invalid", env.Error.Message)
}
