// Package testutil はHTTPレベルのテストで使う共通処理を提供します。
package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"cwh-todolist/backend/internal/config"
	"cwh-todolist/backend/internal/database"
	"cwh-todolist/backend/internal/logging"
	"cwh-todolist/backend/internal/models"
	"cwh-todolist/backend/internal/repositories"
	"cwh-todolist/backend/internal/routes"
)

const TestJWTSecret = "test-jwt-secret"

// Envelope はレスポンス全体をデコードするための型です。
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
}

// TestConfig はテスト用の設定を返します。
func TestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.Env = "test"
	cfg.DBDriver = config.DriverMemory
	cfg.JWTSecret = TestJWTSecret
	cfg.JWTExpiresIn = time.Hour
	return cfg
}

// SetupTestRouter はインメモリストアを使うルーターを作成します。
func SetupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repositories.NewMemoryStore()
	return routes.SetupRouter(routes.Dependencies{
		Config: TestConfig(),
		Logger: logging.Discard(),
		Users:  store.Users(),
		Todos:  store.Todos(),
	})
}

// SetupMySQL はテスト用のMySQLに接続し、マイグレーション後にテーブルを空にします。
// TEST_DB_HOST が未設定の場合はテストをスキップします。
func SetupMySQL(t *testing.T) *sql.DB {
	t.Helper()
	_ = godotenv.Load("../../.env")

	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST is not set; skipping MySQL integration test")
	}
	cfg := TestConfig()
	cfg.DBUser = os.Getenv("TEST_DB_USER")
	cfg.DBPass = os.Getenv("TEST_DB_PASS")
	cfg.DBHost = host
	cfg.DBPort = os.Getenv("TEST_DB_PORT")
	cfg.DBName = os.Getenv("TEST_DB_NAME")

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.DSN())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(ctx, db))

	// todos -> users の順で削除
	for _, stmt := range []string{"DELETE FROM todos", "DELETE FROM users"} {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}
	return db
}

// PerformRequest はJSONボディとトークン付きでリクエストを送ります。body が string の場合はそのまま送ります。
func PerformRequest(r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// DecodeEnvelope はレスポンスをデコードします。out が nil でなければ data 部分もデコードします。
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, out any) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env
}

// SignupAndGetToken はユーザーを登録し、トークンを返します。
func SignupAndGetToken(t *testing.T, r http.Handler, username, email, password string) string {
	t.Helper()
	w := PerformRequest(r, http.MethodPost, "/api/auth/signup", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res models.AuthResponse
	DecodeEnvelope(t, w, &res)
	require.NotEmpty(t, res.Token)
	return res.Token
}

// CreateTestTodo はAPI経由でTodoを作成します。
func CreateTestTodo(t *testing.T, r http.Handler, token, title, startDate, dueDate string) *models.Todo {
	t.Helper()
	w := PerformRequest(r, http.MethodPost, "/api/todos", map[string]string{
		"title":     title,
		"startDate": startDate,
		"dueDate":   dueDate,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res models.TodoResponse
	DecodeEnvelope(t, w, &res)
	return res.Todo
}
