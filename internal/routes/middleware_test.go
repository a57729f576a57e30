package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cwh-todolist/backend/internal/apierror"
	"cwh-todolist/backend/internal/auth"
	"cwh-todolist/backend/internal/logging"
	"cwh-todolist/backend/internal/services"
)

const testSecret = "middleware-secret"

func newProtectedEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorHandler(logging.Discard()))
	r.GET("/protected", AuthMiddleware(services.NewJWTService(testSecret, time.Hour)), func(c *gin.Context) {
		p, ok := auth.PrincipalFrom(c.Request.Context())
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"userId": p.UserID, "email": p.Email})
	})
	return r
}

func doGet(r http.Handler, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierror.Response {
	t.Helper()
	var res apierror.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	require.NotNil(t, res.Error)
	return res
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	r := newProtectedEngine(t)
	token, err := services.NewJWTService(testSecret, time.Hour).GenerateToken("u-1", "alice@example.com")
	require.NoError(t, err)

	w := doGet(r, "/protected", "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "u-1", body["userId"])
	assert.Equal(t, "alice@example.com", body["email"])
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	r := newProtectedEngine(t)

	expired := services.NewJWTService(testSecret, -time.Minute)
	expiredToken, err := expired.GenerateToken("u-1", "alice@example.com")
	require.NoError(t, err)

	foreignToken, err := services.NewJWTService("other-secret", time.Hour).GenerateToken("u-1", "alice@example.com")
	require.NoError(t, err)

	future := jwt.NewWithClaims(jwt.SigningMethodHS256, &services.Claims{
		UserID: "u-1",
		RegisteredClaims: jwt.RegisteredClaims{
			NotBefore: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(2 * time.Hour)),
		},
	})
	futureToken, err := future.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name          string
		authorization string
		message       string
	}{
		{"missing header", "", "Authorization token is required"},
		{"wrong scheme", "Basic abc", "Authorization header must use the Bearer token format"},
		{"no token", "Bearer ", "Authorization header must use the Bearer token format"},
		{"bare token", expiredToken, "Authorization header must use the Bearer token format"},
		{"malformed", "Bearer invalid", "Token format is invalid"},
		{"expired", "Bearer " + expiredToken, "Token has expired"},
		{"not yet valid", "Bearer " + futureToken, "Token is not active yet"},
		{"wrong signature", "Bearer " + foreignToken, "Invalid authentication token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(r, "/protected", tt.authorization)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			res := decodeError(t, w)
			assert.False(t, res.Success)
			assert.Equal(t, apierror.CodeUnauthorized, res.Error.Code)
			assert.Equal(t, tt.message, res.Error.Message)
		})
	}
}

func TestErrorHandler_HidesInternalCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(logging.Discard()))
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("sql: connection refused"))
	})

	w := doGet(r, "/boom", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	res := decodeError(t, w)
	assert.Equal(t, apierror.CodeInternal, res.Error.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestErrorHandler_DoesNotOverwriteWrittenResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(logging.Discard()))
	r.GET("/written", func(c *gin.Context) {
		c.JSON(http.StatusAccepted, gin.H{"ok": true})
		_ = c.Error(apierror.NotFound("late"))
	})

	w := doGet(r, "/written", "")

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(logging.Discard()), ErrorHandler(logging.Discard()))
	r.GET("/panic", func(c *gin.Context) {
		panic("unexpected")
	})

	w := doGet(r, "/panic", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	res := decodeError(t, w)
	assert.Equal(t, apierror.CodeInternal, res.Error.Code)
	assert.NotContains(t, w.Body.String(), "unexpected")
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(logging.Discard()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := doGet(r, "/ping", "")
	assert.Len(t, w.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "fixed-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "fixed-id", w.Header().Get(requestIDHeader))
}

func TestCorsConfig(t *testing.T) {
	cfg := corsConfig([]string{"http://localhost:3000"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.True(t, cfg.AllowCredentials)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowOrigins)

	cfg = corsConfig([]string{"*"})
	assert.True(t, cfg.AllowAllOrigins)
	assert.False(t, cfg.AllowCredentials)
	assert.Empty(t, cfg.AllowOrigins)
}
