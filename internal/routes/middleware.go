package routes

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cwh-todolist/backend/internal/apierror"
	"cwh-todolist/backend/internal/auth"
	"cwh-todolist/backend/internal/services"
)

const requestIDHeader = "X-Request-ID"

func abort(c *gin.Context, err *apierror.Error) {
	_ = c.Error(err)
	c.Abort()
}

// AuthMiddleware はJWTトークンを検証し、認証済みユーザーをリクエストのコンテキストに設定するミドルウェアです。
func AuthMiddleware(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, apierror.Unauthorized("Authorization token is required"))
			return
		}
		// "Bearer <token>" 形式のみ受け付ける
		scheme, tokenString, found := strings.Cut(header, " ")
		tokenString = strings.TrimSpace(tokenString)
		if !found || scheme != "Bearer" || tokenString == "" {
			abort(c, apierror.Unauthorized("Authorization header must use the Bearer token format"))
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			abort(c, apierror.Unauthorized(tokenErrorMessage(err)))
			return
		}

		ctx := auth.WithPrincipal(c.Request.Context(), auth.Principal{UserID: claims.UserID, Email: claims.Email})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrTokenExpired):
		return "Token has expired"
	case errors.Is(err, services.ErrTokenMalformed):
		return "Token format is invalid"
	case errors.Is(err, services.ErrTokenNotYetValid):
		return "Token is not active yet"
	default:
		return "Invalid authentication token"
	}
}

// ErrorHandler はハンドラーが登録したエラーを共通のエラーレスポンスに変換します。
// 500 系は原因をログに残し、クライアントには詳細を返しません。
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		apiErr := apierror.From(c.Errors.Last().Err)
		if apiErr.Status >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request.Context(), "request failed",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"request_id", c.Writer.Header().Get(requestIDHeader),
				"error", apiErr.Error(),
			)
		}
		if c.Writer.Written() {
			return
		}
		c.JSON(apiErr.Status, apierror.Response{Success: false, Error: apiErr})
	}
}

// Recovery はパニックを 500 のエラーレスポンスに変換します。
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.ErrorContext(c.Request.Context(), "panic recovered",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"panic", recovered,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.Response{
			Success: false,
			Error:   apierror.Internal("Internal server error", nil),
		})
	})
}

// RequestLogger はリクエストIDを付与し、アクセスログを出力します。
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Writer.Header().Set(requestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		} else if status >= http.StatusBadRequest {
			level = slog.LevelWarn
		}
		logger.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"request_id", requestID,
		)
	}
}
