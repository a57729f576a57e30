package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cwh-todolist/backend/internal/apierror"
)

// Pinger はDBの疎通確認に使います。*sql.DB が満たします。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler は稼働確認用のハンドラーです。
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler はHealthHandlerを作成します。db が nil の場合（インメモリ）はDB確認を省略します。
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthResponse は GET /api/health の data 部分です。
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// WelcomeHandler は GET / に応答します。
func (h *HealthHandler) WelcomeHandler(c *gin.Context) {
	respondMessage(c, http.StatusOK, "CWH TodoList API")
}

// HealthHandler はアプリケーションとDBの状態を返します。
func (h *HealthHandler) HealthHandler(c *gin.Context) {
	if h.db == nil {
		respondData(c, http.StatusOK, HealthResponse{Status: "ok", Database: "memory"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		fail(c, apierror.Internal("Database connection failed", err))
		return
	}
	respondData(c, http.StatusOK, HealthResponse{Status: "ok", Database: "ok"})
}
