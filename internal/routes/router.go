// Package routesはroutingを行います。
package routes

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"cwh-todolist/backend/internal/apierror"
	"cwh-todolist/backend/internal/config"
	"cwh-todolist/backend/internal/handlers"
	"cwh-todolist/backend/internal/repositories"
	"cwh-todolist/backend/internal/services"
	"cwh-todolist/backend/internal/validation"
)

// Dependencies はルーターの組み立てに必要なものです。
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger
	// DB はヘルスチェック用です。インメモリストアの場合は nil です。
	DB    *sql.DB
	Users repositories.UserStore
	Todos repositories.TodoStore
}

// SetupRouter はGinルーターをセットアップし、すべてのエンドポイントを登録します。
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(deps.Logger), Recovery(deps.Logger), ErrorHandler(deps.Logger))

	// CORS対策
	r.Use(cors.New(corsConfig(deps.Config.CORSOrigins)))

	// サービス
	jwtService := services.NewJWTService(deps.Config.JWTSecret, deps.Config.JWTExpiresIn)
	userService := services.NewUserService(deps.Users, jwtService)
	todoService := services.NewTodoService(deps.Todos)

	// ハンドラー
	v := validation.New()
	userHandler := handlers.NewUserHandler(userService, v)
	todoHandler := handlers.NewTodoHandler(todoService, v)
	var pinger handlers.Pinger
	if deps.DB != nil {
		pinger = deps.DB
	}
	healthHandler := handlers.NewHealthHandler(pinger)

	// ルーティング
	r.GET("/", healthHandler.WelcomeHandler)
	r.GET("/api/health", healthHandler.HealthHandler)
	r.POST("/api/auth/signup", userHandler.SignupHandler)
	r.POST("/api/auth/login", userHandler.LoginHandler)

	authorized := r.Group("/api/todos")
	authorized.Use(AuthMiddleware(jwtService))
	{
		authorized.GET("", todoHandler.GetTodosHandler)
		authorized.GET("/:id", todoHandler.GetTodoByIDHandler)
		authorized.POST("", todoHandler.CreateTodoHandler)
		authorized.PUT("/:id", todoHandler.UpdateTodoHandler)
		authorized.DELETE("/:id", todoHandler.DeleteTodoHandler)
	}

	r.NoRoute(func(c *gin.Context) {
		abort(c, apierror.NotFound("Route not found"))
	})

	return r
}

func corsConfig(origins []string) cors.Config {
	cc := cors.DefaultConfig()
	cc.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cc.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	cc.ExposeHeaders = []string{requestIDHeader}
	// プリフライトリクエストの結果をキャッシュする時間
	cc.MaxAge = 12 * time.Hour
	if len(origins) == 0 {
		cc.AllowAllOrigins = true
		return cc
	}
	for _, o := range origins {
		if o == "*" {
			cc.AllowAllOrigins = true
			return cc
		}
	}
	cc.AllowOrigins = origins
	cc.AllowCredentials = true
	return cc
}
