// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	sessionredis "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/storefront/internal/auth"
	"github.com/yourusername/storefront/internal/catalog"
	"github.com/yourusername/storefront/internal/config"
	"github.com/yourusername/storefront/internal/jobs"
	"github.com/yourusername/storefront/internal/store"
)

// セッションクッキーの寿命。
var sessionMaxAge = 24 * time.Hour

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// DB接続とマイグレーション
	db, err := store.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	users := store.NewUserStore(db)
	catalogStore := store.NewCatalogStore(db)

	// バックグラウンドワーカーの起動
	manager, err := setupJobs(cfg, users)
	if err != nil {
		log.Fatalf("Failed to set up background jobs: %v", err)
	}
	manager.StartWorkers()
	defer func() {
		_ = manager.Shutdown(context.Background())
	}()

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	// セッションストアの設定
	sessionStore, err := newSessionStore(cfg)
	if err != nil {
		log.Fatalf("Failed to create session store: %v", err)
	}
	router.Use(sessions.Sessions(auth.SessionCookieName, sessionStore))

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	// CORS許可オリジンを設定（カンマ区切りの文字列を配列に変換）
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowOrigins = origins
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	// ルーティングの設定
	setupRoutes(router, cfg, users, catalogStore, manager)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newSessionStore はセッションストアを作成します。
// Redis が設定されていればサーバーサイドのストアを、なければ署名付きクッキーストアを使います。
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	options := sessions.Options{
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	}

	if cfg.SessionRedisURL == "" {
		cookieStore := cookie.NewStore([]byte(cfg.SessionSecret))
		cookieStore.Options(options)
		return cookieStore, nil
	}

	opt, err := redis.ParseURL(cfg.SessionRedisURL)
	if err != nil {
		return nil, err
	}
	redisStore, err := sessionredis.NewStore(10, "tcp", opt.Addr, opt.Password, []byte(cfg.SessionSecret))
	if err != nil {
		return nil, err
	}
	redisStore.Options(options)
	return redisStore, nil
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "storefront-api",
		"version": "0.1.0",
	})
}

// setupRoutes はルーティングと認証まわりの配線を行います。
func setupRoutes(router *gin.Engine, cfg *config.Config, users store.UserStore, catalogStore store.CatalogStore, manager *jobs.Manager) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)

	authManager := auth.NewManager(users, manager, cfg.BcryptCost, log.Default())
	catalogHandler := catalog.NewHandler(cfg, catalogStore, log.Default())

	// 認証不要のルート
	router.GET("/login", authManager.LoginPage)
	router.POST("/login", authManager.Login)
	router.GET("/register", authManager.RegisterPage)
	router.POST("/register", authManager.Register)
	router.GET("/forgot", authManager.ForgotPage)
	router.POST("/forgot", authManager.Forgot)
	router.GET("/logout", authManager.Logout)

	// ログイン必須のストアページ
	protected := router.Group("")
	protected.Use(auth.RequireLogin())
	{
		protected.GET("/", catalogHandler.Home)
		protected.GET("/about", catalogHandler.About)
		protected.GET("/products", catalogHandler.Products)
		protected.GET("/products/:category", catalogHandler.Category)
		protected.GET("/tasks/:id", taskStatusHandler(manager))
	}
}
