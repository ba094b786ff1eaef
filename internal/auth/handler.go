package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/storefront/internal/store"
)

// TaskScheduler はログイン後のバックグラウンドタスクを投入するためのインターフェースです。
type TaskScheduler interface {
	ScheduleLoginCount(ctx context.Context, userID int64) error
	SchedulePasswordReset(ctx context.Context, email string) error
}

// Manager は認証まわりのハンドラーをまとめた構造体です。
type Manager struct {
	users     store.UserStore
	scheduler TaskScheduler
	hashCost  int
	logger    *log.Logger
}

// NewManager は認証マネージャーを作成します。
func NewManager(users store.UserStore, scheduler TaskScheduler, hashCost int, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		users:     users,
		scheduler: scheduler,
		hashCost:  hashCost,
		logger:    logger,
	}
}

// LoginPage は GET /login のハンドラーです。
func (m *Manager) LoginPage(c *gin.Context) {
	Render(c, "login", gin.H{})
}

// Login は POST /login のハンドラーです。
func (m *Manager) Login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	user, err := m.users.GetByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = SetFlash(c, FlashError, "No account with this email. Please register first.")
			c.Redirect(http.StatusFound, "/login")
			return
		}
		m.logger.Printf("login: lookup failed for %q: %v", email, err)
		_ = SetFlash(c, FlashError, "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	if !VerifyPassword(password, user.PasswordHash) {
		_ = SetFlash(c, FlashError, "Incorrect password.")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	// ログイン回数の加算はベストエフォート。投入に失敗してもログインは成立させる。
	if err := m.scheduler.ScheduleLoginCount(c.Request.Context(), user.ID); err != nil {
		m.logger.Printf("login: failed to schedule login count increment for user %d: %v", user.ID, err)
	}

	if err := SetUser(c, UserSummary{ID: user.ID, Email: user.Email, Phone: user.Phone}); err != nil {
		m.logger.Printf("login: failed to save session for user %d: %v", user.ID, err)
		_ = SetFlash(c, FlashError, "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	_ = SetFlash(c, FlashSuccess, "Logged in successfully.")
	c.Redirect(http.StatusFound, "/")
}

// RegisterPage は GET /register のハンドラーです。
func (m *Manager) RegisterPage(c *gin.Context) {
	Render(c, "register", gin.H{})
}

// Register は POST /register のハンドラーです。
// 登録が成功してもログイン状態にはせず、/login へ誘導します。
func (m *Manager) Register(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	phone := strings.TrimSpace(c.PostForm("phone"))

	if email == "" || password == "" {
		_ = SetFlash(c, FlashError, "Please enter an email and a password.")
		c.Redirect(http.StatusFound, "/register")
		return
	}

	digest, err := HashPassword(password, m.hashCost)
	if err != nil {
		m.logger.Printf("register: hash failed: %v", err)
		_ = SetFlash(c, FlashError, "Something went wrong. Please try again.")
		c.Redirect(http.StatusFound, "/register")
		return
	}

	user := &store.User{Email: email, PasswordHash: digest, Phone: phone}
	if err := m.users.Create(c.Request.Context(), user); err != nil {
		// 重複メールかその他の失敗かはユーザーには区別して見せない
		m.logger.Printf("register: insert failed for %q: %v", email, err)
		_ = SetFlash(c, FlashError, "An account with this email already exists.")
		c.Redirect(http.StatusFound, "/register")
		return
	}

	_ = SetFlash(c, FlashSuccess, "Account created. You can now log in.")
	c.Redirect(http.StatusFound, "/login")
}

// ForgotPage は GET /forgot のハンドラーです。
func (m *Manager) ForgotPage(c *gin.Context) {
	Render(c, "forgot", gin.H{})
}

// Forgot は POST /forgot のハンドラーです。
// トークンの発行やメール送信は行わず、送信のシミュレーションだけをジョブに流します。
func (m *Manager) Forgot(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))

	user, err := m.users.GetByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = SetFlash(c, FlashError, "No account with this email.")
		} else {
			m.logger.Printf("forgot: lookup failed for %q: %v", email, err)
			_ = SetFlash(c, FlashError, "Something went wrong. Please try again.")
		}
		c.Redirect(http.StatusFound, "/forgot")
		return
	}

	if err := m.scheduler.SchedulePasswordReset(c.Request.Context(), user.Email); err != nil {
		m.logger.Printf("forgot: failed to schedule reset mail simulation for %q: %v", user.Email, err)
	}

	_ = SetFlash(c, FlashSuccess, "Password reset instructions were sent to your email (simulated).")
	c.Redirect(http.StatusFound, "/login")
}

// Logout は GET /logout のハンドラーです。
// セッションを無条件に破棄して /login へリダイレクトします。フラッシュメッセージは設定しません。
func (m *Manager) Logout(c *gin.Context) {
	if err := Destroy(c); err != nil {
		m.logger.Printf("logout: failed to destroy session: %v", err)
	}
	c.Redirect(http.StatusFound, "/login")
}
