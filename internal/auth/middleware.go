package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LoginRoute は未認証時のリダイレクト先です。
const LoginRoute = "/login"

// RequireLogin はログイン済みかどうかを検証するミドルウェアを返します。
// 未ログインの場合はフラッシュメッセージを設定して /login へリダイレクトし、
// 要求されたハンドラーは実行されません。
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			_ = SetFlash(c, FlashError, "You must log in or register to access the store.")
			c.Redirect(http.StatusFound, LoginRoute)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}
