// Package auth はセッション管理・認証ハンドラー・認可ミドルウェアを提供します。
package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	// SessionCookieName はセッションIDを運ぶクッキーの名前です。
	SessionCookieName = "sf_session"

	sessionKeyUserID    = "user_id"
	sessionKeyUserEmail = "user_email"
	sessionKeyUserPhone = "user_phone"
	sessionKeyFlashKind = "flash_kind"
	sessionKeyFlashText = "flash_text"
)

// フラッシュメッセージの種別。
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// ContextUserKey は、ハンドラー間でログイン済みユーザーを共有するためのキーです。
const ContextUserKey = "auth.user"

// UserSummary はログイン時点のユーザー情報のスナップショットです。
// 以降のプロフィール変更は再ログインするまで反映されません。
type UserSummary struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Flash は一度だけ表示されるメッセージです。読み出しと同時に破棄されます。
type Flash struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// CurrentUser はセッションからログイン中のユーザーを取り出します。
// 未ログインの場合は nil を返します。
func CurrentUser(c *gin.Context) *UserSummary {
	session := sessions.Default(c)
	id, ok := session.Get(sessionKeyUserID).(int64)
	if !ok || id == 0 {
		return nil
	}
	email, _ := session.Get(sessionKeyUserEmail).(string)
	phone, _ := session.Get(sessionKeyUserPhone).(string)
	return &UserSummary{ID: id, Email: email, Phone: phone}
}

// SetUser は認証済みユーザーをセッションに記録します。
func SetUser(c *gin.Context, user UserSummary) error {
	session := sessions.Default(c)
	session.Set(sessionKeyUserID, user.ID)
	session.Set(sessionKeyUserEmail, user.Email)
	session.Set(sessionKeyUserPhone, user.Phone)
	return session.Save()
}

// SetFlash はフラッシュメッセージを設定します。既存のメッセージは上書きされます。
func SetFlash(c *gin.Context, kind, text string) error {
	session := sessions.Default(c)
	session.Set(sessionKeyFlashKind, kind)
	session.Set(sessionKeyFlashText, text)
	return session.Save()
}

// TakeFlash はフラッシュメッセージを返し、同時にセッションから削除します。
// 同じメッセージが二度返ることはありません。メッセージが無ければ nil を返します。
func TakeFlash(c *gin.Context) *Flash {
	session := sessions.Default(c)
	kind, ok := session.Get(sessionKeyFlashKind).(string)
	if !ok || kind == "" {
		return nil
	}
	text, _ := session.Get(sessionKeyFlashText).(string)
	session.Delete(sessionKeyFlashKind)
	session.Delete(sessionKeyFlashText)
	_ = session.Save()
	return &Flash{Kind: kind, Text: text}
}

// Destroy はセッションを破棄します。
// 古いクッキーを持つ以降のリクエストは空の新しいセッションとして扱われます。
func Destroy(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}

// Render はフラッシュメッセージを消費しつつJSONビューを返します。
// HTMLのレンダリングはフロントエンド側の責務なので、サーバーはビューモデルだけを返します。
func Render(c *gin.Context, page string, payload gin.H) {
	body := gin.H{"page": page}
	if flash := TakeFlash(c); flash != nil {
		body["flash"] = flash
	}
	if user := CurrentUser(c); user != nil {
		body["user"] = user
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}
