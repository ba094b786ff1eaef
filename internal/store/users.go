package store

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNotFound は該当するレコードが存在しないことを表します。
var ErrNotFound = errors.New("store: not found")

// User は登録済みユーザーのレコードです。
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Phone        string `json:"phone"`
	LoginCount   int    `json:"loginCount"`
}

// UserStore はユーザーレコードへのアクセスを提供します。
// メールアドレスの一意性はデータベースのUNIQUE制約が唯一の同期点です。
type UserStore interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	IncrementLoginCount(ctx context.Context, userID int64) error
}

type userStore struct {
	db *sql.DB
}

// NewUserStore は UserStore のPostgreSQL実装を作成します。
func NewUserStore(db *sql.DB) UserStore {
	return &userStore{db: db}
}

func (s *userStore) Create(ctx context.Context, user *User) error {
	const q = `
		INSERT INTO users (email, password_hash, phone)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	return s.db.QueryRowContext(ctx, q,
		user.Email,
		user.PasswordHash,
		user.Phone,
	).Scan(&user.ID)
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	const q = `
		SELECT id, email, password_hash, phone, login_count
		FROM users
		WHERE email = $1
	`
	u := &User{}
	err := s.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Phone, &u.LoginCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *userStore) IncrementLoginCount(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET login_count = login_count + 1 WHERE id = $1`, userID)
	return err
}
