// Package jobs はバックグラウンドタスクの投入と実行を提供します。
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/yourusername/storefront/internal/store"
)

const (
	taskTypeLoginCount    = "auth:login_count"
	taskTypePasswordReset = "mail:password_reset"

	queueName = "storefront"
)

// LoginCountPayload はログイン回数加算タスクのペイロードです。
type LoginCountPayload struct {
	TaskID string `json:"taskId"`
	UserID int64  `json:"userId"`
}

// PasswordResetPayload はパスワードリセットメール（シミュレーション）のペイロードです。
type PasswordResetPayload struct {
	TaskID string `json:"taskId"`
	Email  string `json:"email"`
}

// Manager はタスクの投入と状態管理を担います。
type Manager struct {
	client  *asynq.Client
	server  *asynq.Server
	mux     *asynq.ServeMux
	records RecordStore
	users   store.UserStore
	logger  *log.Logger
}

// NewManager は Manager を初期化します。
func NewManager(redisURL string, users store.UserStore, records RecordStore, logger *log.Logger) (*Manager, error) {
	if users == nil {
		return nil, errors.New("users is nil")
	}
	if records == nil {
		return nil, errors.New("records is nil")
	}
	if logger == nil {
		logger = log.Default()
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := asynq.NewClient(opt)
	server := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 4,
			Queues: map[string]int{
				queueName: 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	manager := &Manager{
		client:  client,
		server:  server,
		mux:     mux,
		records: records,
		users:   users,
		logger:  logger,
	}
	mux.HandleFunc(taskTypeLoginCount, manager.handleLoginCount)
	mux.HandleFunc(taskTypePasswordReset, manager.handlePasswordReset)
	return manager, nil
}

// StartWorkers は Asynq サーバーをバックグラウンドで起動します。
func (m *Manager) StartWorkers() {
	go func() {
		if err := m.server.Run(m.mux); err != nil && err != asynq.ErrServerClosed {
			m.logger.Printf("asynq server stopped with error: %v", err)
		}
	}()
}

// Shutdown はサーバーとクライアントを閉じます。
func (m *Manager) Shutdown(ctx context.Context) error {
	m.server.Shutdown()
	m.client.Close()
	return nil
}

// GetRecord はタスクの現在状態を取得します。存在しない場合は nil を返します。
func (m *Manager) GetRecord(ctx context.Context, taskID string) (*Record, error) {
	return m.records.Get(ctx, taskID)
}

// ScheduleLoginCount はログイン回数加算タスクをキューに投入します。
func (m *Manager) ScheduleLoginCount(ctx context.Context, userID int64) error {
	payload := &LoginCountPayload{
		TaskID: uuid.NewString(),
		UserID: userID,
	}
	return m.enqueue(ctx, taskTypeLoginCount, payload.TaskID, payload)
}

// SchedulePasswordReset はリセットメール送信（シミュレーション）タスクをキューに投入します。
func (m *Manager) SchedulePasswordReset(ctx context.Context, email string) error {
	payload := &PasswordResetPayload{
		TaskID: uuid.NewString(),
		Email:  email,
	}
	return m.enqueue(ctx, taskTypePasswordReset, payload.TaskID, payload)
}

func (m *Manager) enqueue(ctx context.Context, kind, taskID string, payload any) error {
	record := &Record{
		TaskID: taskID,
		Kind:   kind,
		Status: StatusQueued,
	}
	if err := m.records.Upsert(ctx, record); err != nil {
		return err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := m.client.EnqueueContext(ctx, asynq.NewTask(kind, data), asynq.Queue(queueName)); err != nil {
		return err
	}
	return nil
}

func (m *Manager) handleLoginCount(ctx context.Context, task *asynq.Task) error {
	var payload LoginCountPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to decode login count payload: %w", err)
	}

	if err := m.users.IncrementLoginCount(ctx, payload.UserID); err != nil {
		// 加算の失敗はログインの成立に影響させない。記録だけ残してリトライもしない。
		m.logger.Printf("jobs: login count increment failed for user %d: %v", payload.UserID, err)
		_ = m.records.MarkFailed(ctx, payload.TaskID, err.Error())
		return nil
	}

	_ = m.records.MarkDone(ctx, payload.TaskID, "")
	return nil
}

func (m *Manager) handlePasswordReset(ctx context.Context, task *asynq.Task) error {
	var payload PasswordResetPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to decode password reset payload: %w", err)
	}

	// 実際のメールは送らない。送信したことにしてログだけ残す。
	m.logger.Printf("jobs: simulated password reset mail to %s", payload.Email)
	_ = m.records.MarkDone(ctx, payload.TaskID, "simulated")
	return nil
}
