package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/hibiken/asynq"

	"github.com/yourusername/storefront/internal/store"
)

type stubUserStore struct {
	incremented []int64
	err         error
}

func (s *stubUserStore) Create(ctx context.Context, user *store.User) error { return nil }

func (s *stubUserStore) GetByEmail(ctx context.Context, email string) (*store.User, error) {
	return nil, store.ErrNotFound
}

func (s *stubUserStore) IncrementLoginCount(ctx context.Context, userID int64) error {
	if s.err != nil {
		return s.err
	}
	s.incremented = append(s.incremented, userID)
	return nil
}

type stubRecordStore struct {
	done   []string
	failed []string
}

func (s *stubRecordStore) Get(ctx context.Context, taskID string) (*Record, error) {
	return nil, nil
}

func (s *stubRecordStore) Upsert(ctx context.Context, record *Record) error { return nil }

func (s *stubRecordStore) MarkDone(ctx context.Context, taskID string, detail string) error {
	s.done = append(s.done, taskID)
	return nil
}

func (s *stubRecordStore) MarkFailed(ctx context.Context, taskID string, detail string) error {
	s.failed = append(s.failed, taskID)
	return nil
}

func newTestManager(users store.UserStore, records RecordStore) *Manager {
	return &Manager{
		records: records,
		users:   users,
		logger:  log.New(io.Discard, "", 0),
	}
}

func mustTask(t *testing.T, kind string, payload any) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	return asynq.NewTask(kind, data)
}

func TestHandleLoginCountIncrementsUser(t *testing.T) {
	users := &stubUserStore{}
	records := &stubRecordStore{}
	manager := newTestManager(users, records)

	task := mustTask(t, taskTypeLoginCount, &LoginCountPayload{TaskID: "t1", UserID: 42})
	if err := manager.handleLoginCount(context.Background(), task); err != nil {
		t.Fatalf("handleLoginCount returned error: %v", err)
	}

	if len(users.incremented) != 1 || users.incremented[0] != 42 {
		t.Fatalf("unexpected increments: %#v", users.incremented)
	}
	if len(records.done) != 1 || records.done[0] != "t1" {
		t.Fatalf("expected task t1 marked done, got %#v", records.done)
	}
}

func TestHandleLoginCountStoreFailureIsSwallowed(t *testing.T) {
	users := &stubUserStore{err: errors.New("connection refused")}
	records := &stubRecordStore{}
	manager := newTestManager(users, records)

	task := mustTask(t, taskTypeLoginCount, &LoginCountPayload{TaskID: "t1", UserID: 42})
	// 加算失敗はリトライさせないため、エラーを返さないこと
	if err := manager.handleLoginCount(context.Background(), task); err != nil {
		t.Fatalf("expected nil error on store failure, got %v", err)
	}
	if len(records.failed) != 1 || records.failed[0] != "t1" {
		t.Fatalf("expected task t1 marked failed, got %#v", records.failed)
	}
}

func TestHandleLoginCountBadPayload(t *testing.T) {
	manager := newTestManager(&stubUserStore{}, &stubRecordStore{})
	task := asynq.NewTask(taskTypeLoginCount, []byte("not-json"))
	if err := manager.handleLoginCount(context.Background(), task); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestHandlePasswordResetSimulatesDelivery(t *testing.T) {
	records := &stubRecordStore{}
	manager := newTestManager(&stubUserStore{}, records)

	task := mustTask(t, taskTypePasswordReset, &PasswordResetPayload{TaskID: "t2", Email: "a@x.com"})
	if err := manager.handlePasswordReset(context.Background(), task); err != nil {
		t.Fatalf("handlePasswordReset returned error: %v", err)
	}
	if len(records.done) != 1 || records.done[0] != "t2" {
		t.Fatalf("expected task t2 marked done, got %#v", records.done)
	}
}
