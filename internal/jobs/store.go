package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	taskKeyPrefix = "task:"
)

// RecordStore はタスク状態の保存先です。
type RecordStore interface {
	Get(ctx context.Context, taskID string) (*Record, error)
	Upsert(ctx context.Context, record *Record) error
	MarkDone(ctx context.Context, taskID string, detail string) error
	MarkFailed(ctx context.Context, taskID string, detail string) error
}

// Store はタスク状態を Redis に保存します。
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore は Store を作成します。
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{
		rdb: rdb,
		ttl: ttl,
	}
}

// Get はタスク情報を取得します。存在しない場合は nil を返します。
func (s *Store) Get(ctx context.Context, taskID string) (*Record, error) {
	if taskID == "" {
		return nil, fmt.Errorf("taskID is required")
	}
	data, err := s.rdb.Get(ctx, taskKey(taskID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Upsert はタスク情報を保存します（存在しない場合は作成）。
func (s *Store) Upsert(ctx context.Context, record *Record) error {
	if record == nil {
		return fmt.Errorf("record is nil")
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	if record.ExpiresAt.IsZero() && s.ttl > 0 {
		record.ExpiresAt = record.CreatedAt.Add(s.ttl)
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, taskKey(record.TaskID), payload, s.ttl).Err()
}

// MarkDone はタスク完了を記録します。
func (s *Store) MarkDone(ctx context.Context, taskID string, detail string) error {
	return s.updatePartial(ctx, taskID, func(record *Record) {
		record.Status = StatusSucceeded
		record.Detail = detail
	})
}

// MarkFailed はタスク失敗を記録します。
func (s *Store) MarkFailed(ctx context.Context, taskID string, detail string) error {
	return s.updatePartial(ctx, taskID, func(record *Record) {
		record.Status = StatusFailed
		record.Detail = detail
	})
}

func (s *Store) updatePartial(ctx context.Context, taskID string, mutate func(*Record)) error {
	key := taskKey(taskID)
	for {
		tx := s.rdb.TxPipeline()
		data, err := s.rdb.Get(ctx, key).Bytes()
		if err != nil {
			if err == redis.Nil {
				return fmt.Errorf("task not found: %s", taskID)
			}
			return err
		}
		var record Record
		if err := json.Unmarshal(data, &record); err != nil {
			return err
		}
		mutate(&record)
		record.UpdatedAt = time.Now().UTC()
		payload, err := json.Marshal(&record)
		if err != nil {
			return err
		}
		tx.Set(ctx, key, payload, s.ttl)
		_, err = tx.Exec(ctx)
		if err == redis.TxFailedErr {
			continue
		}
		return err
	}
}

func taskKey(id string) string {
	return taskKeyPrefix + id
}
