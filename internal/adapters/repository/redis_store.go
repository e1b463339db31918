package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/taskmaster/tracker/internal/domain/entities"
	"github.com/taskmaster/tracker/internal/ports"
)

// RedisStore keeps one hash per resource (field = id, value = JSON record)
// plus a sorted set that remembers insertion order.
type RedisStore[T ports.Entity] struct {
	client   *redis.Client
	hashKey  string
	orderKey string
	seqKey   string
	notFound error
}

// NewRedisStore creates a store for resource under prefix
func NewRedisStore[T ports.Entity](client *redis.Client, prefix, resource string, notFound error) *RedisStore[T] {
	base := prefix + resource
	return &RedisStore[T]{
		client:   client,
		hashKey:  base,
		orderKey: base + ":order",
		seqKey:   base + ":seq",
		notFound: notFound,
	}
}

// NewEventRedisStore stores events under <prefix>events
func NewEventRedisStore(client *redis.Client, prefix string) *RedisStore[*entities.Event] {
	return NewRedisStore[*entities.Event](client, prefix, "events", entities.ErrEventNotFound)
}

// NewTaskRedisStore stores tasks under <prefix>tasks
func NewTaskRedisStore(client *redis.Client, prefix string) *RedisStore[*entities.Task] {
	return NewRedisStore[*entities.Task](client, prefix, "tasks", entities.ErrTaskNotFound)
}

func (s *RedisStore[T]) List(ctx context.Context) ([]T, error) {
	ids, err := s.client.ZRange(ctx, s.orderKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read order: %w", err)
	}

	records := make([]T, 0, len(ids))
	if len(ids) == 0 {
		return records, nil
	}

	values, err := s.client.HMGet(ctx, s.hashKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		record, err := decodeRecord[T](raw)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *RedisStore[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T

	raw, err := s.client.HGet(ctx, s.hashKey, id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, s.notFound
		}
		return zero, fmt.Errorf("failed to get record: %w", err)
	}
	return decodeRecord[T](raw)
}

// createScript stores a record and its order entry in one step.
// KEYS: hash, order, seq. ARGV: id, record. Returns 0 when the id exists.
var createScript = redis.NewScript(`
	if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 1 then
		return 0
	end
	local seq = redis.call('INCR', KEYS[3])
	redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
	redis.call('ZADD', KEYS[2], seq, ARGV[1])
	return 1
`)

// updateScript overwrites a record only if it is still present.
// KEYS: hash. ARGV: id, record. Returns 0 when the id is missing.
var updateScript = redis.NewScript(`
	if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 0 then
		return 0
	end
	redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
	return 1
`)

func (s *RedisStore[T]) Create(ctx context.Context, record T) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	created, err := createScript.Run(ctx, s.client, []string{s.hashKey, s.orderKey, s.seqKey}, record.Key(), data).Int()
	if err != nil {
		return fmt.Errorf("failed to create record: %w", err)
	}
	if created == 0 {
		return fmt.Errorf("record %s already exists", record.Key())
	}
	return nil
}

func (s *RedisStore[T]) Update(ctx context.Context, record T) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	updated, err := updateScript.Run(ctx, s.client, []string{s.hashKey}, record.Key(), data).Int()
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	if updated == 0 {
		return s.notFound
	}
	return nil
}

func (s *RedisStore[T]) Delete(ctx context.Context, id string) error {
	var removed *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.HDel(ctx, s.hashKey, id)
		pipe.ZRem(ctx, s.orderKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if removed.Val() == 0 {
		return s.notFound
	}
	return nil
}

func (s *RedisStore[T]) DeleteAll(ctx context.Context) error {
	if err := s.client.Del(ctx, s.hashKey, s.orderKey, s.seqKey).Err(); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}
	return nil
}

// ReplaceAll swaps the collection inside one MULTI/EXEC block
func (s *RedisStore[T]) ReplaceAll(ctx context.Context, records []T) error {
	encoded := make([][]byte, len(records))
	for i, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
		encoded[i] = data
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.hashKey, s.orderKey, s.seqKey)
		for i, r := range records {
			pipe.HSet(ctx, s.hashKey, r.Key(), encoded[i])
			pipe.ZAdd(ctx, s.orderKey, redis.Z{Score: float64(i + 1), Member: r.Key()})
		}
		if len(records) > 0 {
			pipe.Set(ctx, s.seqKey, len(records), 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace records: %w", err)
	}
	return nil
}

func (s *RedisStore[T]) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func decodeRecord[T ports.Entity](raw string) (T, error) {
	var record T
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return record, fmt.Errorf("failed to decode record: %w", err)
	}
	return record, nil
}
