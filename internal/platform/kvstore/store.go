package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/medflow/medflow/internal/platform/gateway"
	"github.com/medflow/medflow/pkg/apperror"
)

const keyPrefix = "medflow:"

// HashKey is the hash holding every record of kind.
func HashKey(kind string) string { return keyPrefix + kind }

// SeqKey is the id counter of kind.
func SeqKey(kind string) string { return keyPrefix + kind + ":seq" }

// Replace and delete must observe the field atomically.
var (
	replaceScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 0 then
  return 0
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
return 1`)

	deleteScript = redis.NewScript(`
local v = redis.call('HGET', KEYS[1], ARGV[1])
if not v then
  return false
end
redis.call('HDEL', KEYS[1], ARGV[1])
return v`)
)

// Conn is the subset of the redis client the store uses.
type Conn interface {
	redis.Scripter
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HSetNX(ctx context.Context, key, field string, value interface{}) *redis.BoolCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// Store is a gateway.Store over one redis hash.
type Store[T gateway.Entity[T]] struct {
	rdb  Conn
	kind string
}

// NewStore returns the store for kind. rdb is normally Client.Redis().
func NewStore[T gateway.Entity[T]](rdb Conn, kind string) *Store[T] {
	return &Store[T]{rdb: rdb, kind: kind}
}

func (s *Store[T]) List(ctx context.Context) ([]T, error) {
	fields, err := s.rdb.HGetAll(ctx, HashKey(s.kind)).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", s.kind, err)
	}
	return DecodeAll[T](fields)
}

func (s *Store[T]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	raw, err := s.rdb.HGet(ctx, HashKey(s.kind), field(id)).Result()
	if errors.Is(err, redis.Nil) {
		return zero, apperror.NotFound(s.kind, id)
	}
	if err != nil {
		return zero, fmt.Errorf("hget %s %d: %w", s.kind, id, err)
	}
	return decode[T](raw)
}

func (s *Store[T]) Insert(ctx context.Context, rec T) (T, error) {
	var zero T
	id, err := s.rdb.Incr(ctx, SeqKey(s.kind)).Result()
	if err != nil {
		return zero, fmt.Errorf("next %s id: %w", s.kind, err)
	}
	rec = rec.WithID(id)
	b, err := json.Marshal(rec)
	if err != nil {
		return zero, fmt.Errorf("encode %s: %w", s.kind, err)
	}
	ok, err := s.rdb.HSetNX(ctx, HashKey(s.kind), field(id), b).Result()
	if err != nil {
		return zero, fmt.Errorf("hsetnx %s %d: %w", s.kind, id, err)
	}
	if !ok {
		return zero, fmt.Errorf("%s id %d already in use", s.kind, id)
	}
	return rec, nil
}

func (s *Store[T]) Replace(ctx context.Context, rec T) (T, error) {
	var zero T
	b, err := json.Marshal(rec)
	if err != nil {
		return zero, fmt.Errorf("encode %s: %w", s.kind, err)
	}
	n, err := replaceScript.Run(ctx, s.rdb, []string{HashKey(s.kind)}, field(rec.GetID()), b).Int()
	if err != nil {
		return zero, fmt.Errorf("replace %s %d: %w", s.kind, rec.GetID(), err)
	}
	if n == 0 {
		return zero, apperror.NotFound(s.kind, rec.GetID())
	}
	return rec, nil
}

func (s *Store[T]) Delete(ctx context.Context, id int64) (T, error) {
	var zero T
	raw, err := deleteScript.Run(ctx, s.rdb, []string{HashKey(s.kind)}, field(id)).Text()
	if errors.Is(err, redis.Nil) {
		return zero, apperror.NotFound(s.kind, id)
	}
	if err != nil {
		return zero, fmt.Errorf("delete %s %d: %w", s.kind, id, err)
	}
	return decode[T](raw)
}

func field(id int64) string { return strconv.FormatInt(id, 10) }

func decode[T any](raw string) (T, error) {
	var rec T
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return rec, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

// DecodeAll decodes a hash's values and orders them by id.
func DecodeAll[T gateway.Entity[T]](fields map[string]string) ([]T, error) {
	out := make([]T, 0, len(fields))
	for k, raw := range fields {
		rec, err := decode[T](raw)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GetID() < out[j].GetID() })
	return out, nil
}
