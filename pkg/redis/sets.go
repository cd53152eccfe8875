package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// SetCommands is the subset of redis.Cmdable used by Sets.
type SetCommands interface {
	SIsMember(ctx context.Context, key string, member any) *redis.BoolCmd
	SAdd(ctx context.Context, key string, members ...any) *redis.IntCmd
	SRem(ctx context.Context, key string, members ...any) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
}

// Sets stores named string sets, such as taken usernames or known promo
// codes, under a common key prefix.
type Sets struct {
	db     SetCommands
	prefix string
}

// NewSets wraps a client. Keys are built as prefix + set name.
func NewSets(db SetCommands, prefix string) *Sets {
	return &Sets{db: db, prefix: prefix}
}

func (s *Sets) key(set string) (string, error) {
	if set == "" {
		return "", ErrEmptySetName
	}
	return s.prefix + set, nil
}

// Contains reports whether value is a member of set.
func (s *Sets) Contains(ctx context.Context, set, value string) (bool, error) {
	key, err := s.key(set)
	if err != nil {
		return false, err
	}
	ok, err := s.db.SIsMember(ctx, key, value).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, err
	}
	return ok, nil
}

// Add inserts values into set and returns how many were new.
func (s *Sets) Add(ctx context.Context, set string, values ...string) (int64, error) {
	key, err := s.key(set)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, nil
	}
	return s.db.SAdd(ctx, key, toAny(values)...).Result()
}

// Remove deletes values from set and returns how many were present.
func (s *Sets) Remove(ctx context.Context, set string, values ...string) (int64, error) {
	key, err := s.key(set)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, nil
	}
	return s.db.SRem(ctx, key, toAny(values)...).Result()
}

// Members lists set in no particular order.
func (s *Sets) Members(ctx context.Context, set string) ([]string, error) {
	key, err := s.key(set)
	if err != nil {
		return nil, err
	}
	return s.db.SMembers(ctx, key).Result()
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
