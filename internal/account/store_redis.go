package account

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps accounts as JSON blobs under two keys: the username key
// is the uniqueness anchor, the id key an index for token lookups.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func keyByName(username string) string {
	return "account:name:" + strings.TrimSpace(username)
}

func keyByID(id uuid.UUID) string {
	return "account:id:" + id.String()
}

// Create claims the username with SETNX so two concurrent registrations of
// the same name cannot both win.
func (s *RedisStore) Create(ctx context.Context, a Account) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	ok, err := s.rdb.SetNX(ctx, keyByName(a.Username), raw, 0).Result()
	if err != nil {
		return fmt.Errorf("save account %q: %w", a.Username, err)
	}
	if !ok {
		return ErrUsernameTaken
	}
	if err := s.rdb.Set(ctx, keyByID(a.UserID), raw, 0).Err(); err != nil {
		return fmt.Errorf("index account %s: %w", a.UserID, err)
	}
	return nil
}

func (s *RedisStore) GetByUsername(ctx context.Context, username string) (Account, error) {
	return s.get(ctx, keyByName(username))
}

func (s *RedisStore) GetByID(ctx context.Context, id uuid.UUID) (Account, error) {
	return s.get(ctx, keyByID(id))
}

func (s *RedisStore) get(ctx context.Context, key string) (Account, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, fmt.Errorf("load %s: %w", key, err)
	}
	var a Account
	if err := json.Unmarshal(raw, &a); err != nil {
		return Account{}, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return a, nil
}
