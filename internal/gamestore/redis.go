package gamestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kapu/chessmate/internal/chess"
)

const keyPrefix = "chess_game:"

// maxUpdateRetries bounds optimistic retries when WATCH detects a concurrent
// write to the same game.
const maxUpdateRetries = 5

// RedisStore keeps each game as an encoded blob under chess_game:<id>.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func gameKey(id uuid.UUID) string {
	return keyPrefix + id.String()
}

func (s *RedisStore) Put(ctx context.Context, g *chess.Game) error {
	raw, err := chess.EncodeGame(g)
	if err != nil {
		return fmt.Errorf("encode game %s: %w", g.ID, err)
	}
	if err := s.rdb.Set(ctx, gameKey(g.ID), raw, 0).Err(); err != nil {
		return fmt.Errorf("save game %s: %w", g.ID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (*chess.Game, error) {
	raw, err := s.rdb.Get(ctx, gameKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", id, err)
	}
	return chess.DecodeGame(raw)
}

// Update implements the compare-and-swap contract with WATCH: the blob is
// read, fn applied, and the write only commits if no one else touched the
// key in between. On conflict the whole sequence is retried against the
// fresh state.
func (s *RedisStore) Update(ctx context.Context, id uuid.UUID, fn func(*chess.Game) error) (*chess.Game, error) {
	key := gameKey(id)
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		var updated *chess.Game
		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, key).Bytes()
			if err == redis.Nil {
				return ErrNotFound
			}
			if err != nil {
				return err
			}
			g, err := chess.DecodeGame(raw)
			if err != nil {
				return err
			}
			if err := fn(g); err != nil {
				return err
			}
			encoded, err := chess.EncodeGame(g)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, encoded, 0)
				return nil
			})
			if err != nil {
				return err
			}
			updated = g
			return nil
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("update game %s: retries exhausted under contention", id)
}

func (s *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.rdb.Del(ctx, gameKey(id)).Err()
}
