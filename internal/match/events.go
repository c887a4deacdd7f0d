package match

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kapu/chessmate/internal/chess"
)

// MoveEvent is the payload fanned out to watchers after a move applies.
type MoveEvent struct {
	GameID     string      `json:"game_id"`
	Ply        int         `json:"ply"`
	SquareFrom string      `json:"square_from"`
	SquareTo   string      `json:"square_to"`
	Piece      chess.Piece `json:"piece"`
	NextTurn   chess.Color `json:"next_turn"`
}

// Publisher fans applied moves out to live subscribers.
type Publisher interface {
	PublishMove(ctx context.Context, gameID uuid.UUID, ev MoveEvent) error
}

// Subscriber delivers a game's move events until the returned stop func is
// called or the context ends.
type Subscriber interface {
	SubscribeMoves(ctx context.Context, gameID uuid.UUID) (<-chan MoveEvent, func(), error)
}

func moveChannel(gameID uuid.UUID) string {
	return "chess_game:" + gameID.String() + ":moves"
}

// RedisEvents implements Publisher and Subscriber over redis pubsub, so
// watchers on any server instance see moves applied on any other.
type RedisEvents struct {
	rdb *redis.Client
}

func NewRedisEvents(rdb *redis.Client) *RedisEvents {
	return &RedisEvents{rdb: rdb}
}

func (e *RedisEvents) PublishMove(ctx context.Context, gameID uuid.UUID, ev MoveEvent) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal move event: %w", err)
	}
	return e.rdb.Publish(ctx, moveChannel(gameID), raw).Err()
}

func (e *RedisEvents) SubscribeMoves(ctx context.Context, gameID uuid.UUID) (<-chan MoveEvent, func(), error) {
	sub := e.rdb.Subscribe(ctx, moveChannel(gameID))
	// Force the subscription to establish before we hand the channel out.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", moveChannel(gameID), err)
	}

	out := make(chan MoveEvent)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var ev MoveEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	stop := func() { _ = sub.Close() }
	return out, stop, nil
}
