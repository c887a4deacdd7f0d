package gamestore

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/kapu/chessmate/internal/chess"
)

// ErrNotFound is returned when no game exists under the given id.
var ErrNotFound = errors.New("chess game not found")

// Store persists games through the serialization codec. Update must run fn
// against a freshly loaded copy and persist the result atomically with
// respect to concurrent updates of the same game id, so two racing move
// submissions can never both apply against the same starting board.
type Store interface {
	// Put unconditionally writes the game's current state.
	Put(ctx context.Context, g *chess.Game) error
	Get(ctx context.Context, id uuid.UUID) (*chess.Game, error)
	// Update loads the game, applies fn and saves the result. Errors from
	// fn abort the write and are returned unwrapped.
	Update(ctx context.Context, id uuid.UUID, fn func(*chess.Game) error) (*chess.Game, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
