package match

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kapu/chessmate/internal/chess"
	"github.com/kapu/chessmate/internal/gamestore"
	"github.com/kapu/chessmate/internal/obslog"
)

// MoveArchive records applied moves for offline analysis. Implementations
// are best-effort: a failing archive never fails the move.
type MoveArchive interface {
	RecordMove(ctx context.Context, ev MoveEvent) error
}

// Manager drives game lifecycle against the store. Every mutation of an
// existing game goes through the store's compare-and-swap update so racing
// requests against the same game id serialize instead of overwriting each
// other.
type Manager struct {
	store   gamestore.Store
	events  Publisher
	archive MoveArchive
}

type Option func(*Manager)

// WithPublisher wires a move-event publisher for live watchers.
func WithPublisher(p Publisher) Option {
	return func(m *Manager) { m.events = p }
}

// WithArchive wires a durable move archive.
func WithArchive(a MoveArchive) Option {
	return func(m *Manager) { m.archive = a }
}

func NewManager(store gamestore.Store, opts ...Option) *Manager {
	m := &Manager{store: store}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create allocates a game with the creator in the chosen color slot and
// persists it, then resets the board to the starting position and persists
// again. The two writes are intentionally separate steps.
func (m *Manager) Create(ctx context.Context, creator uuid.UUID, color chess.Color) (*chess.Game, error) {
	g, err := chess.NewGame(color, creator)
	if err != nil {
		return nil, err
	}
	if err := m.store.Put(ctx, g); err != nil {
		return nil, err
	}
	g.Board.ResetToStartingPosition()
	if err := m.store.Put(ctx, g); err != nil {
		return nil, err
	}
	obslog.L().Info("game_create",
		zap.String("game_id", g.ID.String()),
		zap.String("creator_color", string(color)),
	)
	return g, nil
}

// Join adds the second player, guarded by the invite secret.
func (m *Manager) Join(ctx context.Context, gameID, user uuid.UUID, secret string) (*chess.Game, error) {
	g, err := m.store.Update(ctx, gameID, func(cur *chess.Game) error {
		return cur.Join(user, secret)
	})
	if err != nil {
		return nil, err
	}
	obslog.L().Info("game_join",
		zap.String("game_id", gameID.String()),
		zap.String("user_id", user.String()),
	)
	return g, nil
}

// Move validates and applies a move inside the store's atomic update, then
// fans the applied move out to the archive and live watchers.
func (m *Manager) Move(ctx context.Context, gameID, user uuid.UUID, from, to chess.Square) (chess.Move, *chess.Game, error) {
	var applied chess.Move
	g, err := m.store.Update(ctx, gameID, func(cur *chess.Game) error {
		mv, err := cur.AttemptMove(user, from, to)
		if err != nil {
			return err
		}
		applied = mv
		return nil
	})
	if err != nil {
		return chess.Move{}, nil, err
	}

	ev := MoveEvent{
		GameID:     g.ID.String(),
		Ply:        len(g.MoveHistory),
		SquareFrom: applied.From.String(),
		SquareTo:   applied.To.String(),
		Piece:      applied.Piece,
		NextTurn:   g.NextTurn,
	}
	if m.archive != nil {
		if err := m.archive.RecordMove(ctx, ev); err != nil {
			obslog.L().Warn("move_archive_failed",
				zap.String("game_id", ev.GameID),
				zap.Int("ply", ev.Ply),
				zap.Error(err),
			)
		}
	}
	if m.events != nil {
		if err := m.events.PublishMove(ctx, gameID, ev); err != nil {
			obslog.L().Warn("move_publish_failed",
				zap.String("game_id", ev.GameID),
				zap.Error(err),
			)
		}
	}

	obslog.L().Info("game_move",
		zap.String("game_id", ev.GameID),
		zap.String("from", ev.SquareFrom),
		zap.String("to", ev.SquareTo),
		zap.Int("ply", ev.Ply),
	)
	return applied, g, nil
}

// Get loads a game by id.
func (m *Manager) Get(ctx context.Context, gameID uuid.UUID) (*chess.Game, error) {
	return m.store.Get(ctx, gameID)
}
