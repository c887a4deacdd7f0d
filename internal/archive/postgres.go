// Package archive persists applied moves to Postgres for offline analysis.
// The table is expected to exist:
//
//	CREATE TABLE chess_moves (
//	    game_id     text        NOT NULL,
//	    ply         integer     NOT NULL,
//	    square_from text        NOT NULL,
//	    square_to   text        NOT NULL,
//	    piece_type  text        NOT NULL,
//	    color       text        NOT NULL,
//	    played_at   timestamptz NOT NULL DEFAULT now(),
//	    PRIMARY KEY (game_id, ply)
//	);
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/kapu/chessmate/internal/match"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// RecordMove inserts one applied move. Replays of the same (game, ply) are
// ignored so retried saves stay idempotent.
func (r *Repository) RecordMove(ctx context.Context, ev match.MoveEvent) error {
	const q = `
		INSERT INTO chess_moves (game_id, ply, square_from, square_to, piece_type, color)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (game_id, ply) DO NOTHING`

	_, err := r.db.ExecContext(ctx, q,
		ev.GameID,
		ev.Ply,
		ev.SquareFrom,
		ev.SquareTo,
		string(ev.Piece.Type),
		string(ev.Piece.Color),
	)
	if err != nil {
		return fmt.Errorf("insert chess move: %w", err)
	}
	return nil
}
