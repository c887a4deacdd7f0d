package chess

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func newReadyGame(t *testing.T) (*Game, uuid.UUID, uuid.UUID) {
	t.Helper()
	white := uuid.New()
	black := uuid.New()
	g, err := NewGame(White, white)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if err := g.Join(black, g.InviteSecret); err != nil {
		t.Fatalf("Join: %v", err)
	}
	g.Board.ResetToStartingPosition()
	return g, white, black
}

func TestNewGameAssignsCreatorSlot(t *testing.T) {
	creator := uuid.New()

	g, err := NewGame(White, creator)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if g.WhiteID == nil || *g.WhiteID != creator || g.BlackID != nil {
		t.Fatalf("expected creator in white slot only: %+v", g)
	}
	if g.NextTurn != White {
		t.Fatalf("next turn must start WHITE, got %s", g.NextTurn)
	}
	if len(g.InviteSecret) != 32 {
		t.Fatalf("expected 32-char hex invite secret, got %q", g.InviteSecret)
	}
	if len(g.Board.Pieces()) != 0 {
		t.Fatalf("board must start empty; reset is a separate step")
	}

	g2, err := NewGame(Black, creator)
	if err != nil {
		t.Fatalf("NewGame black: %v", err)
	}
	if g2.BlackID == nil || *g2.BlackID != creator || g2.WhiteID != nil {
		t.Fatalf("expected creator in black slot only: %+v", g2)
	}

	if _, err := NewGame(Color("GREEN"), creator); err == nil {
		t.Fatalf("expected error for invalid creator color")
	}
}

func TestJoinLifecycle(t *testing.T) {
	creator := uuid.New()
	joiner := uuid.New()
	third := uuid.New()

	g, err := NewGame(Black, creator)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}

	if err := g.Join(joiner, "wrong-secret"); !errors.Is(err, ErrInvalidSecret) {
		t.Fatalf("expected ErrInvalidSecret, got %v", err)
	}
	if err := g.Join(creator, g.InviteSecret); !errors.Is(err, ErrAlreadyInGame) {
		t.Fatalf("creator rejoining: expected ErrAlreadyInGame, got %v", err)
	}

	if err := g.Join(joiner, g.InviteSecret); err != nil {
		t.Fatalf("Join: %v", err)
	}
	// creator chose black, so the joiner lands in the white slot
	if g.WhiteID == nil || *g.WhiteID != joiner {
		t.Fatalf("joiner should fill the white slot first")
	}

	if err := g.Join(joiner, g.InviteSecret); !errors.Is(err, ErrAlreadyInGame) {
		t.Fatalf("second join by same user: expected ErrAlreadyInGame, got %v", err)
	}
	if err := g.Join(third, g.InviteSecret); !errors.Is(err, ErrGameFull) {
		t.Fatalf("third player: expected ErrGameFull, got %v", err)
	}
}

func TestColorOf(t *testing.T) {
	g, white, black := newReadyGame(t)
	if c, ok := g.ColorOf(white); !ok || c != White {
		t.Fatalf("ColorOf(white): got %q ok=%v", c, ok)
	}
	if c, ok := g.ColorOf(black); !ok || c != Black {
		t.Fatalf("ColorOf(black): got %q ok=%v", c, ok)
	}
	if _, ok := g.ColorOf(uuid.New()); ok {
		t.Fatalf("ColorOf(stranger): expected no color")
	}
}

func TestAttemptMoveHappyPath(t *testing.T) {
	g, white, _ := newReadyGame(t)

	mv, err := g.AttemptMove(white, mustSquare(t, "E2"), mustSquare(t, "E4"))
	if err != nil {
		t.Fatalf("AttemptMove: %v", err)
	}
	if mv.Piece.Type != Pawn || mv.Piece.Color != White {
		t.Fatalf("unexpected moved piece: %+v", mv.Piece)
	}
	if g.NextTurn != Black {
		t.Fatalf("next turn should flip to BLACK, got %s", g.NextTurn)
	}
	if len(g.MoveHistory) != 1 || g.MoveHistory[0] != mv {
		t.Fatalf("move history should hold the applied move: %+v", g.MoveHistory)
	}
	if g.Board.IsOccupied(mustSquare(t, "E2")) {
		t.Fatalf("E2 should be empty after the move")
	}
	if p, _ := g.Board.PieceOn(mustSquare(t, "E4")); p.Type != Pawn {
		t.Fatalf("E4 should hold the pawn, got %+v", p)
	}

	// White again right away: not their turn anymore.
	if _, err := g.AttemptMove(white, mustSquare(t, "D2"), mustSquare(t, "D4")); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
}

func TestAttemptMoveFailureOrder(t *testing.T) {
	g, white, black := newReadyGame(t)

	if _, err := g.AttemptMove(uuid.New(), mustSquare(t, "E2"), mustSquare(t, "E4")); !errors.Is(err, ErrNotAPlayer) {
		t.Fatalf("expected ErrNotAPlayer, got %v", err)
	}
	if _, err := g.AttemptMove(black, mustSquare(t, "E7"), mustSquare(t, "E5")); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	if _, err := g.AttemptMove(white, mustSquare(t, "E4"), mustSquare(t, "E5")); !errors.Is(err, ErrEmptySquare) {
		t.Fatalf("expected ErrEmptySquare, got %v", err)
	}
	if _, err := g.AttemptMove(white, mustSquare(t, "E7"), mustSquare(t, "E6")); !errors.Is(err, ErrWrongColorPiece) {
		t.Fatalf("expected ErrWrongColorPiece, got %v", err)
	}
	// Rook to its own pawn's square: occupancy rejection fires before the
	// shape check ever runs, own piece or not.
	if _, err := g.AttemptMove(white, mustSquare(t, "A1"), mustSquare(t, "A2")); !errors.Is(err, ErrSquareOccupied) {
		t.Fatalf("expected ErrSquareOccupied, got %v", err)
	}
	if _, err := g.AttemptMove(white, mustSquare(t, "B1"), mustSquare(t, "B3")); !errors.Is(err, ErrIllegalShape) {
		t.Fatalf("expected ErrIllegalShape, got %v", err)
	}

	// None of the failures may leave partial effects behind.
	if len(g.MoveHistory) != 0 {
		t.Fatalf("failed attempts must not append history: %+v", g.MoveHistory)
	}
	if g.NextTurn != White {
		t.Fatalf("failed attempts must not flip the turn")
	}
	if len(g.Board.Pieces()) != 32 {
		t.Fatalf("failed attempts must not mutate the board")
	}
}

func TestPieceMovesThroughOccupiedPath(t *testing.T) {
	// Path blocking is deliberately absent: from the starting position the
	// rook on A1 slides straight through the pawn on A2 to the empty A4,
	// and the bishop on C1 crosses the pawn on B2 to reach A3.
	g, white, black := newReadyGame(t)

	if _, err := g.AttemptMove(white, mustSquare(t, "A1"), mustSquare(t, "A4")); err != nil {
		t.Fatalf("rook through own pawn should be allowed: %v", err)
	}
	if _, err := g.AttemptMove(black, mustSquare(t, "H7"), mustSquare(t, "H6")); err != nil {
		t.Fatalf("black reply: %v", err)
	}
	if _, err := g.AttemptMove(white, mustSquare(t, "C1"), mustSquare(t, "A3")); err != nil {
		t.Fatalf("bishop through own pawn should be allowed: %v", err)
	}
}
