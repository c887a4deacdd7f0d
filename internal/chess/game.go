package chess

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Failure kinds surfaced by Join and AttemptMove. All are expected,
// recoverable conditions; the transport layer maps them to user feedback.
var (
	ErrNotAPlayer      = errors.New("user is not a player in this game")
	ErrNotYourTurn     = errors.New("not this player's turn")
	ErrEmptySquare     = errors.New("no piece on the square")
	ErrWrongColorPiece = errors.New("piece belongs to the other player")
	ErrSquareOccupied  = errors.New("destination square is occupied")
	ErrIllegalShape    = errors.New("piece cannot move that way")
	ErrInvalidSecret   = errors.New("invalid invite secret")
	ErrGameFull        = errors.New("game already has two players")
	ErrAlreadyInGame   = errors.New("user already joined this game")
)

// Game is the aggregate root of a two-player match. It exclusively owns its
// board and move history. ID and InviteSecret never change after creation;
// each player slot is filled at most once and never reverted.
type Game struct {
	ID           uuid.UUID
	Board        *Board
	MoveHistory  []Move
	WhiteID      *uuid.UUID
	BlackID      *uuid.UUID
	InviteSecret string
	NextTurn     Color
}

// NewGame allocates a game with the creator occupying the slot of the chosen
// color. The board starts empty; resetting it to the starting position is a
// separate, deliberate step so the two writes stay distinct at the
// persistence boundary.
func NewGame(creatorColor Color, creator uuid.UUID) (*Game, error) {
	if !creatorColor.Valid() {
		return nil, fmt.Errorf("invalid creator color %q", creatorColor)
	}
	secret, err := newInviteSecret()
	if err != nil {
		return nil, err
	}
	g := &Game{
		ID:           uuid.New(),
		Board:        NewBoard(),
		MoveHistory:  make([]Move, 0),
		InviteSecret: secret,
		NextTurn:     White,
	}
	if creatorColor == Black {
		g.BlackID = &creator
	} else {
		g.WhiteID = &creator
	}
	return g, nil
}

// Join fills the empty player slot, white first. The supplied secret must
// match the game's invite secret exactly.
func (g *Game) Join(user uuid.UUID, secret string) error {
	if secret != g.InviteSecret {
		return ErrInvalidSecret
	}
	if g.WhiteID != nil && g.BlackID != nil {
		return ErrGameFull
	}
	if _, ok := g.ColorOf(user); ok {
		return ErrAlreadyInGame
	}
	if g.WhiteID == nil {
		g.WhiteID = &user
	} else {
		g.BlackID = &user
	}
	return nil
}

// ColorOf returns the color the user plays, if they occupy a slot.
func (g *Game) ColorOf(user uuid.UUID) (Color, bool) {
	if g.WhiteID != nil && *g.WhiteID == user {
		return White, true
	}
	if g.BlackID != nil && *g.BlackID == user {
		return Black, true
	}
	return "", false
}

// AttemptMove validates and applies a move for the given user. Checks run in
// a fixed order and the first failure wins with no partial effects. On
// success the piece is relocated, the move is appended to history and the
// turn flips, all before returning.
func (g *Game) AttemptMove(user uuid.UUID, from, to Square) (Move, error) {
	color, ok := g.ColorOf(user)
	if !ok {
		return Move{}, ErrNotAPlayer
	}
	if color != g.NextTurn {
		return Move{}, ErrNotYourTurn
	}
	piece, ok := g.Board.PieceOn(from)
	if !ok {
		return Move{}, ErrEmptySquare
	}
	if piece.Color != color {
		return Move{}, ErrWrongColorPiece
	}
	// Sole substitute for capture and blocking semantics: any occupant, own
	// or enemy, blocks the destination.
	if g.Board.IsOccupied(to) {
		return Move{}, ErrSquareOccupied
	}
	move := Move{From: from, To: to, Piece: piece}
	if !piece.CanMakeMove(move) {
		return Move{}, ErrIllegalShape
	}
	if err := g.Board.RemovePiece(from); err != nil {
		return Move{}, err
	}
	g.Board.SetPiece(to, piece)
	g.MoveHistory = append(g.MoveHistory, move)
	g.NextTurn = g.NextTurn.Opposite()
	return move, nil
}

// newInviteSecret returns 16 random bytes hex encoded.
func newInviteSecret() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate invite secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
