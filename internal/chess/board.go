package chess

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotOccupied is returned when removing a piece from an empty square.
var ErrNotOccupied = errors.New("square not occupied")

// Board is a plain occupancy map from square to piece. It enforces nothing
// beyond "at most one piece per square"; legality lives with the caller.
type Board struct {
	pieces map[Square]Piece
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{pieces: make(map[Square]Piece)}
}

// SetPiece places a piece, overwriting any existing occupant.
func (b *Board) SetPiece(sq Square, p Piece) {
	b.pieces[sq] = p
}

// RemovePiece clears a square. The square must be occupied; callers check
// occupancy first.
func (b *Board) RemovePiece(sq Square) error {
	if _, ok := b.pieces[sq]; !ok {
		return fmt.Errorf("%w: %s", ErrNotOccupied, sq)
	}
	delete(b.pieces, sq)
	return nil
}

// IsOccupied reports whether any piece sits on sq.
func (b *Board) IsOccupied(sq Square) bool {
	_, ok := b.pieces[sq]
	return ok
}

// PieceOn returns the piece on sq, if any.
func (b *Board) PieceOn(sq Square) (Piece, bool) {
	p, ok := b.pieces[sq]
	return p, ok
}

// Pieces returns a copy of the occupancy map.
func (b *Board) Pieces() map[Square]Piece {
	out := make(map[Square]Piece, len(b.pieces))
	for sq, p := range b.pieces {
		out[sq] = p
	}
	return out
}

// ResetToStartingPosition replaces the whole mapping with the standard
// 32-piece opening layout, discarding any prior state.
func (b *Board) ResetToStartingPosition() {
	b.pieces = StartingPosition()
}

var backRank = []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// StartingPosition builds a fresh copy of the opening layout: back-rank
// pieces on ranks 1 and 8, pawns on ranks 2 and 7. A new map is returned on
// every call so concurrent games never alias board state.
func StartingPosition() map[Square]Piece {
	pieces := make(map[Square]Piece, 32)
	for i := 0; i < 8; i++ {
		file := byte('A' + i)
		pieces[Square{File: file, Rank: '1'}] = Piece{Type: backRank[i], Color: White}
		pieces[Square{File: file, Rank: '2'}] = Piece{Type: Pawn, Color: White}
		pieces[Square{File: file, Rank: '7'}] = Piece{Type: Pawn, Color: Black}
		pieces[Square{File: file, Rank: '8'}] = Piece{Type: backRank[i], Color: Black}
	}
	return pieces
}

// String renders the board as an 8-line diagram, rank 8 at the top. White
// pieces are uppercase, black lowercase, empty squares dots. Debug aid only.
func (b *Board) String() string {
	var sb strings.Builder
	for rank := byte('8'); rank >= '1'; rank-- {
		for file := byte('A'); file <= 'H'; file++ {
			p, ok := b.pieces[Square{File: file, Rank: rank}]
			if !ok {
				sb.WriteByte('.')
				continue
			}
			letter := pieceLetter(p.Type)
			if p.Color == Black {
				letter = letter - 'A' + 'a'
			}
			sb.WriteByte(letter)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func pieceLetter(t PieceType) byte {
	switch t {
	case King:
		return 'K'
	case Queen:
		return 'Q'
	case Rook:
		return 'R'
	case Bishop:
		return 'B'
	case Knight:
		return 'N'
	case Pawn:
		return 'P'
	}
	return '?'
}
