package chess

// Color identifies a chess side. The string values double as wire tokens.
type Color string

const (
	White Color = "WHITE"
	Black Color = "BLACK"
)

// Opposite returns the other side.
func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

// Valid reports whether c is one of the two known colors.
func (c Color) Valid() bool {
	return c == White || c == Black
}

// PieceType is the closed set of chess piece kinds.
type PieceType string

const (
	King   PieceType = "KING"
	Queen  PieceType = "QUEEN"
	Rook   PieceType = "ROOK"
	Bishop PieceType = "BISHOP"
	Knight PieceType = "KNIGHT"
	Pawn   PieceType = "PAWN"
)

// Valid reports whether t is one of the six known piece types.
func (t PieceType) Valid() bool {
	switch t {
	case King, Queen, Rook, Bishop, Knight, Pawn:
		return true
	}
	return false
}

// Piece is a (type, color) value. Two pieces of the same type and color are
// indistinguishable.
type Piece struct {
	Type  PieceType `json:"piece_type"`
	Color Color     `json:"color"`
}

// Move describes a proposed or executed relocation of Piece from From to To.
type Move struct {
	From  Square
	To    Square
	Piece Piece
}

// CanMakeMove reports whether the move's geometry matches the piece type's
// movement pattern. It is a pure shape check: board occupancy, path blocking
// and the piece's own color are deliberately not consulted.
func (p Piece) CanMakeMove(m Move) bool {
	switch p.Type {
	case King:
		return canKingMove(m)
	case Queen:
		return canQueenMove(m)
	case Rook:
		return canRookMove(m)
	case Bishop:
		return canBishopMove(m)
	case Knight:
		return canKnightMove(m)
	case Pawn:
		return canPawnMove(m)
	}
	return false
}

// Kings move one square at a time in any of the eight directions. The
// zero-distance "move" also satisfies this predicate; callers reject no-ops
// separately if they care.
func canKingMove(m Move) bool {
	return m.From.FileDistance(m.To) <= 1 && m.From.RankDistance(m.To) <= 1
}

// Queens combine rook and bishop movement.
func canQueenMove(m Move) bool {
	return canRookMove(m) || canBishopMove(m)
}

// Rooks move along a file or a rank, any distance.
func canRookMove(m Move) bool {
	return m.From.File == m.To.File || m.From.Rank == m.To.Rank
}

// Bishops move diagonally, any distance.
func canBishopMove(m Move) bool {
	return m.From.FileDistance(m.To) == m.From.RankDistance(m.To)
}

// Knights move in an L shape: two squares one way, one square the other.
func canKnightMove(m Move) bool {
	fd, rd := m.From.FileDistance(m.To), m.From.RankDistance(m.To)
	return (fd == 1 && rd == 2) || (fd == 2 && rd == 1)
}

// Pawns advance one square along their file, or two squares from the fixed
// opening ranks (2 to 4, 7 to 5), or step one square diagonally. The predicate
// does not relate the piece's color to the direction of travel.
func canPawnMove(m Move) bool {
	if m.From.File == m.To.File {
		if m.From.Rank == '2' && m.To.Rank == '4' {
			return true
		}
		if m.From.Rank == '7' && m.To.Rank == '5' {
			return true
		}
		return m.From.RankDistance(m.To) == 1
	}
	return m.From.FileDistance(m.To) == 1 && m.From.RankDistance(m.To) == 1
}
