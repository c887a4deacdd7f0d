package chess

import (
	"errors"
	"fmt"
)

// ErrInvalidSquare is returned when a coordinate is outside the A1..H8 domain
// or the textual form is malformed.
var ErrInvalidSquare = errors.New("invalid board square")

// Square identifies one of the 64 board positions by file ('A'..'H') and
// rank ('1'..'8'). It is a comparable value type and is used as a map key.
type Square struct {
	File byte
	Rank byte
}

// NewSquare validates file and rank against their fixed domains.
func NewSquare(file, rank byte) (Square, error) {
	if file < 'A' || file > 'H' || rank < '1' || rank > '8' {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, string([]byte{file, rank}))
	}
	return Square{File: file, Rank: rank}, nil
}

// ParseSquare accepts exactly two characters, a file letter followed by a
// rank digit. Anything else fails with ErrInvalidSquare.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	return NewSquare(s[0], s[1])
}

// String is the canonical text form, e.g. "E4". ParseSquare(sq.String())
// yields sq back for every valid square.
func (s Square) String() string {
	return string([]byte{s.File, s.Rank})
}

// FileDistance is the absolute difference of file ordinals (A=0..H=7).
func (s Square) FileDistance(o Square) int {
	return abs(int(s.File) - int(o.File))
}

// RankDistance is the absolute difference of numeric rank values.
func (s Square) RankDistance(o Square) int {
	return abs(int(s.Rank) - int(o.Rank))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
