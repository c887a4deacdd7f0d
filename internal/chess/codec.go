package chess

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrCorruptState is returned by DecodeGame for any structurally invalid
// payload: unknown piece or color tokens, malformed square text, missing
// required fields, or bytes that are not valid JSON.
var ErrCorruptState = errors.New("corrupt game state")

// Wire structure of a persisted game. Square keys and move endpoints use the
// canonical two-character text form; user-id slots are nullable.
type gameRecord struct {
	GameID       string       `json:"game_id"`
	Board        boardRecord  `json:"board"`
	MoveHistory  []moveRecord `json:"move_history"`
	WhiteUserID  *string      `json:"white_user_id"`
	BlackUserID  *string      `json:"black_user_id"`
	InviteSecret string       `json:"invite_secret"`
	NextTurn     Color        `json:"next_turn"`
}

type boardRecord struct {
	Pieces map[string]Piece `json:"pieces"`
}

type moveRecord struct {
	SquareFrom string `json:"square_from"`
	SquareTo   string `json:"square_to"`
	ChessPiece Piece  `json:"chess_piece"`
}

// EncodeGame serializes a game deterministically (JSON with sorted object
// keys) for the persistence boundary.
func EncodeGame(g *Game) ([]byte, error) {
	rec := gameRecord{
		GameID:       g.ID.String(),
		Board:        boardRecord{Pieces: make(map[string]Piece, len(g.Board.pieces))},
		MoveHistory:  make([]moveRecord, 0, len(g.MoveHistory)),
		InviteSecret: g.InviteSecret,
		NextTurn:     g.NextTurn,
	}
	for sq, p := range g.Board.pieces {
		rec.Board.Pieces[sq.String()] = p
	}
	for _, m := range g.MoveHistory {
		rec.MoveHistory = append(rec.MoveHistory, moveRecord{
			SquareFrom: m.From.String(),
			SquareTo:   m.To.String(),
			ChessPiece: m.Piece,
		})
	}
	if g.WhiteID != nil {
		s := g.WhiteID.String()
		rec.WhiteUserID = &s
	}
	if g.BlackID != nil {
		s := g.BlackID.String()
		rec.BlackUserID = &s
	}
	return json.Marshal(rec)
}

// DecodeGame is the exact inverse of EncodeGame. Every field is validated;
// any structural defect fails with ErrCorruptState.
func DecodeGame(data []byte) (*Game, error) {
	var rec gameRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}

	gameID, err := uuid.Parse(rec.GameID)
	if err != nil {
		return nil, fmt.Errorf("%w: game_id %q", ErrCorruptState, rec.GameID)
	}
	if rec.InviteSecret == "" {
		return nil, fmt.Errorf("%w: missing invite_secret", ErrCorruptState)
	}
	if !rec.NextTurn.Valid() {
		return nil, fmt.Errorf("%w: next_turn %q", ErrCorruptState, rec.NextTurn)
	}

	g := &Game{
		ID:           gameID,
		Board:        NewBoard(),
		MoveHistory:  make([]Move, 0, len(rec.MoveHistory)),
		InviteSecret: rec.InviteSecret,
		NextTurn:     rec.NextTurn,
	}

	for text, piece := range rec.Board.Pieces {
		sq, err := ParseSquare(text)
		if err != nil {
			return nil, fmt.Errorf("%w: board square %q", ErrCorruptState, text)
		}
		if err := validPiece(piece); err != nil {
			return nil, err
		}
		g.Board.SetPiece(sq, piece)
	}

	for i, m := range rec.MoveHistory {
		from, err := ParseSquare(m.SquareFrom)
		if err != nil {
			return nil, fmt.Errorf("%w: move %d square_from %q", ErrCorruptState, i, m.SquareFrom)
		}
		to, err := ParseSquare(m.SquareTo)
		if err != nil {
			return nil, fmt.Errorf("%w: move %d square_to %q", ErrCorruptState, i, m.SquareTo)
		}
		if err := validPiece(m.ChessPiece); err != nil {
			return nil, err
		}
		g.MoveHistory = append(g.MoveHistory, Move{From: from, To: to, Piece: m.ChessPiece})
	}

	if g.WhiteID, err = parseUserID(rec.WhiteUserID); err != nil {
		return nil, err
	}
	if g.BlackID, err = parseUserID(rec.BlackUserID); err != nil {
		return nil, err
	}
	return g, nil
}

func validPiece(p Piece) error {
	if !p.Type.Valid() {
		return fmt.Errorf("%w: piece type %q", ErrCorruptState, p.Type)
	}
	if !p.Color.Valid() {
		return fmt.Errorf("%w: piece color %q", ErrCorruptState, p.Color)
	}
	return nil
}

func parseUserID(s *string) (*uuid.UUID, error) {
	if s == nil {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, fmt.Errorf("%w: user id %q", ErrCorruptState, *s)
	}
	return &id, nil
}
