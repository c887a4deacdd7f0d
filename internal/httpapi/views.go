package httpapi

import (
	"github.com/kapu/chessmate/internal/chess"
	"github.com/kapu/chessmate/pkg/gamedto"
)

// gameView projects a game onto the wire DTO. The invite secret only leaves
// the server in the game-creation response.
func gameView(g *chess.Game, includeSecret bool) gamedto.Game {
	view := gamedto.Game{
		GameID:      g.ID.String(),
		Board:       make(map[string]gamedto.Piece),
		MoveHistory: make([]gamedto.Move, 0, len(g.MoveHistory)),
		NextTurn:    string(g.NextTurn),
	}
	for sq, p := range g.Board.Pieces() {
		view.Board[sq.String()] = pieceView(p)
	}
	for _, mv := range g.MoveHistory {
		view.MoveHistory = append(view.MoveHistory, moveView(mv))
	}
	if g.WhiteID != nil {
		id := g.WhiteID.String()
		view.WhiteUserID = &id
	}
	if g.BlackID != nil {
		id := g.BlackID.String()
		view.BlackUserID = &id
	}
	if includeSecret {
		view.InviteSecret = g.InviteSecret
	}
	return view
}

func moveView(mv chess.Move) gamedto.Move {
	return gamedto.Move{
		SquareFrom: mv.From.String(),
		SquareTo:   mv.To.String(),
		Piece:      pieceView(mv.Piece),
	}
}

func pieceView(p chess.Piece) gamedto.Piece {
	return gamedto.Piece{PieceType: string(p.Type), Color: string(p.Color)}
}
