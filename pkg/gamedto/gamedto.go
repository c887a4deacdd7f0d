// Package gamedto holds the JSON shapes exchanged over the HTTP API. It has
// no dependency on the engine so API consumers can import it directly.
package gamedto

// CreateAccountRequest registers a new account.
type CreateAccountRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthenticateRequest exchanges credentials for an access token cookie.
type AuthenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AccountResponse is returned after registration.
type AccountResponse struct {
	UserID string `json:"user_id"`
}

// CreateGameRequest starts a new game with the caller seated on the
// requested color, "WHITE" or "BLACK".
type CreateGameRequest struct {
	DesiredColor string `json:"desired_color"`
}

// MoveRequest asks to move the piece on SquareFrom to SquareTo.
type MoveRequest struct {
	SquareFrom string `json:"square_from"`
	SquareTo   string `json:"square_to"`
}

// Piece is a piece on the board.
type Piece struct {
	PieceType string `json:"piece_type"`
	Color     string `json:"color"`
}

// Move is one applied half-move.
type Move struct {
	SquareFrom string `json:"square_from"`
	SquareTo   string `json:"square_to"`
	Piece      Piece  `json:"chess_piece"`
}

// Game is the full game state. InviteSecret is only populated in the
// response to game creation; WhiteUserID and BlackUserID are null until the
// matching slot is filled.
type Game struct {
	GameID       string           `json:"game_id"`
	Board        map[string]Piece `json:"board"`
	MoveHistory  []Move           `json:"move_history"`
	WhiteUserID  *string          `json:"white_user_id"`
	BlackUserID  *string          `json:"black_user_id"`
	InviteSecret string           `json:"invite_secret,omitempty"`
	NextTurn     string           `json:"next_turn"`
}

// Failure is the error envelope for every non-2xx API response.
type Failure struct {
	UserFeedback string `json:"user_feedback"`
}
