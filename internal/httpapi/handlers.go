package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kapu/chessmate/internal/account"
	"github.com/kapu/chessmate/internal/chess"
	"github.com/kapu/chessmate/internal/gamestore"
	"github.com/kapu/chessmate/internal/obslog"
	"github.com/kapu/chessmate/internal/security"
	"github.com/kapu/chessmate/pkg/gamedto"
)

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		if err := s.ping(r.Context()); err != nil {
			obslog.L().Warn("healthz_ping_failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req gamedto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, s.msgs.Render("error.bad_request", nil))
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		fail(w, http.StatusBadRequest, s.msgs.Render("error.bad_request", nil))
		return
	}

	hashed, err := security.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		s.internalError(w, "hash password", err)
		return
	}
	acct := account.Account{
		UserID:         uuid.New(),
		Username:       req.Username,
		HashedPassword: hashed,
	}
	if err := s.accounts.Create(r.Context(), acct); err != nil {
		if errors.Is(err, account.ErrUsernameTaken) {
			fail(w, http.StatusBadRequest, s.msgs.Render("error.username_taken", nil))
			return
		}
		s.internalError(w, "create account", err)
		return
	}

	// Registration doubles as login.
	token, err := s.tokens.Issue(acct.UserID)
	if err != nil {
		s.internalError(w, "issue token", err)
		return
	}
	s.setAccessCookie(w, token)

	obslog.L().Info("account_create", zap.String("user_id", acct.UserID.String()))
	writeJSON(w, http.StatusOK, gamedto.AccountResponse{UserID: acct.UserID.String()})
}

func (s *Server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req gamedto.AuthenticateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, s.msgs.Render("error.bad_request", nil))
		return
	}

	acct, err := s.accounts.GetByUsername(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			fail(w, http.StatusUnauthorized, s.msgs.Render("error.invalid_credentials", nil))
			return
		}
		s.internalError(w, "load account", err)
		return
	}
	if !security.CheckPassword(req.Password, acct.HashedPassword) {
		fail(w, http.StatusUnauthorized, s.msgs.Render("error.invalid_credentials", nil))
		return
	}

	token, err := s.tokens.Issue(acct.UserID)
	if err != nil {
		s.internalError(w, "issue token", err)
		return
	}
	s.setAccessCookie(w, token)
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		fail(w, http.StatusUnauthorized, s.msgs.Render("error.unauthorized", nil))
		return
	}
	var req gamedto.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, s.msgs.Render("error.bad_request", nil))
		return
	}
	color := chess.Color(strings.ToUpper(strings.TrimSpace(req.DesiredColor)))
	if !color.Valid() {
		fail(w, http.StatusBadRequest, s.msgs.Render("error.invalid_color", nil))
		return
	}

	g, err := s.matches.Create(r.Context(), userID, color)
	if err != nil {
		s.internalError(w, "create game", err)
		return
	}
	writeJSON(w, http.StatusOK, gameView(g, true))
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := s.gameID(w, r)
	if !ok {
		return
	}
	g, err := s.matches.Get(r.Context(), gameID)
	if err != nil {
		s.gameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gameView(g, false))
}

func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		fail(w, http.StatusUnauthorized, s.msgs.Render("error.unauthorized", nil))
		return
	}
	gameID, ok := s.gameID(w, r)
	if !ok {
		return
	}
	secret := r.URL.Query().Get("invite_secret")

	g, err := s.matches.Join(r.Context(), gameID, userID, secret)
	if err != nil {
		s.gameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gameView(g, false))
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		fail(w, http.StatusUnauthorized, s.msgs.Render("error.unauthorized", nil))
		return
	}
	gameID, ok := s.gameID(w, r)
	if !ok {
		return
	}
	var req gamedto.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, s.msgs.Render("error.bad_request", nil))
		return
	}
	from, err := chess.ParseSquare(req.SquareFrom)
	if err != nil {
		fail(w, http.StatusBadRequest, s.msgs.Render("error.invalid_square_from", nil))
		return
	}
	to, err := chess.ParseSquare(req.SquareTo)
	if err != nil {
		fail(w, http.StatusBadRequest, s.msgs.Render("error.invalid_square_to", nil))
		return
	}

	applied, _, err := s.matches.Move(r.Context(), gameID, userID, from, to)
	if err != nil {
		s.gameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, moveView(applied))
}

func (s *Server) handleBoardPNG(w http.ResponseWriter, r *http.Request) {
	gameID, ok := s.gameID(w, r)
	if !ok {
		return
	}
	g, err := s.matches.Get(r.Context(), gameID)
	if err != nil {
		s.gameError(w, err)
		return
	}
	data, err := s.renderer.RenderPNG(r.Context(), g.Board)
	if err != nil {
		s.internalError(w, "render board", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		obslog.L().Error("write board png", zap.Error(err))
	}
}

// gameID parses the game id path parameter. An unparseable id reads the same
// as a missing game so ids stay opaque to callers.
func (s *Server) gameID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "gameID")
	id, err := uuid.Parse(raw)
	if err != nil {
		fail(w, http.StatusNotFound, s.msgs.Render("error.game_not_found", nil))
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) gameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gamestore.ErrNotFound):
		fail(w, http.StatusNotFound, s.msgs.Render("error.game_not_found", nil))
	case errors.Is(err, chess.ErrNotAPlayer):
		fail(w, http.StatusForbidden, s.msgs.Render("error.not_a_player", nil))
	case errors.Is(err, chess.ErrNotYourTurn):
		fail(w, http.StatusForbidden, s.msgs.Render("error.not_your_turn", nil))
	case errors.Is(err, chess.ErrWrongColorPiece):
		fail(w, http.StatusForbidden, s.msgs.Render("error.wrong_color_piece", nil))
	case errors.Is(err, chess.ErrInvalidSecret):
		fail(w, http.StatusBadRequest, s.msgs.Render("error.invalid_secret", nil))
	case errors.Is(err, chess.ErrGameFull):
		fail(w, http.StatusBadRequest, s.msgs.Render("error.game_full", nil))
	case errors.Is(err, chess.ErrAlreadyInGame):
		fail(w, http.StatusBadRequest, s.msgs.Render("error.already_in_game", nil))
	case errors.Is(err, chess.ErrEmptySquare):
		fail(w, http.StatusBadRequest, s.msgs.Render("error.empty_square", nil))
	case errors.Is(err, chess.ErrSquareOccupied):
		fail(w, http.StatusBadRequest, s.msgs.Render("error.square_occupied", nil))
	case errors.Is(err, chess.ErrIllegalShape):
		fail(w, http.StatusBadRequest, s.msgs.Render("error.illegal_shape", nil))
	default:
		s.internalError(w, "game operation", err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	obslog.L().Error(op, zap.Error(err))
	fail(w, http.StatusInternalServerError, s.msgs.Render("error.internal", nil))
}
