package httpapi

import (
	"net/http"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/kapu/chessmate/internal/obslog"
)

// handleWatch streams applied moves for one game over a websocket. The
// socket is write-only from the server side; anything the client sends is
// drained and dropped.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		fail(w, http.StatusNotImplemented, s.msgs.Render("error.internal", nil))
		return
	}
	gameID, ok := s.gameID(w, r)
	if !ok {
		return
	}
	if _, err := s.matches.Get(r.Context(), gameID); err != nil {
		s.gameError(w, err)
		return
	}

	// Subscribe before completing the handshake so a move applied right
	// after the client connects is never dropped.
	moves, stop, err := s.events.SubscribeMoves(r.Context(), gameID)
	if err != nil {
		obslog.L().Warn("watch_subscribe_failed",
			zap.String("game_id", gameID.String()),
			zap.Error(err),
		)
		fail(w, http.StatusInternalServerError, s.msgs.Render("error.internal", nil))
		return
	}
	defer stop()

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		obslog.L().Warn("watch_accept_failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "watch aborted")

	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev, open := <-moves:
			if !open {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if err := wsjson.Write(ctx, conn, ev); err != nil {
				return
			}
		}
	}
}
