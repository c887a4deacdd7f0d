package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/kapu/chessmate/internal/obslog"
	"github.com/kapu/chessmate/pkg/gamedto"
)

const accessTokenCookie = "access_token"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		obslog.L().Error("write response", zap.Error(err))
	}
}

// fail writes the error envelope every non-2xx response uses.
func fail(w http.ResponseWriter, status int, userFeedback string) {
	writeJSON(w, status, gamedto.Failure{UserFeedback: userFeedback})
}

func (s *Server) setAccessCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
