// Package httpapi is the HTTP transport for the chess service.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kapu/chessmate/internal/account"
	"github.com/kapu/chessmate/internal/boardimg"
	"github.com/kapu/chessmate/internal/match"
	"github.com/kapu/chessmate/internal/msgcat"
	"github.com/kapu/chessmate/internal/security"
)

type Server struct {
	accounts   account.Store
	tokens     *security.TokenService
	matches    *match.Manager
	events     match.Subscriber
	renderer   *boardimg.Renderer
	msgs       *msgcat.Catalog
	ping       func(ctx context.Context) error
	bcryptCost int
}

type ServerOption func(*Server)

// WithSubscriber enables the live watch endpoint.
func WithSubscriber(sub match.Subscriber) ServerOption {
	return func(s *Server) { s.events = sub }
}

// WithPinger makes /healthz probe the backing store.
func WithPinger(ping func(ctx context.Context) error) ServerOption {
	return func(s *Server) { s.ping = ping }
}

// WithBcryptCost overrides the password hashing cost, mainly for tests.
func WithBcryptCost(cost int) ServerOption {
	return func(s *Server) { s.bcryptCost = cost }
}

func NewServer(
	accounts account.Store,
	tokens *security.TokenService,
	matches *match.Manager,
	msgs *msgcat.Catalog,
	opts ...ServerOption,
) *Server {
	s := &Server{
		accounts: accounts,
		tokens:   tokens,
		matches:  matches,
		renderer: boardimg.NewRenderer(),
		msgs:     msgs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/accounts", s.handleCreateAccount)
		r.Post("/authenticate", s.handleAuthenticate)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/games", s.handleCreateGame)
			r.Route("/games/{gameID}", func(r chi.Router) {
				r.Get("/", s.handleGetGame)
				r.Post("/join", s.handleJoinGame)
				r.Post("/moves", s.handleMove)
				r.Get("/board.png", s.handleBoardPNG)
				r.Get("/watch", s.handleWatch)
			})
		})
	})

	return r
}
