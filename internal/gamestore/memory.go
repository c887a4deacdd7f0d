package gamestore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kapu/chessmate/internal/chess"
)

// MemoryStore is a development and test implementation. Games are held as
// encoded blobs so every access round-trips through the codec, exactly like
// the redis store, and callers can never hold an aliased live game.
type MemoryStore struct {
	mu    sync.Mutex
	games map[uuid.UUID][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: make(map[uuid.UUID][]byte)}
}

func (s *MemoryStore) Put(ctx context.Context, g *chess.Game) error {
	raw, err := chess.EncodeGame(g)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.games[g.ID] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*chess.Game, error) {
	s.mu.Lock()
	raw, ok := s.games[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return chess.DecodeGame(raw)
}

// Update holds the store lock for the whole load-apply-save sequence, which
// serializes concurrent updates the same way the redis WATCH loop does.
func (s *MemoryStore) Update(ctx context.Context, id uuid.UUID, fn func(*chess.Game) error) (*chess.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	g, err := chess.DecodeGame(raw)
	if err != nil {
		return nil, err
	}
	if err := fn(g); err != nil {
		return nil, err
	}
	encoded, err := chess.EncodeGame(g)
	if err != nil {
		return nil, err
	}
	s.games[id] = encoded
	return g, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	delete(s.games, id)
	s.mu.Unlock()
	return nil
}
