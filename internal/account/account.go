package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Account is a registered player. The password is stored only as a bcrypt
// hash.
type Account struct {
	UserID         uuid.UUID `json:"user_id"`
	Username       string    `json:"username"`
	HashedPassword []byte    `json:"hashed_password"`
}

var (
	ErrNotFound      = errors.New("account not found")
	ErrUsernameTaken = errors.New("username already exists")
)

// Store persists accounts, unique per username.
type Store interface {
	Create(ctx context.Context, a Account) error
	GetByUsername(ctx context.Context, username string) (Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (Account, error)
}
