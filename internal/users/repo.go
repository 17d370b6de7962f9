package users

import "context"

type Repo interface {
	// Create stores a new active user. It returns ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, email, passwordHash string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, userID int64) (User, error)
}
