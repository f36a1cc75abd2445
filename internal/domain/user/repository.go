package user

import "context"

// Repository stores pick'em accounts. Create and Update return
// ErrUsernameTaken or ErrEmailTaken on unique key clashes.
type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id int64) (User, bool, error)
	GetByEmail(ctx context.Context, email string) (User, bool, error)
	List(ctx context.Context) ([]User, error)
}
