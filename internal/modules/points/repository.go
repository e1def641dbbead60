package points

import "context"

// Repository defines persistence operations for points accounts.
type Repository interface {
	GetByUserID(ctx context.Context, userID int64) (*Account, error)
	ListActive(ctx context.Context) ([]*Account, error)
	ListTopEarners(ctx context.Context, limit int) ([]*Account, error)
	Statistics(ctx context.Context) (*Statistics, error)

	// Update locks the user's account, applies fn and persists the result in a
	// single transaction. With create set, a missing account is created first;
	// otherwise a missing account yields ErrAccountNotFound. An error from fn
	// rolls the transaction back and leaves the account unchanged.
	Update(ctx context.Context, userID int64, create bool, fn func(*Account) error) (*Account, error)
}
