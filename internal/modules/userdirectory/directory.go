package userdirectory

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// ErrUnavailable is returned when the user service cannot provide details.
var ErrUnavailable = errors.New("user directory unavailable")

// Details is the display data of an end-user.
type Details struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	ProfileImage string `json:"profileImage,omitempty"`
	Placeholder  bool   `json:"-"`
}

// Directory looks up user display data on behalf of the caller identified by token.
type Directory interface {
	Lookup(ctx context.Context, userID int64, token string) (Details, error)
}

// Placeholder returns the details substituted when a lookup fails.
func Placeholder(userID int64) Details {
	return Details{
		Name:        fmt.Sprintf("User %d", userID),
		Email:       fmt.Sprintf("user%d@example.com", userID),
		Placeholder: true,
	}
}

// Resolve looks up userID and never fails. With an empty token or a nil
// directory no lookup happens and ok is false. A failed lookup yields
// Placeholder details with ok true.
func Resolve(ctx context.Context, dir Directory, userID int64, token string) (d Details, ok bool) {
	if token == "" || dir == nil {
		return Details{}, false
	}
	d, err := dir.Lookup(ctx, userID, token)
	if err != nil {
		log.Printf("[userdirectory] lookup for user %d failed: %v", userID, err)
		return Placeholder(userID), true
	}
	return d, true
}

type resolved struct {
	details Details
	ok      bool
}

// Batch resolves the users of one request. Each user is looked up at most
// once, and after the first failed lookup the remaining users get
// placeholders without calling the directory again.
type Batch struct {
	dir    Directory
	token  string
	failed bool
	seen   map[int64]resolved
}

func NewBatch(dir Directory, token string) *Batch {
	return &Batch{dir: dir, token: token, seen: make(map[int64]resolved)}
}

// Resolve behaves like the package-level Resolve for a single user.
func (b *Batch) Resolve(ctx context.Context, userID int64) (Details, bool) {
	if r, ok := b.seen[userID]; ok {
		return r.details, r.ok
	}
	var r resolved
	if b.failed && b.token != "" && b.dir != nil {
		r = resolved{Placeholder(userID), true}
	} else {
		r.details, r.ok = Resolve(ctx, b.dir, userID, b.token)
		b.failed = r.details.Placeholder
	}
	b.seen[userID] = r
	return r.details, r.ok
}
