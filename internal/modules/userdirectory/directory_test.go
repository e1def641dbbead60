package userdirectory

import (
	"context"
	"testing"
)

type countingDirectory struct {
	calls map[int64]int
	err   error
}

func (c *countingDirectory) Lookup(ctx context.Context, userID int64, token string) (Details, error) {
	c.calls[userID]++
	if c.err != nil {
		return Details{}, c.err
	}
	return Details{Name: "Ada", Email: "ada@example.org"}, nil
}

func TestBatchLooksUpEachUserOnce(t *testing.T) {
	dir := &countingDirectory{calls: map[int64]int{}}
	b := NewBatch(dir, "tok")

	for _, id := range []int64{1, 2, 1, 1, 2} {
		if d, ok := b.Resolve(context.Background(), id); !ok || d.Name != "Ada" {
			t.Fatalf("Resolve(%d) = %+v, %t", id, d, ok)
		}
	}
	if dir.calls[1] != 1 || dir.calls[2] != 1 {
		t.Fatalf("expected one lookup per user, got %v", dir.calls)
	}
}

func TestBatchStopsCallingAfterFailure(t *testing.T) {
	dir := &countingDirectory{calls: map[int64]int{}, err: ErrUnavailable}
	b := NewBatch(dir, "tok")

	for _, id := range []int64{1, 2, 3} {
		d, ok := b.Resolve(context.Background(), id)
		if !ok || !d.Placeholder || d.Name != Placeholder(id).Name {
			t.Fatalf("Resolve(%d) = %+v, %t; want placeholder", id, d, ok)
		}
	}
	if len(dir.calls) != 1 || dir.calls[1] != 1 {
		t.Fatalf("expected a single lookup before giving up, got %v", dir.calls)
	}
}

func TestBatchWithoutTokenSkipsDirectory(t *testing.T) {
	dir := &countingDirectory{calls: map[int64]int{}}
	if _, ok := NewBatch(dir, "").Resolve(context.Background(), 1); ok {
		t.Fatal("expected no enrichment without a token")
	}
	if len(dir.calls) != 0 {
		t.Fatalf("expected no lookups, got %v", dir.calls)
	}
}
