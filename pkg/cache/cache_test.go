package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestKeyString(t *testing.T) {
	classA := uuid.New()
	classB := uuid.New()

	tests := []struct {
		name string
		a    Key
		b    Key
	}{
		{
			name: "same entity different scope",
			a:    NewKey(EntityEnrollments, classA.String()),
			b:    NewKey(EntityEnrollments, classB.String()),
		},
		{
			name: "same scope different entity",
			a:    NewKey(EntityAssignments, classA.String()),
			b:    NewKey(EntityAttendance, classA.String()),
		},
		{
			name: "available students never collide with enrollments",
			a:    NewKey(EntityAvailableStudents, classA.String()),
			b:    NewKey(EntityEnrollments, classA.String()),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.a.String() == tt.b.String() {
				t.Errorf("keys %v and %v must not collide, both render as %q", tt.a, tt.b, tt.a.String())
			}
		})
	}
}

func TestKeyStringFormat(t *testing.T) {
	key := NewKey(EntityClasses, "abc")
	if got, want := key.String(), "query:classes:abc"; got != want {
		t.Errorf("key rendered as %q, want %q", got, want)
	}
}

// Without Redis the cache must behave as an always-miss: reads fall through
// to the repository and invalidation is a no-op, never an error.
func TestQueryCacheWithoutRedis(t *testing.T) {
	ctx := context.Background()
	c := New(nil, time.Minute)
	key := NewKey(EntityClasses, uuid.New().String())

	var dest []string
	hit, err := c.Get(ctx, key, &dest)
	if err != nil {
		t.Fatalf("Get without redis returned error: %v", err)
	}
	if hit {
		t.Error("Get without redis must always miss")
	}

	if err := c.Set(ctx, key, []string{"a"}); err != nil {
		t.Errorf("Set without redis returned error: %v", err)
	}
	if err := c.Invalidate(ctx, key); err != nil {
		t.Errorf("Invalidate without redis returned error: %v", err)
	}
}

func TestNilQueryCache(t *testing.T) {
	var c *QueryCache
	ctx := context.Background()
	key := NewKey(EntityGrades, "x")

	if hit, err := c.Get(ctx, key, nil); err != nil || hit {
		t.Errorf("nil cache Get = (%v, %v), want miss without error", hit, err)
	}
	if err := c.Invalidate(ctx, key); err != nil {
		t.Errorf("nil cache Invalidate returned error: %v", err)
	}
}
