package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Entity tags a cached query by the table it reads from. Together with a
// scoping parameter it forms the full cache key, so a mutation only ever
// invalidates reads of its own entity and scope: the classes of teacher A
// are never touched by a mutation scoped to teacher B, and the enrollments
// of class A never collide with class B.
type Entity string

const (
	EntityClasses           Entity = "classes"
	EntityEnrollments       Entity = "enrollments"
	EntityAssignments       Entity = "assignments"
	EntityGrades            Entity = "grades"
	EntityAttendance        Entity = "attendance"
	EntityAvailableStudents Entity = "available_students"
	EntityOrganizations     Entity = "organizations"
)

// Key is a strongly typed cache key: entity tag plus scoping parameter.
type Key struct {
	Entity Entity
	Scope  string
}

func NewKey(entity Entity, scope string) Key {
	return Key{Entity: entity, Scope: scope}
}

func (k Key) String() string {
	return fmt.Sprintf("query:%s:%s", k.Entity, k.Scope)
}

// QueryCache is a Redis-backed read-through cache for query results. A nil
// client degrades to pass-through: every Get misses and every mutation's
// Invalidate is a no-op, so the server works without Redis at the cost of
// hitting Postgres on every read.
type QueryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *QueryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QueryCache{client: client, ttl: ttl}
}

// Get unmarshals the cached value for key into dest. The second return is
// false on a miss (or when Redis is absent or unreadable).
func (c *QueryCache) Get(ctx context.Context, key Key, dest any) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}
	raw, err := c.client.Get(ctx, key.String()).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		// A stale or corrupt entry is treated as a miss.
		return false, nil
	}
	return true, nil
}

// Set stores a query result under key. Errors are returned but callers may
// ignore them: a failed write only costs a future cache miss.
func (c *QueryCache) Set(ctx context.Context, key Key, value any) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key.String(), payload, c.ttl).Err()
}

// Invalidate drops every given key. Each mutation declares exactly which
// read queries it affects by listing their keys here.
func (c *QueryCache) Invalidate(ctx context.Context, keys ...Key) error {
	if c == nil || c.client == nil || len(keys) == 0 {
		return nil
	}
	raw := make([]string, len(keys))
	for i, k := range keys {
		raw[i] = k.String()
	}
	return c.client.Del(ctx, raw...).Err()
}
