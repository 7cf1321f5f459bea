package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bkbadhon/elearning/internal/domain/course"
	"github.com/redis/go-redis/v9"
)

// bump the version segment when the serialized shape changes
const coursesListKey = "courses:list:v1"

// CoursesCache holds the serialized catalog in redis for a short TTL. All
// failures degrade to a cache miss; the catalog read path never depends on
// redis being up.
type CoursesCache struct {
	client *Client
	ttl    time.Duration
}

func NewCoursesCache(client *Client, ttl time.Duration) *CoursesCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &CoursesCache{client: client, ttl: ttl}
}

func (c *CoursesCache) Get(ctx context.Context) ([]course.Course, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	raw, err := c.client.Raw().Get(ctx, coursesListKey).Bytes()

	if errors.Is(err, redis.Nil) {
		return nil, false
	}

	if err != nil {
		// unreachable redis degrades to a miss
		return nil, false
	}

	var courses []course.Course

	if err := json.Unmarshal(raw, &courses); err != nil {
		return nil, false
	}

	return courses, true
}

func (c *CoursesCache) Set(ctx context.Context, courses []course.Course) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := json.Marshal(courses)

	if err != nil {
		return
	}

	_ = c.client.Raw().Set(ctx, coursesListKey, raw, c.ttl).Err()
}

func (c *CoursesCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}

	_ = c.client.Raw().Del(ctx, coursesListKey).Err()
}
