package store

import (
	"context"
	"time"

	"github.com/abhisek/examdeck/internal/exam"
)

type cachedSubjects struct {
	Data      []exam.Subject `json:"data"`
	Timestamp int64          `json:"timestamp"`
}

type subjectCache struct {
	kv  KV
	ttl time.Duration
	now func() time.Time
}

// NewSubjectCache returns a SubjectCacheRepo over kv. A non-positive ttl
// selects DefaultSubjectTTL; a nil now selects time.Now.
func NewSubjectCache(kv KV, ttl time.Duration, now func() time.Time) SubjectCacheRepo {
	if ttl <= 0 {
		ttl = DefaultSubjectTTL
	}
	return &subjectCache{kv: kv, ttl: ttl, now: nowFunc(now)}
}

func (c *subjectCache) Get(ctx context.Context) ([]exam.Subject, bool, error) {
	var cached cachedSubjects
	ok, err := getJSON(ctx, c.kv, SubjectsKey, &cached)
	if err != nil || !ok {
		return nil, false, err
	}
	age := c.now().Sub(time.UnixMilli(cached.Timestamp))
	if age >= c.ttl {
		return nil, false, nil
	}
	return cached.Data, true, nil
}

func (c *subjectCache) Put(ctx context.Context, subjects []exam.Subject) error {
	return setJSON(ctx, c.kv, SubjectsKey, cachedSubjects{
		Data:      subjects,
		Timestamp: c.now().UnixMilli(),
	})
}

func (c *subjectCache) Invalidate(ctx context.Context) error {
	return c.kv.Remove(ctx, SubjectsKey)
}
