package toast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueueLifecycle(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	q := NewQueue(3 * time.Second)

	q, a := q.Push("Video found", Success, now)
	q, b := q.Push("URL copied", Success, now.Add(time.Second))

	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, q.Active(), 2)

	q = q.Expire(now.Add(3 * time.Second))
	active := q.Active()
	if assert.Len(t, active, 1) {
		assert.Equal(t, "URL copied", active[0].Message)
	}

	q = q.Expire(now.Add(10 * time.Second))
	assert.Empty(t, q.Active())
}

func TestQueueRemove(t *testing.T) {
	now := time.Now()
	q := NewQueue(0)
	assert.Equal(t, DefaultTTL, q.TTL())

	q, a := q.Push("one", Info, now)
	q, _ = q.Push("two", Error, now)

	q = q.Remove(a.ID)
	assert.Len(t, q.Active(), 1)
	assert.Equal(t, "two", q.Active()[0].Message)
}

func TestQueueIsValue(t *testing.T) {
	now := time.Now()
	base, _ := NewQueue(time.Second).Push("one", Info, now)

	grown, _ := base.Push("two", Info, now)
	assert.Len(t, base.Active(), 1)
	assert.Len(t, grown.Active(), 2)

	// Active returns a copy
	items := grown.Active()
	items[0].Message = "changed"
	assert.Equal(t, "one", grown.Active()[0].Message)
}

func TestZeroQueueUsable(t *testing.T) {
	var q Queue
	q, tt := q.Push("hello", Info, time.Unix(0, 0))
	assert.Equal(t, time.Unix(0, 0).Add(DefaultTTL), tt.ExpiresAt)
	assert.Equal(t, "info", Info.String())
	assert.Equal(t, "error", Error.String())
}
