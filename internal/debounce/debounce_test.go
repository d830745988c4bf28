package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu   sync.Mutex
	seen map[string][]int
}

func (r *recorder) flush(key string, v int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen[key] = append(r.seen[key], v)
}

func (r *recorder) get(key string) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.seen[key]...)
}

func TestTriggerCoalesces(t *testing.T) {
	rec := &recorder{seen: map[string][]int{}}
	d := New(Options[string, int]{Delay: 20 * time.Millisecond, OnFlush: rec.flush})

	d.Trigger("a", 1)
	d.Trigger("a", 2)
	d.Trigger("b", 7)
	d.Trigger("a", 3)

	assert.Eventually(t, func() bool {
		return len(rec.get("a")) == 1 && len(rec.get("b")) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []int{3}, rec.get("a"))
	assert.Equal(t, []int{7}, rec.get("b"))
}

func TestStop(t *testing.T) {
	rec := &recorder{seen: map[string][]int{}}
	d := New(Options[string, int]{Delay: 10 * time.Millisecond, OnFlush: rec.flush})

	d.Trigger("a", 1)
	d.Stop()

	time.Sleep(40 * time.Millisecond)
	assert.Empty(t, rec.get("a"))
}
