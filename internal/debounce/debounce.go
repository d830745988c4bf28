package debounce

import (
	"sync"
	"time"
)

type Options[K comparable, V any] struct {
	Delay   time.Duration
	OnFlush func(K, V)
}

// Debouncer coalesces bursts of triggers per key: only the last value seen
// within Delay of the previous trigger is flushed.
type Debouncer[K comparable, V any] struct {
	mu      sync.Mutex
	delay   time.Duration
	onFlush func(K, V)
	pending map[K]*entry[V]
}

type entry[V any] struct {
	value V
	timer *time.Timer
}

func New[K comparable, V any](opts Options[K, V]) *Debouncer[K, V] {
	delay := opts.Delay
	if delay <= 0 {
		delay = 1200 * time.Millisecond
	}
	return &Debouncer[K, V]{
		delay:   delay,
		onFlush: opts.OnFlush,
		pending: make(map[K]*entry[V]),
	}
}

func (d *Debouncer[K, V]) Trigger(key K, value V) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pending[key]
	if !ok {
		p = &entry[V]{}
		d.pending[key] = p
	}
	p.value = value

	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(d.delay, func() {
		d.flush(key, p)
	})
}

// Stop cancels every pending flush.
func (d *Debouncer[K, V]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, p := range d.pending {
		if p.timer != nil {
			p.timer.Stop()
		}
		delete(d.pending, key)
	}
}

func (d *Debouncer[K, V]) flush(key K, p *entry[V]) {
	d.mu.Lock()
	cur, ok := d.pending[key]
	if !ok || cur != p {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	value := p.value
	onFlush := d.onFlush
	d.mu.Unlock()

	if onFlush != nil {
		onFlush(key, value)
	}
}
