// Package keylock serializes work per key. Waiters on the same key are
// released in the order they called Lock; distinct keys never block each other.
package keylock

import "sync"

type Locker struct {
	mu     sync.Mutex
	queues map[string][]chan struct{}
}

func New() *Locker {
	return &Locker{queues: make(map[string][]chan struct{})}
}

// Lock blocks until the caller holds key and returns the matching unlock func.
func (l *Locker) Lock(key string) (unlock func()) {
	ticket := make(chan struct{})

	l.mu.Lock()
	queue := l.queues[key]
	l.queues[key] = append(queue, ticket)
	first := len(queue) == 0
	l.mu.Unlock()

	if !first {
		<-ticket
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(key) })
	}
}

func (l *Locker) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	queue := l.queues[key][1:]
	if len(queue) == 0 {
		delete(l.queues, key)
		return
	}
	l.queues[key] = queue
	close(queue[0])
}

// Len returns the number of keys currently held or waited on.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queues)
}
