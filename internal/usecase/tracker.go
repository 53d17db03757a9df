package usecase

import "sync"

// Tracker remembers the inputs an effect last ran with and reports whether
// they changed. The first call always reports a change, like a mount.
type Tracker[K comparable] struct {
	mu     sync.Mutex
	last   K
	primed bool
}

// Changed records k and reports whether it differs from the previous call.
func (t *Tracker[K]) Changed(k K) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.primed && t.last == k {
		return false
	}
	t.last = k
	t.primed = true
	return true
}

// Run calls fn only when k changed.
func (t *Tracker[K]) Run(k K, fn func(K)) bool {
	if !t.Changed(k) {
		return false
	}
	fn(k)
	return true
}
