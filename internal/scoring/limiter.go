package scoring

import "sync"

// recomputeLimiter сериализует пересчёты одной пары (группа, день):
// delete и insert двух конкурентных вызовов не должны перемешиваться.
type recomputeLimiter struct {
	mu   sync.Mutex
	byID map[string]*sync.Mutex
}

func newRecomputeLimiter() *recomputeLimiter {
	return &recomputeLimiter{byID: make(map[string]*sync.Mutex)}
}

func (l *recomputeLimiter) lock(key string) func() {
	l.mu.Lock()
	m, ok := l.byID[key]
	if !ok {
		m = &sync.Mutex{}
		l.byID[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return func() { m.Unlock() }
}
