package attendance

import "sync"

// studentLocks serializes the read-latest/append sequence per student.
// Without it two concurrent scans could both observe the same latest event
// and bypass the duplicate-scan suppression.
type studentLocks struct {
	mu    sync.RWMutex
	locks map[string]*sync.Mutex
}

func newStudentLocks() *studentLocks {
	return &studentLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *studentLocks) get(studentID string) *sync.Mutex {
	l.mu.RLock()
	m, ok := l.locks[studentID]
	l.mu.RUnlock()
	if ok {
		return m
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if m, ok = l.locks[studentID]; ok {
		return m
	}
	m = &sync.Mutex{}
	l.locks[studentID] = m
	return m
}
