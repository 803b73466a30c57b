package cart

import "sync"

// sessionLocks serialises read-modify-write cycles per session id within one
// process. Entries are dropped once no caller holds or waits on them.
type sessionLocks struct {
	mu   sync.Mutex
	held map[string]*sessionLock
}

type sessionLock struct {
	sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{held: make(map[string]*sessionLock)}
}

func (l *sessionLocks) lock(sessionID string) func() {
	l.mu.Lock()
	entry, ok := l.held[sessionID]
	if !ok {
		entry = &sessionLock{}
		l.held[sessionID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.Lock()
	return func() {
		entry.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.held, sessionID)
		}
		l.mu.Unlock()
	}
}
