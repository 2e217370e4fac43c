package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UserCacheHits    uint64
	UserCacheMisses  uint64
	CacheWriteErrors uint64
	UsersCreated     uint64
	UsersUpdated     uint64
	UsersDeleted     uint64
	TokensIssued     uint64
	LoginsFailed     uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	userCacheHits    uint64
	userCacheMisses  uint64
	cacheWriteErrors uint64
	usersCreated     uint64
	usersUpdated     uint64
	usersDeleted     uint64
	tokensIssued     uint64
	loginsFailed     uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UserCacheHits:    atomic.LoadUint64(&m.userCacheHits),
		UserCacheMisses:  atomic.LoadUint64(&m.userCacheMisses),
		CacheWriteErrors: atomic.LoadUint64(&m.cacheWriteErrors),
		UsersCreated:     atomic.LoadUint64(&m.usersCreated),
		UsersUpdated:     atomic.LoadUint64(&m.usersUpdated),
		UsersDeleted:     atomic.LoadUint64(&m.usersDeleted),
		TokensIssued:     atomic.LoadUint64(&m.tokensIssued),
		LoginsFailed:     atomic.LoadUint64(&m.loginsFailed),
	}
}

func (m *InMemoryRecorder) IncUserCacheHit()    { atomic.AddUint64(&m.userCacheHits, 1) }
func (m *InMemoryRecorder) IncUserCacheMiss()   { atomic.AddUint64(&m.userCacheMisses, 1) }
func (m *InMemoryRecorder) IncCacheWriteError() { atomic.AddUint64(&m.cacheWriteErrors, 1) }
func (m *InMemoryRecorder) IncUserCreated()     { atomic.AddUint64(&m.usersCreated, 1) }
func (m *InMemoryRecorder) IncUserUpdated()     { atomic.AddUint64(&m.usersUpdated, 1) }
func (m *InMemoryRecorder) IncUserDeleted()     { atomic.AddUint64(&m.usersDeleted, 1) }
func (m *InMemoryRecorder) IncTokenIssued()     { atomic.AddUint64(&m.tokensIssued, 1) }
func (m *InMemoryRecorder) IncLoginFailed()     { atomic.AddUint64(&m.loginsFailed, 1) }
