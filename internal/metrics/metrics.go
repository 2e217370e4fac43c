// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Cache-aside read path
	IncUserCacheHit()
	IncUserCacheMiss()
	// Cache mutations that failed and were absorbed
	IncCacheWriteError()

	// User management
	IncUserCreated()
	IncUserUpdated()
	IncUserDeleted()

	// Authentication
	IncTokenIssued()
	IncLoginFailed()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
