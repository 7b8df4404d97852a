// Package storage holds the key-value engines backing the cache daemon.
package storage

// Storage is the operation set the network server drives.
// Failures are reported through the boolean result only.
type Storage interface {
	// Put inserts or replaces the value for key.
	// It fails only when the entry can never fit in the store.
	Put(key string, value []byte) bool

	// PutIfAbsent inserts key only if it is not already stored.
	PutIfAbsent(key string, value []byte) bool

	// Set replaces the value of an existing key. It never creates entries.
	Set(key string, value []byte) bool

	// Delete removes key.
	Delete(key string) bool

	// Get returns a copy of the value stored for key.
	Get(key string) ([]byte, bool)
}

// Stats is a point-in-time snapshot of a store.
type Stats struct {
	Entries   int
	Size      int
	Capacity  int
	Evictions uint64
}

// StatsReporter is implemented by stores that can describe their occupancy.
type StatsReporter interface {
	Stats() Stats
}
