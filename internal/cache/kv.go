package cache

// KV is the remote view of the cache: the storage operations with failures
// reported as errors. Implementations must be safe for concurrent use by
// multiple goroutines.
type KV interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	PutIfAbsent(key string, value []byte) error
	Set(key string, value []byte) error
	Delete(key string) error
}
