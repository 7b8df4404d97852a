package storage

// DefaultMaxSize is the capacity used when NewSimpleLRU is given a non-positive size.
const DefaultMaxSize = 1024

const (
	headIdx = 0 // sentinel before the most recently used entry
	tailIdx = 1 // sentinel after the least recently used entry
)

type entry struct {
	key   string
	value []byte
	prev  int
	next  int
}

func (e *entry) size() int { return len(e.key) + len(e.value) }

// SimpleLRU is a byte-bounded cache that evicts least recently used entries.
//
// The budget covers len(key)+len(value) summed over every stored entry.
// Entries live in an arena and link to each other by slot index; the index
// maps keys to the same slots. Insert, Put and Set move an entry to the front,
// Get does not.
//
// SimpleLRU is NOT safe for concurrent use. Callers sharing one instance
// between goroutines must serialize every call with a single lock.
type SimpleLRU struct {
	maxSize   int
	curSize   int
	evictions uint64

	nodes []entry
	free  []int
	index map[string]int
}

var _ Storage = (*SimpleLRU)(nil)

// NewSimpleLRU returns an empty store holding at most maxSize bytes.
func NewSimpleLRU(maxSize int) *SimpleLRU {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	l := &SimpleLRU{maxSize: maxSize}
	l.Reset()
	return l
}

// Reset drops every entry. Capacity and the eviction counter are kept.
func (l *SimpleLRU) Reset() {
	l.nodes = make([]entry, 2, 16)
	l.nodes[headIdx] = entry{prev: -1, next: tailIdx}
	l.nodes[tailIdx] = entry{prev: headIdx, next: -1}
	l.free = l.free[:0]
	l.index = make(map[string]int)
	l.curSize = 0
}

func (l *SimpleLRU) Put(key string, value []byte) bool {
	if idx, ok := l.index[key]; ok {
		return l.update(idx, value)
	}
	return l.insert(key, value)
}

func (l *SimpleLRU) PutIfAbsent(key string, value []byte) bool {
	if _, ok := l.index[key]; ok {
		return false
	}
	return l.insert(key, value)
}

func (l *SimpleLRU) Set(key string, value []byte) bool {
	idx, ok := l.index[key]
	if !ok {
		return false
	}
	return l.update(idx, value)
}

func (l *SimpleLRU) Delete(key string) bool {
	idx, ok := l.index[key]
	if !ok {
		return false
	}
	l.remove(idx)
	return true
}

func (l *SimpleLRU) Get(key string) ([]byte, bool) {
	idx, ok := l.index[key]
	if !ok {
		return nil, false
	}
	return cloneBytes(l.nodes[idx].value), true
}

// Len returns the number of stored entries.
func (l *SimpleLRU) Len() int { return len(l.index) }

// Size returns the number of bytes currently accounted against the budget.
func (l *SimpleLRU) Size() int { return l.curSize }

// Capacity returns the byte budget fixed at construction.
func (l *SimpleLRU) Capacity() int { return l.maxSize }

// Keys returns the stored keys from most to least recently used.
func (l *SimpleLRU) Keys() []string {
	out := make([]string, 0, len(l.index))
	for i := l.nodes[headIdx].next; i != tailIdx; i = l.nodes[i].next {
		out = append(out, l.nodes[i].key)
	}
	return out
}

func (l *SimpleLRU) Stats() Stats {
	return Stats{
		Entries:   len(l.index),
		Size:      l.curSize,
		Capacity:  l.maxSize,
		Evictions: l.evictions,
	}
}

func (l *SimpleLRU) insert(key string, value []byte) bool {
	if !l.makeRoom(len(key) + len(value)) {
		return false
	}
	idx := l.alloc(key, cloneBytes(value))
	l.pushFront(idx)
	l.index[key] = idx
	l.curSize += l.nodes[idx].size()
	return true
}

// update replaces the value in slot idx. The entry itself is never evicted:
// its old size is released first, and once every other entry is gone the
// remaining budget always covers a size that passed the capacity check.
func (l *SimpleLRU) update(idx int, value []byte) bool {
	n := &l.nodes[idx]
	needed := len(n.key) + len(value)
	if needed > l.maxSize {
		return false
	}

	l.unlink(idx)
	l.pushFront(idx)
	l.curSize -= l.nodes[idx].size()
	l.makeRoom(needed)

	l.nodes[idx].value = cloneBytes(value)
	l.curSize += needed
	return true
}

// makeRoom evicts from the back of the list until needed more bytes fit.
func (l *SimpleLRU) makeRoom(needed int) bool {
	if needed > l.maxSize {
		return false
	}
	for l.curSize+needed > l.maxSize {
		victim := l.nodes[tailIdx].prev
		if victim == headIdx {
			return false
		}
		l.remove(victim)
		l.evictions++
	}
	return true
}

func (l *SimpleLRU) remove(idx int) {
	l.unlink(idx)
	delete(l.index, l.nodes[idx].key)
	l.curSize -= l.nodes[idx].size()
	l.nodes[idx] = entry{}
	l.free = append(l.free, idx)
}

func (l *SimpleLRU) alloc(key string, value []byte) int {
	if n := len(l.free); n > 0 {
		idx := l.free[n-1]
		l.free = l.free[:n-1]
		l.nodes[idx] = entry{key: key, value: value}
		return idx
	}
	l.nodes = append(l.nodes, entry{key: key, value: value})
	return len(l.nodes) - 1
}

func (l *SimpleLRU) unlink(idx int) {
	n := &l.nodes[idx]
	l.nodes[n.prev].next = n.next
	l.nodes[n.next].prev = n.prev
	n.prev, n.next = -1, -1
}

func (l *SimpleLRU) pushFront(idx int) {
	first := l.nodes[headIdx].next
	l.nodes[idx].prev = headIdx
	l.nodes[idx].next = first
	l.nodes[first].prev = idx
	l.nodes[headIdx].next = idx
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
