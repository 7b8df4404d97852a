package cache

// Simple JSON protocol for the cache daemon over a Unix or TCP socket.
// Requests and responses are newline-delimited JSON objects; a connection
// carries any number of request/response pairs.

// Operation names understood by the daemon.
const (
	OpGet         = "get"
	OpPut         = "put"
	OpPutIfAbsent = "putifabsent"
	OpSet         = "set"
	OpDelete      = "delete"
)

type Request struct {
	Op    string `json:"op"`
	Key   string `json:"key"`
	Value []byte `json:"value,omitempty"`
}

type Response struct {
	OK    bool   `json:"ok"`
	Value []byte `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}
