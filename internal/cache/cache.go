package cache

import (
	"errors"

	"github.com/leonardcser/kvcache/internal/storage"
)

var (
	ErrNotFound  = errors.New("cache: not found")
	ErrExists    = errors.New("cache: already exists")
	ErrTooLarge  = errors.New("cache: entry exceeds capacity")
	ErrBusy      = errors.New("server: too many connections")
	ErrUnknownOp = errors.New("unknown op")
)

var wireErrors = map[string]error{
	ErrNotFound.Error():  ErrNotFound,
	ErrExists.Error():    ErrExists,
	ErrTooLarge.Error():  ErrTooLarge,
	ErrBusy.Error():      ErrBusy,
	ErrUnknownOp.Error(): ErrUnknownOp,
}

// ErrorFromWire maps an error string received from the daemon back to its
// sentinel, so callers can use errors.Is.
func ErrorFromWire(msg string) error {
	if err, ok := wireErrors[msg]; ok {
		return err
	}
	return errors.New(msg)
}

// Fail builds a failed response carrying err.
func Fail(err error) Response { return Response{OK: false, Error: err.Error()} }

// Execute applies req to store and reports the outcome in wire form.
// A write the store refuses is classified by whether the key was present, so
// a missing key reports ErrNotFound and an existing one ErrExists before any
// size failure. The caller must hold whatever lock serializes access to store.
func Execute(store storage.Storage, req Request) Response {
	switch req.Op {
	case OpGet:
		v, ok := store.Get(req.Key)
		if !ok {
			return Fail(ErrNotFound)
		}
		return Response{OK: true, Value: v}
	case OpPut:
		if !store.Put(req.Key, req.Value) {
			return Fail(ErrTooLarge)
		}
	case OpPutIfAbsent:
		if !store.PutIfAbsent(req.Key, req.Value) {
			if contains(store, req.Key) {
				return Fail(ErrExists)
			}
			return Fail(ErrTooLarge)
		}
	case OpSet:
		if !store.Set(req.Key, req.Value) {
			if !contains(store, req.Key) {
				return Fail(ErrNotFound)
			}
			return Fail(ErrTooLarge)
		}
	case OpDelete:
		if !store.Delete(req.Key) {
			return Fail(ErrNotFound)
		}
	default:
		return Fail(ErrUnknownOp)
	}
	return Response{OK: true}
}

// contains reports whether key is stored. Get leaves recency untouched.
func contains(store storage.Storage, key string) bool {
	_, ok := store.Get(key)
	return ok
}
