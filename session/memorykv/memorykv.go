// Package memorykv is the in-memory session.KV backing, used by tests and
// environments without durable local storage.
package memorykv

import (
	"sync"

	"github.com/jrsteele09/go-nav-router/session"
)

var _ session.KV = (*KV)(nil)

type KV struct {
	values map[string][]byte
	lock   sync.RWMutex
}

func New() *KV {
	return &KV{values: make(map[string][]byte)}
}

func (kv *KV) Get(key string) ([]byte, bool, error) {
	kv.lock.RLock()
	defer kv.lock.RUnlock()

	value, ok := kv.values[key]
	if !ok {
		return nil, false, nil
	}
	copied := make([]byte, len(value))
	copy(copied, value)
	return copied, true, nil
}

func (kv *KV) Set(key string, value []byte) error {
	kv.lock.Lock()
	defer kv.lock.Unlock()

	copied := make([]byte, len(value))
	copy(copied, value)
	kv.values[key] = copied
	return nil
}

func (kv *KV) Delete(key string) error {
	kv.lock.Lock()
	defer kv.lock.Unlock()

	delete(kv.values, key)
	return nil
}
