// Package filekv is a file-backed session.KV for native targets that need
// records to survive a process restart. The whole key space is one JSON
// file, rewritten atomically on every mutation via temp-file rename.
package filekv

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-nav-router/session"
	"github.com/pkg/errors"
)

var _ session.KV = (*KV)(nil)

type KV struct {
	path string
	lock sync.Mutex
}

func New(path string) (*KV, error) {
	if path == "" {
		return nil, errors.New("[filekv.New] path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "[filekv.New] mkdir")
	}
	return &KV{path: path}, nil
}

func (kv *KV) Get(key string) ([]byte, bool, error) {
	kv.lock.Lock()
	defer kv.lock.Unlock()

	values, err := kv.load()
	if err != nil {
		return nil, false, err
	}
	raw, ok := values[key]
	if !ok {
		return nil, false, nil
	}
	return raw, true, nil
}

func (kv *KV) Set(key string, value []byte) error {
	kv.lock.Lock()
	defer kv.lock.Unlock()

	values, err := kv.load()
	if err != nil {
		return err
	}
	values[key] = json.RawMessage(value)
	return kv.flush(values)
}

func (kv *KV) Delete(key string) error {
	kv.lock.Lock()
	defer kv.lock.Unlock()

	values, err := kv.load()
	if err != nil {
		return err
	}
	delete(values, key)
	return kv.flush(values)
}

func (kv *KV) load() (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(kv.path)
	if os.IsNotExist(err) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[filekv.load] read")
	}
	values := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &values); err != nil {
		// A corrupt store reads as empty; the session layer treats
		// missing records as defaults anyway.
		return map[string]json.RawMessage{}, nil
	}
	return values, nil
}

func (kv *KV) flush(values map[string]json.RawMessage) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return errors.Wrap(err, "[filekv.flush] marshal")
	}
	tmp, err := os.CreateTemp(filepath.Dir(kv.path), ".kv-*")
	if err != nil {
		return errors.Wrap(err, "[filekv.flush] temp file")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "[filekv.flush] write")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "[filekv.flush] close")
	}
	if err := os.Rename(tmpName, kv.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "[filekv.flush] rename")
	}
	return nil
}
