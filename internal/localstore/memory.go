package localstore

import (
	"context"
	"sync"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

// Memory is an in-process Store used by tests and by ephemeral deployments
// that do not want an on-disk database. A single mutex makes record+index
// updates atomic from the caller's point of view.
type Memory struct {
	mu      sync.RWMutex
	values  map[string][]byte
	failSet bool
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

// FailWrites makes every write return an error, simulating a full or
// corrupted local store.
func (m *Memory) FailWrites(fail bool) {
	m.mu.Lock()
	m.failSet = fail
	m.mu.Unlock()
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)

	return out, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSet {
		return errors.New("local store write failed")
	}
	m.values[key] = append([]byte(nil), value...)

	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSet {
		return errors.New("local store write failed")
	}
	delete(m.values, key)

	return nil
}

func (m *Memory) Index(_ context.Context, indexKey string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.indexLocked(indexKey)
}

func (m *Memory) PutRecord(_ context.Context, key string, value []byte, indexKey, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSet {
		return errors.New("local store write failed")
	}

	m.values[key] = append([]byte(nil), value...)
	if indexKey == "" {
		return nil
	}

	ids, err := m.indexLocked(indexKey)
	if err != nil {
		return err
	}
	return m.writeIndexLocked(indexKey, appendID(ids, id))
}

func (m *Memory) DeleteRecord(_ context.Context, key string, indexKey, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSet {
		return errors.New("local store write failed")
	}

	delete(m.values, key)
	if indexKey == "" {
		return nil
	}

	ids, err := m.indexLocked(indexKey)
	if err != nil {
		return err
	}
	return m.writeIndexLocked(indexKey, removeID(ids, id))
}

func (m *Memory) Close() error { return nil }

func (m *Memory) indexLocked(indexKey string) ([]string, error) {
	raw, ok := m.values[indexKey]
	if !ok || len(raw) == 0 {
		return nil, nil
	}

	var ids []string
	if err := sonic.Unmarshal(raw, &ids); err != nil {
		return nil, errors.Wrapf(err, "decode index %s", indexKey)
	}
	return ids, nil
}

func (m *Memory) writeIndexLocked(indexKey string, ids []string) error {
	raw, err := sonic.Marshal(ids)
	if err != nil {
		return errors.Wrapf(err, "encode index %s", indexKey)
	}
	m.values[indexKey] = raw
	return nil
}
