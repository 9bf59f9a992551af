package remote

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-memory Client used by tests and by deployments that run
// without a remote store configured. Connectivity and failures are
// injectable so the storage and sync layers can be exercised offline.
type Memory struct {
	mu        sync.Mutex
	connected bool
	connErr   error
	failErr   error
	docs      map[string]Document

	now func() int64
}

func NewMemory() *Memory {
	return &Memory{
		connected: true,
		docs:      make(map[string]Document),
		now:       func() int64 { return time.Now().UnixMilli() },
	}
}

// SetConnected flips the simulated link. Disconnecting also records a
// connection error so ConnectionError has something to report.
func (m *Memory) SetConnected(connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connected = connected
	if connected {
		m.connErr = nil
	} else {
		m.connErr = ErrUnavailable
	}
}

// FailWith makes every data call return err until cleared with nil.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

// SetClock overrides the timestamp source used for tombstones.
func (m *Memory) SetClock(now func() int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Doc exposes the raw stored document for test assertions.
func (m *Memory) Doc(kind, id string) (Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[kind+":"+id]
	return doc, ok
}

func (m *Memory) Connect(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return m.connErr
	}
	return nil
}

func (m *Memory) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *Memory) ConnectionError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connErr
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	return nil
}

func (m *Memory) Get(_ context.Context, kind, id string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.guard(); err != nil {
		return Document{}, err
	}

	doc, ok := m.docs[kind+":"+id]
	if !ok || doc.Deleted {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

func (m *Memory) GetByGame(_ context.Context, kind, gameID string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.guard(); err != nil {
		return Document{}, err
	}

	for _, doc := range m.docs {
		if doc.Kind == kind && doc.GameID == gameID && !doc.Deleted {
			return doc, nil
		}
	}
	return Document{}, ErrNotFound
}

func (m *Memory) ListByTeam(_ context.Context, kind, teamID string) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.guard(); err != nil {
		return nil, err
	}

	var out []Document
	for _, doc := range m.docs {
		if doc.Kind == kind && doc.TeamID == teamID && !doc.Deleted {
			out = append(out, doc)
		}
	}
	sortDocs(out)
	return out, nil
}

func (m *Memory) ListKind(_ context.Context, kind string) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.guard(); err != nil {
		return nil, err
	}

	var out []Document
	for _, doc := range m.docs {
		if doc.Kind == kind && !doc.Deleted {
			out = append(out, doc)
		}
	}
	sortDocs(out)
	return out, nil
}

func (m *Memory) ListKindWithDeleted(_ context.Context, kind string) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.guard(); err != nil {
		return nil, err
	}

	var out []Document
	for _, doc := range m.docs {
		if doc.Kind == kind {
			out = append(out, doc)
		}
	}
	sortDocs(out)
	return out, nil
}

func (m *Memory) ListByTeamWithDeleted(_ context.Context, kind, teamID string) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.guard(); err != nil {
		return nil, err
	}

	var out []Document
	for _, doc := range m.docs {
		if doc.Kind == kind && doc.TeamID == teamID {
			out = append(out, doc)
		}
	}
	sortDocs(out)
	return out, nil
}

func (m *Memory) Put(_ context.Context, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.guard(); err != nil {
		return err
	}

	doc.Deleted = false
	m.docs[doc.Kind+":"+doc.ID] = doc
	return nil
}

func (m *Memory) Delete(_ context.Context, kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.guard(); err != nil {
		return err
	}

	doc, ok := m.docs[kind+":"+id]
	if !ok {
		doc = Document{Kind: kind, ID: id}
	}
	doc.Deleted = true
	doc.UpdatedAt = m.now()
	m.docs[kind+":"+id] = doc
	return nil
}

// guard is called with the mutex held.
func (m *Memory) guard() error {
	if m.failErr != nil {
		return m.failErr
	}
	if !m.connected {
		return ErrUnavailable
	}
	return nil
}

func sortDocs(docs []Document) {
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
}
