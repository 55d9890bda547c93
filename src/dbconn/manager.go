package dbconn

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ollamadesk/ollamadesk/src/kvstore"
)

const (
	connectionsKey = "db_connections"
	activeKey      = "active_db_connection"
)

// Manager is the connection registry. It is an explicit service object:
// construct one at startup and pass it to whatever needs connections.
// Mutations persist to the key-value store immediately.
type Manager struct {
	store    kvstore.Store
	logger   *slog.Logger
	validate *validator.Validate

	mu       sync.Mutex
	conns    map[string]*Connection
	activeID string
}

// NewManager loads existing connections from the store. A corrupt or missing
// payload starts empty rather than failing; connections are recreatable
// client-local state.
func NewManager(store kvstore.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		store:    store,
		logger:   logger.With("component", "dbconn"),
		validate: validator.New(),
		conns:    map[string]*Connection{},
	}
	m.load()
	return m
}

func (m *Manager) load() {
	raw, err := m.store.Get(connectionsKey)
	if err != nil {
		return
	}

	var conns []*Connection
	if err := json.Unmarshal([]byte(raw), &conns); err != nil {
		m.logger.Warn("discarding unreadable connections payload", "error", err)
		return
	}
	for _, c := range conns {
		m.conns[c.ID] = c
	}

	if active, err := m.store.Get(activeKey); err == nil {
		if _, ok := m.conns[active]; ok {
			m.activeID = active
		}
	}
}

func (m *Manager) saveLocked() error {
	conns := make([]*Connection, 0, len(m.conns))
	for _, c := range m.conns {
		conns = append(conns, c)
	}
	data, err := json.Marshal(conns)
	if err != nil {
		return err
	}
	if err := m.store.Set(connectionsKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist connections: %w", err)
	}

	if m.activeID != "" {
		return m.store.Set(activeKey, m.activeID)
	}
	return m.store.Delete(activeKey)
}

// Add registers a new connection. ID and CreatedAt are assigned here.
func (m *Manager) Add(conn Connection) (*Connection, error) {
	if err := m.validate.Struct(conn); err != nil {
		return nil, fmt.Errorf("invalid connection: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	conn.ID = uuid.New().String()
	conn.CreatedAt = time.Now()
	m.conns[conn.ID] = &conn

	if err := m.saveLocked(); err != nil {
		delete(m.conns, conn.ID)
		return nil, err
	}

	m.logger.Info("connection added", "id", conn.ID, "type", conn.Type)
	return &conn, nil
}

// Update replaces the mutable fields of an existing connection. ID and
// CreatedAt are preserved.
func (m *Manager) Update(id string, updated Connection) (*Connection, error) {
	if err := m.validate.Struct(updated); err != nil {
		return nil, fmt.Errorf("invalid connection: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.conns[id]
	if !ok {
		return nil, ErrConnectionNotFound
	}

	updated.ID = id
	updated.CreatedAt = existing.CreatedAt
	m.conns[id] = &updated

	if err := m.saveLocked(); err != nil {
		m.conns[id] = existing
		return nil, err
	}

	m.logger.Info("connection updated", "id", id)
	return &updated, nil
}

// Delete removes a connection. Deleting the active connection clears the
// active pointer.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.conns[id]; !ok {
		return ErrConnectionNotFound
	}
	delete(m.conns, id)
	if m.activeID == id {
		m.activeID = ""
	}

	if err := m.saveLocked(); err != nil {
		return err
	}
	m.logger.Info("connection deleted", "id", id)
	return nil
}

// Get returns a connection by id.
func (m *Manager) Get(id string) (*Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn, ok := m.conns[id]
	if !ok {
		return nil, ErrConnectionNotFound
	}
	c := *conn
	return &c, nil
}

// List returns all configured connections with IsActive reflecting the
// current active pointer.
func (m *Manager) List() []Connection {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Connection, 0, len(m.conns))
	for _, c := range m.conns {
		copied := *c
		copied.IsActive = c.ID == m.activeID
		out = append(out, copied)
	}
	return out
}

// SetActive points the active connection at an existing id. Activation is a
// pointer swap, not a data copy.
func (m *Manager) SetActive(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.conns[id]; !ok {
		return ErrConnectionNotFound
	}
	m.activeID = id

	if err := m.saveLocked(); err != nil {
		return err
	}
	m.logger.Info("active connection set", "id", id)
	return nil
}

// Active returns the currently active connection, or ErrNotConfigured.
func (m *Manager) Active() (*Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.activeID == "" {
		return nil, ErrNotConfigured
	}
	conn, ok := m.conns[m.activeID]
	if !ok {
		return nil, ErrNotConfigured
	}
	c := *conn
	c.IsActive = true
	return &c, nil
}
