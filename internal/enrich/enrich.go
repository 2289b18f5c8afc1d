// Package enrich gives stdlib functions a DSN-keyed database/sql
// connection manager, adapted from the teacher's
// internal/database/db_manager.go into the event-transformation
// domain: a lookup result comes back as a value.Object ready to merge
// into the event under transformation.
package enrich

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	pkgerrors "github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/relaypipe/remap/internal/value"
)

// Manager holds the named connections available to enrich_lookup.
// Connections are opened once (typically from configuration at
// startup) and reused across many lookups.
type Manager struct {
	mu    sync.RWMutex
	conns map[string]*sql.DB
}

// NewManager builds an empty connection manager.
func NewManager() *Manager {
	return &Manager{conns: make(map[string]*sql.DB)}
}

// driverFor maps a short, host-facing database type name to its
// registered database/sql driver name.
func driverFor(dbType string) (string, error) {
	switch dbType {
	case "sqlite", "sqlite3":
		return "sqlite", nil
	case "postgres", "postgresql":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	case "mssql", "sqlserver":
		return "sqlserver", nil
	default:
		return "", fmt.Errorf("unsupported database type %q", dbType)
	}
}

// Connect opens and registers a connection under name. Calling Connect
// again with the same name replaces the existing connection.
func (m *Manager) Connect(name, dbType, dsn string) error {
	driver, err := driverFor(dbType)
	if err != nil {
		return err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return pkgerrors.Wrapf(err, "enrich: open %s connection %q", dbType, name)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return pkgerrors.Wrapf(err, "enrich: ping %s connection %q", dbType, name)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	m.mu.Lock()
	defer m.mu.Unlock()
	if old, exists := m.conns[name]; exists {
		old.Close()
	}
	m.conns[name] = db
	return nil
}

// Close closes and forgets the named connection.
func (m *Manager) Close(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	db, ok := m.conns[name]
	if !ok {
		return fmt.Errorf("enrich: connection %q not found", name)
	}
	delete(m.conns, name)
	return db.Close()
}

func (m *Manager) get(name string) (*sql.DB, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	db, ok := m.conns[name]
	if !ok {
		return nil, fmt.Errorf("enrich: connection %q not found", name)
	}
	return db, nil
}

// Lookup runs query against the named connection and returns the
// first row as a value.Object, ready to be merged into an event via
// value.Merge. Reports ok=false if the query returned no rows.
func (m *Manager) Lookup(name, query string, args ...interface{}) (value.Object, bool, error) {
	db, err := m.get(name)
	if err != nil {
		return nil, false, err
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, false, pkgerrors.Wrap(err, "enrich: query failed")
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, false, err
	}

	if !rows.Next() {
		return nil, false, rows.Err()
	}

	scanTargets := make([]interface{}, len(columns))
	scanValues := make([]interface{}, len(columns))
	for i := range columns {
		scanTargets[i] = &scanValues[i]
	}
	if err := rows.Scan(scanTargets...); err != nil {
		return nil, false, err
	}

	out := make(value.Object, len(columns))
	for i, col := range columns {
		out[col] = toValue(scanValues[i])
	}
	return out, true, nil
}

// toValue coerces a database/sql scan result into the interpreter's
// tagged Value representation.
func toValue(v interface{}) value.Value {
	switch vv := v.(type) {
	case nil:
		return nil
	case []byte:
		out := make([]byte, len(vv))
		copy(out, vv)
		return out
	case string:
		return []byte(vv)
	case int64:
		return vv
	case float64:
		return vv
	case bool:
		return vv
	case time.Time:
		return vv
	default:
		return []byte(fmt.Sprintf("%v", vv))
	}
}
