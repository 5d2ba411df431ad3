package repository

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// Database owns the single SQLite handle for the process. Restore swaps
// the handle under the lock; repositories go through Conn for every query.
type Database struct {
	mu   sync.RWMutex
	path string
	db   *sql.DB
}

// Open opens (or creates) the database file, applies pragmas and runs
// table creation, column migration and index creation.
func Open(path string) (*Database, error) {
	db, err := open(path)
	if err != nil {
		return nil, err
	}
	return &Database{path: path, db: db}, nil
}

func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(db *sql.DB) error {
	if err := createTables(db); err != nil {
		return err
	}
	if err := migrateColumns(db); err != nil {
		return err
	}
	return createIndexes(db)
}

func createTables(db *sql.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			product_code TEXT UNIQUE,
			name TEXT,
			category TEXT,
			base_number TEXT,
			weight REAL,
			quantity INTEGER,
			purity TEXT,
			image TEXT,
			thumb TEXT,
			notes TEXT,
			created_at TEXT,
			sold_invoice TEXT,
			sold_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS bases (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			category TEXT,
			base_number TEXT,
			image TEXT,
			thumb TEXT,
			UNIQUE(category, base_number)
		)`,
		`CREATE TABLE IF NOT EXISTS activity_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			related_id TEXT,
			related_type TEXT,
			old_status TEXT,
			new_status TEXT,
			changed_by TEXT,
			note TEXT,
			at TEXT
		)`,
	}
	for _, stmt := range tables {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrateColumns adds columns introduced after the first schema version to
// databases created before them.
func migrateColumns(db *sql.DB) error {
	cols := map[string]bool{}
	rows, err := db.Query(`PRAGMA table_info(products)`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, typ string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk); err != nil {
			return err
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, col := range []string{"product_code", "created_at", "sold_invoice", "sold_at"} {
		if cols[col] {
			continue
		}
		if _, err := db.Exec(fmt.Sprintf("ALTER TABLE products ADD COLUMN %s TEXT", col)); err != nil {
			return err
		}
	}
	return nil
}

func createIndexes(db *sql.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_name ON products(name)",
		"CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)",
		"CREATE INDEX IF NOT EXISTS idx_products_base_number ON products(base_number)",
		"CREATE INDEX IF NOT EXISTS idx_products_product_code ON products(product_code)",
		"CREATE INDEX IF NOT EXISTS idx_products_sold_invoice ON products(sold_invoice)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_products_sold_at ON products(sold_at)",
		"CREATE INDEX IF NOT EXISTS idx_bases_category_number ON bases(category, base_number)",
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Conn returns the live handle.
func (d *Database) Conn() *sql.DB {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db
}

func (d *Database) Path() string { return d.path }

func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// Reopen re-opens the database file after a restore, re-running migration.
func (d *Database) Reopen() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db != nil {
		d.db.Close()
		d.db = nil
	}
	db, err := open(d.path)
	if err != nil {
		return err
	}
	d.db = db
	return nil
}
