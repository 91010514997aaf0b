// Package store keeps recently used collections and viewer settings in SQLite.
package store

import (
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/justyntemme/liv/internal/debug"
)

type EventType int

const (
	FetchRecent EventType = iota
	AddRecent
	RemoveRecent
	FetchSettings
	SaveSetting
)

// Setting keys written by the viewer.
const (
	SettingSort    = "sort"
	SettingReverse = "reverse"
	SettingInfo    = "info"
)

// MaxRecent is the number of recent collections kept.
const MaxRecent = 20

type Request struct {
	Op    EventType
	Path  string
	Key   string
	Value string
}

type Response struct {
	Op       EventType
	Recent   []string          // most recent first
	Settings map[string]string // Key-value settings
	Err      error
}

type DB struct {
	conn         *sql.DB
	RequestChan  chan Request
	ResponseChan chan Response
}

func NewDB() *DB {
	return &DB{
		RequestChan:  make(chan Request, 10),
		ResponseChan: make(chan Response, 10),
	}
}

// DefaultPath returns ~/.config/liv/liv.db
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "liv", "liv.db")
}

// Open initializes the database connection and schema
func (d *DB) Open(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}

	// WAL mode allows simultaneous readers and writers
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return err
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return err
	}

	schema := []string{`
	CREATE TABLE IF NOT EXISTS recent_collections (
		path TEXT PRIMARY KEY,
		opened_at TEXT NOT NULL
	);`, `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`,
	}
	for _, q := range schema {
		if _, err := db.Exec(q); err != nil {
			db.Close()
			return err
		}
	}

	d.conn = db
	debug.Log(debug.STORE, "opened %s", dbPath)
	return nil
}

// Start serves requests until RequestChan is closed.
func (d *DB) Start() {
	for req := range d.RequestChan {
		switch req.Op {
		case FetchRecent:
			d.handleFetchRecent()
		case AddRecent:
			d.handleAddRecent(req.Path)
		case RemoveRecent:
			d.handleRemoveRecent(req.Path)
		case FetchSettings:
			d.handleFetchSettings()
		case SaveSetting:
			d.handleSaveSetting(req.Key, req.Value)
		}
	}
}

func (d *DB) handleFetchRecent() {
	rows, err := d.conn.Query("SELECT path FROM recent_collections ORDER BY opened_at DESC LIMIT ?", MaxRecent)
	if err != nil {
		d.ResponseChan <- Response{Op: FetchRecent, Err: err}
		return
	}
	defer rows.Close()

	var recent []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err == nil {
			recent = append(recent, path)
		}
	}

	d.ResponseChan <- Response{Op: FetchRecent, Recent: recent}
}

func (d *DB) handleAddRecent(path string) {
	// Nanosecond text timestamps keep the order of quick successive opens.
	now := time.Now().UTC().Format("2006-01-02T15:04:05.000000000Z")
	_, err := d.conn.Exec(`INSERT INTO recent_collections (path, opened_at) VALUES (?, ?)
		ON CONFLICT(path) DO UPDATE SET opened_at = excluded.opened_at`, path, now)
	if err != nil {
		log.Printf("Store Error: %v", err)
	}
	_, err = d.conn.Exec(`DELETE FROM recent_collections WHERE path NOT IN
		(SELECT path FROM recent_collections ORDER BY opened_at DESC LIMIT ?)`, MaxRecent)
	if err != nil {
		log.Printf("Store Error pruning recent collections: %v", err)
	}
	d.handleFetchRecent()
}

func (d *DB) handleRemoveRecent(path string) {
	_, err := d.conn.Exec("DELETE FROM recent_collections WHERE path = ?", path)
	if err != nil {
		log.Printf("Store Error: %v", err)
	}
	d.handleFetchRecent()
}

func (d *DB) handleFetchSettings() {
	rows, err := d.conn.Query("SELECT key, value FROM settings")
	if err != nil {
		d.ResponseChan <- Response{Op: FetchSettings, Err: err}
		return
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err == nil {
			settings[key] = value
		}
	}

	d.ResponseChan <- Response{Op: FetchSettings, Settings: settings}
}

func (d *DB) handleSaveSetting(key, value string) {
	_, err := d.conn.Exec("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value)
	if err != nil {
		log.Printf("Store Error saving setting: %v", err)
	}
	d.handleFetchSettings()
}

func (d *DB) Close() {
	if d.conn != nil {
		d.conn.Close()
	}
}
