// Package store keeps an append-only audit log of negotiation exchanges in
// SQLite. It is purely observational: handlers never read it to answer a
// request, so the service stays stateless per request and runs fine with the
// store disabled.
package store

import (
	"database/sql"
	"log"
	"math/rand"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

type Store struct {
	conn *sql.DB
}

// Exchange is one logged negotiation turn.
type Exchange struct {
	ID            string
	ProductName   string
	OriginalPrice float64
	OfferedPrice  *float64
	Step          int
	DealStatus    string
	Language      string
	CreatedAt     time.Time
}

// Init opens the SQLite database, applies WAL mode, and runs migrations.
func Init(path string) *Store {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		log.Fatalf("store: failed to open: %v", err)
	}
	if err := conn.Ping(); err != nil {
		log.Fatalf("store: failed to ping: %v", err)
	}

	// Limit concurrent writers to avoid SQLITE_BUSY beyond the busy_timeout.
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn}
	s.migrate()
	log.Println("store: ready")
	return s
}

func (s *Store) migrate() {
	stmt := `CREATE TABLE IF NOT EXISTS exchanges (
id             TEXT PRIMARY KEY,
product_name   TEXT NOT NULL,
original_price REAL NOT NULL,
offered_price  REAL,
step           INTEGER NOT NULL,
deal_status    TEXT NOT NULL DEFAULT '',
language       TEXT NOT NULL DEFAULT 'English',
created_at     DATETIME DEFAULT CURRENT_TIMESTAMP
)`
	if _, err := s.conn.Exec(stmt); err != nil {
		log.Fatalf("store: migration failed: %v", err)
	}
}

func (s *Store) Close() error { return s.conn.Close() }

// RecordExchange appends one exchange row. An empty ID gets a fresh ULID.
func (s *Store) RecordExchange(e *Exchange) error {
	if e.ID == "" {
		e.ID = newID()
	}
	_, err := s.conn.Exec(
		`INSERT INTO exchanges(id, product_name, original_price, offered_price, step, deal_status, language)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ProductName, e.OriginalPrice, e.OfferedPrice, e.Step, e.DealStatus, e.Language,
	)
	return err
}

// RecentExchanges returns the last n exchanges, oldest first.
func (s *Store) RecentExchanges(limit int) ([]Exchange, error) {
	rows, err := s.conn.Query(
		`SELECT id, product_name, original_price, offered_price, step, deal_status, language, created_at
		 FROM exchanges
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Exchange
	for rows.Next() {
		var e Exchange
		var offered sql.NullFloat64
		if err := rows.Scan(&e.ID, &e.ProductName, &e.OriginalPrice, &offered, &e.Step, &e.DealStatus, &e.Language, &e.CreatedAt); err != nil {
			return nil, err
		}
		if offered.Valid {
			v := offered.Float64
			e.OfferedPrice = &v
		}
		out = append(out, e)
	}

	// Reverse to get chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, rows.Err()
}

func newID() string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
