// Package store persists scraped ads into per-city tables.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	scrapeerrors "sjsage522/rentalscraper/pkg/errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// sqliteDriver is go-sqlite3 with unicode_lower registered on every connection.
// SQLite's own lower() and NOCASE only fold ASCII, so Cyrillic links need it.
const sqliteDriver = "sqlite3_unicode"

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("unicode_lower", strings.ToLower, true)
		},
	})
}

const (
	// DefaultMaxOpenConns is the default maximum number of open connections
	DefaultMaxOpenConns = 5
	// DefaultConnMaxLifetime is the default maximum connection lifetime
	DefaultConnMaxLifetime = 5 * time.Minute
	// DefaultPingTimeout is the default timeout for ping operations
	DefaultPingTimeout = 5 * time.Second
)

// Ad is one stored advertisement row
type Ad struct {
	ID    int64  `db:"id" json:"id,omitempty"`
	Title string `db:"title" json:"title"`
	Price string `db:"price" json:"price"`
	Area  string `db:"area" json:"area"`
	Link  string `db:"link" json:"link"`
}

// Table is the name of a per-city ads table
type Table string

// Sink stores ads with insert-if-absent semantics keyed on the ad link
type Sink interface {
	// CreateTable idempotently creates the table for a city and returns its handle
	CreateTable(ctx context.Context, city string) (Table, error)

	// InsertIfAbsent stores ad unless a row with the same link exists.
	// inserted is false when the link was already stored.
	InsertIfAbsent(ctx context.Context, table Table, ad Ad) (inserted bool, err error)
}

// Config holds database configuration
type Config struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	Path     string
}

// SQLStore implements Sink on top of PostgreSQL or SQLite
type SQLStore struct {
	db *sqlx.DB
}

var _ Sink = (*SQLStore)(nil)

// New wraps an existing connection
func New(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Open connects to the configured database and verifies the connection
func Open(cfg Config) (*SQLStore, error) {
	var dsn string
	switch cfg.Driver {
	case "postgres":
		dsn = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
		)
	case "sqlite3":
		dsn = cfg.Path
	default:
		return nil, scrapeerrors.NewConfiguration(fmt.Sprintf("unsupported database driver %q", cfg.Driver), nil)
	}

	driver := cfg.Driver
	if driver == "sqlite3" {
		driver = sqliteDriver
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, scrapeerrors.NewStorage("store", "failed to open database", err)
	}
	// keep the dialect name so Rebind and schema selection still see sqlite3
	db := sqlx.NewDb(sqlDB, cfg.Driver)

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)
	if cfg.Driver == "sqlite3" {
		// single writer
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultPingTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		db.Close()
		return nil, scrapeerrors.NewStorage("store", "failed to ping database", pingErr)
	}

	return New(db), nil
}

// Close closes the underlying connection pool
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// TableName derives the table for a city: ads_<city> with spaces and dashes as underscores
func TableName(city string) (Table, error) {
	city = strings.TrimSpace(strings.ToLower(city))
	if city == "" {
		return "", scrapeerrors.NewValidation("store", "city name cannot be empty")
	}
	name := strings.NewReplacer(" ", "_", "-", "_").Replace(city)
	if strings.ContainsAny(name, `"';`) {
		return "", scrapeerrors.NewValidation("store", fmt.Sprintf("invalid table name %q", name))
	}
	return Table("ads_" + name), nil
}

func (t Table) quoted() string {
	return pq.QuoteIdentifier(string(t))
}

// CreateTable idempotently creates the city table with a case-insensitive unique link
func (s *SQLStore) CreateTable(ctx context.Context, city string) (Table, error) {
	table, err := TableName(city)
	if err != nil {
		return "", err
	}

	for _, stmt := range s.schema(table) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return "", scrapeerrors.NewStorage("store", fmt.Sprintf("failed to create table %s", table), err)
		}
	}

	return table, nil
}

func (s *SQLStore) schema(table Table) []string {
	if s.db.DriverName() == "sqlite3" {
		return []string{`
			CREATE TABLE IF NOT EXISTS ` + table.quoted() + ` (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				title TEXT,
				price TEXT,
				area TEXT,
				link TEXT NOT NULL
			)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS ` + pq.QuoteIdentifier(string(table)+"_link_key") +
				` ON ` + table.quoted() + ` (unicode_lower(link))`,
		}
	}

	return []string{`
		CREATE TABLE IF NOT EXISTS ` + table.quoted() + ` (
			id SERIAL PRIMARY KEY,
			title TEXT,
			price TEXT,
			area TEXT,
			link TEXT NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ` + pq.QuoteIdentifier(string(table)+"_link_key") +
			` ON ` + table.quoted() + ` (lower(link))`,
	}
}

// InsertIfAbsent stores ad, silently ignoring a conflict on the link
func (s *SQLStore) InsertIfAbsent(ctx context.Context, table Table, ad Ad) (bool, error) {
	var query string
	if s.db.DriverName() == "sqlite3" {
		query = `INSERT OR IGNORE INTO ` + table.quoted() + ` (title, price, area, link) VALUES (?, ?, ?, ?)`
	} else {
		query = `INSERT INTO ` + table.quoted() + ` (title, price, area, link) VALUES (?, ?, ?, ?) ON CONFLICT DO NOTHING`
	}

	result, err := s.db.ExecContext(ctx, s.db.Rebind(query), ad.Title, ad.Price, ad.Area, ad.Link)
	if err != nil {
		return false, scrapeerrors.NewStorage("store", fmt.Sprintf("failed to insert ad into %s", table), err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, scrapeerrors.NewStorage("store", "failed to read affected rows", err)
	}

	return affected > 0, nil
}

// ListAds returns all rows of a table ordered by id
func (s *SQLStore) ListAds(ctx context.Context, table Table) ([]Ad, error) {
	var ads []Ad
	query := `SELECT id, title, price, area, link FROM ` + table.quoted() + ` ORDER BY id`
	if err := s.db.SelectContext(ctx, &ads, query); err != nil {
		return nil, scrapeerrors.NewStorage("store", fmt.Sprintf("failed to list ads from %s", table), err)
	}
	return ads, nil
}
