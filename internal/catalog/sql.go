package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lehigh-university-libraries/bookcatalog/internal/models"
	_ "modernc.org/sqlite"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"

	defaultSQLitePath = "data/catalog.sqlite3"
)

// SQLStore keeps the catalog in SQLite or PostgreSQL.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// Open returns the store for driver. dsn is a file path for sqlite and a
// connection string for pgx; it is ignored for memory.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch strings.ToLower(driver) {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return openSQLite(ctx, dsn)
	case DriverPostgres, "postgres":
		return openPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported catalog driver: %s", driver)
	}
}

func openSQLite(ctx context.Context, path string) (*SQLStore, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultSQLitePath
	}

	dsn := path
	if path != ":memory:" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		dsn = absPath
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return newSQLStore(ctx, db, DriverSQLite)
}

func openPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("catalog.dsn is required for the pgx driver")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return newSQLStore(ctx, db, DriverPostgres)
}

func newSQLStore(ctx context.Context, db *sql.DB, driver string) (*SQLStore, error) {
	s := &SQLStore{db: db, driver: driver}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS books (
		isbn TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		author TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		added_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("migrate books table: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}

func (s *SQLStore) List(ctx context.Context) ([]models.Book, error) {
	return s.query(ctx, `SELECT isbn, name, author, category, added_at FROM books ORDER BY name, isbn`)
}

func (s *SQLStore) Get(ctx context.Context, isbn string) (models.Book, error) {
	books, err := s.query(ctx, s.rebind(`SELECT isbn, name, author, category, added_at FROM books WHERE isbn = ?`), isbn)
	if err != nil {
		return models.Book{}, err
	}
	if len(books) == 0 {
		return models.Book{}, ErrNotFound
	}
	return books[0], nil
}

func (s *SQLStore) Add(ctx context.Context, book models.Book) error {
	if book.AddedAt.IsZero() {
		book.AddedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO books (isbn, name, author, category, added_at)
		VALUES (?, ?, ?, ?, ?) ON CONFLICT (isbn) DO NOTHING`),
		book.ISBN, book.Name, book.Author, book.Category, book.AddedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert book %s: %w", book.ISBN, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert book %s: %w", book.ISBN, err)
	}
	if n == 0 {
		return ErrDuplicate
	}
	return nil
}

func (s *SQLStore) Remove(ctx context.Context, isbn string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM books WHERE isbn = ?`), isbn)
	if err != nil {
		return fmt.Errorf("delete book %s: %w", isbn, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete book %s: %w", isbn, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Search(ctx context.Context, c models.SearchCriteria) ([]models.Book, error) {
	query := `SELECT isbn, name, author, category, added_at FROM books WHERE 1=1`
	var args []any
	if v := strings.TrimSpace(c.AuthorName); v != "" {
		query += ` AND LOWER(author) LIKE ? ESCAPE '\'`
		args = append(args, likePattern(v))
	}
	if v := strings.TrimSpace(c.BookName); v != "" {
		query += ` AND LOWER(name) LIKE ? ESCAPE '\'`
		args = append(args, likePattern(v))
	}
	query += ` ORDER BY name, isbn`
	return s.query(ctx, s.rebind(query), args...)
}

func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLStore) query(ctx context.Context, query string, args ...any) ([]models.Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		var (
			b       models.Book
			addedAt string
		)
		if err := rows.Scan(&b.ISBN, &b.Name, &b.Author, &b.Category, &addedAt); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, addedAt); err == nil {
			b.AddedAt = t
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

func likePattern(v string) string {
	v = strings.ToLower(v)
	v = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(v)
	return "%" + v + "%"
}
