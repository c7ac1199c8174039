// Package feedbacksql is the SQLite implementation of the feedback store.
package feedbacksql

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kailas-cloud/feedex/internal/domain"
	"github.com/kailas-cloud/feedex/internal/domain/classification"
	domfb "github.com/kailas-cloud/feedex/internal/domain/feedback"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const themeSeparator = ","

// Store keeps feedback items in a single SQLite table.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies pending migrations.
// Pass ":memory:" for an in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// A single connection keeps ":memory:" databases shared and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA journal_mode=WAL"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		version, err := strconv.Atoi(strings.SplitN(name, "_", 2)[0])
		if err != nil {
			return fmt.Errorf("invalid migration filename %q: %w", name, err)
		}

		var applied int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&applied); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if applied > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}
	return nil
}

// EnsureIndex exists for parity with the Redis store; migrations own the schema.
func (s *Store) EnsureIndex(context.Context) error { return nil }

// Create inserts an item and returns it with its assigned id.
func (s *Store) Create(ctx context.Context, it domfb.Item) (domfb.Item, error) {
	return create(ctx, s.db, it)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func create(ctx context.Context, ex execer, it domfb.Item) (domfb.Item, error) {
	st := it.State()
	var sentiment, urgency, themes sql.NullString
	var score sql.NullFloat64
	if st.Processed {
		sentiment = sql.NullString{String: string(st.Sentiment), Valid: true}
		urgency = sql.NullString{String: string(st.Urgency), Valid: true}
		themes = sql.NullString{String: strings.Join(st.Themes, themeSeparator), Valid: true}
		score = sql.NullFloat64{Float64: st.Score, Valid: true}
	}
	res, err := ex.ExecContext(ctx,
		`INSERT INTO feedback (source, content, author, created_at, attachment_ref, processed,
			sentiment, score, urgency, themes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.Source, st.Content, st.Author, st.CreatedAt.UnixMilli(), st.AttachmentRef,
		boolInt(st.Processed), sentiment, score, urgency, themes,
	)
	if err != nil {
		return domfb.Item{}, fmt.Errorf("inserting feedback: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domfb.Item{}, fmt.Errorf("reading inserted id: %w", err)
	}
	return it.WithID(id), nil
}

const selectColumns = `SELECT id, source, content, author, created_at, attachment_ref, processed,
	sentiment, score, urgency, themes FROM feedback`

// Get returns an item by id, or domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (domfb.Item, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domfb.Item{}, domain.ErrNotFound
	}
	if err != nil {
		return domfb.Item{}, fmt.Errorf("getting feedback %d: %w", id, err)
	}
	return it, nil
}

// SaveClassification writes labels and processed=1 in one statement.
func (s *Store) SaveClassification(ctx context.Context, id int64, r classification.Result) error {
	r = r.Normalize()
	res, err := s.db.ExecContext(ctx,
		`UPDATE feedback SET sentiment = ?, score = ?, urgency = ?, themes = ?, processed = 1 WHERE id = ?`,
		string(r.Sentiment), r.Score, string(r.Urgency), strings.Join(r.Themes, themeSeparator), id,
	)
	if err != nil {
		return fmt.Errorf("updating feedback %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating feedback %d: %w", id, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns a filtered page ordered by id.
func (s *Store) List(ctx context.Context, f domfb.Filter) (domfb.Page, error) {
	var where []string
	var args []any
	if f.Source != "" {
		where, args = append(where, "source = ? COLLATE NOCASE"), append(args, f.Source)
	}
	if f.Sentiment != "" {
		where, args = append(where, "sentiment = ?"), append(args, string(f.Sentiment))
	}
	if f.Urgency != "" {
		where, args = append(where, "urgency = ?"), append(args, string(f.Urgency))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feedback"+clause, args...).Scan(&total); err != nil {
		return domfb.Page{}, fmt.Errorf("counting feedback: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	items, err := s.query(ctx, selectColumns+clause+" ORDER BY id LIMIT ? OFFSET ?",
		append(args, limit, f.Offset)...)
	if err != nil {
		return domfb.Page{}, err
	}
	return domfb.Page{Items: items, Total: total}, nil
}

// Unprocessed returns up to limit unprocessed items in id order.
func (s *Store) Unprocessed(ctx context.Context, limit int) ([]domfb.Item, error) {
	return s.query(ctx, selectColumns+" WHERE processed = 0 ORDER BY id LIMIT ?", limit)
}

// After returns up to limit items with id > afterID, in id order.
func (s *Store) After(ctx context.Context, afterID int64, limit int) ([]domfb.Item, error) {
	return s.query(ctx, selectColumns+" WHERE id > ? ORDER BY id LIMIT ?", afterID, limit)
}

// Replace swaps the whole corpus in one transaction. AUTOINCREMENT keeps old ids retired.
func (s *Store) Replace(ctx context.Context, items []domfb.Item) ([]domfb.Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning replace: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM feedback"); err != nil {
		return nil, fmt.Errorf("clearing feedback: %w", err)
	}
	out := make([]domfb.Item, 0, len(items))
	for _, it := range items {
		created, err := create(ctx, tx, it)
		if err != nil {
			return nil, err
		}
		out = append(out, created)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing replace: %w", err)
	}
	return out, nil
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]domfb.Item, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying feedback: %w", err)
	}
	defer rows.Close()

	var items []domfb.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning feedback: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(sc scanner) (domfb.Item, error) {
	var (
		st        domfb.State
		createdAt int64
		processed int
		sentiment sql.NullString
		score     sql.NullFloat64
		urgency   sql.NullString
		themes    sql.NullString
	)
	if err := sc.Scan(&st.ID, &st.Source, &st.Content, &st.Author, &createdAt, &st.AttachmentRef,
		&processed, &sentiment, &score, &urgency, &themes); err != nil {
		return domfb.Item{}, err
	}
	st.CreatedAt = time.UnixMilli(createdAt).UTC()
	st.Processed = processed == 1
	st.Sentiment = classification.Sentiment(sentiment.String)
	st.Score = score.Float64
	st.Urgency = classification.Urgency(urgency.String)
	if themes.String != "" {
		st.Themes = strings.Split(themes.String, themeSeparator)
	}
	return domfb.Reconstruct(st), nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
