package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fincore/internal/core"
	"fincore/internal/notify"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores notifications in a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertIfAbsent implements notify.Store. The primary key on id makes the
// insert atomic; an existing row is left untouched.
func (r *SQLiteRepository) InsertIfAbsent(ctx context.Context, n core.Notification) (bool, error) {
	meta, err := json.Marshal(n.Metadata)
	if err != nil {
		return false, fmt.Errorf("encode metadata: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO notifications (id, type, severity, is_read, title, message, deep_link, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, string(n.Type), string(n.Severity), boolToInt(n.Read),
		n.Title, n.Message, n.DeepLink, string(meta), n.CreatedAt.UnixNano())
	if err != nil {
		return false, fmt.Errorf("insert notification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert notification rows: %w", err)
	}

	if affected > 0 {
		slog.DebugContext(ctx, "Notification saved to SQLite", "id", n.ID, "type", n.Type)
	}
	return affected > 0, nil
}

// List returns all notifications, newest first.
func (r *SQLiteRepository) List(ctx context.Context) ([]core.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, severity, is_read, title, message, deep_link, metadata, created_at
		 FROM notifications ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []core.Notification
	for rows.Next() {
		var (
			n         core.Notification
			typ, sev  string
			read      int64
			meta      string
			createdAt int64
		)
		if err := rows.Scan(&n.ID, &typ, &sev, &read, &n.Title, &n.Message, &n.DeepLink, &meta, &createdAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Type = core.NotificationType(typ)
		n.Severity = core.Severity(sev)
		n.Read = read != 0
		n.CreatedAt = time.Unix(0, createdAt).UTC()
		if err := json.Unmarshal([]byte(meta), &n.Metadata); err != nil {
			slog.WarnContext(ctx, "Invalid notification metadata", "id", n.ID, "error", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags a notification as read.
func (r *SQLiteRepository) MarkRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("notification %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// Prune enforces retention: rows older than notify.RetentionAge go first,
// then everything beyond the newest notify.RetentionRecords.
func (r *SQLiteRepository) Prune(ctx context.Context, now time.Time) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin prune: %w", err)
	}
	defer tx.Rollback()

	cutoff := now.Add(-notify.RetentionAge).UnixNano()
	aged, err := tx.ExecContext(ctx, `DELETE FROM notifications WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune by age: %w", err)
	}
	excess, err := tx.ExecContext(ctx,
		`DELETE FROM notifications WHERE id NOT IN (
			SELECT id FROM notifications ORDER BY created_at DESC, id ASC LIMIT ?
		)`, notify.RetentionRecords)
	if err != nil {
		return 0, fmt.Errorf("prune by count: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune: %w", err)
	}

	a, _ := aged.RowsAffected()
	e, _ := excess.RowsAffected()
	removed := int(a + e)
	if removed > 0 {
		slog.InfoContext(ctx, "Pruned notifications", "removed", removed)
	}
	return removed, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ notify.Store = (*SQLiteRepository)(nil)
