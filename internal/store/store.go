// Package store indexes hook events and their summaries in SQLite.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormLogger forwards GORM messages to zerolog
type gormLogger struct {
	level logger.LogLevel
}

// LogMode sets the log level
func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &gormLogger{level: level}
}

// Info logs info messages
func (l *gormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Info {
		log.Info().Msgf(msg, data...)
	}
}

// Warn logs warn messages
func (l *gormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Warn {
		log.Warn().Msgf(msg, data...)
	}
}

// Error logs error messages
func (l *gormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Error {
		log.Error().Msgf(msg, data...)
	}
}

// Trace logs SQL queries - only in debug mode
func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level < logger.Info {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		log.Error().Err(err).Dur("duration", elapsed).Str("sql", sql).Int64("rows", rows).Msg("gorm query error")
	case elapsed > 200*time.Millisecond:
		log.Warn().Dur("duration", elapsed).Str("sql", sql).Int64("rows", rows).Msg("slow query")
	default:
		log.Debug().Dur("duration", elapsed).Str("sql", sql).Int64("rows", rows).Msg("gorm query")
	}
}

// newGormLogger logs queries only when debug logging is enabled.
func newGormLogger() logger.Interface {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		return (&gormLogger{}).LogMode(logger.Info)
	}
	return (&gormLogger{}).LogMode(logger.Silent)
}

// Store is the SQLite event index. Several hook processes may write at once;
// WAL mode and a busy timeout serialize them.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// Record describes an event to index.
type Record struct {
	SessionID string
	SourceApp string
	EventType string
	Payload   json.RawMessage
	Summary   string
	Time      time.Time
}

// Counts summarizes the index.
type Counts struct {
	Total      int64
	Summarized int64
}

// Open opens or creates the database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	db.Exec("PRAGMA synchronous=NORMAL")

	if err := db.AutoMigrate(&Event{}); err != nil {
		if !strings.Contains(err.Error(), "already exists") {
			return nil, fmt.Errorf("failed to migrate events schema: %w", err)
		}
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Add indexes an event and returns its generated id.
func (s *Store) Add(ctx context.Context, rec Record) (string, error) {
	ts := rec.Time
	if ts.IsZero() {
		ts = s.now()
	}
	payload := rec.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}

	event := Event{
		ID:            uuid.New().String(),
		SessionID:     rec.SessionID,
		SourceApp:     rec.SourceApp,
		HookEventType: rec.EventType,
		Payload:       string(payload),
		Timestamp:     ts.UnixMilli(),
	}
	if rec.Summary != "" {
		summary := rec.Summary
		event.Summary = &summary
	}

	err := withRetry(func() error {
		return s.db.WithContext(ctx).Create(&event).Error
	}, 3)
	if err != nil {
		return "", fmt.Errorf("failed to add event: %w", err)
	}
	return event.ID, nil
}

// SetSummary attaches a summary to an indexed event.
func (s *Store) SetSummary(ctx context.Context, id, summary string) error {
	return withRetry(func() error {
		result := s.db.WithContext(ctx).Model(&Event{}).Where("id = ?", id).Update("summary", summary)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("event %s not found", id)
		}
		return nil
	}, 3)
}

// Recent returns up to limit events, newest first. With summarizedOnly set,
// events without a summary are skipped.
func (s *Store) Recent(ctx context.Context, limit int, summarizedOnly bool) ([]Event, error) {
	var events []Event
	q := s.db.WithContext(ctx).Order("timestamp DESC").Limit(limit)
	if summarizedOnly {
		q = q.Where("summary IS NOT NULL")
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// Session returns a session's events in chronological order. A positive
// limit keeps only the most recent ones.
func (s *Store) Session(ctx context.Context, sessionID string, limit int) ([]Event, error) {
	var events []Event
	q := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("timestamp DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list session events: %w", err)
	}
	slices.Reverse(events)
	return events, nil
}

// Counts returns totals for the index.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	db := s.db.WithContext(ctx).Model(&Event{})
	if err := db.Count(&c.Total).Error; err != nil {
		return c, fmt.Errorf("failed to count events: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&Event{}).Where("summary IS NOT NULL").Count(&c.Summarized).Error; err != nil {
		return c, fmt.Errorf("failed to count summaries: %w", err)
	}
	return c, nil
}

// Prune deletes events older than maxAge and returns how many were removed.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := s.now().Add(-maxAge).UnixMilli()
	var removed int64
	err := withRetry(func() error {
		result := s.db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&Event{})
		removed = result.RowsAffected
		return result.Error
	}, 3)
	if err != nil {
		return 0, fmt.Errorf("failed to prune events: %w", err)
	}
	return removed, nil
}

// withRetry retries operations on SQLITE_BUSY with a linear backoff
func withRetry(fn func() error, maxRetries int) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		err = fn()
		if err == nil {
			return nil
		}

		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && (sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked) {
			time.Sleep(time.Millisecond * time.Duration(50*(i+1)))
			continue
		}

		return err
	}
	return fmt.Errorf("operation failed after %d retries: %w", maxRetries, err)
}
