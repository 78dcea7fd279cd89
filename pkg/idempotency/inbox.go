// Package idempotency provides the inbox pattern for exactly-once handling
// of print requests: a request replayed by the broker renders once, and the
// stored result is returned for the duplicates.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Status is the processing state of an inbox entry.
type Status string

const (
	StatusStarted     Status = "STARTED"
	StatusFinished    Status = "FINISHED"
	StatusRecoverable Status = "RECOVERABLE"
)

// Entry is one inbox record.
type Entry struct {
	Key       string
	Handler   string
	Status    Status
	Payload   json.RawMessage
	Result    json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt *time.Time
}

// Config tunes the inbox.
type Config struct {
	// TTL is how long finished entries are kept for dedupe.
	TTL time.Duration
	// RecoveryTimeout is when a STARTED entry is considered abandoned.
	RecoveryTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TTL:             7 * 24 * time.Hour,
		RecoveryTimeout: 5 * time.Minute,
	}
}

// ErrInProgress indicates another worker holds the entry.
var ErrInProgress = errors.New("request in progress by another worker")

// ErrDuplicate indicates the request was already handled.
var ErrDuplicate = errors.New("duplicate request: already processed")

// HandlerFunc runs the deduplicated work.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)

// Outcome reports how Process resolved a request.
type Outcome struct {
	// Fresh is false when the stored result of an earlier run was returned.
	Fresh  bool
	Result json.RawMessage
}

// Inbox manages idempotent request handling on Postgres.
type Inbox struct {
	pool   *pgxpool.Pool
	config Config
	logger *zap.Logger
	tracer trace.Tracer
}

// NewInbox creates an inbox.
func NewInbox(pool *pgxpool.Pool, cfg Config, logger *zap.Logger) *Inbox {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inbox{
		pool:   pool,
		config: cfg,
		logger: logger,
		tracer: otel.Tracer("inbox"),
	}
}

// KeyFor derives the deterministic idempotency key for a print request.
func KeyFor(prescriptionID, periodStart, periodEnd string) string {
	data := strings.Join([]string{prescriptionID, periodStart, periodEnd}, "|")
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// Process runs fn at most once per key. A key seen before returns the
// stored result; a key abandoned mid-run past the recovery timeout is
// retried.
func (i *Inbox) Process(ctx context.Context, key, handler string, payload json.RawMessage, fn HandlerFunc) (*Outcome, error) {
	ctx, span := i.tracer.Start(ctx, "inbox_process",
		trace.WithAttributes(
			attribute.String("idempotency_key", key),
			attribute.String("handler", handler),
		))
	defer span.End()

	entry, err := i.getEntry(ctx, key)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check inbox: %w", err)
	}

	if entry != nil {
		switch entry.Status {
		case StatusFinished:
			span.SetAttributes(attribute.Bool("duplicate", true))
			return &Outcome{Fresh: false, Result: entry.Result}, nil
		case StatusStarted:
			if time.Since(entry.UpdatedAt) <= i.config.RecoveryTimeout {
				return nil, ErrInProgress
			}
			if err := i.markStatus(ctx, key, StatusRecoverable, nil, ""); err != nil {
				return nil, fmt.Errorf("mark recoverable: %w", err)
			}
		case StatusRecoverable:
			span.SetAttributes(attribute.Bool("recovered", true))
		}
	}

	if err := i.claim(ctx, key, handler, payload); err != nil {
		return nil, err
	}

	result, err := fn(ctx, payload)
	if err != nil {
		if merr := i.markStatus(ctx, key, StatusRecoverable, nil, err.Error()); merr != nil {
			i.logger.Error("mark recoverable failed", zap.Error(merr))
		}
		span.RecordError(err)
		return nil, err
	}

	if err := i.markStatus(ctx, key, StatusFinished, result, ""); err != nil {
		// The handler succeeded; losing the dedupe record only risks a
		// redundant rerender.
		i.logger.Error("mark finished failed", zap.Error(err))
	}

	return &Outcome{Fresh: true, Result: result}, nil
}

func (i *Inbox) getEntry(ctx context.Context, key string) (*Entry, error) {
	entry := &Entry{}
	err := i.pool.QueryRow(ctx, `
		SELECT idempotency_key, handler_name, status, payload, result, created_at, updated_at, expires_at
		FROM inbox
		WHERE idempotency_key = $1
	`, key).Scan(
		&entry.Key, &entry.Handler, &entry.Status,
		&entry.Payload, &entry.Result, &entry.CreatedAt, &entry.UpdatedAt, &entry.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// claim inserts or takes over the entry as STARTED. A conflict with an
// entry that is not recoverable means another run owns the key.
func (i *Inbox) claim(ctx context.Context, key, handler string, payload json.RawMessage) error {
	expiresAt := time.Now().Add(i.config.TTL)

	var returned string
	err := i.pool.QueryRow(ctx, `
		INSERT INTO inbox (idempotency_key, handler_name, status, payload, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (idempotency_key) DO UPDATE
		SET status = $3, updated_at = NOW()
		WHERE inbox.status = 'RECOVERABLE'
		RETURNING idempotency_key
	`, key, handler, StatusStarted, payload, expiresAt).Scan(&returned)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("claim inbox entry: %w", err)
	}
	return nil
}

func (i *Inbox) markStatus(ctx context.Context, key string, status Status, result json.RawMessage, errMsg string) error {
	if errMsg != "" && result == nil {
		result, _ = json.Marshal(map[string]string{"error": errMsg})
	}
	_, err := i.pool.Exec(ctx, `
		UPDATE inbox
		SET status = $1, result = $2, updated_at = NOW()
		WHERE idempotency_key = $3
	`, status, result, key)
	return err
}

// CleanupExpired removes entries past their TTL.
func (i *Inbox) CleanupExpired(ctx context.Context) (int64, error) {
	tag, err := i.pool.Exec(ctx, "DELETE FROM inbox WHERE expires_at IS NOT NULL AND expires_at < NOW()")
	if err != nil {
		return 0, fmt.Errorf("cleanup inbox: %w", err)
	}
	return tag.RowsAffected(), nil
}
