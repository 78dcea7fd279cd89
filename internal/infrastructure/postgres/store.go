// Package postgres provides the PostgreSQL persistence layer: the
// prescription store the engine reads from, the rendered-snapshot store and
// the transactional outbox used to publish snapshots reliably.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/vitalcare/rxgrid/internal/domain/prescription"
	"github.com/vitalcare/rxgrid/internal/schedule"
)

// ErrNotFound indicates the requested prescription does not exist.
var ErrNotFound = errors.New("prescription not found")

// Store loads prescriptions and persists rendered grid snapshots.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewStore creates a store.
func NewStore(pool *pgxpool.Pool, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{pool: pool, logger: logger}
}

// Prescription loads a prescription with its patient, payers and items.
func (s *Store) Prescription(ctx context.Context, id string) (*prescription.Prescription, error) {
	p := &prescription.Prescription{ID: id}

	var birthDate *time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT p.patient_name, p.birth_date, COALESCE(p.billing_client, '')
		FROM prescriptions p
		WHERE p.id = $1
	`, id).Scan(&p.Patient.Name, &birthDate, &p.BillingClient)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load prescription %s: %w", id, err)
	}
	p.Patient.BirthDate = birthDate

	if p.Payers, err = s.payers(ctx, id); err != nil {
		return nil, err
	}
	if p.Items, err = s.Items(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) payers(ctx context.Context, prescriptionID string) ([]prescription.Payer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT payer_name, is_primary
		FROM patient_payers
		WHERE prescription_id = $1
		ORDER BY is_primary DESC, payer_name
	`, prescriptionID)
	if err != nil {
		return nil, fmt.Errorf("load payers: %w", err)
	}
	defer rows.Close()

	var payers []prescription.Payer
	for rows.Next() {
		var payer prescription.Payer
		if err := rows.Scan(&payer.Name, &payer.Primary); err != nil {
			return nil, fmt.Errorf("scan payer: %w", err)
		}
		payers = append(payers, payer)
	}
	return payers, rows.Err()
}

// Items loads the prescription's lines. The frequency columns come out of
// the database in their loose encodings (comma-separated time_checks, brace
// or JSON week_days); they are normalized here so the engine only ever sees
// canonical values.
func (s *Store) Items(ctx context.Context, prescriptionID string) ([]prescription.Item, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT i.id, i.item_type, i.is_active, i.is_prn,
		       COALESCE(i.frequency_mode, ''), COALESCE(i.interval_minutes, 0),
		       COALESCE(i.time_start, ''), COALESCE(i.time_checks, ''),
		       COALESCE(i.times_value, 0), COALESCE(i.times_unit, ''),
		       COALESCE(i.week_days, ''), i.start_date, i.end_date,
		       COALESCE(i.display_name, ''), COALESCE(i.route, ''),
		       COALESCE(i.instructions, ''), i.product, i.components
		FROM prescription_items i
		WHERE i.prescription_id = $1
		ORDER BY i.position, i.id
	`, prescriptionID)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	defer rows.Close()

	var items []prescription.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanItem(row pgx.Row) (prescription.Item, error) {
	var (
		it                     prescription.Item
		mode                   string
		timeChecks, weekDays   string
		startDate, endDate     *time.Time
		productJSON, compsJSON []byte
	)
	err := row.Scan(
		&it.ID, &it.ItemType, &it.Active, &it.AsNeeded,
		&mode, &it.Frequency.IntervalMinutes,
		&it.Frequency.TimeStart, &timeChecks,
		&it.Frequency.TimesValue, &it.Frequency.TimesUnit,
		&weekDays, &startDate, &endDate,
		&it.DisplayName, &it.Route,
		&it.Instructions, &productJSON, &compsJSON,
	)
	if err != nil {
		return it, fmt.Errorf("scan item: %w", err)
	}

	it.Frequency.Mode = prescription.Mode(mode)
	it.Frequency.TimeChecks = schedule.ParseTimeChecks(timeChecks)
	it.WeekDays = schedule.ParseWeekDays(weekDays)
	it.StartDate = startDate
	it.EndDate = endDate

	if len(productJSON) > 0 {
		var p prescription.Product
		if err := json.Unmarshal(productJSON, &p); err == nil {
			it.Product = &p
		}
	}
	if len(compsJSON) > 0 {
		// Best effort: malformed component data degrades to none.
		_ = json.Unmarshal(compsJSON, &it.Components)
	}
	return it, nil
}

// SaveSnapshot persists a rendered grid document and, in the same
// transaction, writes the outbox entry that publishes it downstream.
func (s *Store) SaveSnapshot(ctx context.Context, prescriptionID string, document []byte, topic string) (string, error) {
	snapshotID := uuid.New().String()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO grid_snapshots (id, prescription_id, document, created_at)
		VALUES ($1, $2, $3, NOW())
	`, snapshotID, prescriptionID, document)
	if err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}

	entry := &OutboxEntry{
		AggregateID:   prescriptionID,
		AggregateType: "GridSnapshot",
		EventType:     "GridSnapshotRendered",
		Payload:       document,
		Topic:         topic,
		Key:           prescriptionID,
	}
	if err := WriteEntry(ctx, tx, entry); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	s.logger.Debug("snapshot saved",
		zap.String("snapshot_id", snapshotID),
		zap.String("prescription_id", prescriptionID))
	return snapshotID, nil
}
