package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"solarwise/core/tariff"
	"solarwise/core/types"
	"solarwise/internal/errors"
	"solarwise/internal/logging"
)

// SQLiteStore persists tariff schedules to a SQLite database
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenSQLite opens (or creates) the SQLite database and runs migrations
func OpenSQLite(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Storage("open sqlite", err)
	}
	// one connection serialises writers and keeps in-memory databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Storage("set WAL mode", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, errors.Storage("enable foreign keys", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("tariff store opened", zap.String("path", path))
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tariff_snapshots (
			id                  TEXT PRIMARY KEY,
			category            TEXT NOT NULL,
			version             TEXT NOT NULL,
			effective_from      TEXT NOT NULL,
			effective_to        TEXT,
			currency            TEXT NOT NULL,
			fixed_charge_policy TEXT NOT NULL,
			fingerprint         TEXT NOT NULL,
			source              TEXT,
			imported_at         INTEGER NOT NULL,
			is_active           INTEGER NOT NULL DEFAULT 0,
			UNIQUE (category, version)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_active ON tariff_snapshots(is_active, category)`,

		`CREATE TABLE IF NOT EXISTS tariff_blocks (
			snapshot_id  TEXT NOT NULL REFERENCES tariff_snapshots(id) ON DELETE CASCADE,
			regime       TEXT NOT NULL,
			regime_order INTEGER NOT NULL,
			block_number INTEGER NOT NULL,
			min_units    TEXT NOT NULL,
			max_units    TEXT,
			rate         TEXT NOT NULL,
			fixed_charge TEXT NOT NULL,
			PRIMARY KEY (snapshot_id, regime_order, block_number)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return errors.Storage("migrate tariff store", err)
		}
	}
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const snapshotColumns = `id, category, version, fingerprint, source, imported_at, is_active`

// SaveSchedule stores a schedule and all its blocks in one transaction
func (s *SQLiteStore) SaveSchedule(ctx context.Context, sched *tariff.Schedule, source string) (*Snapshot, error) {
	if err := sched.Validate(); err != nil {
		return nil, err
	}
	fingerprint := sched.Fingerprint()

	existing, err := s.findByKey(ctx, sched.Category, sched.Version)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Fingerprint == fingerprint {
			return existing, nil
		}
		return nil, errors.Newf(errors.TypeStorage,
			"schedule %s is already stored with different content; publish a new version instead", sched.Key()).
			WithContext("fingerprint", existing.Fingerprint)
	}

	snap := &Snapshot{
		ID:          uuid.New(),
		Category:    sched.Category,
		Version:     sched.Version,
		Fingerprint: fingerprint,
		Source:      source,
		ImportedAt:  time.Now().UTC().Truncate(time.Second),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Storage("begin transaction", err)
	}
	defer tx.Rollback()

	var effectiveTo sql.NullString
	if sched.EffectiveTo != nil {
		effectiveTo = sql.NullString{String: sched.EffectiveTo.Format(time.RFC3339Nano), Valid: true}
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO tariff_snapshots
		(id, category, version, effective_from, effective_to, currency, fixed_charge_policy,
		 fingerprint, source, imported_at, is_active)
		VALUES (?,?,?,?,?,?,?,?,?,?,0)`,
		snap.ID.String(), string(sched.Category), sched.Version,
		sched.EffectiveFrom.Format(time.RFC3339Nano), effectiveTo,
		string(sched.Currency), string(sched.FixedCharges),
		fingerprint, source, snap.ImportedAt.Unix(),
	)
	if err != nil {
		return nil, errors.Storage("insert snapshot", err)
	}

	for order, regime := range sched.Regimes {
		for _, b := range regime.Blocks {
			var maxUnits sql.NullString
			if b.MaxUnits != nil {
				maxUnits = sql.NullString{String: b.MaxUnits.Decimal().String(), Valid: true}
			}
			_, err := tx.ExecContext(ctx, `INSERT INTO tariff_blocks
				(snapshot_id, regime, regime_order, block_number, min_units, max_units, rate, fixed_charge)
				VALUES (?,?,?,?,?,?,?,?)`,
				snap.ID.String(), regime.Name, order, b.Number,
				b.MinUnits.Decimal().String(), maxUnits,
				b.Rate.Decimal().String(), b.FixedCharge.Decimal().String(),
			)
			if err != nil {
				return nil, errors.Storage("insert block", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Storage("commit schedule", err)
	}

	s.logger.Info("stored tariff schedule",
		logging.Schedule(sched.Key()),
		logging.SnapshotID(snap.ID),
		zap.String("fingerprint", fingerprint))
	return snap, nil
}

// Activate marks a snapshot active
func (s *SQLiteStore) Activate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, `UPDATE tariff_snapshots SET is_active = 1 WHERE id = ?`, "snapshot", id.String(), id.String())
}

// Deactivate marks a category's version inactive
func (s *SQLiteStore) Deactivate(ctx context.Context, category tariff.Category, version string) error {
	return s.setActive(ctx, `UPDATE tariff_snapshots SET is_active = 0 WHERE category = ? AND version = ?`,
		"schedule", string(category)+"@"+version, string(category), version)
}

func (s *SQLiteStore) setActive(ctx context.Context, query, resource, id string, args ...interface{}) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Storage("update snapshot", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Storage("update snapshot", err)
	}
	if n == 0 {
		return errors.NotFound(resource, id)
	}
	return nil
}

// ListSnapshots lists snapshots ordered by category and import time
func (s *SQLiteStore) ListSnapshots(ctx context.Context, category tariff.Category) ([]*Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM tariff_snapshots`
	var args []interface{}
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, string(category))
	}
	query += ` ORDER BY category, imported_at, version`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Storage("list snapshots", err)
	}
	defer rows.Close()

	var snaps []*Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("list snapshots", err)
	}
	return snaps, nil
}

func (s *SQLiteStore) findByKey(ctx context.Context, category tariff.Category, version string) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM tariff_snapshots WHERE category = ? AND version = ?`,
		string(category), version)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return snap, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(row scanner) (*Snapshot, error) {
	var (
		snap       Snapshot
		id         string
		category   string
		source     sql.NullString
		importedAt int64
		active     int
	)
	if err := row.Scan(&id, &category, &snap.Version, &snap.Fingerprint, &source, &importedAt, &active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Storage("scan snapshot", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.Storage("parse snapshot id", err)
	}
	snap.ID = parsed
	snap.Category = tariff.Category(category)
	snap.Source = source.String
	snap.ImportedAt = time.Unix(importedAt, 0).UTC()
	snap.IsActive = active != 0
	return &snap, nil
}

// LoadSchedule reads one stored schedule
func (s *SQLiteStore) LoadSchedule(ctx context.Context, id uuid.UUID) (*tariff.Schedule, error) {
	scheds, err := s.loadWhere(ctx, `id = ?`, id.String())
	if err != nil {
		return nil, err
	}
	if len(scheds) == 0 {
		return nil, errors.NotFound("snapshot", id.String())
	}
	return scheds[0], nil
}

// LoadActive reads every active schedule
func (s *SQLiteStore) LoadActive(ctx context.Context) ([]*tariff.Schedule, error) {
	return s.loadWhere(ctx, `is_active = 1`)
}

func (s *SQLiteStore) loadWhere(ctx context.Context, where string, args ...interface{}) ([]*tariff.Schedule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, category, version, effective_from, effective_to,
		currency, fixed_charge_policy FROM tariff_snapshots WHERE `+where+` ORDER BY category, version`, args...)
	if err != nil {
		return nil, errors.Storage("query schedules", err)
	}

	var (
		ids    []string
		scheds []*tariff.Schedule
	)
	for rows.Next() {
		var (
			id, category, version, from, currency, policy string
			to                                            sql.NullString
		)
		if err := rows.Scan(&id, &category, &version, &from, &to, &currency, &policy); err != nil {
			rows.Close()
			return nil, errors.Storage("scan schedule", err)
		}
		sched := &tariff.Schedule{
			Category:     tariff.Category(category),
			Version:      version,
			Currency:     types.Currency(currency),
			FixedCharges: tariff.FixedChargePolicy(policy),
		}
		if sched.EffectiveFrom, err = time.Parse(time.RFC3339Nano, from); err != nil {
			rows.Close()
			return nil, errors.Storage("parse effective_from", err)
		}
		if to.Valid {
			t, err := time.Parse(time.RFC3339Nano, to.String)
			if err != nil {
				rows.Close()
				return nil, errors.Storage("parse effective_to", err)
			}
			sched.EffectiveTo = &t
		}
		ids = append(ids, id)
		scheds = append(scheds, sched)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, errors.Storage("query schedules", err)
	}

	// blocks are read after the snapshot cursor is closed; the pool has one connection
	for i, sched := range scheds {
		if err := s.loadBlocks(ctx, ids[i], sched); err != nil {
			return nil, err
		}
		if err := sched.Validate(); err != nil {
			return nil, errors.Wrapf(errors.TypeStorage, err, "stored schedule %s is invalid", sched.Key())
		}
	}
	return scheds, nil
}

func (s *SQLiteStore) loadBlocks(ctx context.Context, id string, sched *tariff.Schedule) error {
	rows, err := s.db.QueryContext(ctx, `SELECT regime, regime_order, block_number, min_units, max_units, rate, fixed_charge
		FROM tariff_blocks WHERE snapshot_id = ? ORDER BY regime_order, block_number`, id)
	if err != nil {
		return errors.Storage("query blocks", err)
	}
	defer rows.Close()

	lastOrder := -1
	for rows.Next() {
		var (
			regime                      string
			order, number               int
			minUnits, rate, fixedCharge string
			maxUnits                    sql.NullString
		)
		if err := rows.Scan(&regime, &order, &number, &minUnits, &maxUnits, &rate, &fixedCharge); err != nil {
			return errors.Storage("scan block", err)
		}
		if order != lastOrder {
			sched.Regimes = append(sched.Regimes, tariff.Regime{Name: regime})
			lastOrder = order
		}

		b := tariff.Block{Number: number}
		var d decimal.Decimal
		if d, err = decimal.NewFromString(minUnits); err != nil {
			return errors.Storage("parse min_units", err)
		}
		b.MinUnits = types.NewUnits(d)
		if maxUnits.Valid {
			if d, err = decimal.NewFromString(maxUnits.String); err != nil {
				return errors.Storage("parse max_units", err)
			}
			u := types.NewUnits(d)
			b.MaxUnits = &u
		}
		if d, err = decimal.NewFromString(rate); err != nil {
			return errors.Storage("parse rate", err)
		}
		b.Rate = types.NewAmount(d)
		if d, err = decimal.NewFromString(fixedCharge); err != nil {
			return errors.Storage("parse fixed_charge", err)
		}
		b.FixedCharge = types.NewAmount(d)

		r := &sched.Regimes[len(sched.Regimes)-1]
		r.Blocks = append(r.Blocks, b)
	}
	if err := rows.Err(); err != nil {
		return errors.Storage("query blocks", err)
	}
	return nil
}
