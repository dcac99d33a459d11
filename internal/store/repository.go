// Package store persists canonical activities and holdings in PostgreSQL.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"

	"github.com/portwatch/reconciler/internal/domain"
	"github.com/portwatch/reconciler/internal/syncer"
)

// Repository defines persistent storage for the reconciliation state.
type Repository interface {
	ListActivities(ctx context.Context, accounts []string) ([]domain.Activity, error)
	ListHoldings(ctx context.Context) ([]*domain.Holding, error)
	// CommitRun applies one run's changeset and the full current holding set
	// in a single transaction, so a partial write is never visible.
	CommitRun(ctx context.Context, cs syncer.Changeset, holdings []*domain.Holding) error
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const activityColumns = `id, account, transaction_id, kind, date, sorting_priority,
	description, identifiers, holding_id, currency, quantity, unit_price, amount,
	total_amount, fees, taxes`

func (r *PgRepository) ListActivities(ctx context.Context, accounts []string) ([]domain.Activity, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE account = ANY($1) ORDER BY date, transaction_id`,
		accounts)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		var row activityRow
		if err := rows.Scan(&row.ID, &row.Account, &row.TransactionID, &row.Kind,
			&row.Date, &row.SortingPriority, &row.Description, &row.Identifiers,
			&row.HoldingID, &row.Currency, &row.Quantity, &row.UnitPrice,
			&row.Amount, &row.TotalAmount, &row.Fees, &row.Taxes); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		act, err := decodeActivity(row)
		if err != nil {
			return nil, err
		}
		activities = append(activities, act)
	}
	return activities, rows.Err()
}

func (r *PgRepository) ListHoldings(ctx context.Context) ([]*domain.Holding, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, identifiers, profiles FROM holdings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing holdings: %w", err)
	}
	defer rows.Close()

	var holdings []*domain.Holding
	for rows.Next() {
		var (
			h                     domain.Holding
			identifiers, profiles []byte
		)
		if err := rows.Scan(&h.ID, &identifiers, &profiles); err != nil {
			return nil, fmt.Errorf("scanning holding: %w", err)
		}
		if err := json.Unmarshal(identifiers, &h.Identifiers); err != nil {
			return nil, fmt.Errorf("decoding holding identifiers: %w", err)
		}
		if err := json.Unmarshal(profiles, &h.Profiles); err != nil {
			return nil, fmt.Errorf("decoding holding profiles: %w", err)
		}
		holdings = append(holdings, &h)
	}
	return holdings, rows.Err()
}

func (r *PgRepository) CommitRun(ctx context.Context, cs syncer.Changeset, holdings []*domain.Holding) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		// Holdings first: inserted activities may reference them.
		for _, h := range holdings {
			if err := upsertHolding(ctx, tx, h); err != nil {
				return err
			}
		}

		// Updates are delete-then-reinsert of the same transaction id.
		for _, act := range append(cs.Deletes, cs.Updates...) {
			if err := deleteActivity(ctx, tx, act); err != nil {
				return err
			}
		}
		for _, act := range append(cs.Inserts, cs.Updates...) {
			if err := insertActivity(ctx, tx, act); err != nil {
				return err
			}
		}

		return pruneHoldings(ctx, tx, holdings)
	})
}

func upsertHolding(ctx context.Context, tx pgx.Tx, h *domain.Holding) error {
	identifiers, err := json.Marshal(h.Identifiers)
	if err != nil {
		return fmt.Errorf("encoding holding identifiers: %w", err)
	}
	profiles, err := json.Marshal(h.Profiles)
	if err != nil {
		return fmt.Errorf("encoding holding profiles: %w", err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO holdings (id, identifiers, profiles)
		 VALUES ($1, $2::jsonb, $3::jsonb)
		 ON CONFLICT (id) DO UPDATE SET identifiers = $2::jsonb, profiles = $3::jsonb`,
		h.ID, identifiers, profiles)
	if err != nil {
		return fmt.Errorf("upserting holding %s: %w", h.ID, err)
	}
	return nil
}

func deleteActivity(ctx context.Context, tx pgx.Tx, act domain.Activity) error {
	base := act.Base()
	_, err := tx.Exec(ctx,
		`DELETE FROM activities WHERE account = $1 AND transaction_id = $2`,
		base.Account, base.TransactionID)
	if err != nil {
		return fmt.Errorf("deleting activity %s: %w", base.TransactionID, err)
	}
	return nil
}

func insertActivity(ctx context.Context, tx pgx.Tx, act domain.Activity) error {
	row, err := encodeActivity(act)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO activities (`+activityColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10, $11, $12, $13, $14, $15::jsonb, $16::jsonb)`,
		row.ID, row.Account, row.TransactionID, row.Kind, row.Date,
		row.SortingPriority, row.Description, row.Identifiers, row.HoldingID,
		row.Currency, row.Quantity, row.UnitPrice, row.Amount, row.TotalAmount,
		row.Fees, row.Taxes)
	if err != nil {
		return fmt.Errorf("inserting activity %s: %w", row.TransactionID, err)
	}
	return nil
}

// pruneHoldings removes persisted holdings that the current run no longer
// produces; their remaining activity references are detached first.
func pruneHoldings(ctx context.Context, tx pgx.Tx, current []*domain.Holding) error {
	ids := lo.Map(current, func(h *domain.Holding, _ int) string { return h.ID })
	if _, err := tx.Exec(ctx,
		`UPDATE activities SET holding_id = NULL
		 WHERE holding_id IS NOT NULL AND NOT (holding_id = ANY($1))`, ids); err != nil {
		return fmt.Errorf("detaching stale holding references: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM holdings WHERE NOT (id = ANY($1))`, ids); err != nil {
		return fmt.Errorf("pruning holdings: %w", err)
	}
	return nil
}
