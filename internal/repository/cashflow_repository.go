package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"networth/internal/models"
)

type CashFlowRepository interface {
	ListByYear(ctx context.Context, userID string, fiscalYear int) ([]models.CashFlowEntry, error)
	ReplaceYear(ctx context.Context, userID string, fiscalYear int, entries []models.CashFlowEntry) ([]models.CashFlowEntry, error)
}

type cashFlowRepository struct {
	db *sql.DB
}

func NewCashFlowRepository(db *sql.DB) CashFlowRepository {
	return &cashFlowRepository{db: db}
}

const cashFlowColumns = `id, user_id, type, category, category_type, fiscal_year,
		apr, may, jun, jul, aug, sep, oct, nov, dec, jan, feb, mar, created_at`

func (r *cashFlowRepository) ListByYear(ctx context.Context, userID string, fiscalYear int) ([]models.CashFlowEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM cash_flow_entries
		WHERE user_id = $1 AND fiscal_year = $2
		ORDER BY type ASC, category ASC
	`, cashFlowColumns)

	rows, err := r.db.QueryContext(ctx, query, userID, fiscalYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.CashFlowEntry, 0)
	for rows.Next() {
		e, err := scanCashFlowEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ReplaceYear reconciles a fiscal year in one transaction: rows the user
// removed are deleted, everything submitted is upserted. Either the whole
// statement saves or none of it does.
func (r *cashFlowRepository) ReplaceYear(ctx context.Context, userID string, fiscalYear int, entries []models.CashFlowEntry) ([]models.CashFlowEntry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin cashflow transaction: %w", err)
	}
	defer tx.Rollback()

	submitted := make(map[string]bool, len(entries))
	for _, e := range entries {
		submitted[e.Type+"|"+e.Category] = true
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, type, category FROM cash_flow_entries WHERE user_id = $1 AND fiscal_year = $2`,
		userID, fiscalYear)
	if err != nil {
		return nil, err
	}
	var toDelete []string
	for rows.Next() {
		var id, typ, category string
		if err := rows.Scan(&id, &typ, &category); err != nil {
			rows.Close()
			return nil, err
		}
		if !submitted[typ+"|"+category] {
			toDelete = append(toDelete, id)
		}
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range toDelete {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cash_flow_entries WHERE id = $1`, id); err != nil {
			return nil, fmt.Errorf("delete cashflow entry: %w", err)
		}
	}

	upsert := fmt.Sprintf(`
		INSERT INTO cash_flow_entries (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (user_id, type, category, fiscal_year) DO UPDATE SET
			category_type = EXCLUDED.category_type,
			apr = EXCLUDED.apr, may = EXCLUDED.may, jun = EXCLUDED.jun,
			jul = EXCLUDED.jul, aug = EXCLUDED.aug, sep = EXCLUDED.sep,
			oct = EXCLUDED.oct, nov = EXCLUDED.nov, dec = EXCLUDED.dec,
			jan = EXCLUDED.jan, feb = EXCLUDED.feb, mar = EXCLUDED.mar
		RETURNING %s
	`, cashFlowColumns, cashFlowColumns)

	saved := make([]models.CashFlowEntry, 0, len(entries))
	for _, e := range entries {
		row := tx.QueryRowContext(ctx, upsert,
			uuid.NewString(), userID, e.Type, e.Category, e.CategoryType, fiscalYear,
			e.Apr, e.May, e.Jun, e.Jul, e.Aug, e.Sep, e.Oct, e.Nov, e.Dec, e.Jan, e.Feb, e.Mar,
			time.Now().UTC(),
		)
		out, err := scanCashFlowEntry(row)
		if err != nil {
			return nil, fmt.Errorf("upsert cashflow entry: %w", err)
		}
		saved = append(saved, out)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return saved, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCashFlowEntry(row rowScanner) (models.CashFlowEntry, error) {
	var e models.CashFlowEntry
	var categoryType sql.NullString
	err := row.Scan(
		&e.ID, &e.UserID, &e.Type, &e.Category, &categoryType, &e.FiscalYear,
		&e.Apr, &e.May, &e.Jun, &e.Jul, &e.Aug, &e.Sep,
		&e.Oct, &e.Nov, &e.Dec, &e.Jan, &e.Feb, &e.Mar,
		&e.CreatedAt,
	)
	if err != nil {
		return models.CashFlowEntry{}, err
	}
	if categoryType.Valid {
		e.CategoryType = &categoryType.String
	}
	return e, nil
}
