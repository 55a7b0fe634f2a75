package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"networth/internal/models"
)

// AssetRepository serves every asset kind through one generic implementation;
// the kind's schema (from the models dispatch table) decides table, columns
// and scan types, so no SQL is ever built from request input directly.
type AssetRepository interface {
	List(ctx context.Context, kind models.AssetKind, userID string) ([]map[string]any, error)
	Create(ctx context.Context, kind models.AssetKind, userID string, id string, fields map[string]any) error
	Update(ctx context.Context, kind models.AssetKind, userID string, id string, fields map[string]any) error
	Delete(ctx context.Context, kind models.AssetKind, userID string, id string) error

	ListHoldings(ctx context.Context, userID string) ([]models.Holding, error)
	ListLoans(ctx context.Context, userID string) ([]models.LoanEntry, error)
	ListInsurance(ctx context.Context, userID string) ([]models.InsuranceEntry, error)
}

type assetRepository struct {
	db *sql.DB
}

func NewAssetRepository(db *sql.DB) AssetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) List(ctx context.Context, kind models.AssetKind, userID string) ([]map[string]any, error) {
	cols := make([]string, 0, len(kind.Fields)+2)
	cols = append(cols, "id")
	for _, f := range kind.Fields {
		cols = append(cols, f.Column)
	}
	cols = append(cols, "created_at")

	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE user_id = $1 ORDER BY created_at DESC`,
		strings.Join(cols, ", "), kind.Table,
	)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]map[string]any, 0)
	for rows.Next() {
		var id string
		var createdAt time.Time
		targets := make([]any, 0, len(cols))
		targets = append(targets, &id)
		scratch := make([]any, len(kind.Fields))
		for i, f := range kind.Fields {
			switch f.Type {
			case models.FieldNumber:
				scratch[i] = &sql.NullFloat64{}
			case models.FieldDate:
				scratch[i] = &sql.NullTime{}
			default:
				scratch[i] = &sql.NullString{}
			}
			targets = append(targets, scratch[i])
		}
		targets = append(targets, &createdAt)

		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		item := map[string]any{"id": id, "created_at": createdAt}
		for i, f := range kind.Fields {
			switch v := scratch[i].(type) {
			case *sql.NullFloat64:
				if v.Valid {
					item[f.Name] = v.Float64
				}
			case *sql.NullTime:
				if v.Valid {
					item[f.Name] = v.Time.Format("2006-01-02")
				}
			case *sql.NullString:
				if v.Valid {
					item[f.Name] = v.String
				}
			}
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// Create inserts the provided fields; fields holds column-ready values keyed
// by JSON field name, already filtered against the kind's schema.
func (r *assetRepository) Create(ctx context.Context, kind models.AssetKind, userID string, id string, fields map[string]any) error {
	cols := []string{"id", "user_id", "created_at"}
	args := []any{id, userID, time.Now().UTC()}
	for _, f := range kind.Fields {
		v, ok := fields[f.Name]
		if !ok {
			continue
		}
		cols = append(cols, f.Column)
		args = append(args, v)
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		kind.Table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *assetRepository) Update(ctx context.Context, kind models.AssetKind, userID string, id string, fields map[string]any) error {
	sets := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+2)
	for _, f := range kind.Fields {
		v, ok := fields[f.Name]
		if !ok {
			continue
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", f.Column, len(args)))
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id, userID)
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d AND user_id = $%d`,
		kind.Table, strings.Join(sets, ", "), len(args)-1, len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *assetRepository) Delete(ctx context.Context, kind models.AssetKind, userID string, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, kind.Table)
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListHoldings flattens the asset categories into (category, currency, value)
// rows. Value semantics mirror the entry forms: current value when recorded,
// otherwise the purchase-derived fallback.
func (r *assetRepository) ListHoldings(ctx context.Context, userID string) ([]models.Holding, error) {
	query := `
		SELECT 'bankAccounts' AS category, currency, current_balance AS value
		FROM bank_accounts WHERE user_id = $1
		UNION ALL
		SELECT 'termDeposits', currency, COALESCE(current_value, amount)
		FROM term_deposits WHERE user_id = $1
		UNION ALL
		SELECT 'stocks', currency, COALESCE(current_value, buy_price * quantity)
		FROM stocks WHERE user_id = $1
		UNION ALL
		SELECT 'metals', currency, COALESCE(current_value, buying_price * quantity)
		FROM metals WHERE user_id = $1
		UNION ALL
		SELECT 'realEstate', currency, COALESCE(current_value, purchase_price)
		FROM real_estates WHERE user_id = $1
		UNION ALL
		SELECT 'pension', currency, current_value
		FROM pensions WHERE user_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holdings []models.Holding
	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(&h.Category, &h.Currency, &h.Value); err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

func (r *assetRepository) ListLoans(ctx context.Context, userID string) ([]models.LoanEntry, error) {
	query := `SELECT loan_type, currency, outstanding_balance FROM loans WHERE user_id = $1`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []models.LoanEntry
	for rows.Next() {
		var l models.LoanEntry
		if err := rows.Scan(&l.LoanType, &l.Currency, &l.Outstanding); err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

func (r *assetRepository) ListInsurance(ctx context.Context, userID string) ([]models.InsuranceEntry, error) {
	query := `
		SELECT policy_type, insured_name, currency, COALESCE(sum_assured, 0), current_payout_value
		FROM insurances WHERE user_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []models.InsuranceEntry
	for rows.Next() {
		var p models.InsuranceEntry
		if err := rows.Scan(&p.PolicyType, &p.InsuredName, &p.Currency, &p.SumAssured, &p.PayoutValue); err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}
