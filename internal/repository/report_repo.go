package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wakala/sellerperf/internal/domain"
)

type ReportRepo struct {
	db *sql.DB
}

func NewReportRepo(db *sql.DB) *ReportRepo {
	return &ReportRepo{db: db}
}

const reportColumns = "id, dataset_id, revenue_strategy, bonus_strategy, seller_count, generated_at"

// generatedAtLayout has fixed-width fractions so the column sorts as text.
const generatedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Insert stores a report and its rows; the row slice order becomes the rank.
func (r *ReportRepo) Insert(rpt *domain.Report) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO reports (`+reportColumns+`) VALUES (?,?,?,?,?,?)`,
		rpt.ID, rpt.DatasetID, rpt.RevenueStrategy, rpt.BonusStrategy,
		rpt.SellerCount, rpt.GeneratedAt.UTC().Format(generatedAtLayout),
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO report_rows
		(report_id, position, seller_id, name, revenue, profit, sales_count, bonus, top_products)
		VALUES (?,?,?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i, row := range rpt.Rows {
		top, err := json.Marshal(row.TopProducts)
		if err != nil {
			return fmt.Errorf("encode top products %d: %w", i, err)
		}
		_, err = stmt.Exec(
			rpt.ID, i, row.SellerID, row.Name, row.Revenue, row.Profit,
			row.SalesCount, row.Bonus, string(top),
		)
		if err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetByID returns the report header with its rows attached.
func (r *ReportRepo) GetByID(id string) (*domain.Report, error) {
	row := r.db.QueryRow("SELECT "+reportColumns+" FROM reports WHERE id = ?", id)
	rpt, err := scanReport(row)
	if err != nil {
		return nil, err
	}
	if rpt.Rows, err = r.Rows(id); err != nil {
		return nil, fmt.Errorf("load rows: %w", err)
	}
	return rpt, nil
}

// LatestForDataset returns the most recently generated report of a dataset.
func (r *ReportRepo) LatestForDataset(datasetID string) (*domain.Report, error) {
	var id string
	err := r.db.QueryRow(
		"SELECT id FROM reports WHERE dataset_id = ? ORDER BY generated_at DESC LIMIT 1",
		datasetID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

// Rows returns the ranked rows of a report.
func (r *ReportRepo) Rows(reportID string) ([]domain.ReportRow, error) {
	rows, err := r.db.Query(
		`SELECT seller_id, name, revenue, profit, sales_count, bonus, top_products
		FROM report_rows WHERE report_id = ? ORDER BY position`, reportID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ReportRow
	for rows.Next() {
		var row domain.ReportRow
		var top string
		err := rows.Scan(&row.SellerID, &row.Name, &row.Revenue, &row.Profit,
			&row.SalesCount, &row.Bonus, &top)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(top), &row.TopProducts); err != nil {
			return nil, fmt.Errorf("decode top products for %s: %w", row.SellerID, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

type ReportFilter struct {
	DatasetID string
	Page      int
	Limit     int
}

// List returns report headers without rows, newest first.
func (r *ReportRepo) List(f ReportFilter) ([]domain.Report, int, error) {
	where := ""
	var args []any
	if f.DatasetID != "" {
		where = " WHERE dataset_id = ?"
		args = append(args, f.DatasetID)
	}

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM reports"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	limit, offset := pageBounds(f.Page, f.Limit)
	q := "SELECT " + reportColumns + " FROM reports" + where + " ORDER BY generated_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var out []domain.Report
	for rows.Next() {
		rpt, err := scanReport(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		out = append(out, *rpt)
	}
	return out, total, rows.Err()
}

func scanReport(row rowScanner) (*domain.Report, error) {
	var rpt domain.Report
	var generatedAt string

	err := row.Scan(&rpt.ID, &rpt.DatasetID, &rpt.RevenueStrategy, &rpt.BonusStrategy,
		&rpt.SellerCount, &generatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rpt.GeneratedAt, _ = time.Parse(generatedAtLayout, generatedAt)
	return &rpt, nil
}
