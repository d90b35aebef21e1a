package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wakala/sellerperf/internal/domain"
)

type DatasetRepo struct {
	db *sql.DB
}

func NewDatasetRepo(db *sql.DB) *DatasetRepo {
	return &DatasetRepo{db: db}
}

const datasetColumns = "id, name, format, file_hash, seller_count, product_count, record_count, ingested_at"

// GetByHash returns the dataset previously ingested from identical bytes, or
// ErrNotFound.
func (r *DatasetRepo) GetByHash(hash string) (*domain.DatasetInfo, error) {
	row := r.db.QueryRow("SELECT "+datasetColumns+" FROM datasets WHERE file_hash = ?", hash)
	return scanDatasetInfo(row)
}

func (r *DatasetRepo) GetByID(id string) (*domain.DatasetInfo, error) {
	row := r.db.QueryRow("SELECT "+datasetColumns+" FROM datasets WHERE id = ?", id)
	return scanDatasetInfo(row)
}

func (r *DatasetRepo) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM datasets").Scan(&count); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return count, nil
}

// Insert stores the dataset header and all of its rows in one transaction.
// Row order is kept in the position columns.
func (r *DatasetRepo) Insert(info *domain.DatasetInfo, ds *domain.Dataset) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO datasets (`+datasetColumns+`) VALUES (?,?,?,?,?,?,?,?)`,
		info.ID, info.Name, string(info.Format), info.FileHash,
		info.SellerCount, info.ProductCount, info.RecordCount,
		info.IngestedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert dataset: %w", err)
	}

	if err := insertSellers(tx, info.ID, ds.Sellers); err != nil {
		return err
	}
	if err := insertProducts(tx, info.ID, ds.Products); err != nil {
		return err
	}
	if err := insertPurchaseRecords(tx, info.ID, ds.PurchaseRecords); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertSellers(tx *sql.Tx, datasetID string, sellers []domain.Seller) error {
	stmt, err := tx.Prepare(
		`INSERT INTO sellers (dataset_id, position, id, first_name, last_name, start_date, job_title)
		VALUES (?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare sellers: %w", err)
	}
	defer stmt.Close()

	for i, s := range sellers {
		if _, err := stmt.Exec(datasetID, i, s.ID, s.FirstName, s.LastName, s.StartDate, s.Position); err != nil {
			return fmt.Errorf("insert seller %d: %w", i, err)
		}
	}
	return nil
}

func insertProducts(tx *sql.Tx, datasetID string, products []domain.Product) error {
	stmt, err := tx.Prepare(
		`INSERT INTO products (dataset_id, position, sku, name, category, purchase_price, sale_price)
		VALUES (?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare products: %w", err)
	}
	defer stmt.Close()

	for i, p := range products {
		if _, err := stmt.Exec(datasetID, i, p.SKU, p.Name, p.Category, p.PurchasePrice, p.SalePrice); err != nil {
			return fmt.Errorf("insert product %d: %w", i, err)
		}
	}
	return nil
}

func insertPurchaseRecords(tx *sql.Tx, datasetID string, records []domain.PurchaseRecord) error {
	recStmt, err := tx.Prepare(
		`INSERT INTO purchase_records
		(dataset_id, position, receipt_id, date, seller_id, customer_id, total_amount, total_discount)
		VALUES (?,?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare records: %w", err)
	}
	defer recStmt.Close()

	itemStmt, err := tx.Prepare(
		`INSERT INTO line_items
		(dataset_id, record_position, position, sku, quantity, sale_price, discount)
		VALUES (?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare items: %w", err)
	}
	defer itemStmt.Close()

	for i := range records {
		rec := &records[i]
		_, err := recStmt.Exec(
			datasetID, i, rec.ReceiptID, rec.Date, rec.SellerID, rec.CustomerID,
			rec.TotalAmount, rec.TotalDiscount,
		)
		if err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
		for j, item := range rec.Items {
			if _, err := itemStmt.Exec(datasetID, i, j, item.SKU, item.Quantity, item.SalePrice, item.Discount); err != nil {
				return fmt.Errorf("insert record %d item %d: %w", i, j, err)
			}
		}
	}
	return nil
}

// Load reads a stored dataset back in its original order.
func (r *DatasetRepo) Load(id string) (*domain.Dataset, error) {
	if _, err := r.GetByID(id); err != nil {
		return nil, err
	}

	ds := &domain.Dataset{}
	var err error
	if ds.Sellers, err = r.loadSellers(id); err != nil {
		return nil, fmt.Errorf("load sellers: %w", err)
	}
	if ds.Products, err = r.loadProducts(id); err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	if ds.PurchaseRecords, err = r.loadPurchaseRecords(id); err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	if err := r.loadLineItems(id, ds.PurchaseRecords); err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	return ds, nil
}

func (r *DatasetRepo) loadSellers(id string) ([]domain.Seller, error) {
	rows, err := r.db.Query(
		`SELECT id, first_name, last_name, start_date, job_title
		FROM sellers WHERE dataset_id = ? ORDER BY position`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sellers []domain.Seller
	for rows.Next() {
		var s domain.Seller
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.StartDate, &s.Position); err != nil {
			return nil, err
		}
		sellers = append(sellers, s)
	}
	return sellers, rows.Err()
}

func (r *DatasetRepo) loadProducts(id string) ([]domain.Product, error) {
	rows, err := r.db.Query(
		`SELECT sku, name, category, purchase_price, sale_price
		FROM products WHERE dataset_id = ? ORDER BY position`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.SKU, &p.Name, &p.Category, &p.PurchasePrice, &p.SalePrice); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *DatasetRepo) loadPurchaseRecords(id string) ([]domain.PurchaseRecord, error) {
	rows, err := r.db.Query(
		`SELECT receipt_id, date, seller_id, customer_id, total_amount, total_discount
		FROM purchase_records WHERE dataset_id = ? ORDER BY position`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.PurchaseRecord
	for rows.Next() {
		var rec domain.PurchaseRecord
		err := rows.Scan(&rec.ReceiptID, &rec.Date, &rec.SellerID, &rec.CustomerID,
			&rec.TotalAmount, &rec.TotalDiscount)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// loadLineItems attaches items to records by record position. It must run
// after loadPurchaseRecords has closed its cursor.
func (r *DatasetRepo) loadLineItems(id string, records []domain.PurchaseRecord) error {
	rows, err := r.db.Query(
		`SELECT record_position, sku, quantity, sale_price, discount
		FROM line_items WHERE dataset_id = ? ORDER BY record_position, position`, id,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var pos int
		var item domain.LineItem
		if err := rows.Scan(&pos, &item.SKU, &item.Quantity, &item.SalePrice, &item.Discount); err != nil {
			return err
		}
		if pos < 0 || pos >= len(records) {
			return fmt.Errorf("line item references record %d of %d", pos, len(records))
		}
		records[pos].Items = append(records[pos].Items, item)
	}
	return rows.Err()
}

type DatasetFilter struct {
	Format string
	Page   int
	Limit  int
}

func (r *DatasetRepo) List(f DatasetFilter) ([]domain.DatasetInfo, int, error) {
	where := ""
	var args []any
	if f.Format != "" {
		where = " WHERE format = ?"
		args = append(args, f.Format)
	}

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM datasets"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	limit, offset := pageBounds(f.Page, f.Limit)
	q := "SELECT " + datasetColumns + " FROM datasets" + where + " ORDER BY ingested_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var out []domain.DatasetInfo
	for rows.Next() {
		info, err := scanDatasetInfo(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		out = append(out, *info)
	}
	return out, total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDatasetInfo(row rowScanner) (*domain.DatasetInfo, error) {
	var info domain.DatasetInfo
	var format, ingestedAt string

	err := row.Scan(
		&info.ID, &info.Name, &format, &info.FileHash,
		&info.SellerCount, &info.ProductCount, &info.RecordCount, &ingestedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	info.Format = domain.DatasetFormat(format)
	info.IngestedAt, _ = time.Parse(time.RFC3339, ingestedAt)
	return &info, nil
}

// pageBounds applies the default page size of 50 and returns limit and offset.
func pageBounds(page, limit int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}
	return limit, (page - 1) * limit
}
