package ingestion

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/wakala/sellerperf/internal/domain"
)

// ParseSellersCSV parses the sellers export.
//
// Expected header:
//
//	id,first_name,last_name,start_date,position
func ParseSellersCSV(data []byte) ([]domain.Seller, error) {
	var sellers []domain.Seller
	err := readCSV(data, 3, func(line int, row []string) error {
		s := domain.Seller{
			ID:        row[0],
			FirstName: row[1],
			LastName:  row[2],
			StartDate: column(row, 3),
			Position:  column(row, 4),
		}
		if err := validate.Struct(s); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		sellers = append(sellers, s)
		return nil
	})
	return sellers, err
}

// ParseProductsCSV parses the product catalog export.
//
// Expected header:
//
//	sku,name,category,purchase_price,sale_price
func ParseProductsCSV(data []byte) ([]domain.Product, error) {
	var products []domain.Product
	err := readCSV(data, 4, func(line int, row []string) error {
		purchase, err := parseFloat(row[3])
		if err != nil {
			return fmt.Errorf("line %d purchase_price: %w", line, err)
		}
		var sale float64
		if v := column(row, 4); v != "" {
			if sale, err = parseFloat(v); err != nil {
				return fmt.Errorf("line %d sale_price: %w", line, err)
			}
		}

		p := domain.Product{
			SKU:           row[0],
			Name:          row[1],
			Category:      row[2],
			PurchasePrice: purchase,
			SalePrice:     sale,
		}
		if err := validate.Struct(p); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		products = append(products, p)
		return nil
	})
	return products, err
}

// ParsePurchasesCSV parses purchase records flattened to one row per line
// item. Rows sharing a receipt_id are folded into one record in order of
// first appearance; receipt-level columns are taken from the first row.
//
// Expected header:
//
//	receipt_id,date,seller_id,customer_id,total_amount,total_discount,sku,quantity,sale_price,discount
func ParsePurchasesCSV(data []byte) ([]domain.PurchaseRecord, error) {
	var records []domain.PurchaseRecord
	byReceipt := make(map[string]int)

	err := readCSV(data, 10, func(line int, row []string) error {
		receiptID := row[0]
		idx, ok := byReceipt[receiptID]
		if !ok {
			total, err := parseFloat(row[4])
			if err != nil {
				return fmt.Errorf("line %d total_amount: %w", line, err)
			}
			discount, err := parseOptionalFloat(row[5])
			if err != nil {
				return fmt.Errorf("line %d total_discount: %w", line, err)
			}
			records = append(records, domain.PurchaseRecord{
				ReceiptID:     receiptID,
				Date:          row[1],
				SellerID:      row[2],
				CustomerID:    row[3],
				TotalAmount:   total,
				TotalDiscount: discount,
			})
			idx = len(records) - 1
			byReceipt[receiptID] = idx
		}

		qty, err := strconv.Atoi(row[7])
		if err != nil {
			return fmt.Errorf("line %d quantity: %w", line, err)
		}
		price, err := parseFloat(row[8])
		if err != nil {
			return fmt.Errorf("line %d sale_price: %w", line, err)
		}
		discount, err := parseOptionalFloat(row[9])
		if err != nil {
			return fmt.Errorf("line %d discount: %w", line, err)
		}

		item := domain.LineItem{SKU: row[6], Quantity: qty, SalePrice: price, Discount: discount}
		if err := validate.Struct(item); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		records[idx].Items = append(records[idx].Items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range records {
		if err := validate.Struct(records[i]); err != nil {
			return nil, fmt.Errorf("receipt %s: %w", records[i].ReceiptID, err)
		}
	}
	return records, nil
}

// readCSV reads a headed CSV file and calls fn for every data row with
// trimmed cells. Rows shorter than minCols are rejected.
func readCSV(data []byte, minCols int, fn func(line int, row []string) error) error {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if len(header) < minCols {
		return fmt.Errorf("expected at least %d columns, got %d", minCols, len(header))
	}

	lineNum := 1
	for {
		lineNum++
		row, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		if len(row) < minCols {
			return fmt.Errorf("line %d: expected at least %d columns, got %d", lineNum, minCols, len(row))
		}
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		if err := fn(lineNum, row); err != nil {
			return err
		}
	}
}

func column(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func parseOptionalFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return parseFloat(s)
}

// parseFloat accepts finite decimal numbers only.
func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

// ParseCSVBundle assembles a dataset from the three CSV exports.
func ParseCSVBundle(sellers, products, purchases []byte) (*domain.Dataset, error) {
	ds := &domain.Dataset{}
	var err error
	if ds.Sellers, err = ParseSellersCSV(sellers); err != nil {
		return nil, fmt.Errorf("sellers: %w", err)
	}
	if ds.Products, err = ParseProductsCSV(products); err != nil {
		return nil, fmt.Errorf("products: %w", err)
	}
	if ds.PurchaseRecords, err = ParsePurchasesCSV(purchases); err != nil {
		return nil, fmt.Errorf("purchases: %w", err)
	}
	return ds, nil
}
