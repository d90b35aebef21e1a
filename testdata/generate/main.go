package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/wakala/sellerperf/internal/domain"
)

var (
	firstNames = []string{"Alexey", "Anna", "Ivan", "Maria", "Dmitry", "Olga", "Sergey", "Elena"}
	lastNames  = []string{"Petrov", "Smirnova", "Ivanov", "Kuznetsova", "Popov", "Volkova", "Sokolov", "Morozova"}
	positions  = []string{"Junior Seller", "Seller", "Senior Seller", "Sales Lead"}
	categories = []string{"Drinks", "Snacks", "Household", "Stationery", "Electronics"}
)

type customer struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type datasetFile struct {
	Sellers         []domain.Seller         `json:"sellers"`
	Products        []domain.Product        `json:"products"`
	Customers       []customer              `json:"customers"`
	PurchaseRecords []domain.PurchaseRecord `json:"purchase_records"`
}

func main() {
	rng := rand.New(rand.NewSource(42))
	baseDir := findTestdataDir()

	ds := datasetFile{
		Sellers:   generateSellers(rng, 5),
		Products:  generateProducts(rng, 20),
		Customers: generateCustomers(rng, 30),
	}
	ds.PurchaseRecords = generateRecords(rng, ds, 200)

	writeJSONFile(filepath.Join(baseDir, "sample_dataset.json"), ds)
	fmt.Printf("Generated %d sellers, %d products, %d purchase records -> sample_dataset.json\n",
		len(ds.Sellers), len(ds.Products), len(ds.PurchaseRecords))

	writeCSVExports(baseDir, ds)
}

func generateSellers(rng *rand.Rand, n int) []domain.Seller {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	sellers := make([]domain.Seller, n)
	for i := range sellers {
		sellers[i] = domain.Seller{
			ID:        fmt.Sprintf("seller_%d", i+1),
			FirstName: firstNames[rng.Intn(len(firstNames))],
			LastName:  lastNames[rng.Intn(len(lastNames))],
			StartDate: start.AddDate(0, 0, rng.Intn(1200)).Format("2006-01-02"),
			Position:  positions[rng.Intn(len(positions))],
		}
	}
	return sellers
}

func generateProducts(rng *rand.Rand, n int) []domain.Product {
	products := make([]domain.Product, n)
	for i := range products {
		// Purchase price between 1 and 100, markup 10-80%.
		purchase := round2(1 + rng.Float64()*99)
		sale := round2(purchase * (1.1 + rng.Float64()*0.7))
		category := categories[rng.Intn(len(categories))]
		products[i] = domain.Product{
			SKU:           fmt.Sprintf("SKU_%03d", i+1),
			Name:          fmt.Sprintf("%s item %d", category, i+1),
			Category:      category,
			PurchasePrice: purchase,
			SalePrice:     sale,
		}
	}
	return products
}

func generateCustomers(rng *rand.Rand, n int) []customer {
	customers := make([]customer, n)
	for i := range customers {
		customers[i] = customer{
			ID:        fmt.Sprintf("customer_%d", i+1),
			FirstName: firstNames[rng.Intn(len(firstNames))],
			LastName:  lastNames[rng.Intn(len(lastNames))],
			Email:     fmt.Sprintf("customer%d@example.com", i+1),
		}
	}
	return customers
}

func generateRecords(rng *rand.Rand, ds datasetFile, n int) []domain.PurchaseRecord {
	startDate := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
	records := make([]domain.PurchaseRecord, n)
	for i := range records {
		seller := ds.Sellers[rng.Intn(len(ds.Sellers))]
		rec := domain.PurchaseRecord{
			ReceiptID:  fmt.Sprintf("receipt_%d", i+1),
			Date:       startDate.AddDate(0, 0, rng.Intn(31)).Format("2006-01-02"),
			SellerID:   seller.ID,
			CustomerID: ds.Customers[rng.Intn(len(ds.Customers))].ID,
		}

		items := 1 + rng.Intn(4)
		for j := 0; j < items; j++ {
			p := ds.Products[rng.Intn(len(ds.Products))]
			qty := 1 + rng.Intn(10)

			// 30% of lines carry a discount between 1 and 20 percent.
			var discount float64
			if rng.Float64() < 0.3 {
				discount = float64(1 + rng.Intn(20))
			}

			full := p.SalePrice * float64(qty)
			rec.TotalAmount += full * (1 - discount/100)
			rec.TotalDiscount += full * discount / 100
			rec.Items = append(rec.Items, domain.LineItem{
				SKU:       p.SKU,
				Quantity:  qty,
				SalePrice: p.SalePrice,
				Discount:  discount,
			})
		}
		rec.TotalAmount = round2(rec.TotalAmount)
		rec.TotalDiscount = round2(rec.TotalDiscount)
		records[i] = rec
	}
	return records
}

func writeCSVExports(baseDir string, ds datasetFile) {
	sellerRows := [][]string{{"id", "first_name", "last_name", "start_date", "position"}}
	for _, s := range ds.Sellers {
		sellerRows = append(sellerRows, []string{s.ID, s.FirstName, s.LastName, s.StartDate, s.Position})
	}
	writeCSVFile(filepath.Join(baseDir, "sample_sellers.csv"), sellerRows)

	productRows := [][]string{{"sku", "name", "category", "purchase_price", "sale_price"}}
	for _, p := range ds.Products {
		productRows = append(productRows, []string{p.SKU, p.Name, p.Category, money(p.PurchasePrice), money(p.SalePrice)})
	}
	writeCSVFile(filepath.Join(baseDir, "sample_products.csv"), productRows)

	purchaseRows := [][]string{{
		"receipt_id", "date", "seller_id", "customer_id", "total_amount", "total_discount",
		"sku", "quantity", "sale_price", "discount",
	}}
	for _, r := range ds.PurchaseRecords {
		for _, it := range r.Items {
			purchaseRows = append(purchaseRows, []string{
				r.ReceiptID, r.Date, r.SellerID, r.CustomerID, money(r.TotalAmount), money(r.TotalDiscount),
				it.SKU, strconv.Itoa(it.Quantity), money(it.SalePrice), money(it.Discount),
			})
		}
	}
	writeCSVFile(filepath.Join(baseDir, "sample_purchases.csv"), purchaseRows)

	fmt.Printf("Generated %d purchase lines -> sample_purchases.csv\n", len(purchaseRows)-1)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func writeCSVFile(path string, rows [][]string) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		panic(err)
	}
}

func writeJSONFile(path string, v any) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		panic(err)
	}
}

func findTestdataDir() string {
	for _, c := range []string{"testdata", "../testdata", "../../testdata"} {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return c
		}
	}
	return "testdata"
}
