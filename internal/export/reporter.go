package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"

	"github.com/wakala/sellerperf/internal/domain"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
)

type TableConfig struct {
	RankWidth     int
	NameWidth     int
	MoneyWidth    int
	SalesWidth    int
	ProductsWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		RankWidth:     4,
		NameWidth:     28,
		MoneyWidth:    14,
		SalesWidth:    6,
		ProductsWidth: 48,
	}
}

// Reporter renders ranked seller rows for terminal output.
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

// Handle writes rows in the requested format.
func (r *Reporter) Handle(rows []domain.ReportRow, format string) error {
	switch format {
	case "", FormatTable:
		return r.Table(rows)
	case FormatJSON:
		return r.JSON(rows)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// JSON writes rows as an indented JSON array.
func (r *Reporter) JSON(rows []domain.ReportRow) error {
	if rows == nil {
		rows = []domain.ReportRow{}
	}
	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// Table writes rows as a fixed-width text table followed by totals.
func (r *Reporter) Table(rows []domain.ReportRow) error {
	cfg := r.config
	funcMap := template.FuncMap{
		"formatRow": func(rank, name, revenue, profit, sales, bonus, products string) string {
			return fmt.Sprintf("| %*s | %-*s | %*s | %*s | %*s | %*s | %-*s |",
				cfg.RankWidth, rank,
				cfg.NameWidth, truncate(name, cfg.NameWidth),
				cfg.MoneyWidth, revenue,
				cfg.MoneyWidth, profit,
				cfg.SalesWidth, sales,
				cfg.MoneyWidth, bonus,
				cfg.ProductsWidth, truncate(products, cfg.ProductsWidth))
		},
		"separator": func() string {
			cols := []int{cfg.RankWidth, cfg.NameWidth, cfg.MoneyWidth, cfg.MoneyWidth,
				cfg.SalesWidth, cfg.MoneyWidth, cfg.ProductsWidth}
			var b strings.Builder
			b.WriteString("+")
			for _, w := range cols {
				b.WriteString(strings.Repeat("-", w+2))
				b.WriteString("+")
			}
			return b.String()
		},
		"money":    money,
		"itoa":     func(i int) string { return fmt.Sprint(i) },
		"rank":     func(i int) string { return fmt.Sprint(i + 1) },
		"products": topProducts,
	}

	tmpl := `Seller performance ({{len .Rows}} sellers)

{{separator}}
{{formatRow "#" "Seller" "Revenue" "Profit" "Sales" "Bonus" "Top products"}}
{{separator}}
{{range $i, $row := .Rows}}{{formatRow (rank $i) $row.Name (money $row.Revenue) (money $row.Profit) (itoa $row.SalesCount) $row.Bonus (products $row.TopProducts)}}
{{end}}{{separator}}

Total revenue: {{.TotalRevenue}}
Total profit: {{.TotalProfit}}
Total bonus: {{.TotalBonus}}
`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	view, err := newTableView(rows)
	if err != nil {
		return err
	}
	return t.Execute(r.writer, view)
}

type tableView struct {
	Rows         []domain.ReportRow
	TotalRevenue string
	TotalProfit  string
	TotalBonus   string
}

func newTableView(rows []domain.ReportRow) (tableView, error) {
	var revenue, profit, bonus decimal.Decimal
	for _, row := range rows {
		revenue = revenue.Add(decimal.NewFromFloat(row.Revenue))
		profit = profit.Add(decimal.NewFromFloat(row.Profit))
		b, err := decimal.NewFromString(row.Bonus)
		if err != nil {
			return tableView{}, fmt.Errorf("seller %s bonus %q: %w", row.SellerID, row.Bonus, err)
		}
		bonus = bonus.Add(b)
	}
	return tableView{
		Rows:         rows,
		TotalRevenue: revenue.StringFixed(2),
		TotalProfit:  profit.StringFixed(2),
		TotalBonus:   bonus.StringFixed(2),
	}, nil
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func topProducts(items []domain.TopProduct) string {
	parts := make([]string, len(items))
	for i, p := range items {
		parts[i] = fmt.Sprintf("%s x%d", p.SKU, p.Quantity)
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	rs := []rune(s)
	return string(rs[:n-3]) + "..."
}
