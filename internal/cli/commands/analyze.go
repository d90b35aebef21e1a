package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wakala/sellerperf/internal/analysis"
	"github.com/wakala/sellerperf/internal/domain"
	"github.com/wakala/sellerperf/internal/export"
	"github.com/wakala/sellerperf/internal/ingestion"
	"github.com/wakala/sellerperf/internal/reporting"
)

type AnalyzeCmd struct {
	file      string
	sellers   string
	products  string
	purchases string
	output    string
	revenue   string
	bonus     string
	reporter  *export.Reporter
	logger    zerolog.Logger
}

func NewAnalyzeCmd(reporter *export.Reporter, logger zerolog.Logger) *cobra.Command {
	ac := &AnalyzeCmd{reporter: reporter, logger: logger}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Rank sellers of a dataset by profit",
		RunE:  ac.run,
	}

	cmd.Flags().StringVar(&ac.file, "file", "", "Path to a JSON dataset")
	cmd.Flags().StringVar(&ac.sellers, "sellers", "", "Path to a sellers CSV export")
	cmd.Flags().StringVar(&ac.products, "products", "", "Path to a products CSV export")
	cmd.Flags().StringVar(&ac.purchases, "purchases", "", "Path to a purchases CSV export")
	cmd.Flags().StringVar(&ac.output, "output", export.FormatTable, "Output format (table or json)")
	cmd.Flags().StringVar(&ac.revenue, "revenue", analysis.RevenueSimple, "Revenue strategy")
	cmd.Flags().StringVar(&ac.bonus, "bonus", analysis.BonusProfitRanked, "Bonus strategy")

	cmd.MarkFlagsMutuallyExclusive("file", "sellers")
	cmd.MarkFlagsRequiredTogether("sellers", "products", "purchases")
	cmd.MarkFlagsOneRequired("file", "sellers")

	return cmd
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, args []string) error {
	svc, err := reporting.NewService(nil, nil, ac.revenue, ac.bonus, nil, ac.logger)
	if err != nil {
		return err
	}

	ds, err := ac.load()
	if err != nil {
		return err
	}

	rows, err := svc.Compute(ds)
	if err != nil {
		return fmt.Errorf("failed to compute report: %w", err)
	}
	return ac.reporter.Handle(rows, ac.output)
}

func (ac *AnalyzeCmd) load() (*domain.Dataset, error) {
	if ac.file != "" {
		data, err := os.ReadFile(ac.file)
		if err != nil {
			return nil, fmt.Errorf("read dataset: %w", err)
		}
		ds, err := ingestion.ParseDatasetJSON(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", ac.file, err)
		}
		return ds, nil
	}

	parts := make([][]byte, 0, 3)
	for _, path := range []string{ac.sellers, ac.products, ac.purchases} {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		parts = append(parts, data)
	}
	return ingestion.ParseCSVBundle(parts[0], parts[1], parts[2])
}
