package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wakala/sellerperf/internal/analysis"
)

func NewStrategiesCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List registered revenue and bonus strategies",
		RunE: func(cmd *cobra.Command, args []string) error {
			revenue, bonus := analysis.StrategyNames()
			if _, err := fmt.Fprintf(out, "revenue: %s\n", strings.Join(revenue, ", ")); err != nil {
				return err
			}
			_, err := fmt.Fprintf(out, "bonus: %s\n", strings.Join(bonus, ", "))
			return err
		},
	}
}
