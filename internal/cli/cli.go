package cli

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wakala/sellerperf/internal/cli/commands"
	"github.com/wakala/sellerperf/internal/export"
)

// CLI represents the command-line interface.
type CLI struct {
	reporter *export.Reporter
	output   io.Writer
	logger   zerolog.Logger
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI.
type Options struct {
	Output io.Writer
	Logger zerolog.Logger
}

// NewCLI creates a new CLI instance.
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		reporter: export.NewReporter(opts.Output),
		output:   opts.Output,
		logger:   opts.Logger,
	}
	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// SetArgs overrides os.Args for the root command.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sellerperf",
		Short:         "Seller performance reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(cli.output)

	cmd.AddCommand(commands.NewAnalyzeCmd(cli.reporter, cli.logger))
	cmd.AddCommand(commands.NewStrategiesCmd(cli.output))

	return cmd
}
