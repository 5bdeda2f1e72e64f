package terminal

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/de-tools/license-atlas/pkg/runtime/terminal"
	"github.com/de-tools/license-atlas/pkg/terminal/commands"
)

// CLI represents the command-line interface
type CLI struct {
	deps    commands.Dependencies
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Directory commands.DirectoryFactory
	Output    io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		deps: commands.Dependencies{
			Directory: opts.Directory,
			Reporter:  terminal.NewReporter(opts.Output),
		},
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "license-atlas",
		Short: "License assignment reporting tool",
	}

	cmd.AddCommand(commands.NewUsersCmd(cli.deps))
	cmd.AddCommand(commands.NewGroupUsageCmd(cli.deps))
	cmd.AddCommand(commands.NewCompareCmd(cli.deps))
	cmd.AddCommand(commands.NewSnapshotCmd(cli.deps))

	return cmd
}
