package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/de-tools/license-atlas/pkg/services/config"
	"github.com/de-tools/license-atlas/pkg/store/graph"
	"github.com/de-tools/license-atlas/pkg/terminal"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	cli := terminal.NewCLI(terminal.Options{
		Directory: func(ctx context.Context, profile string) (graph.Directory, error) {
			p, err := config.LoadProfile(profile)
			if err != nil {
				return nil, err
			}
			return graph.NewClient(p.Credentials, nil)
		},
		Output: os.Stdout,
	})

	if err := cli.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
