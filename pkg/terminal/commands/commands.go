package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	terminal "github.com/de-tools/license-atlas/pkg/runtime/terminal"
	"github.com/de-tools/license-atlas/pkg/services/classify"
	"github.com/de-tools/license-atlas/pkg/services/config"
	"github.com/de-tools/license-atlas/pkg/store/graph"
)

// DirectoryFactory builds a directory client for a named tenant profile.
type DirectoryFactory func(ctx context.Context, profile string) (graph.Directory, error)

type Dependencies struct {
	Directory DirectoryFactory
	Reporter  *terminal.Reporter
}

// loadReportConfig reads the report profile file when one is given and falls
// back to defaults otherwise.
func loadReportConfig(path string) (*config.ReportConfig, error) {
	if path == "" {
		return &config.ReportConfig{
			SummaryDelimiter:   "; ",
			ExtensionAttribute: "extensionAttribute1",
		}, nil
	}
	return config.LoadReportConfig(path)
}

// loadIdentifiers reads one user identifier per line, skipping blanks and
// comments. A missing input file aborts the run before any user is fetched.
func loadIdentifiers(path string, args []string) ([]string, error) {
	if path == "" {
		if len(args) == 0 {
			return nil, fmt.Errorf("no users given: pass identifiers as arguments or use --input")
		}
		return args, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	var identifiers []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		identifiers = append(identifiers, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	if len(identifiers) == 0 {
		return nil, fmt.Errorf("input file %s contains no identifiers", path)
	}
	return identifiers, nil
}

// newGroupCache wires the memoizing group-name cache to the directory.
func newGroupCache(directory graph.Directory) *classify.GroupNameCache {
	return classify.NewGroupNameCache(func(ctx context.Context, id string) (string, error) {
		group, err := directory.GetGroup(ctx, id)
		if err != nil {
			return "", err
		}
		return group.DisplayName, nil
	})
}
