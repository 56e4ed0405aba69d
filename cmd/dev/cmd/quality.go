package cmd

import (
	"fmt"
	"log/slog"

	"github.com/gophertribe/devtool/test"
	"github.com/spf13/cobra"
)

// qualityCmd wraps a devtool check. Integration tests need a chip on a
// host bus and are run separately.
func qualityCmd(use, short, what string, run func() error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.Info("running " + what)
			err := run()
			if err != nil {
				return fmt.Errorf("failed to run %s: %w", what, err)
			}
			return nil
		},
	}
}

func TestCmd() *cobra.Command {
	return qualityCmd("test", "Run unit tests", "tests", test.Test)
}

func LintCmd() *cobra.Command {
	return qualityCmd("lint", "Run linting", "linting", test.Lint)
}

func IntegrationTestCmd() *cobra.Command {
	return qualityCmd("integration-test", "Run integration tests against an attached sensor", "integration testing", test.Integ)
}
