package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/dragsync/internal/ui/board"
)

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "Print the resolved policy of every container group",
	Long: `Resolve the configured containers into groups and print each group's
policy, its containers and any warnings raised while resolving options and
handlers. Nothing is rendered.`,
	RunE: runPolicies,
}

func init() {
	rootCmd.AddCommand(policiesCmd)
}

func runPolicies(cmd *cobra.Command, _ []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	host, err := board.NewHost(cfg)
	if err != nil {
		return fmt.Errorf("loading board: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, g := range host.Registry().State().Groups() {
		_, _ = fmt.Fprintf(out, "%s\n  policy: %s\n", g.ID(), g.Policy())
		for _, c := range g.Containers() {
			_, _ = fmt.Fprintf(out, "  container %s: %d items\n", c.ID(), c.Len())
		}
		for _, w := range g.Warnings() {
			_, _ = fmt.Fprintf(out, "  warning: %s\n", w)
		}
	}
	return nil
}
