// Package discover implements the one-shot discovery command.
package discover

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/contactscout/cmd/common"
	"github.com/jonesrussell/contactscout/internal/domain"
	"github.com/jonesrussell/contactscout/internal/report"
)

// Command returns the discover command.
func Command() *cobra.Command {
	var (
		limit int
		orgID string
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Run contact discovery over the next batch of organizations",
		Long: `Discover crawls the websites of organizations pending contact
discovery, extracts and resolves contact candidates, and prints a summary
of the run. With --org-id it runs discovery for that one organization.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			debug, _ := cmd.Flags().GetBool("debug")

			deps, err := common.NewCommandDeps(debug)
			if err != nil {
				return err
			}
			defer deps.Close()

			manager := deps.NewDiscoveryManager()

			var results []domain.BatchResult
			if orgID != "" {
				org, getErr := deps.Organizations.GetByID(cmd.Context(), orgID)
				if getErr != nil {
					return fmt.Errorf("failed to load organization %s: %w", orgID, getErr)
				}
				result, discoverErr := manager.Discover(cmd.Context(), org)
				if discoverErr != nil {
					return fmt.Errorf("discovery failed for %s: %w", org.Name, discoverErr)
				}
				results = []domain.BatchResult{result}
			} else {
				if limit <= 0 {
					limit = deps.Config.Discovery.BatchSize
				}
				results, err = manager.DiscoverAll(cmd.Context(), limit)
				if err != nil {
					return fmt.Errorf("discovery run failed: %w", err)
				}
			}

			report.NewRenderer(os.Stdout).RenderResults(results)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0,
		"maximum organizations to process (default from config)")
	cmd.Flags().StringVar(&orgID, "org-id", "",
		"run discovery for a single organization")

	return cmd
}
