package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ternarybob/mendel/internal/models"
	"github.com/ternarybob/mendel/internal/services/history"
	"github.com/ternarybob/mendel/internal/storage/postgres"
)

var versionRegion string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Query Golden Record version history",
}

var versionListCmd = &cobra.Command{
	Use:   "list PRODUCT",
	Short: "List stored versions of a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionList,
}

var versionDiffCmd = &cobra.Command{
	Use:   "diff PRODUCT VERSION_A VERSION_B",
	Short: "Compare two stored versions of a product",
	Args:  cobra.ExactArgs(3),
	RunE:  runVersionDiff,
}

func init() {
	versionCmd.PersistentFlags().StringVar(&versionRegion, "region", "GLOBAL", "Record region (GLOBAL, EU, US, JP, CN, KR)")
	versionCmd.AddCommand(versionListCmd)
	versionCmd.AddCommand(versionDiffCmd)
}

// newHistoryService connects to the golden record store. History queries
// require persistence, unlike extraction runs.
func newHistoryService(cmd *cobra.Command) (*history.Service, *postgres.Manager, error) {
	if err := initRuntime(); err != nil {
		return nil, nil, err
	}
	if config.Storage.Postgres.DSN == "" {
		return nil, nil, fmt.Errorf("version history requires a Postgres DSN in [storage.postgres]")
	}

	manager, err := postgres.NewManager(cmd.Context(), logger, &config.Storage.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to golden record store: %w", err)
	}
	return history.NewService(manager, logger), manager, nil
}

func runVersionList(cmd *cobra.Command, args []string) error {
	service, manager, err := newHistoryService(cmd)
	if err != nil {
		return err
	}
	defer manager.Close()

	productName := args[0]
	versions, err := service.ListProductVersions(cmd.Context(), productName, versionRegion)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		fmt.Printf("No versions found for %s (%s)\n", productName, versionRegion)
		return nil
	}

	fmt.Printf("Versions of %s (%s):\n", productName, versionRegion)
	for _, record := range versions {
		latest := ""
		if record.IsLatest {
			latest = "  latest"
		}
		fmt.Printf("  v%-3d  %s  run %-4d  sources %d  completeness %.1f%%%s\n",
			record.Version, record.CreatedAt.Format("2006-01-02 15:04"),
			record.RunID, record.SourceCount, record.Completeness, latest)
	}
	return nil
}

func runVersionDiff(cmd *cobra.Command, args []string) error {
	service, manager, err := newHistoryService(cmd)
	if err != nil {
		return err
	}
	defer manager.Close()

	productName := args[0]
	versionA, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid version %q", args[1])
	}
	versionB, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid version %q", args[2])
	}

	diff, err := service.DiffVersions(cmd.Context(), productName, versionRegion, versionA, versionB)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s): v%d -> v%d, %d change(s)\n",
		diff.ProductName, diff.Region, diff.VersionA, diff.VersionB, diff.TotalChanges)
	for _, section := range diff.Sections {
		fmt.Printf("\n[%s]\n", section.Section)
		for _, change := range section.Changes {
			switch change.ChangeType {
			case models.ChangeAdded:
				fmt.Printf("  + %s: %s\n", change.Field, formatDiffValue(change.NewValue, change.NewUnit))
			case models.ChangeRemoved:
				fmt.Printf("  - %s: %s\n", change.Field, formatDiffValue(change.OldValue, change.OldUnit))
			default:
				fmt.Printf("  ~ %s: %s -> %s\n", change.Field,
					formatDiffValue(change.OldValue, change.OldUnit),
					formatDiffValue(change.NewValue, change.NewUnit))
			}
		}
	}
	return nil
}

func formatDiffValue(value any, unit *string) string {
	var text string
	switch v := value.(type) {
	case nil:
		text = "(none)"
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprintf("%v", item)
		}
		text = strings.Join(parts, ", ")
	default:
		text = fmt.Sprintf("%v", v)
	}
	if unit != nil && *unit != "" {
		text += " " + *unit
	}
	return text
}
