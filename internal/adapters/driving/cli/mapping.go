package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/heisync/internal/core/domain"
)

var (
	filterExcludeLocal  []string
	filterExcludeRemote []string
	filterIncludeRemote []string
)

var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Manage the remote to local field mapping",
	Long: `Remote attributes are copied onto an institution only when they are mapped
to a local field. Unmapped attributes are dropped on import.`,
	RunE: runMappingShow,
}

var mappingShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the field mapping",
	Args:  cobra.NoArgs,
	RunE:  runMappingShow,
}

var mappingSetCmd = &cobra.Command{
	Use:   "set [remote-key] [local-field]",
	Short: "Map a remote attribute to a local field",
	Args:  cobra.ExactArgs(2),
	RunE:  runMappingSet,
}

var mappingUnsetCmd = &cobra.Command{
	Use:   "unset [remote-key]",
	Short: "Remove the mapping of a remote attribute",
	Args:  cobra.ExactArgs(1),
	RunE:  runMappingUnset,
}

var mappingKeysCmd = &cobra.Command{
	Use:   "keys [index-key]",
	Short: "List the remote attributes offered by an index item",
	Args:  cobra.ExactArgs(1),
	RunE:  runMappingKeys,
}

var mappingFieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the local fields that accept a mapping",
	Args:  cobra.NoArgs,
	RunE:  runMappingFields,
}

var mappingFiltersCmd = &cobra.Command{
	Use:   "filters",
	Short: "Show or replace the key filters",
	Long: `Without flags, shows the key filters. With any flag, replaces all three lists.

Included remote keys are offered even when they are also excluded.`,
	Args: cobra.NoArgs,
	RunE: runMappingFilters,
}

func init() {
	flags := mappingFiltersCmd.Flags()
	flags.StringSliceVar(&filterExcludeLocal, "exclude-local", nil, "local fields hidden from mapping")
	flags.StringSliceVar(&filterExcludeRemote, "exclude-remote", nil, "remote keys hidden from mapping")
	flags.StringSliceVar(&filterIncludeRemote, "include-remote", nil, "remote keys always offered")

	mappingCmd.AddCommand(mappingShowCmd)
	mappingCmd.AddCommand(mappingSetCmd)
	mappingCmd.AddCommand(mappingUnsetCmd)
	mappingCmd.AddCommand(mappingKeysCmd)
	mappingCmd.AddCommand(mappingFieldsCmd)
	mappingCmd.AddCommand(mappingFiltersCmd)
	rootCmd.AddCommand(mappingCmd)
}

func runMappingShow(cmd *cobra.Command, _ []string) error {
	if mappingService == nil {
		return errors.New("mapping service not configured")
	}

	fieldMap := mappingService.FieldMap()
	if len(fieldMap) == 0 {
		cmd.Println("No fields mapped. Only index_key will be set on import.")
		return nil
	}

	remotes := make([]string, 0, len(fieldMap))
	for remote := range fieldMap {
		remotes = append(remotes, remote)
	}
	sort.Strings(remotes)

	rows := make([][]string, 0, len(remotes))
	for _, remote := range remotes {
		rows = append(rows, []string{remote, fieldMap[remote]})
	}
	writeTable(cmd.OutOrStdout(), []string{"REMOTE", "LOCAL"}, rows)
	return nil
}

func runMappingSet(cmd *cobra.Command, args []string) error {
	if mappingService == nil {
		return errors.New("mapping service not configured")
	}

	remote, local := args[0], args[1]
	if err := mappingService.SetMapping(remote, local); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return fmt.Errorf("%w\nAvailable fields: %s", err, strings.Join(mappingService.LocalFields(), ", "))
		}
		return fmt.Errorf("failed to set mapping: %w", err)
	}

	cmd.Printf("Mapped %s -> %s\n", remote, local)
	return nil
}

func runMappingUnset(cmd *cobra.Command, args []string) error {
	if mappingService == nil {
		return errors.New("mapping service not configured")
	}

	if err := mappingService.RemoveMapping(args[0]); err != nil {
		return fmt.Errorf("failed to remove mapping: %w", err)
	}

	cmd.Printf("Removed mapping for %s\n", args[0])
	return nil
}

func runMappingKeys(cmd *cobra.Command, args []string) error {
	if institutionManager == nil || mappingService == nil {
		return errors.New("institution manager not configured")
	}

	keys, err := institutionManager.AvailableKeys(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	if len(keys) == 0 {
		cmd.Printf("No remote attributes under %s.\n", args[0])
		return nil
	}

	fieldMap := mappingService.FieldMap()
	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		local := fieldMap[key]
		if local == "" {
			local = "-"
		}
		rows = append(rows, []string{key, local})
	}
	writeTable(cmd.OutOrStdout(), []string{"REMOTE", "MAPPED TO"}, rows)
	return nil
}

func runMappingFields(cmd *cobra.Command, _ []string) error {
	if mappingService == nil {
		return errors.New("mapping service not configured")
	}

	for _, field := range mappingService.LocalFields() {
		cmd.Println(field)
	}
	return nil
}

func runMappingFilters(cmd *cobra.Command, _ []string) error {
	if mappingService == nil {
		return errors.New("mapping service not configured")
	}

	flags := cmd.Flags()
	if flags.Changed("exclude-local") || flags.Changed("exclude-remote") || flags.Changed("include-remote") {
		filters := domain.KeyFilterSettings{
			ExcludedLocalFields: slices.Clone(filterExcludeLocal),
			ExcludedRemoteKeys:  slices.Clone(filterExcludeRemote),
			IncludedRemoteKeys:  slices.Clone(filterIncludeRemote),
		}
		if err := mappingService.SetFilters(filters); err != nil {
			return fmt.Errorf("failed to save filters: %w", err)
		}
		cmd.Println("Filters saved.")
	}

	filters := mappingService.Filters()
	writeTable(cmd.OutOrStdout(), []string{"FILTER", "KEYS"}, [][]string{
		{"exclude-local", listText(filters.ExcludedLocalFields)},
		{"exclude-remote", listText(filters.ExcludedRemoteKeys)},
		{"include-remote", listText(filters.IncludedRemoteKeys)},
	})
	return nil
}

func listText(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
