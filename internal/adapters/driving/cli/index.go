package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var indexRefresh bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Browse the remote index",
	Long:  `List the items of the remote index and the institutions each one lists.`,
}

var indexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List index items",
	Args:  cobra.NoArgs,
	RunE:  runIndexList,
}

var indexItemsCmd = &cobra.Command{
	Use:   "items [index-key]",
	Short: "List the institutions of an index item",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexItems,
}

var indexShowCmd = &cobra.Command{
	Use:   "show [index-key] [hei-id]",
	Short: "Show the remote attributes of an institution",
	Args:  cobra.ExactArgs(2),
	RunE:  runIndexShow,
}

func init() {
	indexListCmd.Flags().BoolVar(&indexRefresh, "refresh", false, "refetch the index instead of using the cache")

	indexCmd.AddCommand(indexListCmd)
	indexCmd.AddCommand(indexItemsCmd)
	indexCmd.AddCommand(indexShowCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexList(cmd *cobra.Command, _ []string) error {
	if institutionManager == nil {
		return errors.New("institution manager not configured")
	}

	entries, err := institutionManager.ListIndex(context.Background(), indexRefresh)
	if err != nil {
		return fmt.Errorf("failed to list index: %w", err)
	}
	if len(entries) == 0 {
		cmd.Println("The index is empty.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		endpoint := e.Endpoint
		if endpoint == "" {
			endpoint = "-"
		}
		rows = append(rows, []string{e.ID, e.Label, endpoint})
	}
	writeTable(cmd.OutOrStdout(), []string{"KEY", "LABEL", "LIST"}, rows)
	return nil
}

func runIndexItems(cmd *cobra.Command, args []string) error {
	if institutionManager == nil {
		return errors.New("institution manager not configured")
	}

	indexKey := args[0]
	items, err := institutionManager.ListItems(context.Background(), indexKey)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", indexKey, err)
	}
	if len(items) == 0 {
		cmd.Printf("No institutions listed under %s.\n", indexKey)
		return nil
	}

	writeTable(cmd.OutOrStdout(), []string{"HEI ID", "LABEL"}, idLabelRows(items))
	note(cmd.OutOrStdout(), "Total: %d institutions", len(items))
	return nil
}

func runIndexShow(cmd *cobra.Command, args []string) error {
	if institutionManager == nil {
		return errors.New("institution manager not configured")
	}

	indexKey, heiID := args[0], args[1]
	attrs, err := institutionManager.Preview(context.Background(), indexKey, heiID)
	if err != nil {
		return fmt.Errorf("failed to show %s: %w", heiID, err)
	}

	writeTable(cmd.OutOrStdout(), []string{"ATTRIBUTE", "VALUE"}, attrRows(attrs))
	return nil
}
