package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/heisync/internal/core/domain"
)

var cacheClearIndex bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage cached remote documents",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [index-key...]",
	Short: "Drop cached documents",
	Long: `Drops the cached institution lists of the given index items so the next
use refetches them. Without index keys, or with --index, drops the cached index.`,
	RunE: runCacheClear,
}

func init() {
	cacheClearCmd.Flags().BoolVar(&cacheClearIndex, "index", false, "also drop the cached index")

	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	if documentCache == nil {
		return errors.New("document cache not configured")
	}

	ctx := context.Background()
	if cacheClearIndex || len(args) == 0 {
		if err := documentCache.Invalidate(ctx, domain.IndexKey); err != nil {
			return fmt.Errorf("failed to clear index: %w", err)
		}
		cmd.Println("Cleared index")
	}
	for _, indexKey := range args {
		if err := documentCache.Invalidate(ctx, domain.ItemCacheKey(indexKey)); err != nil {
			return fmt.Errorf("failed to clear %s: %w", indexKey, err)
		}
		cmd.Printf("Cleared %s\n", indexKey)
	}
	return nil
}
