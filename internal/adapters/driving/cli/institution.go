package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/heisync/internal/core/domain"
)

var institutionCreateFrom string

var institutionCmd = &cobra.Command{
	Use:     "institution",
	Aliases: []string{"inst"},
	Short:   "Manage local institutions",
	Long: `Look up institutions by HEI ID and create missing ones from the remote index.

Lookup always comes first: an institution that already exists is never
created again.`,
}

var institutionGetCmd = &cobra.Command{
	Use:   "get [hei-id]",
	Short: "Look up an institution, optionally creating it",
	Long: `Looks up an institution by HEI ID. With --create-from, a missing
institution is created from the given index item.`,
	Args: cobra.ExactArgs(1),
	RunE: runInstitutionGet,
}

var institutionCreateCmd = &cobra.Command{
	Use:   "create [index-key] [hei-id]",
	Short: "Create an institution from an index item",
	Args:  cobra.ExactArgs(2),
	RunE:  runInstitutionCreate,
}

var institutionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List local institutions",
	Args:  cobra.NoArgs,
	RunE:  runInstitutionList,
}

var institutionImportCmd = &cobra.Command{
	Use:   "import [index-key]",
	Short: "Import every institution of an index item",
	Long: `Looks up or creates every institution listed by an index item.
A failing institution does not stop the import.`,
	Args: cobra.ExactArgs(1),
	RunE: runInstitutionImport,
}

func init() {
	institutionGetCmd.Flags().StringVar(&institutionCreateFrom, "create-from", "",
		"index key to create the institution from when it is missing")

	institutionCmd.AddCommand(institutionGetCmd)
	institutionCmd.AddCommand(institutionCreateCmd)
	institutionCmd.AddCommand(institutionListCmd)
	institutionCmd.AddCommand(institutionImportCmd)
	rootCmd.AddCommand(institutionCmd)
}

func runInstitutionGet(cmd *cobra.Command, args []string) error {
	if institutionManager == nil {
		return errors.New("institution manager not configured")
	}

	heiID := args[0]
	found, err := institutionManager.GetInstitution(context.Background(), heiID, institutionCreateFrom)
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", heiID, err)
	}
	if len(found) == 0 {
		cmd.Printf("No institution with HEI ID %s.\n", heiID)
		return nil
	}

	printInstitutions(cmd, found)
	return nil
}

func runInstitutionCreate(cmd *cobra.Command, args []string) error {
	if institutionManager == nil {
		return errors.New("institution manager not configured")
	}

	indexKey, heiID := args[0], args[1]
	created, err := institutionManager.CreateInstitution(context.Background(), indexKey, heiID)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", heiID, err)
	}
	if len(created) == 0 {
		return fmt.Errorf("%w: %s was saved but cannot be found", domain.ErrNotFound, heiID)
	}

	cmd.Printf("Created %s as %s.\n", heiID, created[0].ID)
	printInstitutions(cmd, created)
	return nil
}

func runInstitutionList(cmd *cobra.Command, _ []string) error {
	if institutionManager == nil {
		return errors.New("institution manager not configured")
	}

	insts, err := institutionManager.ListLocal(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list institutions: %w", err)
	}
	if len(insts) == 0 {
		cmd.Println("No institutions stored.")
		return nil
	}

	writeTable(cmd.OutOrStdout(), []string{"ID", "HEI ID", "LABEL", "INDEX"}, institutionRows(insts))
	note(cmd.OutOrStdout(), "Total: %d institutions", len(insts))
	return nil
}

func runInstitutionImport(cmd *cobra.Command, args []string) error {
	if institutionManager == nil {
		return errors.New("institution manager not configured")
	}

	indexKey := args[0]
	result, err := institutionManager.ImportIndex(context.Background(), indexKey)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", indexKey, err)
	}

	cmd.Printf("Imported %s: %d created, %d existing, %d failed\n",
		indexKey, len(result.Created), len(result.Existing), len(result.Failed))
	if err := result.Err(); err != nil {
		return fmt.Errorf("some institutions failed:\n%w", err)
	}
	return nil
}

// printInstitutions renders each institution with all of its fields.
func printInstitutions(cmd *cobra.Command, insts []domain.Institution) {
	for i := range insts {
		rows := [][]string{{"id", insts[i].ID}}
		rows = append(rows, attrRows(domain.Attributes(insts[i].Data()))...)
		writeTable(cmd.OutOrStdout(), []string{"FIELD", "VALUE"}, rows)
	}
	if len(insts) > 1 {
		note(cmd.OutOrStdout(), "Warning: %d institutions share this HEI ID", len(insts))
	}
}
