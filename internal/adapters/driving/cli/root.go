// Package cli provides the cobra command tree for heisync.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/heisync/internal/core/ports/driving"
	"github.com/custodia-labs/heisync/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Options holds the values of the persistent flags.
type Options struct {
	ConfigDir string
	DataDir   string
	Verbose   bool
	Ephemeral bool
}

// SetupFunc builds the services for a command run. The returned cleanup
// runs after the command finishes.
type SetupFunc func(opts Options) (cleanup func(), err error)

var (
	opts    Options
	setup   SetupFunc
	cleanup func()
)

// Services used by the commands. Set by SetServices.
var (
	institutionManager driving.InstitutionManager
	mappingService     driving.FieldMappingService
	documentCache      driving.DocumentCache
)

var rootCmd = &cobra.Command{
	Use:   "heisync",
	Short: "Import higher-education institutions from a JSON:API index",
	Long: `heisync looks up institutions by HEI ID in a local store and creates
missing ones from a remote JSON:API index, renaming remote attributes
through a configurable field mapping.`,
	SilenceUsage:      true,
	PersistentPreRunE: runSetup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.ConfigDir, "config-dir", "", "configuration directory (default ~/.heisync)")
	flags.StringVar(&opts.DataDir, "data-dir", "", "data directory (default ~/.heisync/data)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose logging")
	flags.BoolVar(&opts.Ephemeral, "ephemeral", false, "keep configuration and data in memory only")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetSetup registers the function that builds services before a command runs.
func SetSetup(fn SetupFunc) {
	setup = fn
}

// SetServices sets the services used by the commands.
func SetServices(manager driving.InstitutionManager, mapping driving.FieldMappingService, cache driving.DocumentCache) {
	institutionManager = manager
	mappingService = mapping
	documentCache = cache
}

// Execute runs the root command and releases what setup acquired.
// Command output goes to stdout; logs and errors go to stderr.
func Execute() error {
	defer runCleanup()
	rootCmd.SetOut(os.Stdout)
	return rootCmd.Execute()
}

func runSetup(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(opts.Verbose)
	if setup == nil {
		return nil
	}
	done, err := setup(opts)
	if err != nil {
		return err
	}
	cleanup = done
	return nil
}

func runCleanup() {
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
}
