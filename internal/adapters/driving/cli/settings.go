package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var settingsClearToken bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage remote settings",
	Long:  `View and configure the index endpoint, the bearer token and fetch options.`,
	RunE:  runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsEndpointCmd = &cobra.Command{
	Use:   "endpoint [url]",
	Short: "Set the index endpoint",
	Long:  `Set the URL of the remote JSON:API index. It must be an absolute http(s) URL.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsEndpoint,
}

var settingsTokenCmd = &cobra.Command{
	Use:   "token [token]",
	Short: "Set the bearer token",
	Long: `Set the bearer token sent with every remote request.
Without an argument the token is read from the terminal without echo.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsToken,
}

func init() {
	settingsTokenCmd.Flags().BoolVar(&settingsClearToken, "clear", false, "remove the stored token")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEndpointCmd)
	settingsCmd.AddCommand(settingsTokenCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if mappingService == nil {
		return errors.New("mapping service not configured")
	}

	endpoint := mappingService.IndexEndpoint()
	if endpoint == "" {
		endpoint = "(not set)"
	}
	remote := mappingService.RemoteSettings()

	rateLimit := "unlimited"
	if remote.RateLimit > 0 {
		rateLimit = fmt.Sprintf("%g req/s", remote.RateLimit)
	}
	ttl := "never expires"
	if remote.CacheTTL > 0 {
		ttl = remote.CacheTTL.String()
	}

	writeTable(cmd.OutOrStdout(), []string{"SETTING", "VALUE"}, [][]string{
		{"index endpoint", endpoint},
		{"token", maskToken(remote.Token)},
		{"rate limit", rateLimit},
		{"timeout", remote.Timeout.String()},
		{"cache ttl", ttl},
		{"cache scope", remote.CacheScope},
	})

	if mappingService.IndexEndpoint() == "" {
		cmd.Println("Run 'heisync settings endpoint <url>' to configure the index.")
	}
	return nil
}

func runSettingsEndpoint(cmd *cobra.Command, args []string) error {
	if mappingService == nil {
		return errors.New("mapping service not configured")
	}

	if err := mappingService.SetIndexEndpoint(args[0]); err != nil {
		return fmt.Errorf("failed to set endpoint: %w", err)
	}

	cmd.Printf("Index endpoint set to %s\n", args[0])
	return nil
}

func runSettingsToken(cmd *cobra.Command, args []string) error {
	if mappingService == nil {
		return errors.New("mapping service not configured")
	}

	var token string
	switch {
	case settingsClearToken:
	case len(args) == 1:
		token = args[0]
	default:
		cmd.Print("Token: ")
		token = readSecret(cmd.InOrStdin())
		cmd.Println()
		if token == "" {
			return errors.New("no token entered")
		}
	}

	if err := mappingService.SetToken(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	if token == "" {
		cmd.Println("Token removed.")
	} else {
		cmd.Printf("Token set: %s\n", maskToken(token))
	}
	return nil
}

// readSecret reads one line without echo when r is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readSecret(r io.Reader) string {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	input, _ := bufio.NewReader(r).ReadString('\n')
	return strings.TrimSpace(input)
}
