package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lobbyctl/internal/cli"
	"lobbyctl/internal/config"
	"lobbyctl/pkg/logging"

	"github.com/spf13/cobra"
)

// Global flags shared by every command.
var (
	configPath   string
	devMode      bool
	localeFlag   string
	debugLogging bool
	logLevel     string
	quietOutput  bool
	outputFormat string
	noHeaders    bool
)

// rootCmd represents the base command for the lobbyctl application.
var rootCmd = &cobra.Command{
	Use:   "lobbyctl",
	Short: "Log in to the game lobby and get into your gameworlds from the terminal",
	Long: `lobbyctl is a terminal client for the game lobby.

It registers and activates accounts, logs in with email or a social
provider, recovers passwords, transfers gold from closed accounts, and
sends you into a gameworld. Lobby links from mails can be opened with
"lobbyctl open <url>" and continue in the matching dialog.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logging.ParseLevel(logLevel)
		if debugLogging {
			level = logging.LevelDebug
		}
		logging.InitForCLI(level, os.Stderr)
		return cli.ValidateOutputFormat(outputFormat)
	},
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits with the code matching the error.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "lobbyctl version %s\n" .Version}}`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", cli.Describe(err, "the lobby"))
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config-path", config.GetDefaultConfigPathOrPanic(), "Configuration directory")
	pf.BoolVar(&devMode, "dev", false, "Use the local development services")
	pf.StringVar(&localeFlag, "locale", "", "Locale for texts and backend requests (e.g. de-DE)")
	pf.BoolVar(&debugLogging, "debug", false, "Enable debug logging (same as --log-level debug)")
	pf.StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.BoolVarP(&quietOutput, "quiet", "q", false, "Suppress progress indicators and non-essential output")
	pf.StringVarP(&outputFormat, "output", "o", string(cli.OutputFormatTable), "Output format (table, plain, json, yaml)")
	pf.BoolVar(&noHeaders, "no-headers", false, "Suppress header row in table output")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
