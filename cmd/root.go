package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/playvenue/playvenue_backend/cmd/http"
	systemcmd "github.com/playvenue/playvenue_backend/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "playvenue",
	Short: "PlayVenue booking and availability engine for sports facilities.",
	Long: `PlayVenue is the booking engine behind a sports facility marketplace.
It manages venue calendars, bookable slots, conflict-free reservations,
recurring bookings and waitlists behind a single HTTP API.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	// Attach top-level command trees.
	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
}
