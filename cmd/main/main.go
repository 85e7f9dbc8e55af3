package main

import (
	"errors"
	"fmt"
	"os"

	"biometric-insights/src/helpers"

	"github.com/spf13/cobra"
)

var (
	configPath  string
	profileName string
)

var rootCmd = &cobra.Command{
	Use:   "biometric-insights",
	Short: "Personalized health insights from wearable exports",
	Long: `biometric-insights merges daily readiness, sleep, activity, SpO2 and heart rate
exports into one timeline and writes a rule-based report.

Commands:
    report      run one pass and save the report
    serve       HTTP/WebSocket + gRPC control surface
    profiles    list user directories in the archive
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// -----------------------------------------------------------------------------

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/default.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile directory name or path (default from config)")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(profilesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, helpers.ErrInsufficientData) {
			fmt.Println("Error: Insufficient data for analysis.")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
