package main

import (
	"context"
	"fmt"

	"biometric-insights/src/logger"
	"biometric-insights/src/pipeline"
	"biometric-insights/src/profile"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate one report and save it",
	Long: `Runs a single pass over the profile's latest exports, prints the report and
saves it to the configured output directory.`,
	RunE: runReport,
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List user profiles in the archive",
	RunE:  runProfiles,
}

// -----------------------------------------------------------------------------

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := setupConfig()
	if err != nil {
		return err
	}
	appLogger := logger.NewLogger(cfg, cfg.Name)
	defer appLogger.Sync()

	p, profileDir, cleanup, err := setupPipeline(cfg, appLogger)
	if err != nil {
		return err
	}
	defer cleanup()

	appLogger.Info("Generating report for %s", profileDir)
	result, err := p.Run(context.Background(), profileDir)
	if err != nil {
		return err
	}
	appLogger.Info("%s", pipeline.Describe(result))

	fmt.Println(result.Report.Text)
	fmt.Printf("\nReport saved to: %s\n", result.ReportPath)
	if result.TimelinePath != "" {
		fmt.Printf("Timeline saved to: %s\n", result.TimelinePath)
	}
	return nil
}

// -----------------------------------------------------------------------------

func runProfiles(cmd *cobra.Command, args []string) error {
	cfg, err := setupConfig()
	if err != nil {
		return err
	}

	dirs, err := profile.ListProfiles(cfg.Archive.Root)
	if err != nil {
		return fmt.Errorf("failed to list profiles in %s: %w", cfg.Archive.Root, err)
	}

	fmt.Println("=== Available User Profiles ===")
	if len(dirs) == 0 {
		fmt.Println("(none)")
		return nil
	}
	for i, d := range dirs {
		fmt.Printf("%d. %s\n", i+1, d)
	}
	return nil
}
