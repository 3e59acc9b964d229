package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ingoeichhorst/debtgraph/internal/config"
	"github.com/ingoeichhorst/debtgraph/internal/pipeline"
	"github.com/ingoeichhorst/debtgraph/internal/scoring"
)

var (
	configPath   string
	coveragePath string
	cacheDir     string
	jsonOutput   bool
	topN         int
)

var scanCmd = &cobra.Command{
	Use:   "scan <directory>",
	Short: "Scan a project and rank its technical debt",
	Long: `Scan a project directory and produce a ranked list of debt items.

Supported languages: Go, Python
Languages are auto-detected from project files (go.mod, pyproject.toml, etc.)
Coverage is joined from an LCOV tracefile when --coverage is given.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("cannot resolve path: %s", err)
		}

		if err := validateProject(dir); err != nil {
			return err
		}

		cfg := scoring.DefaultConfig()

		// Load project config (.debtgraph.yml) and apply overrides; env
		// overrides win over both defaults and file config.
		projectCfg, err := config.LoadProjectConfig(dir, configPath)
		if err != nil {
			return fmt.Errorf("load project config: %w", err)
		}
		projectCfg.ApplyToScoringConfig(&cfg)
		if err := config.ApplyEnvOverrides(&cfg, nil); err != nil {
			return err
		}

		spinner := pipeline.NewSpinner(os.Stderr)
		onProgress := func(stage, detail string) {
			spinner.Update(detail)
		}
		spinner.Start("Scanning...")

		p := pipeline.New(cmd.OutOrStdout(), verbose, &cfg, jsonOutput, onProgress)
		if coveragePath != "" {
			p.SetCoveragePath(coveragePath)
		}
		if cacheDir != "" {
			p.SetCacheDir(cacheDir)
		}
		if topN > 0 {
			p.SetTopN(topN)
		}

		err = p.Run(dir)
		if err != nil {
			spinner.Stop("") // clear spinner before error
			return err
		}
		spinner.Stop("Done.")
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&configPath, "config", "", "path to .debtgraph.yml project config file")
	scanCmd.Flags().StringVar(&coveragePath, "coverage", "", "path to an LCOV tracefile to join line coverage")
	scanCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "directory for the optional purity cache")
	scanCmd.Flags().BoolVar(&jsonOutput, "json", false, "output results as JSON")
	scanCmd.Flags().IntVar(&topN, "top", 0, "limit output to the N highest-scoring items")
	rootCmd.AddCommand(scanCmd)
}

// validateProject checks that dir exists, is a directory, and contains recognized source files.
func validateProject(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("directory not found: %s", dir)
	}
	if err != nil {
		return fmt.Errorf("cannot access directory: %s", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	// Check for any recognized project indicator
	indicators := []string{
		"go.mod",           // Go
		"pyproject.toml",   // Python
		"setup.py",         // Python
		"requirements.txt", // Python
	}

	for _, f := range indicators {
		if _, err := os.Stat(filepath.Join(dir, f)); err == nil {
			return nil
		}
	}

	// Fallback: check for any recognized source file
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("cannot read directory: %s", err)
	}
	recognizedExts := map[string]bool{".go": true, ".py": true}
	for _, entry := range entries {
		if !entry.IsDir() {
			ext := filepath.Ext(entry.Name())
			if recognizedExts[ext] {
				return nil
			}
		}
	}

	return fmt.Errorf("no recognized project found in: %s\nSupported: Go (go.mod), Python (pyproject.toml)\nEnsure the directory contains source files (.go, .py)", dir)
}
