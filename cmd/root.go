package cmd

import (
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/unde-cli/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
	// Logger built from cfg.LogLevel and --debug; always non-nil after loadConfig
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "unde",
	Short: "UNDE: analyze magnetic field survey logs",
	Long: `UNDE analyzes CSV logs of magnetic field readings collected at known indoor positions.
It summarizes the survey, draws a diagnostic figure, evaluates a nearest-neighbour
positioning model and scores whether the data is ready for navigation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.unde/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadConfig() {
	cfg = nil
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands that need config report it themselves
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		logger = cfgpkg.NewLogger(os.Stderr, "warn", debug)
		return
	}
	cfg = c
	logger = cfgpkg.NewLogger(os.Stderr, cfg.LogLevel, debug)
	logger.Debug("config loaded", "file", cfgFile)
}

// requireConfig returns the loaded configuration or the load error.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg = c
	return cfg, nil
}
