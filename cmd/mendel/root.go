// -----------------------------------------------------------------------
// mendel - Chemical product data extraction CLI
// -----------------------------------------------------------------------

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/common"
)

var (
	configFiles  []string
	logLevelFlag string

	config *common.Config
	logger arbor.ILogger
)

var rootCmd = &cobra.Command{
	Use:   "mendel",
	Short: "Extract Golden Records from chemical product PDFs",
	Long: `Mendel runs chemical product PDFs (TDS, SDS, RPI, CoA, Brochure)
through an LLM extraction pipeline and merges the per-document results
into versioned Golden Records: one canonical 33-attribute record per
product and region.`,
	Version:       common.GetVersion(),
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&configFiles, "config", "c", nil,
		"Configuration file path (repeatable, later files override earlier ones)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level override (debug, info, warn, error)")

	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(recordsCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initRuntime loads configuration and brings up logging. Startup order:
// config (defaults -> files -> env) -> flag overrides -> logger -> banner.
func initRuntime() error {
	if len(configFiles) == 0 {
		for _, candidate := range []string{"mendel.toml", "deployments/local/mendel.toml"} {
			if _, err := os.Stat(candidate); err == nil {
				configFiles = append(configFiles, candidate)
				break
			}
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		return err
	}

	if logLevelFlag != "" {
		config.Logging.Level = logLevelFlag
	}

	logger = common.InitLogger(config)
	common.PrintBanner(common.GetVersion(), config)

	logger.Debug().
		Strs("config_files", configFiles).
		Str("log_level", config.Logging.Level).
		Str("provider", config.Extraction.Provider).
		Bool("cascade", config.Extraction.CascadeEnabled).
		Msg("Configuration loaded")

	return nil
}
