package common

import (
	"fmt"

	"github.com/ternarybob/banner"
)

// PrintBanner displays the startup banner with the configured provider
// selection so batch logs show which models produced a run.
func PrintBanner(version string, cfg *Config) {
	banner.PrintSimple("Mendel", version)
	if cfg == nil {
		return
	}

	line := fmt.Sprintf("  provider: %s", cfg.Extraction.Provider)
	if cfg.Extraction.CascadeEnabled && cfg.Extraction.FallbackProvider != "" {
		line += fmt.Sprintf("  fallback: %s", cfg.Extraction.FallbackProvider)
	}
	fmt.Println(line)
}
