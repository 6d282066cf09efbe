// Package testlog routes test output through the test logging profile.
package testlog

import (
	"testing"

	"github.com/danmuck/dhcpopt/internal/logging"
	"github.com/rs/zerolog/log"
)

// Start configures the test profile once per binary and brackets t with
// start and finish lines carrying the active log settings.
func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	profile, cfg := logging.Current()
	log.Info().
		Str("test", t.Name()).
		Stringer("profile", profile).
		Stringer("level", cfg.Level).
		Bool("bypass", cfg.Bypass).
		Msg("testlog.Start begin")
	t.Cleanup(func() {
		log.Info().Str("test", t.Name()).Bool("failed", t.Failed()).Msg("testlog.Start end")
	})
}
