package config

import (
	"os"
	"path/filepath"
	"testing"

	burnt "github.com/BurntSushi/toml"
	"github.com/danmuck/dhcpopt/internal/pipeline"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
[input]
format = "hex"
frame = true

[output]
format = "json"
report = true

[listen]
addr = "127.0.0.1:1067"
cors_origins = [" http://localhost:3000/ ", ""]
admin_token = " s3cret "

[log]
level = "debug"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, pipeline.FormatHex, cfg.InputFormat())
	assert.True(t, cfg.Input.Frame)
	assert.Equal(t, OutputJSON, cfg.Output.Format)
	assert.True(t, cfg.Output.Report)
	assert.False(t, cfg.Output.Validate)
	assert.Equal(t, "127.0.0.1:1067", cfg.Listen.Addr)
	assert.Equal(t, "127.0.0.1:9167", cfg.Listen.MetricsAddr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Listen.CorsOrigins)
	assert.Equal(t, "s3cret", cfg.Listen.AdminToken)
	assert.Equal(t, 65507, cfg.Limits().MaxFrameBytes)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel())
	assert.Equal(t, pipeline.Options{Frame: true}, cfg.PipelineOptions())
	assert.Equal(t, pipeline.View{Report: true}, cfg.View())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"input format":  "[input]\nformat = \"yaml\"\n",
		"output format": "[output]\nformat = \"xml\"\n",
		"empty addr":    "[listen]\naddr = \" \"\n",
		"frame size":    "[listen]\nmax_frame_bytes = 100\n",
		"log level":     "[log]\nlevel = \"loud\"\n",
		"unknown key":   "[output]\ncolour = true\n",
		"bad toml":      "[output\n",
	}
	for name, body := range cases {
		_, err := Load(writeConfig(t, body))
		assert.Error(t, err, name)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestTemplateLoadsAsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, WriteTemplate(path, false))
	assert.Error(t, WriteTemplate(path, false))
	require.NoError(t, WriteTemplate(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	want := Default()
	want.Listen.CorsOrigins = []string{"http://localhost:3000"}
	assert.Equal(t, want, cfg)
}

func TestEncodeRoundTrips(t *testing.T) {
	cfg := Default()
	cfg.Output.Format = OutputJSON
	cfg.Listen.CorsOrigins = []string{"http://example.test"}

	raw, err := Encode(cfg)
	require.NoError(t, err)

	var back Config
	_, err = burnt.Decode(string(raw), &back)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
	assert.NoError(t, Validate(back))
}
