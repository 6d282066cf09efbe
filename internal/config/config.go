package config

import (
	"bytes"
	"fmt"
	"strings"

	burnt "github.com/BurntSushi/toml"
	"github.com/danmuck/dhcpopt/internal/logging"
	"github.com/danmuck/dhcpopt/internal/pipeline"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Input  InputConfig  `toml:"input"`
	Output OutputConfig `toml:"output"`
	Listen ListenConfig `toml:"listen"`
	Log    LogConfig    `toml:"log"`
}

type InputConfig struct {
	Format string `toml:"format"`
	// Frame treats input as whole BOOTP datagrams instead of bare options.
	Frame bool `toml:"frame"`
}

type OutputConfig struct {
	Format   string `toml:"format"`
	Validate bool   `toml:"validate"`
	Report   bool   `toml:"report"`
}

type ListenConfig struct {
	Addr          string   `toml:"addr"`
	MetricsAddr   string   `toml:"metrics_addr"`
	CorsOrigins   []string `toml:"cors_origins"`
	MaxFrameBytes int      `toml:"max_frame_bytes"`
	WritePCAP     string   `toml:"write_pcap"`
	// AdminToken, when set, is required as a bearer token on POST /decode.
	AdminToken string `toml:"admin_token"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

const (
	OutputText = "text"
	OutputJSON = "json"
)

func Default() Config {
	return Config{
		Input:  InputConfig{Format: string(pipeline.FormatAuto)},
		Output: OutputConfig{Format: OutputText},
		Listen: ListenConfig{
			Addr:          "0.0.0.0:67",
			MetricsAddr:   "127.0.0.1:9167",
			CorsOrigins:   []string{},
			MaxFrameBytes: 65507,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load overlays the keys defined in the file at path on top of Default and
// validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw Config
	meta, err := burnt.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("input", "format") {
		cfg.Input.Format = strings.TrimSpace(raw.Input.Format)
	}
	if meta.IsDefined("input", "frame") {
		cfg.Input.Frame = raw.Input.Frame
	}
	if meta.IsDefined("output", "format") {
		cfg.Output.Format = strings.TrimSpace(raw.Output.Format)
	}
	if meta.IsDefined("output", "validate") {
		cfg.Output.Validate = raw.Output.Validate
	}
	if meta.IsDefined("output", "report") {
		cfg.Output.Report = raw.Output.Report
	}
	if meta.IsDefined("listen", "addr") {
		cfg.Listen.Addr = strings.TrimSpace(raw.Listen.Addr)
	}
	if meta.IsDefined("listen", "metrics_addr") {
		cfg.Listen.MetricsAddr = strings.TrimSpace(raw.Listen.MetricsAddr)
	}
	if meta.IsDefined("listen", "cors_origins") {
		cfg.Listen.CorsOrigins = normalizeOrigins(raw.Listen.CorsOrigins)
	}
	if meta.IsDefined("listen", "max_frame_bytes") {
		cfg.Listen.MaxFrameBytes = raw.Listen.MaxFrameBytes
	}
	if meta.IsDefined("listen", "write_pcap") {
		cfg.Listen.WritePCAP = strings.TrimSpace(raw.Listen.WritePCAP)
	}
	if meta.IsDefined("listen", "admin_token") {
		cfg.Listen.AdminToken = strings.TrimSpace(raw.Listen.AdminToken)
	}
	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if _, err := pipeline.ParseFormat(cfg.Input.Format); err != nil {
		return fmt.Errorf("input.format: %w", err)
	}
	switch cfg.Output.Format {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("output.format: unknown format %q", cfg.Output.Format)
	}
	if strings.TrimSpace(cfg.Listen.Addr) == "" {
		return fmt.Errorf("listen.addr is required")
	}
	if strings.TrimSpace(cfg.Listen.MetricsAddr) == "" {
		return fmt.Errorf("listen.metrics_addr is required")
	}
	if cfg.Listen.MaxFrameBytes < 240 || cfg.Listen.MaxFrameBytes > 65535 {
		return fmt.Errorf("listen.max_frame_bytes must be within [240, 65535], got %d", cfg.Listen.MaxFrameBytes)
	}
	if _, ok := logging.ParseLevel(cfg.Log.Level); !ok {
		return fmt.Errorf("log.level: unknown level %q", cfg.Log.Level)
	}
	return nil
}

// Encode renders cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("config encode failed: %w", err)
	}
	return buf.Bytes(), nil
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimRight(strings.TrimSpace(origin), "/")
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
