package main

import (
	"fmt"
	"io"
	"os"

	"github.com/danmuck/dhcpopt/internal/config"
	"github.com/danmuck/dhcpopt/internal/observability"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app is the state shared by subcommands once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	cfg        config.Config
	stdin      io.Reader
	stdout     io.Writer
}

func main() {
	observability.InitLogger("dhcpoptctl")
	a := &app{stdin: os.Stdin, stdout: os.Stdout}
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dhcpoptctl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "dhcpoptctl",
		Short:         "Decode DHCP options from hex dumps, datagrams, captures and the wire",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a TOML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (trace|debug|info|warn|error|off)")

	root.AddCommand(
		newDecodeCmd(a),
		newCatalogCmd(a),
		newListenCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) load() error {
	a.cfg = config.Default()
	if a.configPath != "" {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if a.logLevel != "" {
		a.cfg.Log.Level = a.logLevel
	}
	if err := config.Validate(a.cfg); err != nil {
		return err
	}
	if a.configPath != "" || a.logLevel != "" {
		zerolog.SetGlobalLevel(a.cfg.LogLevel())
	}
	return nil
}
