package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/danmuck/dhcpopt/internal/capture"
	"github.com/danmuck/dhcpopt/internal/config"
	"github.com/danmuck/dhcpopt/internal/pipeline"
	"github.com/spf13/cobra"
)

type decodeFlags struct {
	hex         string
	inputFormat string
	format      string
	frame       bool
	report      bool
	validate    bool
}

func newDecodeCmd(a *app) *cobra.Command {
	var f decodeFlags
	cmd := &cobra.Command{
		Use:   "decode [file|-]",
		Short: "Decode DHCP options from a hex dump, raw datagram or pcap capture",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDecode(cmd, args, f)
		},
	}
	cmd.Flags().StringVar(&f.hex, "hex", "", "hex text to decode instead of reading a file")
	cmd.Flags().StringVar(&f.inputFormat, "input-format", "", "input encoding: auto|hex|raw|pcap")
	cmd.Flags().StringVarP(&f.format, "format", "o", "", "output format: text|json")
	cmd.Flags().BoolVar(&f.frame, "frame", false, "input is a whole BOOTP datagram")
	cmd.Flags().BoolVar(&f.report, "report", false, "include per-region decode reports")
	cmd.Flags().BoolVar(&f.validate, "validate", false, "check required and forbidden options per message type")
	return cmd
}

// settings merges changed flags over the loaded config.
func (f decodeFlags) settings(cmd *cobra.Command, cfg config.Config) (config.Config, error) {
	flags := cmd.Flags()
	if flags.Changed("input-format") {
		cfg.Input.Format = f.inputFormat
	}
	if flags.Changed("format") {
		cfg.Output.Format = f.format
	}
	if flags.Changed("frame") {
		cfg.Input.Frame = f.frame
	}
	if flags.Changed("report") {
		cfg.Output.Report = f.report
	}
	if flags.Changed("validate") {
		cfg.Output.Validate = f.validate
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func (a *app) runDecode(cmd *cobra.Command, args []string, f decodeFlags) error {
	cfg, err := f.settings(cmd, a.cfg)
	if err != nil {
		return err
	}

	source := "-"
	var data []byte
	switch {
	case cmd.Flags().Changed("hex"):
		if len(args) > 0 {
			return errors.New("decode: --hex and a file argument are mutually exclusive")
		}
		source = "hex"
		data = []byte(f.hex)
	case len(args) == 0 || args[0] == "-":
		data, err = io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxInputBytes+1))
	default:
		source = args[0]
		data, err = readFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("decode: read %s: %w", source, err)
	}
	if len(data) > maxInputBytes {
		return fmt.Errorf("decode: %s exceeds %d bytes", source, maxInputBytes)
	}

	format := cfg.InputFormat()
	if cmd.Flags().Changed("hex") && format == pipeline.FormatAuto {
		format = pipeline.FormatHex
	}
	if format == pipeline.FormatAuto {
		format = pipeline.Sniff(data)
	}

	results, err := decodeInput(source, data, format, cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	var failed int
	for i, res := range results {
		if err := emit(out, res, cfg, i > 0); err != nil {
			return err
		}
		if res.Err != nil || res.Validation != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("decode: %d of %d inputs failed to parse or validate", failed, len(results))
	}
	return nil
}

// maxInputBytes bounds file and stdin reads; pcap captures may hold many
// datagrams.
const maxInputBytes = 64 << 20

func readFile(path string) ([]byte, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return io.ReadAll(io.LimitReader(fh, maxInputBytes+1))
}

func decodeInput(source string, data []byte, format pipeline.Format, cfg config.Config) ([]pipeline.Result, error) {
	opts := cfg.PipelineOptions()
	switch format {
	case pipeline.FormatPCAP:
		packets, err := capture.FromPCAP(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		opts.Frame = true
		results := make([]pipeline.Result, 0, len(packets))
		for _, p := range packets {
			res := pipeline.Process(p.Source(), p.Payload, opts)
			res.Time = p.Time
			results = append(results, res)
		}
		return results, nil
	case pipeline.FormatHex:
		b, err := pipeline.DecodeHex(string(data))
		if err != nil {
			return nil, err
		}
		data = b
	}
	return []pipeline.Result{pipeline.Process(source, data, opts)}, nil
}

func emit(w io.Writer, res pipeline.Result, cfg config.Config, separate bool) error {
	if cfg.Output.Format == config.OutputJSON {
		raw, err := pipeline.JSON(res, cfg.View())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", raw)
		return err
	}
	if separate {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return pipeline.Render(w, res, cfg.View())
}
