package config

import (
	"github.com/danmuck/dhcpopt/internal/logging"
	"github.com/danmuck/dhcpopt/internal/pipeline"
	"github.com/danmuck/dhcpopt/internal/protocol/frame"
	"github.com/rs/zerolog"
)

func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{Frame: c.Input.Frame, Validate: c.Output.Validate}
}

func (c Config) View() pipeline.View {
	return pipeline.View{Report: c.Output.Report}
}

func (c Config) InputFormat() pipeline.Format {
	f, err := pipeline.ParseFormat(c.Input.Format)
	if err != nil {
		return pipeline.FormatAuto
	}
	return f
}

func (c Config) Limits() frame.Limits {
	return frame.Limits{MaxFrameBytes: c.Listen.MaxFrameBytes}
}

func (c Config) LogLevel() zerolog.Level {
	lvl, ok := logging.ParseLevel(c.Log.Level)
	if !ok {
		return zerolog.InfoLevel
	}
	return lvl
}
