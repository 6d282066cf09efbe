// Package pipeline turns raw input into decoded options. It picks the input
// encoding, optionally parses the BOOTP frame around the options, runs the
// schema checks and records decode metrics.
package pipeline

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danmuck/dhcpopt/internal/observability"
	"github.com/danmuck/dhcpopt/internal/protocol/frame"
	"github.com/danmuck/dhcpopt/internal/protocol/options"
	"github.com/danmuck/dhcpopt/internal/protocol/schema"
	"github.com/rs/zerolog/log"
)

type Format string

const (
	FormatAuto Format = "auto"
	FormatHex  Format = "hex"
	FormatRaw  Format = "raw"
	FormatPCAP Format = "pcap"
)

var ErrUnknownFormat = errors.New("pipeline: unknown input format")

func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FormatAuto, nil
	case FormatAuto, FormatHex, FormatRaw, FormatPCAP:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
}

// pcap and pcapng file magics.
var pcapMagics = []uint32{0xa1b2c3d4, 0xd4c3b2a1, 0xa1b23c4d, 0x4d3cb2a1, 0x0a0d0d0a}

// Sniff guesses the encoding of b. Text made only of hex digits, whitespace
// and separators is hex; a pcap or pcapng magic is pcap; anything else raw.
func Sniff(b []byte) Format {
	if len(b) >= 4 {
		magic := binary.BigEndian.Uint32(b[:4])
		for _, m := range pcapMagics {
			if magic == m {
				return FormatPCAP
			}
		}
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return FormatRaw
	}
	if _, err := DecodeHex(string(b)); err == nil {
		return FormatHex
	}
	return FormatRaw
}

// DecodeHex accepts hex dumps with whitespace, ':' or '-' separators and an
// optional 0x prefix.
func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ':', '-':
			return -1
		}
		return r
	}, s)
	b, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("pipeline: decode hex: %w", err)
	}
	return b, nil
}

// Options controls Process.
type Options struct {
	// Frame parses b as a full BOOTP datagram instead of a bare options region.
	Frame    bool
	Validate bool
}

// Result is one processed input.
type Result struct {
	Source string
	Time   time.Time
	// Header is set when the input was parsed as a frame.
	Header *frame.Header
	// ServerName and BootFile are the sname and file fields as text, empty
	// when they carry overloaded options.
	ServerName string
	BootFile   string
	Options    []options.Option
	Sections   []frame.Section
	Validation error
	// Err is a frame-level failure. Options may still be set for ErrBadCookie.
	Err error
}

// Truncated reports that decoding of any region stopped early.
func (r Result) Truncated() bool {
	for _, s := range r.Sections {
		if s.Report.Truncated() {
			return true
		}
	}
	return false
}

// Skipped counts records dropped across all regions.
func (r Result) Skipped() int {
	n := 0
	for _, s := range r.Sections {
		n += len(s.Report.Skipped)
	}
	return n
}

// Outcome classifies r as one of the observability Frame* results.
func (r Result) Outcome() string {
	switch {
	case errors.Is(r.Err, frame.ErrBadCookie):
		return observability.FrameNoCookie
	case r.Err != nil:
		return observability.FrameError
	case r.Truncated():
		return observability.FrameTruncated
	case r.Validation != nil:
		return observability.FrameInvalid
	}
	return observability.FrameOK
}

// Process decodes b and records metrics for it.
func Process(source string, b []byte, opts Options) Result {
	res := Result{Source: source}
	if opts.Frame {
		f, err := frame.Parse(b)
		res.Err = err
		if err == nil || errors.Is(err, frame.ErrBadCookie) {
			h := f.Header
			res.Header = &h
			res.ServerName = f.ServerName()
			res.BootFile = f.BootFile()
			res.Options = f.Options
			res.Sections = f.Sections
		}
	} else {
		r := options.Inspect(b)
		res.Options = r.Options
		res.Sections = []frame.Section{{Region: frame.RegionOptions, Report: r}}
	}

	for _, s := range res.Sections {
		recordSection(s.Report)
	}

	if opts.Validate && res.Err == nil {
		res.Validation = schema.Validate(res.Options)
	}

	result := res.Outcome()
	observability.RecordFrame(result)

	log.Debug().
		Str("source", source).
		Int("bytes", len(b)).
		Int("options", len(res.Options)).
		Str("result", result).
		Msg("pipeline.Process done")
	return res
}

func recordSection(r options.Report) {
	codes := make([]uint8, 0, len(r.Options))
	for _, o := range r.Options {
		codes = append(codes, uint8(o.Code))
	}
	reasons := make([]string, 0, len(r.Skipped))
	for _, s := range r.Skipped {
		reasons = append(reasons, options.SkipReason(s.Err))
	}
	observability.RecordDecode(r.Length, codes, reasons, r.Truncated())
}
