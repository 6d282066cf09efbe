package options

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/danmuck/dhcpopt/internal/protocol/tlv"
	"github.com/rs/zerolog/log"
)

var topLevelScan = tlv.Config[Option]{
	Sentinels: true,
	Sentinel:  func(tag uint8) Option { return Option{Code: Code(tag)} },
	Decode:    decodeOption,
}

func decodeOption(tag uint8, value []byte) (Option, error) {
	e, ok := catalog[Code(tag)]
	if !ok {
		return Option{}, fmt.Errorf("%w: option %d", ErrUnknownTag, tag)
	}
	v, err := e.decode(value)
	if err != nil {
		return Option{}, fmt.Errorf("option %d: %w", tag, err)
	}
	return Option{Code: Code(tag), Value: v}, nil
}

// Decode decodes a DHCP options region into typed options in wire order.
// It never fails: unknown and malformed records are dropped, and a record
// that runs past the end of b stops decoding with the prefix already read.
func Decode(b []byte) []Option {
	return tlv.Scan(b, topLevelScan).Items
}

// Report is the outcome of Inspect.
type Report struct {
	Options []Option
	// Length is len of the decoded buffer.
	Length int
	// Consumed is the number of bytes examined before decoding stopped.
	Consumed int
	Skipped  []tlv.Skip
	Ended    bool
	// Err is the truncation that stopped decoding early, if any.
	Err error
}

// Truncated reports that decoding stopped on a record that ran past the end
// of the buffer.
func (r Report) Truncated() bool { return r.Err != nil }

// Complete reports that decoding neither skipped a record nor stopped early.
func (r Report) Complete() bool {
	return r.Err == nil && len(r.Skipped) == 0
}

func (r Report) MarshalJSON() ([]byte, error) {
	type skip struct {
		Offset int    `json:"offset"`
		Tag    uint8  `json:"tag"`
		Length uint8  `json:"length"`
		Reason string `json:"reason"`
		Error  string `json:"error"`
	}
	skipped := make([]skip, 0, len(r.Skipped))
	for _, s := range r.Skipped {
		skipped = append(skipped, skip{s.Offset, s.Tag, s.Length, SkipReason(s.Err), s.Err.Error()})
	}
	var truncated string
	if r.Err != nil {
		truncated = r.Err.Error()
	}
	return json.Marshal(struct {
		Options   []Option `json:"options"`
		Length    int      `json:"length"`
		Consumed  int      `json:"consumed"`
		Ended     bool     `json:"ended"`
		Skipped   []skip   `json:"skipped"`
		Truncated string   `json:"truncated,omitempty"`
	}{r.Options, r.Length, r.Consumed, r.Ended, skipped, truncated})
}

// Skip reasons used in reports and metrics labels.
const (
	ReasonUnknownTag     = "unknown_tag"
	ReasonMalformedValue = "malformed_value"
	// ReasonTruncated marks a relay sub-option stream that ran out inside an
	// otherwise intact option 82.
	ReasonTruncated = "truncated"
)

// SkipReason classifies the error of a skipped record.
func SkipReason(err error) string {
	switch {
	case errors.Is(err, ErrUnknownTag):
		return ReasonUnknownTag
	case errors.Is(err, tlv.ErrTruncated):
		return ReasonTruncated
	}
	return ReasonMalformedValue
}

// relaySkips re-scans every decoded option 82 and returns the sub-option
// records it dropped, with offsets relative to b.
func relaySkips(b []byte, res tlv.Result[Option]) []tlv.Skip {
	var out []tlv.Skip
	for i, o := range res.Items {
		if o.Code != OptRelayAgentInformation {
			continue
		}
		start := res.Offsets[i] + tlv.HeaderLen
		end := start + int(b[res.Offsets[i]+1])
		nested := InspectRelay(b[start:end])
		for _, sk := range nested.Skipped {
			sk.Offset += start
			out = append(out, sk)
		}
		if nested.Err != nil {
			pos := start + nested.Consumed
			sk := tlv.Skip{Offset: pos, Tag: b[pos], Err: fmt.Errorf("relay sub-options: %w", nested.Err)}
			if pos+1 < end {
				sk.Length = b[pos+1]
			}
			out = append(out, sk)
		}
	}
	return out
}

// Inspect decodes b like Decode and also reports what was skipped and where
// decoding stopped. Skipped includes sub-options dropped inside option 82.
func Inspect(b []byte) Report {
	res := tlv.Scan(b, topLevelScan)
	r := Report{
		Options:  res.Items,
		Length:   len(b),
		Consumed: res.Consumed,
		Skipped:  res.Skipped,
		Ended:    res.Ended,
		Err:      res.Err,
	}
	if nested := relaySkips(b, res); len(nested) > 0 {
		r.Skipped = append(append(make([]tlv.Skip, 0, len(res.Skipped)+len(nested)), res.Skipped...), nested...)
		slices.SortStableFunc(r.Skipped, func(x, y tlv.Skip) int { return x.Offset - y.Offset })
	}
	for _, s := range r.Skipped {
		log.Debug().
			Int("offset", s.Offset).
			Uint8("tag", s.Tag).
			Uint8("length", s.Length).
			Str("reason", SkipReason(s.Err)).
			Err(s.Err).
			Msg("options.Inspect skipped record")
	}
	if r.Err != nil {
		log.Warn().
			Int("consumed", r.Consumed).
			Int("length", r.Length).
			Err(r.Err).
			Msg("options.Inspect stopped early")
	}
	log.Debug().Int("options", len(r.Options)).Int("consumed", r.Consumed).Bool("ended", r.Ended).Msg("options.Inspect done")
	return r
}
