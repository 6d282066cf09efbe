package options

import (
	"fmt"

	"github.com/danmuck/dhcpopt/internal/protocol/tlv"
)

var relayScan = tlv.Config[SubOption]{
	Sentinels: false,
	Decode:    decodeSubOption,
}

func decodeSubOption(tag uint8, value []byte) (SubOption, error) {
	e, ok := relayCatalog[SubCode(tag)]
	if !ok {
		return SubOption{}, fmt.Errorf("%w: relay sub-option %d", ErrUnknownTag, tag)
	}
	v, err := e.decode(value)
	if err != nil {
		return SubOption{}, fmt.Errorf("relay sub-option %d: %w", tag, err)
	}
	return SubOption{Code: SubCode(tag), Value: v}, nil
}

// decodeRelay is the value decoder of option 82. Malformed sub-options are
// dropped the same way top-level ones are, so it never fails.
func decodeRelay(b []byte) (Value, error) {
	res := tlv.Scan(b, relayScan)
	return SubOptions(res.Items), nil
}

// DecodeRelay decodes the payload of a Relay Agent Information option.
func DecodeRelay(b []byte) []SubOption {
	return tlv.Scan(b, relayScan).Items
}

// InspectRelay is DecodeRelay with scan diagnostics.
func InspectRelay(b []byte) tlv.Result[SubOption] {
	return tlv.Scan(b, relayScan)
}
