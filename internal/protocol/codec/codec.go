// Package codec decodes single DHCP option values.
//
// Every decoder receives exactly the value bytes of one record (tag and
// length already consumed) and either consumes all of them or fails.
// Returned values never alias the input slice.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"
	"unicode/utf8"
)

var (
	ErrMalformedValue = errors.New("codec: malformed value")
	ErrInvalidLength  = fmt.Errorf("%w: invalid length", ErrMalformedValue)
	ErrInvalidBool    = fmt.Errorf("%w: invalid bool value", ErrMalformedValue)
	ErrInvalidUTF8    = fmt.Errorf("%w: invalid utf-8", ErrMalformedValue)
	ErrUnknownEnum    = fmt.Errorf("%w: unknown enum value", ErrMalformedValue)
)

// IPv4Pair is one (address, mask) entry of a policy filter or static route
// option.
type IPv4Pair struct {
	Addr netip.Addr
	Mask netip.Addr
}

func exact(b []byte, n int) error {
	if len(b) != n {
		return fmt.Errorf("%w: got %d want %d", ErrInvalidLength, len(b), n)
	}
	return nil
}

func multiple(b []byte, n int) error {
	if len(b) == 0 || len(b)%n != 0 {
		return fmt.Errorf("%w: got %d want positive multiple of %d", ErrInvalidLength, len(b), n)
	}
	return nil
}

func Uint8(b []byte) (uint8, error) {
	if err := exact(b, 1); err != nil {
		return 0, err
	}
	return b[0], nil
}

func Uint16(b []byte) (uint16, error) {
	if err := exact(b, 2); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func Uint32(b []byte) (uint32, error) {
	if err := exact(b, 4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func Int32(b []byte) (int32, error) {
	v, err := Uint32(b)
	return int32(v), err
}

// Bool accepts exactly one byte holding 1. Any other byte, 0 included, is
// rejected rather than coerced to false.
func Bool(b []byte) (bool, error) {
	if err := exact(b, 1); err != nil {
		return false, err
	}
	if b[0] != 1 {
		return false, fmt.Errorf("%w: %d", ErrInvalidBool, b[0])
	}
	return true, nil
}

func IPv4(b []byte) (netip.Addr, error) {
	if err := exact(b, 4); err != nil {
		return netip.Addr{}, err
	}
	return netip.AddrFrom4([4]byte(b)), nil
}

// String returns b as a string; the whole slice must be valid UTF-8.
func String(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

// Bytes copies b. Any length is accepted.
func Bytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// IPv4List decodes a non-empty run of 4-byte addresses.
func IPv4List(b []byte) ([]netip.Addr, error) {
	if err := multiple(b, 4); err != nil {
		return nil, err
	}
	out := make([]netip.Addr, 0, len(b)/4)
	for i := 0; i < len(b); i += 4 {
		out = append(out, netip.AddrFrom4([4]byte(b[i:i+4])))
	}
	return out, nil
}

// IPv4Pairs decodes a non-empty run of 8-byte (address, mask) entries.
func IPv4Pairs(b []byte) ([]IPv4Pair, error) {
	if err := multiple(b, 8); err != nil {
		return nil, err
	}
	out := make([]IPv4Pair, 0, len(b)/8)
	for i := 0; i < len(b); i += 8 {
		out = append(out, IPv4Pair{
			Addr: netip.AddrFrom4([4]byte(b[i : i+4])),
			Mask: netip.AddrFrom4([4]byte(b[i+4 : i+8])),
		})
	}
	return out, nil
}

// Uint16List decodes a non-empty run of big-endian 16-bit integers.
func Uint16List(b []byte) ([]uint16, error) {
	if err := multiple(b, 2); err != nil {
		return nil, err
	}
	out := make([]uint16, 0, len(b)/2)
	for i := 0; i < len(b); i += 2 {
		out = append(out, binary.BigEndian.Uint16(b[i:i+2]))
	}
	return out, nil
}

// Enum decodes a single byte and checks it against a closed table.
func Enum[E ~uint8](b []byte, known func(E) bool) (E, error) {
	v, err := Uint8(b)
	if err != nil {
		return 0, err
	}
	e := E(v)
	if !known(e) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownEnum, v)
	}
	return e, nil
}
