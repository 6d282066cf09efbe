package frame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"

	"github.com/danmuck/dhcpopt/internal/protocol/options"
)

const (
	// HeaderLen is the fixed BOOTP header up to and including file.
	HeaderLen = 236
	// OptionsOffset is where the options region starts, after the cookie.
	OptionsOffset = HeaderLen + 4

	MagicCookie uint32 = 0x63825363

	OpRequest uint8 = 1
	OpReply   uint8 = 2

	FlagBroadcast uint16 = 0x8000
)

const (
	snameOffset = 44
	snameLen    = 64
	fileOffset  = snameOffset + snameLen
	fileLen     = 128
)

var (
	ErrShortHeader   = errors.New("frame: short fixed header")
	ErrBadCookie     = errors.New("frame: missing DHCP magic cookie")
	ErrFrameTooLarge = errors.New("frame: datagram too large")
)

// Header is the fixed BOOTP header.
type Header struct {
	Op     uint8
	HType  uint8
	HLen   uint8
	Hops   uint8
	XID    uint32
	Secs   uint16
	Flags  uint16
	CIAddr netip.Addr
	YIAddr netip.Addr
	SIAddr netip.Addr
	GIAddr netip.Addr
	CHAddr [16]byte
	SName  [snameLen]byte
	File   [fileLen]byte
}

// HardwareAddr returns the first HLen bytes of CHAddr.
func (h Header) HardwareAddr() net.HardwareAddr {
	n := int(h.HLen)
	if n > len(h.CHAddr) {
		n = len(h.CHAddr)
	}
	return net.HardwareAddr(bytes.Clone(h.CHAddr[:n]))
}

func (h Header) Broadcast() bool { return h.Flags&FlagBroadcast != 0 }

// Region names an options area of a datagram.
type Region string

const (
	RegionOptions Region = "options"
	RegionFile    Region = "file"
	RegionSName   Region = "sname"
)

// Section is the decode report of one region.
type Section struct {
	Region Region         `json:"region"`
	Report options.Report `json:"report"`
}

// Frame is one parsed DHCP datagram.
type Frame struct {
	Header Header
	// Options holds the options region followed by any overloaded file and
	// sname regions, in that order.
	Options  []options.Option
	Sections []Section
	Overload options.Overload
}

// ServerName is the sname field as text, empty when it carries options.
func (f Frame) ServerName() string {
	if f.Overload.SName() {
		return ""
	}
	return cString(f.Header.SName[:])
}

// BootFile is the file field as text, empty when it carries options.
func (f Frame) BootFile() string {
	if f.Overload.File() {
		return ""
	}
	return cString(f.Header.File[:])
}

// MessageType returns option 53, if present.
func (f Frame) MessageType() (options.MessageType, bool) {
	return options.MessageTypeOf(f.Options)
}

// Truncated reports that any region stopped on a record running past its end.
func (f Frame) Truncated() bool {
	for _, s := range f.Sections {
		if s.Report.Truncated() {
			return true
		}
	}
	return false
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// Limits constrains datagram reads.
type Limits struct {
	MaxFrameBytes int
}

func DefaultLimits() Limits {
	return Limits{
		// Largest UDP payload over IPv4.
		MaxFrameBytes: 65507,
	}
}

// ReadFrame reads r to EOF as one datagram and parses it.
func ReadFrame(r io.Reader, limits Limits) (Frame, error) {
	b, err := io.ReadAll(io.LimitReader(r, int64(limits.MaxFrameBytes)+1))
	if err != nil {
		return Frame{}, err
	}
	if len(b) > limits.MaxFrameBytes {
		return Frame{}, fmt.Errorf("%w: more than %d bytes", ErrFrameTooLarge, limits.MaxFrameBytes)
	}
	return Parse(b)
}

// Parse decodes a BOOTP datagram and its options. A datagram without the
// magic cookie is returned with its header and ErrBadCookie.
func Parse(b []byte) (Frame, error) {
	h, err := DecodeHeader(b)
	if err != nil {
		return Frame{}, err
	}
	f := Frame{Header: h, Options: []options.Option{}}
	if len(b) < OptionsOffset || binary.BigEndian.Uint32(b[HeaderLen:OptionsOffset]) != MagicCookie {
		return f, ErrBadCookie
	}

	main := options.Inspect(b[OptionsOffset:])
	f.Sections = append(f.Sections, Section{Region: RegionOptions, Report: main})
	f.Options = append(f.Options, main.Options...)

	ov, ok := options.OverloadOf(main.Options)
	if !ok {
		return f, nil
	}
	f.Overload = ov
	if ov.File() {
		r := options.Inspect(h.File[:])
		f.Sections = append(f.Sections, Section{Region: RegionFile, Report: r})
		f.Options = append(f.Options, r.Options...)
	}
	if ov.SName() {
		r := options.Inspect(h.SName[:])
		f.Sections = append(f.Sections, Section{Region: RegionSName, Report: r})
		f.Options = append(f.Options, r.Options...)
	}
	return f, nil
}

func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderLen {
		return Header{}, fmt.Errorf("%w: %d bytes", ErrShortHeader, len(b))
	}
	h := Header{
		Op:     b[0],
		HType:  b[1],
		HLen:   b[2],
		Hops:   b[3],
		XID:    binary.BigEndian.Uint32(b[4:8]),
		Secs:   binary.BigEndian.Uint16(b[8:10]),
		Flags:  binary.BigEndian.Uint16(b[10:12]),
		CIAddr: netip.AddrFrom4([4]byte(b[12:16])),
		YIAddr: netip.AddrFrom4([4]byte(b[16:20])),
		SIAddr: netip.AddrFrom4([4]byte(b[20:24])),
		GIAddr: netip.AddrFrom4([4]byte(b[24:28])),
	}
	copy(h.CHAddr[:], b[28:44])
	copy(h.SName[:], b[snameOffset:fileOffset])
	copy(h.File[:], b[fileOffset:HeaderLen])
	return h, nil
}

// EncodeHeader writes h followed by the magic cookie. Unset addresses are
// written as 0.0.0.0.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, OptionsOffset)
	buf[0] = h.Op
	buf[1] = h.HType
	buf[2] = h.HLen
	buf[3] = h.Hops
	binary.BigEndian.PutUint32(buf[4:8], h.XID)
	binary.BigEndian.PutUint16(buf[8:10], h.Secs)
	binary.BigEndian.PutUint16(buf[10:12], h.Flags)
	putAddr(buf[12:16], h.CIAddr)
	putAddr(buf[16:20], h.YIAddr)
	putAddr(buf[20:24], h.SIAddr)
	putAddr(buf[24:28], h.GIAddr)
	copy(buf[28:44], h.CHAddr[:])
	copy(buf[snameOffset:fileOffset], h.SName[:])
	copy(buf[fileOffset:HeaderLen], h.File[:])
	binary.BigEndian.PutUint32(buf[HeaderLen:OptionsOffset], MagicCookie)
	return buf
}

func putAddr(dst []byte, a netip.Addr) {
	if a.Is4() {
		v := a.As4()
		copy(dst, v[:])
	}
}
