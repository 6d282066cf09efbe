package frame

import (
	"bytes"
	"errors"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/danmuck/dhcpopt/internal/protocol/options"
	"github.com/danmuck/dhcpopt/internal/testutil/testlog"
	"github.com/google/go-cmp/cmp"
	"github.com/insomniacslk/dhcp/dhcpv4"
	"github.com/krolaw/dhcp4"
)

var addrComparer = cmp.Comparer(func(a, b netip.Addr) bool { return a == b })

func codes(opts []options.Option) []options.Code {
	out := make([]options.Code, 0, len(opts))
	for _, o := range opts {
		out = append(out, o.Code)
	}
	return out
}

func TestParseInsomniacslkOffer(t *testing.T) {
	testlog.Start(t)

	mac := net.HardwareAddr{0x02, 0x00, 0x5e, 0x10, 0x20, 0x30}
	pkt, err := dhcpv4.New(
		dhcpv4.WithHwAddr(mac),
		dhcpv4.WithTransactionID(dhcpv4.TransactionID{1, 2, 3, 4}),
		dhcpv4.WithYourIP(net.IP{192, 168, 1, 50}),
		dhcpv4.WithMessageType(dhcpv4.MessageTypeOffer),
		dhcpv4.WithOption(dhcpv4.OptServerIdentifier(net.IP{192, 168, 1, 1})),
		dhcpv4.WithOption(dhcpv4.OptIPAddressLeaseTime(time.Hour)),
		dhcpv4.WithOption(dhcpv4.OptSubnetMask(net.IPMask{255, 255, 255, 0})),
		dhcpv4.WithOption(dhcpv4.OptRouter(net.IP{192, 168, 1, 1}, net.IP{192, 168, 1, 2})),
		dhcpv4.WithOption(dhcpv4.OptHostName("node-1")),
		dhcpv4.WithOption(dhcpv4.OptRelayAgentInfo(
			dhcpv4.OptGeneric(dhcpv4.GenericOptionCode(1), []byte("eth0:7")),
		)),
	)
	if err != nil {
		t.Fatalf("build packet: %v", err)
	}

	f, err := Parse(pkt.ToBytes())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Header.XID != 0x01020304 {
		t.Fatalf("unexpected xid %#x", f.Header.XID)
	}
	if f.Header.YIAddr != netip.MustParseAddr("192.168.1.50") {
		t.Fatalf("unexpected yiaddr %v", f.Header.YIAddr)
	}
	if !bytes.Equal(f.Header.HardwareAddr(), mac) {
		t.Fatalf("unexpected chaddr %v", f.Header.HardwareAddr())
	}
	if mt, ok := f.MessageType(); !ok || mt != options.MessageOffer {
		t.Fatalf("expected Offer, got %v ok=%v", mt, ok)
	}

	want := map[options.Code]string{
		options.OptSubnetMask:            "SubnetMask(255.255.255.0)",
		options.OptRouter:                "Router([192.168.1.1 192.168.1.2])",
		options.OptHostName:              `HostName("node-1")`,
		options.OptIPAddressLeaseTime:    "IPAddressLeaseTime(3600)",
		options.OptServerIdentifier:      "ServerIdentifier(192.168.1.1)",
		options.OptRelayAgentInformation: "RelayAgentInformation([AgentCircuitID(657468303a37)])",
	}
	for code, s := range want {
		o, ok := options.Find(f.Options, code)
		if !ok {
			t.Fatalf("option %v missing from %v", code, f.Options)
		}
		if o.String() != s {
			t.Fatalf("option %v: expected %s, got %s", code, s, o)
		}
	}
	if last := f.Options[len(f.Options)-1]; last.Code != options.OptEnd {
		t.Fatalf("expected End last, got %v", last)
	}
	if len(f.Sections) != 1 || !f.Sections[0].Report.Complete() || !f.Sections[0].Report.Ended {
		t.Fatalf("unexpected sections %+v", f.Sections)
	}
}

func TestParseKrolawRequest(t *testing.T) {
	testlog.Start(t)

	mac := net.HardwareAddr{0xaa, 0xbb, 0xcc, 0x00, 0x11, 0x22}
	p := dhcp4.RequestPacket(dhcp4.Request, mac, nil, []byte{0xde, 0xad, 0xbe, 0xef}, true, []dhcp4.Option{
		{Code: dhcp4.OptionRequestedIPAddress, Value: []byte{192, 168, 1, 50}},
		{Code: dhcp4.OptionParameterRequestList, Value: []byte{1, 3, 6, 15}},
		{Code: dhcp4.OptionHostName, Value: []byte("krolaw")},
	})

	f, err := ReadFrame(bytes.NewReader(p), DefaultLimits())
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if f.Header.Op != OpRequest || f.Header.XID != 0xdeadbeef || !f.Header.Broadcast() {
		t.Fatalf("unexpected header %+v", f.Header)
	}
	if !bytes.Equal(f.Header.CHAddr[:6], mac) {
		t.Fatalf("unexpected chaddr % x", f.Header.CHAddr)
	}
	wantCodes := []options.Code{
		options.OptMessageType,
		options.OptRequestedIPAddress,
		options.OptParamRequestList,
		options.OptHostName,
		options.OptEnd,
	}
	if diff := cmp.Diff(wantCodes, codes(f.Options)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
	if mt, _ := f.MessageType(); mt != options.MessageRequest {
		t.Fatalf("expected Request, got %v", mt)
	}
	prl, _ := options.Find(f.Options, options.OptParamRequestList)
	if diff := cmp.Diff(options.CodeList{1, 3, 6, 15}, prl.Value); diff != "" {
		t.Fatalf("param request list mismatch (-want +got):\n%s", diff)
	}
}

func TestParseOptionOverload(t *testing.T) {
	testlog.Start(t)

	h := Header{Op: OpReply, HType: 1, HLen: 6}
	copy(h.File[:], []byte{51, 4, 0, 0, 0x0e, 0x10, 255})
	copy(h.SName[:], []byte{3, 4, 10, 0, 0, 254, 255})
	b := append(EncodeHeader(h), 53, 1, 5, 52, 1, 3, 54, 4, 10, 0, 0, 1, 255)

	f, err := Parse(b)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []options.Code{
		options.OptMessageType, options.OptOptionOverload, options.OptServerIdentifier, options.OptEnd,
		options.OptIPAddressLeaseTime, options.OptEnd,
		options.OptRouter, options.OptEnd,
	}
	if diff := cmp.Diff(want, codes(f.Options)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
	regions := []Region{}
	for _, s := range f.Sections {
		regions = append(regions, s.Region)
	}
	if diff := cmp.Diff([]Region{RegionOptions, RegionFile, RegionSName}, regions); diff != "" {
		t.Fatalf("regions mismatch (-want +got):\n%s", diff)
	}
	if f.ServerName() != "" || f.BootFile() != "" {
		t.Fatalf("overloaded fields reported as text: sname=%q file=%q", f.ServerName(), f.BootFile())
	}
}

func TestParseFileOnlyOverloadKeepsServerName(t *testing.T) {
	testlog.Start(t)

	h := Header{Op: OpReply}
	copy(h.SName[:], "tftp.example")
	copy(h.File[:], []byte{66, 3, 'a', 'b', 'c', 255})
	b := append(EncodeHeader(h), 52, 1, 1, 255)

	f, err := Parse(b)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.ServerName() != "tftp.example" || f.BootFile() != "" {
		t.Fatalf("unexpected sname=%q file=%q", f.ServerName(), f.BootFile())
	}
	o, ok := options.Find(f.Options, options.OptTFTPServerName)
	if !ok || o.String() != `TFTPServerName("abc")` {
		t.Fatalf("expected option 66 from file field, got %v", f.Options)
	}
}

func TestParseTruncatedOptions(t *testing.T) {
	testlog.Start(t)

	b := append(EncodeHeader(Header{Op: OpRequest}), 53, 1, 1, 12, 20, 'a')
	f, err := Parse(b)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !f.Truncated() {
		t.Fatalf("expected truncated frame")
	}
	if diff := cmp.Diff([]options.Code{options.OptMessageType}, codes(f.Options)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestParseWithoutCookieIsPlainBOOTP(t *testing.T) {
	testlog.Start(t)

	b := make([]byte, 300)
	b[0] = OpReply
	copy(b[snameOffset:], "boot-server")
	f, err := Parse(b)
	if !errors.Is(err, ErrBadCookie) {
		t.Fatalf("expected ErrBadCookie, got %v", err)
	}
	if f.Header.Op != OpReply || f.ServerName() != "boot-server" || len(f.Options) != 0 {
		t.Fatalf("unexpected frame %+v", f)
	}
	if _, err := Parse(b[:HeaderLen]); !errors.Is(err, ErrBadCookie) {
		t.Fatalf("expected ErrBadCookie for header-only datagram, got %v", err)
	}
}

func TestParseShortHeader(t *testing.T) {
	_, err := Parse(make([]byte, HeaderLen-1))
	if !errors.Is(err, ErrShortHeader) {
		t.Fatalf("expected ErrShortHeader, got %v", err)
	}
	_, err = ReadFrame(bytes.NewReader([]byte{1, 2, 3}), DefaultLimits())
	if !errors.Is(err, ErrShortHeader) {
		t.Fatalf("expected ErrShortHeader, got %v", err)
	}
}

func TestReadFrameTooLarge(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader(make([]byte, 301)), Limits{MaxFrameBytes: 300})
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}
	if _, err := ReadFrame(bytes.NewReader(EncodeHeader(Header{})), Limits{MaxFrameBytes: OptionsOffset}); err != nil {
		t.Fatalf("frame at limit rejected: %v", err)
	}
}

func TestEncodeDecodeHeader(t *testing.T) {
	in := Header{
		Op: OpReply, HType: 1, HLen: 6, Hops: 2,
		XID: 0xCAFEBABE, Secs: 9, Flags: FlagBroadcast,
		CIAddr: netip.MustParseAddr("10.0.0.2"),
		YIAddr: netip.MustParseAddr("10.0.0.3"),
		SIAddr: netip.MustParseAddr("10.0.0.4"),
		GIAddr: netip.MustParseAddr("10.0.0.5"),
		CHAddr: [16]byte{1, 2, 3, 4, 5, 6},
	}
	copy(in.SName[:], "srv")
	copy(in.File[:], "pxelinux.0")

	b := EncodeHeader(in)
	if len(b) != OptionsOffset {
		t.Fatalf("expected %d bytes, got %d", OptionsOffset, len(b))
	}
	out, err := DecodeHeader(b)
	if err != nil {
		t.Fatalf("decode header: %v", err)
	}
	if diff := cmp.Diff(in, out, addrComparer); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}
	if zero, _ := DecodeHeader(EncodeHeader(Header{})); zero.CIAddr != netip.IPv4Unspecified() {
		t.Fatalf("expected unset address to decode as 0.0.0.0, got %v", zero.CIAddr)
	}
}
