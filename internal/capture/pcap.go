// Package capture feeds DHCP datagrams from pcap files and UDP sockets.
package capture

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/rs/zerolog/log"
)

const (
	ServerPort = 67
	ClientPort = 68
)

// Packet is one DHCP datagram and where it came from.
type Packet struct {
	Time    time.Time
	Src     netip.AddrPort
	Dst     netip.AddrPort
	Payload []byte
}

func (p Packet) Source() string {
	if !p.Src.IsValid() {
		return "unknown"
	}
	return fmt.Sprintf("%s->%s", p.Src, p.Dst)
}

func isDHCPPort(port layers.UDPPort) bool {
	return port == ServerPort || port == ClientPort
}

type packetSource interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// FromPCAP reads a pcap or pcapng capture and returns the payloads of UDP
// datagrams to or from the DHCP ports, in capture order.
func FromPCAP(r io.Reader) ([]Packet, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("capture: read magic: %w", err)
	}

	var src packetSource
	if bytes.Equal(magic, []byte{0x0a, 0x0d, 0x0d, 0x0a}) {
		src, err = pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
	} else {
		src, err = pcapgo.NewReader(br)
	}
	if err != nil {
		return nil, fmt.Errorf("capture: open pcap: %w", err)
	}

	out := make([]Packet, 0)
	seen := 0
	for {
		data, ci, err := src.ReadPacketData()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, fmt.Errorf("capture: read packet %d: %w", seen, err)
		}
		seen++
		p, ok := extract(gopacket.NewPacket(data, src.LinkType(), gopacket.Default))
		if !ok {
			continue
		}
		p.Time = ci.Timestamp
		out = append(out, p)
	}
	log.Debug().Int("packets", seen).Int("dhcp", len(out)).Msg("capture.FromPCAP done")
	return out, nil
}

func extract(pkt gopacket.Packet) (Packet, bool) {
	udpLayer := pkt.Layer(layers.LayerTypeUDP)
	if udpLayer == nil {
		return Packet{}, false
	}
	udp := udpLayer.(*layers.UDP)
	if !isDHCPPort(udp.SrcPort) && !isDHCPPort(udp.DstPort) {
		return Packet{}, false
	}
	p := Packet{Payload: bytes.Clone(udp.Payload)}
	if ipLayer := pkt.Layer(layers.LayerTypeIPv4); ipLayer != nil {
		ip := ipLayer.(*layers.IPv4)
		src, _ := netip.AddrFromSlice(ip.SrcIP.To4())
		dst, _ := netip.AddrFromSlice(ip.DstIP.To4())
		p.Src = netip.AddrPortFrom(src, uint16(udp.SrcPort))
		p.Dst = netip.AddrPortFrom(dst, uint16(udp.DstPort))
	}
	return p, true
}

// PCAPWriter records packets as Ethernet/IPv4/UDP frames in pcap format.
type PCAPWriter struct {
	w *pcapgo.Writer
	n int
}

// NewPCAPWriter writes the pcap file header to w.
func NewPCAPWriter(w io.Writer) (*PCAPWriter, error) {
	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(65535, layers.LinkTypeEthernet); err != nil {
		return nil, fmt.Errorf("capture: write pcap header: %w", err)
	}
	return &PCAPWriter{w: pw}, nil
}

func (pw *PCAPWriter) Write(p Packet) error {
	data, err := encodeUDP(p)
	if err != nil {
		return fmt.Errorf("capture: encode packet %d: %w", pw.n, err)
	}
	ts := p.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	ci := gopacket.CaptureInfo{Timestamp: ts, CaptureLength: len(data), Length: len(data)}
	if err := pw.w.WritePacket(ci, data); err != nil {
		return fmt.Errorf("capture: write packet %d: %w", pw.n, err)
	}
	pw.n++
	return nil
}

// WritePCAP writes packets to a new pcap stream.
func WritePCAP(w io.Writer, packets []Packet) error {
	pw, err := NewPCAPWriter(w)
	if err != nil {
		return err
	}
	for _, p := range packets {
		if err := pw.Write(p); err != nil {
			return err
		}
	}
	return nil
}

func encodeUDP(p Packet) ([]byte, error) {
	src, dst := p.Src, p.Dst
	if !src.IsValid() {
		src = netip.AddrPortFrom(netip.IPv4Unspecified(), ClientPort)
	}
	if !dst.IsValid() {
		dst = netip.AddrPortFrom(netip.AddrFrom4([4]byte{255, 255, 255, 255}), ServerPort)
	}
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 1},
		DstMAC:       net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.IP(src.Addr().AsSlice()),
		DstIP:    net.IP(dst.Addr().AsSlice()),
	}
	udp := &layers.UDP{
		SrcPort: layers.UDPPort(src.Port()),
		DstPort: layers.UDPPort(dst.Port()),
	}
	if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
		return nil, err
	}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, eth, ip, udp, gopacket.Payload(p.Payload)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
