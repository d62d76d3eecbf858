package hostio

import (
	"fmt"
	"net"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/mdlayher/raw"
	"golang.org/x/net/bpf"
)

// A Sniffer reads whole Ethernet frames from a network interface and decodes
// the IPv4 or IPv6 header itself, for link types or platforms where a raw IP
// protocol-89 socket (Conn) isn't available. A kernel BPF program installed
// at ListenSniffer time keeps protocol-89 filtering off the control-plane
// goroutine's critical path.
type Sniffer struct {
	family Family
	c      net.PacketConn
	ifi    *net.Interface
}

// ListenSniffer opens a raw Ethernet listener on ifi and installs a
// classic BPF filter that passes only IP datagrams carrying OSPF (protocol
// 89), dropping everything else in the kernel before it reaches Go.
func ListenSniffer(family Family, ifi *net.Interface) (*Sniffer, error) {
	ethType := etherTypeForFamily(family)

	c, err := raw.ListenPacket(ifi, uint16(ethType), nil)
	if err != nil {
		return nil, err
	}

	filter, err := ospfBPFFilter(family)
	if err != nil {
		c.Close()
		return nil, err
	}
	if err := c.SetBPF(filter); err != nil {
		c.Close()
		return nil, err
	}

	return &Sniffer{family: family, c: c, ifi: ifi}, nil
}

func etherTypeForFamily(family Family) layers.EthernetType {
	if family == IPv6 {
		return layers.EthernetTypeIPv6
	}
	return layers.EthernetTypeIPv4
}

// ospfBPFFilter assembles a classic BPF program equivalent to "ip proto
// ospf" (or "ip6 proto ospf"): load the protocol/next-header byte and
// accept only frames where it equals 89.
func ospfBPFFilter(family Family) ([]bpf.RawInstruction, error) {
	// mdlayher/raw delivers whole Ethernet frames, so these offsets carry a
	// fixed 14-byte Ethernet header (no 802.1Q tag) ahead of the IP header's
	// own Protocol/Next Header byte.
	const (
		ethHeaderLen      = 14
		ipv4ProtoOffset   = ethHeaderLen + 9 // IPv4 fixed header: Protocol
		ipv6NextHdrOffset = ethHeaderLen + 6 // IPv6 fixed header: Next Header
	)

	offset := uint32(ipv4ProtoOffset)
	if family == IPv6 {
		offset = ipv6NextHdrOffset
	}

	prog, err := bpf.Assemble([]bpf.Instruction{
		bpf.LoadAbsolute{Off: offset, Size: 1},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: ospfProtocol, SkipFalse: 1},
		bpf.RetConstant{Val: 0xffff}, // accept the whole frame
		bpf.RetConstant{Val: 0},      // reject
	})
	if err != nil {
		return nil, fmt.Errorf("hostio: assembling OSPF BPF filter: %w", err)
	}
	return prog, nil
}

// SetReadDeadline sets the read deadline on the underlying raw connection.
func (s *Sniffer) SetReadDeadline(t time.Time) error {
	return s.c.SetReadDeadline(t)
}

// Close closes the underlying raw connection.
func (s *Sniffer) Close() error {
	return s.c.Close()
}

// ReadFrom reads one Ethernet frame, decodes its IP header with gopacket,
// and returns the OSPF payload plus the receive-path metadata a Peer must
// validate (RFC 2328 §8.2, RFC 5340 §A.1).
func (s *Sniffer) ReadFrom() (Packet, error) {
	b := make([]byte, s.ifi.MTU+14) // + Ethernet header

	for {
		n, _, err := s.c.ReadFrom(b)
		if err != nil {
			return Packet{}, err
		}

		pkt, ok := decodeIP(b[:n], s.family)
		if !ok {
			// The kernel-side BPF filter should prevent this, but decode
			// failures (truncated frames, unexpected ethertypes on a
			// shared capture) are not fatal to the read loop.
			continue
		}
		pkt.IfIndex = s.ifi.Index
		return pkt, nil
	}
}

// decodeIP decodes a raw Ethernet frame as read from a link-layer socket
// (mdlayher/raw) and extracts the IP header fields a Peer needs. frame must
// still carry its Ethernet header; ListenSniffer's BPF program only filters
// on protocol/next-header, it does not strip link-layer framing.
func decodeIP(frame []byte, family Family) (Packet, bool) {
	parsed := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.DecodeOptions{
		Lazy:   true,
		NoCopy: true,
	})

	if family == IPv6 {
		v6, ok := parsed.Layer(layers.LayerTypeIPv6).(*layers.IPv6)
		if !ok || v6.NextHeader != layers.IPProtocol(ospfProtocol) {
			return Packet{}, false
		}
		return Packet{
			Payload: append([]byte(nil), v6.Payload...),
			Src:     v6.SrcIP,
			Dst:     v6.DstIP,
			TTL:     int(v6.HopLimit),
		}, true
	}

	v4, ok := parsed.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
	if !ok || v4.Protocol != layers.IPProtocol(ospfProtocol) {
		return Packet{}, false
	}
	return Packet{
		Payload: append([]byte(nil), v4.Payload...),
		Src:     v4.SrcIP,
		Dst:     v4.DstIP,
		TTL:     int(v4.TTL),
	}, true
}
