package hostio

import (
	"fmt"
	"net"
	"time"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// Fixed IP header parameters used on every Conn, RFC 2328 appendix A.1 and
// RFC 5340 appendix A.1.
const (
	tos      = 0xc0 // DSCP CS6
	hopLimit = 1
)

var (
	// AllSPFRouters4 and AllSPFRouters6 are the multicast groups all OSPF
	// routers on a broadcast/NBMA segment join.
	AllSPFRouters4 = &net.IPAddr{IP: net.IPv4(224, 0, 0, 5)}
	AllSPFRouters6 = &net.IPAddr{IP: net.ParseIP("ff02::5")}

	// AllDRouters4 and AllDRouters6 are the multicast groups only a
	// segment's Designated Router and Backup Designated Router join.
	AllDRouters4 = &net.IPAddr{IP: net.IPv4(224, 0, 0, 6)}
	AllDRouters6 = &net.IPAddr{IP: net.ParseIP("ff02::6")}
)

// ospfProtocol is the IP protocol number assigned to OSPF.
const ospfProtocol = 89

// A Family selects IPv4 or IPv6 transport.
type Family int

// Possible Family values.
const (
	IPv4 Family = iota
	IPv6
)

// A Packet is one received OSPF datagram along with the receive-path
// metadata the RFCs require a router to check before handing it to a Peer:
// the source address, the inbound interface, and the IP TTL/hop limit (which
// must be 1 for any packet destined to a multicast group).
type Packet struct {
	Payload []byte
	Src     net.IP
	Dst     net.IP
	IfIndex int
	TTL     int
}

// A Conn sends and receives raw OSPF IP datagrams on one network interface,
// for one address family. It joins the AllSPFRouters group automatically,
// and AllDRouters too unless the interface is point-to-point (which has no
// concept of a Designated Router).
type Conn struct {
	family Family
	c4     *ipv4.PacketConn
	c6     *ipv6.PacketConn
	ifi    *net.Interface
	groups []*net.IPAddr
}

// Listen creates a Conn of the given family on ifi.
func Listen(family Family, ifi *net.Interface) (*Conn, error) {
	switch family {
	case IPv4:
		return listen4(ifi)
	case IPv6:
		return listen6(ifi)
	default:
		return nil, fmt.Errorf("hostio: unknown family %d", family)
	}
}

func listen4(ifi *net.Interface) (*Conn, error) {
	conn, err := net.ListenPacket("ip4:89", "0.0.0.0")
	if err != nil {
		return nil, err
	}
	c := ipv4.NewPacketConn(conn)

	if err := c.SetControlMessage(ipv4.FlagTTL|ipv4.FlagSrc|ipv4.FlagDst|ipv4.FlagInterface, true); err != nil {
		return nil, err
	}
	if err := c.SetTTL(hopLimit); err != nil {
		return nil, err
	}
	if err := c.SetMulticastTTL(hopLimit); err != nil {
		return nil, err
	}
	if err := c.SetTOS(tos); err != nil {
		return nil, err
	}
	if err := c.SetMulticastInterface(ifi); err != nil {
		return nil, err
	}

	groups := []*net.IPAddr{AllSPFRouters4}
	if ifi.Flags&net.FlagPointToPoint == 0 {
		groups = append(groups, AllDRouters4)
	}
	for _, g := range groups {
		if err := c.JoinGroup(ifi, g); err != nil {
			return nil, err
		}
	}
	if err := c.SetMulticastLoopback(false); err != nil {
		return nil, err
	}

	return &Conn{family: IPv4, c4: c, ifi: ifi, groups: groups}, nil
}

func listen6(ifi *net.Interface) (*Conn, error) {
	conn, err := net.ListenPacket("ip6:89", "::")
	if err != nil {
		return nil, err
	}
	c := ipv6.NewPacketConn(conn)

	if err := c.SetControlMessage(^ipv6.ControlFlags(0), true); err != nil {
		return nil, err
	}
	// The kernel verifies the OSPFv3 header checksum for us; the field sits
	// 12 bytes into the OSPFv3 header.
	if err := c.SetChecksum(true, 12); err != nil {
		return nil, err
	}
	if err := c.SetHopLimit(hopLimit); err != nil {
		return nil, err
	}
	if err := c.SetMulticastHopLimit(hopLimit); err != nil {
		return nil, err
	}
	if err := c.SetTrafficClass(tos); err != nil {
		return nil, err
	}
	if err := c.SetMulticastInterface(ifi); err != nil {
		return nil, err
	}

	groups := []*net.IPAddr{AllSPFRouters6}
	if ifi.Flags&net.FlagPointToPoint == 0 {
		groups = append(groups, AllDRouters6)
	}
	for _, g := range groups {
		if err := c.JoinGroup(ifi, g); err != nil {
			return nil, err
		}
	}
	if err := c.SetMulticastLoopback(false); err != nil {
		return nil, err
	}

	return &Conn{family: IPv6, c6: c, ifi: ifi, groups: groups}, nil
}

// Close leaves any joined multicast groups and closes the underlying
// connection.
func (c *Conn) Close() error {
	for _, g := range c.groups {
		var err error
		if c.family == IPv4 {
			err = c.c4.LeaveGroup(c.ifi, g)
		} else {
			err = c.c6.LeaveGroup(c.ifi, g)
		}
		if err != nil {
			return err
		}
	}

	if c.family == IPv4 {
		return c.c4.Close()
	}
	return c.c6.Close()
}

// SetReadDeadline sets the read deadline on the underlying connection.
func (c *Conn) SetReadDeadline(t time.Time) error {
	if c.family == IPv4 {
		return c.c4.SetReadDeadline(t)
	}
	return c.c6.SetReadDeadline(t)
}

// ReadFrom reads a single raw OSPF datagram, blocking until one arrives, the
// deadline elapses, or the Conn is closed.
func (c *Conn) ReadFrom() (Packet, error) {
	b := make([]byte, c.ifi.MTU)

	if c.family == IPv4 {
		n, cm, src, err := c.c4.ReadFrom(b)
		if err != nil {
			return Packet{}, err
		}
		p := Packet{Payload: b[:n], Src: addrIP(src)}
		if cm != nil {
			p.Dst, p.IfIndex, p.TTL = cm.Dst, cm.IfIndex, cm.TTL
		}
		return p, nil
	}

	n, cm, src, err := c.c6.ReadFrom(b)
	if err != nil {
		return Packet{}, err
	}
	p := Packet{Payload: b[:n], Src: addrIP(src)}
	if cm != nil {
		p.Dst, p.IfIndex, p.TTL = cm.Dst, cm.IfIndex, cm.HopLimit
	}
	return p, nil
}

// WriteTo writes a raw OSPF datagram b to dst, which may be a unicast
// neighbor address or one of the AllSPFRouters/AllDRouters groups.
func (c *Conn) WriteTo(b []byte, dst *net.IPAddr) error {
	if c.family == IPv4 {
		_, err := c.c4.WriteTo(b, nil, dst)
		return err
	}
	_, err := c.c6.WriteTo(b, nil, dst)
	return err
}

func addrIP(addr net.Addr) net.IP {
	if a, ok := addr.(*net.IPAddr); ok {
		return a.IP
	}
	return nil
}
