// Package hostio is the reference Host I/O adapter: it moves OSPF packets
// between the wire and the core FSM packages, which only ever see raw
// bytes plus the metadata RFC 2328/5340 require routers to validate on
// receive (source address, TTL/hop limit, inbound interface).
//
// Conn covers the common case: a raw IP protocol-89 socket per address
// family, built on golang.org/x/net/ipv4 and ipv6, mirroring how OSPFv3
// implementations join the AllSPFRouters/AllDRouters multicast groups and
// let the kernel handle header fields the RFCs fix (hop limit 1, traffic
// class). Sniffer is the lower-level alternative for link types or
// platforms where an IP-protocol socket isn't available: it reads whole
// Ethernet frames and decodes the IP header itself with gopacket.
package hostio
