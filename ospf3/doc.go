// Package ospf3 implements the OSPFv3 (OSPF for IPv6, RFC 5340) wire codec:
// packet headers, the five packet types, LSA headers, and every LSA body
// variant RFC 5340 defines. It mirrors the layout and style of the OSPFv2
// codec in package ospf2; the two are kept as separate concrete
// implementations sharing only the address-family-independent pieces in
// package wire and package ospfid, per the "two concrete implementations
// sharing a small common library" guidance for protocols that genuinely
// differ at the header and LSA-set level.
package ospf3

//go:generate stringer -type=FloodingScope,LSType -output=string.go
