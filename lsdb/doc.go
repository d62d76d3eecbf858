// Package lsdb implements the OSPF Link State Database: the per-area (and
// per-AS, for AS-external scope) store of LSAs, keyed by (type, link-state
// ID, advertising router). It is deliberately independent of the OSPFv2 and
// OSPFv3 wire codecs — it stores each LSA's already-encoded bytes alongside
// the metadata (age, sequence number, checksum) needed for the RFC 2328
// §13.1 freshness comparison, so the same database type backs both protocol
// versions and the flooding layer never has to re-decode an LSA just to
// retransmit it.
package lsdb
