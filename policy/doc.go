// Package policy defines the typed filter contract the core consumes when
// originating an external route: a {prefix, next-hop, metric, external-bit,
// tag} candidate goes in, an accept/reject/modify verdict comes back. Policy
// tags are opaque to the core; it only round-trips them to the RIB.
//
// Grounded on XORP's policy_varrw.cc get/set-by-name variable interface,
// reworked into a single typed struct rather than a stringly-typed variable
// map, consistent with this module's preference for typed discriminators
// over generic key-value plumbing.
package policy
