// Package ribclient defines the typed RIB contract the routing core emits
// routes through: add/replace/delete on a destination prefix, plus the
// register/unregister pair that claims ownership of the RIB's OSPF table.
// The exact transport to a real RIB process is outside this package; it
// ships a no-op client for wiring tests and a recording client for
// assertions against what the core actually emitted.
package ribclient
