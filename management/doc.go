// Package management defines the typed operations §6's management surface
// names: create/destroy areas and peers, set their tunable parameters,
// enumerate areas/neighbors/LSAs, and clear the database. Surface is a
// plain Go interface; encoding it as a CLI, gRPC service, or anything else
// is deliberately outside this package, consistent with §6's "exact RPC
// encoding is outside the core".
package management
