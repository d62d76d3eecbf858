// Package metrics backs §7's error taxonomy and the flooding/LSDB/SPF
// counters with github.com/prometheus/client_golang, registered against a
// prometheus.Registerer passed in explicitly to NewMetrics rather than a
// package-level default registerer.
package metrics
