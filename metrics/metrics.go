package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks OSPF-specific Prometheus metrics: the §7 error taxonomy
// (malformed packets, unknown LSA types, protocol-spec violations,
// configuration errors, I/O failures, internal invariant violations),
// flooding/retransmission accounting, and SPF/LSDB state.
//
// All metrics use the ospf_ prefix. Every recording method is nil-receiver
// safe so a Router can run with NullMetrics() when no registerer is wired.
type Metrics struct {
	// ErrorsTotal counts §7's error taxonomy by class and, where
	// applicable, the interface that observed it.
	ErrorsTotal *prometheus.CounterVec

	// PacketsRxTotal and PacketsTxTotal count accepted packets by
	// interface and OSPF packet type.
	PacketsRxTotal *prometheus.CounterVec
	PacketsTxTotal *prometheus.CounterVec

	// RetransmitsTotal counts LSU retransmissions by interface, RFC 2328
	// §13.3's RxmtInterval timer firing before an ack arrived.
	RetransmitsTotal *prometheus.CounterVec

	// FloodDuplicatesTotal and FloodImplicitAcksTotal count RFC 2328
	// §13's flooding bookkeeping: LSAs received that were already the
	// current instance, and duplicates treated as an implicit ack
	// because they arrived on the interface a retransmission was
	// outstanding on.
	FloodDuplicatesTotal   *prometheus.CounterVec
	FloodImplicitAcksTotal *prometheus.CounterVec

	// LSDBEntries tracks current per-area LSDB size.
	LSDBEntries *prometheus.GaugeVec

	// SPFRunsTotal and SPFDuration count and time RFC 2328 §16 SPF
	// computations.
	SPFRunsTotal *prometheus.CounterVec
	SPFDuration  prometheus.Histogram

	// NeighborStateChangesTotal counts neighbor FSM transitions by
	// resulting state, RFC 2328 §10.1.
	NeighborStateChangesTotal *prometheus.CounterVec

	// InterfaceStateChangesTotal counts interface FSM transitions by
	// resulting state, RFC 2328 §9.1.
	InterfaceStateChangesTotal *prometheus.CounterVec
}

// NewMetrics creates OSPF metrics with the ospf_ prefix and registers them
// against reg. Panics if registration fails, which is only expected during
// initialization (e.g. a duplicate registration bug), per the same
// trade-off marmos91-dittofs's NewMetrics makes.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ospf_errors_total",
				Help: "Total errors by taxonomy class and interface",
			},
			[]string{"class", "interface"},
		),
		PacketsRxTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ospf_packets_rx_total",
				Help: "Total OSPF packets received by interface and type",
			},
			[]string{"interface", "type"},
		),
		PacketsTxTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ospf_packets_tx_total",
				Help: "Total OSPF packets sent by interface and type",
			},
			[]string{"interface", "type"},
		),
		RetransmitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ospf_retransmits_total",
				Help: "Total LSU retransmissions by interface",
			},
			[]string{"interface"},
		),
		FloodDuplicatesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ospf_flood_duplicates_total",
				Help: "Total duplicate LSAs received during flooding, by interface",
			},
			[]string{"interface"},
		),
		FloodImplicitAcksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ospf_flood_implicit_acks_total",
				Help: "Total duplicates treated as an implicit ack, by interface",
			},
			[]string{"interface"},
		),
		LSDBEntries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ospf_lsdb_entries",
				Help: "Current LSDB size by area",
			},
			[]string{"area"},
		),
		SPFRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ospf_spf_runs_total",
				Help: "Total SPF computations by area",
			},
			[]string{"area"},
		),
		SPFDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ospf_spf_duration_seconds",
				Help:    "SPF computation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		NeighborStateChangesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ospf_neighbor_state_changes_total",
				Help: "Total neighbor FSM transitions by resulting state",
			},
			[]string{"interface", "state"},
		),
		InterfaceStateChangesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ospf_interface_state_changes_total",
				Help: "Total interface FSM transitions by resulting state",
			},
			[]string{"interface", "state"},
		),
	}

	reg.MustRegister(
		m.ErrorsTotal,
		m.PacketsRxTotal,
		m.PacketsTxTotal,
		m.RetransmitsTotal,
		m.FloodDuplicatesTotal,
		m.FloodImplicitAcksTotal,
		m.LSDBEntries,
		m.SPFRunsTotal,
		m.SPFDuration,
		m.NeighborStateChangesTotal,
		m.InterfaceStateChangesTotal,
	)

	return m
}

// Error taxonomy classes, matching §7's table exactly.
const (
	ErrMalformedPacket   = "malformed_packet"
	ErrUnknownLSAType    = "unknown_lsa_type"
	ErrProtocolViolation = "protocol_violation"
	ErrConfiguration     = "configuration"
	ErrIO                = "io"
	ErrInternalInvariant = "internal_invariant"
)

// RecordError increments the counter for one §7 taxonomy class observed on
// iface. iface may be "" for errors not tied to a specific interface (e.g.
// configuration errors).
func (m *Metrics) RecordError(class, iface string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(class, iface).Inc()
}

// RecordRx records one received packet of the given OSPF type on iface.
func (m *Metrics) RecordRx(iface, packetType string) {
	if m == nil {
		return
	}
	m.PacketsRxTotal.WithLabelValues(iface, packetType).Inc()
}

// RecordTx records one sent packet of the given OSPF type on iface.
func (m *Metrics) RecordTx(iface, packetType string) {
	if m == nil {
		return
	}
	m.PacketsTxTotal.WithLabelValues(iface, packetType).Inc()
}

// RecordRetransmit records one LSU retransmission on iface.
func (m *Metrics) RecordRetransmit(iface string) {
	if m == nil {
		return
	}
	m.RetransmitsTotal.WithLabelValues(iface).Inc()
}

// RecordFloodDuplicate records one duplicate LSA received on iface during
// flooding.
func (m *Metrics) RecordFloodDuplicate(iface string) {
	if m == nil {
		return
	}
	m.FloodDuplicatesTotal.WithLabelValues(iface).Inc()
}

// RecordFloodImplicitAck records one duplicate treated as an implicit ack
// on iface.
func (m *Metrics) RecordFloodImplicitAck(iface string) {
	if m == nil {
		return
	}
	m.FloodImplicitAcksTotal.WithLabelValues(iface).Inc()
}

// SetLSDBEntries updates the LSDB size gauge for areaID.
func (m *Metrics) SetLSDBEntries(areaID string, count int) {
	if m == nil {
		return
	}
	m.LSDBEntries.WithLabelValues(areaID).Set(float64(count))
}

// RecordSPFRun records one completed SPF computation for areaID and its
// duration.
func (m *Metrics) RecordSPFRun(areaID string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.SPFRunsTotal.WithLabelValues(areaID).Inc()
	m.SPFDuration.Observe(durationSeconds)
}

// RecordNeighborStateChange records one neighbor FSM transition to state
// on iface.
func (m *Metrics) RecordNeighborStateChange(iface, state string) {
	if m == nil {
		return
	}
	m.NeighborStateChangesTotal.WithLabelValues(iface, state).Inc()
}

// RecordInterfaceStateChange records one interface FSM transition to
// state on iface.
func (m *Metrics) RecordInterfaceStateChange(iface, state string) {
	if m == nil {
		return
	}
	m.InterfaceStateChangesTotal.WithLabelValues(iface, state).Inc()
}

// NullMetrics returns nil, which acts as a no-op metrics collector: every
// recording method above tolerates a nil receiver.
func NullMetrics() *Metrics {
	return nil
}
