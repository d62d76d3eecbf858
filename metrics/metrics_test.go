package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordErrorIncrementsLabeledCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordError(ErrMalformedPacket, "eth0")
	m.RecordError(ErrMalformedPacket, "eth0")
	m.RecordError(ErrProtocolViolation, "eth1")

	if got := testutil.ToFloat64(m.ErrorsTotal.WithLabelValues(ErrMalformedPacket, "eth0")); got != 2 {
		t.Fatalf("ErrorsTotal[malformed_packet,eth0] = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ErrorsTotal.WithLabelValues(ErrProtocolViolation, "eth1")); got != 1 {
		t.Fatalf("ErrorsTotal[protocol_violation,eth1] = %v, want 1", got)
	}
}

func TestRecordSPFRunUpdatesCounterAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordSPFRun("0.0.0.0", 0.01)
	m.RecordSPFRun("0.0.0.0", 0.02)

	if got := testutil.ToFloat64(m.SPFRunsTotal.WithLabelValues("0.0.0.0")); got != 2 {
		t.Fatalf("SPFRunsTotal = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(m.SPFDuration); got != 2 {
		t.Fatalf("SPFDuration sample count = %d, want 2", got)
	}
}

func TestSetLSDBEntriesGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.SetLSDBEntries("0.0.0.1", 42)
	if got := testutil.ToFloat64(m.LSDBEntries.WithLabelValues("0.0.0.1")); got != 42 {
		t.Fatalf("LSDBEntries = %v, want 42", got)
	}

	m.SetLSDBEntries("0.0.0.1", 10)
	if got := testutil.ToFloat64(m.LSDBEntries.WithLabelValues("0.0.0.1")); got != 10 {
		t.Fatalf("LSDBEntries after update = %v, want 10", got)
	}
}

func TestFloodAndRetransmitCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordFloodDuplicate("eth0")
	m.RecordFloodImplicitAck("eth0")
	m.RecordRetransmit("eth0")

	if got := testutil.ToFloat64(m.FloodDuplicatesTotal.WithLabelValues("eth0")); got != 1 {
		t.Fatalf("FloodDuplicatesTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.FloodImplicitAcksTotal.WithLabelValues("eth0")); got != 1 {
		t.Fatalf("FloodImplicitAcksTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RetransmitsTotal.WithLabelValues("eth0")); got != 1 {
		t.Fatalf("RetransmitsTotal = %v, want 1", got)
	}
}

func TestNeighborAndInterfaceStateChangeCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordNeighborStateChange("eth0", "Full")
	m.RecordInterfaceStateChange("eth0", "DR")

	if got := testutil.ToFloat64(m.NeighborStateChangesTotal.WithLabelValues("eth0", "Full")); got != 1 {
		t.Fatalf("NeighborStateChangesTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.InterfaceStateChangesTotal.WithLabelValues("eth0", "DR")); got != 1 {
		t.Fatalf("InterfaceStateChangesTotal = %v, want 1", got)
	}
}

func TestNullMetricsToleratesNilReceiver(t *testing.T) {
	var m *Metrics = NullMetrics()

	m.RecordError(ErrIO, "eth0")
	m.RecordRx("eth0", "Hello")
	m.RecordTx("eth0", "Hello")
	m.RecordRetransmit("eth0")
	m.RecordFloodDuplicate("eth0")
	m.RecordFloodImplicitAck("eth0")
	m.SetLSDBEntries("0.0.0.0", 1)
	m.RecordSPFRun("0.0.0.0", 0.1)
	m.RecordNeighborStateChange("eth0", "Full")
	m.RecordInterfaceStateChange("eth0", "DR")
}
