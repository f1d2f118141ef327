package batch

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/inodb/vibe-hgvs/internal/hgvs"
)

// Skip reasons recorded by vibe_hgvs_skipped_total.
const (
	ReasonUnsupported     = "unsupported_kind"
	ReasonSequenceLookup  = "sequence_lookup"
	ReasonProteinBoundary = "protein_boundary"
	ReasonNoTranscript    = "no_transcript"
	ReasonOther           = "other"
)

// Metrics counts batch outcomes on a private registry.
type Metrics struct {
	Variants prometheus.Counter
	Results  *prometheus.CounterVec
	Skipped  *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics registers the batch counters on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Variants: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vibe_hgvs_variants_total",
			Help: "Input variants read.",
		}),
		Results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vibe_hgvs_results_total",
			Help: "HGVS strings produced, by level.",
		}, []string{"level"}),
		Skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vibe_hgvs_skipped_total",
			Help: "Variants or transcripts without a description, by reason.",
		}, []string{"reason"}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(m.Variants, m.Results, m.Skipped)
	return m
}

// Registry exposes the registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteToTextfile writes the counters in the node_exporter textfile format.
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) record(wr WorkResult) {
	m.Variants.Inc()
	if wr.Err != nil {
		m.Skipped.WithLabelValues(Reason(wr.Err)).Inc()
	} else if len(wr.Results) == 0 {
		m.Skipped.WithLabelValues(ReasonNoTranscript).Inc()
	}
	for _, r := range wr.Results {
		if r.TranscriptHGVS != "" {
			m.Results.WithLabelValues("transcript").Inc()
		}
		if r.ProteinHGVS != "" {
			m.Results.WithLabelValues("protein").Inc()
		}
		if r.Anomaly != nil {
			m.Skipped.WithLabelValues(ReasonProteinBoundary).Inc()
		}
	}
}

// Reason maps a calculator error to its skip reason.
func Reason(err error) string {
	switch {
	case errors.Is(err, hgvs.ErrUnsupportedVariantKind):
		return ReasonUnsupported
	case errors.Is(err, hgvs.ErrSequenceLookup):
		return ReasonSequenceLookup
	case errors.Is(err, hgvs.ErrProteinBoundary):
		return ReasonProteinBoundary
	}
	return ReasonOther
}
