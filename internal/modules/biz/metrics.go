package biz

import "github.com/prometheus/client_golang/prometheus"

// ImportMetrics counts rows processed by CSV imports.
type ImportMetrics struct {
	rows    *prometheus.CounterVec
	batches prometheus.Counter
}

func NewImportMetrics(reg prometheus.Registerer) *ImportMetrics {
	m := &ImportMetrics{
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bizdir",
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "Imported CSV rows by outcome.",
		}, []string{"outcome"}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bizdir",
			Subsystem: "import",
			Name:      "batches_total",
			Help:      "Processed CSV uploads.",
		}),
	}
	reg.MustRegister(m.rows, m.batches)
	return m
}

func (m *ImportMetrics) ObserveImport(imported, failed int) {
	m.batches.Inc()
	m.rows.WithLabelValues("imported").Add(float64(imported))
	m.rows.WithLabelValues("failed").Add(float64(failed))
}
