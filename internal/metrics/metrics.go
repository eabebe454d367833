// Package metrics provides Prometheus counters for a langfile run
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation labels.
const (
	OpExtract = "extract"
	OpApply   = "apply"
	OpMerge   = "merge"
)

// Recorder holds the counters of one run on its own registry
type Recorder struct {
	registry *prometheus.Registry

	// DocumentsTotal counts walked documents per operation
	DocumentsTotal *prometheus.CounterVec
	// FieldsTotal counts translatable fields per operation
	FieldsTotal *prometheus.CounterVec
	// MissingTranslationsTotal counts fields left untranslated by apply
	MissingTranslationsTotal prometheus.Counter
	// FilesCopiedTotal counts non-document files mirrored by apply
	FilesCopiedTotal prometheus.Counter
	// RowsTotal counts table rows written per operation
	RowsTotal *prometheus.CounterVec
}

// New creates a Recorder with all counters registered
func New() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.DocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "langfile_documents_total",
			Help: "Total number of structured documents walked",
		},
		[]string{"op"},
	)

	r.FieldsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "langfile_fields_total",
			Help: "Total number of translatable fields visited",
		},
		[]string{"op"},
	)

	r.MissingTranslationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "langfile_missing_translations_total",
			Help: "Total number of translatable fields without a table row",
		},
	)

	r.FilesCopiedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "langfile_files_copied_total",
			Help: "Total number of non-document files copied to the output",
		},
	)

	r.RowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "langfile_rows_total",
			Help: "Total number of table rows written",
		},
		[]string{"op"},
	)

	r.registry.MustRegister(
		r.DocumentsTotal,
		r.FieldsTotal,
		r.MissingTranslationsTotal,
		r.FilesCopiedTotal,
		r.RowsTotal,
	)

	return r
}

// Registry returns the registry holding the counters
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the counters in the Prometheus text format, suitable
// for the node exporter textfile collector
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics file: %w", err)
	}
	return nil
}
