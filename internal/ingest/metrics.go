package ingest

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_imports_total",
		Help: "Import calls by target and result.",
	}, []string{"target", "result"})

	importRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_import_rows_total",
		Help: "Data rows seen by imports, by outcome (accepted, rejected, skipped).",
	}, []string{"target", "outcome"})

	importDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backoffice_import_duration_seconds",
		Help:    "Wall time of import calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"target"})

	cleanupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backoffice_upload_cleanup_failures_total",
		Help: "Temporary upload files that could not be removed.",
	})
)

// import results used as the "result" label
const (
	resultSuccess     = "success"
	resultInvalid     = "invalid_options"
	resultUnsupported = "unsupported_type"
	resultParseError  = "parse_error"
	resultNoValidRows = "no_valid_rows"
	resultInsertError = "insert_error"
	resultError       = "error"
)

func observeImport[T any](target string, result string, out *Outcome[T], elapsed time.Duration) {
	importsTotal.WithLabelValues(target, result).Inc()
	importDuration.WithLabelValues(target).Observe(elapsed.Seconds())
	if out == nil {
		return
	}
	importRowsTotal.WithLabelValues(target, "accepted").Add(float64(out.InsertedCount))
	importRowsTotal.WithLabelValues(target, "rejected").Add(float64(len(out.Rejected)))
	importRowsTotal.WithLabelValues(target, "skipped").Add(float64(out.RowsSkipped))
}

// Timings tracks how long each stage of one import took
type Timings struct {
	mu sync.Mutex

	CSVReadTotal time.Duration
	CSVReadCount int64

	MapTotal time.Duration
	MapCount int64

	InsertTotal time.Duration
	InsertCount int64
}

// NewTimings creates a new Timings instance
func NewTimings() *Timings {
	return &Timings{}
}

// ObserveCSVRead records a row read
func (t *Timings) ObserveCSVRead(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.CSVReadTotal += d
	t.CSVReadCount++
}

// ObserveMap records a row mapping
func (t *Timings) ObserveMap(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.MapTotal += d
	t.MapCount++
}

// ObserveInsert records a bulk insert
func (t *Timings) ObserveInsert(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.InsertTotal += d
	t.InsertCount++
}

// String returns a formatted summary of all timings
func (t *Timings) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var parts []string
	add := func(name string, total time.Duration, count int64) {
		if count == 0 {
			return
		}
		parts = append(parts, fmt.Sprintf("%s: total=%v count=%d avg=%v",
			name, total, count, total/time.Duration(count)))
	}
	add("CSV read", t.CSVReadTotal, t.CSVReadCount)
	add("Map", t.MapTotal, t.MapCount)
	add("Insert", t.InsertTotal, t.InsertCount)

	if len(parts) == 0 {
		return "No timings recorded"
	}
	return strings.Join(parts, "; ")
}
