package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	FilesScannedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verilog_scan_files_total",
		Help: "Files processed by the indexer, by outcome.",
	}, []string{"status"})

	DeclarationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verilog_scan_declarations_total",
		Help: "Entries added to summaries, by kind.",
	}, []string{"kind"})

	DiagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verilog_scan_diagnostics_total",
		Help: "Lines detected but not extracted, by kind.",
	}, []string{"kind"})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "verilog_scan_file_seconds",
		Help:    "Time spent scanning a single source file.",
		Buckets: prometheus.DefBuckets,
	})

	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "verilog_scan_run_seconds",
		Help:    "Time spent on indexer stages.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "verilog_scan_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	RPCRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verilog_scan_rpc_requests_total",
		Help: "JSON-RPC requests handled, by method.",
	}, []string{"method"})
)

// Declaration kinds used as the "kind" label of DeclarationsTotal
const (
	KindModule           = "module"
	KindInput            = "input"
	KindOutput           = "output"
	KindWire             = "wire"
	KindReg              = "reg"
	KindContinuousAssign = "continuous_assign"
	KindSequentialAssign = "sequential_assign"
)
