package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Frame results used as the result label of frames_total.
const (
	FrameOK        = "ok"
	FrameTruncated = "truncated"
	FrameNoCookie  = "no_cookie"
	FrameError     = "error"
	FrameInvalid   = "invalid"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dhcpopt",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dhcpopt",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	decodeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dhcpopt",
			Subsystem: "http",
			Name:      "decode_requests_total",
			Help:      "POST /decode requests, by decode result.",
		},
		[]string{"result"},
	)
	decodeRequestBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "dhcpopt",
			Subsystem: "http",
			Name:      "decode_request_bytes",
			Help:      "Decoded bytes per POST /decode request.",
			Buckets:   prometheus.ExponentialBuckets(64, 2, 11),
		},
	)
	decodedOptions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dhcpopt",
			Subsystem: "decode",
			Name:      "options_total",
			Help:      "Options decoded, by option code.",
		},
		[]string{"code"},
	)
	skippedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dhcpopt",
			Subsystem: "decode",
			Name:      "skipped_total",
			Help:      "Records dropped during decode, by reason.",
		},
		[]string{"reason"},
	)
	truncatedRegions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dhcpopt",
			Subsystem: "decode",
			Name:      "truncated_total",
			Help:      "Option regions whose decode stopped on a truncated record.",
		},
	)
	decodedBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "dhcpopt",
			Subsystem: "decode",
			Name:      "bytes",
			Help:      "Size of decoded option regions in bytes.",
			Buckets:   prometheus.ExponentialBuckets(16, 2, 8),
		},
	)
	frames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dhcpopt",
			Name:      "frames_total",
			Help:      "Datagrams handled, by result.",
		},
		[]string{"result"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			decodeRequests,
			decodeRequestBytes,
			decodedOptions,
			skippedRecords,
			truncatedRegions,
			decodedBytes,
			frames,
		)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	RegisterMetrics()
	return promhttp.Handler()
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, route, statusLabel).Inc()
	httpDuration.WithLabelValues(method, route, statusLabel).Observe(duration.Seconds())
}

// RecordDecodeRequest records the outcome of one POST /decode request.
func RecordDecodeRequest(result string, bytes int) {
	RegisterMetrics()
	decodeRequests.WithLabelValues(result).Inc()
	decodeRequestBytes.Observe(float64(bytes))
}

// RecordDecode records one decoded option region.
func RecordDecode(length int, codes []uint8, skipReasons []string, truncated bool) {
	RegisterMetrics()
	decodedBytes.Observe(float64(length))
	for _, c := range codes {
		decodedOptions.WithLabelValues(strconv.Itoa(int(c))).Inc()
	}
	for _, r := range skipReasons {
		skippedRecords.WithLabelValues(r).Inc()
	}
	if truncated {
		truncatedRegions.Inc()
	}
}

func RecordFrame(result string) {
	RegisterMetrics()
	frames.WithLabelValues(result).Inc()
}
