package observability

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// DecodeSummaryKey is the gin context key a decode handler stores its
// DecodeSummary under.
const DecodeSummaryKey = "dhcpopt.decode"

// DecodeSummary is what one decode request produced.
type DecodeSummary struct {
	Bytes     int
	Options   int
	Skipped   int
	Truncated bool
	// Result is one of the Frame* results.
	Result string
}

// SetDecodeSummary attaches s to the request for RequestLogger and
// RequestMetricsMiddleware.
func SetDecodeSummary(c *gin.Context, s DecodeSummary) {
	c.Set(DecodeSummaryKey, s)
}

func decodeSummary(c *gin.Context) (DecodeSummary, bool) {
	v, ok := c.Get(DecodeSummaryKey)
	if !ok {
		return DecodeSummary{}, false
	}
	s, ok := v.(DecodeSummary)
	return s, ok
}

// RouteGroup maps a request to a bounded metrics label: the first segment of
// the matched route, or "unmatched" for requests no route handled.
func RouteGroup(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		return "unmatched"
	}
	group, _, _ := strings.Cut(strings.TrimPrefix(route, "/"), "/")
	if group == "" {
		return "root"
	}
	return group
}

// RequestLogger logs one line per request. Decode requests carry their
// summary and log at info; other successful requests log at debug.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		summary, decoded := decodeSummary(c)

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		case decoded:
			event = logger.Info()
		default:
			event = logger.Debug()
		}

		event = event.
			Str("method", c.Request.Method).
			Str("route", RouteGroup(c)).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP())
		if decoded {
			event = event.
				Int("decode_bytes", summary.Bytes).
				Int("options", summary.Options).
				Int("skipped", summary.Skipped).
				Bool("truncated", summary.Truncated).
				Str("result", summary.Result)
		}
		event.Msg("observability.RequestLogger request")
	}
}

// RequestMetricsMiddleware records request counts and latency by route group.
func RequestMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		RecordHTTPRequest(c.Request.Method, RouteGroup(c), c.Writer.Status(), time.Since(start))
		if s, ok := decodeSummary(c); ok {
			RecordDecodeRequest(s.Result, s.Bytes)
		}
	}
}
