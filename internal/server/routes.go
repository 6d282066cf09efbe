package server

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/danmuck/dhcpopt/internal/auth"
	"github.com/danmuck/dhcpopt/internal/observability"
	"github.com/danmuck/dhcpopt/internal/pipeline"
	"github.com/danmuck/dhcpopt/internal/protocol/options"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// maxDecodeBody bounds POST /decode bodies; hex input is twice the datagram.
const maxDecodeBody = 2*65535 + 1024

func (s *Server) RegisterRoutes() {
	routes := s.router
	routes.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": "dhcpopt",
			"version": Version,
		})
	})

	routes.GET("/metrics", gin.WrapH(observability.Handler()))

	routes.GET("/catalog", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"options": options.Catalog()})
	})

	routes.GET("/catalog/relay", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"suboptions": options.RelayCatalog()})
	})

	routes.GET("/stats", func(c *gin.Context) {
		body := gin.H{
			"frames":    s.Stats.Frames.Load(),
			"truncated": s.Stats.Truncated.Load(),
			"invalid":   s.Stats.Invalid.Load(),
			"errors":    s.Stats.Errors.Load(),
		}
		if last := s.Stats.LastSeen(); !last.IsZero() {
			body["last_seen"] = last.UTC().Format(time.RFC3339Nano)
		}
		c.JSON(http.StatusOK, body)
	})

	routes.POST("/decode", s.requireToken, s.handleDecode)
}

func (s *Server) requireToken(c *gin.Context) {
	if s.Auth == nil {
		c.Next()
		return
	}
	if err := auth.CheckHeader(s.Auth, c.GetHeader("Authorization")); err != nil {
		log.Debug().Err(err).Str("client", c.ClientIP()).Msg("server.requireToken denied")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

// handleDecode decodes the request body. Query parameters: format=hex|raw
// (default: sniffed), frame, validate and report as booleans.
func (s *Server) handleDecode(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxDecodeBody+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(body) > maxDecodeBody {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "body too large"})
		return
	}

	format, err := pipeline.ParseFormat(c.Query("format"))
	if err != nil || format == pipeline.FormatPCAP {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be hex or raw"})
		return
	}
	if format == pipeline.FormatAuto {
		format = pipeline.Sniff(body)
		if format == pipeline.FormatPCAP {
			format = pipeline.FormatRaw
		}
	}
	if format == pipeline.FormatHex {
		body, err = pipeline.DecodeHex(string(body))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	opts := s.Decode
	opts.Frame = queryBool(c, "frame", opts.Frame)
	opts.Validate = queryBool(c, "validate", opts.Validate)
	view := pipeline.View{Report: queryBool(c, "report", false)}

	res := pipeline.Process("http:"+c.ClientIP(), body, opts)
	observability.SetDecodeSummary(c, observability.DecodeSummary{
		Bytes:     len(body),
		Options:   len(res.Options),
		Skipped:   res.Skipped(),
		Truncated: res.Truncated(),
		Result:    res.Outcome(),
	})
	raw, err := pipeline.JSON(res, view)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	status := http.StatusOK
	if res.Err != nil {
		status = http.StatusUnprocessableEntity
	}
	c.Data(status, "application/json; charset=utf-8", raw)
}

func queryBool(c *gin.Context, key string, fallback bool) bool {
	raw, ok := c.GetQuery(key)
	if !ok {
		return fallback
	}
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}
