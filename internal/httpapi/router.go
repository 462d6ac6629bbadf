// Package httpapi is the external HTTP surface: path/query dispatch, CORS,
// and JSON decoding. It never touches a RankedIndex or PrimaryIndex
// directly; a request makes at most one store.UserStore call (the Bad GET
// and OPTIONS fallbacks make none).
package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/userrank/server/internal/durability"
	"github.com/userrank/server/internal/store"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Options configures the router beyond the store it serves.
type Options struct {
	// Workers bounds the number of requests whose handler body executes
	// concurrently, modeling a fixed-size worker pool more faithfully than
	// Go's unbounded goroutine-per-connection default. Zero or negative
	// disables the bound.
	Workers int

	// Durability, if non-nil, receives one entry per successful mutation.
	Durability *durability.Writer
}

// NewRouter builds the gin.Engine serving the ranked-index HTTP surface.
func NewRouter(s *store.UserStore, opts Options, log *zap.Logger) *gin.Engine {
	log = log.Named("http")
	h := newHandlers(s, log, opts.Durability)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	if opts.Workers > 0 {
		r.Use(concurrencyLimiter(int64(opts.Workers)))
	}

	r.Use(requestID())
	r.Use(corsHeaders())
	r.Use(secure.New(secure.Config{
		ContentTypeNosniff: true,
		FrameDeny:          true,
	}))
	r.Use(accessLog(log))

	r.GET("/info", h.handleInfo)
	r.POST("/put", h.handlePut)
	r.GET("/remove", h.handleRemove)
	r.GET("/get_exp_pers", h.rankHandler("exp_pers", "Exp_Pers"))
	r.GET("/get_active", h.rankHandler("active", "Active"))
	r.GET("/get_exp_gang", h.rankHandler("exp_gang", "Exp_Gang"))

	for _, name := range s.Views() {
		switch name {
		case "hybrid_a":
			r.GET("/get_hybrid_a", h.rankHandler("hybrid_a", "Hybrid_A"))
		case "hybrid_b":
			r.GET("/get_hybrid_b", h.rankHandler("hybrid_b", "Hybrid_B"))
		}
	}

	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			h.handleOptions(c)
			return
		}
		h.handleBadGet(c)
	})
	r.NoMethod(func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			h.handleOptions(c)
			return
		}
		h.handleBadGet(c)
	})
	r.OPTIONS("/*any", h.handleOptions)

	return r
}

// corsHeaders emits a fixed, permissive CORS header set. gin-contrib/cors
// is not used here: its wildcard-origin validation rejects pairing "*" with
// Access-Control-Allow-Credentials: true, a combination this handler must
// emit unconditionally (see DESIGN.md).
func corsHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "*")
		c.Next()
	}
}

// requestID tags every request with a UUID for log correlation.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set("request_id", id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

// concurrencyLimiter bounds the number of handler bodies executing at once
// to n, approximating a fixed-size worker pool.
func concurrencyLimiter(n int64) gin.HandlerFunc {
	sem := semaphore.NewWeighted(n)
	return func(c *gin.Context) {
		if err := sem.Acquire(c.Request.Context(), 1); err != nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}

// accessLog emits one structured log line per request: method, route,
// status, latency, and any handler errors joined together.
func accessLog(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		var errs []error
		for _, ge := range c.Errors {
			if ge.Err != nil {
				errs = append(errs, ge.Err)
			}
		}
		joined := errors.Join(errs...)

		fields := []zap.Field{
			zap.String("request_id", requestIDFrom(c)),
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", c.Writer.Status()),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if joined != nil {
			fields = append(fields, zap.Error(joined))
		}
		log.Info("request", fields...)
	}
}

func requestIDFrom(c *gin.Context) string {
	v, ok := c.Get("request_id")
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
