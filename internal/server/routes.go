package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dragonsmp/dragonsmp/internal/metrics"
)

// contentSecurityPolicy mirrors the policy helmet applies by default.
const contentSecurityPolicy = "default-src 'self';base-uri 'self';font-src 'self' https: data:;" +
	"form-action 'self';frame-ancestors 'self';img-src 'self' data:;object-src 'none';" +
	"script-src 'self';script-src-attr 'none';style-src 'self' https: 'unsafe-inline';" +
	"upgrade-insecure-requests"

func (s *Server) newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.IPExtractor = echo.ExtractIPDirect()
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(s.requestLogger())
	if s.httpMetrics != nil {
		e.Use(s.httpMetrics.Middleware())
	}
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "0",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: contentSecurityPolicy,
		ReferrerPolicy:        "no-referrer",
	}))
	e.Use(isolationHeaders)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{s.cfg.AllowedOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowCredentials: true,
	}))

	e.GET("/", s.handleRoot)
	if s.cfg.Registry != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(s.cfg.Registry)))
	}

	api := e.Group("/api", s.rateLimit(), s.rateLimitHeaders)
	api.GET("/stats", s.handleStats)
	api.GET("/health", s.handleHealth)
	api.GET("/status", s.handleStatus)
	api.GET("/sse", s.handleSSE)

	return e
}

// isolationHeaders sets the hardening headers the Secure middleware does not
// cover. Strict-Transport-Security is only sent over TLS by Secure, so plain
// HTTP deployments behind a TLS proxy still get the rest.
func isolationHeaders(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Response().Header()
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		h.Set("Cross-Origin-Resource-Policy", "same-origin")
		h.Set("Origin-Agent-Cluster", "?1")
		h.Set("X-DNS-Prefetch-Control", "off")
		h.Set("X-Download-Options", "noopen")
		h.Set("X-Permitted-Cross-Domain-Policies", "none")
		return next(c)
	}
}

func (s *Server) rateLimit() echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: s.limiter,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			s.httpMetrics.ObserveRateLimited()
			s.logger.Warn("rate limit exceeded",
				"client", identifier,
				"path", c.Request().URL.Path,
			)
			s.setQuotaHeaders(c, identifier)
			return c.String(http.StatusTooManyRequests, RateLimitMessage)
		},
	})
}

// rateLimitHeaders runs after an allowed request was counted.
func (s *Server) rateLimitHeaders(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.setQuotaHeaders(c, c.RealIP())
		return next(c)
	}
}

func (s *Server) setQuotaHeaders(c echo.Context, identifier string) {
	remaining, reset := s.limiter.Quota(identifier)
	secs := int(reset.Sub(s.clock.Now()).Seconds() + 0.5)
	if secs < 0 {
		secs = 0
	}

	h := c.Response().Header()
	h.Set("RateLimit-Limit", strconv.Itoa(s.limiter.Limit()))
	h.Set("RateLimit-Remaining", strconv.Itoa(remaining))
	h.Set("RateLimit-Reset", strconv.Itoa(secs))
	if remaining == 0 {
		h.Set("Retry-After", strconv.Itoa(secs))
	}
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelDebug
			switch {
			case v.Status >= http.StatusInternalServerError:
				level = slog.LevelError
			case v.Status >= http.StatusBadRequest:
				level = slog.LevelInfo
			}

			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			s.logger.LogAttrs(c.Request().Context(), level, "http request", attrs...)
			return nil
		},
	})
}
