package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.String(http.StatusOK, RootMessage)
}

func (s *Server) handleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.cfg.Stats)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: s.clock.Now().UTC().Format(time.RFC3339Nano),
	})
}

// handleStatus returns the latest status record as JSON.
func (s *Server) handleStatus(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.JSON(http.StatusOK, s.store.Get())
}

// handleSSE streams status records via Server-Sent Events.
//
// The handler uses write deadlines to prevent goroutine leaks when clients are
// slow or disconnected. Without deadlines, a blocked write would prevent the
// handler from detecting context cancellation or channel closure.
func (s *Server) handleSSE(c echo.Context) error {
	w := c.Response()
	if _, ok := w.Writer.(http.Flusher); !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "SSE not supported")
	}

	// ResponseController provides deadline-aware write and flush operations.
	rc := http.NewResponseController(w.Writer)

	// track if write deadlines are supported (may not be for some ResponseWriter impls)
	deadlinesSupported := true

	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.Debug("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	h := w.Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// subscribe before reading the current record so no update falls between
	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	sent := uint64(0)
	if rec := s.store.Get(); rec.Seq > 0 {
		data, err := json.Marshal(rec)
		if err == nil {
			if err := writeAndFlush(data); err != nil {
				return nil
			}
			sent = rec.Seq
		}
	}

	ctx := c.Request().Context()
	for {
		select {
		case rec, ok := <-ch:
			if !ok {
				return nil
			}
			if rec.Seq <= sent {
				continue
			}
			data, err := json.Marshal(rec)
			if err != nil {
				continue
			}
			if err := writeAndFlush(data); err != nil {
				return nil
			}
			sent = rec.Seq

		case <-ctx.Done():
			// request context is derived from server context via BaseContext,
			// so this fires on both client disconnect AND server shutdown
			return nil
		}
	}
}

// handleError renders every handler error as {"error": "..."}.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	}

	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err,
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, errorResponse{Error: msg})
	}
	if err != nil {
		s.logger.Error("failed to write error response", "error", err)
	}
}
