package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/rupamthxt/vectraproj/internal/cache"
	"github.com/rupamthxt/vectraproj/internal/metrics"
	"github.com/rupamthxt/vectraproj/internal/projection"
	"github.com/rupamthxt/vectraproj/internal/umap"
)

type Handler struct {
	runner  *projection.Runner
	cache   *cache.ResultCache
	timeout time.Duration
	logger  *slog.Logger
}

// NewHandler wires the runner to HTTP. cache may be nil; timeout <= 0
// disables the per-request deadline.
func NewHandler(runner *projection.Runner, results *cache.ResultCache, timeout time.Duration, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{runner: runner, cache: results, timeout: timeout, logger: logger}
}

func (h *Handler) Project(c *fiber.Ctx) error {
	req, err := projection.DecodeRequest(bytes.NewReader(c.Body()))
	if err != nil {
		metrics.Projections.WithLabelValues("invalid").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	key, err := h.runner.Fingerprint(req)
	if err != nil {
		metrics.Projections.WithLabelValues("invalid").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	ctx := c.UserContext()
	if data, ok := h.cache.Get(ctx, key); ok {
		metrics.CacheHits.Inc()
		metrics.Projections.WithLabelValues("ok").Inc()
		c.Set("X-Cache", "HIT")
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(data)
	}
	if h.cache.Enabled() {
		metrics.CacheMisses.Inc()
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	start := time.Now()
	results, err := h.runner.Project(ctx, req)
	metrics.ProjectionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		switch {
		case projection.IsValidation(err):
			metrics.Projections.WithLabelValues("invalid").Inc()
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		case errors.Is(err, context.DeadlineExceeded):
			metrics.Projections.WithLabelValues("timeout").Inc()
			return c.Status(fiber.StatusGatewayTimeout).JSON(ErrorResponse{Error: "projection timed out"})
		default:
			metrics.Projections.WithLabelValues("failed").Inc()
			h.logger.Error("projection failed", "error", err, "request_id", c.GetRespHeader(fiber.HeaderXRequestID))
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
		}
	}

	data, err := json.Marshal(results)
	if err != nil {
		metrics.Projections.WithLabelValues("failed").Inc()
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}

	if err := h.cache.Set(ctx, key, data); err != nil {
		h.logger.Warn("cache write failed", "error", err)
	}

	metrics.Projections.WithLabelValues("ok").Inc()
	metrics.VectorsProjected.Add(float64(len(results)))
	c.Set("X-Cache", "MISS")
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(data)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:            "ok",
		DefaultComponents: h.runner.DefaultComponents(),
		Metrics:           umap.Metrics(),
	})
}
