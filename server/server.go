// Package server exposes the area store over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/meikuraledutech/area"
	"github.com/meikuraledutech/area/internal/logging"
	"github.com/meikuraledutech/area/mapper"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Backend is everything the HTTP layer needs from storage.
type Backend interface {
	area.Service
	ListAreas(ctx context.Context) ([]area.AreaSummary, error)
	DeleteArea(ctx context.Context, id string) error
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error
}

type Option func(*config)

type config struct {
	logger   *slog.Logger
	registry *prometheus.Registry
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithRegistry sets the registry metrics are recorded in and served from.
func WithRegistry(r *prometheus.Registry) Option {
	return func(c *config) { c.registry = r }
}

// New builds the fiber app serving the area API.
func New(store Backend, opts ...Option) *fiber.App {
	cfg := &config{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.registry == nil {
		cfg.registry = prometheus.NewRegistry()
	}
	m := newMetrics(cfg.registry)
	log := cfg.logger

	app := fiber.New()
	app.Use(func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		m.observe(c.Method(), c.Route().Path, c.Response().StatusCode(), time.Since(start))
		return err
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.registry, promhttp.HandlerOpts{})))

	// ── Schema ────────────────────────────────────────────────────────
	app.Post("/schema", func(c fiber.Ctx) error {
		if err := store.CreateSchema(c.Context()); err != nil {
			return fail(c, log, err)
		}
		return c.JSON(fiber.Map{"message": "schema created"})
	})

	app.Delete("/schema", func(c fiber.Ctx) error {
		if err := store.DropSchema(c.Context()); err != nil {
			return fail(c, log, err)
		}
		return c.JSON(fiber.Map{"message": "schema dropped"})
	})

	// ── Areas ─────────────────────────────────────────────────────────
	app.Post("/areas", func(c fiber.Ctx) error {
		var req area.SaveRequest
		if err := c.Bind().JSON(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
		}
		if err := mapper.Validate(&req); err != nil {
			return fail(c, log, err)
		}
		rec, err := store.CreateAreaWithActions(c.Context(), &req)
		if err != nil {
			return fail(c, log, err)
		}
		m.saves.WithLabelValues("create").Inc()
		log.Info("area created", "area_id", rec.ID, "actions", len(rec.Actions), "reactions", len(rec.Reactions))
		return c.Status(fiber.StatusCreated).JSON(rec)
	})

	app.Get("/areas", func(c fiber.Ctx) error {
		list, err := store.ListAreas(c.Context())
		if err != nil {
			return fail(c, log, err)
		}
		return c.JSON(list)
	})

	app.Get("/areas/:id", func(c fiber.Ctx) error {
		rec, err := store.GetArea(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, log, err)
		}
		return c.JSON(rec)
	})

	app.Put("/areas/:id", func(c fiber.Ctx) error {
		var req area.SaveRequest
		if err := c.Bind().JSON(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
		}
		if err := mapper.Validate(&req); err != nil {
			return fail(c, log, err)
		}
		rec, err := store.UpdateAreaComplete(c.Context(), c.Params("id"), &req)
		if err != nil {
			return fail(c, log, err)
		}
		m.saves.WithLabelValues("update").Inc()
		log.Info("area updated", "area_id", rec.ID, "connections", len(rec.Connections))
		return c.JSON(rec)
	})

	app.Delete("/areas/:id", func(c fiber.Ctx) error {
		if err := store.DeleteArea(c.Context(), c.Params("id")); err != nil {
			return fail(c, log, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	return app
}

// fail maps store errors onto status codes. Validation-class errors carry
// their code so clients can rebuild them.
func fail(c fiber.Ctx, log *slog.Logger, err error) error {
	switch {
	case errors.Is(err, area.ErrAreaNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "area not found"})
	case errors.Is(err, area.ErrValidation):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error(), "code": area.ValidationCode(err)})
	case errors.Is(err, area.ErrCycleDetected):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "cycle detected", "code": area.CodeCycle})
	case errors.Is(err, area.ErrUnknownServiceID):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error(), "code": area.CodeUnknownServiceID})
	}
	log.Error("request failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
