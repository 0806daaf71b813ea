package handler

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"camportal/internal/service"
)

// Services bundles the portal services the routes depend on.
type Services struct {
	Fleet    service.FleetService
	Archives service.ArchiveService
	Reports  service.ReportService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin: parse, delegate, translate errors.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc Services) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	// Dashboard: cached fleet summary + provider health
	app.Get("/", func(c *fiber.Ctx) error {
		d, err := svc.Fleet.Dashboard(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "camera provider unavailable")
		}
		return c.JSON(d)
	})

	// Forced recompute: drops camera and stats caches first
	app.Get("/api/stats", func(c *fiber.Ctx) error {
		d, err := svc.Fleet.RefreshDashboard(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "camera provider unavailable")
		}
		return c.JSON(d)
	})

	// Camera list with filters and fixed-size pages
	app.Get("/cameras", func(c *fiber.Ctx) error {
		page := 1
		if raw := c.Query("page"); raw != "" {
			p, err := strconv.Atoi(raw)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE", "invalid page")
			}
			page = p
		}
		status := c.Query("status")
		if status != "" && status != "online" && status != "offline" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_STATUS", "status must be online or offline")
		}

		res, err := svc.Fleet.ListCameras(c.UserContext(), service.CameraListQuery{
			Q:      c.Query("q"),
			Status: status,
			Vendor: c.Query("vendor"),
			DC:     c.Query("dc"),
			Page:   page,
		})
		if err != nil {
			return writeError(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "camera provider unavailable")
		}
		return c.JSON(res)
	})

	// Camera detail with recent archive analysis
	app.Get("/cameras/:uid", func(c *fiber.Ctx) error {
		uid := strings.TrimSpace(c.Params("uid"))
		if uid == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_UID", "invalid camera uid")
		}
		d, err := svc.Fleet.CameraDetail(c.UserContext(), uid)
		if err != nil {
			if errors.Is(err, service.ErrCameraNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "camera not found")
			}
			return writeError(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "camera provider unavailable")
		}
		return c.JSON(d)
	})

	// Baked archive exports
	app.Get("/archives", func(c *fiber.Ctx) error {
		page := 1
		if raw := c.Query("page"); raw != "" {
			p, err := strconv.Atoi(raw)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE", "invalid page")
			}
			page = p
		}
		res, err := svc.Archives.List(c.UserContext(), page, c.Query("status"))
		if err != nil {
			return writeError(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "camera provider unavailable")
		}
		return c.JSON(res)
	})

	// Create a report; generation continues in the background
	app.Post("/reports", func(c *fiber.Ctx) error {
		var body struct {
			PeriodDays int `json:"period_days"`
		}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
			}
		}
		if body.PeriodDays == 0 {
			body.PeriodDays = service.DefaultReportPeriodDays
		}

		rep, err := svc.Reports.Create(c.UserContext(), body.PeriodDays)
		if err != nil {
			if errors.Is(err, service.ErrInvalidPeriod) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_PERIOD", "period must be between 1 and 90 days")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusAccepted).JSON(rep)
	})

	app.Get("/reports", func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.Reports.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	})

	app.Get("/reports/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rep, err := svc.Reports.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrReportNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "report not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(rep)
	})

	// Redirect to a short-lived presigned object URL
	app.Get("/reports/:id/download", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		url, err := svc.Reports.DownloadURL(c.UserContext(), id)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrReportNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "report not found")
			case errors.Is(err, service.ErrReportNotReady):
				return writeError(c, fiber.StatusConflict, "NOT_READY", "report is not ready for download")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.Redirect(url, fiber.StatusFound)
	})

	app.Delete("/reports/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Reports.Delete(c.UserContext(), id); err != nil {
			if errors.Is(err, service.ErrReportNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "report not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// Health aggregates DB connectivity and the cached provider probe
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		dbStatus := "ok"
		if err := db.PingContext(ctx); err != nil {
			dbStatus = "error"
		}

		providerStatus := "error"
		if d, err := svc.Fleet.Dashboard(ctx); err == nil && d.Health != nil {
			providerStatus = d.Health.Status
		}

		status := fiber.StatusOK
		overall := "healthy"
		if dbStatus != "ok" || providerStatus != "ok" {
			status = fiber.StatusServiceUnavailable
			overall = "degraded"
		}
		return c.Status(status).JSON(fiber.Map{
			"status":   overall,
			"database": dbStatus,
			"provider": providerStatus,
		})
	})

	// Liveness probe
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
}
