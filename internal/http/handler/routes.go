package handler

import (
	"github.com/gofiber/fiber/v2"

	"dxfhatch/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, svc service.HatchService) {
	app.Get("/health", HealthCheck())
	app.Get("/healthz", LivenessProbe())

	app.Post("/generate", Generate(svc))
	app.Post("/hatch-on-upload", HatchOnUpload(svc))
}

// HealthCheck godoc
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func HealthCheck() fiber.Handler {
	// The service is stateless: once routes are mounted it is ready.
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe godoc
// @Summary Liveness probe
// @Tags health
// @Success 200
// @Router /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
