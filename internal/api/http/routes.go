package httpapi

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/crystaldash/crystaldash/internal/dashboard"
)

var validate = validator.New()

// RegisterRoutes wires the API handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *dashboard.Service) {
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"ok":   true,
			"time": time.Now().UTC().Format(time.RFC3339),
		})
	})

	api.Get("/state", func(c *fiber.Ctx) error {
		snapshot, err := service.GetState(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to build conditions snapshot")
		}
		return c.JSON(snapshot)
	})

	api.Get("/pass-report/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := validate.Var(id, "required,hostname_rfc1123"); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid pass id")
		}

		report, err := service.PassReport(c.Context(), id)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "no report for requested pass")
		}
		return c.JSON(report)
	})
}

// RegisterStatic serves the prebuilt client bundle with SPA fallback: any
// non-API path that does not match a file gets index.html. Skipped when the
// bundle directory does not exist.
func RegisterStatic(app *fiber.App, dir string) {
	if _, err := os.Stat(dir); err != nil {
		return
	}

	app.Static("/", dir)

	index := filepath.Join(dir, "index.html")
	app.Use(func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api") {
			return fiber.ErrNotFound
		}
		return c.SendFile(index)
	})
}
