package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-scroller/internal/cycle"
	"github.com/i474232898/weather-scroller/internal/store"
	"github.com/i474232898/weather-scroller/internal/weather"
)

var validate = validator.New()

// Cycle is the part of the display controller exposed over HTTP.
type Cycle interface {
	Status() cycle.Status
	Request(kind cycle.Kind) error
}

// Snapshots reads the recorded fetch results.
type Snapshots interface {
	GetLatest() (weather.Snapshot, error)
	GetRecent(limit int) ([]weather.Snapshot, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, ctrl Cycle, snapshots Snapshots) {
	v1 := app.Group("/api/v1")

	v1.Get("/cycle", func(c *fiber.Ctx) error {
		return c.JSON(ctrl.Status())
	})

	v1.Post("/cycle/refresh", func(c *fiber.Ctx) error {
		req := refreshQuery{Kind: c.Query("kind", string(cycle.KindGather))}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := ctrl.Request(cycle.Kind(req.Kind)); err != nil {
			switch {
			case errors.Is(err, cycle.ErrUnknownKind):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			case errors.Is(err, cycle.ErrBusy):
				return fiber.NewError(fiber.StatusTooManyRequests, err.Error())
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "failed to queue request")
			}
		}

		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"queued": req.Kind,
		})
	})

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		snapshot, err := snapshots.GetLatest()
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather data fetched yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
		}

		return c.JSON(fiber.Map{
			"snapshot": snapshot,
			"display":  snapshot.Format(),
		})
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		req := historyQuery{Limit: c.QueryInt("limit", 10)}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		history, err := snapshots.GetRecent(req.Limit)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather history yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather history")
		}

		return c.JSON(fiber.Map{
			"limit":     req.Limit,
			"snapshots": history,
		})
	})
}

// refreshQuery holds query parameters for the refresh endpoint.
type refreshQuery struct {
	Kind string `validate:"required,oneof=gather clock"`
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Limit int `validate:"min=1,max=100"`
}
