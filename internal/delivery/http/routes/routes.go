package routes

import (
	"data-jobs/internal/delivery/http/handler"
	"data-jobs/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	health *handler.HealthHandler
	status *handler.PipelineStatusHandler
	skills *handler.SkillHandler
}

func NewRegistry(status usecase.PipelineStatusUsecase) *Registry {
	return &Registry{
		health: handler.NewHealthHandler(status),
		status: handler.NewPipelineStatusHandler(status),
		skills: handler.NewSkillHandler(status),
	}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.health.RegisterRoutes(app)
	r.registerAPI(app)
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	r.registerV1(api.Group("/v1"))
}
