package handler

import (
	"data-jobs/internal/pkg/response"
	"data-jobs/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type HealthHandler struct {
	uc usecase.PipelineStatusUsecase
}

type healthResponse struct {
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

func NewHealthHandler(uc usecase.PipelineStatusUsecase) *HealthHandler {
	return &HealthHandler{uc: uc}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Health)
}

// Health answers 503 when the database is down. A missing cache only
// degrades the status API, so it is reported but not fatal.
func (h *HealthHandler) Health(c fiber.Ctx) error {
	dbOK, cacheOK := h.uc.Health(c.Context())
	data := healthResponse{Database: state(dbOK), Cache: state(cacheOK)}
	if !dbOK {
		return response.Error(c, fiber.StatusServiceUnavailable, response.MessageServiceUnavailable, data)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}

func state(ok bool) string {
	if ok {
		return "up"
	}
	return "down"
}
