package handler

import (
	"data-jobs/internal/pkg/response"
	"data-jobs/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type PipelineStatusHandler struct {
	uc usecase.PipelineStatusUsecase
}

func NewPipelineStatusHandler(uc usecase.PipelineStatusUsecase) *PipelineStatusHandler {
	return &PipelineStatusHandler{uc: uc}
}

func (h *PipelineStatusHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/pipeline/status", h.GetStatus)
}

func (h *PipelineStatusHandler) GetStatus(c fiber.Ctx) error {
	data, err := h.uc.GetStatus(c.Context())
	if err != nil {
		return response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, data)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}
