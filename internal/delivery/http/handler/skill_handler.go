package handler

import (
	"errors"
	"strconv"
	"strings"

	"data-jobs/internal/pkg/response"
	"data-jobs/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type SkillHandler struct {
	uc usecase.PipelineStatusUsecase
}

type skillFrequencyResponse struct {
	SkillID   int64  `json:"skill_id"`
	SkillName string `json:"skill_name"`
	Jobs      int64  `json:"jobs"`
}

func NewSkillHandler(uc usecase.PipelineStatusUsecase) *SkillHandler {
	return &SkillHandler{uc: uc}
}

func (h *SkillHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/skills")
	grp.Get("/top", h.Top)
}

func (h *SkillHandler) Top(c fiber.Ctx) error {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return response.Error(c, fiber.StatusBadRequest, "limit must be an integer", nil)
		}
		if n == 0 {
			return response.Error(c, fiber.StatusBadRequest, "limit must be between 1 and 100", nil)
		}
		limit = n
	}

	items, err := h.uc.TopSkills(c.Context(), limit)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidInput) {
			return response.Error(c, fiber.StatusBadRequest, "limit must be between 1 and 100", nil)
		}
		return response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
	}

	res := make([]skillFrequencyResponse, 0, len(items))
	for _, it := range items {
		res = append(res, skillFrequencyResponse{SkillID: it.SkillID, SkillName: it.SkillName, Jobs: it.Jobs})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}
