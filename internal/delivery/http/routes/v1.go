package routes

import "github.com/gofiber/fiber/v3"

func (r *Registry) registerV1(v1 fiber.Router) {
	if v1 == nil {
		return
	}

	r.status.RegisterRoutes(v1)
	r.skills.RegisterRoutes(v1)
}
