package app

import (
	"context"
	"fmt"
	"strings"

	"data-jobs/internal/config"
	"data-jobs/internal/delivery/http/middleware"
	"data-jobs/internal/delivery/http/routes"
	"data-jobs/internal/pkg/logger"
	"data-jobs/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber *fiber.App
}

func New(cfg config.Config, status usecase.PipelineStatusUsecase, log logger.Logger) *App {
	f := fiber.New(fiber.Config{AppName: cfg.App.AppName})

	registerGlobalMiddleware(f, log)
	routes.NewRegistry(status).Register(f)

	return &App{Fiber: f}
}

// Bootstrap connects the container and builds the status server on top of
// it. cleanup closes the container.
func Bootstrap(ctx context.Context, cfg config.Config, log logger.Logger) (*App, func() error, error) {
	c, err := NewContainer(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	app := New(cfg, c.PipelineStatus(), c.Log)
	return app, c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, log logger.Logger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(log).Middleware())
	app.Use(middleware.NewErrorMiddleware(log).Middleware())
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
