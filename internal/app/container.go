package app

import (
	"context"
	"os"
	"time"

	"data-jobs/internal/config"
	"data-jobs/internal/database"
	"data-jobs/internal/database/migration"
	dbpostgres "data-jobs/internal/database/postgres"
	"data-jobs/internal/domain/job"
	"data-jobs/internal/infrastructure/cache"
	"data-jobs/internal/pipeline"
	"data-jobs/internal/pkg/logger"
	"data-jobs/internal/repository"
	"data-jobs/internal/usecase"
)

// Container owns the process-wide connections and builds the components
// that use them.
type Container struct {
	Config config.Config
	Log    logger.Logger
	DB     database.DB
	Cache  *cache.Redis
}

func NewLogger(cfg config.LogConfig) logger.Logger {
	lc := logger.DefaultConfig()
	lc.Level = logger.ParseLevel(cfg.Level)
	lc.JSON = cfg.JSON
	lc.Output = os.Stderr
	return logger.New(lc)
}

func NewContainer(ctx context.Context, cfg config.Config, log logger.Logger) (*Container, error) {
	if log == nil {
		log = NewLogger(cfg.Log)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(connectCtx, cfg.Database)
	if err != nil {
		return nil, err
	}
	log.Info("postgres connected", "host", cfg.Database.DBHost, "db", cfg.Database.DBName)

	return &Container{
		Config: cfg,
		Log:    log,
		DB:     db,
		Cache:  cache.NewRedis(ctx, cfg.Redis, log),
	}, nil
}

func (c *Container) ETLPipeline() *pipeline.ETLPipeline {
	return pipeline.NewETLPipeline(repository.NewPostgresLoadRepository(c.DB), c.Cache, c.Log)
}

func (c *Container) PipelineStatus() *usecase.PipelineStatus {
	return usecase.NewPipelineStatusUsecase(
		repository.NewPostgresPipelineStatusRepository(c.DB),
		c.Cache,
		c.DB,
		c.Cache,
		c.Log,
	)
}

// ExpectedTables is the schema the migrations must leave behind.
func ExpectedTables() []migration.TableColumns {
	return []migration.TableColumns{
		{Table: repository.TableRawJobs, Columns: job.ExpectedColumns},
		{Table: repository.TableSkills, Columns: []string{"skill_id", "skill_name"}},
		{Table: repository.TableJobSkills, Columns: []string{"job_id", "skill_id"}},
	}
}

// Migrate applies pending migrations from dir and verifies the result.
func (c *Container) Migrate(ctx context.Context, dir string) error {
	n, err := migration.Runner{Dir: dir, Log: c.Log}.Run(ctx, c.DB.SQLDB())
	if err != nil {
		return err
	}
	if err := migration.Verify(ctx, c.DB, ExpectedTables()...); err != nil {
		return err
	}
	c.Log.Info("schema ready", "applied", n)
	return nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
