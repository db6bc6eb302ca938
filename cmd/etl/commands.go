package main

import (
	"context"
	"strings"
	"time"

	"data-jobs/internal/app"
	"data-jobs/internal/config"
	"data-jobs/internal/pipeline"
	"data-jobs/internal/pkg/apperr"
	"data-jobs/internal/pkg/logger"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "etl",
		Short:         "Load the job postings CSV into Postgres",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newMigrateCmd(), newScheduleCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var csvPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *app.Container) error {
				_, err := c.ETLPipeline().Run(ctx, pipeline.RunParams{CSVPath: pick(csvPath, c.Config.Pipeline.CSVPath)})
				return err
			})
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "input CSV (default $CSV_PATH or "+config.DefaultCSVPath+")")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and verify the tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *app.Container) error {
				return c.Migrate(ctx, pick(dir, c.Config.Pipeline.MigrationsDir))
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "migrations directory (default $MIGRATIONS_DIR or ./migrations)")
	return cmd
}

func newScheduleCmd() *cobra.Command {
	var spec, csvPath, dir string
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Migrate and run the pipeline on a cron schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *app.Container) error {
				schedule := pick(spec, c.Config.Pipeline.Schedule)
				tick := func() {
					if err := c.Migrate(ctx, pick(dir, c.Config.Pipeline.MigrationsDir)); err != nil {
						c.Log.Error("scheduled run", "step", "migrate", "status", "error", "err", err)
						return
					}
					// failures are logged and cached by the pipeline itself
					_, _ = c.ETLPipeline().Run(ctx, pipeline.RunParams{CSVPath: pick(csvPath, c.Config.Pipeline.CSVPath)})
				}
				return runSchedule(ctx, schedule, tick, c.Log)
			})
		},
	}
	cmd.Flags().StringVar(&spec, "cron", "", "cron expression or descriptor (default $ETL_SCHEDULE or @daily)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "input CSV (default $CSV_PATH)")
	cmd.Flags().StringVar(&dir, "dir", "", "migrations directory (default $MIGRATIONS_DIR)")
	return cmd
}

// runSchedule runs job on spec until ctx is done. Overlapping ticks are
// skipped.
func runSchedule(ctx context.Context, spec string, job func(), log logger.Logger) error {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return apperr.InvalidInput("parse schedule "+spec, err)
	}

	cl := cronLogger{log: log}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	c.Schedule(sched, cron.FuncJob(job))
	c.Start()
	log.Info("scheduler started", "schedule", spec, "next", sched.Next(time.Now()).Format(time.RFC3339))

	<-ctx.Done()
	log.Info("scheduler stopping")
	<-c.Stop().Done()
	return nil
}

func withContainer(ctx context.Context, fn func(context.Context, *app.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return apperr.InvalidInput("load config", err)
	}
	log := app.NewLogger(cfg.Log)

	c, err := app.NewContainer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.Warn("cleanup", "err", err)
		}
	}()
	return fn(ctx, c)
}

func pick(flag, fallback string) string {
	if v := strings.TrimSpace(flag); v != "" {
		return v
	}
	return fallback
}

type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron "+msg, append(keysAndValues, "err", err)...)
}
