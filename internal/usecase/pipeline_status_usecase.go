package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"data-jobs/internal/domain"
	"data-jobs/internal/pipeline"
	"data-jobs/internal/pkg/logger"
	"data-jobs/internal/repository"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

const (
	DefaultTopSkillsLimit = 20
	MaxTopSkillsLimit     = 100
)

// Pinger is anything whose liveness the status endpoints report.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PipelineStatusUsecase interface {
	GetStatus(ctx context.Context) (domain.PipelineStatus, error)
	TopSkills(ctx context.Context, limit int) ([]domain.SkillFrequency, error)
	Health(ctx context.Context) (dbOK bool, cacheOK bool)
}

type PipelineStatus struct {
	repo  repository.PipelineStatusRepository
	cache pipeline.RunReportCache
	db    Pinger
	redis Pinger
	log   logger.Logger
}

func NewPipelineStatusUsecase(
	repo repository.PipelineStatusRepository,
	cache pipeline.RunReportCache,
	db Pinger,
	redis Pinger,
	log logger.Logger,
) *PipelineStatus {
	if log == nil {
		log = logger.Nop()
	}
	return &PipelineStatus{repo: repo, cache: cache, db: db, redis: redis, log: log}
}

// GetStatus gathers table counts, the last run report and liveness
// concurrently. A failing source is logged and left at its zero value.
func (u *PipelineStatus) GetStatus(ctx context.Context) (domain.PipelineStatus, error) {
	out := domain.PipelineStatus{ServerTime: time.Now().UTC()}
	if u == nil {
		return out, nil
	}

	var (
		counts  domain.TableCounts
		lastRun *domain.RunReport

		errCounts  error
		errLastRun error
	)

	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if u.repo == nil {
			return
		}
		counts, errCounts = u.repo.GetTableCounts(ctx)
		if errCounts != nil {
			u.log.Warn("pipeline_status", "step", "table_counts", "status", "error", "err", errCounts)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		lastRun, errLastRun = pipeline.LastRun(ctx, u.cache)
		if errLastRun != nil {
			u.log.Warn("pipeline_status", "step", "last_run", "status", "error", "err", errLastRun)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		out.DatabaseHealthy, out.RedisHealthy = u.Health(ctx)
	}()

	wg.Wait()

	out.Tables = counts
	out.LastRun = lastRun
	if errCounts != nil && errLastRun != nil {
		return out, ErrInternal
	}
	return out, nil
}

func (u *PipelineStatus) TopSkills(ctx context.Context, limit int) ([]domain.SkillFrequency, error) {
	if limit == 0 {
		limit = DefaultTopSkillsLimit
	}
	if limit < 1 || limit > MaxTopSkillsLimit {
		return nil, ErrInvalidInput
	}
	items, err := u.repo.ListTopSkills(ctx, limit)
	if err != nil {
		u.log.Error("top_skills", "status", "error", "err", err)
		return nil, ErrInternal
	}
	return items, nil
}

func (u *PipelineStatus) Health(ctx context.Context) (bool, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return ping(ctx, u.db), ping(ctx, u.redis)
}

func ping(ctx context.Context, p Pinger) bool {
	if p == nil {
		return false
	}
	return p.Ping(ctx) == nil
}
