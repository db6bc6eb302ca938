package pipeline

import (
	"context"
	"time"

	"data-jobs/internal/cleaning"
	"data-jobs/internal/domain"
	"data-jobs/internal/frame"
	"data-jobs/internal/ingest"
	"data-jobs/internal/pkg/apperr"
	"data-jobs/internal/pkg/logger"
	"data-jobs/internal/repository"
	"data-jobs/internal/skills"
	"data-jobs/internal/validation"

	"github.com/google/uuid"
)

const (
	LastRunKey = "etl:last_run"
	runLockKey = "etl:run:lock"
	runLockTTL = 2 * time.Hour
)

// RunReportCache keeps the last run report for the status API and guards
// against overlapping runs.
type RunReportCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
}

type ETLPipeline struct {
	cleaner    *cleaning.Cleaner
	normalizer *skills.Normalizer
	validator  *validation.Validator
	loads      repository.LoadRepository
	cache      RunReportCache
	log        logger.Logger

	now func() time.Time
}

type RunParams struct {
	CSVPath string
}

func NewETLPipeline(loads repository.LoadRepository, cache RunReportCache, log logger.Logger) *ETLPipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &ETLPipeline{
		cleaner:    cleaning.NewCleaner(cleaning.DefaultSchema()),
		normalizer: skills.NewNormalizer(log),
		validator:  validation.NewValidator(),
		loads:      loads,
		cache:      cache,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Run executes one extract, transform and load pass over the CSV at
// params.CSVPath. The returned report is filled in as far as the run got,
// also when err is non-nil.
func (p *ETLPipeline) Run(ctx context.Context, params RunParams) (domain.RunReport, error) {
	report := domain.RunReport{
		RunID:     uuid.NewString(),
		InputPath: params.CSVPath,
		StartedAt: p.now(),
	}
	log := p.log.With("pipeline", "etl", "run_id", report.RunID)

	locked, err := p.acquireLock(ctx, report.RunID, log)
	if err != nil {
		// the running pass owns the cached report
		report.FinishedAt = p.now()
		report.Status = domain.RunStatusFailed
		report.Error = err.Error()
		log.Warn("run", "status", "skipped", "err", err)
		return report, err
	}
	if locked {
		defer p.releaseLock(log)
	}

	log.Info("run", "status", "started", "csv", params.CSVPath)
	err = p.run(ctx, log, params, &report)
	return p.finish(ctx, log, report, err)
}

func (p *ETLPipeline) run(ctx context.Context, log logger.Logger, params RunParams, report *domain.RunReport) error {
	if p.loads == nil {
		return apperr.Internal("pipeline has no load repository", nil)
	}

	var jobs *frame.Frame
	if err := step(log, "load_csv", func() (err error) {
		jobs, err = ingest.LoadCSV(params.CSVPath)
		return err
	}); err != nil {
		return err
	}
	report.Rows = jobs.Len()

	if err := step(log, "clean", func() error {
		if err := p.cleaner.Clean(jobs); err != nil {
			return apperr.InvalidData("clean postings", err)
		}
		return nil
	}); err != nil {
		return err
	}

	var normalized *skills.Result
	if err := step(log, "normalize_skills", func() (err error) {
		normalized, err = p.normalizer.Normalize(jobs)
		return err
	}); err != nil {
		return err
	}
	report.Skills = len(normalized.Dimension)
	report.JobSkills = len(normalized.Bridge)
	report.ListedPairs = normalized.Stats.ListedPairs
	report.ListCellsUnparsable = normalized.Stats.ListCellsUnparsable
	report.GroupCellsUnparsable = normalized.Stats.GroupCellsUnparsable
	if n := report.ListCellsUnparsable + report.GroupCellsUnparsable; n > 0 {
		log.Warn("unparsable skill cells",
			"step", "normalize_skills",
			"list_cells", report.ListCellsUnparsable,
			"group_cells", report.GroupCellsUnparsable,
		)
	}

	if err := step(log, "validate", func() error {
		return p.validator.Validate(jobs, normalized)
	}); err != nil {
		return err
	}

	if err := step(log, "check_liveness", func() error {
		return p.loads.CheckLiveness(ctx)
	}); err != nil {
		return err
	}

	if err := step(log, "replace_tables", func() error {
		res, err := p.loads.Replace(ctx, repository.LoadBatch{
			Jobs:   jobs,
			Skills: normalized.Dimension,
			Bridge: normalized.Bridge,
		})
		if err != nil {
			return err
		}
		log.Info("tables replaced",
			"step", "replace_tables",
			repository.TableRawJobs, res.RawJobs,
			repository.TableSkills, res.Skills,
			repository.TableJobSkills, res.JobSkills,
		)
		return nil
	}); err != nil {
		return err
	}

	return step(log, "count_rows", func() (err error) {
		report.LoadedRows, err = p.loads.CountRows(ctx, repository.TableRawJobs)
		return err
	})
}

func step(log logger.Logger, name string, fn func() error) error {
	start := time.Now()
	log.Info("step", "step", name, "status", "started")
	if err := fn(); err != nil {
		log.Error("step", "step", name, "status", "error", "duration", time.Since(start), "err", err)
		return err
	}
	log.Info("step", "step", name, "status", "finished", "duration", time.Since(start))
	return nil
}

func (p *ETLPipeline) finish(ctx context.Context, log logger.Logger, report domain.RunReport, err error) (domain.RunReport, error) {
	report.FinishedAt = p.now()
	report.Status = domain.RunStatusSucceeded
	if err != nil {
		report.Status = domain.RunStatusFailed
		report.Error = err.Error()
	}

	if p.cache != nil {
		if cerr := p.cache.SetJSON(ctx, LastRunKey, report, 0); cerr != nil {
			log.Warn("cache run report", "status", "error", "err", cerr)
		}
	}

	duration := report.FinishedAt.Sub(report.StartedAt)
	if err != nil {
		log.Error("run", "status", "failed", "duration", duration, "error_type", apperr.TypeOf(err), "err", err)
		return report, err
	}
	log.Info("run",
		"status", "finished",
		"duration", duration,
		"rows", report.Rows,
		"skills", report.Skills,
		"job_skills", report.JobSkills,
		"loaded_rows", report.LoadedRows,
	)
	return report, nil
}

// acquireLock reports whether this run holds the run lock. A cache error
// does not block the run.
func (p *ETLPipeline) acquireLock(ctx context.Context, runID string, log logger.Logger) (bool, error) {
	if p.cache == nil {
		return false, nil
	}
	ok, err := p.cache.SetIfNotExists(ctx, runLockKey, runID, runLockTTL)
	if err != nil {
		log.Warn("run lock", "status", "error", "err", err)
		return false, nil
	}
	if !ok {
		return false, apperr.Unavailable("another run is in progress", nil)
	}
	return true, nil
}

func (p *ETLPipeline) releaseLock(log logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.cache.Delete(ctx, runLockKey); err != nil {
		log.Warn("run lock release", "status", "error", "err", err)
	}
}

// LastRun returns the most recent cached run report, if any.
func LastRun(ctx context.Context, cache RunReportCache) (*domain.RunReport, error) {
	if cache == nil {
		return nil, nil
	}
	var r domain.RunReport
	found, err := cache.GetJSON(ctx, LastRunKey, &r)
	if err != nil || !found {
		return nil, err
	}
	return &r, nil
}
