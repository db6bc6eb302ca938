package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"data-jobs/internal/domain"
	"data-jobs/internal/frame"
	"data-jobs/internal/pkg/apperr"
	"data-jobs/internal/pkg/logger"
	"data-jobs/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoads struct {
	livenessErr error
	replaceErr  error
	count       int64

	replaced []repository.LoadBatch
	calls    []string
}

func (f *fakeLoads) CheckLiveness(context.Context) error {
	f.calls = append(f.calls, "liveness")
	return f.livenessErr
}

func (f *fakeLoads) Replace(_ context.Context, batch repository.LoadBatch) (repository.LoadResult, error) {
	f.calls = append(f.calls, "replace")
	if f.replaceErr != nil {
		return repository.LoadResult{}, f.replaceErr
	}
	f.replaced = append(f.replaced, batch)
	return repository.LoadResult{
		RawJobs:   int64(batch.Jobs.Len()),
		Skills:    int64(len(batch.Skills)),
		JobSkills: int64(len(batch.Bridge)),
	}, nil
}

func (f *fakeLoads) CountRows(_ context.Context, table string) (int64, error) {
	f.calls = append(f.calls, "count:"+table)
	return f.count, nil
}

type memCache struct {
	m      map[string][]byte
	setErr error
}

func newMemCache() *memCache { return &memCache{m: map[string][]byte{}} }

func (c *memCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	b, ok := c.m[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (c *memCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.m[key] = b
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	delete(c.m, key)
	return nil
}

func (c *memCache) SetIfNotExists(_ context.Context, key string, value string, _ time.Duration) (bool, error) {
	if _, ok := c.m[key]; ok {
		return false, nil
	}
	c.m[key] = []byte(value)
	return true, nil
}

const fixture = "testdata/data_jobs.csv"

func TestETLPipeline_Run(t *testing.T) {
	loads := &fakeLoads{count: 3}
	cache := newMemCache()
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: logger.InfoLevel, Output: &buf, JSON: true})

	report, err := NewETLPipeline(loads, cache, log).Run(context.Background(), RunParams{CSVPath: fixture})
	require.NoError(t, err)

	assert.Equal(t, domain.RunStatusSucceeded, report.Status)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 3, report.Rows)
	assert.Equal(t, 3, report.Skills)
	assert.Equal(t, 3, report.JobSkills)
	assert.Equal(t, 2, report.ListedPairs)
	assert.Equal(t, 1, report.ListCellsUnparsable)
	assert.Equal(t, 1, report.GroupCellsUnparsable)
	assert.Equal(t, int64(3), report.LoadedRows)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))

	assert.Equal(t, []string{"liveness", "replace", "count:data_jobs_raw"}, loads.calls)
	require.Len(t, loads.replaced, 1)
	batch := loads.replaced[0]
	ids, ok := batch.Jobs.Column("job_id")
	require.True(t, ok)
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, ids.Values)
	lists, _ := batch.Jobs.Column("job_skills")
	assert.Equal(t, frame.KindList, lists.Kind)

	cached, err := LastRun(context.Background(), cache)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, report.RunID, cached.RunID)
	assert.Equal(t, domain.RunStatusSucceeded, cached.Status)
	_, locked := cache.m[runLockKey]
	assert.False(t, locked, "run lock must be released")

	out := buf.String()
	assert.Contains(t, out, "unparsable skill cells")
	assert.Contains(t, out, "replace_tables")
}

func TestETLPipeline_Run_MissingFile(t *testing.T) {
	loads := &fakeLoads{}
	cache := newMemCache()

	report, err := NewETLPipeline(loads, cache, nil).Run(context.Background(), RunParams{CSVPath: filepath.Join(t.TempDir(), "missing.csv")})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ErrTypeInvalidInput))
	assert.Equal(t, domain.RunStatusFailed, report.Status)
	assert.NotEmpty(t, report.Error)
	assert.Empty(t, loads.calls)

	cached, err := LastRun(context.Background(), cache)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, domain.RunStatusFailed, cached.Status)
}

func TestETLPipeline_Run_InvalidDataAbortsBeforeLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.csv")
	require.NoError(t, os.WriteFile(path, []byte("job_title,job_skills,job_type_skills\nAnalyst,\"['sql']\",{}\n"), 0o644))
	loads := &fakeLoads{}

	_, err := NewETLPipeline(loads, nil, nil).Run(context.Background(), RunParams{CSVPath: path})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ErrTypeInvalidData))
	assert.Contains(t, err.Error(), "missing columns")
	assert.Empty(t, loads.calls)
}

func TestETLPipeline_Run_DatabaseUnavailable(t *testing.T) {
	loads := &fakeLoads{livenessErr: apperr.Unavailable("postgres liveness check", errors.New("refused"))}

	_, err := NewETLPipeline(loads, newMemCache(), nil).Run(context.Background(), RunParams{CSVPath: fixture})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ErrTypeUnavailable))
	assert.Equal(t, []string{"liveness"}, loads.calls)
}

func TestETLPipeline_Run_CacheFailureIsNotFatal(t *testing.T) {
	cache := newMemCache()
	cache.setErr = errors.New("redis down")

	report, err := NewETLPipeline(&fakeLoads{count: 3}, cache, nil).Run(context.Background(), RunParams{CSVPath: fixture})
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusSucceeded, report.Status)
}

func TestETLPipeline_Run_SkipsWhenLocked(t *testing.T) {
	cache := newMemCache()
	cache.m[runLockKey] = []byte("other-run")
	loads := &fakeLoads{}

	report, err := NewETLPipeline(loads, cache, nil).Run(context.Background(), RunParams{CSVPath: fixture})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ErrTypeUnavailable))
	assert.Equal(t, domain.RunStatusFailed, report.Status)
	assert.Empty(t, loads.calls)

	_, cached := cache.m[LastRunKey]
	assert.False(t, cached)
	assert.Equal(t, []byte("other-run"), cache.m[runLockKey])
}
