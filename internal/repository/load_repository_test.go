package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"data-jobs/internal/domain/skill"
	"data-jobs/internal/frame"
	"data-jobs/internal/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFrame(t *testing.T) *frame.Frame {
	t.Helper()
	posted := time.Date(2023, 6, 16, 13, 44, 15, 0, time.UTC)
	f := frame.New(2)
	for _, c := range []*frame.Column{
		{Name: "job_id", Kind: frame.KindInt, Values: []any{int64(1), int64(2)}},
		{Name: "job_title", Kind: frame.KindText, Values: []any{"Data Analyst", nil}},
		{Name: "job_posted_date", Kind: frame.KindDatetime, Values: []any{posted, nil}},
		{Name: "job_work_from_home", Kind: frame.KindBool, Values: []any{true, false}},
		{Name: "salary_year_avg", Kind: frame.KindFloat, Values: []any{98000.5, float64(0)}},
		{Name: "job_skills", Kind: frame.KindList, Values: []any{[]string{"python", "sql"}, []string{}}},
	} {
		require.NoError(t, f.Append(c))
	}
	return f
}

func TestPostgresLoadRepository_CheckLiveness(t *testing.T) {
	db := &fakeDB{rows: []fakeRow{{vals: []any{1}}}}
	repo := NewPostgresLoadRepository(db)
	require.NoError(t, repo.CheckLiveness(context.Background()))
	assert.Equal(t, []string{"SELECT 1"}, db.queries)

	db = &fakeDB{rows: []fakeRow{{err: errors.New("connection refused")}}}
	err := NewPostgresLoadRepository(db).CheckLiveness(context.Background())
	assert.True(t, apperr.Is(err, apperr.ErrTypeUnavailable))
}

func TestPostgresLoadRepository_Replace(t *testing.T) {
	db := &fakeDB{}
	repo := NewPostgresLoadRepository(db)
	f := loadFrame(t)

	res, err := repo.Replace(context.Background(), LoadBatch{
		Jobs:   f,
		Skills: []skill.Skill{{ID: 1, Name: "python"}, {ID: 2, Name: "sql"}},
		Bridge: []skill.JobSkill{{JobID: 1, SkillID: 1}, {JobID: 1, SkillID: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, LoadResult{RawJobs: 2, Skills: 2, JobSkills: 2}, res)

	tx := db.tx
	require.NotNil(t, tx)
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)

	require.Len(t, tx.execs, 6)
	assert.Equal(t, `DROP TABLE IF EXISTS "bridge_job_skill" CASCADE`, tx.execs[0])
	assert.Equal(t, `DROP TABLE IF EXISTS "dim_skill" CASCADE`, tx.execs[1])
	assert.Equal(t, `DROP TABLE IF EXISTS "data_jobs_raw" CASCADE`, tx.execs[2])

	raw := tx.execs[3]
	assert.Contains(t, raw, `CREATE TABLE "data_jobs_raw"`)
	assert.Contains(t, raw, `"job_id" BIGINT PRIMARY KEY`)
	assert.Contains(t, raw, `"job_title" TEXT`)
	assert.Contains(t, raw, `"job_posted_date" TIMESTAMPTZ`)
	assert.Contains(t, raw, `"job_work_from_home" BOOLEAN`)
	assert.Contains(t, raw, `"salary_year_avg" DOUBLE PRECISION`)
	assert.Contains(t, raw, `"job_skills" TEXT`)
	assert.Contains(t, tx.execs[4], `CREATE TABLE "dim_skill"`)
	assert.Contains(t, tx.execs[5], `REFERENCES "data_jobs_raw" (job_id)`)

	require.Len(t, tx.copies, 3)
	assert.Equal(t, "data_jobs_raw", tx.copies[0].table)
	assert.Equal(t, []string{"job_id", "job_title", "job_posted_date", "job_work_from_home", "salary_year_avg", "job_skills"}, tx.copies[0].columns)
	assert.Equal(t, `["python","sql"]`, tx.copies[0].rows[0][5])
	assert.Equal(t, `[]`, tx.copies[0].rows[1][5])
	assert.Nil(t, tx.copies[0].rows[1][1])
	assert.Equal(t, [][]any{{int64(1), "python"}, {int64(2), "sql"}}, tx.copies[1].rows)
	assert.Equal(t, [][]any{{int64(1), int64(1)}, {int64(1), int64(2)}}, tx.copies[2].rows)

	lists, _ := f.Column("job_skills")
	assert.Equal(t, []string{"python", "sql"}, lists.Values[0], "frame must not be mutated")
}

func TestPostgresLoadRepository_Replace_RollsBackOnCopyFailure(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{copyErrOn: "bridge_job_skill"}}
	_, err := NewPostgresLoadRepository(db).Replace(context.Background(), LoadBatch{Jobs: loadFrame(t)})

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ErrTypeInternal))
	assert.False(t, db.tx.committed)
	assert.True(t, db.tx.rolledBack)
}

func TestPostgresLoadRepository_Replace_BeginFailure(t *testing.T) {
	db := &fakeDB{beginErr: errors.New("pool closed")}
	_, err := NewPostgresLoadRepository(db).Replace(context.Background(), LoadBatch{Jobs: loadFrame(t)})
	assert.True(t, apperr.Is(err, apperr.ErrTypeUnavailable))

	_, err = NewPostgresLoadRepository(db).Replace(context.Background(), LoadBatch{})
	assert.True(t, apperr.Is(err, apperr.ErrTypeInvalidData))
}

func TestPostgresLoadRepository_CountRows(t *testing.T) {
	db := &fakeDB{rows: []fakeRow{{vals: []any{int64(42)}}}}
	n, err := NewPostgresLoadRepository(db).CountRows(context.Background(), TableRawJobs)
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	assert.Equal(t, []string{`SELECT COUNT(*) FROM "data_jobs_raw"`}, db.queries)
}
