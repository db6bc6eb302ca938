package repository

import (
	"context"
	"testing"

	"data-jobs/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresPipelineStatusRepository_GetTableCounts(t *testing.T) {
	db := &fakeDB{rows: []fakeRow{
		{vals: []any{true}}, {vals: []any{int64(5)}},
		{vals: []any{false}},
		{vals: []any{true}}, {vals: []any{int64(7)}},
	}}
	repo := NewPostgresPipelineStatusRepository(db)

	got, err := repo.GetTableCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.TableCounts{RawJobs: 5, Skills: 0, JobSkills: 7}, got)

	require.Len(t, db.queries, 5)
	assert.Equal(t, "SELECT to_regclass($1) IS NOT NULL", db.queries[0])
	assert.Equal(t, []any{"public.data_jobs_raw"}, db.args[0])
	assert.Equal(t, `SELECT COUNT(*) FROM "data_jobs_raw"`, db.queries[1])
	assert.Equal(t, []any{"public.dim_skill"}, db.args[2])
}

func TestPostgresPipelineStatusRepository_ListTopSkills(t *testing.T) {
	db := &fakeDB{results: [][][]any{{
		{int64(3), "python", int64(10)},
		{int64(4), "sql", int64(8)},
	}}}
	repo := NewPostgresPipelineStatusRepository(db)

	got, err := repo.ListTopSkills(context.Background(), 500)
	require.NoError(t, err)
	assert.Equal(t, []domain.SkillFrequency{
		{SkillID: 3, SkillName: "python", Jobs: 10},
		{SkillID: 4, SkillName: "sql", Jobs: 8},
	}, got)

	require.Len(t, db.queries, 1)
	q := db.queries[0]
	assert.Contains(t, q, `FROM "dim_skill" s JOIN "bridge_job_skill" b ON b.skill_id = s.skill_id`)
	assert.Contains(t, q, "ORDER BY jobs DESC, s.skill_name ASC")
	assert.Contains(t, q, "LIMIT 100")
}

func TestPostgresPipelineStatusRepository_ListTopSkills_DefaultLimit(t *testing.T) {
	db := &fakeDB{}
	got, err := NewPostgresPipelineStatusRepository(db).ListTopSkills(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Contains(t, db.queries[0], "LIMIT 20")
}
