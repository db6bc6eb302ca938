package repository

import (
	"context"

	"data-jobs/internal/database"
	"data-jobs/internal/domain"

	sq "github.com/Masterminds/squirrel"
)

type PipelineStatusRepository interface {
	GetTableCounts(ctx context.Context) (domain.TableCounts, error)
	ListTopSkills(ctx context.Context, limit int) ([]domain.SkillFrequency, error)
}

type PostgresPipelineStatusRepository struct {
	db database.DB
	qb sq.StatementBuilderType
}

func NewPostgresPipelineStatusRepository(db database.DB) *PostgresPipelineStatusRepository {
	return &PostgresPipelineStatusRepository{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// GetTableCounts counts the rows of the three loaded tables. A table that
// has not been created yet counts as empty.
func (r *PostgresPipelineStatusRepository) GetTableCounts(ctx context.Context) (domain.TableCounts, error) {
	var out domain.TableCounts
	targets := []struct {
		table string
		dst   *int64
	}{
		{TableRawJobs, &out.RawJobs},
		{TableSkills, &out.Skills},
		{TableJobSkills, &out.JobSkills},
	}
	for _, t := range targets {
		n, err := r.countIfExists(ctx, t.table)
		if err != nil {
			return domain.TableCounts{}, err
		}
		*t.dst = n
	}
	return out, nil
}

func (r *PostgresPipelineStatusRepository) countIfExists(ctx context.Context, table string) (int64, error) {
	query, args, err := r.qb.
		Select().
		Column(sq.Expr("to_regclass(?) IS NOT NULL", "public."+table)).
		ToSql()
	if err != nil {
		return 0, err
	}
	var exists bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	query, args, err = r.qb.Select("COUNT(*)").From(quoteIdent(table)).ToSql()
	if err != nil {
		return 0, err
	}
	var c int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&c); err != nil {
		return 0, err
	}
	return c, nil
}

// ListTopSkills returns the skills linked to the most postings, most frequent
// first. limit is clamped to 1..100.
func (r *PostgresPipelineStatusRepository) ListTopSkills(ctx context.Context, limit int) ([]domain.SkillFrequency, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	query, args, err := r.qb.
		Select("s.skill_id", "s.skill_name", "COUNT(b.job_id) AS jobs").
		From(quoteIdent(TableSkills) + " s").
		Join(quoteIdent(TableJobSkills) + " b ON b.skill_id = s.skill_id").
		GroupBy("s.skill_id", "s.skill_name").
		OrderBy("jobs DESC", "s.skill_name ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.SkillFrequency, 0, limit)
	for rows.Next() {
		var it domain.SkillFrequency
		if err := rows.Scan(&it.SkillID, &it.SkillName, &it.Jobs); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
