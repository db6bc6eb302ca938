package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"data-jobs/internal/database"
	"data-jobs/internal/domain/job"
	"data-jobs/internal/domain/skill"
	"data-jobs/internal/frame"
	"data-jobs/internal/pkg/apperr"

	"github.com/jackc/pgx/v5"
)

const (
	TableRawJobs   = "data_jobs_raw"
	TableSkills    = "dim_skill"
	TableJobSkills = "bridge_job_skill"
)

// LoadBatch is everything one run writes: the cleaned postings and the two
// skill tables derived from them.
type LoadBatch struct {
	Jobs   *frame.Frame
	Skills []skill.Skill
	Bridge []skill.JobSkill
}

type LoadResult struct {
	RawJobs   int64
	Skills    int64
	JobSkills int64
}

type LoadRepository interface {
	CheckLiveness(ctx context.Context) error
	Replace(ctx context.Context, batch LoadBatch) (LoadResult, error)
	CountRows(ctx context.Context, table string) (int64, error)
}

type PostgresLoadRepository struct {
	db database.DB
}

func NewPostgresLoadRepository(db database.DB) *PostgresLoadRepository {
	return &PostgresLoadRepository{db: db}
}

func (r *PostgresLoadRepository) CheckLiveness(ctx context.Context) error {
	var one int
	if err := r.db.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return apperr.Unavailable("postgres liveness check", err)
	}
	if one != 1 {
		return apperr.Unavailable(fmt.Sprintf("postgres liveness check returned %d", one), nil)
	}
	return nil
}

// Replace drops and recreates the three tables and bulk-copies the batch into
// them inside one transaction. Either all three tables are replaced or none.
func (r *PostgresLoadRepository) Replace(ctx context.Context, batch LoadBatch) (LoadResult, error) {
	if batch.Jobs == nil {
		return LoadResult{}, apperr.InvalidData("no postings to load", nil)
	}

	rawDDL, rawColumns, err := rawTableDDL(batch.Jobs)
	if err != nil {
		return LoadResult{}, err
	}
	rawRows, err := rawTableRows(batch.Jobs)
	if err != nil {
		return LoadResult{}, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return LoadResult{}, apperr.Unavailable("begin load transaction", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, table := range []string{TableJobSkills, TableSkills, TableRawJobs} {
		if _, err := tx.Exec(ctx, `DROP TABLE IF EXISTS `+quoteIdent(table)+` CASCADE`); err != nil {
			return LoadResult{}, apperr.Internal("drop "+table, err)
		}
	}

	var out LoadResult

	if _, err := tx.Exec(ctx, rawDDL); err != nil {
		return LoadResult{}, apperr.Internal("create "+TableRawJobs, err)
	}
	if out.RawJobs, err = tx.CopyFrom(ctx, TableRawJobs, rawColumns, rawRows); err != nil {
		return LoadResult{}, apperr.Internal("copy into "+TableRawJobs, err)
	}

	if _, err := tx.Exec(ctx, skillTableDDL); err != nil {
		return LoadResult{}, apperr.Internal("create "+TableSkills, err)
	}
	skillRows := make([][]any, len(batch.Skills))
	for i, s := range batch.Skills {
		skillRows[i] = []any{s.ID, s.Name}
	}
	if out.Skills, err = tx.CopyFrom(ctx, TableSkills, []string{"skill_id", "skill_name"}, skillRows); err != nil {
		return LoadResult{}, apperr.Internal("copy into "+TableSkills, err)
	}

	if _, err := tx.Exec(ctx, bridgeTableDDL); err != nil {
		return LoadResult{}, apperr.Internal("create "+TableJobSkills, err)
	}
	bridgeRows := make([][]any, len(batch.Bridge))
	for i, b := range batch.Bridge {
		bridgeRows[i] = []any{b.JobID, b.SkillID}
	}
	if out.JobSkills, err = tx.CopyFrom(ctx, TableJobSkills, []string{"job_id", "skill_id"}, bridgeRows); err != nil {
		return LoadResult{}, apperr.Internal("copy into "+TableJobSkills, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return LoadResult{}, apperr.Internal("commit load transaction", err)
	}
	return out, nil
}

func (r *PostgresLoadRepository) CountRows(ctx context.Context, table string) (int64, error) {
	var c int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM `+quoteIdent(table)).Scan(&c); err != nil {
		return 0, apperr.Internal("count rows of "+table, err)
	}
	return c, nil
}

var skillTableDDL = `CREATE TABLE ` + quoteIdent(TableSkills) + ` (
	skill_id BIGINT PRIMARY KEY,
	skill_name TEXT NOT NULL UNIQUE
)`

var bridgeTableDDL = `CREATE TABLE ` + quoteIdent(TableJobSkills) + ` (
	job_id BIGINT NOT NULL REFERENCES ` + quoteIdent(TableRawJobs) + ` (job_id),
	skill_id BIGINT NOT NULL REFERENCES ` + quoteIdent(TableSkills) + ` (skill_id),
	PRIMARY KEY (job_id, skill_id)
)`

func sqlType(k frame.Kind) (string, error) {
	switch k {
	case frame.KindText, frame.KindList:
		return "TEXT", nil
	case frame.KindInt:
		return "BIGINT", nil
	case frame.KindFloat:
		return "DOUBLE PRECISION", nil
	case frame.KindBool:
		return "BOOLEAN", nil
	case frame.KindDatetime:
		return "TIMESTAMPTZ", nil
	default:
		return "", apperr.Internal("no column type for "+k.String(), nil)
	}
}

// rawTableDDL derives the staging table from the frame's column kinds. The
// job id column becomes the primary key.
func rawTableDDL(f *frame.Frame) (string, []string, error) {
	defs := make([]string, 0, f.Width())
	names := make([]string, 0, f.Width())
	for _, c := range f.Columns() {
		typ, err := sqlType(c.Kind)
		if err != nil {
			return "", nil, err
		}
		def := quoteIdent(c.Name) + " " + typ
		if c.Name == job.ColJobID && c.Kind == frame.KindInt {
			def += " PRIMARY KEY"
		}
		defs = append(defs, def)
		names = append(names, c.Name)
	}
	ddl := "CREATE TABLE " + quoteIdent(TableRawJobs) + " (\n\t" + strings.Join(defs, ",\n\t") + "\n)"
	return ddl, names, nil
}

// rawTableRows transposes the frame into COPY rows. List cells are written
// as JSON arrays; the frame itself is left untouched.
func rawTableRows(f *frame.Frame) ([][]any, error) {
	cols := f.Columns()
	rows := make([][]any, f.Len())
	for i := range rows {
		row := make([]any, len(cols))
		for j, c := range cols {
			v := c.Values[i]
			if c.Kind == frame.KindList && v != nil {
				b, err := json.Marshal(v)
				if err != nil {
					return nil, apperr.Internal("encode "+c.Name, err)
				}
				v = string(b)
			}
			row[j] = v
		}
		rows[i] = row
	}
	return rows, nil
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
