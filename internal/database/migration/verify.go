package migration

import (
	"context"
	"fmt"
	"strings"

	"data-jobs/internal/database"
	"data-jobs/internal/pkg/apperr"
)

// TableColumns names columns a table must have after migrating.
type TableColumns struct {
	Table   string
	Columns []string
}

// Verify checks every table in want against information_schema and reports
// all missing tables and columns in one INVALID_DATA error.
func Verify(ctx context.Context, db database.DB, want ...TableColumns) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}

	var problems []string
	for _, tc := range want {
		if tc.Table == "" {
			return fmt.Errorf("empty table")
		}
		existing, err := tableColumns(ctx, db, tc.Table)
		if err != nil {
			return apperr.Unavailable("read columns of "+tc.Table, err)
		}
		if len(existing) == 0 {
			problems = append(problems, "missing table "+tc.Table)
			continue
		}
		for _, col := range tc.Columns {
			if _, ok := existing[col]; !ok {
				problems = append(problems, fmt.Sprintf("missing column %s.%s", tc.Table, col))
			}
		}
	}
	if len(problems) > 0 {
		return apperr.InvalidData("schema mismatch: "+strings.Join(problems, ", "), nil)
	}
	return nil
}

func tableColumns(ctx context.Context, db database.DB, table string) (map[string]struct{}, error) {
	rows, err := db.Query(
		ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_schema='public' AND table_name=$1`,
		table,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	existing := map[string]struct{}{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		existing[c] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return existing, nil
}
