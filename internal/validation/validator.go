package validation

import (
	"fmt"
	"strings"

	"data-jobs/internal/domain/job"
	"data-jobs/internal/frame"
	"data-jobs/internal/pkg/apperr"
	"data-jobs/internal/skills"
)

// Violations lists every broken invariant found in one validation pass.
type Violations []string

func (v Violations) Error() string {
	return strings.Join(v, "; ")
}

type Validator struct {
	required     []string
	idColumn     string
	dateColumns  []string
	boolColumns  []string
	textColumns  []string
	floatColumns []string
}

func NewValidator() *Validator {
	return &Validator{
		required:     job.ExpectedColumns,
		idColumn:     job.ColJobID,
		dateColumns:  []string{job.ColJobPostedDate},
		boolColumns:  job.BoolColumns,
		textColumns:  job.TextColumns,
		floatColumns: job.FloatColumns,
	}
}

// Validate checks the cleaned postings frame and the normalized skill tables
// together. All violations are reported in one INVALID_DATA error.
func (v *Validator) Validate(f *frame.Frame, res *skills.Result) error {
	if f == nil || res == nil {
		return apperr.InvalidData("nothing to validate", nil)
	}

	var out Violations
	out = append(out, v.checkColumns(f)...)
	jobIDs, idViolations := v.checkJobIDs(f)
	out = append(out, idViolations...)
	out = append(out, checkJobSkills(res)...)
	out = append(out, checkDimension(res)...)
	out = append(out, checkBridge(res, jobIDs)...)

	if len(out) == 0 {
		return nil
	}
	return apperr.InvalidData(fmt.Sprintf("%d data quality violation(s)", len(out)), out)
}

func (v *Validator) checkColumns(f *frame.Frame) Violations {
	var out Violations
	var missing []string
	for _, name := range v.required {
		if !f.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		out = append(out, "missing columns: "+strings.Join(missing, ", "))
	}

	kindOf := func(names []string, want frame.Kind) {
		for _, name := range names {
			col, ok := f.Column(name)
			if !ok {
				continue
			}
			if col.Kind != want {
				out = append(out, fmt.Sprintf("column %s is %s, want %s", name, col.Kind, want))
			}
		}
	}
	kindOf(v.dateColumns, frame.KindDatetime)
	kindOf(v.boolColumns, frame.KindBool)
	kindOf(v.textColumns, frame.KindText)
	kindOf(v.floatColumns, frame.KindFloat)
	return out
}

// checkJobIDs returns the set of job ids alongside the violations so the
// bridge can be checked against it.
func (v *Validator) checkJobIDs(f *frame.Frame) (map[int64]struct{}, Violations) {
	col, ok := f.Column(v.idColumn)
	if !ok {
		return nil, nil
	}
	if col.Kind != frame.KindInt {
		return nil, Violations{fmt.Sprintf("column %s is %s, want %s", v.idColumn, col.Kind, frame.KindInt)}
	}

	var out Violations
	if nulls := col.NullCount(); nulls > 0 {
		out = append(out, fmt.Sprintf("%s has %d null value(s)", v.idColumn, nulls))
	}

	ids := make(map[int64]struct{}, col.Len())
	dups := 0
	for i := range col.Values {
		id, ok := col.Int(i)
		if !ok {
			continue
		}
		if _, seen := ids[id]; seen {
			dups++
			continue
		}
		ids[id] = struct{}{}
	}
	if dups > 0 {
		out = append(out, fmt.Sprintf("%s has %d duplicate value(s)", v.idColumn, dups))
	}
	return ids, out
}

func checkJobSkills(res *skills.Result) Violations {
	var out Violations
	empty, dups := 0, 0
	seen := make(map[string]struct{}, len(res.JobSkills))
	for _, js := range res.JobSkills {
		if js.Name == "" {
			empty++
		}
		k := fmt.Sprintf("%d\x00%s", js.JobID, js.Name)
		if _, ok := seen[k]; ok {
			dups++
			continue
		}
		seen[k] = struct{}{}
	}
	if empty > 0 {
		out = append(out, fmt.Sprintf("%d exploded skill name(s) are empty", empty))
	}
	if dups > 0 {
		out = append(out, fmt.Sprintf("%d duplicate (job_id, skill_name) pair(s)", dups))
	}
	return out
}

func checkDimension(res *skills.Result) Violations {
	var out Violations
	names := make(map[string]struct{}, len(res.Dimension))
	ids := make(map[int64]struct{}, len(res.Dimension))
	for _, s := range res.Dimension {
		switch {
		case s.Name == "":
			out = append(out, fmt.Sprintf("skill %d has an empty name", s.ID))
		case s.Name != strings.ToLower(strings.TrimSpace(s.Name)):
			out = append(out, fmt.Sprintf("skill %d name %q is not normalized", s.ID, s.Name))
		}
		if _, ok := names[s.Name]; ok {
			out = append(out, fmt.Sprintf("skill name %q is not unique", s.Name))
		}
		names[s.Name] = struct{}{}
		if _, ok := ids[s.ID]; ok {
			out = append(out, fmt.Sprintf("skill id %d is not unique", s.ID))
		}
		ids[s.ID] = struct{}{}
	}
	return out
}

func checkBridge(res *skills.Result, jobIDs map[int64]struct{}) Violations {
	skillIDs := make(map[int64]struct{}, len(res.Dimension))
	for _, s := range res.Dimension {
		skillIDs[s.ID] = struct{}{}
	}

	var out Violations
	dups, orphanJobs, orphanSkills := 0, 0, 0
	seen := make(map[[2]int64]struct{}, len(res.Bridge))
	for _, b := range res.Bridge {
		k := [2]int64{b.JobID, b.SkillID}
		if _, ok := seen[k]; ok {
			dups++
		}
		seen[k] = struct{}{}
		if jobIDs != nil {
			if _, ok := jobIDs[b.JobID]; !ok {
				orphanJobs++
			}
		}
		if _, ok := skillIDs[b.SkillID]; !ok {
			orphanSkills++
		}
	}
	if dups > 0 {
		out = append(out, fmt.Sprintf("%d duplicate bridge pair(s)", dups))
	}
	if orphanJobs > 0 {
		out = append(out, fmt.Sprintf("%d bridge pair(s) reference unknown job ids", orphanJobs))
	}
	if orphanSkills > 0 {
		out = append(out, fmt.Sprintf("%d bridge pair(s) reference unknown skill ids", orphanSkills))
	}
	return out
}
