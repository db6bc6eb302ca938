package skills

import (
	"sort"

	"data-jobs/internal/domain/job"
	"data-jobs/internal/domain/skill"
	"data-jobs/internal/frame"
	"data-jobs/internal/pkg/apperr"
	"data-jobs/internal/pkg/logger"
)

type Stats struct {
	ListCellsUnparsable  int
	GroupCellsUnparsable int
	ListedPairs          int
	GroupedPairs         int
}

type Result struct {
	// JobSkills is the exploded flat list: one row per job and skill name.
	JobSkills []skill.JobSkillName
	// Assignments is the union of both sources, deduplicated.
	Assignments []skill.Assignment
	Dimension   []skill.Skill
	Bridge      []skill.JobSkill
	Stats       Stats
}

type Normalizer struct {
	idColumn    string
	listColumn  string
	groupColumn string
	log         logger.Logger
}

func NewNormalizer(log logger.Logger) *Normalizer {
	if log == nil {
		log = logger.Nop()
	}
	return &Normalizer{
		idColumn:    job.ColJobID,
		listColumn:  job.ColJobSkills,
		groupColumn: job.ColJobTypeSkills,
		log:         log,
	}
}

// Normalize builds the skill dimension and the job-to-skill bridge from the
// flat list column and the grouped column of f. The flat list column is
// replaced in f by its parsed, lower-cased list form.
func (n *Normalizer) Normalize(f *frame.Frame) (*Result, error) {
	ids, err := n.idColumnOf(f)
	if err != nil {
		return nil, err
	}
	listCol, ok := f.Column(n.listColumn)
	if !ok {
		return nil, apperr.InvalidData("missing column "+n.listColumn, nil)
	}
	groupCol, ok := f.Column(n.groupColumn)
	if !ok {
		return nil, apperr.InvalidData("missing column "+n.groupColumn, nil)
	}

	res := &Result{}

	lists, err := n.parseLists(listCol, ids, &res.Stats)
	if err != nil {
		return nil, err
	}
	if err := f.Replace(lists); err != nil {
		return nil, err
	}

	res.JobSkills = explode(lists, ids)
	res.Stats.ListedPairs = len(res.JobSkills)

	grouped := n.explodeGroups(groupCol, ids, &res.Stats)
	res.Stats.GroupedPairs = len(grouped)

	res.Assignments = union(res.JobSkills, grouped)
	res.Dimension = buildDimension(res.Assignments)
	res.Bridge = buildBridge(res.Assignments, res.Dimension)
	return res, nil
}

func (n *Normalizer) idColumnOf(f *frame.Frame) (*frame.Column, error) {
	ids, ok := f.Column(n.idColumn)
	if !ok {
		return nil, apperr.InvalidData("missing column "+n.idColumn, nil)
	}
	if ids.Kind != frame.KindInt {
		return nil, apperr.InvalidData("column "+n.idColumn+" must be int, got "+ids.Kind.String(), nil)
	}
	return ids, nil
}

func (n *Normalizer) parseLists(src *frame.Column, ids *frame.Column, stats *Stats) (*frame.Column, error) {
	if src.Kind == frame.KindList {
		return src, nil
	}
	if src.Kind != frame.KindText {
		return nil, apperr.InvalidData("column "+src.Name+" must be text, got "+src.Kind.String(), nil)
	}

	out := frame.NewColumn(src.Name, frame.KindList, src.Len())
	for i := range src.Values {
		out.Values[i] = []string{}
		raw, ok := src.Str(i)
		if !ok {
			continue
		}
		parsed, ok := ParseList(raw)
		if !ok {
			stats.ListCellsUnparsable++
			id, _ := ids.Int(i)
			n.log.Debug("skill list unparsable", "job_id", id, "value", raw)
			continue
		}
		out.Values[i] = parsed
	}
	return out, nil
}

func (n *Normalizer) explodeGroups(src *frame.Column, ids *frame.Column, stats *Stats) []skill.Assignment {
	var out []skill.Assignment
	seen := map[assignmentKey]struct{}{}
	groupNames := map[string]*string{}

	for i := range src.Values {
		id, ok := ids.Int(i)
		if !ok {
			continue
		}
		raw, _ := src.Str(i)
		parsed := ParseGroups(raw)
		switch parsed.Status {
		case StatusEmpty:
			continue
		case StatusUnparsable:
			stats.GroupCellsUnparsable++
			n.log.Debug("skill groups unparsable", "job_id", id, "err", parsed.Err)
			continue
		}

		for _, g := range parsed.Groups {
			group := normalizeName(g.Name)
			gp, ok := groupNames[group]
			if !ok {
				gp = &group
				groupNames[group] = gp
			}
			for _, s := range g.Skills {
				name := normalizeName(s)
				if name == "" {
					continue
				}
				a := skill.Assignment{JobID: id, Group: gp, Name: name}
				k := keyOf(a)
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
				out = append(out, a)
			}
		}
	}
	return out
}

func explode(lists *frame.Column, ids *frame.Column) []skill.JobSkillName {
	var out []skill.JobSkillName
	seen := map[skill.JobSkillName]struct{}{}
	for i := range lists.Values {
		id, ok := ids.Int(i)
		if !ok {
			continue
		}
		names, _ := lists.List(i)
		for _, name := range names {
			if name == "" {
				continue
			}
			k := skill.JobSkillName{JobID: id, Name: name}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}

type assignmentKey struct {
	jobID int64
	group string
	null  bool
	name  string
}

func keyOf(a skill.Assignment) assignmentKey {
	return assignmentKey{jobID: a.JobID, group: a.GroupName(), null: a.Group == nil, name: a.Name}
}

// union extends the flat rows with a null group and merges them with the
// grouped rows.
func union(listed []skill.JobSkillName, grouped []skill.Assignment) []skill.Assignment {
	out := make([]skill.Assignment, 0, len(listed)+len(grouped))
	seen := make(map[assignmentKey]struct{}, cap(out))
	add := func(a skill.Assignment) {
		k := keyOf(a)
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		out = append(out, a)
	}
	for _, l := range listed {
		add(skill.Assignment{JobID: l.JobID, Name: l.Name})
	}
	for _, g := range grouped {
		add(g)
	}
	return out
}

// buildDimension assigns ids 1..n to the distinct names in lexicographic order.
func buildDimension(all []skill.Assignment) []skill.Skill {
	names := map[string]struct{}{}
	for _, a := range all {
		names[a.Name] = struct{}{}
	}
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	out := make([]skill.Skill, len(sorted))
	for i, name := range sorted {
		out[i] = skill.Skill{ID: int64(i + 1), Name: name}
	}
	return out
}

func buildBridge(all []skill.Assignment, dim []skill.Skill) []skill.JobSkill {
	idByName := make(map[string]int64, len(dim))
	for _, s := range dim {
		idByName[s.Name] = s.ID
	}

	seen := map[skill.JobSkill]struct{}{}
	out := make([]skill.JobSkill, 0, len(all))
	for _, a := range all {
		id, ok := idByName[a.Name]
		if !ok {
			continue
		}
		js := skill.JobSkill{JobID: a.JobID, SkillID: id}
		if _, dup := seen[js]; dup {
			continue
		}
		seen[js] = struct{}{}
		out = append(out, js)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JobID == out[j].JobID {
			return out[i].SkillID < out[j].SkillID
		}
		return out[i].JobID < out[j].JobID
	})
	return out
}
