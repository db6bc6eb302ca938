package skill

// Skill is one row of the skill dimension.
type Skill struct {
	ID   int64
	Name string
}

// JobSkill is one row of the job-to-skill bridge.
type JobSkill struct {
	JobID   int64
	SkillID int64
}

// JobSkillName is a job's skill before ids are assigned.
type JobSkillName struct {
	JobID int64
	Name  string
}

// Assignment is a job's skill together with the group it was listed under.
// Group is nil for skills from the flat list.
type Assignment struct {
	JobID int64
	Group *string
	Name  string
}

func (a Assignment) GroupName() string {
	if a.Group == nil {
		return ""
	}
	return *a.Group
}
