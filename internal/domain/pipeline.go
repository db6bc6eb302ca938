package domain

import "time"

type RunReport struct {
	RunID      string    `json:"run_id"`
	InputPath  string    `json:"input_path"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`

	Rows        int `json:"rows"`
	Skills      int `json:"skills"`
	JobSkills   int `json:"job_skills"`
	ListedPairs int `json:"listed_pairs"`

	ListCellsUnparsable  int `json:"list_cells_unparsable"`
	GroupCellsUnparsable int `json:"group_cells_unparsable"`

	LoadedRows int64 `json:"loaded_rows"`
}

const (
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

type TableCounts struct {
	RawJobs   int64 `json:"data_jobs_raw"`
	Skills    int64 `json:"dim_skill"`
	JobSkills int64 `json:"bridge_job_skill"`
}

type SkillFrequency struct {
	SkillID   int64  `json:"skill_id"`
	SkillName string `json:"skill_name"`
	Jobs      int64  `json:"jobs"`
}

type PipelineStatus struct {
	Tables          TableCounts `json:"tables"`
	LastRun         *RunReport  `json:"last_run"`
	DatabaseHealthy bool        `json:"database_healthy"`
	RedisHealthy    bool        `json:"redis_healthy"`
	ServerTime      time.Time   `json:"server_time"`
}
