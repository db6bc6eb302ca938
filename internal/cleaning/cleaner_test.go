package cleaning

import (
	"strings"
	"testing"
	"time"

	"data-jobs/internal/frame"
	"data-jobs/internal/ingest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFrame(t *testing.T, csv string) *frame.Frame {
	t.Helper()
	f, err := ingest.ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	return f
}

const postings = `job_title, job_country ,job_work_from_home,job_no_degree_mention,job_health_insurance,salary_year_avg,salary_hour_avg,job_posted_date
  Data Analyst  ,United States,True,1,no,,25.5,2023-01-01 00:00:04
Data Engineer,   ,YES,y,false,abc,,2023-13-01 10:00:00
Data Scientist,Sudan,,0,True,  90000 ,1e2,2023/01/01
`

func TestCleaner_Clean(t *testing.T) {
	f := readFrame(t, postings)
	require.NoError(t, NewCleaner(DefaultSchema()).Clean(f))

	t.Run("job_id is inserted first and sequential from 1", func(t *testing.T) {
		assert.Equal(t, "job_id", f.Names()[0])
		id, _ := f.Column("job_id")
		assert.Equal(t, frame.KindInt, id.Kind)
		assert.Equal(t, []any{int64(1), int64(2), int64(3)}, id.Values)
	})

	t.Run("text is trimmed and blanks become null", func(t *testing.T) {
		title, _ := f.Column("job_title")
		s, _ := title.Str(0)
		assert.Equal(t, "Data Analyst", s)

		country, ok := f.Column("job_country")
		require.True(t, ok, "header names are trimmed")
		assert.True(t, country.IsNull(1))
		assert.Equal(t, frame.KindText, country.Kind)
	})

	t.Run("booleans", func(t *testing.T) {
		wfh, _ := f.Column("job_work_from_home")
		noDegree, _ := f.Column("job_no_degree_mention")
		health, _ := f.Column("job_health_insurance")
		for _, c := range []*frame.Column{wfh, noDegree, health} {
			assert.Equal(t, frame.KindBool, c.Kind)
			assert.Zero(t, c.NullCount())
		}
		assert.Equal(t, []any{true, true, false}, wfh.Values)
		assert.Equal(t, []any{true, true, false}, noDegree.Values)
		assert.Equal(t, []any{false, false, true}, health.Values)
	})

	t.Run("salaries are floats with nulls filled by zero", func(t *testing.T) {
		year, _ := f.Column("salary_year_avg")
		hour, _ := f.Column("salary_hour_avg")
		assert.Equal(t, frame.KindFloat, year.Kind)
		assert.Equal(t, []any{0.0, 0.0, 90000.0}, year.Values)
		assert.Equal(t, []any{25.5, 0.0, 100.0}, hour.Values)
	})

	t.Run("posting date is UTC and malformed values are null", func(t *testing.T) {
		posted, _ := f.Column("job_posted_date")
		assert.Equal(t, frame.KindDatetime, posted.Kind)
		ts, ok := posted.Time(0)
		require.True(t, ok)
		assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 4, 0, time.UTC), ts)
		assert.Equal(t, time.UTC, ts.Location())
		assert.True(t, posted.IsNull(1))
		assert.True(t, posted.IsNull(2))
	})
}

func TestCleaner_KeepsExistingJobID(t *testing.T) {
	f := readFrame(t, "job_title,job_id\nA,10\nB, 20 \nC,x\n")
	require.NoError(t, NewCleaner(DefaultSchema()).Clean(f))

	assert.Equal(t, []string{"job_title", "job_id"}, f.Names())
	id, _ := f.Column("job_id")
	assert.Equal(t, frame.KindInt, id.Kind)
	assert.Equal(t, []any{int64(10), int64(20), nil}, id.Values)
}

func TestCleaner_SalaryEmptyStringBecomesZero(t *testing.T) {
	f := readFrame(t, "salary_year_avg\n\"\"\n")
	require.NoError(t, NewCleaner(DefaultSchema()).Clean(f))

	year, _ := f.Column("salary_year_avg")
	v, ok := year.Float(0)
	require.True(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestCleaner_MissingSchemaColumnsAreSkipped(t *testing.T) {
	f := readFrame(t, "company_name\nAcme\n")
	require.NoError(t, NewCleaner(DefaultSchema()).Clean(f))
	assert.Equal(t, []string{"job_id", "company_name"}, f.Names())
}
