package job

// Column names of the job postings CSV and of the data_jobs_raw staging table.
const (
	ColJobID              = "job_id"
	ColJobTitleShort      = "job_title_short"
	ColJobTitle           = "job_title"
	ColCompanyName        = "company_name"
	ColJobLocation        = "job_location"
	ColJobVia             = "job_via"
	ColJobScheduleType    = "job_schedule_type"
	ColJobWorkFromHome    = "job_work_from_home"
	ColSearchLocation     = "search_location"
	ColJobPostedDate      = "job_posted_date"
	ColJobNoDegreeMention = "job_no_degree_mention"
	ColJobHealthInsurance = "job_health_insurance"
	ColJobCountry         = "job_country"
	ColSalaryRate         = "salary_rate"
	ColSalaryYearAvg      = "salary_year_avg"
	ColSalaryHourAvg      = "salary_hour_avg"
	ColJobSkills          = "job_skills"
	ColJobTypeSkills      = "job_type_skills"
)

// PostedDateLayout is the only accepted format of job_posted_date.
const PostedDateLayout = "2006-01-02 15:04:05"

var (
	BoolColumns  = []string{ColJobWorkFromHome, ColJobNoDegreeMention, ColJobHealthInsurance}
	FloatColumns = []string{ColSalaryYearAvg, ColSalaryHourAvg}
	TextColumns  = []string{ColJobCountry, ColSalaryRate}
)

// ExpectedColumns is the column set a cleaned postings table must carry
// before it is loaded.
var ExpectedColumns = []string{
	ColJobID,
	ColJobTitleShort,
	ColJobTitle,
	ColCompanyName,
	ColJobLocation,
	ColJobVia,
	ColJobScheduleType,
	ColJobWorkFromHome,
	ColSearchLocation,
	ColJobPostedDate,
	ColJobNoDegreeMention,
	ColJobHealthInsurance,
	ColJobCountry,
	ColSalaryRate,
	ColSalaryYearAvg,
	ColSalaryHourAvg,
	ColJobSkills,
	ColJobTypeSkills,
}
