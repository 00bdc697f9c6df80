package placement

import "placementdash/domain/sheet"

// FieldAlias maps a logical output field to the normalized headers it may
// appear under, in preference order.
type FieldAlias struct {
	Logical string
	Aliases []string
}

// StudentFields lists every logical student field. New spellings go at the
// end of the matching alias list.
var StudentFields = []FieldAlias{
	{"userId", []string{"userid", "user_id"}},
	{"name", []string{"name"}},
	{"email", []string{"email", "e_mail"}},
	{"phone", []string{"phone"}},
	{"program", []string{"program"}},
	{"orgYear", []string{"orgyear", "org_year"}},
	{"status", []string{"status"}},
	{"attendance", []string{"attendance"}},
	{"psp", []string{"psp"}},
	{"modules", []string{"modules", "modules_done"}},
	{"currentModule", []string{"currentmodule", "current_module"}},
	{"experience", []string{"experience", "totalexperience", "total_experience"}},
	{"techExperience", []string{"techexperience", "tech_experience"}},
	{"ctc", []string{"ctc", "ctcrange", "ctc_range"}},
	{"noticePeriod", []string{"noticeperiod", "notice_period"}},
	{"currentJob", []string{"currentjob", "current_job"}},
	{"skills", []string{"skills"}},
	{"jobCounts", []string{"jobcounts", "job_counts"}},
	{"funnelCounts", []string{"funnelcounts", "funnel_counts"}},
	{"totalActiveJobs", []string{"totalactivejobs", "total_active_jobs"}},
	{"eligibleJobs", []string{"eligiblejobs", "eligible_jobs"}},
	{"relevantJobs", []string{"relevantjobs", "relevant_jobs"}},
	{"applications", []string{"applications"}},
	{"resumeSent", []string{"resumesent", "resume_sent"}},
	{"shortlisted", []string{"shortlisted"}},
	{"interviewed", []string{"interviewed"}},
	{"r1", []string{"r1"}},
	{"r2", []string{"r2"}},
	{"r3", []string{"r3"}},
	{"offers", []string{"offers"}},
}

// ApplicationFields lists every logical application field.
var ApplicationFields = []FieldAlias{
	{"applicationId", []string{"applicationid", "application_id"}},
	{"userId", []string{"userid", "user_id"}},
	{"jobRole", []string{"jobrole", "job_role"}},
	{"company", []string{"company"}},
	{"stage", []string{"stage"}},
	{"round", []string{"round"}},
	{"resumeScore", []string{"resumescore", "resume_score"}},
	{"rejectionReason", []string{"rejectionreason", "rejection_reason"}},
	{"recruiter", []string{"recruiter"}},
	{"jobOwner", []string{"jobowner", "job_owner"}},
	{"applicationDate", []string{"applicationdate", "application_date"}},
}

// Join and lookup keys shared by both datasets.
var (
	emailAliases  = aliasesOf(StudentFields, "email")
	userIDAliases = aliasesOf(StudentFields, "userId")
)

func aliasesOf(table []FieldAlias, logical string) []string {
	for _, f := range table {
		if f.Logical == logical {
			return f.Aliases
		}
	}
	return nil
}

// Project resolves every logical field of table against rec. Missing fields
// come back as "".
func Project(rec sheet.Record, table []FieldAlias) map[string]string {
	out := make(map[string]string, len(table))
	for _, f := range table {
		out[f.Logical] = rec.First(f.Aliases...)
	}
	return out
}

// StudentProjection is the fixed student schema served by /api/dashboard.
type StudentProjection struct {
	UserID          string `json:"userId"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Program         string `json:"program"`
	OrgYear         string `json:"orgYear"`
	Status          string `json:"status"`
	Attendance      string `json:"attendance"`
	PSP             string `json:"psp"`
	Modules         string `json:"modules"`
	CurrentModule   string `json:"currentModule"`
	Experience      string `json:"experience"`
	TechExperience  string `json:"techExperience"`
	CTC             string `json:"ctc"`
	NoticePeriod    string `json:"noticePeriod"`
	CurrentJob      string `json:"currentJob"`
	Skills          string `json:"skills"`
	JobCounts       string `json:"jobCounts"`
	FunnelCounts    string `json:"funnelCounts"`
	TotalActiveJobs string `json:"totalActiveJobs"`
	EligibleJobs    string `json:"eligibleJobs"`
	RelevantJobs    string `json:"relevantJobs"`
	Applications    string `json:"applications"`
	ResumeSent      string `json:"resumeSent"`
	Shortlisted     string `json:"shortlisted"`
	Interviewed     string `json:"interviewed"`
	R1              string `json:"r1"`
	R2              string `json:"r2"`
	R3              string `json:"r3"`
	Offers          string `json:"offers"`
}

// ProjectStudent maps a student record onto StudentProjection.
func ProjectStudent(rec sheet.Record) StudentProjection {
	p := Project(rec, StudentFields)
	return StudentProjection{
		UserID:          p["userId"],
		Name:            p["name"],
		Email:           p["email"],
		Phone:           p["phone"],
		Program:         p["program"],
		OrgYear:         p["orgYear"],
		Status:          p["status"],
		Attendance:      p["attendance"],
		PSP:             p["psp"],
		Modules:         p["modules"],
		CurrentModule:   p["currentModule"],
		Experience:      p["experience"],
		TechExperience:  p["techExperience"],
		CTC:             p["ctc"],
		NoticePeriod:    p["noticePeriod"],
		CurrentJob:      p["currentJob"],
		Skills:          p["skills"],
		JobCounts:       p["jobCounts"],
		FunnelCounts:    p["funnelCounts"],
		TotalActiveJobs: p["totalActiveJobs"],
		EligibleJobs:    p["eligibleJobs"],
		RelevantJobs:    p["relevantJobs"],
		Applications:    p["applications"],
		ResumeSent:      p["resumeSent"],
		Shortlisted:     p["shortlisted"],
		Interviewed:     p["interviewed"],
		R1:              p["r1"],
		R2:              p["r2"],
		R3:              p["r3"],
		Offers:          p["offers"],
	}
}

// StudentSummary is the narrower shape served by /api/student, with the
// source record passed through as Raw.
type StudentSummary struct {
	UserID       string       `json:"userId"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone"`
	Program      string       `json:"program"`
	Status       string       `json:"status"`
	Attendance   string       `json:"attendance"`
	PSP          string       `json:"psp"`
	Modules      string       `json:"modules"`
	Experience   string       `json:"experience"`
	CTC          string       `json:"ctc"`
	NoticePeriod string       `json:"noticePeriod"`
	Skills       string       `json:"skills"`
	JobCounts    string       `json:"jobCounts"`
	FunnelCounts string       `json:"funnelCounts"`
	Raw          sheet.Record `json:"raw"`
}

// SummarizeStudent builds the /api/student shape from a record.
func SummarizeStudent(rec sheet.Record) StudentSummary {
	p := ProjectStudent(rec)
	return StudentSummary{
		UserID:       p.UserID,
		Name:         p.Name,
		Email:        p.Email,
		Phone:        p.Phone,
		Program:      p.Program,
		Status:       p.Status,
		Attendance:   p.Attendance,
		PSP:          p.PSP,
		Modules:      p.Modules,
		Experience:   p.Experience,
		CTC:          p.CTC,
		NoticePeriod: p.NoticePeriod,
		Skills:       p.Skills,
		JobCounts:    p.JobCounts,
		FunnelCounts: p.FunnelCounts,
		Raw:          rec,
	}
}

// ApplicationProjection is the fixed application schema.
type ApplicationProjection struct {
	ApplicationID   string       `json:"applicationId"`
	UserID          string       `json:"userId"`
	JobRole         string       `json:"jobRole"`
	Company         string       `json:"company"`
	Stage           string       `json:"stage"`
	Round           string       `json:"round"`
	ResumeScore     string       `json:"resumeScore"`
	RejectionReason string       `json:"rejectionReason"`
	Recruiter       string       `json:"recruiter"`
	JobOwner        string       `json:"jobOwner"`
	ApplicationDate string       `json:"applicationDate"`
	Raw             sheet.Record `json:"raw,omitempty"`
}

// ProjectApplication maps an application record onto ApplicationProjection
// without the raw passthrough.
func ProjectApplication(rec sheet.Record) ApplicationProjection {
	p := Project(rec, ApplicationFields)
	return ApplicationProjection{
		ApplicationID:   p["applicationId"],
		UserID:          p["userId"],
		JobRole:         p["jobRole"],
		Company:         p["company"],
		Stage:           p["stage"],
		Round:           p["round"],
		ResumeScore:     p["resumeScore"],
		RejectionReason: p["rejectionReason"],
		Recruiter:       p["recruiter"],
		JobOwner:        p["jobOwner"],
		ApplicationDate: p["applicationDate"],
	}
}

// ProjectApplications projects recs in order. withRaw keeps the source record.
func ProjectApplications(recs []sheet.Record, withRaw bool) []ApplicationProjection {
	out := make([]ApplicationProjection, 0, len(recs))
	for _, rec := range recs {
		p := ProjectApplication(rec)
		if withRaw {
			p.Raw = rec
		}
		out = append(out, p)
	}
	return out
}
