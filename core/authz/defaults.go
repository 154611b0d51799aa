package authz

// Capabilities
const (
	ReadMyAcademy    = "read_my_academy"
	CrudMyAcademy    = "crud_my_academy"
	ReadMember       = "read_member"
	CrudMember       = "crud_member"
	ReadStudent      = "read_student"
	CrudStudent      = "crud_student"
	ReadAssignment   = "read_assignment"
	CrudAssignment   = "crud_assignment"
	ReadCertificate  = "read_certificate"
	CrudCertificate  = "crud_certificate"
	ReadSyllabus     = "read_syllabus"
	CrudSyllabus     = "crud_syllabus"
	ReadAllCohort    = "read_all_cohort"
	CrudCohort       = "crud_cohort"
	ReadEvent        = "read_event"
	CrudEvent        = "crud_event"
	ReadOrganization = "read_organization"
	CrudOrganization = "crud_organization"
	ReadNPSAnswers   = "read_nps_answers"
	ReadSurvey       = "read_survey"
	CrudSurvey       = "crud_survey"
	ReadLead         = "read_lead"
	CrudLead         = "crud_lead"
	ReadDownloadable = "read_downloadable"
	CrudDownloadable = "crud_downloadable"
	ReadJob          = "read_job"
	CrudJob          = "crud_job"
	ReadMonitoring   = "read_monitoring"
	CrudMonitoring   = "crud_monitoring"
	ReadMentorship   = "read_mentorship"
	CrudMentorship   = "crud_mentorship"
)

// Roles
const (
	RoleAdmin              = "admin"
	RoleStaff              = "staff"
	RoleStudent            = "student"
	RoleTeacher            = "teacher"
	RoleAssistant          = "assistant"
	RoleCareerSupport      = "career_support"
	RoleAcademyCoordinator = "academy_coordinator"
	RoleCountryManager     = "country_manager"
)

var DefaultCapabilities = []Capability{
	{Slug: ReadMyAcademy, Description: "Read your academy information"},
	{Slug: CrudMyAcademy, Description: "Update your academy information"},
	{Slug: ReadMember, Description: "Read academy staff member information"},
	{Slug: CrudMember, Description: "Create, update or delete academy members (very high level, normally the admin)"},
	{Slug: ReadStudent, Description: "Read student information"},
	{Slug: CrudStudent, Description: "Create, update or delete students"},
	{Slug: ReadAssignment, Description: "Read assigment information"},
	{Slug: CrudAssignment, Description: "Update assignments"},
	{Slug: ReadCertificate, Description: "List and read certificates"},
	{Slug: CrudCertificate, Description: "Create, update or delete student certificates"},
	{Slug: ReadSyllabus, Description: "List and read syllabus information"},
	{Slug: CrudSyllabus, Description: "Create, update or delete syllabus versions"},
	{Slug: ReadAllCohort, Description: "List all the cohorts or a single cohort information"},
	{Slug: CrudCohort, Description: "Create, update or delete cohort info"},
	{Slug: ReadEvent, Description: "List and retrieve event information"},
	{Slug: CrudEvent, Description: "Create, update or delete event information"},
	{Slug: ReadOrganization, Description: "Read academy organization details"},
	{Slug: CrudOrganization, Description: "Update, create or delete academy organization details"},
	{Slug: ReadNPSAnswers, Description: "List all the nps answers"},
	{Slug: ReadSurvey, Description: "List all the surveys"},
	{Slug: CrudSurvey, Description: "Create, update or delete surveys"},
	{Slug: ReadLead, Description: "List all the leads"},
	{Slug: CrudLead, Description: "Create, update or delete academy leads"},
	{Slug: ReadDownloadable, Description: "List academy downloadables"},
	{Slug: CrudDownloadable, Description: "Create or update academy downloadables"},
	{Slug: ReadJob, Description: "List and read job postings"},
	{Slug: CrudJob, Description: "Create, update or delete job postings"},
	{Slug: ReadMonitoring, Description: "List monitored applications, endpoints and downloads"},
	{Slug: CrudMonitoring, Description: "Run monitoring checks and exports"},
	{Slug: ReadMentorship, Description: "List and read mentoring sessions"},
	{Slug: CrudMentorship, Description: "Update the status of mentoring sessions"},
}

var DefaultRoles = defaultRoles()

func defaultRoles() []Role {
	teacher := []string{CrudAssignment, ReadSyllabus, ReadAssignment}

	all := make([]string, 0, len(DefaultCapabilities))
	reads := make([]string, 0, len(DefaultCapabilities))
	for _, c := range DefaultCapabilities {
		all = append(all, c.Slug)
		if len(c.Slug) > 5 && c.Slug[:5] == "read_" {
			reads = append(reads, c.Slug)
		}
	}

	return []Role{
		{Slug: RoleAdmin, Name: "Admin", Capabilities: all},
		{Slug: RoleCountryManager, Name: "Country Manager", Capabilities: all},
		{Slug: RoleStaff, Name: "Staff (Base)", Capabilities: reads},
		{Slug: RoleStudent, Name: "Student", Capabilities: teacher},
		{Slug: RoleTeacher, Name: "Teacher", Capabilities: teacher},
		{Slug: RoleAssistant, Name: "Teacher Assistant", Capabilities: []string{ReadAssignment, CrudAssignment}},
		{Slug: RoleCareerSupport, Name: "Career Support Specialist", Capabilities: []string{ReadCertificate, CrudCertificate}},
		{Slug: RoleAcademyCoordinator, Name: "Mentor in residence", Capabilities: append(append([]string{}, teacher...), CrudSyllabus)},
	}
}
