package server

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/findr-ai/findr/internal/analyzer"
	"github.com/findr-ai/findr/internal/config"
	"github.com/findr-ai/findr/internal/db"
)

// fakeDB is an in-memory Store for handler tests.
type fakeDB struct {
	mu sync.Mutex

	users             map[uuid.UUID]*db.UserProfile
	companyProfiles   map[uuid.UUID]*db.CompanyProfile
	applicantProfiles map[uuid.UUID]*db.ApplicantProfile
	jobs              map[uuid.UUID]*db.Job
	applicants        map[uuid.UUID]*db.Applicant
	links             map[string]*db.ShareLink
	migrated          []string
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:             make(map[uuid.UUID]*db.UserProfile),
		companyProfiles:   make(map[uuid.UUID]*db.CompanyProfile),
		applicantProfiles: make(map[uuid.UUID]*db.ApplicantProfile),
		jobs:              make(map[uuid.UUID]*db.Job),
		applicants:        make(map[uuid.UUID]*db.Applicant),
		links:             make(map[string]*db.ShareLink),
	}
}

func (f *fakeDB) Ping(ctx context.Context) error { return nil }

func (f *fakeDB) Migrate(ctx context.Context, dir string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.migrated = append(f.migrated, "001_init.sql")
	return f.migrated, nil
}

func (f *fakeDB) CreateUserProfile(ctx context.Context, input db.UserProfileCreateInput) (*db.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := &db.UserProfile{
		ID:           uuid.New(),
		Email:        input.Email,
		FullName:     input.FullName,
		AvatarURL:    input.AvatarURL,
		Role:         input.Role,
		PasswordHash: input.PasswordHash,
		PasswordSet:  input.PasswordHash != "",
		GoogleSub:    input.GoogleSub,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeDB) GetUserProfile(ctx context.Context, id uuid.UUID) (*db.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id], nil
}

func (f *fakeDB) GetUserProfileByEmail(ctx context.Context, email string) (*db.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeDB) GetUserProfileByGoogleSub(ctx context.Context, sub string) (*db.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.GoogleSub != nil && *user.GoogleSub == sub {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeDB) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	user, _ := f.GetUserProfileByEmail(ctx, email)
	return user != nil, nil
}

func (f *fakeDB) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[userID]; ok {
		user.PasswordHash = passwordHash
		user.PasswordSet = true
	}
	return nil
}

func (f *fakeDB) LinkGoogleSub(ctx context.Context, userID uuid.UUID, sub string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %s", userID)
	}
	user.GoogleSub = &sub
	return nil
}

func (f *fakeDB) SetUserRole(ctx context.Context, userID uuid.UUID, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[userID]; ok {
		user.Role = role
	}
	return nil
}

func (f *fakeDB) EnsureRoleProfile(ctx context.Context, userID uuid.UUID, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch role {
	case db.RoleCompany:
		if _, ok := f.companyProfiles[userID]; !ok {
			f.companyProfiles[userID] = &db.CompanyProfile{UserID: userID}
		}
	case db.RoleApplicant:
		if _, ok := f.applicantProfiles[userID]; !ok {
			f.applicantProfiles[userID] = &db.ApplicantProfile{UserID: userID}
		}
	}
	return nil
}

func (f *fakeDB) UpdateUserProfile(ctx context.Context, id uuid.UUID, fullName, avatarURL string) (*db.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	user.FullName = fullName
	user.AvatarURL = avatarURL
	return user, nil
}

func (f *fakeDB) CreateJob(ctx context.Context, input db.JobCreateInput) (*db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job := &db.Job{
		ID:              uuid.New(),
		CompanyID:       input.CompanyID,
		Title:           input.Title,
		Description:     input.Description,
		Requirements:    input.Requirements,
		Location:        input.Location,
		EmploymentType:  input.EmploymentType,
		ExperienceLevel: input.ExperienceLevel,
		RemoteOption:    input.RemoteOption,
		SalaryMin:       input.SalaryMin,
		SalaryMax:       input.SalaryMax,
		SalaryCurrency:  input.SalaryCurrency,
		SalaryPeriod:    input.SalaryPeriod,
		Skills:          input.Skills,
		Status:          input.Status,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	f.jobs[job.ID] = job
	return job, nil
}

func (f *fakeDB) GetJob(ctx context.Context, id uuid.UUID) (*db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if job, ok := f.jobs[id]; ok {
		copied := *job
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeDB) ListJobsByCompany(ctx context.Context, companyID uuid.UUID, opts db.ListJobsOptions) ([]db.Job, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var jobs []db.Job
	for _, job := range f.jobs {
		if job.CompanyID != companyID {
			continue
		}
		if opts.Status != "" && job.Status != opts.Status {
			continue
		}
		jobs = append(jobs, *job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Title < jobs[j].Title })
	return jobs, len(jobs), nil
}

func (f *fakeDB) UpdateJob(ctx context.Context, id uuid.UUID, input db.JobUpdateInput) (*db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, nil
	}
	job.Title = input.Title
	job.Description = input.Description
	job.Requirements = input.Requirements
	job.Location = input.Location
	job.EmploymentType = input.EmploymentType
	job.ExperienceLevel = input.ExperienceLevel
	job.RemoteOption = input.RemoteOption
	job.SalaryMin = input.SalaryMin
	job.SalaryMax = input.SalaryMax
	job.SalaryCurrency = input.SalaryCurrency
	job.SalaryPeriod = input.SalaryPeriod
	job.Skills = input.Skills
	copied := *job
	return &copied, nil
}

func (f *fakeDB) UpdateJobStatus(ctx context.Context, id uuid.UUID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if job, ok := f.jobs[id]; ok {
		job.Status = status
	}
	return nil
}

func (f *fakeDB) SetJobPublicLink(ctx context.Context, id uuid.UUID, publicLinkID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if job, ok := f.jobs[id]; ok {
		job.PublicLinkID = &publicLinkID
	}
	return nil
}

func (f *fakeDB) CreateApplicant(ctx context.Context, input db.ApplicantCreateInput) (*db.Applicant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	applicant := &db.Applicant{
		ID:                 uuid.New(),
		JobID:              input.JobID,
		JobName:            input.JobName,
		CompanyName:        input.CompanyName,
		FullName:           input.FullName,
		Email:              input.Email,
		Phone:              input.Phone,
		Location:           input.Location,
		ResumeURL:          input.ResumeURL,
		GithubURL:          input.GithubURL,
		RepoURLs:           input.RepoURLs,
		LinkedinURL:        input.LinkedinURL,
		AIEvaluationStatus: input.EvaluationStatus,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
	f.applicants[applicant.ID] = applicant
	return applicant, nil
}

func (f *fakeDB) GetApplicant(ctx context.Context, id uuid.UUID) (*db.Applicant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if applicant, ok := f.applicants[id]; ok {
		copied := *applicant
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeDB) ListApplicantsByJob(ctx context.Context, jobID uuid.UUID, opts db.ListApplicantsOptions) ([]db.Applicant, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var applicants []db.Applicant
	for _, applicant := range f.applicants {
		if applicant.JobID != jobID {
			continue
		}
		if opts.EvaluationStatus != "" && applicant.AIEvaluationStatus != opts.EvaluationStatus {
			continue
		}
		applicants = append(applicants, *applicant)
	}
	sort.Slice(applicants, func(i, j int) bool { return applicants[i].FullName < applicants[j].FullName })
	return applicants, len(applicants), nil
}

func (f *fakeDB) CountApplicantsByStatus(ctx context.Context, jobID uuid.UUID) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]int{
		db.EvalNotStarted: 0,
		db.EvalStarted:    0,
		db.EvalCompleted:  0,
		db.EvalFailed:     0,
	}
	for _, applicant := range f.applicants {
		if applicant.JobID == jobID {
			counts[applicant.AIEvaluationStatus]++
		}
	}
	return counts, nil
}

func (f *fakeDB) UpsertShareLink(ctx context.Context, input db.ShareLinkInput) (*db.ShareLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	link := &db.ShareLink{
		Slug:            input.Slug,
		JobID:           input.JobID,
		CompanyID:       input.CompanyID,
		RequireResume:   input.RequireResume,
		RequireGithub:   input.RequireGithub,
		RequireLinkedin: input.RequireLinkedin,
		RepoCount:       input.RepoCount,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	f.links[link.Slug] = link
	return link, nil
}

func (f *fakeDB) GetShareLink(ctx context.Context, slug string) (*db.ShareLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if link, ok := f.links[slug]; ok {
		copied := *link
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeDB) ListShareLinksByCompany(ctx context.Context, companyID uuid.UUID) ([]db.ShareLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var links []db.ShareLink
	for _, link := range f.links {
		if link.CompanyID == companyID {
			links = append(links, *link)
		}
	}
	sort.Slice(links, func(i, j int) bool { return links[i].Slug < links[j].Slug })
	return links, nil
}

func (f *fakeDB) DeleteShareLink(ctx context.Context, slug string, companyID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	link, ok := f.links[slug]
	if !ok || link.CompanyID != companyID {
		return fmt.Errorf("share link not found: %s", slug)
	}
	delete(f.links, slug)
	return nil
}

func (f *fakeDB) GetCompanyProfile(ctx context.Context, userID uuid.UUID) (*db.CompanyProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if profile, ok := f.companyProfiles[userID]; ok {
		copied := *profile
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeDB) UpsertCompanyProfile(ctx context.Context, userID uuid.UUID, input db.CompanyProfileInput) (*db.CompanyProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile := &db.CompanyProfile{
		UserID:      userID,
		CompanyName: input.CompanyName,
		Website:     input.Website,
		Industry:    input.Industry,
		CompanySize: input.CompanySize,
		Description: input.Description,
		Location:    input.Location,
	}
	f.companyProfiles[userID] = profile
	return profile, nil
}

func (f *fakeDB) GetApplicantProfile(ctx context.Context, userID uuid.UUID) (*db.ApplicantProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if profile, ok := f.applicantProfiles[userID]; ok {
		copied := *profile
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeDB) UpsertApplicantProfile(ctx context.Context, userID uuid.UUID, input db.ApplicantProfileInput) (*db.ApplicantProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile := &db.ApplicantProfile{
		UserID:      userID,
		FullName:    input.FullName,
		Phone:       input.Phone,
		Location:    input.Location,
		GithubURL:   input.GithubURL,
		LinkedinURL: input.LinkedinURL,
		Headline:    input.Headline,
	}
	f.applicantProfiles[userID] = profile
	return profile, nil
}

// fakeUploader records uploads without talking to object storage.
type fakeUploader struct {
	mu      sync.Mutex
	uploads int
}

func (u *fakeUploader) Upload(ctx context.Context, data []byte, contentType string) (string, string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.uploads++
	key := "resumes/test.pdf"
	return key, "https://cdn.example.com/" + key, nil
}

// fakeEvaluator records evaluation submissions.
type fakeEvaluator struct {
	mu      sync.Mutex
	started []uuid.UUID
}

func (e *fakeEvaluator) Begin(ctx context.Context, applicantID uuid.UUID, req analyzer.SubmitRequest) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.started = append(e.started, applicantID)
	return nil
}

type testEnv struct {
	server    *Server
	db        *fakeDB
	uploader  *fakeUploader
	evaluator *fakeEvaluator
}

func newTestServer(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret-for-handler-tests")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	env := &testEnv{
		db:        newFakeDB(),
		uploader:  &fakeUploader{},
		evaluator: &fakeEvaluator{},
	}

	cfg := &config.Config{}
	cfg.Server.Port = 8080
	cfg.Admin.MigrateToken = "migrate-secret"
	cfg.Admin.MigrationsDir = "migrations"

	srv, err := New(cfg, Deps{
		DB:        env.db,
		Resumes:   env.uploader,
		Evaluator: env.evaluator,
	})
	require.NoError(t, err)
	env.server = srv
	return env
}

// newCompany creates a company account with a named company profile and
// returns its ID and a bearer token.
func (env *testEnv) newCompany(t *testing.T, companyName string) (uuid.UUID, string) {
	t.Helper()
	user, err := env.db.CreateUserProfile(context.Background(), db.UserProfileCreateInput{
		Email: companyName + "@example.com",
		Role:  db.RoleCompany,
	})
	require.NoError(t, err)
	_, err = env.db.UpsertCompanyProfile(context.Background(), user.ID, db.CompanyProfileInput{
		CompanyName: companyName,
	})
	require.NoError(t, err)

	token, err := env.server.jwtService.GenerateToken(user.ID, db.RoleCompany)
	require.NoError(t, err)
	return user.ID, token
}
