package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/findr-ai/findr/internal/analyzer"
	"github.com/findr-ai/findr/internal/cache"
	"github.com/findr-ai/findr/internal/db"
	"github.com/findr-ai/findr/internal/metrics"
	"github.com/findr-ai/findr/internal/storage"
	"github.com/findr-ai/findr/internal/types"
)

// applyPage is the public view of a share link: the form configuration plus
// the job details the application page renders. It is what gets cached.
type applyPage struct {
	Slug            string   `json:"slug"`
	JobID           string   `json:"job_id"`
	JobTitle        string   `json:"job_title"`
	CompanyName     string   `json:"company_name"`
	Description     string   `json:"description"`
	Location        string   `json:"location,omitempty"`
	RemoteOption    string   `json:"remote_option,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	RequireResume   bool     `json:"require_resume"`
	RequireGithub   bool     `json:"require_github"`
	RequireLinkedin bool     `json:"require_linkedin"`
	RepoCount       int      `json:"repo_count"`
}

// handleResolveShareLink serves the public application page data.
func (s *Server) handleResolveShareLink(w http.ResponseWriter, r *http.Request) {
	linkSlug := r.PathValue("company") + "/" + r.PathValue("job")

	page, err := s.resolveApplyPage(r, linkSlug)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, page)
}

// handleSubmitApplication accepts a public application submission.
func (s *Server) handleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	linkSlug := r.PathValue("company") + "/" + r.PathValue("job")

	page, err := s.resolveApplyPage(r, linkSlug)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	if err := r.ParseMultipartForm(storage.MaxResumeSize + 1<<20); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid form submission")
		return
	}

	form := types.ApplicationForm{
		FullName:    strings.TrimSpace(r.FormValue("full_name")),
		Email:       strings.TrimSpace(r.FormValue("email")),
		Phone:       strings.TrimSpace(r.FormValue("phone")),
		GithubURL:   strings.TrimSpace(r.FormValue("github_url")),
		LinkedinURL: strings.TrimSpace(r.FormValue("linkedin_url")),
	}
	for _, repo := range r.Form["repo_urls"] {
		if repo = strings.TrimSpace(repo); repo != "" {
			form.RepoURLs = append(form.RepoURLs, repo)
		}
	}

	if err := form.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if page.RequireGithub && !form.HasValidGithub() {
		s.errorResponse(w, http.StatusBadRequest, "A github.com profile URL is required")
		return
	}
	if page.RequireLinkedin && form.LinkedinURL == "" {
		s.errorResponse(w, http.StatusBadRequest, "A LinkedIn URL is required")
		return
	}
	if len(form.RepoURLs) > page.RepoCount {
		s.errorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("At most %d repository URLs are allowed", page.RepoCount))
		return
	}

	resumeData, resumeContentType, err := readResumeUpload(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if page.RequireResume && resumeData == nil {
		s.errorResponse(w, http.StatusBadRequest, "A resume PDF is required")
		return
	}

	var resumeURL string
	if resumeData != nil {
		if s.resumes == nil {
			s.errorResponse(w, http.StatusServiceUnavailable, "Resume uploads are not available")
			return
		}
		if _, resumeURL, err = s.resumes.Upload(r.Context(), resumeData, resumeContentType); err != nil {
			s.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	// Evaluation runs only when there is something to analyze: a resume, a
	// github.com profile, and at least one repository to verify. Everything
	// else is stored as not started.
	analyze := s.evaluator != nil && resumeData != nil &&
		form.HasValidGithub() && len(form.RepoURLs) > 0
	evalStatus := db.EvalNotStarted
	if analyze {
		evalStatus = db.EvalStarted
	}

	applicant, err := s.db.CreateApplicant(r.Context(), db.ApplicantCreateInput{
		JobID:            applyPageJobID(page),
		JobName:          page.JobTitle,
		CompanyName:      page.CompanyName,
		FullName:         form.FullName,
		Email:            form.Email,
		Phone:            form.Phone,
		ResumeURL:        resumeURL,
		GithubURL:        form.GithubURL,
		RepoURLs:         form.RepoURLs,
		LinkedinURL:      form.LinkedinURL,
		EvaluationStatus: evalStatus,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to save application")
		return
	}

	metrics.ApplicationsReceived.WithLabelValues(fmt.Sprintf("%t", analyze)).Inc()

	if analyze {
		err := s.evaluator.Begin(r.Context(), applicant.ID, analyzer.SubmitRequest{
			ResumePDF:      resumeData,
			ResumeFilename: "resume.pdf",
			GithubURL:      form.GithubURL,
			RepoURLs:       form.RepoURLs,
			JobDescription: page.Description,
			CompanyName:    page.CompanyName,
			JobName:        page.JobTitle,
		})
		if err != nil {
			// The application is saved either way; the evaluation row
			// records the failure.
			s.logger.Warn("failed to start evaluation",
				zap.String("applicant_id", applicant.ID.String()),
				zap.Error(err))
		}
	}

	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"applicant_id":         applicant.ID,
		"ai_evaluation_status": evalStatus,
		"message":              "Application submitted",
	})
}

// resolveApplyPage loads a share link and its job, consulting the cache
// first. Only active jobs accept applications.
func (s *Server) resolveApplyPage(r *http.Request, linkSlug string) (*applyPage, error) {
	if s.cache != nil {
		var cached applyPage
		err := s.cache.GetJSON(r.Context(), cache.ShareLinkKey(linkSlug), &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("share link cache read failed", zap.Error(err))
		}
	}

	link, err := s.db.GetShareLink(r.Context(), linkSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to get share link: %w", err)
	}
	if link == nil {
		return nil, &ErrNotFound{Resource: "application link"}
	}

	job, err := s.db.GetJob(r.Context(), link.JobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil {
		return nil, &ErrNotFound{Resource: "application link"}
	}
	if job.Status != db.JobStatusActive {
		return nil, &ErrJobNotAcceptingApplications{}
	}

	profile, err := s.db.GetCompanyProfile(r.Context(), link.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get company profile: %w", err)
	}
	companyName := ""
	if profile != nil {
		companyName = profile.CompanyName
	}

	page := &applyPage{
		Slug:            link.Slug,
		JobID:           job.ID.String(),
		JobTitle:        job.Title,
		CompanyName:     companyName,
		Description:     job.Description,
		Location:        job.Location,
		RemoteOption:    job.RemoteOption,
		Skills:          job.Skills,
		RequireResume:   link.RequireResume,
		RequireGithub:   link.RequireGithub,
		RequireLinkedin: link.RequireLinkedin,
		RepoCount:       link.RepoCount,
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(r.Context(), cache.ShareLinkKey(linkSlug), page, shareLinkCacheTTL); err != nil {
			s.logger.Warn("share link cache write failed", zap.Error(err))
		}
	}
	return page, nil
}

func applyPageJobID(page *applyPage) uuid.UUID {
	id, _ := uuid.Parse(page.JobID)
	return id
}

// readResumeUpload reads the optional resume file from the form. A missing
// file is not an error; requirement checks happen at the call site.
func readResumeUpload(r *http.Request) ([]byte, string, error) {
	file, header, err := r.FormFile("resume")
	if err == http.ErrMissingFile {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read resume upload")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxResumeSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read resume upload")
	}
	if len(data) > storage.MaxResumeSize {
		return nil, "", fmt.Errorf("resume file exceeds %d byte limit", storage.MaxResumeSize)
	}
	return data, header.Header.Get("Content-Type"), nil
}
