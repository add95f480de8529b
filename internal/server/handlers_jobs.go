package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/findr-ai/findr/internal/db"
	"github.com/findr-ai/findr/internal/server/middleware"
	"github.com/findr-ai/findr/internal/types"
)

// handleCreateJob creates a job posting owned by the authenticated company.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	status := req.Status
	if status == "" {
		status = db.JobStatusDraft
	}

	job, err := s.db.CreateJob(r.Context(), db.JobCreateInput{
		CompanyID:       companyID,
		Title:           req.Title,
		Description:     req.Description,
		Requirements:    req.Requirements,
		Location:        req.Location,
		EmploymentType:  req.EmploymentType,
		ExperienceLevel: req.ExperienceLevel,
		RemoteOption:    req.RemoteOption,
		SalaryMin:       req.SalaryMin,
		SalaryMax:       req.SalaryMax,
		SalaryCurrency:  req.SalaryCurrency,
		SalaryPeriod:    req.SalaryPeriod,
		Skills:          req.Skills,
		Status:          status,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to create job")
		return
	}

	s.jsonResponse(w, http.StatusCreated, job)
}

// handleListJobs lists the authenticated company's job postings.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	opts := db.ListJobsOptions{
		Status: r.URL.Query().Get("status"),
	}

	jobs, total, err := s.db.ListJobsByCompany(r.Context(), companyID, opts)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"total": total,
	})
}

// handleGetJob returns one of the authenticated company's job postings.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.ownedJob(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleUpdateJob replaces the content fields of a job posting.
func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.ownedJob(w, r)
	if !ok {
		return
	}

	var req types.UpdateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.db.UpdateJob(r.Context(), job.ID, db.JobUpdateInput{
		Title:           req.Title,
		Description:     req.Description,
		Requirements:    req.Requirements,
		Location:        req.Location,
		EmploymentType:  req.EmploymentType,
		ExperienceLevel: req.ExperienceLevel,
		RemoteOption:    req.RemoteOption,
		SalaryMin:       req.SalaryMin,
		SalaryMax:       req.SalaryMax,
		SalaryCurrency:  req.SalaryCurrency,
		SalaryPeriod:    req.SalaryPeriod,
		Skills:          req.Skills,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to update job")
		return
	}
	if updated == nil {
		s.errorResponse(w, http.StatusNotFound, "Job not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, updated)
}

// handleUpdateJobStatus moves a job posting through its lifecycle.
func (s *Server) handleUpdateJobStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := s.ownedJob(w, r)
	if !ok {
		return
	}

	var req types.UpdateJobStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if !db.ValidJobTransition(job.Status, req.Status) {
		err := &ErrInvalidTransition{From: job.Status, To: req.Status}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	if err := s.db.UpdateJobStatus(r.Context(), job.ID, req.Status); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to update job status")
		return
	}

	job.Status = req.Status
	s.jsonResponse(w, http.StatusOK, job)
}

// ownedJob loads the job in the path and checks the caller owns it. On
// failure it writes the error response and returns ok=false.
func (s *Server) ownedJob(w http.ResponseWriter, r *http.Request) (*db.Job, bool) {
	companyID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}

	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID")
		return nil, false
	}

	job, err := s.db.GetJob(r.Context(), jobID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get job")
		return nil, false
	}
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "Job not found")
		return nil, false
	}
	if job.CompanyID != companyID {
		// Hide other companies' jobs rather than acknowledging them.
		s.errorResponse(w, http.StatusNotFound, "Job not found")
		return nil, false
	}
	return job, true
}
