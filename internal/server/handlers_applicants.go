package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/findr-ai/findr/internal/db"
	"github.com/findr-ai/findr/internal/server/middleware"
)

// applicantView is the API shape for an application, with evaluation results
// decoded from their stored JSON.
type applicantView struct {
	*db.Applicant
	AIEvaluationResults json.RawMessage `json:"ai_evaluation_results,omitempty"`
}

func newApplicantView(applicant *db.Applicant) applicantView {
	view := applicantView{Applicant: applicant}
	if len(applicant.AIEvaluationResults) > 0 {
		view.AIEvaluationResults = json.RawMessage(applicant.AIEvaluationResults)
	}
	return view
}

// handleListApplicants lists applications for one of the company's jobs.
func (s *Server) handleListApplicants(w http.ResponseWriter, r *http.Request) {
	job, ok := s.ownedJob(w, r)
	if !ok {
		return
	}

	opts := db.ListApplicantsOptions{
		EvaluationStatus: r.URL.Query().Get("evaluation_status"),
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			opts.Limit = n
		}
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		if n, err := strconv.Atoi(offset); err == nil {
			opts.Offset = n
		}
	}

	applicants, total, err := s.db.ListApplicantsByJob(r.Context(), job.ID, opts)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list applicants")
		return
	}

	views := make([]applicantView, 0, len(applicants))
	for i := range applicants {
		views = append(views, newApplicantView(&applicants[i]))
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"applicants": views,
		"total":      total,
	})
}

// handleApplicantCounts returns evaluation status counts for a job.
func (s *Server) handleApplicantCounts(w http.ResponseWriter, r *http.Request) {
	job, ok := s.ownedJob(w, r)
	if !ok {
		return
	}

	counts, err := s.db.CountApplicantsByStatus(r.Context(), job.ID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to count applicants")
		return
	}

	s.jsonResponse(w, http.StatusOK, counts)
}

// handleGetApplicant returns a single application.
func (s *Server) handleGetApplicant(w http.ResponseWriter, r *http.Request) {
	applicant, ok := s.ownedApplicant(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, newApplicantView(applicant))
}

// handleGetEvaluation returns the evaluation state of an application. The
// dashboard polls this while an evaluation is running.
func (s *Server) handleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	applicant, ok := s.ownedApplicant(w, r)
	if !ok {
		return
	}

	response := map[string]any{
		"applicant_id": applicant.ID,
		"status":       applicant.AIEvaluationStatus,
		"progress":     applicant.AIEvaluationProgress,
	}
	if len(applicant.AIEvaluationResults) > 0 {
		response["results"] = json.RawMessage(applicant.AIEvaluationResults)
	}
	if applicant.AIEvaluationError != nil {
		response["error"] = *applicant.AIEvaluationError
	}

	s.jsonResponse(w, http.StatusOK, response)
}

// ownedApplicant loads the applicant in the path and checks the caller owns
// the job it belongs to.
func (s *Server) ownedApplicant(w http.ResponseWriter, r *http.Request) (*db.Applicant, bool) {
	companyID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}

	applicantID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid applicant ID")
		return nil, false
	}

	applicant, err := s.db.GetApplicant(r.Context(), applicantID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get applicant")
		return nil, false
	}
	if applicant == nil {
		s.errorResponse(w, http.StatusNotFound, "Applicant not found")
		return nil, false
	}

	job, err := s.db.GetJob(r.Context(), applicant.JobID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get job")
		return nil, false
	}
	if job == nil || job.CompanyID != companyID {
		s.errorResponse(w, http.StatusNotFound, "Applicant not found")
		return nil, false
	}
	return applicant, true
}
