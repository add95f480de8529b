package server

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/findr-ai/findr/internal/cache"
	"github.com/findr-ai/findr/internal/db"
	"github.com/findr-ai/findr/internal/server/middleware"
	"github.com/findr-ai/findr/internal/slug"
	"github.com/findr-ai/findr/internal/types"
)

const shareLinkCacheTTL = 5 * time.Minute

// handleUpsertShareLink creates or updates the public application link for a
// job. The slug is derived from the company and job names, so regenerating a
// link for the same job yields the same URL.
func (s *Server) handleUpsertShareLink(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.UpsertShareLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.db.GetJob(r.Context(), req.JobID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get job")
		return
	}
	if job == nil || job.CompanyID != companyID {
		s.errorResponse(w, http.StatusNotFound, "Job not found")
		return
	}

	profile, err := s.db.GetCompanyProfile(r.Context(), companyID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get company profile")
		return
	}
	if profile == nil || profile.CompanyName == "" {
		s.errorResponse(w, http.StatusBadRequest, "Set a company name before creating share links")
		return
	}

	linkSlug := slug.ForLink(profile.CompanyName, job.Title)
	link, err := s.db.UpsertShareLink(r.Context(), db.ShareLinkInput{
		Slug:            linkSlug,
		JobID:           job.ID,
		CompanyID:       companyID,
		RequireResume:   req.RequireResume,
		RequireGithub:   req.RequireGithub,
		RequireLinkedin: req.RequireLinkedin,
		RepoCount:       req.RepoCount,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to save share link")
		return
	}

	if err := s.db.SetJobPublicLink(r.Context(), job.ID, linkSlug); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to link job")
		return
	}

	// Publishing a link means the job is open for applications. Closed jobs
	// stay closed; reopening is an explicit status change.
	if job.Status == db.JobStatusDraft {
		if err := s.db.UpdateJobStatus(r.Context(), job.ID, db.JobStatusActive); err != nil {
			s.errorResponse(w, http.StatusInternalServerError, "Failed to activate job")
			return
		}
	}

	s.invalidateShareLink(r, linkSlug)
	s.jsonResponse(w, http.StatusOK, link)
}

// handleListShareLinks lists the company's share links.
func (s *Server) handleListShareLinks(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	links, err := s.db.ListShareLinksByCompany(r.Context(), companyID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list share links")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"share_links": links})
}

// handleDeleteShareLink removes a share link owned by the company.
func (s *Server) handleDeleteShareLink(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	linkSlug := r.PathValue("company") + "/" + r.PathValue("job")
	if err := s.db.DeleteShareLink(r.Context(), linkSlug, companyID); err != nil {
		s.errorResponse(w, http.StatusNotFound, "Share link not found")
		return
	}

	s.invalidateShareLink(r, linkSlug)
	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "Share link deleted"})
}

// invalidateShareLink drops the cached copy of a share link after a change.
func (s *Server) invalidateShareLink(r *http.Request, linkSlug string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(r.Context(), cache.ShareLinkKey(linkSlug)); err != nil {
		s.logger.Warn("failed to invalidate share link cache",
			zap.String("slug", linkSlug),
			zap.Error(err))
	}
}
