package server

import (
	"encoding/json"
	"net/http"

	"github.com/findr-ai/findr/internal/db"
	"github.com/findr-ai/findr/internal/server/middleware"
)

// handleGetCompanyProfile returns the caller's company profile.
func (s *Server) handleGetCompanyProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	profile, err := s.db.GetCompanyProfile(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get company profile")
		return
	}
	if profile == nil {
		s.errorResponse(w, http.StatusNotFound, "Company profile not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, profile)
}

// handleUpsertCompanyProfile creates or updates the caller's company profile.
func (s *Server) handleUpsertCompanyProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if middleware.GetRole(r) != db.RoleCompany {
		s.errorResponse(w, http.StatusForbidden, "Company account required")
		return
	}

	var input db.CompanyProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if input.CompanyName == "" {
		s.errorResponse(w, http.StatusBadRequest, "company_name is required")
		return
	}

	profile, err := s.db.UpsertCompanyProfile(r.Context(), userID, input)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to save company profile")
		return
	}

	s.jsonResponse(w, http.StatusOK, profile)
}

// handleGetApplicantProfile returns the caller's applicant profile.
func (s *Server) handleGetApplicantProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	profile, err := s.db.GetApplicantProfile(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get applicant profile")
		return
	}
	if profile == nil {
		s.errorResponse(w, http.StatusNotFound, "Applicant profile not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, profile)
}

// handleUpsertApplicantProfile creates or updates the caller's applicant profile.
func (s *Server) handleUpsertApplicantProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if middleware.GetRole(r) != db.RoleApplicant {
		s.errorResponse(w, http.StatusForbidden, "Applicant account required")
		return
	}

	var input db.ApplicantProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	profile, err := s.db.UpsertApplicantProfile(r.Context(), userID, input)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to save applicant profile")
		return
	}

	s.jsonResponse(w, http.StatusOK, profile)
}
