package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSubmit tests that submissions send the expected multipart form and
// return the remote job ID.
func TestSubmit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/analyze-resume-async", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "https://github.com/jane", r.FormValue("github_profile_url"))
		assert.Equal(t, "Acme", r.FormValue("company_name"))
		assert.Equal(t, "Backend Engineer", r.FormValue("job_name"))
		assert.Equal(t, "Build services", r.FormValue("job_description"))

		var repos []string
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("best_project_repos")), &repos))
		assert.Equal(t, []string{"https://github.com/jane/app"}, repos)

		file, header, err := r.FormFile("pdf_file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "resume.pdf", header.Filename)

		json.NewEncoder(w).Encode(SubmitResponse{
			Success: true,
			JobID:   "remote-123",
			Status:  StatusPending,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	jobID, err := client.Submit(context.Background(), SubmitRequest{
		ResumePDF:      []byte("%PDF-1.4 fake"),
		ResumeFilename: "resume.pdf",
		GithubURL:      "https://github.com/jane",
		RepoURLs:       []string{"https://github.com/jane/app"},
		JobDescription: "Build services",
		CompanyName:    "Acme",
		JobName:        "Backend Engineer",
	})

	require.NoError(t, err)
	assert.Equal(t, "remote-123", jobID)
}

// TestSubmitRejected tests that an unsuccessful submission surfaces an error.
func TestSubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SubmitResponse{
			Success: false,
			Message: "missing resume",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Submit(context.Background(), SubmitRequest{ResumeFilename: "resume.pdf"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing resume")
}

// TestStatus tests decoding of an in-flight status response.
func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/analysis-status/remote-123", r.URL.Path)
		json.NewEncoder(w).Encode(JobStatus{
			JobID:    "remote-123",
			Status:   StatusProcessing,
			Progress: 0.4,
			Message:  "analyzing repositories",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	status, err := client.Status(context.Background(), "remote-123")

	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, status.Status)
	assert.InDelta(t, 0.4, status.Progress, 0.001)
	assert.False(t, status.Terminal())
}

// TestStatusCompleted tests that completed jobs carry raw results and report
// terminal state.
func TestStatusCompleted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"job_id":"remote-123","status":"completed","progress":1.0,"results":{"final_score":87}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	status, err := client.Status(context.Background(), "remote-123")

	require.NoError(t, err)
	assert.True(t, status.Terminal())
	assert.JSONEq(t, `{"final_score":87}`, string(status.Results))
}

// TestStatusNotFound tests that a 404 maps to ErrJobNotFound.
func TestStatusNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Status(context.Background(), "gone")

	assert.ErrorIs(t, err, ErrJobNotFound)
}

// TestDelete tests that deleting a missing job is not an error.
func TestDelete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/analysis-job/remote-123", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	assert.NoError(t, client.Delete(context.Background(), "remote-123"))
}
