// Package analyzer provides a client for the external resume-analysis service.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Client talks to the external analyzer over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an analyzer client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SubmitRequest holds everything the analyzer needs to start a job.
type SubmitRequest struct {
	ResumePDF      []byte
	ResumeFilename string
	GithubURL      string
	RepoURLs       []string
	JobDescription string
	CompanyName    string
	JobName        string
}

// Submit starts an asynchronous analysis and returns the remote job ID.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("pdf_file", req.ResumeFilename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(req.ResumePDF); err != nil {
		return "", fmt.Errorf("failed to write resume data: %w", err)
	}

	repoJSON, err := json.Marshal(req.RepoURLs)
	if err != nil {
		return "", fmt.Errorf("failed to marshal repo urls: %w", err)
	}

	fields := map[string]string{
		"github_profile_url": req.GithubURL,
		"best_project_repos": string(repoJSON),
		"job_description":    req.JobDescription,
		"company_name":       req.CompanyName,
		"job_name":           req.JobName,
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return "", fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/analyze-resume-async", body)
	if err != nil {
		return "", fmt.Errorf("failed to create submit request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("analyzer submit failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("analyzer submit returned status %d: %s",
			resp.StatusCode, readErrorBody(resp.Body))
	}

	var submitResp SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&submitResp); err != nil {
		return "", fmt.Errorf("failed to decode submit response: %w", err)
	}
	if !submitResp.Success || submitResp.JobID == "" {
		return "", fmt.Errorf("analyzer rejected submission: %s", submitResp.Message)
	}

	return submitResp.JobID, nil
}

// Status fetches the current state of an analyzer job.
func (c *Client) Status(ctx context.Context, jobID string) (*JobStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/analysis-status/"+jobID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create status request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("analyzer status check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrJobNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analyzer status returned status %d: %s",
			resp.StatusCode, readErrorBody(resp.Body))
	}

	var status JobStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}
	return &status, nil
}

// Delete removes a finished job from the analyzer's storage.
func (c *Client) Delete(ctx context.Context, jobID string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/analysis-job/"+jobID, nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("analyzer job delete failed: %w", err)
	}
	defer resp.Body.Close()

	// 404 means the job is already gone; treat it as success.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("analyzer delete returned status %d", resp.StatusCode)
	}
	return nil
}

// Health pings the analyzer's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("analyzer health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("analyzer unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
