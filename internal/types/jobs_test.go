package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

// TestCreateJobRequestValidate tests validation of job creation requests.
func TestCreateJobRequestValidate(t *testing.T) {
	base := CreateJobRequest{
		Title:       "Backend Engineer",
		Description: "Build and operate backend services.",
	}
	assert.NoError(t, base.Validate())

	withSalary := base
	withSalary.SalaryMin = intPtr(90000)
	withSalary.SalaryMax = intPtr(120000)
	withSalary.SalaryCurrency = "USD"
	withSalary.SalaryPeriod = "year"
	assert.NoError(t, withSalary.Validate())

	invertedSalary := base
	invertedSalary.SalaryMin = intPtr(120000)
	invertedSalary.SalaryMax = intPtr(90000)
	assert.Error(t, invertedSalary.Validate())

	badRemote := base
	badRemote.RemoteOption = "sometimes"
	assert.Error(t, badRemote.Validate())

	missingTitle := base
	missingTitle.Title = ""
	assert.Error(t, missingTitle.Validate())

	// Jobs cannot be created directly in the closed state.
	closedStatus := base
	closedStatus.Status = "closed"
	assert.Error(t, closedStatus.Validate())
}

// TestUpdateJobStatusRequestValidate tests that only known statuses pass.
func TestUpdateJobStatusRequestValidate(t *testing.T) {
	for _, status := range []string{"draft", "active", "closed"} {
		req := UpdateJobStatusRequest{Status: status}
		assert.NoError(t, req.Validate(), status)
	}

	unknown := UpdateJobStatusRequest{Status: "archived"}
	assert.Error(t, unknown.Validate())
}
