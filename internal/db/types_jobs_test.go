package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestValidJobTransition tests the allowed job status transitions
func TestValidJobTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{JobStatusDraft, JobStatusActive, true},
		{JobStatusActive, JobStatusClosed, true},
		{JobStatusClosed, JobStatusActive, true},
		{JobStatusActive, JobStatusDraft, true},
		{JobStatusClosed, JobStatusDraft, true},
		{JobStatusDraft, JobStatusClosed, false},
		{JobStatusDraft, JobStatusDraft, false},
		{JobStatusActive, JobStatusActive, false},
		{JobStatusActive, "archived", false},
		{"unknown", JobStatusActive, false},
	}

	for _, tt := range tests {
		got := ValidJobTransition(tt.from, tt.to)
		assert.Equal(t, tt.want, got, "%s -> %s", tt.from, tt.to)
	}
}
