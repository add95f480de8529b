package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/findr-ai/findr/internal/analyzer"
	"github.com/findr-ai/findr/internal/db"
	"github.com/findr-ai/findr/internal/metrics"
)

const validResults = `{
  "matching_score": 78.5,
  "github_verification_triggered": true,
  "results": {
    "resume_analysis": {"matching_score": 78.5},
    "github_verification": {"triggered": true}
  }
}`

type fakeStore struct {
	mu sync.Mutex

	applicants map[uuid.UUID]*db.Applicant

	analyzerJobs map[uuid.UUID]string
	progress     map[uuid.UUID][]int
	completed    map[uuid.UUID][]byte
	failed       map[uuid.UUID]string

	terminal chan uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		applicants:   make(map[uuid.UUID]*db.Applicant),
		analyzerJobs: make(map[uuid.UUID]string),
		progress:     make(map[uuid.UUID][]int),
		completed:    make(map[uuid.UUID][]byte),
		failed:       make(map[uuid.UUID]string),
		terminal:     make(chan uuid.UUID, 16),
	}
}

func (s *fakeStore) addStarted(remoteID string) uuid.UUID {
	id := uuid.New()
	applicant := &db.Applicant{ID: id, AIEvaluationStatus: db.EvalStarted}
	if remoteID != "" {
		applicant.AnalyzerJobID = &remoteID
	}
	s.applicants[id] = applicant
	return id
}

func (s *fakeStore) GetApplicant(ctx context.Context, id uuid.UUID) (*db.Applicant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applicants[id], nil
}

func (s *fakeStore) SetAnalyzerJob(ctx context.Context, applicantID uuid.UUID, analyzerJobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyzerJobs[applicantID] = analyzerJobID
	if applicant, ok := s.applicants[applicantID]; ok {
		applicant.AnalyzerJobID = &analyzerJobID
	}
	return nil
}

func (s *fakeStore) UpdateEvaluationProgress(ctx context.Context, applicantID uuid.UUID, progress int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress[applicantID] = append(s.progress[applicantID], progress)
	return nil
}

func (s *fakeStore) CompleteEvaluation(ctx context.Context, applicantID uuid.UUID, results []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, done := s.completed[applicantID]; done {
		return false, nil
	}
	if _, done := s.failed[applicantID]; done {
		return false, nil
	}
	s.completed[applicantID] = results
	s.terminal <- applicantID
	return true, nil
}

func (s *fakeStore) FailEvaluation(ctx context.Context, applicantID uuid.UUID, reason string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, done := s.completed[applicantID]; done {
		return false, nil
	}
	if _, done := s.failed[applicantID]; done {
		return false, nil
	}
	s.failed[applicantID] = reason
	s.terminal <- applicantID
	return true, nil
}

func (s *fakeStore) ListStartedApplicants(ctx context.Context) ([]db.Applicant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var started []db.Applicant
	for id, applicant := range s.applicants {
		if _, done := s.completed[id]; done {
			continue
		}
		if _, done := s.failed[id]; done {
			continue
		}
		started = append(started, *applicant)
	}
	return started, nil
}

type fakeAnalyzer struct {
	mu sync.Mutex

	submitID  string
	submitErr error

	statuses map[string][]*analyzer.JobStatus
	deleted  []string
}

func (f *fakeAnalyzer) Submit(ctx context.Context, req analyzer.SubmitRequest) (string, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return f.submitID, nil
}

func (f *fakeAnalyzer) Status(ctx context.Context, jobID string) (*analyzer.JobStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	queue := f.statuses[jobID]
	if len(queue) == 0 {
		return nil, analyzer.ErrJobNotFound
	}
	status := queue[0]
	if len(queue) > 1 {
		f.statuses[jobID] = queue[1:]
	}
	return status, nil
}

func (f *fakeAnalyzer) Delete(ctx context.Context, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, jobID)
	return nil
}

func testConfig() Config {
	return Config{
		PollInterval:  time.Millisecond,
		MaxAttempts:   60,
		MaxConcurrent: 2,
	}
}

func runUntilTerminal(t *testing.T, runner *Runner, store *fakeStore, want int) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()

	for i := 0; i < want; i++ {
		select {
		case <-store.terminal:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for evaluation to finish")
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop")
	}
}

// TestDisplayProgress tests the mapping from analyzer progress to the
// displayed 10-95 band.
func TestDisplayProgress(t *testing.T) {
	tests := []struct {
		progress float64
		want     int
	}{
		{0.0, 10},
		{0.5, 52},
		{1.0, 95},
		{-1.0, 10},
		{2.0, 95},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DisplayProgress(tt.progress))
	}
}

// TestEvaluationCompletes tests the happy path from submission through
// completed results and remote cleanup.
func TestEvaluationCompletes(t *testing.T) {
	store := newFakeStore()
	applicantID := store.addStarted("")

	client := &fakeAnalyzer{
		submitID: "remote-1",
		statuses: map[string][]*analyzer.JobStatus{
			"remote-1": {
				{Status: analyzer.StatusProcessing, Progress: 0.5},
				{Status: analyzer.StatusCompleted, Progress: 1.0, Results: json.RawMessage(validResults)},
			},
		},
	}

	runner := NewRunner(store, client, testConfig(), zap.NewNop())
	require.NoError(t, runner.Begin(context.Background(), applicantID, analyzer.SubmitRequest{}))
	assert.Equal(t, "remote-1", store.analyzerJobs[applicantID])

	runUntilTerminal(t, runner, store, 1)

	assert.JSONEq(t, validResults, string(store.completed[applicantID]))
	assert.NotContains(t, store.failed, applicantID)
	assert.Contains(t, store.progress[applicantID], 52)
	assert.Equal(t, []string{"remote-1"}, client.deleted)
}

// TestEvaluationFailure tests that a failed remote job records its reason.
func TestEvaluationFailure(t *testing.T) {
	store := newFakeStore()
	applicantID := store.addStarted("remote-2")

	client := &fakeAnalyzer{
		statuses: map[string][]*analyzer.JobStatus{
			"remote-2": {
				{Status: analyzer.StatusFailed, Error: "resume could not be parsed"},
			},
		},
	}

	runner := NewRunner(store, client, testConfig(), zap.NewNop())
	runner.Enqueue(applicantID)
	runUntilTerminal(t, runner, store, 1)

	assert.Equal(t, "resume could not be parsed", store.failed[applicantID])
	assert.NotContains(t, store.completed, applicantID)
}

// TestEvaluationTimesOut tests that the attempt budget bounds polling.
func TestEvaluationTimesOut(t *testing.T) {
	store := newFakeStore()
	applicantID := store.addStarted("remote-3")

	client := &fakeAnalyzer{
		statuses: map[string][]*analyzer.JobStatus{
			"remote-3": {
				{Status: analyzer.StatusProcessing, Progress: 0.2},
			},
		},
	}

	cfg := testConfig()
	cfg.MaxAttempts = 3
	runner := NewRunner(store, client, cfg, zap.NewNop())
	runner.Enqueue(applicantID)
	runUntilTerminal(t, runner, store, 1)

	assert.Equal(t, "evaluation timed out", store.failed[applicantID])
}

// TestEvaluationMalformedResults tests that results failing schema validation
// mark the evaluation failed rather than storing garbage.
func TestEvaluationMalformedResults(t *testing.T) {
	store := newFakeStore()
	applicantID := store.addStarted("remote-4")

	client := &fakeAnalyzer{
		statuses: map[string][]*analyzer.JobStatus{
			"remote-4": {
				{Status: analyzer.StatusCompleted, Results: json.RawMessage(`{"unexpected": true}`)},
			},
		},
	}

	runner := NewRunner(store, client, testConfig(), zap.NewNop())
	runner.Enqueue(applicantID)
	runUntilTerminal(t, runner, store, 1)

	assert.Equal(t, "analyzer returned malformed results", store.failed[applicantID])
	assert.NotContains(t, store.completed, applicantID)
}

// TestBeginSubmissionFailure tests that a rejected submission fails the
// evaluation immediately.
func TestBeginSubmissionFailure(t *testing.T) {
	store := newFakeStore()
	applicantID := store.addStarted("")

	client := &fakeAnalyzer{submitErr: errors.New("analyzer unreachable")}
	runner := NewRunner(store, client, testConfig(), zap.NewNop())

	err := runner.Begin(context.Background(), applicantID, analyzer.SubmitRequest{})
	require.Error(t, err)
	assert.Equal(t, "analyzer submission failed", store.failed[applicantID])
}

// TestBeginSubmissionFailureCountedOnce tests that repeated submission
// failures on the same row leave a single terminal count.
func TestBeginSubmissionFailureCountedOnce(t *testing.T) {
	store := newFakeStore()
	applicantID := store.addStarted("")

	client := &fakeAnalyzer{submitErr: errors.New("analyzer unreachable")}
	runner := NewRunner(store, client, testConfig(), zap.NewNop())

	counter := metrics.EvaluationsFinished.WithLabelValues("failed")
	before := testutil.ToFloat64(counter)

	require.Error(t, runner.Begin(context.Background(), applicantID, analyzer.SubmitRequest{}))
	// Second attempt loses the terminal write and must not count again.
	require.Error(t, runner.Begin(context.Background(), applicantID, analyzer.SubmitRequest{}))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

// TestReadoption tests that startup picks up evaluations left in flight and
// fails the ones that never reached the analyzer.
func TestReadoption(t *testing.T) {
	store := newFakeStore()
	orphanID := store.addStarted("")
	inFlightID := store.addStarted("remote-5")

	client := &fakeAnalyzer{
		statuses: map[string][]*analyzer.JobStatus{
			"remote-5": {
				{Status: analyzer.StatusCompleted, Results: json.RawMessage(validResults)},
			},
		},
	}

	runner := NewRunner(store, client, testConfig(), zap.NewNop())
	runUntilTerminal(t, runner, store, 2)

	assert.Equal(t, "evaluation interrupted before submission", store.failed[orphanID])
	assert.Contains(t, store.completed, inFlightID)
}
