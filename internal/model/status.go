package model

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TrainingState represents the lifecycle state of a model training job
type TrainingState string

const (
	TrainingPending   TrainingState = "pending"
	TrainingRunning   TrainingState = "running"
	TrainingCompleted TrainingState = "completed"
	TrainingFailed    TrainingState = "failed"
)

// IsTerminal reports whether the state admits no further transitions
func (s TrainingState) IsTerminal() bool {
	return s == TrainingCompleted || s == TrainingFailed
}

// TrainingJob tracks one model training run
type TrainingJob struct {
	JobID       uuid.UUID     `json:"job_id"`
	ModelType   string        `json:"model_type"`
	State       TrainingState `json:"state"`
	Message     string        `json:"message,omitempty"`
	SubmittedAt time.Time     `json:"submitted_at"`
	StartedAt   *time.Time    `json:"started_at,omitempty"`
	FinishedAt  *time.Time    `json:"finished_at,omitempty"`
}

// validTransitions maps each state to the states it may move to
var validTransitions = map[TrainingState][]TrainingState{
	TrainingPending: {TrainingRunning, TrainingFailed},
	TrainingRunning: {TrainingCompleted, TrainingFailed},
}

// StatusStore tracks training job lifecycles in memory. Terminal jobs are
// immutable.
type StatusStore struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*TrainingJob
}

// NewStatusStore creates an empty status store
func NewStatusStore() *StatusStore {
	return &StatusStore{
		jobs: make(map[uuid.UUID]*TrainingJob),
	}
}

// Submit registers a new pending training job
func (s *StatusStore) Submit(modelType string) *TrainingJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := &TrainingJob{
		JobID:       uuid.New(),
		ModelType:   modelType,
		State:       TrainingPending,
		SubmittedAt: time.Now().UTC(),
	}
	s.jobs[job.JobID] = job
	return s.copyJob(job)
}

// Get returns the job with the given ID
func (s *StatusStore) Get(jobID uuid.UUID) (*TrainingJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return s.copyJob(job), nil
}

// List returns all known jobs, newest first
func (s *StatusStore) List() []*TrainingJob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*TrainingJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, s.copyJob(job))
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].SubmittedAt.After(jobs[j].SubmittedAt)
	})
	return jobs
}

// Transition moves a job to a new state. Terminal jobs reject all
// transitions; non-terminal jobs reject transitions not in the lifecycle.
func (s *StatusStore) Transition(jobID uuid.UUID, to TrainingState, message string) (*TrainingJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	if job.State.IsTerminal() {
		return nil, fmt.Errorf("%w: %s is %s", ErrJobAlreadyTerminal, jobID, job.State)
	}

	allowed := false
	for _, next := range validTransitions[job.State] {
		if next == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.State, to)
	}

	now := time.Now().UTC()
	job.State = to
	job.Message = message
	switch to {
	case TrainingRunning:
		job.StartedAt = &now
	case TrainingCompleted, TrainingFailed:
		job.FinishedAt = &now
	}

	return s.copyJob(job), nil
}

// copyJob returns a defensive copy so callers cannot mutate store state
func (s *StatusStore) copyJob(job *TrainingJob) *TrainingJob {
	copied := *job
	if job.StartedAt != nil {
		startedAt := *job.StartedAt
		copied.StartedAt = &startedAt
	}
	if job.FinishedAt != nil {
		finishedAt := *job.FinishedAt
		copied.FinishedAt = &finishedAt
	}
	return &copied
}
