// Package errs defines the failure categories shared by the generation
// pipeline and maps each one to an HTTP status at the gateway boundary.
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Missing credentials or other required configuration. Never retried.
type ConfigError struct {
	Missing string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing configuration: %s", e.Missing)
}

// Daily ceiling for a provider has been reached.
type QuotaError struct {
	Provider string
	Limit    int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("daily quota for %s exhausted (%d requests), try again tomorrow", e.Provider, e.Limit)
}

// The provider reported itself temporarily unavailable.
type ProviderUnavailableError struct {
	Provider string
}

func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("the %s service is temporarily unavailable, please try again in a few minutes", e.Provider)
}

// The remote rejected job creation. Body carries the remote diagnostic.
type SubmissionError struct {
	StatusCode int
	Body       string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("job submission rejected (status %d)", e.StatusCode)
}

// Status checks failed repeatedly; the job's fate is unknown.
type StatusCheckError struct {
	Failures int
	LastErr  error
}

func (e *StatusCheckError) Error() string {
	return fmt.Sprintf("job status check failed %d times in a row: %v", e.Failures, e.LastErr)
}

func (e *StatusCheckError) Unwrap() error {
	return e.LastErr
}

// One failing task inside a remote job.
type TaskDiagnostic struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// The remote job reached its error state. Carries per-task diagnostics
// so malformed input can be debugged from the response body.
type JobFailedError struct {
	JobID string
	Tasks []TaskDiagnostic
}

func (e *JobFailedError) Error() string {
	msgs := make([]string, 0, len(e.Tasks))
	for _, t := range e.Tasks {
		msgs = append(msgs, fmt.Sprintf("%s: %s", t.Name, t.Message))
	}
	return fmt.Sprintf("conversion job %s failed: %s", e.JobID, strings.Join(msgs, "; "))
}

// The local attempt budget ran out while the job was still in flight.
// The remote job may still finish with no further observer.
type PollTimeoutError struct {
	JobID      string
	Attempts   int
	LastStatus string
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("gave up on job %s after %d status checks (last status %q)", e.JobID, e.Attempts, e.LastStatus)
}

// The job succeeded but the artifact was missing, empty or undownloadable.
type ArtifactError struct {
	Reason string
}

func (e *ArtifactError) Error() string {
	return "artifact download failed: " + e.Reason
}

// HTTPStatus resolves the response code for any pipeline error.
func HTTPStatus(err error) int {
	var (
		configErr      *ConfigError
		quotaErr       *QuotaError
		unavailableErr *ProviderUnavailableError
		submissionErr  *SubmissionError
		statusCheckErr *StatusCheckError
		jobFailedErr   *JobFailedError
		timeoutErr     *PollTimeoutError
		artifactErr    *ArtifactError
	)

	switch {
	case errors.As(err, &quotaErr), errors.As(err, &unavailableErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &timeoutErr):
		return http.StatusRequestTimeout
	case errors.As(err, &configErr),
		errors.As(err, &submissionErr),
		errors.As(err, &statusCheckErr),
		errors.As(err, &jobFailedErr),
		errors.As(err, &artifactErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Details extracts the structured payload surfaced to the caller alongside
// the error message, when the category carries one.
func Details(err error) any {
	var (
		submissionErr *SubmissionError
		jobFailedErr  *JobFailedError
	)

	switch {
	case errors.As(err, &submissionErr):
		return submissionErr.Body
	case errors.As(err, &jobFailedErr):
		return jobFailedErr.Tasks
	default:
		return nil
	}
}
