package cloudconvert

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/examgen/examgen/internal/errs"
)

// PollSettings bounds one polling session. The attempt budget is a hard
// local ceiling, independent of the server-side conversion timeout.
type PollSettings struct {
	Interval         time.Duration
	MaxAttempts      int
	MaxFetchFailures int
}

func DefaultPollSettings() PollSettings {
	return PollSettings{
		Interval:         2 * time.Second,
		MaxAttempts:      60,
		MaxFetchFailures: 3,
	}
}

// WaitForJob polls a job until it reaches a terminal state or the attempt
// budget runs out. Each tick sleeps for the interval, fetches a fresh
// snapshot and consumes one attempt. A failed status fetch also consumes an
// attempt; only after MaxFetchFailures consecutive failures does the poller
// abort early, so a single network blip is not confused with job failure.
func (c *Client) WaitForJob(ctx context.Context, jobID string, settings PollSettings) (*Job, error) {
	attempts := 0
	consecutiveFailures := 0
	lastStatus := StatusWaiting

	for attempts < settings.MaxAttempts {
		if err := sleep(ctx, settings.Interval); err != nil {
			return nil, err
		}

		job, err := c.GetJob(ctx, jobID)
		attempts++

		if err != nil {
			consecutiveFailures++
			c.logger.Warn("job status check failed",
				zap.String("job_id", jobID),
				zap.Int("attempt", attempts),
				zap.Int("consecutive_failures", consecutiveFailures),
				zap.Error(err))

			if consecutiveFailures >= settings.MaxFetchFailures {
				return nil, &errs.StatusCheckError{Failures: consecutiveFailures, LastErr: err}
			}
			continue
		}

		consecutiveFailures = 0
		lastStatus = job.Status

		c.logger.Debug("job status",
			zap.String("job_id", jobID),
			zap.String("status", job.Status),
			zap.Int("attempt", attempts),
			zap.Int("max_attempts", settings.MaxAttempts))

		switch job.Status {
		case StatusFinished:
			return job, nil
		case StatusError:
			return nil, &errs.JobFailedError{JobID: jobID, Tasks: job.ErrorDiagnostics()}
		}
	}

	// Budget exhausted while still in flight. The remote job may complete
	// later with no local observer; that leak is accepted.
	return nil, &errs.PollTimeoutError{JobID: jobID, Attempts: attempts, LastStatus: lastStatus}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
