package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/examgen/examgen/internal/breaker"
	"github.com/examgen/examgen/internal/cloudconvert"
	"github.com/examgen/examgen/internal/errs"
	"github.com/examgen/examgen/internal/ratelimit"
)

// ConversionClient is the slice of the cloudconvert client the pipeline uses.
type ConversionClient interface {
	CreateJob(ctx context.Context, latexContent, filename string) (*cloudconvert.Job, error)
	WaitForJob(ctx context.Context, jobID string, settings cloudconvert.PollSettings) (*cloudconvert.Job, error)
	Download(ctx context.Context, file *cloudconvert.ResultFile) (*cloudconvert.Artifact, error)
}

// QuotaGate is the rate-gate surface the services depend on.
type QuotaGate interface {
	CheckAvailability(ctx context.Context, provider string) (bool, error)
	IncrementUsage(ctx context.Context, provider string) (int64, error)
	Quota(provider string) int
}

// PDFService runs the conversion pipeline end to end: quota check, job
// submission, polling to a terminal state, artifact download, and finally
// the usage increment. Failures short-circuit without touching the counter.
type PDFService struct {
	converter ConversionClient
	gate      QuotaGate
	breaker   *breaker.Breaker
	poll      cloudconvert.PollSettings
	logger    *zap.Logger
}

func NewPDFService(converter ConversionClient, gate QuotaGate, cb *breaker.Breaker, poll cloudconvert.PollSettings, logger *zap.Logger) *PDFService {
	return &PDFService{
		converter: converter,
		gate:      gate,
		breaker:   cb,
		poll:      poll,
		logger:    logger,
	}
}

// GeneratePDF converts LaTeX source into a downloadable PDF artifact.
func (s *PDFService) GeneratePDF(ctx context.Context, latexContent, filename string) (*cloudconvert.Artifact, error) {
	allowed, err := s.gate.CheckAvailability(ctx, ratelimit.ProviderCloudConvert)
	if err != nil {
		return nil, fmt.Errorf("quota check: %w", err)
	}
	if !allowed {
		return nil, &errs.QuotaError{
			Provider: ratelimit.ProviderCloudConvert,
			Limit:    s.gate.Quota(ratelimit.ProviderCloudConvert),
		}
	}

	var job *cloudconvert.Job
	err = s.breaker.Do(func() error {
		var createErr error
		job, createErr = s.converter.CreateJob(ctx, latexContent, filename)
		return createErr
	})
	if errors.Is(err, breaker.ErrOpen) {
		return nil, &errs.ProviderUnavailableError{Provider: ratelimit.ProviderCloudConvert}
	}
	if err != nil {
		return nil, err
	}

	job, err = s.converter.WaitForJob(ctx, job.ID, s.poll)
	if err != nil {
		return nil, err
	}

	file := job.ExportedFile()
	if file == nil {
		return nil, &errs.ArtifactError{Reason: "no result file in export task"}
	}

	artifact, err := s.converter.Download(ctx, file)
	if err != nil {
		return nil, err
	}

	// Only a fully delivered artifact consumes quota. A failed increment is
	// logged but does not fail the request the user already paid for.
	count, err := s.gate.IncrementUsage(ctx, ratelimit.ProviderCloudConvert)
	if err != nil {
		s.logger.Error("failed to record provider usage",
			zap.String("provider", ratelimit.ProviderCloudConvert),
			zap.Error(err))
	} else {
		s.logger.Info("pdf generated",
			zap.String("filename", artifact.Filename),
			zap.Int64("size_bytes", artifact.Size),
			zap.Int64("daily_usage", count))
	}

	return artifact, nil
}
