package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/examgen/examgen/internal/breaker"
	"github.com/examgen/examgen/internal/cloudconvert"
	"github.com/examgen/examgen/internal/errs"
	"github.com/examgen/examgen/internal/ratelimit"
)

type fakeConverter struct {
	createJob *cloudconvert.Job
	createErr error
	waitJob   *cloudconvert.Job
	waitErr   error
	artifact  *cloudconvert.Artifact
	dlErr     error

	createCalls int
	waitCalls   int
	dlCalls     int
}

func (f *fakeConverter) CreateJob(ctx context.Context, latexContent, filename string) (*cloudconvert.Job, error) {
	f.createCalls++
	return f.createJob, f.createErr
}

func (f *fakeConverter) WaitForJob(ctx context.Context, jobID string, settings cloudconvert.PollSettings) (*cloudconvert.Job, error) {
	f.waitCalls++
	return f.waitJob, f.waitErr
}

func (f *fakeConverter) Download(ctx context.Context, file *cloudconvert.ResultFile) (*cloudconvert.Artifact, error) {
	f.dlCalls++
	return f.artifact, f.dlErr
}

type fakeGate struct {
	counts    map[string]int64
	quotas    map[string]int
	incrCalls int
}

func newFakeGate(quotas map[string]int) *fakeGate {
	return &fakeGate{counts: make(map[string]int64), quotas: quotas}
}

func (f *fakeGate) CheckAvailability(ctx context.Context, provider string) (bool, error) {
	return f.counts[provider] < int64(f.quotas[provider]), nil
}

func (f *fakeGate) IncrementUsage(ctx context.Context, provider string) (int64, error) {
	f.incrCalls++
	f.counts[provider]++
	return f.counts[provider], nil
}

func (f *fakeGate) Quota(provider string) int {
	return f.quotas[provider]
}

func finishedJob() *cloudconvert.Job {
	return &cloudconvert.Job{
		ID:     "job-1",
		Status: cloudconvert.StatusFinished,
		Tasks: []cloudconvert.Task{
			{Name: cloudconvert.ExportTaskName, Status: cloudconvert.StatusFinished, Result: &cloudconvert.TaskResult{
				Files: []cloudconvert.ResultFile{{Filename: "paper.pdf", Size: 9, URL: "https://storage/paper.pdf"}},
			}},
		},
	}
}

func newPDFService(converter *fakeConverter, gate *fakeGate) *PDFService {
	return NewPDFService(converter, gate, breaker.New(5, time.Minute), cloudconvert.DefaultPollSettings(), zap.NewNop())
}

func TestGeneratePDF_SuccessIncrementsUsageOnce(t *testing.T) {
	converter := &fakeConverter{
		createJob: &cloudconvert.Job{ID: "job-1", Status: cloudconvert.StatusWaiting},
		waitJob:   finishedJob(),
		artifact:  &cloudconvert.Artifact{Filename: "paper.pdf", Size: 9, Data: []byte("%PDF-1.7 ")},
	}
	gate := newFakeGate(map[string]int{ratelimit.ProviderCloudConvert: 10})
	svc := newPDFService(converter, gate)

	artifact, err := svc.GeneratePDF(context.Background(), "\\documentclass{article}", "paper.tex")
	require.NoError(t, err)
	assert.Equal(t, "paper.pdf", artifact.Filename)
	assert.Equal(t, 1, gate.incrCalls, "quota consumed exactly once on success")
	assert.Equal(t, int64(1), gate.counts[ratelimit.ProviderCloudConvert])
}

func TestGeneratePDF_QuotaExhaustedShortCircuits(t *testing.T) {
	converter := &fakeConverter{}
	gate := newFakeGate(map[string]int{ratelimit.ProviderCloudConvert: 2})
	gate.counts[ratelimit.ProviderCloudConvert] = 2
	svc := newPDFService(converter, gate)

	_, err := svc.GeneratePDF(context.Background(), "content", "f.tex")

	var quotaErr *errs.QuotaError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, ratelimit.ProviderCloudConvert, quotaErr.Provider)
	assert.Equal(t, 2, quotaErr.Limit)
	assert.Zero(t, converter.createCalls, "no remote job may be created once quota is exhausted")
	assert.Zero(t, gate.incrCalls)
	assert.Equal(t, int64(2), gate.counts[ratelimit.ProviderCloudConvert], "counter unchanged")
}

func TestGeneratePDF_SubmissionFailureSkipsIncrement(t *testing.T) {
	converter := &fakeConverter{
		createErr: &errs.SubmissionError{StatusCode: 422, Body: "bad task"},
	}
	gate := newFakeGate(map[string]int{ratelimit.ProviderCloudConvert: 10})
	svc := newPDFService(converter, gate)

	_, err := svc.GeneratePDF(context.Background(), "content", "f.tex")

	var submissionErr *errs.SubmissionError
	require.ErrorAs(t, err, &submissionErr)
	assert.Zero(t, gate.incrCalls)
	assert.Zero(t, converter.waitCalls)
}

func TestGeneratePDF_PollTimeoutSkipsIncrement(t *testing.T) {
	converter := &fakeConverter{
		createJob: &cloudconvert.Job{ID: "job-1", Status: cloudconvert.StatusWaiting},
		waitErr:   &errs.PollTimeoutError{JobID: "job-1", Attempts: 60, LastStatus: cloudconvert.StatusProcessing},
	}
	gate := newFakeGate(map[string]int{ratelimit.ProviderCloudConvert: 10})
	svc := newPDFService(converter, gate)

	_, err := svc.GeneratePDF(context.Background(), "content", "f.tex")

	var timeoutErr *errs.PollTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Zero(t, gate.incrCalls)
	assert.Zero(t, converter.dlCalls)
}

func TestGeneratePDF_EmptyExportResultIsArtifactError(t *testing.T) {
	emptyJob := &cloudconvert.Job{
		ID:     "job-1",
		Status: cloudconvert.StatusFinished,
		Tasks: []cloudconvert.Task{
			{Name: cloudconvert.ExportTaskName, Status: cloudconvert.StatusFinished, Result: &cloudconvert.TaskResult{}},
		},
	}
	converter := &fakeConverter{
		createJob: &cloudconvert.Job{ID: "job-1", Status: cloudconvert.StatusWaiting},
		waitJob:   emptyJob,
	}
	gate := newFakeGate(map[string]int{ratelimit.ProviderCloudConvert: 10})
	svc := newPDFService(converter, gate)

	_, err := svc.GeneratePDF(context.Background(), "content", "f.tex")

	var artifactErr *errs.ArtifactError
	require.ErrorAs(t, err, &artifactErr)
	assert.Zero(t, converter.dlCalls, "nothing to download without a result file")
	assert.Zero(t, gate.incrCalls)
}

func TestGeneratePDF_DownloadFailureSkipsIncrement(t *testing.T) {
	converter := &fakeConverter{
		createJob: &cloudconvert.Job{ID: "job-1", Status: cloudconvert.StatusWaiting},
		waitJob:   finishedJob(),
		dlErr:     &errs.ArtifactError{Reason: "remote returned 403"},
	}
	gate := newFakeGate(map[string]int{ratelimit.ProviderCloudConvert: 10})
	svc := newPDFService(converter, gate)

	_, err := svc.GeneratePDF(context.Background(), "content", "f.tex")

	var artifactErr *errs.ArtifactError
	require.ErrorAs(t, err, &artifactErr)
	assert.Zero(t, gate.incrCalls)
}

func TestGeneratePDF_OpenBreakerMapsToProviderUnavailable(t *testing.T) {
	converter := &fakeConverter{
		createErr: &errs.SubmissionError{StatusCode: 500, Body: "boom"},
	}
	gate := newFakeGate(map[string]int{ratelimit.ProviderCloudConvert: 100})

	cb := breaker.New(2, time.Minute)
	svc := NewPDFService(converter, gate, cb, cloudconvert.DefaultPollSettings(), zap.NewNop())

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := svc.GeneratePDF(ctx, "content", "f.tex")
		require.Error(t, err)
	}

	_, err := svc.GeneratePDF(ctx, "content", "f.tex")

	var unavailableErr *errs.ProviderUnavailableError
	require.ErrorAs(t, err, &unavailableErr)
	assert.Equal(t, 2, converter.createCalls, "open circuit must not reach the provider")
}
