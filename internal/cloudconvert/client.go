package cloudconvert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/examgen/examgen/internal/errs"
)

const (
	// Server-side ceiling for one conversion, distinct from the client's
	// own polling budget. The server may keep working after we stop waiting.
	convertTimeoutSeconds = 600

	convertEngine        = "texlive"
	convertEngineVersion = "2023"
)

// Client talks to the CloudConvert v2 jobs API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(apiKey, baseURL string, logger *zap.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// CreateJob submits one LaTeX-to-PDF conversion job: an inline import of the
// raw source, the convert step and an export step that produces a download
// URL. Returns the freshly created job with its initial task snapshot.
func (c *Client) CreateJob(ctx context.Context, latexContent, filename string) (*Job, error) {
	if c.apiKey == "" {
		return nil, &errs.ConfigError{Missing: "CLOUDCONVERT_API_KEY"}
	}

	payload := map[string]any{
		"tasks": map[string]any{
			ImportTaskName: map[string]any{
				"operation": "import/raw",
				"filename":  filename,
				"file":      latexContent,
			},
			ConvertTaskName: map[string]any{
				"operation":      "convert",
				"input":          ImportTaskName,
				"output_format":  "pdf",
				"engine":         convertEngine,
				"engine_version": convertEngineVersion,
				"timeout":        convertTimeoutSeconds,
			},
			ExportTaskName: map[string]any{
				"operation": "export/url",
				"input":     ConvertTaskName,
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode job payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/jobs", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create conversion job: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read job creation response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &errs.SubmissionError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var envelope jobEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		// The remote job exists at this point even though we could not
		// decode its id. Log the raw body so operators can clean up the
		// orphaned job.
		c.logger.Error("created a conversion job but could not decode the response",
			zap.Error(err),
			zap.ByteString("raw_response", truncate(raw, 2048)))
		return nil, fmt.Errorf("decode job creation response: %w", err)
	}

	c.logger.Info("conversion job created",
		zap.String("job_id", envelope.Data.ID),
		zap.String("status", envelope.Data.Status))

	if importTask := envelope.Data.Task(ImportTaskName); importTask != nil && importTask.Status == StatusError {
		return nil, &errs.JobFailedError{
			JobID: envelope.Data.ID,
			Tasks: envelope.Data.ErrorDiagnostics(),
		}
	}

	return &envelope.Data, nil
}

// GetJob fetches the current snapshot of a job.
func (c *Client) GetJob(ctx context.Context, jobID string) (*Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/jobs/"+jobID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch job status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch job status: remote returned %d: %s", resp.StatusCode, truncate(raw, 512))
	}

	var envelope jobEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode job status response: %w", err)
	}

	return &envelope.Data, nil
}

// Download fetches the finished artifact from its delivered URL. A failed
// or empty download is reported as an artifact error, distinct from job
// failure, because the job itself already reported success.
func (c *Client) Download(ctx context.Context, file *ResultFile) (*Artifact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.URL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &errs.ArtifactError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &errs.ArtifactError{Reason: fmt.Sprintf("remote returned %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.ArtifactError{Reason: err.Error()}
	}

	if len(data) == 0 {
		return nil, &errs.ArtifactError{Reason: "downloaded file is empty"}
	}

	return &Artifact{
		Filename: file.Filename,
		Size:     int64(len(data)),
		Data:     data,
	}, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
