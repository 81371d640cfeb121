package service

import (
	"context"
	"time"

	"github.com/examgen/examgen/internal/models"
	"github.com/examgen/examgen/internal/repository"
)

type AnalyticsService struct {
	repository *repository.RequestLogRepository
}

func NewAnalyticsService(repo *repository.RequestLogRepository) *AnalyticsService {
	return &AnalyticsService{repository: repo}
}

// Holds analytics summary data
type AnalyticsSummary struct {
	TotalRequests   int64                    `json:"total_requests"`
	AvgResponseTime float64                  `json:"avg_response_time_ms"`
	ErrorRate       float64                  `json:"error_rate"`
	SuccessRate     float64                  `json:"success_rate"`
	ClientErrorRate float64                  `json:"client_error_rate"`
	ServerErrorRate float64                  `json:"server_error_rate"`
	TopEndpoints    []map[string]interface{} `json:"top_endpoints"`
}

func (s *AnalyticsService) GetSummary(ctx context.Context, from, to time.Time) (*AnalyticsSummary, error) {
	total, err := s.repository.CountByTimeRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	avgResponseTime, err := s.repository.GetAverageResponseTime(ctx, from, to)
	if err != nil {
		return nil, err
	}

	clientErrors, err := s.repository.CountByStatusCodeRange(ctx, 400, 499, from, to)
	if err != nil {
		return nil, err
	}

	serverErrors, err := s.repository.CountByStatusCodeRange(ctx, 500, 599, from, to)
	if err != nil {
		return nil, err
	}

	topEndpoints, err := s.repository.GetTopEndpoints(ctx, from, to, 10)
	if err != nil {
		return nil, err
	}

	summary := &AnalyticsSummary{
		TotalRequests:   total,
		AvgResponseTime: avgResponseTime,
		TopEndpoints:    topEndpoints,
	}

	if total > 0 {
		errors := clientErrors + serverErrors
		summary.ErrorRate = float64(errors) / float64(total) * 100
		summary.SuccessRate = float64(total-errors) / float64(total) * 100
		summary.ClientErrorRate = float64(clientErrors) / float64(total) * 100
		summary.ServerErrorRate = float64(serverErrors) / float64(total) * 100
	}

	return summary, nil
}

func (s *AnalyticsService) GetTimeSeriesData(ctx context.Context, from, to time.Time) ([]map[string]interface{}, error) {
	return s.repository.GetHourlyStats(ctx, from, to)
}

func (s *AnalyticsService) GetLogs(ctx context.Context, from, to time.Time, statusCode *int, limit, offset int) ([]models.RequestLog, error) {
	return s.repository.FindByTimeRange(ctx, from, to, statusCode, limit, offset)
}
