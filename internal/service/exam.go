package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/examgen/examgen/internal/breaker"
	"github.com/examgen/examgen/internal/errs"
	"github.com/examgen/examgen/internal/models"
	"github.com/examgen/examgen/internal/ratelimit"
)

// Generator is the slice of the gemini client the exam flows use.
type Generator interface {
	GenerateQuiz(ctx context.Context, form models.FormInput) ([]models.QuizQuestion, error)
	GenerateTestPaper(ctx context.Context, form models.FormInput) (string, error)
}

// ExamService fronts the text-generation provider for both interactive
// quizzes and printable test papers, metered by the shared rate gate.
type ExamService struct {
	generator Generator
	gate      QuotaGate
	breaker   *breaker.Breaker
	logger    *zap.Logger
}

func NewExamService(generator Generator, gate QuotaGate, cb *breaker.Breaker, logger *zap.Logger) *ExamService {
	return &ExamService{
		generator: generator,
		gate:      gate,
		breaker:   cb,
		logger:    logger,
	}
}

func (s *ExamService) GenerateQuiz(ctx context.Context, form models.FormInput) ([]models.QuizQuestion, error) {
	if err := s.checkQuota(ctx); err != nil {
		return nil, err
	}

	var questions []models.QuizQuestion
	err := s.breaker.Do(func() error {
		var genErr error
		questions, genErr = s.generator.GenerateQuiz(ctx, form)
		return genErr
	})
	if err != nil {
		return nil, s.classify(err)
	}

	s.recordUsage(ctx)

	s.logger.Info("quiz generated",
		zap.String("subject", form.Subject),
		zap.String("difficulty", form.Difficulty),
		zap.Int("questions", len(questions)))

	return questions, nil
}

func (s *ExamService) GenerateTestPaper(ctx context.Context, form models.FormInput) (string, error) {
	if err := s.checkQuota(ctx); err != nil {
		return "", err
	}

	var latex string
	err := s.breaker.Do(func() error {
		var genErr error
		latex, genErr = s.generator.GenerateTestPaper(ctx, form)
		return genErr
	})
	if err != nil {
		return "", s.classify(err)
	}

	s.recordUsage(ctx)

	s.logger.Info("test paper generated",
		zap.String("subject", form.Subject),
		zap.String("difficulty", form.Difficulty),
		zap.Int("latex_bytes", len(latex)))

	return latex, nil
}

func (s *ExamService) checkQuota(ctx context.Context) error {
	allowed, err := s.gate.CheckAvailability(ctx, ratelimit.ProviderGemini)
	if err != nil {
		return fmt.Errorf("quota check: %w", err)
	}
	if !allowed {
		return &errs.QuotaError{
			Provider: ratelimit.ProviderGemini,
			Limit:    s.gate.Quota(ratelimit.ProviderGemini),
		}
	}
	return nil
}

func (s *ExamService) recordUsage(ctx context.Context) {
	if _, err := s.gate.IncrementUsage(ctx, ratelimit.ProviderGemini); err != nil {
		s.logger.Error("failed to record provider usage",
			zap.String("provider", ratelimit.ProviderGemini),
			zap.Error(err))
	}
}

func (s *ExamService) classify(err error) error {
	if errors.Is(err, breaker.ErrOpen) {
		return &errs.ProviderUnavailableError{Provider: ratelimit.ProviderGemini}
	}
	return err
}
