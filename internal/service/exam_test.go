package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/examgen/examgen/internal/breaker"
	"github.com/examgen/examgen/internal/errs"
	"github.com/examgen/examgen/internal/models"
	"github.com/examgen/examgen/internal/ratelimit"
)

type fakeGenerator struct {
	questions []models.QuizQuestion
	latex     string
	err       error

	quizCalls  int
	paperCalls int
}

func (f *fakeGenerator) GenerateQuiz(ctx context.Context, form models.FormInput) ([]models.QuizQuestion, error) {
	f.quizCalls++
	return f.questions, f.err
}

func (f *fakeGenerator) GenerateTestPaper(ctx context.Context, form models.FormInput) (string, error) {
	f.paperCalls++
	return f.latex, f.err
}

var testForm = models.FormInput{
	Name:       "Aarav",
	Class:      "10",
	Subject:    "Physics",
	Topic:      "Optics",
	Difficulty: "medium",
}

func newExamService(gen *fakeGenerator, gate *fakeGate) *ExamService {
	return NewExamService(gen, gate, breaker.New(5, time.Minute), zap.NewNop())
}

func TestGenerateQuiz_SuccessConsumesQuota(t *testing.T) {
	gen := &fakeGenerator{questions: []models.QuizQuestion{
		{Question: "What is the speed of light?", Options: []string{"a", "b", "c", "d"}, Answer: "a"},
	}}
	gate := newFakeGate(map[string]int{ratelimit.ProviderGemini: 20})
	svc := newExamService(gen, gate)

	questions, err := svc.GenerateQuiz(context.Background(), testForm)
	require.NoError(t, err)
	assert.Len(t, questions, 1)
	assert.Equal(t, int64(1), gate.counts[ratelimit.ProviderGemini])
}

func TestGenerateQuiz_QuotaExhausted(t *testing.T) {
	gen := &fakeGenerator{}
	gate := newFakeGate(map[string]int{ratelimit.ProviderGemini: 20})
	gate.counts[ratelimit.ProviderGemini] = 20
	svc := newExamService(gen, gate)

	_, err := svc.GenerateQuiz(context.Background(), testForm)

	var quotaErr *errs.QuotaError
	require.ErrorAs(t, err, &quotaErr)
	assert.Zero(t, gen.quizCalls, "provider must not be called without quota")
	assert.Equal(t, int64(20), gate.counts[ratelimit.ProviderGemini])
}

func TestGenerateTestPaper_FailureSkipsIncrement(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model returned garbage")}
	gate := newFakeGate(map[string]int{ratelimit.ProviderGemini: 20})
	svc := newExamService(gen, gate)

	_, err := svc.GenerateTestPaper(context.Background(), testForm)
	require.Error(t, err)
	assert.Zero(t, gate.incrCalls)
}

func TestGenerateTestPaper_Success(t *testing.T) {
	gen := &fakeGenerator{latex: "\\documentclass{article}\\begin{document}Q1\\end{document}"}
	gate := newFakeGate(map[string]int{ratelimit.ProviderGemini: 20})
	svc := newExamService(gen, gate)

	latex, err := svc.GenerateTestPaper(context.Background(), testForm)
	require.NoError(t, err)
	assert.Contains(t, latex, "\\documentclass")
	assert.Equal(t, 1, gate.incrCalls)
}

func TestGenerateQuiz_OpenBreakerMapsToProviderUnavailable(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("upstream 500")}
	gate := newFakeGate(map[string]int{ratelimit.ProviderGemini: 100})

	svc := NewExamService(gen, gate, breaker.New(1, time.Minute), zap.NewNop())

	ctx := context.Background()
	_, err := svc.GenerateQuiz(ctx, testForm)
	require.Error(t, err)

	_, err = svc.GenerateQuiz(ctx, testForm)

	var unavailableErr *errs.ProviderUnavailableError
	require.ErrorAs(t, err, &unavailableErr)
	assert.Equal(t, 1, gen.quizCalls)
}
