package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examgen/examgen/internal/errs"
	"github.com/examgen/examgen/internal/models"
)

type stubExamGenerator struct {
	questions []models.QuizQuestion
	latex     string
	err       error

	gotForm models.FormInput
}

func (s *stubExamGenerator) GenerateQuiz(ctx context.Context, form models.FormInput) ([]models.QuizQuestion, error) {
	s.gotForm = form
	return s.questions, s.err
}

func (s *stubExamGenerator) GenerateTestPaper(ctx context.Context, form models.FormInput) (string, error) {
	s.gotForm = form
	return s.latex, s.err
}

func examRouter(stub *stubExamGenerator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewExamHandler(stub)
	router.POST("/api/generate-quiz", h.GenerateQuiz)
	router.POST("/api/generate-test", h.GenerateTestPaper)
	router.GET("/api/generate-quiz", h.Ping)
	return router
}

var validForm = gin.H{
	"name":       "Aarav",
	"class":      "10",
	"subject":    "Physics",
	"topic":      "Optics",
	"difficulty": "medium",
}

func TestGenerateQuizEndpoint_Success(t *testing.T) {
	stub := &stubExamGenerator{
		questions: []models.QuizQuestion{
			{Question: "What is refraction?", Options: []string{"a", "b", "c", "d"}, Answer: "b"},
		},
	}
	router := examRouter(stub)

	w := postJSON(t, router, "/api/generate-quiz", validForm)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success       bool                  `json:"success"`
		QuizQuestions []models.QuizQuestion `json:"quizQuestions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.QuizQuestions, 1)
	assert.Equal(t, "b", body.QuizQuestions[0].Answer)
	assert.Equal(t, "Optics", stub.gotForm.Topic)
}

func TestGenerateQuizEndpoint_MissingFieldsIs400(t *testing.T) {
	router := examRouter(&stubExamGenerator{})

	w := postJSON(t, router, "/api/generate-quiz", gin.H{"name": "Aarav"})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
}

func TestGenerateQuizEndpoint_QuotaExceededCode(t *testing.T) {
	stub := &stubExamGenerator{
		err: &errs.QuotaError{Provider: "gemini", Limit: 20},
	}
	router := examRouter(stub)

	w := postJSON(t, router, "/api/generate-quiz", validForm)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "QUOTA_EXCEEDED", body["error"])
	assert.Equal(t, false, body["success"])
}

func TestGenerateTestEndpoint_Success(t *testing.T) {
	stub := &stubExamGenerator{
		latex: "\\documentclass{article}\\begin{document}Q1\\end{document}",
	}
	router := examRouter(stub)

	w := postJSON(t, router, "/api/generate-test", validForm)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success   bool   `json:"success"`
		LatexCode string `json:"latexCode"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Contains(t, body.LatexCode, "\\documentclass")
}

func TestGenerateTestEndpoint_ProviderUnavailableCode(t *testing.T) {
	stub := &stubExamGenerator{
		err: &errs.ProviderUnavailableError{Provider: "gemini"},
	}
	router := examRouter(stub)

	w := postJSON(t, router, "/api/generate-test", validForm)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "SERVICE_UNAVAILABLE", body["error"])
}

func TestPingEndpoint(t *testing.T) {
	router := examRouter(&stubExamGenerator{})

	req := httptest.NewRequest(http.MethodGet, "/api/generate-quiz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "API route is working!", body["message"])
}
