package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examgen/examgen/internal/errs"
	"github.com/examgen/examgen/internal/models"
)

// ExamGenerator is the generation surface the handler depends on.
type ExamGenerator interface {
	GenerateQuiz(ctx context.Context, form models.FormInput) ([]models.QuizQuestion, error)
	GenerateTestPaper(ctx context.Context, form models.FormInput) (string, error)
}

type ExamHandler struct {
	service ExamGenerator
}

func NewExamHandler(service ExamGenerator) *ExamHandler {
	return &ExamHandler{service: service}
}

// Handles POST /api/generate-quiz
func (h *ExamHandler) GenerateQuiz(c *gin.Context) {
	var form models.FormInput
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "name, class, subject, topic and difficulty are required",
		})
		return
	}

	questions, err := h.service.GenerateQuiz(c.Request.Context(), form)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{
			"success": false,
			"message": err.Error(),
			"error":   errorCode(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"quizQuestions": questions,
	})
}

// Handles POST /api/generate-test
func (h *ExamHandler) GenerateTestPaper(c *gin.Context) {
	var form models.FormInput
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "name, class, subject, topic and difficulty are required",
		})
		return
	}

	latex, err := h.service.GenerateTestPaper(c.Request.Context(), form)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{
			"success": false,
			"message": err.Error(),
			"error":   errorCode(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"latexCode": latex,
	})
}

// Handles GET on the generation endpoints - liveness probe for the frontend
func (h *ExamHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "API route is working!",
		"success": true,
	})
}

func errorCode(err error) string {
	var (
		quotaErr       *errs.QuotaError
		unavailableErr *errs.ProviderUnavailableError
	)

	switch {
	case errors.As(err, &quotaErr):
		return "QUOTA_EXCEEDED"
	case errors.As(err, &unavailableErr):
		return "SERVICE_UNAVAILABLE"
	default:
		return "GENERATION_FAILED"
	}
}
