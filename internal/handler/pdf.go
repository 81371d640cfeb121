package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/examgen/examgen/internal/cloudconvert"
)

// PDFGenerator is the pipeline surface the handler depends on.
type PDFGenerator interface {
	GeneratePDF(ctx context.Context, latexContent, filename string) (*cloudconvert.Artifact, error)
}

type PDFHandler struct {
	service PDFGenerator
}

func NewPDFHandler(service PDFGenerator) *PDFHandler {
	return &PDFHandler{service: service}
}

type generatePDFRequest struct {
	LatexContent string `json:"latexContent"`
	Filename     string `json:"filename"`
}

// Handles POST /api/generate-pdf
func (h *PDFHandler) Generate(c *gin.Context) {
	var req generatePDFRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.LatexContent == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "LaTeX content is required"})
		return
	}

	filename := req.Filename
	if filename == "" {
		filename = "test-paper.tex"
	}

	artifact, err := h.service.GeneratePDF(c.Request.Context(), req.LatexContent, filename)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	c.Header("Content-Length", strconv.FormatInt(artifact.Size, 10))
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "application/pdf", artifact.Data)
}

// Handles GET /api/generate-pdf - usage documentation, no side effects
func (h *PDFHandler) Usage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "LaTeX to PDF conversion API endpoint",
		"methods": []string{"POST"},
		"example": gin.H{
			"latexContent": "\\documentclass{article}\\begin{document}Hello World\\end{document}",
			"filename":     "my-document.tex",
		},
		"description": "Send LaTeX content in the request body to generate a PDF",
	})
}
