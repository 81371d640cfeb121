package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/examgen/examgen/internal/errs"
)

// Translates a pipeline error into the JSON failure shape and status code.
func respondError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	if details := errs.Details(err); details != nil {
		body["details"] = details
	}

	c.JSON(errs.HTTPStatus(err), body)
}
