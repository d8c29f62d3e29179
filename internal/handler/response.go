package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"claimrisk/internal/domain"
	"claimrisk/internal/middleware"
)

// RespondOK sends a 200 response carrying an analysis envelope.
func RespondOK(c *gin.Context, result *domain.AnalysisResult) {
	c.JSON(http.StatusOK, result)
}

// RespondError sends an error envelope with the given status code.
func RespondError(c *gin.Context, status int, result *domain.AnalysisResult) {
	c.JSON(status, result)
}

// MapDomainError translates domain errors to HTTP status codes and response envelopes.
func MapDomainError(err error) (status int, result *domain.AnalysisResult) {
	switch {
	case errors.Is(err, domain.ErrMissingFile):
		return http.StatusBadRequest, domain.NewErrorResult(domain.ErrorKindMissingFile, "No file uploaded", "Please upload a PDF file")
	case errors.Is(err, domain.ErrEmptyFilename):
		return http.StatusBadRequest, domain.NewErrorResult(domain.ErrorKindEmptyFilename, "Empty filename", "No file selected")
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, domain.NewErrorResult(domain.ErrorKindUnsupportedType, "Invalid file type", "Only PDF files are supported")
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, domain.NewErrorResult(domain.ErrorKindFileTooLarge, "File too large", "The uploaded file exceeds the maximum allowed size")
	default:
		return http.StatusInternalServerError, domain.NewInternalErrorResult()
	}
}

// HandleError maps a domain error and sends the appropriate error response.
// The error text itself never reaches the client.
func HandleError(c *gin.Context, err error) {
	status, result := MapDomainError(err)
	log := middleware.GetLogger(c).WithError(err)
	if status >= http.StatusInternalServerError {
		log.Error("handler.HandleError: internal error")
	} else {
		log.WithField("error_kind", result.ErrorKind).Warn("handler.HandleError: rejected request")
	}
	RespondError(c, status, result)
}
