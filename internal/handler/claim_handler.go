package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"claimrisk/internal/domain"
	"claimrisk/internal/middleware"
	"claimrisk/internal/service"
)

// multipartOverhead is the slack allowed on top of the file limit for
// boundaries and part headers.
const multipartOverhead = 1 << 20

// ClaimHandler handles claim analysis endpoints.
type ClaimHandler struct {
	claimService service.ClaimService
	maxFileBytes int64
}

// NewClaimHandler creates a new ClaimHandler. maxFileBytes <= 0 disables the size limit.
func NewClaimHandler(claimService service.ClaimService, maxFileBytes int64) *ClaimHandler {
	return &ClaimHandler{claimService: claimService, maxFileBytes: maxFileBytes}
}

// Analyze handles POST /analyze
// @Summary Analyze a claim document
// @Description Upload a PDF insurance claim and receive a risk score, a recommendation and the reasoning behind them
// @Tags claims
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Claim document (PDF)"
// @Success 200 {object} AnalysisResponseBody "Verdict, or extraction failure with recommendation ERROR"
// @Failure 400 {object} AnalysisResponseBody "Missing file, empty filename or unsupported type"
// @Failure 413 {object} AnalysisResponseBody "File too large"
// @Failure 429 {object} AnalysisResponseBody "Rate limited"
// @Failure 500 {object} AnalysisResponseBody "Internal error"
// @Router /analyze [post]
func (h *ClaimHandler) Analyze(c *gin.Context) {
	if h.maxFileBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileBytes+multipartOverhead)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		HandleError(c, h.formFileError(c, err))
		return
	}
	defer func() { _ = file.Close() }()

	if err := service.ValidateUpload(header.Filename, header.Size, h.maxFileBytes); err != nil {
		HandleError(c, err)
		return
	}

	result, err := h.claimService.Analyze(c.Request.Context(), service.AnalyzeInput{
		RequestID: middleware.GetRequestID(c),
		Filename:  header.Filename,
		Body:      file,
		Size:      header.Size,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// formFileError classifies a failed FormFile lookup. A part named "file"
// with an empty filename is parsed as a plain form value, not a file.
func (h *ClaimHandler) formFileError(c *gin.Context, err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return domain.ErrFileTooLarge
	}
	if form := c.Request.MultipartForm; form != nil {
		if _, ok := form.Value["file"]; ok {
			return domain.ErrEmptyFilename
		}
	}
	return domain.ErrMissingFile
}
