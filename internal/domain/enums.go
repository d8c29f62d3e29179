package domain

// Recommendation is the action suggested for a claim.
type Recommendation string

const (
	RecommendationApprove Recommendation = "APPROVE"
	RecommendationReview  Recommendation = "REVIEW"
	RecommendationDeny    Recommendation = "DENY"

	// RecommendationError only appears in response envelopes for requests
	// that never reached a trustworthy verdict. Verdicts never carry it.
	RecommendationError Recommendation = "ERROR"
)

// ValidRecommendations is the set a model verdict may carry.
var ValidRecommendations = map[Recommendation]bool{
	RecommendationApprove: true,
	RecommendationReview:  true,
	RecommendationDeny:    true,
}

// IsValid reports whether r is one of APPROVE, REVIEW or DENY.
func (r Recommendation) IsValid() bool {
	return ValidRecommendations[r]
}

// ErrorKind classifies a failed request in the response envelope.
type ErrorKind string

const (
	ErrorKindMissingFile      ErrorKind = "MissingFile"
	ErrorKindEmptyFilename    ErrorKind = "EmptyFilename"
	ErrorKindUnsupportedType  ErrorKind = "UnsupportedType"
	ErrorKindFileTooLarge     ErrorKind = "FileTooLarge"
	ErrorKindExtractionFailed ErrorKind = "ExtractionFailed"
	ErrorKindModelUnavailable ErrorKind = "ModelUnavailable"
	ErrorKindRateLimited      ErrorKind = "RateLimited"
	ErrorKindInternal         ErrorKind = "InternalError"
)

// AllowedExtension is the only upload extension accepted (compared case-insensitively).
const AllowedExtension = ".pdf"

// StorageBackend selects where uploaded documents are staged.
type StorageBackend string

const (
	StorageBackendLocal StorageBackend = "local"
	StorageBackendS3    StorageBackend = "s3"
)
