package domain

import "time"

// MaxReasoningLength is the maximum number of characters kept in Verdict.Reasoning.
const MaxReasoningLength = 1000

// ClaimDocument is an uploaded claim file. It lives for one request only.
type ClaimDocument struct {
	Filename string
	Data     []byte
}

// StoredDocument is the handle of a ClaimDocument staged in a temp store.
type StoredDocument struct {
	Key      string
	Filename string
	Size     int64
}

// Verdict is the validated risk assessment of a claim.
//
// Invariants: 0 <= RiskScore <= 100, Recommendation.IsValid(),
// len([]rune(Reasoning)) <= MaxReasoningLength.
type Verdict struct {
	RiskScore      int            `json:"risk_score"`
	Recommendation Recommendation `json:"recommendation"`
	Reasoning      string         `json:"reasoning"`
}

// AnalysisResult is the JSON envelope returned by POST /analyze. The three
// verdict fields are always present, on success and on failure.
type AnalysisResult struct {
	RiskScore      int            `json:"risk_score"`
	Recommendation Recommendation `json:"recommendation"`
	Reasoning      string         `json:"reasoning"`
	Filename       string         `json:"filename,omitempty"`
	ProcessedAt    *time.Time     `json:"processed_at,omitempty"`
	Model          string         `json:"model,omitempty"`
	Error          string         `json:"error,omitempty"`
	ErrorKind      ErrorKind      `json:"error_kind,omitempty"`
}

// NewAnalysisResult attaches request metadata to a verdict.
func NewAnalysisResult(v Verdict, filename string, processedAt time.Time, model string) *AnalysisResult {
	return &AnalysisResult{
		RiskScore:      v.RiskScore,
		Recommendation: v.Recommendation,
		Reasoning:      v.Reasoning,
		Filename:       filename,
		ProcessedAt:    &processedAt,
		Model:          model,
	}
}

// NewErrorResult builds an envelope for a request that produced no verdict.
func NewErrorResult(kind ErrorKind, message, reasoning string) *AnalysisResult {
	return &AnalysisResult{
		RiskScore:      0,
		Recommendation: RecommendationError,
		Reasoning:      reasoning,
		Error:          message,
		ErrorKind:      kind,
	}
}

// Verdict returns the three core fields of the envelope.
func (r *AnalysisResult) Verdict() Verdict {
	return Verdict{RiskScore: r.RiskScore, Recommendation: r.Recommendation, Reasoning: r.Reasoning}
}

// InternalErrorReasoning is the reasoning of the envelope sent for server errors.
const InternalErrorReasoning = "System error occurred. Please review manually."

// NewInternalErrorResult builds the envelope for an unexpected server error.
// It keeps a REVIEW verdict so a caller that ignores the status code still
// routes the claim to a human.
func NewInternalErrorResult() *AnalysisResult {
	return &AnalysisResult{
		RiskScore:      50,
		Recommendation: RecommendationReview,
		Reasoning:      InternalErrorReasoning,
		Error:          "Internal server error",
		ErrorKind:      ErrorKindInternal,
	}
}
